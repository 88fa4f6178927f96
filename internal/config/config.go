// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration values.
type Config struct {
	// GPS
	GPSSerialPort   string
	GPSBaudRate     int
	GPSWakeCommand  string
	GPSLineBuffer   int // bytes
	GPSQueueSize    int // bytes
	GPSReadTimeout  int // milliseconds
	GPSPublishEvery int // milliseconds, headless producer

	// Workflow
	PollInterval int // milliseconds

	// Captures
	CaptureBaseDir     string
	CaptureSourcesFile string // optional YAML override of the default sources

	// MQTT (empty broker disables publishing)
	MQTTBroker          string
	MQTTClientIDLocator string
	MQTTClientIDGPS     string
	MQTTClientIDConsole string

	// Topics
	TopicGPS      string
	TopicCaptures string
	TopicOpen     string

	// Web Server (0 disables)
	WebServerPort int
	WebStaticDir  string // optional, served at /

	// Display
	DisplayEnable         bool
	DisplayI2CAddr        uint16
	DisplayUpdateInterval int // milliseconds
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		GPSSerialPort:   "/dev/serial0",
		GPSBaudRate:     9600,
		GPSWakeCommand:  "wakeup\r\n",
		GPSLineBuffer:   1024,
		GPSQueueSize:    2048,
		GPSReadTimeout:  100,
		GPSPublishEvery: 1000,

		PollInterval: 1000,

		CaptureBaseDir: "/ext",

		MQTTClientIDLocator: "capture-locator",
		MQTTClientIDGPS:     "capture-locator-gps",
		MQTTClientIDConsole: "capture-locator-console",

		TopicGPS:      "locator/gps",
		TopicCaptures: "locator/captures",
		TopicOpen:     "locator/open",

		DisplayI2CAddr:        0x3C,
		DisplayUpdateInterval: 500,
	}
}

// Load reads a KEY=VALUE configuration file on top of Default.
func Load(configPath string) (*Config, error) {
	raw, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := checkExpansion(string(raw)); err != nil {
		return nil, fmt.Errorf("config %s: %w", configPath, err)
	}

	values, err := godotenv.Unmarshal(string(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg := Default()

	// Sorted so that the first reported error does not depend on map order.
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if err := cfg.setValue(key, values[key]); err != nil {
			return nil, fmt.Errorf("config %s: %w", configPath, err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOptional is Load, except that a missing file yields Default.
func LoadOptional(configPath string) (*Config, error) {
	cfg, err := Load(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		log.Printf("config: %s not found, using defaults", configPath)
		return Default(), nil
	}
	return cfg, err
}

// expandable matches what godotenv replaces with a variable lookup.
var expandable = regexp.MustCompile(`(^|[^\\])\$(\{|[A-Z0-9_])`)

// checkExpansion rejects values that godotenv would silently rewrite. A '$'
// starting a variable name is expanded unless the value is single-quoted,
// which breaks NMEA commands such as $PMTK225,0*2B.
func checkExpansion(raw string) error {
	for i, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		sep := strings.IndexAny(line, "=:")
		if sep < 0 {
			continue
		}
		key, value := strings.TrimSpace(line[:sep]), strings.TrimSpace(line[sep+1:])
		if strings.HasPrefix(value, "'") && strings.HasSuffix(value, "'") && len(value) > 1 {
			continue
		}
		if expandable.MatchString(value) {
			return fmt.Errorf("line %d: %s contains '$', which would be expanded; single-quote the value", i+1, key)
		}
	}
	return nil
}

var escapes = strings.NewReplacer(`\r`, "\r", `\n`, "\n")

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// GPS
	case "GPS_SERIAL_PORT":
		c.GPSSerialPort = value
	case "GPS_BAUD_RATE":
		rate, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid GPS_BAUD_RATE %q: %w", value, err)
		}
		c.GPSBaudRate = rate
	case "GPS_WAKE_COMMAND":
		c.GPSWakeCommand = escapes.Replace(value)
	case "GPS_LINE_BUFFER":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid GPS_LINE_BUFFER %q: %w", value, err)
		}
		if n < 128 || n > 65536 {
			return fmt.Errorf("GPS_LINE_BUFFER must be 128-65536, got %d", n)
		}
		c.GPSLineBuffer = n
	case "GPS_QUEUE_SIZE":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid GPS_QUEUE_SIZE %q: %w", value, err)
		}
		if n < 64 {
			return fmt.Errorf("GPS_QUEUE_SIZE must be at least 64, got %d", n)
		}
		c.GPSQueueSize = n
	case "GPS_READ_TIMEOUT":
		ms, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid GPS_READ_TIMEOUT %q: %w", value, err)
		}
		if ms < 100 || ms > 25500 {
			// termios VTIME is in deciseconds, one byte wide.
			return fmt.Errorf("GPS_READ_TIMEOUT must be 100-25500 ms, got %d", ms)
		}
		c.GPSReadTimeout = ms
	case "GPS_PUBLISH_INTERVAL":
		ms, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid GPS_PUBLISH_INTERVAL %q: %w", value, err)
		}
		c.GPSPublishEvery = ms

	// Workflow
	case "POLL_INTERVAL":
		ms, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid POLL_INTERVAL %q: %w", value, err)
		}
		c.PollInterval = ms

	// Captures
	case "CAPTURE_BASE_DIR":
		c.CaptureBaseDir = value
	case "CAPTURE_SOURCES_FILE":
		c.CaptureSourcesFile = value

	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_LOCATOR":
		c.MQTTClientIDLocator = value
	case "MQTT_CLIENT_ID_GPS":
		c.MQTTClientIDGPS = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value

	// Topics
	case "TOPIC_GPS":
		c.TopicGPS = value
	case "TOPIC_CAPTURES":
		c.TopicCaptures = value
	case "TOPIC_OPEN":
		c.TopicOpen = value

	// Web Server
	case "WEB_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, err)
		}
		if port < 0 || port > 65535 {
			return fmt.Errorf("WEB_SERVER_PORT must be 0-65535, got %d", port)
		}
		c.WebServerPort = port
	case "WEB_STATIC_DIR":
		c.WebStaticDir = value

	// Display
	case "DISPLAY_ENABLE":
		on, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_ENABLE %q: %w", value, err)
		}
		c.DisplayEnable = on
	case "DISPLAY_I2C_ADDR":
		addr, err := strconv.ParseUint(value, 0, 16)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_I2C_ADDR %q: %w", value, err)
		}
		c.DisplayI2CAddr = uint16(addr)
	case "DISPLAY_UPDATE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_UPDATE_INTERVAL %q: %w", value, err)
		}
		c.DisplayUpdateInterval = interval

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.GPSSerialPort == "" {
		return fmt.Errorf("GPS_SERIAL_PORT is required")
	}
	if c.GPSBaudRate <= 0 {
		return fmt.Errorf("GPS_BAUD_RATE is required")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL must be positive")
	}
	if c.GPSPublishEvery <= 0 {
		return fmt.Errorf("GPS_PUBLISH_INTERVAL must be positive")
	}
	if c.CaptureBaseDir == "" && c.CaptureSourcesFile == "" {
		return fmt.Errorf("CAPTURE_BASE_DIR or CAPTURE_SOURCES_FILE is required")
	}
	if c.MQTTBroker != "" {
		if c.TopicGPS == "" || c.TopicCaptures == "" || c.TopicOpen == "" {
			return fmt.Errorf("TOPIC_GPS, TOPIC_CAPTURES and TOPIC_OPEN are required when MQTT_BROKER is set")
		}
		if c.TopicGPS == c.TopicCaptures || c.TopicGPS == c.TopicOpen || c.TopicCaptures == c.TopicOpen {
			return fmt.Errorf("TOPIC_GPS, TOPIC_CAPTURES and TOPIC_OPEN must be distinct")
		}
	}
	if c.DisplayEnable && c.DisplayUpdateInterval <= 0 {
		return fmt.Errorf("DISPLAY_UPDATE_INTERVAL must be positive when DISPLAY_ENABLE is set")
	}
	return nil
}
