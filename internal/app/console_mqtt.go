// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/capture_locator/internal/config"
)

// RunConsoleMQTT prints everything a locator publishes until Ctrl+C.
func RunConsoleMQTT(cfg *config.Config) error {
	if cfg.MQTTBroker == "" {
		return fmt.Errorf("console: MQTT_BROKER is required")
	}

	client, err := ConnectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDConsole)
	if err != nil {
		return err
	}

	if err := subscribeConsole(client, cfg); err != nil {
		return err
	}

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}

type subscription struct {
	topic   string
	handler mqtt.MessageHandler
}

// subscribeConsole subscribes to every locator topic. On failure the client
// is disconnected.
func subscribeConsole(client mqtt.Client, cfg *config.Config) error {
	subs := []subscription{
		{cfg.TopicGPS, printGPS},
		{cfg.TopicCaptures, printCaptures},
		{cfg.TopicOpen, printOpen},
	}

	seen := make(map[string]bool, len(subs))
	for _, sub := range subs {
		if seen[sub.topic] {
			client.Disconnect(250)
			return fmt.Errorf("console: topic %q is configured twice", sub.topic)
		}
		seen[sub.topic] = true

		token := client.Subscribe(sub.topic, 0, sub.handler)
		token.Wait()
		if token.Error() != nil {
			client.Disconnect(250)
			return fmt.Errorf("console: subscribe %s: %w", sub.topic, token.Error())
		}
		log.Printf("console: subscribed to %s", sub.topic)
	}
	return nil
}

func printGPS(_ mqtt.Client, msg mqtt.Message) {
	var m GPSMessage
	if err := json.Unmarshal(msg.Payload(), &m); err != nil {
		log.Printf("console: gps unmarshal error: %v", err)
		return
	}
	fmt.Println(formatGPS(m))
}

func printCaptures(_ mqtt.Client, msg mqtt.Message) {
	var m CapturesMessage
	if err := json.Unmarshal(msg.Payload(), &m); err != nil {
		log.Printf("console: captures unmarshal error: %v", err)
		return
	}
	fmt.Print(formatCaptures(m))
}

func printOpen(_ mqtt.Client, msg mqtt.Message) {
	var m OpenMessage
	if err := json.Unmarshal(msg.Payload(), &m); err != nil {
		log.Printf("console: open unmarshal error: %v", err)
		return
	}
	fmt.Printf("[OPEN] %s with %s (%s)\n", m.Name, m.App, m.Path)
}

func formatGPS(m GPSMessage) string {
	return fmt.Sprintf(
		"[GPS ]  valid=%t lat=%.6f lon=%.6f sats=%d module=%t  lines=%d rejected=%d dropped=%d",
		m.Valid, m.Latitude, m.Longitude, m.Satellites, m.ModuleDetected,
		m.Stats.Lines, m.Stats.Rejected, m.Stats.QueueDropped,
	)
}

func formatCaptures(m CapturesMessage) string {
	switch m.State {
	case "waiting":
		return fmt.Sprintf("[SCAN] %s\n", m.Status)
	case "failed":
		return fmt.Sprintf("[SCAN] gps unavailable: %s\n", m.Error)
	case "no_results":
		return "[SCAN] no captures with coordinates found\n"
	}

	out := fmt.Sprintf("[SCAN] %d captures by distance\n", len(m.Results))
	for _, r := range m.Results {
		out += fmt.Sprintf("%4d  %-32s %8s  %s\n", r.Index+1, r.Name, r.Distance, r.App)
	}
	if m.Partial {
		out += "[SCAN] some folders could not be read\n"
	}
	return out
}
