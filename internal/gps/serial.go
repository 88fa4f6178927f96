// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import (
	"io"
	"time"

	serial "github.com/jacobsa/go-serial/serial"
)

// SerialConfig names the channel and its fixed line settings.
type SerialConfig struct {
	Port        string
	BaudRate    int
	ReadTimeout time.Duration // inter-character timeout; bounds how long a read may block
}

// OpenSerial opens the port 8N1 at the configured baud rate. Reads return
// after ReadTimeout even when no byte arrived, so the reader can notice a stop.
func OpenSerial(cfg SerialConfig) (io.ReadWriteCloser, error) {
	timeout := cfg.ReadTimeout
	if timeout <= 0 {
		timeout = 100 * time.Millisecond
	}
	opts := serial.OpenOptions{
		PortName:              cfg.Port,
		BaudRate:              uint(cfg.BaudRate),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       0,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: uint(timeout / time.Millisecond),
	}
	return serial.Open(opts)
}
