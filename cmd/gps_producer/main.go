// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"log"
	"os"

	"github.com/relabs-tech/capture_locator/internal/app"
	"github.com/relabs-tech/capture_locator/internal/config"
)

func main() {
	log.Println("starting capture locator GPS producer (NMEA -> MQTT)")

	configPath := "locator_config.txt"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := config.LoadOptional(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunGPSProducer(cfg); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
