// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/relabs-tech/capture_locator/internal/config"
	"github.com/relabs-tech/capture_locator/internal/gps"
)

// RunGPSProducer runs only the ingestion worker and publishes the position
// snapshot to TopicGPS every GPSPublishEvery until a signal arrives.
func RunGPSProducer(cfg *config.Config) error {
	if cfg.MQTTBroker == "" {
		log.Println("gps producer: MQTT_BROKER not set, nothing to publish to")
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := ConnectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDGPS)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	worker := gps.NewWorker(workerConfig(cfg, nil), gps.OpenSerial)
	if err := worker.Start(ctx); err != nil {
		return err
	}
	defer worker.Stop()

	pub := NewPublisher(client, Topics{GPS: cfg.TopicGPS})
	log.Printf("gps producer: publishing to %s every %d ms", cfg.TopicGPS, cfg.GPSPublishEvery)
	pub.RunPositionLoop(ctx, worker, millis(cfg.GPSPublishEvery))

	log.Println("gps producer: shutting down")
	return nil
}
