// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/relabs-tech/capture_locator/internal/capture"
	"github.com/relabs-tech/capture_locator/internal/config"
	"github.com/relabs-tech/capture_locator/internal/gps"
	"github.com/relabs-tech/capture_locator/internal/metrics"
	"github.com/relabs-tech/capture_locator/internal/workflow"
)

func millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// captureSources returns the sources file rules when one is configured and
// the default layout under CaptureBaseDir otherwise.
func captureSources(cfg *config.Config) ([]capture.Source, error) {
	if cfg.CaptureSourcesFile != "" {
		return capture.LoadSources(cfg.CaptureSourcesFile)
	}
	return capture.DefaultSources(cfg.CaptureBaseDir), nil
}

func workerConfig(cfg *config.Config, m gps.Metrics) gps.WorkerConfig {
	return gps.WorkerConfig{
		Serial: gps.SerialConfig{
			Port:        cfg.GPSSerialPort,
			BaudRate:    cfg.GPSBaudRate,
			ReadTimeout: millis(cfg.GPSReadTimeout),
		},
		WakeCommand: []byte(cfg.GPSWakeCommand),
		LineBuffer:  cfg.GPSLineBuffer,
		QueueSize:   cfg.GPSQueueSize,
		Metrics:     m,
	}
}

// RunLocator runs the full locator: GPS ingestion, the workflow and every
// configured presenter, until the user exits or a signal arrives.
func RunLocator(cfg *config.Config) error {
	sources, err := captureSources(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	worker := gps.NewWorker(workerConfig(cfg, m), gps.OpenSerial)
	events := make(chan workflow.Event)

	presenters := Presenters{NewConsolePresenter(os.Stdout)}

	if cfg.MQTTBroker != "" {
		client, err := ConnectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDLocator)
		if err != nil {
			return err
		}
		defer client.Disconnect(250)

		pub := NewPublisher(client, Topics{GPS: cfg.TopicGPS, Captures: cfg.TopicCaptures, Open: cfg.TopicOpen})
		presenters = append(presenters, pub)
		go pub.RunPositionLoop(ctx, worker, millis(cfg.GPSPublishEvery))
	}

	if cfg.WebServerPort != 0 {
		web := NewWebServer(worker, reg, events, ctx.Done())
		presenters = append(presenters, web)
		addr := fmt.Sprintf(":%d", cfg.WebServerPort)
		go func() {
			if err := web.ListenAndServe(ctx, addr, cfg.WebStaticDir); err != nil {
				log.Printf("web: server error: %v", err)
			}
		}()
	}

	if cfg.DisplayEnable {
		// A missing panel should not keep the locator from running.
		display, err := NewDisplayPresenter(cfg.DisplayI2CAddr)
		if err != nil {
			log.Printf("display: disabled: %v", err)
		} else {
			defer display.Close()
			presenters = append(presenters, display)
			go display.Run(ctx, millis(cfg.DisplayUpdateInterval))
		}
	}

	ctrl := workflow.New(workflow.Config{
		PollInterval: millis(cfg.PollInterval),
		Sources:      sources,
		Metrics:      m,
	}, worker, presenters)

	if err := worker.Start(ctx); err != nil {
		log.Printf("gps: %v", err)
		ctrl.Fail(err)
	} else {
		defer worker.Stop()
	}

	go ReadEvents(ctx, os.Stdin, events)

	err = ctrl.Run(ctx, events)
	if errors.Is(err, context.Canceled) {
		log.Println("locator: shutting down")
		return nil
	}
	return err
}
