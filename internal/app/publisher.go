// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/capture_locator/internal/capture"
	"github.com/relabs-tech/capture_locator/internal/gps"
)

// Topics names where a Publisher sends each kind of message.
type Topics struct {
	GPS      string
	Captures string
	Open     string
}

// Publisher mirrors the workflow onto MQTT. Captures are retained so a late
// subscriber sees the current list; open requests are not.
type Publisher struct {
	client mqtt.Client
	topics Topics

	mu         sync.Mutex
	lastStatus string
}

// ConnectMQTT connects a client to broker with the given id.
func ConnectMQTT(broker, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", broker, token.Error())
	}
	log.Printf("mqtt: %s connected to broker at %s", clientID, broker)
	return client, nil
}

func NewPublisher(client mqtt.Client, topics Topics) *Publisher {
	return &Publisher{client: client, topics: topics}
}

func (p *Publisher) publish(topic string, retained bool, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		log.Printf("mqtt: %s marshal error: %v", topic, err)
		return
	}

	token := p.client.Publish(topic, 0, retained, payload)
	token.Wait()
	if token.Error() != nil {
		log.Printf("mqtt: %s publish error: %v", topic, token.Error())
	}
}

// PublishPosition sends one GPS snapshot with the pipeline counters.
func (p *Publisher) PublishPosition(pos gps.Position, stats gps.Stats) {
	p.publish(p.topics.GPS, true, GPSMessage{Position: pos, Stats: stats})
}

// DefaultPublishInterval is used when RunPositionLoop gets no usable interval.
const DefaultPublishInterval = time.Second

// RunPositionLoop publishes src every interval until ctx is done.
func (p *Publisher) RunPositionLoop(ctx context.Context, src gpsSource, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultPublishInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.PublishPosition(src.Snapshot(), src.Stats())
		}
	}
}

// Waiting publishes only when the status line changes.
func (p *Publisher) Waiting(pos gps.Position) {
	status := waitingStatus(pos)
	p.mu.Lock()
	changed := status != p.lastStatus
	p.lastStatus = status
	p.mu.Unlock()
	if changed {
		p.publish(p.topics.Captures, true, CapturesMessage{State: "waiting", Status: status})
	}
}

func (p *Publisher) resetStatus() {
	p.mu.Lock()
	p.lastStatus = ""
	p.mu.Unlock()
}

func (p *Publisher) Results(results []capture.Candidate, partial bool) {
	p.resetStatus()
	p.publish(p.topics.Captures, true, CapturesMessage{
		State:   "results",
		Partial: partial,
		Results: resultViews(results),
	})
}

func (p *Publisher) NoResults(partial bool) {
	p.resetStatus()
	p.publish(p.topics.Captures, true, CapturesMessage{State: "no_results", Partial: partial})
}

func (p *Publisher) Failed(err error) {
	p.publish(p.topics.Captures, true, CapturesMessage{State: "failed", Error: err.Error()})
}

func (p *Publisher) About() {}

func (p *Publisher) Open(c capture.Candidate) {
	p.publish(p.topics.Open, false, OpenMessage{Name: c.Name, Path: c.Path, App: c.App})
}
