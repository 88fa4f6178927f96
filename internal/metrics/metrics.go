// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package metrics exposes the locator pipelines as Prometheus collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/relabs-tech/capture_locator/internal/gps"
)

// Collectors implements gps.Metrics and workflow.Metrics.
type Collectors struct {
	sentences      *prometheus.CounterVec
	rejected       prometheus.Counter
	queueDropped   prometheus.Counter
	linesDiscarded prometheus.Counter

	scans         prometheus.Counter
	partialScans  prometheus.Counter
	scanDuration  prometheus.Histogram
	discovered    prometheus.Gauge
	rankedResults prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Collectors {
	c := &Collectors{
		sentences: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "locator_gps_sentences_total",
			Help: "NMEA sentences classified, by kind.",
		}, []string{"kind"}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "locator_gps_sentences_rejected_total",
			Help: "Framed lines the NMEA parser rejected.",
		}),
		queueDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "locator_gps_queue_dropped_bytes_total",
			Help: "Serial bytes dropped because the receive queue was full.",
		}),
		linesDiscarded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "locator_gps_lines_discarded_total",
			Help: "Lines discarded for exceeding the line buffer.",
		}),
		scans: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "locator_scans_total",
			Help: "Completed scan and rank passes.",
		}),
		partialScans: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "locator_scans_partial_total",
			Help: "Scans where at least one directory could not be read.",
		}),
		scanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "locator_scan_duration_seconds",
			Help:    "Wall time of a scan and rank pass.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		discovered: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "locator_scan_discovered_files",
			Help: "Capture files found by the last scan.",
		}),
		rankedResults: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "locator_scan_ranked_files",
			Help: "Capture files with usable coordinates in the last scan.",
		}),
	}

	reg.MustRegister(
		c.sentences, c.rejected, c.queueDropped, c.linesDiscarded,
		c.scans, c.partialScans, c.scanDuration, c.discovered, c.rankedResults,
	)
	return c
}

func (c *Collectors) SentenceClassified(kind gps.SentenceKind) {
	c.sentences.WithLabelValues(kind.String()).Inc()
}

func (c *Collectors) SentenceRejected() { c.rejected.Inc() }

func (c *Collectors) BytesDropped(n int) { c.queueDropped.Add(float64(n)) }

func (c *Collectors) LinesDiscarded(n int) { c.linesDiscarded.Add(float64(n)) }

func (c *Collectors) ScanCompleted(elapsed time.Duration, discovered, ranked int, partial bool) {
	c.scans.Inc()
	if partial {
		c.partialScans.Inc()
	}
	c.scanDuration.Observe(elapsed.Seconds())
	c.discovered.Set(float64(discovered))
	c.rankedResults.Set(float64(ranked))
}
