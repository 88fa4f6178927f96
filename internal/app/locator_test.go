// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/relabs-tech/capture_locator/internal/config"
)

func TestCaptureSourcesDefaultsUnderBaseDir(t *testing.T) {
	cfg := config.Default()
	cfg.CaptureBaseDir = "/media/sd"

	sources, err := captureSources(cfg)
	if err != nil {
		t.Fatalf("sources: %v", err)
	}
	if len(sources) != 3 || sources[0].Root != filepath.Join("/media/sd", "subghz") {
		t.Fatalf("unexpected sources %+v", sources)
	}
}

func TestCaptureSourcesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yaml")
	data := "sources:\n  - root: /data/ir\n    extensions: [\".ir\"]\n    app: Infrared\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg := config.Default()
	cfg.CaptureSourcesFile = path
	sources, err := captureSources(cfg)
	if err != nil {
		t.Fatalf("sources: %v", err)
	}
	if len(sources) != 1 || sources[0].App != "Infrared" {
		t.Fatalf("unexpected sources %+v", sources)
	}
}

func TestWorkerConfigFromConfig(t *testing.T) {
	cfg := config.Default()
	wc := workerConfig(cfg, nil)
	if wc.Serial.Port != "/dev/serial0" || wc.Serial.BaudRate != 9600 {
		t.Fatalf("unexpected serial config %+v", wc.Serial)
	}
	if wc.Serial.ReadTimeout != 100*time.Millisecond {
		t.Fatalf("unexpected read timeout %s", wc.Serial.ReadTimeout)
	}
	if string(wc.WakeCommand) != "wakeup\r\n" || wc.LineBuffer != 1024 || wc.QueueSize != 2048 {
		t.Fatalf("unexpected worker config %+v", wc)
	}
}
