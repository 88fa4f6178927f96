// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"image"
	"log"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/capture_locator/internal/capture"
	"github.com/relabs-tech/capture_locator/internal/gps"
)

const (
	displayWidth  = 128
	displayHeight = 64
	displayLines  = 4  // 13px rows of Face7x13
	displayCols   = 18 // 7px glyphs
)

// DisplayPresenter renders the locator status on an SSD1306 OLED. Presenter
// calls only record the screen; Run pushes it to the panel.
type DisplayPresenter struct {
	bus i2c.BusCloser
	dev *ssd1306.Dev

	mu    sync.Mutex
	lines []string
	dirty bool
}

// NewDisplayPresenter opens the default I2C bus and the panel at addr.
func NewDisplayPresenter(addr uint16) (*DisplayPresenter, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph: %w", err)
	}

	bus, err := i2creg.Open("")
	if err != nil {
		return nil, fmt.Errorf("failed to open I2C bus: %w", err)
	}

	dev, err := ssd1306.NewI2C(panelBus{Bus: bus, addr: addr}, &ssd1306.DefaultOpts)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("failed to initialize display: %w", err)
	}
	log.Printf("display: initialized at 0x%02X", addr)

	d := &DisplayPresenter{bus: bus, dev: dev}
	d.set(splashLines())
	return d, nil
}

// panelBus sends every transaction to addr. The ssd1306 driver always
// talks to 0x3C; boards strapped to 0x3D need the retarget.
type panelBus struct {
	i2c.Bus
	addr uint16
}

func (b panelBus) Tx(_ uint16, w, r []byte) error {
	return b.Bus.Tx(b.addr, w, r)
}

// Run redraws the panel whenever the screen changed, every interval.
func (d *DisplayPresenter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		d.mu.Lock()
		lines, dirty := d.lines, d.dirty
		d.dirty = false
		d.mu.Unlock()
		if !dirty {
			continue
		}

		if err := d.dev.Draw(d.dev.Bounds(), renderLines(lines), image.Point{}); err != nil {
			log.Printf("display: draw error: %v", err)
		}
	}
}

// Close blanks the panel and releases the bus.
func (d *DisplayPresenter) Close() error {
	if err := d.dev.Halt(); err != nil {
		log.Printf("display: halt error: %v", err)
	}
	return d.bus.Close()
}

func (d *DisplayPresenter) set(lines []string) {
	d.mu.Lock()
	d.lines = lines
	d.dirty = true
	d.mu.Unlock()
}

func (d *DisplayPresenter) Waiting(pos gps.Position) {
	d.set(waitingLines(pos))
}

func (d *DisplayPresenter) Results(results []capture.Candidate, partial bool) {
	d.set(resultLines(results, partial))
}

func (d *DisplayPresenter) NoResults(partial bool) {
	lines := []string{"No captures", "with coordinates"}
	if partial {
		lines = append(lines, "(scan incomplete)")
	}
	d.set(lines)
}

func (d *DisplayPresenter) Failed(err error) {
	d.set([]string{"GPS unavailable", "Check module", "and restart"})
}

func (d *DisplayPresenter) About() {
	d.set([]string{"Capture Locator", "Sub-GHz NFC RFID", "sorted by", "distance"})
}

func (d *DisplayPresenter) Open(c capture.Candidate) {
	d.set([]string{"Opening", clip(c.Name), clip(c.App)})
}

func splashLines() []string {
	return []string{"Capture Locator", "Looking for", "sats"}
}

func waitingLines(pos gps.Position) []string {
	if !pos.ModuleDetected {
		return []string{"No GPS module", "detected"}
	}
	return []string{"Waiting for fix", fmt.Sprintf("Sats: %d", pos.Satellites)}
}

// resultLines shows the nearest captures, one per row, name left and
// distance right.
func resultLines(results []capture.Candidate, partial bool) []string {
	rows := displayLines
	if partial {
		rows--
	}
	var lines []string
	for i, c := range results {
		if i == rows {
			break
		}
		dist := c.FormattedDistance()
		name := clipRunes(c.Name, displayCols-len(dist)-1)
		lines = append(lines, fmt.Sprintf("%-*s %s", displayCols-len(dist)-1, name, dist))
	}
	if partial {
		lines = append(lines, "(scan incomplete)")
	}
	return lines
}

func clip(s string) string {
	return clipRunes(s, displayCols)
}

// clipRunes keeps at most n characters of s.
func clipRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// renderLines draws up to displayLines rows of text on a blank frame.
func renderLines(lines []string) *image1bit.VerticalLSB {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, displayWidth, displayHeight))

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}

	for i, line := range lines {
		if i == displayLines {
			break
		}
		drawer.Dot = fixed.P(0, 13*(i+1))
		drawer.DrawBytes([]byte(line))
	}
	return img
}
