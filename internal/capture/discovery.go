// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package capture

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrPartialScan is returned by Scan when at least one directory could not be
// read. The candidates found elsewhere are still returned.
var ErrPartialScan = errors.New("capture: scan incomplete")

const assetsDir = "assets"

// walkDir is replaced in tests to inject directory read failures.
var walkDir = filepath.WalkDir

// Candidate is a capture file considered for ranking.
type Candidate struct {
	Path string `json:"path"`
	Name string `json:"name"` // file name without extension
	App  string `json:"app"`  // app that opens the file

	Latitude       float64 `json:"lat"`
	Longitude      float64 `json:"lon"`
	HasCoordinates bool    `json:"has_coordinates"`
	Distance       float64 `json:"distance_m"`
}

// Scan walks every existing source root depth-first and returns the matching
// files in discovery order. Missing roots are skipped silently.
func Scan(sources []Source) ([]Candidate, error) {
	var (
		out  []Candidate
		errs []error
	)
	for _, src := range sources {
		found, err := scanSource(src)
		out = append(out, found...)
		if err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return out, fmt.Errorf("%w: %w", ErrPartialScan, errors.Join(errs...))
	}
	return out, nil
}

func scanSource(src Source) ([]Candidate, error) {
	info, err := os.Stat(src.Root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", src.Root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("open %s: not a directory", src.Root)
	}

	var (
		out  []Candidate
		errs []error
	)
	walkErr := walkDir(src.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable directory: note it and keep walking the rest.
			errs = append(errs, fmt.Errorf("open %s: %w", path, err))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		name := d.Name()
		if d.IsDir() {
			if path != src.Root && excludedDir(name) {
				return fs.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") {
			return nil
		}
		ext, ok := matchExtension(name, src.Extensions)
		if !ok {
			return nil
		}
		out = append(out, Candidate{
			Path: path,
			Name: strings.TrimSuffix(name, ext),
			App:  src.App,
		})
		return nil
	})
	if walkErr != nil {
		errs = append(errs, walkErr)
	}
	return out, errors.Join(errs...)
}

func excludedDir(name string) bool {
	return name == assetsDir || strings.HasPrefix(name, ".")
}

// matchExtension is case-sensitive, like the storage layer it mirrors.
func matchExtension(name string, exts []string) (string, bool) {
	for _, ext := range exts {
		if len(name) > len(ext) && strings.HasSuffix(name, ext) {
			return ext, true
		}
	}
	return "", false
}
