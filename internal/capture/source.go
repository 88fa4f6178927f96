// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package capture

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Source pairs a scan root with the file extensions it holds and the app that
// opens them.
type Source struct {
	Root       string   `yaml:"root" json:"root"`
	Extensions []string `yaml:"extensions" json:"extensions"`
	App        string   `yaml:"app" json:"app"`
}

// DefaultSources returns the capture folders of a Flipper-style storage layout
// rooted at base.
func DefaultSources(base string) []Source {
	return []Source{
		{Root: filepath.Join(base, "subghz"), Extensions: []string{".sub"}, App: "Sub-GHz"},
		{Root: filepath.Join(base, "nfc"), Extensions: []string{".nfc"}, App: "NFC"},
		{Root: filepath.Join(base, "lfrfid"), Extensions: []string{".rfid"}, App: "125 kHz RFID"},
	}
}

type sourcesFile struct {
	Sources []Source `yaml:"sources"`
}

// LoadSources reads source rules from a YAML file of the form
//
//	sources:
//	  - root: /ext/subghz
//	    extensions: [".sub"]
//	    app: Sub-GHz
func LoadSources(path string) ([]Source, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}

	var f sourcesFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse sources file: %w", err)
	}
	if len(f.Sources) == 0 {
		return nil, fmt.Errorf("sources file %s defines no sources", path)
	}
	for i, s := range f.Sources {
		if s.Root == "" {
			return nil, fmt.Errorf("source %d: root is required", i)
		}
		if len(s.Extensions) == 0 {
			return nil, fmt.Errorf("source %d (%s): at least one extension is required", i, s.Root)
		}
		if s.App == "" {
			return nil, fmt.Errorf("source %d (%s): app is required", i, s.Root)
		}
	}
	return f.Sources, nil
}
