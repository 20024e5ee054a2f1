// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Manifest describes one load run. Relative paths are resolved against the
// manifest's directory.
type Manifest struct {
	DatabaseURL  string `yaml:"database_url"`
	DatabaseType string `yaml:"database_type"`
	XMLDir       string `yaml:"xml_dir"`
	Responses    string `yaml:"responses"`
	BatchSize    int    `yaml:"batch_size"`
	CacheSize    int    `yaml:"cache_size"`
	ParseWorkers int    `yaml:"parse_workers"`
}

// LoadManifest reads a YAML manifest. Unknown keys are errors.
func LoadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
		return Manifest{}, fmt.Errorf("parse manifest %s: %w", filepath.Base(path), err)
	}
	if m.BatchSize < 0 || m.CacheSize < 0 || m.ParseWorkers < 0 {
		return Manifest{}, fmt.Errorf("manifest %s: sizes must not be negative", filepath.Base(path))
	}

	base := filepath.Dir(path)
	m.XMLDir = resolvePath(base, m.XMLDir)
	m.Responses = resolvePath(base, m.Responses)
	return m, nil
}

// Options returns the loader options set by the manifest.
func (m Manifest) Options() Options {
	return Options{
		BatchSize:    m.BatchSize,
		CacheSize:    m.CacheSize,
		ParseWorkers: m.ParseWorkers,
	}
}

func resolvePath(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
