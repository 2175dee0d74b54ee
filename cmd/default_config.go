package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/inference-sim/cpusched/sim"
	"github.com/inference-sim/cpusched/sim/workload"
)

// ServerConfig holds the HTTP transport settings.
type ServerConfig struct {
	Addr      string `yaml:"addr"`
	BodyLimit int    `yaml:"body_limit"` // bytes
}

// Config represents the full defaults.yaml structure.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type Config struct {
	Version  string             `yaml:"version"`
	Selector sim.SelectorConfig `yaml:"selector"`
	Presets  []workload.Preset  `yaml:"presets"`
	Server   ServerConfig       `yaml:"server"`
}

// builtinConfig is used when no defaults file is present.
func builtinConfig() Config {
	return Config{
		Version:  "1",
		Selector: sim.DefaultSelectorConfig(),
		Presets:  workload.BuiltinPresets(),
		Server:   ServerConfig{Addr: ":8080", BodyLimit: 1 << 20},
	}
}

// loadDefaultsConfig parses path into a Config layered over builtinConfig.
// Uses strict field checking: typos in the file are errors. A missing file
// is only an error when required is set.
func loadDefaultsConfig(path string, required bool) (Config, error) {
	cfg := builtinConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			logrus.Debugf("defaults file %s not found, using built-in defaults", path)
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading defaults file: %w", err)
	}

	var file Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return cfg, fmt.Errorf("parsing defaults YAML %s: %w", path, err)
	}

	if file.Version != "" {
		cfg.Version = file.Version
	}
	// Zero selector fields fall back inside NewSelector.
	cfg.Selector = file.Selector
	cfg.Presets = workload.MergePresets(cfg.Presets, file.Presets)
	if file.Server.Addr != "" {
		cfg.Server.Addr = file.Server.Addr
	}
	if file.Server.BodyLimit > 0 {
		cfg.Server.BodyLimit = file.Server.BodyLimit
	}
	return cfg, nil
}
