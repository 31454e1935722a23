package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const configFileName = ".kocharc.yaml"

// config mirrors the optional YAML file; command line flags win over it.
type config struct {
	Prompt      string `yaml:"prompt"`
	HistoryFile string `yaml:"history_file"`
	Color       bool   `yaml:"color"`
	Style       string `yaml:"style"`
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
	LogFile     string `yaml:"log_file"`
	Seed        int64  `yaml:"seed"`
}

func defaultConfig() config {
	return config{
		Prompt:    ">> ",
		Color:     true,
		Style:     "monokai",
		LogLevel:  "warn",
		LogFormat: "text",
	}
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, configFileName)
}

// loadConfig reads path over the defaults. A missing file is only an error
// when the user named it explicitly.
func loadConfig(path string, explicit bool) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}
