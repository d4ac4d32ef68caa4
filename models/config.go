// Package models defines data structures for configuration, chunks and results.
package models

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RecommendationConfig tunes the Product-schema related-items filter.
type RecommendationConfig struct {
	// MinOutsideMainHits is how many price chunks outside <main> may fire
	// before distant price chunks start being dropped.
	MinOutsideMainHits int `yaml:"min_outside_main_hits"`
	// MinSharedDepth is the number of leading path segments a later price
	// chunk must share with the first one to survive.
	MinSharedDepth int `yaml:"min_shared_depth"`
}

// Thresholds are minimum text lengths (in characters) per chunk kind.
type Thresholds struct {
	MainText         int `yaml:"main_text"`
	MainTable        int `yaml:"main_table"`
	MainList         int `yaml:"main_list"`
	MainMediaCaption int `yaml:"main_media_caption"`
	HighValueMaxText int `yaml:"high_value_max_text"`

	NoMainText  int `yaml:"nomain_text"`
	NoMainForm  int `yaml:"nomain_form"`
	NoMainMedia int `yaml:"nomain_media"`
}

// Config holds runtime configuration. Values come from an optional YAML
// file; CLI flags override them.
type Config struct {
	MaxDepth              int                  `yaml:"max_depth"`
	FrameworkDataMaxChars int                  `yaml:"framework_data_max_chars"`
	Recommendation        RecommendationConfig `yaml:"recommendation"`
	Thresholds            Thresholds           `yaml:"thresholds"`
	DetectLanguage        bool                 `yaml:"detect_language"`
	TermsFile             string               `yaml:"terms_file"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		MaxDepth:              100,
		FrameworkDataMaxChars: 2000,
		Recommendation: RecommendationConfig{
			MinOutsideMainHits: 10,
			MinSharedDepth:     3,
		},
		Thresholds: Thresholds{
			MainText:         30,
			MainTable:        20,
			MainList:         20,
			MainMediaCaption: 10,
			HighValueMaxText: 120,
			NoMainText:       15,
			NoMainForm:       5,
			NoMainMedia:      5,
		},
	}
}

// LoadConfig reads a YAML config file on top of the defaults. An empty
// path returns the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}
