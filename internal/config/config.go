// Package config handles configuration loading for the mesh tools.
package config

import (
	"fmt"

	"github.com/Faultbox/trimesh/pkg/formats"
	"github.com/Faultbox/trimesh/pkg/mesh"
)

// Config holds all tool settings.
type Config struct {
	Pipeline PipelineConfig `yaml:"pipeline" toml:"pipeline"`
	Viewer   ViewerConfig   `yaml:"viewer" toml:"viewer"`
	Logging  LoggingConfig  `yaml:"logging" toml:"logging"`
}

// PipelineConfig controls parsing, normalization and packing.
type PipelineConfig struct {
	Normalize      bool    `yaml:"normalize" toml:"normalize"`
	TargetRadius   float32 `yaml:"target_radius" toml:"target_radius"`
	IndexPolicy    string  `yaml:"index_policy" toml:"index_policy"` // legacy, lenient or strict
	FillMissingUVs bool    `yaml:"fill_missing_uvs" toml:"fill_missing_uvs"`
	Topology       string  `yaml:"topology" toml:"topology"` // Primitive tag recorded by the packer
	Workers        int     `yaml:"workers" toml:"workers"`   // Meshes loaded in parallel
}

// ViewerConfig holds meshview window settings.
type ViewerConfig struct {
	Width       int  `yaml:"width" toml:"width"`
	Height      int  `yaml:"height" toml:"height"`
	Fullscreen  bool `yaml:"fullscreen" toml:"fullscreen"`
	VSync       bool `yaml:"vsync" toml:"vsync"`
	Watch       bool `yaml:"watch" toml:"watch"` // Reload the mesh when the file changes
	Interleaved bool `yaml:"interleaved" toml:"interleaved"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			Normalize:      true,
			TargetRadius:   2,
			IndexPolicy:    "legacy",
			FillMissingUVs: true,
			Topology:       "triangles",
			Workers:        4,
		},
		Viewer: ViewerConfig{
			Width:  1280,
			Height: 720,
			VSync:  true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate checks values that cannot be represented by the field types alone.
func (c *Config) Validate() error {
	if !(c.Pipeline.TargetRadius > 0) {
		return fmt.Errorf("pipeline.target_radius must be positive, got %v", c.Pipeline.TargetRadius)
	}
	if _, err := formats.ParseIndexPolicy(c.Pipeline.IndexPolicy); err != nil {
		return fmt.Errorf("pipeline.index_policy: %w", err)
	}
	if _, err := mesh.ParseTopology(c.Pipeline.Topology); err != nil {
		return fmt.Errorf("pipeline.topology: %w", err)
	}
	if c.Pipeline.Workers < 0 {
		return fmt.Errorf("pipeline.workers must not be negative, got %d", c.Pipeline.Workers)
	}
	if c.Viewer.Width <= 0 || c.Viewer.Height <= 0 {
		return fmt.Errorf("viewer size must be positive, got %dx%d", c.Viewer.Width, c.Viewer.Height)
	}
	return nil
}

// IndexPolicy returns the parsed pipeline.index_policy. Call Validate first.
func (c *Config) IndexPolicy() formats.IndexPolicy {
	p, _ := formats.ParseIndexPolicy(c.Pipeline.IndexPolicy)
	return p
}

// Topology returns the parsed pipeline.topology. Call Validate first.
func (c *Config) Topology() mesh.Topology {
	t, _ := mesh.ParseTopology(c.Pipeline.Topology)
	return t
}
