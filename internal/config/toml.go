// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/splits/internal/model"
	"github.com/verte-zerg/splits/internal/timefmt"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Segments []SegmentConfig `toml:"segments"`
	Stack    StackConfig     `toml:"stack"`
	Timer    TimerConfig     `toml:"timer"`
	Store    StoreConfig     `toml:"store"`
}

// SegmentConfig maps one [[segments]] entry.
type SegmentConfig struct {
	Name        string  `toml:"name"`
	Description string  `toml:"description"`
	Best        *string `toml:"best"`
}

// StackConfig maps stack-wide settings.
type StackConfig struct {
	Best *string `toml:"best"`
}

// TimerConfig maps timer-related settings.
type TimerConfig struct {
	IntervalMs *int `toml:"interval-ms"`
}

// StoreConfig maps persistence settings.
type StoreConfig struct {
	Path *string `toml:"path"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// Seed converts the configured segments into a stack seed.
func (c FileConfig) Seed() (model.Seed, error) {
	seed := model.Seed{Segments: make([]model.SeedSegment, 0, len(c.Segments))}
	for i, seg := range c.Segments {
		name := strings.TrimSpace(seg.Name)
		if name == "" {
			return model.Seed{}, fmt.Errorf("segment %d: name is empty", i+1)
		}
		best, err := parseBest(seg.Best)
		if err != nil {
			return model.Seed{}, fmt.Errorf("segment %q: best: %w", name, err)
		}
		seed.Segments = append(seed.Segments, model.SeedSegment{
			Name:         name,
			Description:  seg.Description,
			PersonalBest: best,
		})
	}
	best, err := parseBest(c.Stack.Best)
	if err != nil {
		return model.Seed{}, fmt.Errorf("stack best: %w", err)
	}
	seed.PersonalBest = best
	return seed, nil
}

// Interval returns the configured sampler interval, zero when unset.
func (c FileConfig) Interval() (time.Duration, error) {
	if c.Timer.IntervalMs == nil {
		return 0, nil
	}
	if *c.Timer.IntervalMs <= 0 {
		return 0, fmt.Errorf("timer interval-ms must be positive")
	}
	return time.Duration(*c.Timer.IntervalMs) * time.Millisecond, nil
}

func parseBest(value *string) (*int64, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	ms, err := timefmt.Parse(*value)
	if err != nil {
		return nil, err
	}
	return model.Best(ms), nil
}

// Template is written by `splits init` as a starting config.
const Template = `# splits configuration

# Segments are timed in order. best is an optional personal best.
[[segments]]
name = "Leave home"
description = "Door to the station"
best = "6:34.11"

[[segments]]
name = "Train"
description = "Platform to destination"

[stack]
# best = "31:39.11"

[timer]
interval-ms = 10

[store]
# path = "/path/to/splits.db"
`
