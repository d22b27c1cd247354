// Package config loads game tuning from yaml.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/talgya/hexsweep/internal/engine"
	"github.com/talgya/hexsweep/internal/world"
	"github.com/talgya/hexsweep/internal/zone"
)

// Tuning is the contents of tuning.yaml.
type Tuning struct {
	MineProbability  float64 `yaml:"mine_probability"`
	TokenProbability float64 `yaml:"token_probability"`
	SafeRadius       int     `yaml:"safe_radius"`

	ZoneSpacing    int `yaml:"zone_spacing"`
	ZoneLockRadius int `yaml:"zone_lock_radius"`
	MinUnlockCost  int `yaml:"min_unlock_cost"`

	StartingTokens int `yaml:"starting_tokens"`
	RevealScore    int `yaml:"reveal_score"`

	CascadeBatch       int    `yaml:"cascade_batch"`
	TickIntervalMs     int    `yaml:"tick_interval_ms"`
	AutosaveEveryTicks uint64 `yaml:"autosave_every_ticks"`

	DBPath       string `yaml:"db_path"`
	SnapshotPath string `yaml:"snapshot_path"`
}

// Default returns the standard tuning.
func Default() Tuning {
	return Tuning{
		MineProbability:    0.28,
		TokenProbability:   0.10,
		SafeRadius:         1,
		ZoneSpacing:        6,
		ZoneLockRadius:     2,
		MinUnlockCost:      10,
		StartingTokens:     10,
		RevealScore:        10,
		CascadeBatch:       8,
		TickIntervalMs:     16,
		AutosaveEveryTicks: 300,
		DBPath:             "data/hexsweep.db",
		SnapshotPath:       "data/hexsweep.save.zst",
	}
}

// Load reads tuning from path. A missing file yields Default.
func Load(path string) (Tuning, error) {
	t := Default()
	if path == "" {
		return t, nil
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return t, nil
	}
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return Default(), fmt.Errorf("tuning.yaml: %w", err)
	}
	t.Normalize()
	return t, nil
}

// Normalize replaces out-of-range values with defaults.
func (t *Tuning) Normalize() {
	d := Default()
	if t.MineProbability <= 0 || t.MineProbability >= 1 {
		t.MineProbability = d.MineProbability
	}
	if t.TokenProbability < 0 || t.TokenProbability >= 1 {
		t.TokenProbability = d.TokenProbability
	}
	if t.SafeRadius < 0 {
		t.SafeRadius = d.SafeRadius
	}
	if t.ZoneSpacing <= 0 {
		t.ZoneSpacing = d.ZoneSpacing
	}
	if t.ZoneLockRadius < 0 || t.ZoneLockRadius >= t.ZoneSpacing {
		t.ZoneLockRadius = min(d.ZoneLockRadius, t.ZoneSpacing-1)
	}
	if t.MinUnlockCost <= 0 {
		t.MinUnlockCost = d.MinUnlockCost
	}
	if t.StartingTokens < 0 {
		t.StartingTokens = d.StartingTokens
	}
	if t.RevealScore < 0 {
		t.RevealScore = d.RevealScore
	}
	if t.CascadeBatch <= 0 {
		t.CascadeBatch = d.CascadeBatch
	}
	if t.TickIntervalMs <= 0 {
		t.TickIntervalMs = d.TickIntervalMs
	}
	if t.DBPath == "" {
		t.DBPath = d.DBPath
	}
	if t.SnapshotPath == "" {
		t.SnapshotPath = d.SnapshotPath
	}
}

// Rules converts tuning into engine rules. The seed is set per game.
func (t Tuning) Rules() engine.Rules {
	return engine.Rules{
		Gen: world.GenConfig{
			MineProbability:  t.MineProbability,
			TokenProbability: t.TokenProbability,
			SafeRadius:       t.SafeRadius,
		},
		Zones: zone.Partition{
			Spacing:    t.ZoneSpacing,
			LockRadius: t.ZoneLockRadius,
		},
		StartingTokens: t.StartingTokens,
		RevealScore:    t.RevealScore,
		MinUnlockCost:  t.MinUnlockCost,
		CascadeBatch:   t.CascadeBatch,
	}
}

// TickInterval returns the cascade tick interval.
func (t Tuning) TickInterval() time.Duration {
	return time.Duration(t.TickIntervalMs) * time.Millisecond
}
