// Package tneoconfig loads a Config (see the root package) from TOML, using
// github.com/BurntSushi/toml.
package tneoconfig

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/lightsp33d/tneo"
)

// File mirrors tneo.Config field-for-field but with TOML-friendly types:
// DiagnosticRateLimits becomes a slice of windows (TOML has no duration-keyed
// map), and OnDeadlock/Logger have no file representation at all - callers
// set those on the returned Config themselves, after Load.
type File struct {
	Priorities int `toml:"priorities"`
	MaxTasks   int `toml:"max_tasks"`
	WheelSize  int `toml:"wheel_size"`

	DisableMutex                bool `toml:"disable_mutex"`
	DisableDeadlockDetection    bool `toml:"disable_deadlock_detection"`
	DisableRecursiveMutex       bool `toml:"disable_recursive_mutex"`
	DisableObjectIdentityChecks bool `toml:"disable_object_identity_checks"`
	DisableISRContextChecks     bool `toml:"disable_isr_context_checks"`

	DiagnosticRateLimits []RateWindow `toml:"diagnostic_rate_limit"`
}

// RateWindow is one entry of the diagnostic_rate_limit array-of-tables.
type RateWindow struct {
	Window string `toml:"window"` // parsed with time.ParseDuration, e.g. "500ms"
	Max    int    `toml:"max"`
}

// Load parses path as TOML into a tneo.Config. The result still needs its
// Logger and OnDeadlock fields set by the caller; NewKernel applies the same
// defaulting/validation either way.
func Load(path string) (tneo.Config, error) {
	var f File
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return tneo.Config{}, fmt.Errorf("tneoconfig: decode %s: %w", path, err)
	}
	return f.toConfig()
}

// Decode parses TOML text directly, for callers embedding configuration
// rather than reading it from a file.
func Decode(text string) (tneo.Config, error) {
	var f File
	if _, err := toml.Decode(text, &f); err != nil {
		return tneo.Config{}, fmt.Errorf("tneoconfig: decode: %w", err)
	}
	return f.toConfig()
}

func (f File) toConfig() (tneo.Config, error) {
	cfg := tneo.Config{
		Priorities:                  f.Priorities,
		MaxTasks:                    f.MaxTasks,
		WheelSize:                   f.WheelSize,
		DisableMutex:                f.DisableMutex,
		DisableDeadlockDetection:    f.DisableDeadlockDetection,
		DisableRecursiveMutex:       f.DisableRecursiveMutex,
		DisableObjectIdentityChecks: f.DisableObjectIdentityChecks,
		DisableISRContextChecks:     f.DisableISRContextChecks,
	}
	if len(f.DiagnosticRateLimits) > 0 {
		cfg.DiagnosticRateLimits = make(map[time.Duration]int, len(f.DiagnosticRateLimits))
		for _, rw := range f.DiagnosticRateLimits {
			d, err := time.ParseDuration(rw.Window)
			if err != nil {
				return tneo.Config{}, fmt.Errorf("tneoconfig: rate window %q: %w", rw.Window, err)
			}
			cfg.DiagnosticRateLimits[d] = rw.Max
		}
	}
	return cfg, nil
}
