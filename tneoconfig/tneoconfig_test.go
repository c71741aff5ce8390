package tneoconfig

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDecodeDefaults(t *testing.T) {
	cfg, err := Decode(`
priorities = 16
max_tasks = 8
wheel_size = 32
disable_recursive_mutex = true
`)
	require.NoError(t, err)
	require.Equal(t, 16, cfg.Priorities)
	require.Equal(t, 8, cfg.MaxTasks)
	require.Equal(t, 32, cfg.WheelSize)
	require.True(t, cfg.DisableRecursiveMutex)
	require.False(t, cfg.DisableMutex)
}

func TestDecodeRateLimits(t *testing.T) {
	cfg, err := Decode(`
[[diagnostic_rate_limit]]
window = "500ms"
max = 1

[[diagnostic_rate_limit]]
window = "1m"
max = 20
`)
	require.NoError(t, err)
	require.Equal(t, 1, cfg.DiagnosticRateLimits[500*time.Millisecond])
	require.Equal(t, 20, cfg.DiagnosticRateLimits[time.Minute])
}

func TestDecodeBadDuration(t *testing.T) {
	_, err := Decode(`
[[diagnostic_rate_limit]]
window = "not-a-duration"
max = 1
`)
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/does/not/exist.toml")
	require.Error(t, err)
}
