package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONFIG_FILE", "LOG_LEVEL", "VEHICLES", "VEHICLE_CAPACITY", "STRATEGY",
		"DISTANCE_MODE", "TIME_BUDGET", "MAX_ITERATIONS", "SHIFT_HOURS", "SERVICE_MINUTES",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, 4, cfg.Vehicles)
	assert.Equal(t, 25, cfg.Capacity)
	assert.Equal(t, "search", cfg.Strategy)
	assert.Equal(t, "geodesic", cfg.DistanceMode)
	assert.Equal(t, 2*time.Second, cfg.TimeBudget)
	assert.Equal(t, 8.0, cfg.ShiftHours)
	assert.Equal(t, 10.0, cfg.ServiceMinutes)
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("VEHICLES", "7")
	t.Setenv("STRATEGY", "sweep")
	t.Setenv("TIME_BUDGET", "500ms")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SHIFT_HOURS", "6.5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Vehicles)
	assert.Equal(t, "sweep", cfg.Strategy)
	assert.Equal(t, 500*time.Millisecond, cfg.TimeBudget)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, 6.5, cfg.ShiftHours)
}

func TestLoadYAMLFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "routeplan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"vehicles: 3\ncapacity: 50\nstrategy: sweep\ntime_budget: 10s\nservice_minutes: 5\n",
	), 0o644))
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Vehicles)
	assert.Equal(t, 50, cfg.Capacity)
	assert.Equal(t, "sweep", cfg.Strategy)
	assert.Equal(t, 10*time.Second, cfg.TimeBudget)
	assert.Equal(t, 5.0, cfg.ServiceMinutes)
	// untouched fields keep defaults
	assert.Equal(t, 8.0, cfg.ShiftHours)
}

func TestEnvBeatsFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "routeplan.yaml")
	require.NoError(t, os.WriteFile(path, []byte("vehicles: 3\n"), 0o644))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("VEHICLES", "9")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Vehicles)
}

func TestLoadRejectsBadValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("STRATEGY", "simulated-annealing")
	_, err := Load()
	require.Error(t, err)

	clearEnv(t)
	t.Setenv("VEHICLES", "0")
	_, err = Load()
	require.Error(t, err)

	clearEnv(t)
	t.Setenv("SHIFT_HOURS", "0")
	_, err = Load()
	require.Error(t, err)
}

func TestLoadMissingConfigFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))
	_, err := Load()
	require.Error(t, err)
}
