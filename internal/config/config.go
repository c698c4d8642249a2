package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config carries planner defaults. Precedence, lowest to highest:
// built-in defaults, then an optional YAML file named by CONFIG_FILE,
// then environment variables.
type Config struct {
	LogLevel slog.Level

	Vehicles     int
	Capacity     int
	Strategy     string
	DistanceMode string

	TimeBudget    time.Duration
	MaxIterations int

	ShiftHours     float64
	ServiceMinutes float64
}

// fileConfig mirrors Config for YAML decoding; pointers distinguish
// "absent" from zero values.
type fileConfig struct {
	LogLevel       *string  `yaml:"log_level"`
	Vehicles       *int     `yaml:"vehicles"`
	Capacity       *int     `yaml:"capacity"`
	Strategy       *string  `yaml:"strategy"`
	DistanceMode   *string  `yaml:"distance_mode"`
	TimeBudget     *string  `yaml:"time_budget"`
	MaxIterations  *int     `yaml:"max_iterations"`
	ShiftHours     *float64 `yaml:"shift_hours"`
	ServiceMinutes *float64 `yaml:"service_minutes"`
}

func Load() (*Config, error) {
	cfg := &Config{
		LogLevel:       slog.LevelInfo,
		Vehicles:       4,
		Capacity:       25,
		Strategy:       "search",
		DistanceMode:   "geodesic",
		TimeBudget:     2 * time.Second,
		MaxIterations:  0,
		ShiftHours:     8,
		ServiceMinutes: 10,
	}
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return err
	}
	if fc.LogLevel != nil {
		c.LogLevel = parseLogLevel(*fc.LogLevel, c.LogLevel)
	}
	if fc.Vehicles != nil {
		c.Vehicles = *fc.Vehicles
	}
	if fc.Capacity != nil {
		c.Capacity = *fc.Capacity
	}
	if fc.Strategy != nil {
		c.Strategy = *fc.Strategy
	}
	if fc.DistanceMode != nil {
		c.DistanceMode = *fc.DistanceMode
	}
	if fc.TimeBudget != nil {
		d, err := time.ParseDuration(*fc.TimeBudget)
		if err != nil {
			return fmt.Errorf("time_budget: %w", err)
		}
		c.TimeBudget = d
	}
	if fc.MaxIterations != nil {
		c.MaxIterations = *fc.MaxIterations
	}
	if fc.ShiftHours != nil {
		c.ShiftHours = *fc.ShiftHours
	}
	if fc.ServiceMinutes != nil {
		c.ServiceMinutes = *fc.ServiceMinutes
	}
	return nil
}

func (c *Config) applyEnv() {
	c.LogLevel = getLogLevelEnv("LOG_LEVEL", c.LogLevel)
	c.Vehicles = getIntEnv("VEHICLES", c.Vehicles)
	c.Capacity = getIntEnv("VEHICLE_CAPACITY", c.Capacity)
	c.Strategy = getEnv("STRATEGY", c.Strategy)
	c.DistanceMode = getEnv("DISTANCE_MODE", c.DistanceMode)
	c.TimeBudget = getDurationEnv("TIME_BUDGET", c.TimeBudget)
	c.MaxIterations = getIntEnv("MAX_ITERATIONS", c.MaxIterations)
	c.ShiftHours = getFloatEnv("SHIFT_HOURS", c.ShiftHours)
	c.ServiceMinutes = getFloatEnv("SERVICE_MINUTES", c.ServiceMinutes)
}

func (c *Config) validate() error {
	if c.Vehicles < 1 {
		return fmt.Errorf("vehicles must be >= 1, got %d", c.Vehicles)
	}
	if c.Capacity < 1 {
		return fmt.Errorf("capacity must be >= 1, got %d", c.Capacity)
	}
	if c.Strategy != "search" && c.Strategy != "sweep" {
		return fmt.Errorf("invalid strategy: %s", c.Strategy)
	}
	if c.DistanceMode != "geodesic" && c.DistanceMode != "planar" {
		return fmt.Errorf("invalid distance mode: %s", c.DistanceMode)
	}
	if c.TimeBudget < 0 {
		return fmt.Errorf("time budget must be >= 0")
	}
	if c.MaxIterations < 0 {
		return fmt.Errorf("max iterations must be >= 0")
	}
	if c.ShiftHours <= 0 {
		return fmt.Errorf("shift hours must be > 0, got %v", c.ShiftHours)
	}
	if c.ServiceMinutes < 0 {
		return fmt.Errorf("service minutes must be >= 0, got %v", c.ServiceMinutes)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}

func getIntEnv(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getFloatEnv(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getLogLevelEnv(key string, defaultVal slog.Level) slog.Level {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return parseLogLevel(v, defaultVal)
}

func parseLogLevel(v string, defaultVal slog.Level) slog.Level {
	switch strings.ToLower(v) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return defaultVal
	}
}
