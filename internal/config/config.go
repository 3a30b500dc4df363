// Package config handles recorder configuration
package config

import (
	"os"
	"strconv"
	"time"

	apperr "github.com/GriffinCanCode/sepia/internal/errors"
	"github.com/GriffinCanCode/sepia/internal/phash"
)

type Config struct {
	IntervalSeconds int    `yaml:"interval"`
	Verbose         bool   `yaml:"verbose"`
	Dir             string `yaml:"dir"`
	MotionTriggered bool   `yaml:"motion_triggered"`
	Sensitivity     int    `yaml:"sensitivity"`
	HashKind        string `yaml:"hash"`
	LogFile         string `yaml:"log_file"`
	MonitorAddr     string `yaml:"monitor_addr"` // empty disables the HTTP/WebSocket monitor
	GRPCAddr        string `yaml:"grpc_addr"`    // empty disables the gRPC health service
}

// Load returns the defaults, overridden by SEPIA_* environment variables.
func Load() *Config {
	return &Config{
		IntervalSeconds: getEnvInt("SEPIA_INTERVAL", DefaultIntervalSeconds),
		Verbose:         getEnvBool("SEPIA_VERBOSE", false),
		Dir:             getEnv("SEPIA_DIR", ""),
		MotionTriggered: getEnvBool("SEPIA_MOTION_TRIGGERED", false),
		Sensitivity:     getEnvInt("SEPIA_SENSITIVITY", DefaultSensitivity),
		HashKind:        getEnv("SEPIA_HASH", DefaultHashKind),
		LogFile:         getEnv("SEPIA_LOG_FILE", DefaultLogFile),
		MonitorAddr:     getEnv("SEPIA_MONITOR_ADDR", ""),
		GRPCAddr:        getEnv("SEPIA_GRPC_ADDR", ""),
	}
}

// Interval is the pause between ticks.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

// EffectiveSensitivity is the discard threshold the engine applies.
// With comparison disabled every capture is kept, which is a threshold of 0.
func (c *Config) EffectiveSensitivity() int {
	if !c.MotionTriggered {
		return 0
	}
	return c.Sensitivity
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.IntervalSeconds < 1 {
		return apperr.Newf(apperr.CodeConfig, "interval must be at least 1 second, got %d", c.IntervalSeconds)
	}
	if c.Sensitivity < 0 {
		return apperr.Newf(apperr.CodeConfig, "sensitivity must not be negative, got %d", c.Sensitivity)
	}
	if c.MotionTriggered && c.Sensitivity > phash.MaxDistance {
		return apperr.Newf(apperr.CodeConfig, "sensitivity must be at most %d, got %d", phash.MaxDistance, c.Sensitivity)
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		return v == "true" || v == "1"
	}
	return def
}
