package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/sepia/internal/config"
	apperr "github.com/GriffinCanCode/sepia/internal/errors"
)

var envVars = []string{
	"SEPIA_INTERVAL", "SEPIA_VERBOSE", "SEPIA_DIR", "SEPIA_MOTION_TRIGGERED",
	"SEPIA_SENSITIVITY", "SEPIA_HASH", "SEPIA_LOG_FILE", "SEPIA_MONITOR_ADDR", "SEPIA_GRPC_ADDR",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, v := range envVars {
		t.Setenv(v, "")
	}
}

func parse(t *testing.T, args ...string) (*config.Config, error) {
	t.Helper()
	f := &flags{}
	cmd := &cobra.Command{Use: "sepia"}
	bindFlags(cmd, f)
	require.NoError(t, cmd.ParseFlags(args))
	return resolveConfig(cmd, f)
}

func TestRootCommand(t *testing.T) {
	if RootCmd.Use != "sepia" {
		t.Errorf("Use = %q, want %q", RootCmd.Use, "sepia")
	}
	if RootCmd.Short == "" || RootCmd.Long == "" {
		t.Error("expected Short and Long descriptions to be set")
	}

	shorthands := map[string]string{
		"time": "t", "verbose": "v", "dir": "d", "motion-triggered": "m", "sensitivity": "s",
	}
	for name, short := range shorthands {
		f := RootCmd.Flags().Lookup(name)
		if f == nil {
			t.Errorf("expected --%s flag to be registered", name)
			continue
		}
		if f.Shorthand != short {
			t.Errorf("--%s shorthand = %q, want %q", name, f.Shorthand, short)
		}
	}
	for _, name := range []string{"hash", "log-file", "monitor-addr", "grpc-addr", "config"} {
		if RootCmd.Flags().Lookup(name) == nil {
			t.Errorf("expected --%s flag to be registered", name)
		}
	}
}

func TestResolveConfigDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := parse(t)
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.IntervalSeconds)
	assert.False(t, cfg.MotionTriggered)
	assert.Equal(t, 10, cfg.Sensitivity)
	assert.Equal(t, "", cfg.Dir)
	assert.Equal(t, "phash", cfg.HashKind)
}

func TestResolveConfigFlags(t *testing.T) {
	clearEnv(t)

	cfg, err := parse(t, "-t", "5", "-m", "-s", "10", "-d", "/tmp/shots", "-v", "--hash", "dhash")
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.IntervalSeconds)
	assert.True(t, cfg.MotionTriggered)
	assert.Equal(t, 10, cfg.Sensitivity)
	assert.Equal(t, "/tmp/shots", cfg.Dir)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, "dhash", cfg.HashKind)
}

func TestResolveConfigPrecedence(t *testing.T) {
	clearEnv(t)
	t.Setenv("SEPIA_INTERVAL", "2")
	t.Setenv("SEPIA_DIR", "/from/env")
	t.Setenv("SEPIA_HASH", "ahash")

	path := filepath.Join(t.TempDir(), "sepia.yaml")
	require.NoError(t, os.WriteFile(path, []byte("interval: 3\ndir: /from/file\n"), 0o644))

	cfg, err := parse(t, "--config", path, "-t", "4")
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.IntervalSeconds, "flag beats file")
	assert.Equal(t, "/from/file", cfg.Dir, "file beats env")
	assert.Equal(t, "ahash", cfg.HashKind, "env applies when nothing overrides it")
}

func TestSensitivityRequiresMotionTriggered(t *testing.T) {
	clearEnv(t)

	_, err := parse(t, "-s", "10")
	assert.True(t, apperr.IsCode(err, apperr.CodeConfig))

	t.Setenv("SEPIA_MOTION_TRIGGERED", "true")
	cfg, err := parse(t, "-s", "10")
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Sensitivity)
}

func TestResolveConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"zero interval", []string{"-t", "0"}},
		{"negative sensitivity", []string{"-m", "-s", "-1"}},
		{"sensitivity beyond hash range", []string{"-m", "-s", "65"}},
		{"missing config file", []string{"--config", "/does/not/exist.yaml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			_, err := parse(t, tt.args...)
			if !apperr.IsCode(err, apperr.CodeConfig) {
				t.Errorf("resolveConfig(%v) error = %v, want CodeConfig", tt.args, err)
			}
		})
	}
}
