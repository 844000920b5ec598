package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFakeEngine(t *testing.T, dir string) string {
	t.Helper()
	exe := filepath.Join(dir, "nastrn")
	require.NoError(t, os.WriteFile(exe, []byte("#!/bin/sh\n"), 0755))
	return exe
}

func validConfig(t *testing.T) *Config {
	t.Helper()
	dir := t.TempDir()
	cfg := Default()
	cfg.Executable = writeFakeEngine(t, dir)
	cfg.RFDir = dir
	return cfg
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, DefaultDBMemWords, cfg.DBMemWords)
	assert.Equal(t, DefaultOpenCoreWords, cfg.OpenCoreWords)
	assert.Equal(t, StrategySubprocess, cfg.Strategy)
	assert.Equal(t, DefaultTimeout, cfg.TimeoutDuration())
}

func TestValidate(t *testing.T) {
	t.Run("valid config passes", func(t *testing.T) {
		cfg := validConfig(t)
		assert.NoError(t, cfg.Validate())
	})

	t.Run("open core over capacity is a config error", func(t *testing.T) {
		cfg := validConfig(t)
		cfg.OpenCoreWords = OpenCoreCapacityWords + 1

		err := cfg.Validate()
		require.Error(t, err)
		var ce *ConfigError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, "open_core_words", ce.Field)
	})

	t.Run("missing rf dir", func(t *testing.T) {
		cfg := validConfig(t)
		cfg.RFDir = filepath.Join(t.TempDir(), "does-not-exist")

		var ce *ConfigError
		require.ErrorAs(t, cfg.Validate(), &ce)
		assert.Equal(t, "rf_dir", ce.Field)
	})

	t.Run("missing executable in subprocess mode", func(t *testing.T) {
		cfg := validConfig(t)
		cfg.Executable = filepath.Join(t.TempDir(), "nope")

		var ce *ConfigError
		require.ErrorAs(t, cfg.Validate(), &ce)
		assert.Equal(t, "executable", ce.Field)
	})

	t.Run("inprocess mode needs no executable", func(t *testing.T) {
		cfg := validConfig(t)
		cfg.Strategy = StrategyInProcess
		cfg.Executable = ""
		assert.NoError(t, cfg.Validate())
	})

	t.Run("unknown strategy", func(t *testing.T) {
		cfg := validConfig(t)
		cfg.Strategy = "reentrant"

		var ce *ConfigError
		require.ErrorAs(t, cfg.Validate(), &ce)
		assert.Equal(t, "strategy", ce.Field)
	})

	t.Run("bad timeout string", func(t *testing.T) {
		cfg := validConfig(t)
		cfg.Timeout = "five minutes"

		var ce *ConfigError
		require.ErrorAs(t, cfg.Validate(), &ce)
		assert.Equal(t, "timeout", ce.Field)
	})
}

func TestLoadSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".nastrun", "config.yaml")

	cfg := Default()
	cfg.Executable = "/opt/nastran/bin/nastrn"
	cfg.RFDir = "/opt/nastran/rf"
	cfg.Timeout = "10m"
	cfg.RetainScratch = true
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Executable, loaded.Executable)
	assert.Equal(t, cfg.RFDir, loaded.RFDir)
	assert.Equal(t, 10*time.Minute, loaded.TimeoutDuration())
	assert.True(t, loaded.RetainScratch)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "no-such.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultDBMemWords, cfg.DBMemWords)
}

func TestTimeoutDuration_Fallback(t *testing.T) {
	cfg := Default()
	cfg.Timeout = "garbage"
	assert.Equal(t, DefaultTimeout, cfg.TimeoutDuration())

	cfg.Timeout = "-3s"
	assert.Equal(t, DefaultTimeout, cfg.TimeoutDuration())
}
