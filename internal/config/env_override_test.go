package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvOverrides(t *testing.T) {
	t.Run("NASTRUN_EXE overrides executable", func(t *testing.T) {
		t.Setenv(EnvExecutable, "/custom/nastrn")

		cfg := Default()
		cfg.Executable = "/file/value"
		cfg.applyEnvOverrides()

		assert.Equal(t, "/custom/nastrn", cfg.Executable)
	})

	t.Run("memory overrides parse as integers", func(t *testing.T) {
		t.Setenv(EnvDBMem, "24000000")
		t.Setenv(EnvOpenCore, "4000000")

		cfg := Default()
		cfg.applyEnvOverrides()

		assert.Equal(t, 24_000_000, cfg.DBMemWords)
		assert.Equal(t, 4_000_000, cfg.OpenCoreWords)
	})

	t.Run("malformed memory override is ignored", func(t *testing.T) {
		t.Setenv(EnvDBMem, "lots")

		cfg := Default()
		cfg.applyEnvOverrides()

		assert.Equal(t, DefaultDBMemWords, cfg.DBMemWords)
	})

	t.Run("strategy and scratch root", func(t *testing.T) {
		t.Setenv(EnvStrategy, StrategyInProcess)
		t.Setenv(EnvScratchRoot, "/var/scratch")

		cfg := Default()
		cfg.applyEnvOverrides()

		assert.Equal(t, StrategyInProcess, cfg.Strategy)
		assert.Equal(t, "/var/scratch", cfg.ScratchRoot)
	})
}
