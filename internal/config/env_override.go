package config

import (
	"os"
	"strconv"
)

// Environment variables recognized as overrides. These win over the
// config file so that CI and one-off shells can redirect a run without
// editing anything.
const (
	EnvExecutable  = "NASTRUN_EXE"
	EnvRFDir       = "NASTRUN_RFDIR"
	EnvDBMem       = "NASTRUN_DBMEM"
	EnvOpenCore    = "NASTRUN_OCMEM"
	EnvScratchRoot = "NASTRUN_SCRATCH"
	EnvStrategy    = "NASTRUN_STRATEGY"
)

// applyEnvOverrides applies environment variable overrides on top of
// whatever the config file provided.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(EnvExecutable); v != "" {
		c.Executable = v
	}
	if v := os.Getenv(EnvRFDir); v != "" {
		c.RFDir = v
	}
	if v := os.Getenv(EnvScratchRoot); v != "" {
		c.ScratchRoot = v
	}
	if v := os.Getenv(EnvStrategy); v != "" {
		c.Strategy = v
	}
	if v := os.Getenv(EnvDBMem); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.DBMemWords = n
		}
	}
	if v := os.Getenv(EnvOpenCore); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.OpenCoreWords = n
		}
	}
}
