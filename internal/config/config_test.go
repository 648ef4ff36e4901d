package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/orrery/internal/system"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "orrery.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Nil(t, cfg.Sim.Seed)
	assert.Equal(t, system.DefaultGenConfig(), cfg.Sim.GenConfig())
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeFile(t, `
sim:
  seed: 77
  system_radius: 3.5
  pirate_count: 0
engine:
  interval: 10ms
  speed: 4
api:
  port: 9090
journal:
  enabled: false
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	require.NotNil(t, cfg.Sim.Seed)
	assert.Equal(t, int64(77), *cfg.Sim.Seed)
	assert.Equal(t, 3.5, cfg.Sim.SystemRadius)
	assert.Zero(t, cfg.Sim.PirateCount)
	assert.Equal(t, 10*time.Millisecond, cfg.Engine.Interval)
	assert.Equal(t, 4.0, cfg.Engine.Speed)
	assert.Equal(t, 9090, cfg.API.Port)
	assert.False(t, cfg.Journal.Enabled)

	// Untouched fields keep their defaults.
	def := Default()
	assert.Equal(t, def.Sim.SunRadius, cfg.Sim.SunRadius)
	assert.Equal(t, def.Sim.TraderCost, cfg.Sim.TraderCost)
	assert.Equal(t, def.API.RateBurst, cfg.API.RateBurst)
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	t.Setenv("ORRERY_ADMIN_KEY", "")
	t.Setenv("ORRERY_SEED", "")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ORRERY_ADMIN_KEY", "s3cret")
	t.Setenv("ORRERY_SEED", "1234")
	cfg, err := Load(writeFile(t, "sim:\n  seed: 5\n"))
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.API.AdminKey)
	require.NotNil(t, cfg.Sim.Seed)
	assert.Equal(t, int64(1234), *cfg.Sim.Seed)

	t.Setenv("ORRERY_SEED", "not-a-number")
	_, err = Load("")
	assert.Error(t, err)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "sim: [not, a, map]\n"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "sim:\n  moon_prob: 1.5\n"))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"sun radius":       func(c *Config) { c.Sim.SunRadius = 0 },
		"system radius":    func(c *Config) { c.Sim.SystemRadius = c.Sim.SunRadius },
		"size range":       func(c *Config) { c.Sim.SizeMin, c.Sim.SizeMax = 0.4, 0.2 },
		"feature prob":     func(c *Config) { c.Sim.FeatureProb = -0.1 },
		"kill probability": func(c *Config) { c.Sim.KillProbability = 2 },
		"deceleration":     func(c *Config) { c.Sim.Acceleration = 0.9 },
		"trader cost":      func(c *Config) { c.Sim.TraderCost = 0 },
		"raid range":       func(c *Config) { c.Sim.RaidRange = c.Sim.DetectionRange * 2 },
		"negative miners":  func(c *Config) { c.Sim.MinerCount = -1 },
		"interval":         func(c *Config) { c.Engine.Interval = 0 },
		"port":             func(c *Config) { c.API.Port = 70000 },
		"journal path":     func(c *Config) { c.Journal.Path = "" },
	}
	for name, mutate := range cases {
		cfg := Default()
		mutate(&cfg)
		assert.ErrorIs(t, cfg.Validate(), ErrInvalid, name)
	}

	cfg := Default()
	cfg.API.Enabled = false
	cfg.API.Port = 0
	cfg.Journal.Enabled = false
	cfg.Journal.Path = ""
	assert.NoError(t, cfg.Validate(), "disabled sections are not checked")
}
