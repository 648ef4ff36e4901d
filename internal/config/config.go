// Package config loads daemon settings: simulation tuning, engine pacing,
// API and journal options. A YAML file overrides the defaults field by
// field; environment variables override the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/talgya/orrery/internal/economy"
	"github.com/talgya/orrery/internal/ships"
	"github.com/talgya/orrery/internal/system"
)

// Config is the full daemon configuration.
type Config struct {
	Sim     SimConfig     `yaml:"sim"`
	Engine  EngineConfig  `yaml:"engine"`
	API     APIConfig     `yaml:"api"`
	Journal JournalConfig `yaml:"journal"`
}

// SimConfig is the simulation's tuning surface.
type SimConfig struct {
	Seed *int64 `yaml:"seed"` // nil draws a fresh seed per run

	// System generation.
	SystemRadius float64 `yaml:"system_radius"`
	SunRadius    float64 `yaml:"sun_radius"`
	MoonProb     float64 `yaml:"moon_prob"`
	FeatureProb  float64 `yaml:"feature_prob"`
	SizeMin      float64 `yaml:"size_min"`
	SizeMax      float64 `yaml:"size_max"`

	// Ships.
	ShipBaseSpeed   float64 `yaml:"ship_base_speed"`
	Acceleration    float64 `yaml:"acceleration"`
	TraderCost      int     `yaml:"trader_cost"`
	MinerCount      int     `yaml:"miner_count"`
	HarvestDuration int     `yaml:"harvest_duration"`
	HarvestVariance int     `yaml:"harvest_variance"`

	// Pirates.
	PirateCount     int     `yaml:"pirate_count"`
	PirateTerritory float64 `yaml:"pirate_territory"`
	DetectionRange  float64 `yaml:"detection_range"`
	RaidRange       float64 `yaml:"raid_range"`
	RaidDuration    int     `yaml:"raid_duration"`
	RaidVariance    int     `yaml:"raid_variance"`
	KillProbability float64 `yaml:"kill_probability"`
	WanderJitter    float64 `yaml:"wander_jitter"`
}

// EngineConfig controls real-time pacing.
type EngineConfig struct {
	Interval    time.Duration `yaml:"interval"`     // Base tick interval at speed 1
	Speed       float64       `yaml:"speed"`        // 0 starts paused
	ReportEvery uint64        `yaml:"report_every"` // Ticks between journal flushes
}

// APIConfig controls the HTTP server.
type APIConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Port        int     `yaml:"port"`
	AdminKey    string  `yaml:"admin_key"`
	RateLimit   float64 `yaml:"rate_limit"` // Requests per second per IP
	RateBurst   int     `yaml:"rate_burst"`
	StreamEvery uint64  `yaml:"stream_every"` // Ticks between stream frames
}

// JournalConfig controls the SQLite telemetry log.
type JournalConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Default returns the stock configuration.
func Default() Config {
	gen := system.DefaultGenConfig()
	return Config{
		Sim: SimConfig{
			SystemRadius: gen.SystemRadius,
			SunRadius:    gen.SunRadius,
			MoonProb:     gen.MoonProb,
			FeatureProb:  gen.FeatureProb,
			SizeMin:      gen.SizeMin,
			SizeMax:      gen.SizeMax,

			ShipBaseSpeed:   0.01,
			Acceleration:    1.05,
			TraderCost:      10,
			MinerCount:      20,
			HarvestDuration: 100,
			HarvestVariance: 20,

			PirateCount:     3,
			PirateTerritory: 0.5,
			DetectionRange:  0.4,
			RaidRange:       0.05,
			RaidDuration:    60,
			RaidVariance:    15,
			KillProbability: 0.3,
			WanderJitter:    0.3,
		},
		Engine: EngineConfig{
			Interval:    50 * time.Millisecond,
			Speed:       1,
			ReportEvery: 200,
		},
		API: APIConfig{
			Enabled:     true,
			Port:        8080,
			RateLimit:   10,
			RateBurst:   20,
			StreamEvery: 5,
		},
		Journal: JournalConfig{
			Enabled: true,
			Path:    "data/orrery.db",
		},
	}
}

// Load reads a YAML file over the defaults, applies environment overrides,
// and validates the result. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("ORRERY_ADMIN_KEY"); v != "" {
		c.API.AdminKey = v
	}
	if v := os.Getenv("ORRERY_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("ORRERY_SEED: %w", err)
		}
		c.Sim.Seed = &seed
	}
	return nil
}

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Validate rejects values the simulation cannot run with.
func (c *Config) Validate() error {
	s := &c.Sim
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
		}
	}

	check(s.SunRadius > 0, "sun_radius must be positive, got %v", s.SunRadius)
	check(s.SystemRadius > s.SunRadius, "system_radius %v must exceed sun_radius %v", s.SystemRadius, s.SunRadius)
	check(s.SizeMin > 0 && s.SizeMin <= s.SizeMax, "size range [%v, %v] is empty or not positive", s.SizeMin, s.SizeMax)
	for _, p := range []struct {
		name string
		v    float64
	}{
		{"moon_prob", s.MoonProb},
		{"feature_prob", s.FeatureProb},
		{"kill_probability", s.KillProbability},
	} {
		check(p.v >= 0 && p.v <= 1, "%s must be within [0, 1], got %v", p.name, p.v)
	}
	check(s.ShipBaseSpeed > 0, "ship_base_speed must be positive")
	check(s.Acceleration >= 1, "acceleration must be at least 1, got %v", s.Acceleration)
	check(s.TraderCost > 0, "trader_cost must be positive")
	check(s.MinerCount >= 0 && s.PirateCount >= 0, "ship counts must not be negative")
	check(s.HarvestDuration > 0 && s.HarvestVariance >= 0, "harvest duration must be positive and variance non-negative")
	check(s.RaidDuration >= 0 && s.RaidVariance >= 0, "raid duration and variance must not be negative")
	check(s.RaidRange > 0 && s.DetectionRange >= s.RaidRange, "need 0 < raid_range <= detection_range")
	check(s.PirateTerritory > 0, "pirate_territory must be positive")

	check(c.Engine.Interval > 0, "engine interval must be positive")
	check(c.Engine.Speed >= 0, "engine speed must not be negative")
	check(c.Engine.ReportEvery > 0, "report_every must be positive")
	if c.API.Enabled {
		check(c.API.Port > 0 && c.API.Port < 65536, "api port %d out of range", c.API.Port)
		check(c.API.RateLimit > 0 && c.API.RateBurst > 0, "api rate limit and burst must be positive")
		check(c.API.StreamEvery > 0, "stream_every must be positive")
	}
	if c.Journal.Enabled {
		check(c.Journal.Path != "", "journal path is empty")
	}
	return errors.Join(errs...)
}

// GenConfig returns the system generation parameters.
func (s SimConfig) GenConfig() system.GenConfig {
	return system.GenConfig{
		SystemRadius: s.SystemRadius,
		SunRadius:    s.SunRadius,
		MoonProb:     s.MoonProb,
		FeatureProb:  s.FeatureProb,
		SizeMin:      s.SizeMin,
		SizeMax:      s.SizeMax,
	}
}

// ShipParams returns the ship behavior parameters.
func (s SimConfig) ShipParams() ships.Params {
	return ships.Params{
		Acceleration:    s.Acceleration,
		HarvestDuration: s.HarvestDuration,
		HarvestVariance: s.HarvestVariance,
		PirateTerritory: s.PirateTerritory,
		DetectionRange:  s.DetectionRange,
		RaidRange:       s.RaidRange,
		RaidDuration:    s.RaidDuration,
		RaidVariance:    s.RaidVariance,
		KillProbability: s.KillProbability,
		WanderJitter:    s.WanderJitter,
	}
}

// EconomyParams returns the station economy parameters.
func (s SimConfig) EconomyParams() economy.Params {
	return economy.Params{
		TraderCost:    s.TraderCost,
		ShipBaseSpeed: s.ShipBaseSpeed,
	}
}
