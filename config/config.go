// Package config loads game and headless settings with viper. Every key has
// a default, a config file may override any of them, and ORBITFIRE_* environment
// variables override the file (ORBITFIRE_SIM_GRAVITY_LAW for sim.gravity_law).
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"orbitfire/sim"
)

// EnvPrefix is the prefix of environment overrides
const EnvPrefix = "ORBITFIRE"

// Settings is everything the binaries read from configuration
type Settings struct {
	Seed    int64           `mapstructure:"seed"`
	Sim     SimSettings     `mapstructure:"sim"`
	Window  WindowSettings  `mapstructure:"window"`
	Log     LogSettings     `mapstructure:"log"`
	Metrics MetricsSettings `mapstructure:"metrics"`
	Bot     BotSettings     `mapstructure:"bot"`
	Profile ProfileSettings `mapstructure:"profile"`
}

// SimSettings mirrors the tunable part of sim.Config
type SimSettings struct {
	FixedStep         float64       `mapstructure:"fixed_step"`
	GravityLaw        string        `mapstructure:"gravity_law"`
	TrailCapacity     int           `mapstructure:"trail_capacity"`
	SpawnOffset       float64       `mapstructure:"spawn_offset"`
	MinShotSpeed      float64       `mapstructure:"min_shot_speed"`
	MaxShotSpeed      float64       `mapstructure:"max_shot_speed"`
	DefaultShotSpeed  float64       `mapstructure:"default_shot_speed"`
	RadarRange        float64       `mapstructure:"radar_range"`
	HomeRadarRange    float64       `mapstructure:"home_radar_range"`
	HomeIncome        float64       `mapstructure:"home_income"`
	DiscoveredIncome  float64       `mapstructure:"discovered_income"`
	ExplosionLifetime time.Duration `mapstructure:"explosion_lifetime"`
	PreviewIterations int           `mapstructure:"preview_iterations"`
	PreviewInterval   float64       `mapstructure:"preview_interval"`
}

type WindowSettings struct {
	Width  int    `mapstructure:"width"`
	Height int    `mapstructure:"height"`
	Title  string `mapstructure:"title"`
}

type LogSettings struct {
	Level string `mapstructure:"level"`
}

type MetricsSettings struct {
	Addr string `mapstructure:"addr"` // empty disables the endpoint
}

// BotSettings controls the scripted opponent
type BotSettings struct {
	Enabled  bool          `mapstructure:"enabled"`
	Count    int           `mapstructure:"count"`
	Script   string        `mapstructure:"script"` // empty uses the embedded default
	Interval time.Duration `mapstructure:"interval"`
}

// ProfileSettings controls slow-frame capture
type ProfileSettings struct {
	Enabled   bool          `mapstructure:"enabled"`
	Dir       string        `mapstructure:"dir"`
	SlowFrame time.Duration `mapstructure:"slow_frame"`
	Duration  time.Duration `mapstructure:"duration"`
}

func setDefaults(v *viper.Viper) {
	def := sim.DefaultConfig()

	v.SetDefault("seed", 0)

	v.SetDefault("sim.fixed_step", def.FixedStep)
	v.SetDefault("sim.gravity_law", def.GravityLaw.String())
	v.SetDefault("sim.trail_capacity", def.TrailCapacity)
	v.SetDefault("sim.spawn_offset", def.SpawnOffset)
	v.SetDefault("sim.min_shot_speed", def.MinShotSpeed)
	v.SetDefault("sim.max_shot_speed", def.MaxShotSpeed)
	v.SetDefault("sim.default_shot_speed", def.DefaultShotSpeed)
	v.SetDefault("sim.radar_range", def.DiscoveryRadarRange)
	v.SetDefault("sim.home_radar_range", def.HomeRadarRange)
	v.SetDefault("sim.home_income", def.HomeIncomeRate)
	v.SetDefault("sim.discovered_income", def.DiscoveredIncomeRate)
	v.SetDefault("sim.explosion_lifetime", def.ExplosionLifetime)
	v.SetDefault("sim.preview_iterations", def.AimPreview.Iterations)
	v.SetDefault("sim.preview_interval", def.AimPreview.Interval)

	v.SetDefault("window.width", 1280)
	v.SetDefault("window.height", 720)
	v.SetDefault("window.title", "Orbitfire")

	v.SetDefault("log.level", "info")
	v.SetDefault("metrics.addr", "")

	v.SetDefault("bot.enabled", true)
	v.SetDefault("bot.count", 1)
	v.SetDefault("bot.script", "")
	v.SetDefault("bot.interval", 500*time.Millisecond)

	v.SetDefault("profile.enabled", false)
	v.SetDefault("profile.dir", "profiles")
	v.SetDefault("profile.slow_frame", 50*time.Millisecond)
	v.SetDefault("profile.duration", 5*time.Second)
}

// Load reads settings from path (any format viper understands) layered over
// the defaults, then applies environment overrides. An empty path skips the file.
func Load(path string) (Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("decode config: %w", err)
	}
	if err := s.validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func (s Settings) validate() error {
	if s.Sim.FixedStep <= 0 {
		return fmt.Errorf("sim.fixed_step must be positive, got %v", s.Sim.FixedStep)
	}
	if s.Sim.MinShotSpeed > s.Sim.MaxShotSpeed {
		return fmt.Errorf("sim.min_shot_speed %v exceeds sim.max_shot_speed %v", s.Sim.MinShotSpeed, s.Sim.MaxShotSpeed)
	}
	if s.Window.Width <= 0 || s.Window.Height <= 0 {
		return fmt.Errorf("window size %dx%d is not positive", s.Window.Width, s.Window.Height)
	}
	return nil
}

// SimConfig converts the sim section into a sim.Config
func (s Settings) SimConfig() (sim.Config, error) {
	law, err := sim.ParseGravityLaw(s.Sim.GravityLaw)
	if err != nil {
		return sim.Config{}, fmt.Errorf("sim.gravity_law: %w", err)
	}
	cfg := sim.DefaultConfig()
	cfg.FixedStep = s.Sim.FixedStep
	cfg.GravityLaw = law
	cfg.TrailCapacity = s.Sim.TrailCapacity
	cfg.SpawnOffset = s.Sim.SpawnOffset
	cfg.MinShotSpeed = s.Sim.MinShotSpeed
	cfg.MaxShotSpeed = s.Sim.MaxShotSpeed
	cfg.DefaultShotSpeed = s.Sim.DefaultShotSpeed
	cfg.DiscoveryRadarRange = s.Sim.RadarRange
	cfg.HomeRadarRange = s.Sim.HomeRadarRange
	cfg.HomeIncomeRate = s.Sim.HomeIncome
	cfg.DiscoveredIncomeRate = s.Sim.DiscoveredIncome
	cfg.ExplosionLifetime = s.Sim.ExplosionLifetime
	cfg.AimPreview.Iterations = s.Sim.PreviewIterations
	cfg.AimPreview.Interval = s.Sim.PreviewInterval
	return cfg, nil
}
