package game

import (
	"time"

	"orbitfire/sim"
)

// Config holds everything the windowed game needs to start
type Config struct {
	// ScreenWidth is the window width in pixels
	ScreenWidth int

	// ScreenHeight is the window height in pixels
	ScreenHeight int

	// Sim configures the world
	Sim sim.Config

	// System is the list of bodies to generate; nil uses sim.DefaultSystem
	System []sim.BodySpec

	// Seed picks home planets; 0 uses the current time
	Seed int64

	// Bots is the number of scripted opponents
	Bots int

	// BotScript is the JavaScript source for every bot; empty uses the default bot
	BotScript string

	// BotInterval is how often each bot decides, in world time
	BotInterval time.Duration

	// Profile controls slow-frame capture
	Profile ProfileConfig
}

// ProfileConfig controls the slow-frame profiler
type ProfileConfig struct {
	Enabled   bool
	Dir       string
	SlowFrame time.Duration // Frames slower than this trigger a capture
	Duration  time.Duration // Length of each capture
}

// DefaultConfig returns a default configuration
func DefaultConfig() Config {
	return Config{
		ScreenWidth:  1280,
		ScreenHeight: 720,
		Sim:          sim.DefaultConfig(),
		Bots:         1,
		BotInterval:  500 * time.Millisecond,
		Profile: ProfileConfig{
			Dir:       "profiles",
			SlowFrame: 50 * time.Millisecond,
			Duration:  5 * time.Second,
		},
	}
}

// system returns the bodies to generate
func (c Config) system() []sim.BodySpec {
	if c.System == nil {
		return sim.DefaultSystem()
	}
	return c.System
}
