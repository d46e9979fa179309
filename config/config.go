package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Game constants - physics is fixed, only presentation settings are configurable
const (
	// Dimensions
	SpriteFootprint = 50.0 // margin subtracted from the far arena edges
	WindowWidth     = 500
	WindowHeight    = 500

	// Timing
	ControlTickInterval = 20 * time.Millisecond
	PhysicsTickInterval = 10 * time.Millisecond
	StatsInterval       = 5 * time.Second

	// Physics / Gameplay
	MaxSpeed     = 500.0  // px/s
	Acceleration = 1000.0 // px/s²
	BrakeRate    = 10.0   // multiple of Acceleration applied while braking

	// Rolling resistance: deltaA = forwardA - coefficient*g, so the rolling
	// deceleration is coefficient*g. 0.03 is the coefficient for asphalt.
	RollingResistanceCoefficient = 0.03
	GravityAcceleration          = 9.81
	RollingDeceleration          = RollingResistanceCoefficient * GravityAcceleration

	// Steering
	TurnStep                 = 5.0 // degrees per control tick
	StationaryTurnMultiplier = 5.0

	// Spawn
	StartX       = 100.0
	StartY       = 100.0
	StartHeading = 0.0

	// Terminal backend
	CellWidth      = 8
	CellHeight     = 16
	KeyHoldTimeout = 500 * time.Millisecond
)

// Display backends
const (
	DisplayWindow   = "window"
	DisplayTerminal = "terminal"
)

// ConfigName is the base name of the optional config file.
const ConfigName = "topdown"

// EnvPrefix prefixes environment overrides, e.g. TOPDOWN_DISPLAY=terminal.
const EnvPrefix = "TOPDOWN"

var ErrInvalidDisplay = errors.New("invalid display backend")

// AppConfig holds runtime settings that do not affect the simulation.
type AppConfig struct {
	Display  string `mapstructure:"display"`
	Title    string `mapstructure:"title"`
	Sprite   string `mapstructure:"sprite"`
	LogLevel string `mapstructure:"logLevel"`
	LogFile  string `mapstructure:"logFile"`
	Scale    int    `mapstructure:"scale"`
}

// DefaultAppConfig returns the reference settings
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		Display:  DisplayWindow,
		Title:    "Sudo Walking!",
		Sprite:   "",
		LogLevel: "info",
		LogFile:  "",
		Scale:    1,
	}
}

// Load reads configuration into a fresh viper instance.
// path may name a config file directly; when empty the default search
// locations are used and a missing file is not an error.
func Load(path string) (*AppConfig, error) {
	v := viper.New()

	def := DefaultAppConfig()
	v.SetDefault("display", def.Display)
	v.SetDefault("title", def.Title)
	v.SetDefault("sprite", def.Sprite)
	v.SetDefault("logLevel", def.LogLevel)
	v.SetDefault("logFile", def.LogFile)
	v.SetDefault("scale", def.Scale)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		v.SetConfigName(ConfigName)
		v.SetConfigType("json")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/topdown")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate normalizes and checks the settings
func (c *AppConfig) Validate() error {
	c.Display = strings.ToLower(strings.TrimSpace(c.Display))
	switch c.Display {
	case DisplayWindow, DisplayTerminal:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidDisplay, c.Display)
	}
	if c.Scale < 1 {
		c.Scale = 1
	}
	return nil
}
