package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/signalsfoundry/cellular-simulator/internal/observability"
	"github.com/signalsfoundry/cellular-simulator/model"
	"github.com/signalsfoundry/cellular-simulator/tower"
)

// Config holds all simulator configuration.
type Config struct {
	Simulation SimulationConfig `yaml:"simulation"`

	// Profiles overrides built-in generation constants, keyed by "2G".."5G".
	Profiles map[string]ProfileOverride `yaml:"profiles,omitempty"`

	Logging LoggingConfig               `yaml:"logging"`
	Metrics MetricsConfig               `yaml:"metrics"`
	Tracing observability.TracingConfig `yaml:"tracing"`
}

// SimulationConfig controls a run.
type SimulationConfig struct {
	// OverheadPercent is the extra core load per 100 messages.
	OverheadPercent int `yaml:"overhead_percent"`

	// Antenna counts for 4G/5G towers. Zero means the profile default.
	Antennas4G int `yaml:"antennas_4g"`
	Antennas5G int `yaml:"antennas_5g"`

	// Prompt asks for antenna counts on stdin instead of using the above.
	Prompt bool `yaml:"prompt"`
}

// ProfileOverride replaces individual profile constants. Nil fields keep
// the built-in value.
type ProfileOverride struct {
	Technology            *string `yaml:"technology,omitempty"`
	TotalBandwidthKHz     *int    `yaml:"total_bandwidth_khz,omitempty"`
	ChannelBandwidthKHz   *int    `yaml:"channel_bandwidth_khz,omitempty"`
	UsersPerChannel       *int    `yaml:"users_per_channel,omitempty"`
	DefaultAntennas       *int    `yaml:"default_antennas,omitempty"`
	MaxAntennas           *int    `yaml:"max_antennas,omitempty"`
	MessagesPerUser       *int    `yaml:"messages_per_user,omitempty"`
	SecondaryBandwidthKHz *int    `yaml:"secondary_bandwidth_khz,omitempty"`
	UsersPerMHz           *int    `yaml:"users_per_mhz,omitempty"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level   string `yaml:"level"`   // debug, info, warn, error
	Format  string `yaml:"format"`  // text, json
	Backend string `yaml:"backend"` // slog, zap
}

// MetricsConfig configures Prometheus exposure.
type MetricsConfig struct {
	Addr     string `yaml:"addr"`     // serve /metrics here when set
	Textfile string `yaml:"textfile"` // write a .prom file here after the run
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "warn", Format: "text", Backend: "slog"},
		Tracing: observability.DefaultTracingConfig(),
	}
}

// Load reads a YAML config file on top of the defaults. An empty path
// returns the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %q: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %q: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML on top of the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and that every profile override yields a
// buildable tower.
func (c *Config) Validate() error {
	if c.Simulation.OverheadPercent < 0 || c.Simulation.OverheadPercent > model.MaxOverheadPercent {
		return fmt.Errorf("%w: overhead_percent must be within 0..%d, got %d",
			model.ErrInvalidConfiguration, model.MaxOverheadPercent, c.Simulation.OverheadPercent)
	}
	if c.Simulation.Antennas4G < 0 || c.Simulation.Antennas5G < 0 {
		return fmt.Errorf("%w: antenna counts must not be negative", model.ErrInvalidConfiguration)
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("%w: tracing sample_ratio must lie in [0,1], got %v",
			model.ErrInvalidConfiguration, c.Tracing.SampleRatio)
	}
	_, err := c.TowerProfiles()
	return err
}

// TowerProfiles returns the effective profile of every generation.
func (c *Config) TowerProfiles() (map[model.Generation]tower.Profile, error) {
	profiles := tower.DefaultProfiles()
	keys := make([]string, 0, len(c.Profiles))
	for k := range c.Profiles {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		gen, err := model.ParseGeneration(key)
		if err != nil {
			return nil, fmt.Errorf("profiles: %w", err)
		}
		p := profiles[gen]
		c.Profiles[key].apply(&p)
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("profiles.%s: %w", key, err)
		}
		profiles[gen] = p
	}
	return profiles, nil
}

// Antennas returns the configured antenna count for gen, or zero for the
// profile default.
func (c *Config) Antennas(gen model.Generation) int {
	switch gen {
	case model.Gen4G:
		return c.Simulation.Antennas4G
	case model.Gen5G:
		return c.Simulation.Antennas5G
	default:
		return 0
	}
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

func (o ProfileOverride) apply(p *tower.Profile) {
	if o.Technology != nil {
		p.Technology = *o.Technology
	}
	setInt(&p.TotalBandwidthKHz, o.TotalBandwidthKHz)
	setInt(&p.ChannelBandwidthKHz, o.ChannelBandwidthKHz)
	setInt(&p.UsersPerChannel, o.UsersPerChannel)
	setInt(&p.DefaultAntennas, o.DefaultAntennas)
	setInt(&p.MaxAntennas, o.MaxAntennas)
	setInt(&p.MessagesPerUser, o.MessagesPerUser)
	setInt(&p.SecondaryBandwidthKHz, o.SecondaryBandwidthKHz)
	setInt(&p.UsersPerMHz, o.UsersPerMHz)
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
