package effects

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Range is an inclusive interval a randomized particle parameter is drawn from
type Range struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// Pick draws a uniformly distributed value from the range
func (r Range) Pick(rnd Rand) float64 {
	return r.Min + rnd.Float64()*(r.Max-r.Min)
}

// ParticleSpec describes how many particles an effect creates and the ranges
// their presentation parameters are drawn from.
// Size is in pixels, Duration and Delay in seconds, X and Y in percent of the view.
type ParticleSpec struct {
	Count    int   `yaml:"count"`
	Size     Range `yaml:"size"`
	Duration Range `yaml:"duration"`
	Delay    Range `yaml:"delay"`
	Opacity  Range `yaml:"opacity"`
	X        Range `yaml:"x"`
	Y        Range `yaml:"y"`
}

// LightningConfig tunes the lightning flicker schedule
type LightningConfig struct {
	// First flash happens within [0, InitialDelay] of arming
	InitialDelay time.Duration `yaml:"initial_delay"`

	// Re-arm delay is drawn from [MinInterval, MaxInterval]
	MinInterval time.Duration `yaml:"min_interval"`
	MaxInterval time.Duration `yaml:"max_interval"`

	PrimaryIntensity float64       `yaml:"primary_intensity"`
	PrimaryDuration  time.Duration `yaml:"primary_duration"`

	// Secondary flash follows the primary by SecondaryDelay with SecondaryProbability
	SecondaryDelay       time.Duration `yaml:"secondary_delay"`
	SecondaryProbability float64       `yaml:"secondary_probability"`
	SecondaryIntensity   float64       `yaml:"secondary_intensity"`
	SecondaryDuration    time.Duration `yaml:"secondary_duration"`
}

// Config holds the presentation parameters handed to the stage.
// Cloud count comes from the theme decision, so Clouds.Count is ignored.
type Config struct {
	Rain      ParticleSpec    `yaml:"rain"`
	Snow      ParticleSpec    `yaml:"snow"`
	Stars     ParticleSpec    `yaml:"stars"`
	Clouds    ParticleSpec    `yaml:"clouds"`
	Lightning LightningConfig `yaml:"lightning"`
}

// DefaultConfig returns the stock particle and lightning parameters
func DefaultConfig() Config {
	return Config{
		Rain: ParticleSpec{
			Count:    50,
			Size:     Range{Min: 2, Max: 2},
			Duration: Range{Min: 0.5, Max: 1},
			Delay:    Range{Min: 0, Max: 2},
			Opacity:  Range{Min: 0.5, Max: 1},
			X:        Range{Min: 0, Max: 100},
			Y:        Range{Min: 0, Max: 0},
		},
		Snow: ParticleSpec{
			Count:    40,
			Size:     Range{Min: 3, Max: 8},
			Duration: Range{Min: 3, Max: 8},
			Delay:    Range{Min: 0, Max: 5},
			Opacity:  Range{Min: 0.7, Max: 1},
			X:        Range{Min: 0, Max: 100},
			Y:        Range{Min: 0, Max: 0},
		},
		Stars: ParticleSpec{
			Count:    200,
			Size:     Range{Min: 0.5, Max: 2.5},
			Duration: Range{Min: 2, Max: 6},
			Delay:    Range{Min: 0, Max: 5},
			Opacity:  Range{Min: 0.5, Max: 1},
			X:        Range{Min: 0, Max: 100},
			Y:        Range{Min: 0, Max: 100},
		},
		Clouds: ParticleSpec{
			Size:     Range{Min: 120, Max: 260},
			Duration: Range{Min: 40, Max: 90},
			Delay:    Range{Min: 0, Max: 20},
			Opacity:  Range{Min: 0.4, Max: 0.8},
			X:        Range{Min: -20, Max: 100},
			Y:        Range{Min: 0, Max: 40},
		},
		Lightning: LightningConfig{
			InitialDelay:         3 * time.Second,
			MinInterval:          3 * time.Second,
			MaxInterval:          15 * time.Second,
			PrimaryIntensity:     0.8,
			PrimaryDuration:      100 * time.Millisecond,
			SecondaryDelay:       200 * time.Millisecond,
			SecondaryProbability: 0.5,
			SecondaryIntensity:   0.6,
			SecondaryDuration:    80 * time.Millisecond,
		},
	}
}

// LoadConfig reads a YAML file and overlays it on DefaultConfig.
// An empty path returns the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read effects config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse effects config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid effects config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate rejects negative counts, inverted ranges and impossible lightning timing
func (c Config) Validate() error {
	specs := map[string]ParticleSpec{
		"rain":   c.Rain,
		"snow":   c.Snow,
		"stars":  c.Stars,
		"clouds": c.Clouds,
	}

	for name, spec := range specs {
		if err := spec.validate(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	return c.Lightning.Validate()
}

func (s ParticleSpec) validate() error {
	if s.Count < 0 {
		return fmt.Errorf("count must not be negative")
	}

	ranges := []struct {
		name string
		r    Range
	}{
		{"size", s.Size},
		{"duration", s.Duration},
		{"delay", s.Delay},
		{"opacity", s.Opacity},
		{"x", s.X},
		{"y", s.Y},
	}
	for _, item := range ranges {
		if item.r.Min > item.r.Max {
			return fmt.Errorf("%s range min %.2f exceeds max %.2f", item.name, item.r.Min, item.r.Max)
		}
	}

	if s.Opacity.Min < 0 || s.Opacity.Max > 1 {
		return fmt.Errorf("opacity must be between 0 and 1")
	}

	return nil
}

// Validate checks the flicker schedule bounds
func (l LightningConfig) Validate() error {
	if l.InitialDelay < 0 {
		return fmt.Errorf("lightning initial delay must not be negative")
	}
	if l.MinInterval <= 0 {
		return fmt.Errorf("lightning min interval must be positive")
	}
	if l.MinInterval > l.MaxInterval {
		return fmt.Errorf("lightning min interval %s exceeds max interval %s", l.MinInterval, l.MaxInterval)
	}
	if l.SecondaryProbability < 0 || l.SecondaryProbability > 1 {
		return fmt.Errorf("lightning secondary probability must be between 0 and 1")
	}
	if l.SecondaryDelay < 0 {
		return fmt.Errorf("lightning secondary delay must not be negative")
	}
	return nil
}
