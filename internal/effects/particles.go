package effects

import (
	"math"
	"math/rand/v2"

	"github.com/saaga0h/jeeves-weather/internal/theme"
)

// Rand is the source of randomness for particle parameters and lightning timing
type Rand interface {
	Float64() float64
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

// Particle is one randomized element of an effect layer
type Particle struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Size     float64 `json:"size"`
	Duration float64 `json:"duration"`
	Delay    float64 `json:"delay"`
	Opacity  float64 `json:"opacity"`
}

// SpecFor returns the particle spec for an effect kind. Lightning has none.
func (c Config) SpecFor(kind theme.EffectKind) (ParticleSpec, bool) {
	switch kind {
	case theme.EffectRain:
		return c.Rain, true
	case theme.EffectSnow:
		return c.Snow, true
	case theme.EffectStars:
		return c.Stars, true
	case theme.EffectClouds:
		return c.Clouds, true
	default:
		return ParticleSpec{}, false
	}
}

// GenerateParticles draws the particles for one effect. Clouds use the
// effect's own count; other kinds use the configured count.
func GenerateParticles(effect theme.Effect, cfg Config, rnd Rand) []Particle {
	spec, ok := cfg.SpecFor(effect.Kind)
	if !ok {
		return nil
	}

	count := spec.Count
	if effect.Kind == theme.EffectClouds {
		count = effect.Count
	}
	if count <= 0 {
		return nil
	}

	particles := make([]Particle, count)
	for i := range particles {
		particles[i] = Particle{
			X:        round2(spec.X.Pick(rnd)),
			Y:        round2(spec.Y.Pick(rnd)),
			Size:     round2(spec.Size.Pick(rnd)),
			Duration: round2(spec.Duration.Pick(rnd)),
			Delay:    round2(spec.Delay.Pick(rnd)),
			Opacity:  round2(spec.Opacity.Pick(rnd)),
		}
	}
	return particles
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
