package theme

import "fmt"

// EffectKind identifies an atmospheric overlay layered on top of a theme
type EffectKind string

const (
	EffectRain      EffectKind = "rain"
	EffectSnow      EffectKind = "snow"
	EffectLightning EffectKind = "lightning"
	EffectStars     EffectKind = "stars"
	EffectClouds    EffectKind = "clouds"
)

// Effect is one overlay to activate. Count is only used by clouds.
type Effect struct {
	Kind  EffectKind `json:"kind"`
	Count int        `json:"count,omitempty"`
}

func Rain() Effect      { return Effect{Kind: EffectRain} }
func Snow() Effect      { return Effect{Kind: EffectSnow} }
func Lightning() Effect { return Effect{Kind: EffectLightning} }
func Stars() Effect     { return Effect{Kind: EffectStars} }

// Clouds returns a cloud layer with n clouds
func Clouds(n int) Effect {
	return Effect{Kind: EffectClouds, Count: n}
}

func (e Effect) String() string {
	if e.Kind == EffectClouds {
		return fmt.Sprintf("clouds(%d)", e.Count)
	}
	return string(e.Kind)
}
