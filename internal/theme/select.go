package theme

import (
	"fmt"
	"strings"
	"time"

	"github.com/saaga0h/jeeves-weather/internal/daytime"
)

// Class is a visual theme identifier applied to the whole view
type Class string

const (
	ClassSunrise      Class = "theme-sunrise"
	ClassSunset       Class = "theme-sunset"
	ClassClearDay     Class = "theme-clear-day"
	ClassClearNight   Class = "theme-clear-night"
	ClassMidnight     Class = "theme-midnight"
	ClassCloudy       Class = "theme-cloudy"
	ClassRain         Class = "theme-rain"
	ClassThunderstorm Class = "theme-thunderstorm"
	ClassSnow         Class = "theme-snow"
)

// Condition codes reported by the weather provider's icon field
const (
	ConditionClearDay            = "clear-day"
	ConditionClearNight          = "clear-night"
	ConditionPartlyCloudyDay     = "partly-cloudy-day"
	ConditionPartlyCloudyNight   = "partly-cloudy-night"
	ConditionCloudy              = "cloudy"
	ConditionRain                = "rain"
	ConditionShowersDay          = "showers-day"
	ConditionShowersNight        = "showers-night"
	ConditionThunder             = "thunder"
	ConditionThunderRain         = "thunder-rain"
	ConditionThunderShowersDay   = "thunder-showers-day"
	ConditionThunderShowersNight = "thunder-showers-night"
	ConditionSnow                = "snow"
	ConditionSnowShowersDay      = "snow-showers-day"
	ConditionSnowShowersNight    = "snow-showers-night"
)

// Cloud counts for partly cloudy and overcast skies
const (
	PartlyCloudyCount = 3
	OvercastCount     = 6
)

// Snapshot is the weather input the selector consumes
type Snapshot struct {
	Condition  string
	Sunrise    time.Time
	Sunset     time.Time
	ObservedAt time.Time
}

// Decision is the theme selected for one rendering cycle
type Decision struct {
	Class     Class
	Effects   []Effect
	Condition string
	TimeOfDay daytime.TimeOfDay
	Reason    string // e.g. "partly-cloudy-night_late-night"
}

// HasEffect reports whether the decision activates the given effect kind
func (d Decision) HasEffect(kind EffectKind) bool {
	for _, e := range d.Effects {
		if e.Kind == kind {
			return true
		}
	}
	return false
}

// ForTimeOfDay returns the clear-sky theme for a time-of-day category
func ForTimeOfDay(tod daytime.TimeOfDay) Class {
	switch tod {
	case daytime.Sunrise:
		return ClassSunrise
	case daytime.Sunset:
		return ClassSunset
	case daytime.Day:
		return ClassClearDay
	case daytime.LateNight:
		return ClassMidnight
	default:
		return ClassClearNight
	}
}

// NormalizeCondition trims and lower-cases a provider condition code
func NormalizeCondition(condition string) string {
	return strings.ToLower(strings.TrimSpace(condition))
}

// Select maps a condition code and time of day to a theme and its effects.
// Unrecognised codes fall back to the clear-sky theme for the time of day,
// with stars when it is dark. Every call returns a freshly allocated decision.
func Select(condition string, tod daytime.TimeOfDay) Decision {
	code := NormalizeCondition(condition)

	var (
		class   Class
		effects []Effect
	)

	switch {
	case code == ConditionClearDay:
		class = ForTimeOfDay(tod)
	case code == ConditionClearNight:
		class = ForTimeOfDay(tod)
		effects = []Effect{Stars()}
	case code == ConditionPartlyCloudyDay:
		class = ForTimeOfDay(tod)
		effects = []Effect{Clouds(PartlyCloudyCount)}
	case code == ConditionPartlyCloudyNight:
		class = ForTimeOfDay(tod)
		effects = []Effect{Clouds(PartlyCloudyCount), Stars()}
	case code == ConditionCloudy:
		class = ClassCloudy
		effects = []Effect{Clouds(OvercastCount)}
	case code == ConditionRain, code == ConditionShowersDay, code == ConditionShowersNight:
		class = ClassRain
		effects = []Effect{Rain()}
	case strings.HasPrefix(code, ConditionThunder):
		class = ClassThunderstorm
		effects = []Effect{Rain(), Lightning()}
	case code == ConditionSnow, strings.HasPrefix(code, "snow-showers-"):
		class = ClassSnow
		effects = []Effect{Snow()}
	default:
		class = ForTimeOfDay(tod)
		if tod.IsDark() {
			effects = []Effect{Stars()}
		}
	}

	if effects == nil {
		effects = []Effect{}
	}

	label := code
	if label == "" {
		label = "unknown"
	}

	return Decision{
		Class:     class,
		Effects:   effects,
		Condition: code,
		TimeOfDay: tod,
		Reason:    fmt.Sprintf("%s_%s", label, tod),
	}
}

// Decide classifies the snapshot's time of day and selects its theme
func Decide(s Snapshot) Decision {
	tod := daytime.Classify(s.Sunrise, s.Sunset, s.ObservedAt)
	return Select(s.Condition, tod)
}
