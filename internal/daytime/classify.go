package daytime

import "time"

// TimeOfDay is the discrete period used to pick a theme for the sky
type TimeOfDay string

const (
	Sunrise   TimeOfDay = "sunrise"
	Sunset    TimeOfDay = "sunset"
	Day       TimeOfDay = "day"
	Night     TimeOfDay = "night"
	LateNight TimeOfDay = "late-night"
)

const (
	// TransitionWindow is the half-width of the sunrise and sunset windows
	TransitionWindow = time.Hour

	// Late night runs from 22:00 through 04:00 of the following day, local time
	LateNightStartHour = 22
	LateNightEndHour   = 4
)

// IsDark reports whether the period is one of the night categories
func (t TimeOfDay) IsDark() bool {
	return t == Night || t == LateNight
}

func (t TimeOfDay) String() string {
	return string(t)
}

// Window is an inclusive time interval
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t lies within the window, bounds included
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Windows holds every interval Classify evaluates for one observation
type Windows struct {
	Sunrise Window
	Sunset  Window

	// LateNight is the late-night interval that contains or follows the
	// observation's calendar midnight; PreviousLateNight started the day before.
	LateNight         Window
	PreviousLateNight Window
}

// WindowsFor computes the sunrise, sunset and late-night windows for an observation.
// The late-night windows are anchored to observedAt's calendar day in its own location.
func WindowsFor(sunrise, sunset, observedAt time.Time) Windows {
	loc := observedAt.Location()
	y, m, d := observedAt.Date()

	lateStart := time.Date(y, m, d, LateNightStartHour, 0, 0, 0, loc)
	lateEnd := time.Date(y, m, d+1, LateNightEndHour, 0, 0, 0, loc)
	prevStart := time.Date(y, m, d-1, LateNightStartHour, 0, 0, 0, loc)
	prevEnd := time.Date(y, m, d, LateNightEndHour, 0, 0, 0, loc)

	return Windows{
		Sunrise: Window{
			Start: sunrise.Add(-TransitionWindow),
			End:   sunrise.Add(TransitionWindow),
		},
		Sunset: Window{
			Start: sunset.Add(-TransitionWindow),
			End:   sunset.Add(TransitionWindow),
		},
		LateNight:         Window{Start: lateStart, End: lateEnd},
		PreviousLateNight: Window{Start: prevStart, End: prevEnd},
	}
}

// Classify returns the time-of-day category for an observation.
//
// Windows are tested in a fixed order and the first match wins: sunrise, sunset,
// late night, day, and finally night. Day is the open interval between the end of
// the sunrise window and the start of the sunset window, so out-of-order sunrise
// and sunset values never produce Day. Every input maps to exactly one category.
func Classify(sunrise, sunset, observedAt time.Time) TimeOfDay {
	w := WindowsFor(sunrise, sunset, observedAt)

	switch {
	case w.Sunrise.Contains(observedAt):
		return Sunrise
	case w.Sunset.Contains(observedAt):
		return Sunset
	case w.LateNight.Contains(observedAt), w.PreviousLateNight.Contains(observedAt):
		return LateNight
	case observedAt.After(w.Sunrise.End) && observedAt.Before(w.Sunset.Start):
		return Day
	default:
		return Night
	}
}
