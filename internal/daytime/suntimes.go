package daytime

import (
	"time"

	"github.com/sixdouglas/suncalc"
)

// maxSunTimeDrift bounds how far a computed sunrise or sunset may sit from the
// requested date before it is treated as missing (polar day or polar night)
const maxSunTimeDrift = 36 * time.Hour

// SunTimes returns astronomical sunrise and sunset for the calendar day of date
// at the given coordinates, expressed in date's location.
// ok is false when the sun does not rise or set on that day.
func SunTimes(date time.Time, lat, lon float64) (sunrise, sunset time.Time, ok bool) {
	loc := date.Location()
	y, m, d := date.Date()
	noon := time.Date(y, m, d, 12, 0, 0, 0, loc)

	times := suncalc.GetTimes(noon, lat, lon)

	rise, riseOK := times[suncalc.Sunrise]
	set, setOK := times[suncalc.Sunset]
	if !riseOK || !setOK {
		return time.Time{}, time.Time{}, false
	}

	if !plausible(rise.Value, noon) || !plausible(set.Value, noon) {
		return time.Time{}, time.Time{}, false
	}

	return rise.Value.In(loc), set.Value.In(loc), true
}

func plausible(t, around time.Time) bool {
	if t.IsZero() {
		return false
	}
	diff := t.Sub(around)
	if diff < 0 {
		diff = -diff
	}
	return diff <= maxSunTimeDrift
}
