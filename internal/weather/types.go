package weather

import (
	"context"
	"strings"
	"time"

	"github.com/saaga0h/jeeves-weather/internal/daytime"
	"github.com/saaga0h/jeeves-weather/internal/theme"
)

// Provider fetches a weather report by place name or by coordinates
type Provider interface {
	Fetch(ctx context.Context, location string) (*Report, error)
	FetchByCoords(ctx context.Context, lat, lon float64) (*Report, error)
}

// Current holds the observed conditions
type Current struct {
	ObservedAt time.Time `json:"observed_at"`
	Temp       float64   `json:"temp"`
	FeelsLike  float64   `json:"feels_like"`
	Humidity   float64   `json:"humidity"`
	WindSpeed  float64   `json:"wind_speed"`
	Conditions string    `json:"conditions"`
	Icon       string    `json:"icon"`
	Sunrise    time.Time `json:"sunrise"`
	Sunset     time.Time `json:"sunset"`
}

// Day is one day of the forecast
type Day struct {
	Date       time.Time `json:"date"`
	TempMax    float64   `json:"temp_max"`
	TempMin    float64   `json:"temp_min"`
	Conditions string    `json:"conditions"`
	Icon       string    `json:"icon"`
	Sunrise    time.Time `json:"sunrise"`
	Sunset     time.Time `json:"sunset"`
}

// Report is a parsed provider response
type Report struct {
	Address   string         `json:"address"`
	Latitude  float64        `json:"latitude"`
	Longitude float64        `json:"longitude"`
	Timezone  string         `json:"timezone"`
	UnitGroup string         `json:"unit_group"`
	Location  *time.Location `json:"-"`
	Current   Current        `json:"current"`
	Days      []Day          `json:"days"`
}

// City returns the first component of the resolved address
func (r *Report) City() string {
	city, _, _ := strings.Cut(r.Address, ",")
	return strings.TrimSpace(city)
}

// Snapshot returns the theme selector input for the current conditions.
// Missing sunrise or sunset times are filled from today's forecast entry
// and then from the astronomical calculation for the report's coordinates.
func (r *Report) Snapshot() theme.Snapshot {
	observed := r.Current.ObservedAt
	sunrise, sunset := r.Current.Sunrise, r.Current.Sunset

	if (sunrise.IsZero() || sunset.IsZero()) && len(r.Days) > 0 {
		if sunrise.IsZero() {
			sunrise = r.Days[0].Sunrise
		}
		if sunset.IsZero() {
			sunset = r.Days[0].Sunset
		}
	}

	if sunrise.IsZero() || sunset.IsZero() {
		if rise, set, ok := daytime.SunTimes(observed, r.Latitude, r.Longitude); ok {
			if sunrise.IsZero() {
				sunrise = rise
			}
			if sunset.IsZero() {
				sunset = set
			}
		}
	}

	return theme.Snapshot{
		Condition:  r.Current.Icon,
		Sunrise:    sunrise,
		Sunset:     sunset,
		ObservedAt: observed,
	}
}

// Forecast returns up to n days following today
func (r *Report) Forecast(n int) []Day {
	if n <= 0 || len(r.Days) < 2 {
		return []Day{}
	}
	upcoming := r.Days[1:]
	if len(upcoming) > n {
		upcoming = upcoming[:n]
	}
	return append([]Day(nil), upcoming...)
}
