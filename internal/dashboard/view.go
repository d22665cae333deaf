package dashboard

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/saaga0h/jeeves-weather/internal/weather"
)

// View is the dashboard card content derived from a weather report
type View struct {
	City        string        `json:"city"`
	Address     string        `json:"address"`
	Date        string        `json:"date"`
	Temperature string        `json:"temperature"`
	Conditions  string        `json:"conditions"`
	Icon        string        `json:"icon"`
	FeelsLike   string        `json:"feels_like"`
	Humidity    string        `json:"humidity"`
	Wind        string        `json:"wind"`
	Forecast    []ForecastDay `json:"forecast"`
	ObservedAt  time.Time     `json:"observed_at"`
}

// ForecastDay is one upcoming day on the dashboard
type ForecastDay struct {
	Day        string `json:"day"`
	High       string `json:"high"`
	Low        string `json:"low"`
	Conditions string `json:"conditions"`
	Icon       string `json:"icon"`
}

// BuildView formats a report for display, listing up to forecastDays days after today
func BuildView(report *weather.Report, forecastDays int) View {
	current := report.Current

	view := View{
		City:        report.City(),
		Address:     report.Address,
		Date:        current.ObservedAt.Format("Monday, January 2"),
		Temperature: degrees(current.Temp),
		Conditions:  current.Conditions,
		Icon:        current.Icon,
		FeelsLike:   degrees(current.FeelsLike),
		Humidity:    strconv.FormatFloat(current.Humidity, 'f', -1, 64) + "%",
		Wind:        fmt.Sprintf("%d %s", roundHalfUp(current.WindSpeed), windUnit(report.UnitGroup)),
		ObservedAt:  current.ObservedAt,
	}

	upcoming := report.Forecast(forecastDays)
	view.Forecast = make([]ForecastDay, 0, len(upcoming))
	for _, day := range upcoming {
		view.Forecast = append(view.Forecast, ForecastDay{
			Day:        day.Date.Format("Mon"),
			High:       degrees(day.TempMax),
			Low:        degrees(day.TempMin),
			Conditions: day.Conditions,
			Icon:       day.Icon,
		})
	}

	return view
}

func degrees(v float64) string {
	return fmt.Sprintf("%d°", roundHalfUp(v))
}

// roundHalfUp rounds .5 towards positive infinity, so -2.5 becomes -2
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

func windUnit(unitGroup string) string {
	if unitGroup == "metric" {
		return "km/h"
	}
	return "mph"
}
