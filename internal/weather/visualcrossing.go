package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the Visual Crossing timeline endpoint
const DefaultBaseURL = "https://weather.visualcrossing.com/VisualCrossingWebServices/rest/services/timeline"

// VisualCrossingClient fetches timeline data from Visual Crossing
type VisualCrossingClient struct {
	baseURL   string
	apiKey    string
	unitGroup string
	client    *http.Client
	logger    *slog.Logger
}

// NewVisualCrossingClient creates a client. Empty baseURL and unitGroup use the defaults.
func NewVisualCrossingClient(baseURL, apiKey, unitGroup string, timeout time.Duration, logger *slog.Logger) *VisualCrossingClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if unitGroup == "" {
		unitGroup = "us"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &VisualCrossingClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		unitGroup: unitGroup,
		client:    &http.Client{Timeout: timeout},
		logger:    logger,
	}
}

type timelineConditions struct {
	Datetime      string  `json:"datetime"`
	DatetimeEpoch int64   `json:"datetimeEpoch"`
	Temp          float64 `json:"temp"`
	TempMax       float64 `json:"tempmax"`
	TempMin       float64 `json:"tempmin"`
	FeelsLike     float64 `json:"feelslike"`
	Humidity      float64 `json:"humidity"`
	WindSpeed     float64 `json:"windspeed"`
	Conditions    string  `json:"conditions"`
	Icon          string  `json:"icon"`
	Sunrise       string  `json:"sunrise"`
	SunriseEpoch  int64   `json:"sunriseEpoch"`
	Sunset        string  `json:"sunset"`
	SunsetEpoch   int64   `json:"sunsetEpoch"`
}

type timelineResponse struct {
	Latitude          float64              `json:"latitude"`
	Longitude         float64              `json:"longitude"`
	ResolvedAddress   string               `json:"resolvedAddress"`
	Timezone          string               `json:"timezone"`
	TzOffset          float64              `json:"tzoffset"`
	Days              []timelineConditions `json:"days"`
	CurrentConditions *timelineConditions  `json:"currentConditions"`
}

// Fetch retrieves the report for a place name
func (c *VisualCrossingClient) Fetch(ctx context.Context, location string) (*Report, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, fmt.Errorf("location is empty")
	}
	return c.fetch(ctx, url.PathEscape(location))
}

// FetchByCoords retrieves the report for a latitude/longitude pair
func (c *VisualCrossingClient) FetchByCoords(ctx context.Context, lat, lon float64) (*Report, error) {
	return c.fetch(ctx, fmt.Sprintf("%s,%s", formatCoord(lat), formatCoord(lon)))
}

func formatCoord(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.6f", v), "0"), ".")
}

func (c *VisualCrossingClient) fetch(ctx context.Context, escapedLocation string) (*Report, error) {
	query := url.Values{}
	query.Set("unitGroup", c.unitGroup)
	query.Set("key", c.apiKey)
	query.Set("contentType", "json")

	endpoint := fmt.Sprintf("%s/%s?%s", c.baseURL, escapedLocation, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build weather request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("weather request bad status: %s", resp.Status)
	}

	var payload timelineResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode weather response: %w", err)
	}

	report, err := c.toReport(&payload)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Fetched weather report",
		"address", report.Address,
		"icon", report.Current.Icon,
		"days", len(report.Days))

	return report, nil
}

func (c *VisualCrossingClient) toReport(payload *timelineResponse) (*Report, error) {
	if payload.CurrentConditions == nil {
		return nil, fmt.Errorf("weather response has no current conditions")
	}

	loc := resolveLocation(payload.Timezone, payload.TzOffset)

	days := make([]Day, 0, len(payload.Days))
	for _, d := range payload.Days {
		date, err := time.ParseInLocation("2006-01-02", d.Datetime, loc)
		if err != nil {
			c.logger.Warn("Skipping forecast day with invalid date", "datetime", d.Datetime)
			continue
		}
		days = append(days, Day{
			Date:       date,
			TempMax:    d.TempMax,
			TempMin:    d.TempMin,
			Conditions: d.Conditions,
			Icon:       d.Icon,
			Sunrise:    clockTime(d.SunriseEpoch, date, d.Sunrise, loc),
			Sunset:     clockTime(d.SunsetEpoch, date, d.Sunset, loc),
		})
	}

	var today time.Time
	if len(days) > 0 {
		today = days[0].Date
	}

	cc := payload.CurrentConditions
	observed := clockTime(cc.DatetimeEpoch, today, cc.Datetime, loc)
	if observed.IsZero() {
		return nil, fmt.Errorf("weather response has no observation time")
	}

	return &Report{
		Address:   payload.ResolvedAddress,
		Latitude:  payload.Latitude,
		Longitude: payload.Longitude,
		Timezone:  payload.Timezone,
		UnitGroup: c.unitGroup,
		Location:  loc,
		Current: Current{
			ObservedAt: observed,
			Temp:       cc.Temp,
			FeelsLike:  cc.FeelsLike,
			Humidity:   cc.Humidity,
			WindSpeed:  cc.WindSpeed,
			Conditions: cc.Conditions,
			Icon:       cc.Icon,
			Sunrise:    clockTime(cc.SunriseEpoch, today, cc.Sunrise, loc),
			Sunset:     clockTime(cc.SunsetEpoch, today, cc.Sunset, loc),
		},
		Days: days,
	}, nil
}

// resolveLocation prefers the IANA zone and falls back to the fixed offset in hours
func resolveLocation(name string, offsetHours float64) *time.Location {
	if name != "" {
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}
	seconds := int(math.Round(offsetHours * 3600))
	if seconds == 0 {
		return time.UTC
	}
	return time.FixedZone(fmt.Sprintf("UTC%+g", offsetHours), seconds)
}

// clockTime builds an instant from an epoch, or from an "HH:MM:SS" clock value on date.
// Zero is returned when neither is usable.
func clockTime(epoch int64, date time.Time, clock string, loc *time.Location) time.Time {
	if epoch > 0 {
		return time.Unix(epoch, 0).In(loc)
	}
	if date.IsZero() || clock == "" {
		return time.Time{}
	}
	t, err := time.ParseInLocation("15:04:05", clock, loc)
	if err != nil {
		return time.Time{}
	}
	y, m, d := date.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), 0, loc)
}
