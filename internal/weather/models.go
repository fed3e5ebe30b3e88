package weather

import (
	"fmt"
	"time"

	"github.com/sunshinelabs/sunshined/internal/common"
)

// Location identifies the place we track the forecast for.
// Name is a free-form place query ("London,UK", "94043,US"); Lat/Lon are
// optional coordinates that take precedence over Name when both are set.
type Location struct {
	Name string   `json:"name"`
	Lat  *float64 `json:"lat,omitempty"`
	Lon  *float64 `json:"lon,omitempty"`
}

// Key returns a canonical string key for this location, used for logging
// and for coalescing concurrent refreshes.
func (l Location) Key() string {
	if l.Lat != nil && l.Lon != nil {
		return fmt.Sprintf("%.4f,%.4f", *l.Lat, *l.Lon)
	}
	return l.Name
}

// HasCoordinates reports whether both latitude and longitude are set.
func (l Location) HasCoordinates() bool {
	return l.Lat != nil && l.Lon != nil
}

// WeatherDay is one day's forecast, normalized from a provider response.
type WeatherDay struct {
	// Date is Unix seconds at UTC midnight of the represented day.
	// It is the unique key in the store.
	Date int64 `json:"date"`

	// ConditionID is the provider's weather condition code (e.g. 800 = clear).
	ConditionID int `json:"conditionId"`

	MinTemp float64 `json:"minTemp"` // degrees Celsius
	MaxTemp float64 `json:"maxTemp"` // degrees Celsius

	Humidity float64 `json:"humidityPercent"`
	Pressure float64 `json:"pressureHpa"`

	WindSpeed     float64 `json:"windSpeed"`     // km/h
	WindDirection float64 `json:"windDirection"` // compass degrees, 0-360
}

// Day returns the calendar day this entry represents, at UTC midnight.
func (d WeatherDay) Day() time.Time {
	return time.Unix(d.Date, 0).UTC()
}

// DateFor returns the normalized date key for the day `offset` days after t.
func DateFor(t time.Time, offset int) int64 {
	return common.NormalizeToUTCMidnight(t).AddDate(0, 0, offset).Unix()
}
