package weather

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

const codOK = 200

// forecastPayload mirrors the daily-forecast response shape. Required fields
// are pointers so that an absent field is distinguishable from a zero value.
type forecastPayload struct {
	Cod  json.RawMessage `json:"cod"`
	List []struct {
		Temp *struct {
			Max *float64 `json:"max"`
			Min *float64 `json:"min"`
		} `json:"temp"`
		Weather []struct {
			ID *int `json:"id"`
		} `json:"weather"`
		Pressure *float64 `json:"pressure"`
		Humidity *float64 `json:"humidity"`
		Speed    *float64 `json:"speed"`
		Deg      *float64 `json:"deg"`
	} `json:"list"`
}

// Parse turns a raw daily-forecast response into per-day rows.
//
// The top-level status code is checked first: a not-found code fails with
// ErrLocationNotFound and any other non-success code with ErrServiceUnavailable,
// in both cases without touching the forecast list. Entries are trusted to be
// in chronological order, so entry i is assigned the date today+i days at UTC
// midnight and any embedded per-entry timestamp is ignored. A required field
// that is absent or of the wrong type fails the whole parse with
// ErrMalformedResponse.
func Parse(raw []byte, today time.Time) ([]WeatherDay, error) {
	var payload forecastPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if len(payload.Cod) > 0 {
		cod, err := parseCod(payload.Cod)
		if err != nil {
			return nil, err
		}
		switch {
		case cod == codOK:
			// proceed
		case cod == 404:
			return nil, ErrLocationNotFound
		default:
			return nil, fmt.Errorf("%w: status %d", ErrServiceUnavailable, cod)
		}
	}

	days := make([]WeatherDay, 0, len(payload.List))
	for i, entry := range payload.List {
		if entry.Temp == nil || entry.Temp.Max == nil || entry.Temp.Min == nil {
			return nil, fmt.Errorf("%w: entry %d missing temperature", ErrMalformedResponse, i)
		}
		if len(entry.Weather) == 0 || entry.Weather[0].ID == nil {
			return nil, fmt.Errorf("%w: entry %d missing weather condition", ErrMalformedResponse, i)
		}
		if entry.Pressure == nil || entry.Humidity == nil || entry.Speed == nil || entry.Deg == nil {
			return nil, fmt.Errorf("%w: entry %d missing atmosphere fields", ErrMalformedResponse, i)
		}

		days = append(days, WeatherDay{
			Date:          DateFor(today, i),
			ConditionID:   *entry.Weather[0].ID,
			MinTemp:       *entry.Temp.Min,
			MaxTemp:       *entry.Temp.Max,
			Humidity:      *entry.Humidity,
			Pressure:      *entry.Pressure,
			WindSpeed:     *entry.Speed,
			WindDirection: *entry.Deg,
		})
	}

	return days, nil
}

// parseCod accepts the status code as either a JSON number or a quoted
// string; the endpoint uses both depending on the error path.
func parseCod(raw json.RawMessage) (int, error) {
	s := string(bytes.Trim(bytes.TrimSpace(raw), `"`))
	cod, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: unparseable status code %q", ErrMalformedResponse, raw)
	}
	return cod, nil
}
