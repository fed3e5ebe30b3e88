// Package geo resolves place names to coordinates so the fetcher can use
// lat/lon requests, which take precedence over name-based ones.
package geo

import (
	"errors"
	"strings"

	"github.com/kelvins/geocoder"
)

var ErrNoAPIKey = errors.New("geocoder api key not configured")

// Resolver wraps the geocoding client. A zero api key disables resolution.
type Resolver struct {
	apiKey string
}

func NewResolver(apiKey string) *Resolver {
	return &Resolver{apiKey: apiKey}
}

// Enabled reports whether this resolver can perform lookups.
func (r *Resolver) Enabled() bool {
	return r.apiKey != ""
}

// Resolve turns a "City" or "City,Country" place query into coordinates.
func (r *Resolver) Resolve(place string) (lat, lon float64, err error) {
	if !r.Enabled() {
		return 0, 0, ErrNoAPIKey
	}

	geocoder.ApiKey = r.apiKey

	addr := geocoder.Address{}
	parts := strings.SplitN(place, ",", 2)
	addr.City = strings.TrimSpace(parts[0])
	if len(parts) == 2 {
		addr.Country = strings.TrimSpace(parts[1])
	}

	loc, err := geocoder.Geocoding(addr)
	if err != nil {
		return 0, 0, err
	}
	return loc.Latitude, loc.Longitude, nil
}
