package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/sunshinelabs/sunshined/internal/weather"
)

// DailyForecastFetcher implements the weather.Fetcher interface for an
// OpenWeatherMap-style daily forecast endpoint.
type DailyForecastFetcher struct {
	name    string
	apiKey  string
	baseURL string
	days    int
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewDailyForecastFetcher(client *http.Client, baseURL, apiKey string, days int) *DailyForecastFetcher {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openweather",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	if baseURL == "" {
		baseURL = "https://api.openweathermap.org/data/2.5/forecast/daily"
	}
	if days <= 0 {
		days = 14
	}

	return &DailyForecastFetcher{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: baseURL,
		days:    days,
		httpCfg: HTTPClientConfig{
			Client: client,
			Backoff: BackoffConfig{
				MaxRetries:      3,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     5 * time.Second,
			},
		},
		circuit: cb,
	}
}

func (f *DailyForecastFetcher) Name() string {
	return f.name
}

// Fetch performs one blocking round-trip and buffers the whole response body.
// Coordinates take precedence over the place name when both are configured.
func (f *DailyForecastFetcher) Fetch(ctx context.Context, loc weather.Location) ([]byte, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("mode", "json")
		values.Set("units", "metric")
		values.Set("cnt", strconv.Itoa(f.days))
		if f.apiKey != "" {
			values.Set("appid", f.apiKey)
		}

		if loc.HasCoordinates() {
			values.Set("lat", strconv.FormatFloat(*loc.Lat, 'f', -1, 64))
			values.Set("lon", strconv.FormatFloat(*loc.Lon, 'f', -1, 64))
		} else {
			if loc.Name == "" {
				return nil, fmt.Errorf("%w: empty location", weather.ErrMalformedRequest)
			}
			values.Set("q", loc.Name)
		}

		u := fmt.Sprintf("%s?%s", f.baseURL, values.Encode())
		req, err := http.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", weather.ErrMalformedRequest, err)
		}
		return req, nil
	}

	resp, err := doRequestWithResilience(ctx, f.httpCfg, f.circuit, buildRequest)
	if err != nil {
		return nil, mapTransportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", weather.ErrNetwork, err)
	}

	return body, nil
}

// mapTransportError folds transport-level outcomes into the refresh failure
// taxonomy. Endpoint status codes carried inside a 200 body are the parser's
// concern, not ours.
func mapTransportError(err error) error {
	switch {
	case errors.Is(err, weather.ErrMalformedRequest):
		return err
	case errors.Is(err, errNotFound):
		return fmt.Errorf("%w: %v", weather.ErrLocationNotFound, err)
	case errors.Is(err, errRateLimited),
		errors.Is(err, errServerError),
		errors.Is(err, errUnexpected),
		errors.Is(err, errCircuitOpen):
		return fmt.Errorf("%w: %v", weather.ErrServiceUnavailable, err)
	default:
		return fmt.Errorf("%w: %v", weather.ErrNetwork, err)
	}
}
