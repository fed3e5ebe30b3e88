package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/sunshinelabs/sunshined/internal/config"
	"github.com/sunshinelabs/sunshined/internal/geo"
	"github.com/sunshinelabs/sunshined/internal/store"
	"github.com/sunshinelabs/sunshined/internal/weather"
)

type stubFetcher struct {
	body []byte
	err  error
}

func (f *stubFetcher) Name() string { return "stub" }

func (f *stubFetcher) Fetch(ctx context.Context, loc weather.Location) ([]byte, error) {
	return f.body, f.err
}

func newTestApp(t *testing.T, fetcher weather.Fetcher) (*fiber.App, *config.Preferences) {
	t.Helper()

	st, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	svc := weather.NewService(st, fetcher)
	prefs := config.NewPreferences(weather.Location{Name: "London,UK"})

	app := fiber.New()
	RegisterRoutes(app, Deps{
		Service:  svc,
		Prefs:    prefs,
		Resolver: geo.NewResolver(""),
	})
	return app, prefs
}

func TestForecastEmptyCacheReturns404(t *testing.T) {
	app, _ := newTestApp(t, &stubFetcher{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/forecast", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, resp.StatusCode)
	}
}

func TestForecastInvalidFromReturns400(t *testing.T) {
	app, _ := newTestApp(t, &stubFetcher{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/forecast?from=yesterday", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
}

func TestRefreshThenForecast(t *testing.T) {
	body := `{"cod":200,"list":[{"temp":{"max":25,"min":14},"weather":[{"id":800}],"pressure":1012,"humidity":40,"speed":3.1,"deg":90}]}`
	app, _ := newTestApp(t, &stubFetcher{body: []byte(body)})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/refresh", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var refreshOut struct {
		Rows int `json:"rows"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&refreshOut); err != nil {
		t.Fatalf("failed to decode refresh response: %v", err)
	}
	if refreshOut.Rows != 1 {
		t.Fatalf("expected 1 row written, got %d", refreshOut.Rows)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/forecast", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var forecastOut struct {
		Days []weather.WeatherDay `json:"days"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&forecastOut); err != nil {
		t.Fatalf("failed to decode forecast response: %v", err)
	}
	if len(forecastOut.Days) != 1 || forecastOut.Days[0].ConditionID != 800 {
		t.Fatalf("unexpected forecast payload: %+v", forecastOut)
	}
}

func TestRefreshFailureRendersNoData(t *testing.T) {
	app, _ := newTestApp(t, &stubFetcher{err: weather.ErrNetwork})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/refresh", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected status %d, got %d", http.StatusBadGateway, resp.StatusCode)
	}
}

func TestRefreshUnknownLocationRenders404(t *testing.T) {
	app, _ := newTestApp(t, &stubFetcher{body: []byte(`{"cod":404}`)})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/refresh", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, resp.StatusCode)
	}
}

func TestPreferencesValidation(t *testing.T) {
	app, _ := newTestApp(t, &stubFetcher{})

	cases := map[string]string{
		"missing name":     `{}`,
		"lat without lon":  `{"name":"Paris,FR","lat":48.85}`,
		"lat out of range": `{"name":"Paris,FR","lat":123.0,"lon":2.35}`,
	}

	for name, body := range cases {
		req := httptest.NewRequest(http.MethodPut, "/api/v1/preferences/location", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: expected status %d, got %d", name, http.StatusBadRequest, resp.StatusCode)
		}
	}
}

func TestPreferencesUpdateNotifiesSubscribers(t *testing.T) {
	app, prefs := newTestApp(t, &stubFetcher{})

	var notified []weather.Location
	prefs.Subscribe(func(loc weather.Location) {
		notified = append(notified, loc)
	})

	body := `{"name":"Paris,FR","lat":48.8566,"lon":2.3522}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/preferences/location", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	if len(notified) != 1 || notified[0].Name != "Paris,FR" {
		t.Fatalf("expected one notification for Paris,FR, got %+v", notified)
	}
	if !notified[0].HasCoordinates() {
		t.Fatal("expected coordinates to be carried through")
	}

	// The stored preference reflects the update.
	got := prefs.Location()
	if got.Name != "Paris,FR" {
		t.Fatalf("expected preference updated, got %+v", got)
	}
}
