package httpapi

import (
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/sunshinelabs/sunshined/internal/common"
	"github.com/sunshinelabs/sunshined/internal/config"
	"github.com/sunshinelabs/sunshined/internal/geo"
	"github.com/sunshinelabs/sunshined/internal/weather"
)

var validate = validator.New()

// Deps bundles the collaborators the HTTP handlers need.
type Deps struct {
	Service  *weather.Service
	Prefs    *config.Preferences
	Resolver *geo.Resolver
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	v1 := app.Group("/api/v1")

	v1.Get("/forecast", func(c *fiber.Ctx) error {
		from := common.NormalizeToUTCMidnight(time.Now()).Unix()
		if fromStr := c.Query("from"); fromStr != "" {
			ts, err := parseTime(fromStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			from = common.NormalizeToUTCMidnight(ts).Unix()
		}

		days, err := deps.Service.RowsFrom(from)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read forecast")
		}
		if len(days) == 0 {
			return fiber.NewError(fiber.StatusNotFound, "no weather data available")
		}

		return c.JSON(fiber.Map{
			"from": from,
			"days": days,
		})
	})

	v1.Post("/refresh", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.Context(), 30*time.Second)
		defer cancel()

		loc := deps.Prefs.Location()
		n, err := deps.Service.Refresh(ctx, loc)
		if err != nil {
			// The taxonomy is collapsed for clients: every failure renders
			// the same generic no-data state.
			log.Printf("refresh failed for %s: %v", loc.Key(), err)
			if errors.Is(err, weather.ErrLocationNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no weather data available")
			}
			return fiber.NewError(fiber.StatusBadGateway, "no weather data available")
		}

		return c.JSON(fiber.Map{
			"location": loc,
			"rows":     n,
		})
	})

	v1.Get("/preferences/location", func(c *fiber.Ctx) error {
		return c.JSON(deps.Prefs.Location())
	})

	v1.Put("/preferences/location", func(c *fiber.Ctx) error {
		var req locationUpdate
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		loc := req.toLocation()

		// Resolve coordinates for the new place when we can, so that
		// subsequent fetches use the preferred lat/lon form.
		if !loc.HasCoordinates() && deps.Resolver != nil && deps.Resolver.Enabled() {
			lat, lon, err := deps.Resolver.Resolve(loc.Name)
			if err != nil {
				log.Printf("geocoding %q failed, falling back to name queries: %v", loc.Name, err)
			} else {
				loc.Lat = &lat
				loc.Lon = &lon
			}
		}

		deps.Prefs.SetLocation(loc)
		return c.JSON(loc)
	})
}

// locationUpdate is the PUT body for changing the tracked location.
// Coordinates are optional but must come as a pair.
type locationUpdate struct {
	Name string   `json:"name" validate:"required"`
	Lat  *float64 `json:"lat" validate:"required_with=Lon,omitempty,gte=-90,lte=90"`
	Lon  *float64 `json:"lon" validate:"required_with=Lat,omitempty,gte=-180,lte=180"`
}

func (l locationUpdate) toLocation() weather.Location {
	return weather.Location{
		Name: l.Name,
		Lat:  l.Lat,
		Lon:  l.Lon,
	}
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
