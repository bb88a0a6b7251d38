package httpapi

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/kelvins/geocoder"

	"github.com/5ivekayri/DWv2/internal/health"
	"github.com/5ivekayri/DWv2/internal/reco"
	"github.com/5ivekayri/DWv2/internal/weather"
)

var validate = validator.New()

// Deps bundles everything the HTTP layer needs. Reco and Health are
// optional; their routes are only registered when set.
type Deps struct {
	Weather *weather.Service
	Reco    *reco.Service
	Health  *health.Registry

	// GeocoderKey enables city/country lookups via the Google geocoding
	// API. Without it only lat/lon queries are accepted.
	GeocoderKey string
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	if deps.GeocoderKey != "" {
		geocoder.ApiKey = deps.GeocoderKey
	}

	v1 := app.Group("/api/v1")

	v1.Get("/weather/current", func(c *fiber.Ctx) error {
		lat, lon, err := resolveCoords(c, deps.GeocoderKey != "")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		point, err := deps.Weather.GetCurrent(c.Context(), lat, lon)
		if err != nil {
			return mapWeatherError(err)
		}
		return c.JSON(point)
	})

	v1.Get("/weather/hourly", func(c *fiber.Ctx) error {
		lat, lon, err := resolveCoords(c, deps.GeocoderKey != "")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		hours, err := intQuery(c, "hours", 24, 1, 48)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		points, err := deps.Weather.GetHourly(c.Context(), lat, lon, hours)
		if err != nil {
			return mapWeatherError(err)
		}
		return c.JSON(fiber.Map{"points": points})
	})

	v1.Get("/weather/daily", func(c *fiber.Ctx) error {
		lat, lon, err := resolveCoords(c, deps.GeocoderKey != "")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		days, err := intQuery(c, "days", 7, 1, 7)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		points, err := deps.Weather.GetDaily(c.Context(), lat, lon, days)
		if err != nil {
			return mapWeatherError(err)
		}
		return c.JSON(fiber.Map{"points": points})
	})

	if deps.Reco != nil {
		v1.Get("/reco", func(c *fiber.Ctx) error {
			lat, lon, err := resolveCoords(c, deps.GeocoderKey != "")
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			rec, err := deps.Reco.Get(c.Context(), lat, lon)
			if err != nil {
				if errors.Is(err, reco.ErrRateLimited) {
					return fiber.NewError(fiber.StatusTooManyRequests, "recommendation rate limit exceeded")
				}
				return mapWeatherError(err)
			}
			return c.JSON(rec)
		})
	}

	if deps.Health != nil {
		app.Get("/api/admin/health", func(c *fiber.Ctx) error {
			return c.JSON(deps.Health.Snapshot())
		})
	}
}

// coordsQuery validates parsed coordinates.
type coordsQuery struct {
	Lat float64 `validate:"gte=-90,lte=90"`
	Lon float64 `validate:"gte=-180,lte=180"`
}

// resolveCoords extracts coordinates from the query string. Either lat/lon
// are given directly, or city (+optional country) is geocoded when a
// geocoder key is configured. Validation happens here, before the engine is
// ever invoked.
func resolveCoords(c *fiber.Ctx, geocodingEnabled bool) (float64, float64, error) {
	city := c.Query("city")
	if city != "" {
		if !geocodingEnabled {
			return 0, 0, errors.New("city lookups are not enabled; pass lat and lon")
		}
		location, err := geocoder.Geocoding(geocoder.Address{
			City:    city,
			Country: c.Query("country"),
		})
		if err != nil {
			return 0, 0, errors.New("could not geocode city")
		}
		return location.Latitude, location.Longitude, nil
	}

	latStr := c.Query("lat")
	lonStr := c.Query("lon")
	if latStr == "" || lonStr == "" {
		return 0, 0, errors.New("lat and lon query parameters are required")
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return 0, 0, errors.New("lat must be a valid floating point number")
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return 0, 0, errors.New("lon must be a valid floating point number")
	}
	if err := validate.Struct(coordsQuery{Lat: lat, Lon: lon}); err != nil {
		return 0, 0, errors.New("lat and lon are out of range")
	}
	return lat, lon, nil
}

func intQuery(c *fiber.Ctx, name string, def, min, max int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < min || v > max {
		return 0, errors.New(name + " must be an integer between " +
			strconv.Itoa(min) + " and " + strconv.Itoa(max))
	}
	return v, nil
}

func mapWeatherError(err error) error {
	var allFailed *weather.AllFailedError
	if errors.As(err, &allFailed) {
		return fiber.NewError(fiber.StatusBadGateway, "service temporarily unavailable")
	}
	return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather data")
}
