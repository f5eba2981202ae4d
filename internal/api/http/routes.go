package httpapi

import (
	"context"
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/AliShahbazi81/OpenWeatherMapAPI/internal/store"
	"github.com/AliShahbazi81/OpenWeatherMapAPI/internal/weather"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service) {
	v1 := app.Group("/api/v1")

	v1.Get("/weather/current", lookup(service.Current))
	v1.Get("/weather/forecast", lookup(service.ThreeHourly))
	v1.Get("/weather/hourly", lookup(service.Hourly))
	v1.Get("/weather/daily", lookup(service.Daily))
	v1.Get("/weather/climate", lookup(service.Climate))

	v1.Get("/weather/latest", func(c *fiber.Ctx) error {
		locReq, err := parseLocationQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		snapshot, err := service.Latest(locReq.toLocation())
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no weather data for requested location")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather data")
		}

		return c.JSON(snapshot)
	})

	v1.Get("/weather/history", func(c *fiber.Ctx) error {
		locReq, err := parseLocationQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		loc := locReq.toLocation()
		snapshots, err := service.History(loc)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no weather history for requested location")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather history")
		}

		return c.JSON(fiber.Map{
			"location":  loc,
			"snapshots": snapshots,
		})
	})
}

// lookup adapts one client operation to a handler.
func lookup[T any](fetch func(context.Context, weather.Query) (T, error)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req lookupQuery
		req.bind(c)
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		q, err := req.toQuery()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		result, err := fetch(c.UserContext(), q)
		if err != nil {
			return fiber.NewError(statusFor(err), err.Error())
		}
		return c.JSON(result)
	}
}

// statusFor maps the client error taxonomy onto gateway statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, weather.ErrInvalidQuery), errors.Is(err, weather.ErrInvalidRequest):
		return fiber.StatusBadRequest
	case errors.Is(err, weather.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, weather.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, weather.ErrTransport):
		return fiber.StatusGatewayTimeout
	case errors.Is(err, weather.ErrUnauthorized),
		errors.Is(err, weather.ErrUnexpectedStatus),
		errors.Is(err, weather.ErrMalformedResponse),
		errors.Is(err, weather.ErrMalformedField):
		return fiber.StatusBadGateway
	case errors.Is(err, weather.ErrClosed):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// lookupQuery holds the raw query parameters of a lookup endpoint.
type lookupQuery struct {
	City    string
	State   string
	Country string
	ID      string `validate:"omitempty,number"`
	Zip     string
	Lat     string `validate:"omitempty,latitude"`
	Lon     string `validate:"omitempty,longitude"`
	Units   string `validate:"omitempty,oneof=standard metric imperial"`
	Lang    string
	Cnt     string `validate:"omitempty,number"`
	Mode    string
}

func (l *lookupQuery) bind(c *fiber.Ctx) {
	l.City = c.Query("city")
	l.State = c.Query("state")
	l.Country = c.Query("country")
	l.ID = c.Query("id")
	l.Zip = c.Query("zip")
	l.Lat = c.Query("lat")
	l.Lon = c.Query("lon")
	l.Units = c.Query("units")
	l.Lang = c.Query("lang")
	l.Cnt = c.Query("cnt")
	l.Mode = c.Query("mode")
}

// toQuery sets one lookup mode per parameter family present; weather.Query
// rejects zero or several of them.
func (l lookupQuery) toQuery() (weather.Query, error) {
	var q weather.Query

	if l.City != "" {
		q.City = &weather.CityName{Name: l.City, State: l.State, Country: l.Country}
	}
	if l.Zip != "" {
		q.Zip = &weather.Zip{Code: l.Zip, Country: l.Country, State: l.State}
	}
	if l.ID != "" {
		id, err := strconv.Atoi(l.ID)
		if err != nil {
			return q, errors.New("id must be an integer")
		}
		q.CityID = &id
	}
	if l.Lat != "" || l.Lon != "" {
		if l.Lat == "" || l.Lon == "" {
			return q, errors.New("lat and lon must be given together")
		}
		lat, err := strconv.ParseFloat(l.Lat, 64)
		if err != nil {
			return q, errors.New("lat must be a number")
		}
		lon, err := strconv.ParseFloat(l.Lon, 64)
		if err != nil {
			return q, errors.New("lon must be a number")
		}
		q.Coords = &weather.Coordinates{Lat: lat, Lon: lon}
	}

	q = q.WithUnits(weather.Units(l.Units)).
		WithLang(l.Lang).
		WithFormat(weather.Format(l.Mode))
	if l.Cnt != "" {
		n, err := strconv.Atoi(l.Cnt)
		if err != nil {
			return q, errors.New("cnt must be an integer")
		}
		q = q.WithCount(n)
	}

	return q, q.Validate()
}

// locationQuery holds query parameters for identifying a tracked location.
type locationQuery struct {
	City    string `validate:"required"`
	Country string `validate:"required"`
}

func (l locationQuery) toLocation() weather.Location {
	return weather.Location{
		City:    l.City,
		Country: l.Country,
	}
}

func parseLocationQuery(c *fiber.Ctx) (locationQuery, error) {
	var q locationQuery

	q.City = c.Query("city")
	q.Country = c.Query("country")

	if err := validate.Struct(q); err != nil {
		return q, err
	}

	return q, nil
}
