package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/AliShahbazi81/OpenWeatherMapAPI/internal/api/http"
	"github.com/AliShahbazi81/OpenWeatherMapAPI/internal/config"
	"github.com/AliShahbazi81/OpenWeatherMapAPI/internal/scheduler"
	"github.com/AliShahbazi81/OpenWeatherMapAPI/internal/store"
	"github.com/AliShahbazi81/OpenWeatherMapAPI/internal/weather"
	"github.com/AliShahbazi81/OpenWeatherMapAPI/internal/weather/providers"
)

const usage = `usage: openweathermap [serve | current | forecast | hourly | daily | climate] [flags]

serve runs the HTTP gateway and the poller (default).
The other commands perform a single lookup and print the JSON result.`

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	client, err := providers.NewOpenWeatherClient(cfg.ClientConfig())
	if err != nil {
		log.Fatalf("failed to create openweather client: %v", err)
	}
	defer client.Close()

	cmd := "serve"
	args := os.Args[1:]
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "serve":
		serve(cfg, client)
	case "current", "forecast", "hourly", "daily", "climate":
		if err := lookupOnce(client, cfg, cmd, args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			client.Close()
			os.Exit(1)
		}
	default:
		fmt.Fprintln(os.Stderr, usage)
		client.Close()
		os.Exit(2)
	}
}

func serve(cfg *config.AppConfig, client weather.Client) {
	// In-memory store with configured retention.
	memStore := store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)

	service := weather.NewService(client, memStore, cfg.Units, cfg.Lang)

	// Poller that periodically refreshes tracked locations.
	sched := scheduler.New(cfg.Locations, cfg.FetchInterval, service)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "openweathermap-gateway",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "openweathermap-gateway",
		})
	})

	httpapi.RegisterRoutes(app, service)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()
	log.Printf("INFO: listening on :%s, tracking %d locations", cfg.Port, len(cfg.Locations))

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}

func lookupOnce(client weather.Client, cfg *config.AppConfig, cmd string, args []string) error {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	var (
		city    = fs.String("city", "", "city name")
		state   = fs.String("state", "", "state code (with -city or -zip)")
		country = fs.String("country", "", "country code (with -city or -zip)")
		id      = fs.Int("id", 0, "city id")
		zip     = fs.String("zip", "", "ZIP / postal code")
		lat     = fs.Float64("lat", 0, "latitude (with -lon)")
		lon     = fs.Float64("lon", 0, "longitude (with -lat)")
		units   = fs.String("units", string(cfg.Units), "standard, metric or imperial")
		lang    = fs.String("lang", cfg.Lang, "response language")
		cnt     = fs.Int("cnt", 0, "number of forecast entries")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	var q weather.Query
	if set["city"] {
		q.City = &weather.CityName{Name: *city, State: *state, Country: *country}
	}
	if set["zip"] {
		q.Zip = &weather.Zip{Code: *zip, Country: *country, State: *state}
	}
	if set["id"] {
		q.CityID = id
	}
	if set["lat"] || set["lon"] {
		q.Coords = &weather.Coordinates{Lat: *lat, Lon: *lon}
	}
	q = q.WithUnits(weather.Units(*units)).WithLang(*lang).WithCount(*cnt)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTPTimeout)
	defer cancel()

	var (
		result any
		err    error
	)
	switch cmd {
	case "current":
		result, err = client.Current(ctx, q)
	case "forecast":
		result, err = client.ThreeHourly(ctx, q)
	case "hourly":
		result, err = client.Hourly(ctx, q)
	case "daily":
		result, err = client.Daily(ctx, q)
	case "climate":
		result, err = client.Climate(ctx, q)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
