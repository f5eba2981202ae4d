package weather

import (
	"context"
)

// Client abstracts the OpenWeatherMap API. Each method performs exactly one
// request; the lookup mode is carried by the Query.
type Client interface {
	Current(ctx context.Context, q Query) (CurrentWeather, error)
	ThreeHourly(ctx context.Context, q Query) (Forecast, error)
	Hourly(ctx context.Context, q Query) (Forecast, error)
	Daily(ctx context.Context, q Query) (DailyForecast, error)
	Climate(ctx context.Context, q Query) (DailyForecast, error)
}

// Store is the contract the in-memory store (and any future persistent store) must satisfy.
type Store interface {
	SaveSnapshot(loc Location, snapshot Snapshot)
	GetLatest(loc Location) (Snapshot, error)
	GetHistory(loc Location) ([]Snapshot, error)
}
