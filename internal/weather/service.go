package weather

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Service exposes the API client to the gateway and keeps the latest
// observation of every tracked location in a Store.
type Service struct {
	client Client
	store  Store
	units  Units
	lang   string
	now    func() time.Time
}

// NewService creates a new Service. units and lang apply to Refresh only;
// pass-through calls use whatever the caller's Query says.
func NewService(client Client, store Store, units Units, lang string) *Service {
	return &Service{
		client: client,
		store:  store,
		units:  units,
		lang:   lang,
		now:    time.Now,
	}
}

func (s *Service) Current(ctx context.Context, q Query) (CurrentWeather, error) {
	return s.client.Current(ctx, q)
}

func (s *Service) ThreeHourly(ctx context.Context, q Query) (Forecast, error) {
	return s.client.ThreeHourly(ctx, q)
}

func (s *Service) Hourly(ctx context.Context, q Query) (Forecast, error) {
	return s.client.Hourly(ctx, q)
}

func (s *Service) Daily(ctx context.Context, q Query) (DailyForecast, error) {
	return s.client.Daily(ctx, q)
}

func (s *Service) Climate(ctx context.Context, q Query) (DailyForecast, error) {
	return s.client.Climate(ctx, q)
}

// Refresh fetches the current weather for loc and stores it. On failure the
// last good snapshot is kept.
func (s *Service) Refresh(ctx context.Context, loc Location) error {
	if s.store == nil {
		return fmt.Errorf("no store configured")
	}

	q := loc.Query().WithUnits(s.units).WithLang(s.lang)
	log.Printf("DEBUG: Refresh called for %s", loc.Key())

	cw, err := s.client.Current(ctx, q)
	if err != nil {
		return fmt.Errorf("refresh %s: %w", loc.Key(), err)
	}

	s.store.SaveSnapshot(loc, Snapshot{
		Location:  loc,
		FetchedAt: s.now().UTC(),
		Units:     s.units,
		Weather:   cw,
	})
	return nil
}

// Latest delegates to the underlying store.
func (s *Service) Latest(loc Location) (Snapshot, error) {
	if s.store == nil {
		return Snapshot{}, fmt.Errorf("no store configured")
	}
	return s.store.GetLatest(loc)
}

// History delegates to the underlying store.
func (s *Service) History(loc Location) ([]Snapshot, error) {
	if s.store == nil {
		return nil, fmt.Errorf("no store configured")
	}
	return s.store.GetHistory(loc)
}
