package weather

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeClient struct {
	mu      sync.Mutex
	queries []Query
	current CurrentWeather
	err     error
}

func (f *fakeClient) record(q Query) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
}

func (f *fakeClient) Current(_ context.Context, q Query) (CurrentWeather, error) {
	f.record(q)
	return f.current, f.err
}

func (f *fakeClient) ThreeHourly(_ context.Context, q Query) (Forecast, error) {
	f.record(q)
	return Forecast{}, f.err
}

func (f *fakeClient) Hourly(_ context.Context, q Query) (Forecast, error) {
	f.record(q)
	return Forecast{}, f.err
}

func (f *fakeClient) Daily(_ context.Context, q Query) (DailyForecast, error) {
	f.record(q)
	return DailyForecast{}, f.err
}

func (f *fakeClient) Climate(_ context.Context, q Query) (DailyForecast, error) {
	f.record(q)
	return DailyForecast{}, f.err
}

type fakeStore struct {
	saved map[string][]Snapshot
}

func (s *fakeStore) SaveSnapshot(loc Location, snapshot Snapshot) {
	if s.saved == nil {
		s.saved = make(map[string][]Snapshot)
	}
	s.saved[loc.Key()] = append(s.saved[loc.Key()], snapshot)
}

var errMissing = errors.New("missing")

func (s *fakeStore) GetLatest(loc Location) (Snapshot, error) {
	h := s.saved[loc.Key()]
	if len(h) == 0 {
		return Snapshot{}, errMissing
	}
	return h[len(h)-1], nil
}

func (s *fakeStore) GetHistory(loc Location) ([]Snapshot, error) {
	h := s.saved[loc.Key()]
	if len(h) == 0 {
		return nil, errMissing
	}
	return h, nil
}

func TestRefreshStoresSnapshot(t *testing.T) {
	client := &fakeClient{current: CurrentWeather{Name: "Paris", ID: 2988507}}
	st := &fakeStore{}
	svc := NewService(client, st, UnitsMetric, "fr")
	fixed := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	loc := Location{City: "Paris", Country: "FR"}
	if err := svc.Refresh(context.Background(), loc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(client.queries) != 1 {
		t.Fatalf("expected one call, got %d", len(client.queries))
	}
	q := client.queries[0]
	if q.Identifier() != "Paris,FR" || q.Units != UnitsMetric || q.Lang != "fr" {
		t.Errorf("unexpected query %+v", q)
	}

	snap, err := svc.Latest(loc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Weather.Name != "Paris" || !snap.FetchedAt.Equal(fixed) || snap.Units != UnitsMetric {
		t.Errorf("unexpected snapshot %+v", snap)
	}
}

func TestRefreshKeepsLastGoodSnapshot(t *testing.T) {
	client := &fakeClient{current: CurrentWeather{Name: "Paris"}}
	st := &fakeStore{}
	svc := NewService(client, st, UnitsMetric, "")
	loc := Location{City: "Paris", Country: "FR"}

	if err := svc.Refresh(context.Background(), loc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	client.err = &StatusError{StatusCode: 401, Kind: ErrUnauthorized}
	err := svc.Refresh(context.Background(), loc)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	history, _ := svc.History(loc)
	if len(history) != 1 {
		t.Errorf("expected one stored snapshot, got %d", len(history))
	}
}

func TestServiceWithoutStore(t *testing.T) {
	svc := NewService(&fakeClient{}, nil, UnitsMetric, "")
	if err := svc.Refresh(context.Background(), Location{City: "x", Country: "y"}); err == nil {
		t.Error("expected error without store")
	}
	if _, err := svc.Latest(Location{}); err == nil {
		t.Error("expected error without store")
	}
}

func TestServicePassThrough(t *testing.T) {
	wantErr := &StatusError{StatusCode: 404, Identifier: "Nowhereville", Kind: ErrNotFound}
	client := &fakeClient{err: wantErr}
	svc := NewService(client, nil, UnitsStandard, "")
	q := ByCityName("Nowhereville", "", "")

	calls := []func() error{
		func() error { _, err := svc.Current(context.Background(), q); return err },
		func() error { _, err := svc.ThreeHourly(context.Background(), q); return err },
		func() error { _, err := svc.Hourly(context.Background(), q); return err },
		func() error { _, err := svc.Daily(context.Background(), q); return err },
		func() error { _, err := svc.Climate(context.Background(), q); return err },
	}
	for i, call := range calls {
		if err := call(); !errors.Is(err, ErrNotFound) {
			t.Errorf("call %d: expected ErrNotFound, got %v", i, err)
		}
	}
	if len(client.queries) != len(calls) {
		t.Errorf("expected %d calls, got %d", len(calls), len(client.queries))
	}
}
