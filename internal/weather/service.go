package weather

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Service orchestrates per-city forecast retrieval, the merge into a single
// dataset, and persistence. One Aggregate call is atomic with respect to the
// store: the previous dataset stays visible until the new one is complete.
type Service struct {
	provider    Provider
	store       DatasetStore
	callTimeout time.Duration
	log         *zap.SugaredLogger

	mu          sync.Mutex
	lastRoute   Route
	lastHorizon int
	hasLast     bool
}

// NewService creates a new Service. callTimeout bounds each city's
// resolve+fetch pair so a hung upstream call degrades into a skipped city.
func NewService(provider Provider, store DatasetStore, callTimeout time.Duration, log *zap.SugaredLogger) *Service {
	if callTimeout <= 0 {
		callTimeout = 30 * time.Second
	}
	return &Service{
		provider:    provider,
		store:       store,
		callTimeout: callTimeout,
		log:         log,
	}
}

// Aggregate fetches a forecast for every city on the route concurrently,
// classifies each day, and persists the merged dataset. Cities whose
// resolution or fetch fails are skipped; partial success is the normal
// failure mode. The returned city list is the full requested list, including
// skipped cities, for display purposes. ErrNoForecastData is returned only
// when zero cities produced data, in which case the store is left untouched.
func (s *Service) Aggregate(ctx context.Context, route Route, horizon int) (Dataset, []string, error) {
	cities := route.Cities()
	days := NormalizeHorizon(horizon)

	// One result slot per route position so the dataset keeps route order no
	// matter which fetch settles first.
	perCity := make([][]ForecastRecord, len(cities))

	var wg sync.WaitGroup
	for i, city := range cities {
		wg.Add(1)
		go func(i int, city string) {
			defer wg.Done()

			cctx, cancel := context.WithTimeout(ctx, s.callTimeout)
			defer cancel()

			forecasts, err := s.fetchCity(cctx, city, days)
			if err != nil {
				s.log.Warnw("skipping city", "city", city, "error", err)
				return
			}

			sort.Slice(forecasts, func(a, b int) bool {
				return forecasts[a].Date.Before(forecasts[b].Date)
			})

			records := make([]ForecastRecord, 0, len(forecasts))
			for _, f := range forecasts {
				records = append(records, NewRecord(city, f))
			}
			perCity[i] = records
		}(i, city)
	}
	wg.Wait()

	var records []ForecastRecord
	for _, rs := range perCity {
		records = append(records, rs...)
	}
	if len(records) == 0 {
		s.log.Warnw("no city on route produced forecast data", "cities", cities)
		return Dataset{}, cities, ErrNoForecastData
	}

	ds := NewDataset(records)
	if err := s.store.Replace(ctx, ds); err != nil {
		return Dataset{}, cities, fmt.Errorf("persist dataset: %w", err)
	}

	s.mu.Lock()
	s.lastRoute = route
	s.lastHorizon = days
	s.hasLast = true
	s.mu.Unlock()

	s.log.Infow("aggregated route forecast",
		"run", ds.RunID, "requested", len(cities), "succeeded", len(ds.Cities()), "days", days)
	return ds, cities, nil
}

func (s *Service) fetchCity(ctx context.Context, city string, days int) ([]DailyForecast, error) {
	id, err := s.provider.ResolveCity(ctx, city)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", city, err)
	}

	forecasts, err := s.provider.FetchForecast(ctx, id, days)
	if err != nil {
		return nil, fmt.Errorf("fetch forecast for %q: %w", city, err)
	}
	return forecasts, nil
}

// RefreshLast re-runs the most recent successful aggregation so the persisted
// dataset stays current. It is a no-op before the first successful run.
func (s *Service) RefreshLast(ctx context.Context) error {
	s.mu.Lock()
	route, days, ok := s.lastRoute, s.lastHorizon, s.hasLast
	s.mu.Unlock()

	if !ok {
		return nil
	}
	_, _, err := s.Aggregate(ctx, route, days)
	return err
}

// Dataset returns the persisted dataset from the store.
func (s *Service) Dataset(ctx context.Context) (Dataset, error) {
	return s.store.Load(ctx)
}
