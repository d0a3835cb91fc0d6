package weather

import (
	"context"
	"errors"
)

// LocationID is a provider-specific location key resolved from a city name.
type LocationID string

var (
	// ErrCityNotFound means the provider directory had no match for a name.
	ErrCityNotFound = errors.New("city not found")

	// ErrNoForecastData means no city in the route produced any data.
	ErrNoForecastData = errors.New("no forecast data for any city in route")

	// ErrNoDataset means no aggregation run has been persisted yet.
	ErrNoDataset = errors.New("no dataset available")
)

// Provider abstracts the upstream weather service. Both calls are pure
// request/response; a single failed attempt is reported upward and the
// caller decides what to do with the city.
type Provider interface {
	Name() string
	ResolveCity(ctx context.Context, name string) (LocationID, error)
	FetchForecast(ctx context.Context, id LocationID, days int) ([]DailyForecast, error)
}

// DatasetStore holds the most recent run's dataset. Replace is a full
// overwrite; readers must never observe a partially written dataset.
type DatasetStore interface {
	Replace(ctx context.Context, ds Dataset) error
	Load(ctx context.Context) (Dataset, error)
}
