package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akozyrev/route-weather/internal/weather"
)

func sampleDataset() weather.Dataset {
	base := time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)
	return weather.NewDataset([]weather.ForecastRecord{
		{City: "Moscow", Date: base, AvgTemp: 2.5, WindSpeed: 20, PrecipProb: 10, Condition: weather.ConditionFavorable},
		{City: "Moscow", Date: base.AddDate(0, 0, 1), AvgTemp: -3, WindSpeed: 15, PrecipProb: 40, Condition: weather.ConditionUnfavorable},
		{City: "Penza", Date: base, AvgTemp: 18, WindSpeed: 55, PrecipProb: 5, Condition: weather.ConditionUnfavorable},
	})
}

func TestFileStoreReplaceAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weather_forecast.csv")
	s := NewFileStore(path)
	ctx := context.Background()

	ds := sampleDataset()
	require.NoError(t, s.Replace(ctx, ds))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got.Records, 3)

	// Row order and values survive the round trip; run metadata does not.
	for i, rec := range got.Records {
		assert.Equal(t, ds.Records[i].City, rec.City)
		assert.True(t, ds.Records[i].Date.Equal(rec.Date))
		assert.Equal(t, ds.Records[i].AvgTemp, rec.AvgTemp)
		assert.Equal(t, ds.Records[i].WindSpeed, rec.WindSpeed)
		assert.Equal(t, ds.Records[i].PrecipProb, rec.PrecipProb)
		assert.Equal(t, ds.Records[i].Condition, rec.Condition)
	}
	assert.Empty(t, got.RunID)
	assert.False(t, got.GeneratedAt.IsZero())
}

func TestFileStoreReplaceOverwritesPreviousRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weather_forecast.csv")
	s := NewFileStore(path)
	ctx := context.Background()

	require.NoError(t, s.Replace(ctx, sampleDataset()))

	next := weather.NewDataset([]weather.ForecastRecord{
		{City: "Kazan", Date: time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), AvgTemp: 1, Condition: weather.ConditionFavorable},
	})
	require.NoError(t, s.Replace(ctx, next))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got.Records, 1)
	assert.Equal(t, "Kazan", got.Records[0].City)
}

func TestFileStoreLoadMissingFile(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "missing.csv"))

	_, err := s.Load(context.Background())
	assert.ErrorIs(t, err, weather.ErrNoDataset)
}

func TestMemoryStoreReplaceAndLoad(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.Load(ctx)
	assert.ErrorIs(t, err, weather.ErrNoDataset)

	ds := sampleDataset()
	require.NoError(t, s.Replace(ctx, ds))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, ds.RunID, got.RunID)
	assert.Len(t, got.Records, 3)
}
