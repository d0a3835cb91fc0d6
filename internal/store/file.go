package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/akozyrev/route-weather/internal/weather"
)

// csvHeader matches the schema the visualization surface reads.
var csvHeader = []string{
	"City", "Date", "Average Temperature", "Wind Speed", "Precipitation Probability", "Condition",
}

// FileStore persists the dataset as a CSV file. Replace writes to a temp file
// in the same directory and renames it over the target, so a concurrent
// reader sees either the old or the new dataset, never a partial one.
//
// The CSV carries only the tabular records; run metadata does not round-trip.
// Load reports the file's modification time as GeneratedAt.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Replace(_ context.Context, ds weather.Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".dataset-*.csv")
	if err != nil {
		return fmt.Errorf("create temp dataset file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(csvHeader); err != nil {
		tmp.Close()
		return fmt.Errorf("write dataset header: %w", err)
	}

	for _, rec := range ds.Records {
		row := []string{
			rec.City,
			rec.Date.UTC().Format(time.RFC3339),
			formatFloat(rec.AvgTemp),
			formatFloat(rec.WindSpeed),
			formatFloat(rec.PrecipProb),
			string(rec.Condition),
		}
		if err := w.Write(row); err != nil {
			tmp.Close()
			return fmt.Errorf("write dataset row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush dataset: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp dataset file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace dataset file: %w", err)
	}
	return nil
}

func (s *FileStore) Load(_ context.Context) (weather.Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return weather.Dataset{}, weather.ErrNoDataset
	}
	if err != nil {
		return weather.Dataset{}, fmt.Errorf("open dataset file: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return weather.Dataset{}, fmt.Errorf("read dataset file: %w", err)
	}
	if len(rows) <= 1 {
		return weather.Dataset{}, weather.ErrNoDataset
	}

	records := make([]weather.ForecastRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rec, err := parseRow(row)
		if err != nil {
			return weather.Dataset{}, fmt.Errorf("dataset row %d: %w", i+1, err)
		}
		records = append(records, rec)
	}

	ds := weather.Dataset{Records: records}
	if info, err := f.Stat(); err == nil {
		ds.GeneratedAt = info.ModTime().UTC()
	}
	return ds, nil
}

func parseRow(row []string) (weather.ForecastRecord, error) {
	if len(row) != len(csvHeader) {
		return weather.ForecastRecord{}, fmt.Errorf("expected %d columns, got %d", len(csvHeader), len(row))
	}

	date, err := time.Parse(time.RFC3339, row[1])
	if err != nil {
		return weather.ForecastRecord{}, fmt.Errorf("parse date: %w", err)
	}
	avgTemp, err := strconv.ParseFloat(row[2], 64)
	if err != nil {
		return weather.ForecastRecord{}, fmt.Errorf("parse average temperature: %w", err)
	}
	wind, err := strconv.ParseFloat(row[3], 64)
	if err != nil {
		return weather.ForecastRecord{}, fmt.Errorf("parse wind speed: %w", err)
	}
	precip, err := strconv.ParseFloat(row[4], 64)
	if err != nil {
		return weather.ForecastRecord{}, fmt.Errorf("parse precipitation probability: %w", err)
	}

	return weather.ForecastRecord{
		City:       row[0],
		Date:       date,
		AvgTemp:    avgTemp,
		WindSpeed:  wind,
		PrecipProb: precip,
		Condition:  weather.Condition(row[5]),
	}, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
