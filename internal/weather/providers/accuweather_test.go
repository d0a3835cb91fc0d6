package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akozyrev/route-weather/internal/weather"
)

// mockAccuWeatherAPI mimics the locations directory and the daily forecast
// endpoints for a single known city.
func mockAccuWeatherAPI(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("/locations/v1/cities/search", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("apikey") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("q") == "Penza" {
			w.Write([]byte(`[{"Key":"295954","LocalizedName":"Penza"}]`))
			return
		}
		w.Write([]byte(`[]`))
	})

	mux.HandleFunc("/forecasts/v1/daily/1day/295954", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"DailyForecasts": [{
				"Date": "2024-11-02T07:00:00+03:00",
				"Temperature": {
					"Minimum": {"Value": -5.0, "Unit": "C"},
					"Maximum": {"Value": 10.0, "Unit": "C"}
				},
				"Day": {
					"Wind": {"Speed": {"Value": 20.0, "Unit": "km/h"}},
					"PrecipitationProbability": 10
				}
			}]
		}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestProvider(t *testing.T, apiKey string) *AccuWeatherProvider {
	t.Helper()
	srv := mockAccuWeatherAPI(t)
	return NewAccuWeatherProvider(srv.Client(), apiKey, srv.URL, "en-us")
}

func TestResolveCityFirstMatchWins(t *testing.T) {
	p := newTestProvider(t, "test-key")

	id, err := p.ResolveCity(context.Background(), "Penza")
	require.NoError(t, err)
	assert.Equal(t, weather.LocationID("295954"), id)
}

func TestResolveCityNoMatch(t *testing.T) {
	p := newTestProvider(t, "test-key")

	_, err := p.ResolveCity(context.Background(), "Atlantis")
	assert.ErrorIs(t, err, weather.ErrCityNotFound)
}

func TestResolveCityMissingAPIKey(t *testing.T) {
	p := newTestProvider(t, "")

	_, err := p.ResolveCity(context.Background(), "Penza")
	assert.Error(t, err)
}

func TestFetchForecastParsesDailyFields(t *testing.T) {
	p := newTestProvider(t, "test-key")

	forecasts, err := p.FetchForecast(context.Background(), "295954", 1)
	require.NoError(t, err)
	require.Len(t, forecasts, 1)

	f := forecasts[0]
	assert.Equal(t, -5.0, f.MinTemp)
	assert.Equal(t, 10.0, f.MaxTemp)
	assert.Equal(t, 20.0, f.WindSpeed)
	assert.Equal(t, 10.0, f.PrecipProb)
	assert.Equal(t, 2024, f.Date.Year())
}

func TestFetchForecastNormalizesHorizonToKnownEndpoint(t *testing.T) {
	// Days outside {1,5} hit the 5-day endpoint, which this mock does not
	// serve; a 404 must surface as a plain failure, not a retry loop.
	p := newTestProvider(t, "test-key")

	start := time.Now()
	_, err := p.FetchForecast(context.Background(), "295954", 1)
	require.NoError(t, err)

	_, err = p.FetchForecast(context.Background(), "295954", 3)
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestResolveCityUnauthorizedFailsFast(t *testing.T) {
	p := newTestProvider(t, "wrong-key")

	start := time.Now()
	_, err := p.ResolveCity(context.Background(), "Penza")
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}
