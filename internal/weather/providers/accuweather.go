package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/akozyrev/route-weather/internal/weather"
	"github.com/sony/gobreaker"
)

const defaultAccuWeatherBaseURL = "http://dataservice.accuweather.com"

// AccuWeatherProvider implements the weather.Provider interface against the
// AccuWeather locations directory and daily forecast API.
type AccuWeatherProvider struct {
	name     string
	apiKey   string
	baseURL  string
	language string
	client   *resilientClient
}

func NewAccuWeatherProvider(client *http.Client, apiKey, baseURL, language string) *AccuWeatherProvider {
	if baseURL == "" {
		baseURL = defaultAccuWeatherBaseURL
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "accuweather",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &AccuWeatherProvider{
		name:     "accuweather",
		apiKey:   apiKey,
		baseURL:  baseURL,
		language: language,
		client: newResilientClient(client, cb, BackoffConfig{
			MaxRetries:      3,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		}),
	}
}

func (p *AccuWeatherProvider) Name() string {
	return p.name
}

// ResolveCity looks a free-text city name up in the locations directory and
// returns the first match's key. An empty result set maps to ErrCityNotFound.
func (p *AccuWeatherProvider) ResolveCity(ctx context.Context, name string) (weather.LocationID, error) {
	if p.apiKey == "" {
		return "", fmt.Errorf("accuweather api key is not configured")
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("q", name)
		values.Set("apikey", p.apiKey)
		if p.language != "" {
			values.Set("language", p.language)
		}

		u := fmt.Sprintf("%s/locations/v1/cities/search?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := p.client.do(ctx, buildRequest)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var matches []struct {
		Key string `json:"Key"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&matches); err != nil {
		return "", err
	}

	if len(matches) == 0 || matches[0].Key == "" {
		return "", weather.ErrCityNotFound
	}
	return weather.LocationID(matches[0].Key), nil
}

// FetchForecast retrieves the daily forecast for a resolved location. The day
// count is normalized to an accepted horizon because the upstream only exposes
// fixed {1,5}-day endpoints.
func (p *AccuWeatherProvider) FetchForecast(ctx context.Context, id weather.LocationID, days int) ([]weather.DailyForecast, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("accuweather api key is not configured")
	}
	days = weather.NormalizeHorizon(days)

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("apikey", p.apiKey)
		values.Set("details", "true")

		u := fmt.Sprintf("%s/forecasts/v1/daily/%dday/%s?%s", p.baseURL, days, id, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := p.client.do(ctx, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload struct {
		DailyForecasts []struct {
			Date        string `json:"Date"`
			Temperature struct {
				Minimum struct {
					Value float64 `json:"Value"`
				} `json:"Minimum"`
				Maximum struct {
					Value float64 `json:"Value"`
				} `json:"Maximum"`
			} `json:"Temperature"`
			Day struct {
				Wind struct {
					Speed struct {
						Value float64 `json:"Value"`
					} `json:"Speed"`
				} `json:"Wind"`
				PrecipitationProbability float64 `json:"PrecipitationProbability"`
			} `json:"Day"`
		} `json:"DailyForecasts"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	forecasts := make([]weather.DailyForecast, 0, len(payload.DailyForecasts))
	for _, df := range payload.DailyForecasts {
		ts, err := time.Parse(time.RFC3339, df.Date)
		if err != nil {
			ts = time.Now().UTC()
		}

		forecasts = append(forecasts, weather.DailyForecast{
			Date:       ts,
			MinTemp:    df.Temperature.Minimum.Value,
			MaxTemp:    df.Temperature.Maximum.Value,
			WindSpeed:  df.Day.Wind.Speed.Value,
			PrecipProb: df.Day.PrecipitationProbability,
		})
	}

	return forecasts, nil
}
