package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/akozyrev/route-weather/internal/conversation"
	"github.com/akozyrev/route-weather/internal/store"
	"github.com/akozyrev/route-weather/internal/weather"
)

// fixedProvider resolves every city and returns one mild forecast day.
type fixedProvider struct{}

func (fixedProvider) Name() string { return "fixed" }

func (fixedProvider) ResolveCity(_ context.Context, name string) (weather.LocationID, error) {
	if name == "Atlantis" {
		return "", weather.ErrCityNotFound
	}
	return weather.LocationID(name), nil
}

func (fixedProvider) FetchForecast(_ context.Context, _ weather.LocationID, _ int) ([]weather.DailyForecast, error) {
	return []weather.DailyForecast{{
		Date: time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC), MinTemp: 10, MaxTemp: 20, WindSpeed: 10, PrecipProb: 10,
	}}, nil
}

func newTestApp() *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": true, "message": err.Error()})
		},
	})

	log := zap.NewNop().Sugar()
	svc := weather.NewService(fixedProvider{}, store.NewMemoryStore(), time.Second, log)
	conv := conversation.NewManager(conversation.NewSessions(), svc, "http://localhost:8080/dashboard", log)
	RegisterRoutes(app, svc, conv)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) *http.Response {
	t.Helper()

	b, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestSubmitRouteValidation(t *testing.T) {
	app := newTestApp()

	// Missing start city should return 400.
	resp := postJSON(t, app, "/api/v1/routes", map[string]any{"end": "Penza"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Missing end city should also return 400.
	resp = postJSON(t, app, "/api/v1/routes", map[string]any{"start": "Moscow"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSubmitRouteThenReadDataset(t *testing.T) {
	app := newTestApp()

	resp := postJSON(t, app, "/api/v1/routes", map[string]any{
		"start":         "Moscow",
		"intermediates": []string{"Voronezh"},
		"end":           "Penza",
		"days":          3, // coerced to 5
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var submitted struct {
		RunID           string   `json:"runId"`
		RequestedCities []string `json:"requestedCities"`
		Days            int      `json:"days"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&submitted))
	assert.NotEmpty(t, submitted.RunID)
	assert.Equal(t, []string{"Moscow", "Voronezh", "Penza"}, submitted.RequestedCities)
	assert.Equal(t, 5, submitted.Days)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dataset", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var dataset struct {
		RunID  string `json:"runId"`
		Cities []struct {
			City string `json:"city"`
			Days []struct {
				Condition string `json:"condition"`
			} `json:"days"`
		} `json:"cities"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&dataset))
	assert.Equal(t, submitted.RunID, dataset.RunID)
	require.Len(t, dataset.Cities, 3)
	assert.Equal(t, "Moscow", dataset.Cities[0].City)
	assert.Equal(t, "favorable", dataset.Cities[0].Days[0].Condition)
}

func TestDatasetEmptyReturnsNotFound(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dataset", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestChatTurnEndpoint(t *testing.T) {
	app := newTestApp()

	send := func(text string) string {
		resp := postJSON(t, app, "/api/v1/chat/chat1/messages", map[string]any{"text": text})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var out struct {
			Reply string `json:"reply"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		return out.Reply
	}

	assert.Contains(t, send("/weather"), "first city")
	assert.Contains(t, send("Moscow"), "last city")
	assert.Contains(t, send("Penza"), "forecast days")
	assert.Contains(t, send("5"), "intermediate")

	final := send("no")
	assert.Contains(t, final, "First city: Moscow")
	assert.Contains(t, final, "/dashboard")

	// Empty message body is rejected before it reaches the conversation.
	resp := postJSON(t, app, "/api/v1/chat/chat1/messages", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSubmitRouteTotalFailure(t *testing.T) {
	app := newTestApp()

	resp := postJSON(t, app, "/api/v1/routes", map[string]any{
		"start": "Atlantis",
		"end":   "Atlantis",
		"days":  1,
	})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "failed to fetch weather data")
}
