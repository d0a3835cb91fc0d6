package httpapi

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/akozyrev/route-weather/internal/conversation"
	"github.com/akozyrev/route-weather/internal/weather"
)

var validate = validator.New()

// routeRequest carries one form or JSON route submission.
type routeRequest struct {
	Start         string   `json:"start" form:"start_city" validate:"required"`
	Intermediates []string `json:"intermediates" form:"intermediate_city"`
	End           string   `json:"end" form:"end_city" validate:"required"`
	Days          int      `json:"days" form:"days"`
}

type chatMessage struct {
	Text string `json:"text" validate:"required"`
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service, conv *conversation.Manager) {
	v1 := app.Group("/api/v1")

	// Synchronous route submission from the web form.
	v1.Post("/routes", func(c *fiber.Ctx) error {
		var req routeRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		route := weather.Route{
			Start:         req.Start,
			Intermediates: req.Intermediates,
			End:           req.End,
		}

		ds, cities, err := service.Aggregate(c.Context(), route, req.Days)
		if err != nil {
			if errors.Is(err, weather.ErrNoForecastData) {
				return fiber.NewError(fiber.StatusBadGateway, "failed to fetch weather data for the requested route")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to aggregate route forecast")
		}

		// Browser form posts continue to the visualization view.
		if c.Accepts("application/json", "text/html") == "text/html" {
			return c.Redirect("/dashboard", fiber.StatusSeeOther)
		}

		return c.JSON(fiber.Map{
			"runId":           ds.RunID,
			"requestedCities": cities,
			"days":            weather.NormalizeHorizon(req.Days),
			"records":         len(ds.Records),
		})
	})

	v1.Get("/dataset", datasetHandler(service))
	app.Get("/dashboard", datasetHandler(service))

	// One conversation turn; the path segment is the session identity.
	v1.Post("/chat/:session/messages", func(c *fiber.Ctx) error {
		var msg chatMessage
		if err := c.BodyParser(&msg); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(msg); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		reply := conv.HandleMessage(c.Context(), c.Params("session"), msg.Text)
		return c.JSON(fiber.Map{"reply": reply})
	})
}

// datasetHandler serves the persisted dataset grouped by city in route order,
// the shape the visualization surface consumes.
func datasetHandler(service *weather.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ds, err := service.Dataset(c.Context())
		if err != nil {
			if errors.Is(err, weather.ErrNoDataset) {
				return fiber.NewError(fiber.StatusNotFound, "no dataset available; submit a route first")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to load dataset")
		}

		type cityGroup struct {
			City string                   `json:"city"`
			Days []weather.ForecastRecord `json:"days"`
		}

		groups := make([]cityGroup, 0, 8)
		index := make(map[string]int, 8)
		for _, rec := range ds.Records {
			i, ok := index[rec.City]
			if !ok {
				i = len(groups)
				index[rec.City] = i
				groups = append(groups, cityGroup{City: rec.City})
			}
			groups[i].Days = append(groups[i].Days, rec)
		}

		return c.JSON(fiber.Map{
			"runId":       ds.RunID,
			"generatedAt": ds.GeneratedAt,
			"cities":      groups,
		})
	}
}
