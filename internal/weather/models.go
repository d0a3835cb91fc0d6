package weather

import (
	"time"

	"github.com/google/uuid"
)

// Condition labels one forecast day as suitable for travel or not.
type Condition string

const (
	ConditionFavorable   Condition = "favorable"
	ConditionUnfavorable Condition = "unfavorable"
)

// Accepted forecast horizons, matching the provider's daily endpoints.
const (
	HorizonShort   = 1
	HorizonDefault = 5
)

// NormalizeHorizon coerces a raw day count to an accepted horizon. Anything
// outside {1, 5} becomes the default. The original flow substituted the
// default silently instead of re-prompting; that behaviour is kept on purpose.
func NormalizeHorizon(days int) int {
	if days == HorizonShort || days == HorizonDefault {
		return days
	}
	return HorizonDefault
}

// Route is the ordered start/intermediate/end city sequence for one
// aggregation run. City names are free text; resolution may fail per city.
type Route struct {
	Start         string   `json:"start"`
	Intermediates []string `json:"intermediates,omitempty"`
	End           string   `json:"end"`
}

// Cities returns the route's city names in travel order.
func (r Route) Cities() []string {
	cities := make([]string, 0, len(r.Intermediates)+2)
	cities = append(cities, r.Start)
	cities = append(cities, r.Intermediates...)
	cities = append(cities, r.End)
	return cities
}

// DailyForecast is one provider-reported day for a single city. Units are
// whatever the provider reports; nothing downstream converts them.
type DailyForecast struct {
	Date       time.Time
	MinTemp    float64
	MaxTemp    float64
	WindSpeed  float64
	PrecipProb float64
}

// ForecastRecord is one dataset row: a city, a date, and the derived fields.
type ForecastRecord struct {
	City       string    `json:"city"`
	Date       time.Time `json:"date"`
	AvgTemp    float64   `json:"averageTemperature"`
	WindSpeed  float64   `json:"windSpeed"`
	PrecipProb float64   `json:"precipitationProbability"`
	Condition  Condition `json:"condition"`
}

// Dataset is the merged output of one aggregation run: every surviving city's
// records, grouped by city in route order, dates ascending within a city.
type Dataset struct {
	RunID       string           `json:"runId,omitempty"`
	GeneratedAt time.Time        `json:"generatedAt"`
	Records     []ForecastRecord `json:"records"`
}

// NewDataset stamps a fresh run over the given records.
func NewDataset(records []ForecastRecord) Dataset {
	return Dataset{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Records:     records,
	}
}

// Cities returns the dataset's city names in first-appearance order.
func (d Dataset) Cities() []string {
	seen := make(map[string]struct{}, 8)
	var cities []string
	for _, rec := range d.Records {
		if _, ok := seen[rec.City]; ok {
			continue
		}
		seen[rec.City] = struct{}{}
		cities = append(cities, rec.City)
	}
	return cities
}
