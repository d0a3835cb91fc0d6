package weather

// Travel-condition thresholds. A day is unfavorable when any one of them is
// breached. Fixed constants, not configuration.
const (
	minTravelAvgTemp = 0.0
	maxTravelAvgTemp = 35.0
	maxTravelWind    = 50.0
	maxTravelPrecip  = 70.0
)

// AverageTemp is the midpoint of the day's minimum and maximum temperature.
func AverageTemp(minTemp, maxTemp float64) float64 {
	return (minTemp + maxTemp) / 2
}

// Classify labels one day. Values exactly on a threshold stay favorable.
func Classify(avgTemp, windSpeed, precipProb float64) Condition {
	if avgTemp < minTravelAvgTemp || avgTemp > maxTravelAvgTemp ||
		windSpeed > maxTravelWind || precipProb > maxTravelPrecip {
		return ConditionUnfavorable
	}
	return ConditionFavorable
}

// NewRecord derives the dataset row for one city-day.
func NewRecord(city string, f DailyForecast) ForecastRecord {
	avg := AverageTemp(f.MinTemp, f.MaxTemp)
	return ForecastRecord{
		City:       city,
		Date:       f.Date,
		AvgTemp:    avg,
		WindSpeed:  f.WindSpeed,
		PrecipProb: f.PrecipProb,
		Condition:  Classify(avg, f.WindSpeed, f.PrecipProb),
	}
}
