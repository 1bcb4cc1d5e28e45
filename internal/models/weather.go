package models

import "time"

// WeatherSnapshot captures current conditions at a location.
type WeatherSnapshot struct {
	TempC      float64   `json:"temp_c"`
	PrecipMM   float64   `json:"precip_mm"`
	Humidity   float64   `json:"humidity"`
	WindKPH    float64   `json:"wind_kph"`
	Condition  string    `json:"condition"`
	ObservedAt time.Time `json:"observed_at"`
}

// ForecastDay is one day of the short-range forecast.
type ForecastDay struct {
	Date         string  `json:"date"`
	PrecipMM     float64 `json:"precip_mm"`      // total expected precipitation
	ChanceOfRain float64 `json:"chance_of_rain"` // 0-100
	AvgHumidity  float64 `json:"avg_humidity"`
	MaxWindKPH   float64 `json:"max_wind_kph"`
}

// Forecast bundles current conditions with the daily outlook, mirroring the
// provider's forecast response which includes both.
type Forecast struct {
	Current WeatherSnapshot `json:"current"`
	Days    []ForecastDay   `json:"days"`
}

// WeatherWarning is a provider-issued warning (typhoon, heavy rain, ...).
type WeatherWarning struct {
	Event    string `json:"event"`
	Headline string `json:"headline"`
	Severity string `json:"severity"`
}

// AlertBundle wraps the provider's active warnings for a location.
type AlertBundle struct {
	Warnings []WeatherWarning `json:"warnings"`
}
