package models

import "time"

// AlertSeverity ranks an alert. Hydro danger breaches map to high,
// alert-level breaches to medium.
type AlertSeverity string

const (
	AlertSeverityLow    AlertSeverity = "low"
	AlertSeverityMedium AlertSeverity = "medium"
	AlertSeverityHigh   AlertSeverity = "high"
)

// Alert types emitted by the compiler.
const (
	AlertTypeHeavyRain      = "heavy_rain"
	AlertTypeProlongedRain  = "prolonged_rain"
	AlertTypeWeatherWarning = "weather_warning"
	AlertTypeHydroDanger    = "hydro_danger"
	AlertTypeHydroAlert     = "hydro_alert"
)

// Alert is an ephemeral region-level warning generated per query; it is
// broadcast and returned but never stored.
type Alert struct {
	ID                 string        `json:"id"`
	Type               string        `json:"type"`
	Severity           AlertSeverity `json:"severity"`
	Location           string        `json:"location"`
	Message            string        `json:"message"`
	Timestamp          time.Time     `json:"timestamp"`
	RecommendedActions []string      `json:"recommended_actions"`
}

// AlertSummary totals an alert report.
type AlertSummary struct {
	Total        int       `json:"total"`
	HighSeverity int       `json:"high_severity"`
	GeneratedAt  time.Time `json:"generated_at"`
}

// AlertReport is the compiler's output for one province: a ranked,
// type-deduplicated alert list plus its summary.
type AlertReport struct {
	Province string       `json:"province"`
	Alerts   []Alert      `json:"alerts"`
	Summary  AlertSummary `json:"summary"`
}

// StationStatus is one station's threshold standing inside a regional summary.
type StationStatus struct {
	Name        string  `json:"name"`
	River       string  `json:"river"`
	WaterLevelM float64 `json:"water_level_m"`
	Status      string  `json:"status"` // normal, warning, alert, danger
}

// RegionalSummary is the province-level monitoring rollup for the dashboard.
type RegionalSummary struct {
	Province           string           `json:"province"`
	StationCount       int              `json:"station_count"`
	StationsAtAlert    int              `json:"stations_at_alert"`
	StationsAtDanger   int              `json:"stations_at_danger"`
	WorstStation       *StationStatus   `json:"worst_station,omitempty"`
	CurrentWeather     *WeatherSnapshot `json:"current_weather,omitempty"`
	ActiveAlerts       int              `json:"active_alerts"`
	HighSeverityAlerts int              `json:"high_severity_alerts"`
	WardCount          int              `json:"ward_count"`
	GeneratedAt        time.Time        `json:"generated_at"`
}
