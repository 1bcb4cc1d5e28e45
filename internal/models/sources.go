package models

import "time"

// ElevationPoint is one point from an elevation lookup.
type ElevationPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Elevation float64 `json:"elevation"` // meters above sea level
}

// InfrastructureBundle counts the man-made and water features inside a
// bounding box, grouped the way the infrastructure scorer consumes them.
type InfrastructureBundle struct {
	Rivers           int `json:"rivers"` // rivers, streams, canals
	WaterBodies      int `json:"water_bodies"`
	DrainageChannels int `json:"drainage_channels"`
	Roads            int `json:"roads"`
	Buildings        int `json:"buildings"`
	FloodDefenses    int `json:"flood_defenses"`
}

// WaterFeatures is the combined count of natural water features.
func (b InfrastructureBundle) WaterFeatures() int {
	return b.Rivers + b.WaterBodies
}

// DisasterRecord is one historical disaster event from the government
// open-data portal.
type DisasterRecord struct {
	Type      string  `json:"type"`
	Province  string  `json:"province"`
	Year      int     `json:"year"`
	DamageUSD float64 `json:"damage_usd"`
	Deaths    int     `json:"deaths"`
}

// HydroStation is a hydrological monitoring station with its latest reading
// and the three fixed water-level thresholds assigned by the authority.
type HydroStation struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Province      string    `json:"province"`
	River         string    `json:"river"`
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	WaterLevelM   float64   `json:"water_level_m"`
	WarningLevelM float64   `json:"warning_level_m"`
	AlertLevelM   float64   `json:"alert_level_m"`
	DangerLevelM  float64   `json:"danger_level_m"`
	MeasuredAt    time.Time `json:"measured_at"`
}

// DensityRecord carries province-level population figures.
type DensityRecord struct {
	Province        string  `json:"province"`
	DensityPerKM2   float64 `json:"density_per_km2"`
	UrbanizationPct float64 `json:"urbanization_pct"`
}
