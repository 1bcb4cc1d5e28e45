package models

import "fmt"

// Location identifies an assessment target. Coordinates are validated at the
// API boundary; the engine treats a Location as an immutable value.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"name,omitempty"`
	Province  string  `json:"province,omitempty"`
	District  string  `json:"district,omitempty"`
	Ward      string  `json:"ward,omitempty"`
}

// Validate checks that the coordinates fall inside the WGS84 ranges.
func (l Location) Validate() error {
	if l.Latitude < -90 || l.Latitude > 90 {
		return fmt.Errorf("latitude %.4f out of range [-90,90]", l.Latitude)
	}
	if l.Longitude < -180 || l.Longitude > 180 {
		return fmt.Errorf("longitude %.4f out of range [-180,180]", l.Longitude)
	}
	return nil
}

// Query renders the location as a "lat,lng" provider query string. Coordinates
// are rounded to 4 decimals (~11m) so requests differing only by float noise
// share cache entries.
func (l Location) Query() string {
	return fmt.Sprintf("%.4f,%.4f", l.Latitude, l.Longitude)
}

// Coordinates is a bare lat/lng pair, used for elevation lookups.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Ward is a municipal geography record managed through the dashboard:
// the smallest administrative unit assessments can be addressed by.
type Ward struct {
	ID        int64   `json:"id"`
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	District  string  `json:"district"`
	Province  string  `json:"province"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Location converts a ward record into an assessment target.
func (w Ward) Location() Location {
	return Location{
		Latitude:  w.Latitude,
		Longitude: w.Longitude,
		Name:      w.Name,
		Province:  w.Province,
		District:  w.District,
		Ward:      w.Code,
	}
}
