package api

import (
	"github.com/mhtran-dev/go-flood-risk/internal/models"
)

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}
type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

func toGeoJSON(records []models.AssessmentRecord) FeatureCollection {
	features := make([]Feature, 0, len(records))

	for _, rec := range records {
		f := Feature{
			Type: "Feature",
			Geometry: Geometry{
				Type:        "Point",
				Coordinates: []float64{rec.Longitude, rec.Latitude},
			},
			Properties: map[string]any{
				"id":                 rec.ID,
				"province":           rec.Province,
				"ward":               rec.Ward,
				"overall_risk_score": rec.OverallRiskScore,
				"risk_level":         rec.RiskLevel,
				"confidence_level":   rec.ConfidenceLevel,
				"assessed_at":        rec.CreatedAt,
			},
		}
		features = append(features, f)
	}

	return FeatureCollection{
		Type:     "FeatureCollection",
		Features: features,
	}
}
