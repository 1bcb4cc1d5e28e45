package risk

import (
	"math"

	"github.com/mhtran-dev/go-flood-risk/internal/models"
)

// Source weights in the overall score. Fixed, sum to 1.0.
const (
	weightWeather        = 0.40
	weightTerrain        = 0.25
	weightInfrastructure = 0.15
	weightHistorical     = 0.15
	weightPopulation     = 0.05
)

// Combine computes the weighted overall score, rounded to the nearest
// integer. Deterministic and monotonic in each input; inputs in [0,100]
// keep the result in [0,100] because the weights sum to 1.
func Combine(weather, terrain, infrastructure, historical, population int) int {
	sum := weightWeather*float64(weather) +
		weightTerrain*float64(terrain) +
		weightInfrastructure*float64(infrastructure) +
		weightHistorical*float64(historical) +
		weightPopulation*float64(population)
	return int(math.Round(sum))
}

// LevelFor maps an overall score onto the five-tier risk scale.
func LevelFor(score int) models.RiskLevel {
	switch {
	case score >= 80:
		return models.RiskLevelExtreme
	case score >= 60:
		return models.RiskLevelVeryHigh
	case score >= 40:
		return models.RiskLevelHigh
	case score >= 20:
		return models.RiskLevelMedium
	default:
		return models.RiskLevelLow
	}
}

// ConfidenceFor maps the ratio of genuine sources to total sources onto
// the confidence scale.
func ConfidenceFor(genuineSources, totalSources int) models.ConfidenceLevel {
	if totalSources == 0 {
		return models.ConfidenceLow
	}
	ratio := float64(genuineSources) / float64(totalSources)
	switch {
	case ratio >= 0.8:
		return models.ConfidenceHigh
	case ratio >= 0.5:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}
