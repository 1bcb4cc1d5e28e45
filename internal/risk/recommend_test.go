package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mhtran-dev/go-flood-risk/internal/models"
)

func factorsWithScores(weather, terrain, infrastructure, historical, population int) models.RiskFactors {
	return models.RiskFactors{
		Weather:        models.SourceAssessment{Score: weather},
		Terrain:        models.SourceAssessment{Score: terrain},
		Infrastructure: models.SourceAssessment{Score: infrastructure},
		Historical:     models.SourceAssessment{Score: historical},
		Population:     models.SourceAssessment{Score: population},
	}
}

func TestRecommendDefaultsWhenNothingFires(t *testing.T) {
	rec := Recommend(factorsWithScores(0, 0, 0, 0, 0), 10)

	assert.Equal(t, []string{"no immediate action required"}, rec.ImmediateActions)
	assert.Len(t, rec.ShortTerm, 1)
	assert.Len(t, rec.LongTerm, 1)
	assert.Len(t, rec.Preparedness, 1)
}

func TestRecommendExtremeOverallStacksBothImmediateRules(t *testing.T) {
	rec := Recommend(factorsWithScores(0, 0, 0, 0, 0), 85)

	assert.Len(t, rec.ImmediateActions, 5)
	assert.Contains(t, rec.ImmediateActions, "prepare for possible evacuation")
	assert.Contains(t, rec.ImmediateActions, "monitor water levels and official warnings closely")
}

func TestRecommendVeryHighOverallFiresMonitoringOnly(t *testing.T) {
	rec := Recommend(factorsWithScores(0, 0, 0, 0, 0), 65)

	assert.Len(t, rec.ImmediateActions, 2)
	assert.NotContains(t, rec.ImmediateActions, "prepare for possible evacuation")
}

func TestRecommendPerSourceRules(t *testing.T) {
	t.Run("weather", func(t *testing.T) {
		rec := Recommend(factorsWithScores(60, 0, 0, 0, 0), 30)
		assert.Contains(t, rec.ShortTerm, "monitor weather forecasts daily")
	})
	t.Run("terrain", func(t *testing.T) {
		rec := Recommend(factorsWithScores(0, 60, 0, 0, 0), 30)
		assert.Contains(t, rec.LongTerm, "consider elevating structures or relocating from the lowest ground")
		assert.Contains(t, rec.Preparedness, "prepare a family evacuation plan for low-lying areas")
	})
	t.Run("infrastructure", func(t *testing.T) {
		rec := Recommend(factorsWithScores(0, 0, 60, 0, 0), 30)
		assert.Contains(t, rec.LongTerm, "advocate for improved drainage infrastructure")
		assert.Contains(t, rec.ShortTerm, "clear drains and gutters around the property")
	})
	t.Run("historical", func(t *testing.T) {
		rec := Recommend(factorsWithScores(0, 0, 0, 60, 0), 30)
		assert.Contains(t, rec.Preparedness, "study past flood events in the area and their extents")
	})
	t.Run("population", func(t *testing.T) {
		rec := Recommend(factorsWithScores(0, 0, 0, 0, 60), 30)
		assert.Contains(t, rec.ShortTerm, "participate in local evacuation drills")
	})
}

func TestRecommendBelowThresholdSourceDoesNotFire(t *testing.T) {
	rec := Recommend(factorsWithScores(59, 59, 59, 59, 59), 59)

	assert.Equal(t, []string{"no immediate action required"}, rec.ImmediateActions)
	assert.Len(t, rec.ShortTerm, 1)
}

func TestRecommendListsNeverEmpty(t *testing.T) {
	for _, overall := range []int{0, 30, 60, 80, 100} {
		rec := Recommend(factorsWithScores(overall, overall, overall, overall, overall), overall)
		assert.NotEmpty(t, rec.ImmediateActions, "overall %d", overall)
		assert.NotEmpty(t, rec.ShortTerm, "overall %d", overall)
		assert.NotEmpty(t, rec.LongTerm, "overall %d", overall)
		assert.NotEmpty(t, rec.Preparedness, "overall %d", overall)
	}
}
