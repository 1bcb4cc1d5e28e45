package risk

import "github.com/mhtran-dev/go-flood-risk/internal/models"

// Recommend derives the four guidance tiers from the source assessments and
// the overall score. Rules fire independently and can stack; a tier that
// gathered nothing falls back to a single default entry so no list is ever
// empty.
func Recommend(factors models.RiskFactors, overall int) models.Recommendations {
	var rec models.Recommendations

	if overall >= 80 {
		rec.ImmediateActions = append(rec.ImmediateActions,
			"prepare for possible evacuation",
			"move valuables and documents above expected water level",
			"follow official emergency channels continuously")
	}
	if overall >= 60 {
		rec.ImmediateActions = append(rec.ImmediateActions,
			"monitor water levels and official warnings closely",
			"stock emergency supplies for at least three days")
	}

	if factors.Weather.Score >= 60 {
		rec.ShortTerm = append(rec.ShortTerm,
			"monitor weather forecasts daily",
			"avoid travel during heavy rainfall")
	}
	if factors.Terrain.Score >= 60 {
		rec.LongTerm = append(rec.LongTerm,
			"consider elevating structures or relocating from the lowest ground")
		rec.Preparedness = append(rec.Preparedness,
			"prepare a family evacuation plan for low-lying areas")
	}
	if factors.Infrastructure.Score >= 60 {
		rec.LongTerm = append(rec.LongTerm,
			"advocate for improved drainage infrastructure")
		rec.ShortTerm = append(rec.ShortTerm,
			"clear drains and gutters around the property")
	}
	if factors.Historical.Score >= 60 {
		rec.Preparedness = append(rec.Preparedness,
			"study past flood events in the area and their extents")
		rec.LongTerm = append(rec.LongTerm,
			"support flood-resistant building standards")
	}
	if factors.Population.Score >= 60 {
		rec.Preparedness = append(rec.Preparedness,
			"join community flood-response programs")
		rec.ShortTerm = append(rec.ShortTerm,
			"participate in local evacuation drills")
	}

	if len(rec.ImmediateActions) == 0 {
		rec.ImmediateActions = []string{"no immediate action required"}
	}
	if len(rec.ShortTerm) == 0 {
		rec.ShortTerm = []string{"review flood preparedness annually"}
	}
	if len(rec.LongTerm) == 0 {
		rec.LongTerm = []string{"maintain awareness of local flood zones"}
	}
	if len(rec.Preparedness) == 0 {
		rec.Preparedness = []string{"keep emergency contacts and supplies up to date"}
	}
	return rec
}
