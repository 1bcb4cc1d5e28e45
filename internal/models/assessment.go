package models

import "time"

// RiskLevel is the five-tier scale used for the overall assessment.
type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "low"
	RiskLevelMedium   RiskLevel = "medium"
	RiskLevelHigh     RiskLevel = "high"
	RiskLevelVeryHigh RiskLevel = "very_high"
	RiskLevelExtreme  RiskLevel = "extreme"
)

// SourceLevel is the three-tier scale individual sources report on.
// The aggregate deliberately uses the finer RiskLevel scale; the two
// scales are not interchangeable.
type SourceLevel string

const (
	SourceLevelLow    SourceLevel = "low"
	SourceLevelMedium SourceLevel = "medium"
	SourceLevelHigh   SourceLevel = "high"
)

// ConfidenceLevel reports how many sources contributed genuine data.
type ConfidenceLevel string

const (
	ConfidenceLow    ConfidenceLevel = "low"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceHigh   ConfidenceLevel = "high"
)

// SourceAssessment is one data domain's contribution to an assessment.
// Never mutated after creation.
type SourceAssessment struct {
	Score   int            `json:"score"`
	Level   SourceLevel    `json:"level"`
	Factors []string       `json:"factors"`
	Raw     map[string]any `json:"raw,omitempty"`
}

// RiskFactors groups the five source assessments under their source names.
type RiskFactors struct {
	Weather        SourceAssessment `json:"weather"`
	Terrain        SourceAssessment `json:"terrain"`
	Infrastructure SourceAssessment `json:"infrastructure"`
	Historical     SourceAssessment `json:"historical"`
	Population     SourceAssessment `json:"population"`
}

// Recommendations holds the four guidance tiers. Every list carries at least
// one entry; a default string is substituted when no rule fired.
type Recommendations struct {
	ImmediateActions []string `json:"immediate_actions"`
	ShortTerm        []string `json:"short_term"`
	LongTerm         []string `json:"long_term"`
	Preparedness     []string `json:"preparedness"`
}

// FloodRiskAssessment is the aggregate result for one location. Created fresh
// per request and immutable once returned; the engine never persists it.
type FloodRiskAssessment struct {
	Location         Location        `json:"location"`
	OverallRiskScore int             `json:"overall_risk_score"`
	RiskLevel        RiskLevel       `json:"risk_level"`
	AssessmentDate   time.Time       `json:"assessment_date"`
	Factors          RiskFactors     `json:"factors"`
	Recommendations  Recommendations `json:"recommendations"`
	DataSources      []string        `json:"data_sources"`
	ConfidenceLevel  ConfidenceLevel `json:"confidence_level"`
}

// AssessmentRecord is the history row the HTTP layer stores after a
// successful assessment, for dashboard statistics and the map overlay.
type AssessmentRecord struct {
	ID               string          `json:"id"`
	Province         string          `json:"province"`
	Ward             string          `json:"ward"`
	Latitude         float64         `json:"latitude"`
	Longitude        float64         `json:"longitude"`
	OverallRiskScore int             `json:"overall_risk_score"`
	RiskLevel        RiskLevel       `json:"risk_level"`
	ConfidenceLevel  ConfidenceLevel `json:"confidence_level"`
	CreatedAt        time.Time       `json:"created_at"`
}

// AssessmentStats summarizes stored assessments for the statistics endpoint.
type AssessmentStats struct {
	Total        int               `json:"total"`
	ByRiskLevel  map[RiskLevel]int `json:"by_risk_level"`
	AverageScore float64           `json:"average_score"`
}
