// Package model contains domain models passed between layers.
package model

import "time"

// Domain identifies one of the assessed behavioral profiles.
type Domain string

// Assessed domains.
const (
	DomainReading     Domain = "reading"
	DomainArithmetic  Domain = "arithmetic"
	DomainHandwriting Domain = "handwriting"
)

// Domains lists the assessed domains in canonical order.
func Domains() []Domain {
	return []Domain{DomainReading, DomainArithmetic, DomainHandwriting}
}

// RiskLevel is an ordered severity label for a prediction.
type RiskLevel string

// Ordered risk tiers plus the out-of-band results a caller can receive.
const (
	RiskNone   RiskLevel = "None"
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"

	// RiskNoData is returned when a session carries nothing to assess.
	RiskNoData RiskLevel = "No data"
	// RiskUnavailable is returned when a domain pipeline failed internally.
	RiskUnavailable RiskLevel = "Unable to assess"
)

// Ordinal returns the tier position (None=0 .. High=3) and -1 for
// out-of-band levels.
func (r RiskLevel) Ordinal() int {
	switch r {
	case RiskNone:
		return 0
	case RiskLow:
		return 1
	case RiskMedium:
		return 2
	case RiskHigh:
		return 3
	default:
		return -1
	}
}

// Scored reports whether the level came from a completed scoring pass.
func (r RiskLevel) Scored() bool { return r.Ordinal() >= 0 }

// Metric is one named sub-score of a detailed analysis.
type Metric struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// AnalysisGroup is an ordered cluster of related metrics, e.g. "motor_control".
type AnalysisGroup struct {
	Name    string   `json:"name"`
	Metrics []Metric `json:"metrics"`
}

// Prediction is the immutable outcome of assessing one domain session.
type Prediction struct {
	Domain          Domain          `json:"domain"`
	RiskLevel       RiskLevel       `json:"risk_level"`
	RiskScore       float64         `json:"risk_score"`
	Confidence      float64         `json:"confidence"`
	Analysis        []AnalysisGroup `json:"detailed_analysis,omitempty"`
	Recommendations []string        `json:"recommendations"`
	Err             string          `json:"error,omitempty"`
	GeneratedAt     time.Time       `json:"timestamp"`
}

// Degraded reports whether this prediction was produced by the error path.
func (p Prediction) Degraded() bool { return !p.RiskLevel.Scored() }

// DomainRisk is one row of the per-domain risk profile in a Summary.
type DomainRisk struct {
	RiskLevel  RiskLevel `json:"risk_level"`
	RiskScore  float64   `json:"risk_score"`
	Confidence float64   `json:"confidence"`
}

// Summary aggregates the per-domain predictions of one attempt.
type Summary struct {
	OverallRiskLevel        RiskLevel             `json:"overall_risk_level"`
	AverageRiskScore        float64               `json:"average_risk_score"`
	AverageConfidence       float64               `json:"average_confidence"`
	RiskProfile             map[Domain]DomainRisk `json:"risk_profile"`
	Predictions             map[Domain]Prediction `json:"individual_results"`
	CombinedRecommendations []string              `json:"combined_recommendations"`
	NextSteps               []string              `json:"next_steps"`
	ClinicalNotes           string                `json:"clinical_notes"`
	GeneratedAt             time.Time             `json:"assessment_date"`
}

// Attempt is one submitted screening attempt: up to three domain sessions
// captured for a single student.
type Attempt struct {
	AttemptID string                    `json:"attempt_id"`
	StudentID string                    `json:"student_id"`
	Sessions  map[Domain]map[string]any `json:"sessions"`
}
