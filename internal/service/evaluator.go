package service

import (
	"math"

	"github.com/smartcity/calo/internal/domain"
)

// Scenario weights and trigger thresholds. Changing any of them is a new
// scenario version, not a tuning knob.
const (
	bioRainWeight       = 0.3
	bioSanitationWeight = 0.3
	bioHealthWeight     = 0.4
	bioThreshold        = 0.4

	floodRainWeight     = 0.6
	floodDrainageWeight = 0.4
	floodThreshold      = 0.5

	heatThreshold = 0.6

	confidenceSources = 3.0
)

// RiskEvaluator scores the fixed risk scenarios against a signal vector.
type RiskEvaluator struct{}

// NewRiskEvaluator creates a risk evaluator
func NewRiskEvaluator() *RiskEvaluator {
	return &RiskEvaluator{}
}

// Evaluate triggers each scenario independently, always in Bio, Flood, Heat
// order, and computes the evidence-diversity confidence score.
func (e *RiskEvaluator) Evaluate(signals domain.NormalizedSignals) domain.RiskAssessment {
	risks := make([]domain.RiskRecord, 0, 3)

	// Vector-borne disease: standing water + sanitation + health searches.
	bio := bioRainWeight*signals.RainfallStress +
		bioSanitationWeight*signals.SanitationStress +
		bioHealthWeight*signals.HealthAnxiety
	if bio > bioThreshold {
		risks = append(risks, domain.RiskRecord{
			ID:                  domain.RiskBio,
			Name:                "Vector-Borne Disease Cluster",
			Severity:            bio,
			ContributingFactors: []string{"Rainfall/Humidity", "Sanitation Complaints", "Health Search Trends"},
		})
	}

	flood := floodRainWeight*signals.RainfallStress +
		floodDrainageWeight*signals.DrainageStress
	if flood > floodThreshold {
		risks = append(risks, domain.RiskRecord{
			ID:                  domain.RiskFlood,
			Name:                "Urban Flash Flood",
			Severity:            flood,
			ContributingFactors: []string{"Heavy Rainfall Forecast", "Drainage Complaints"},
		})
	}

	if heat := signals.HeatStress; heat > heatThreshold {
		risks = append(risks, domain.RiskRecord{
			ID:                  domain.RiskHeat,
			Name:                "Severe Heatwave",
			Severity:            heat,
			ContributingFactors: []string{"High Temperatures"},
		})
	}

	return domain.RiskAssessment{
		Signals:         signals,
		ActiveRisks:     risks,
		ConfidenceScore: confidence(signals),
	}
}

// confidence counts independent sources with non-trivial evidence.
func confidence(s domain.NormalizedSignals) float64 {
	present := 0
	if s.WeatherKnown() {
		present++
	}
	if s.SanitationStress > 0 {
		present++
	}
	if s.HealthAnxiety > 0 {
		present++
	}
	return math.Min(float64(present)/confidenceSources, 1.0)
}
