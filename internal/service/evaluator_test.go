package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcity/calo/internal/domain"
)

func TestEvaluate_ZeroSignals(t *testing.T) {
	a := NewRiskEvaluator().Evaluate(domain.NormalizedSignals{})

	assert.Empty(t, a.ActiveRisks)
	assert.Equal(t, 0.0, a.ConfidenceScore)
}

func TestEvaluate_ScenarioOne(t *testing.T) {
	signals := NewSignalNormalizer("Udaipur").Normalize(scenarioOne())

	a := NewRiskEvaluator().Evaluate(signals)

	require.Len(t, a.ActiveRisks, 2)
	assert.Equal(t, domain.RiskBio, a.ActiveRisks[0].ID)
	assert.InDelta(t, 0.3*0.5+0.3*0.6+0.4*0.7, a.ActiveRisks[0].Severity, 1e-9)
	assert.InDelta(t, 0.61, a.ActiveRisks[0].Severity, 1e-9)
	assert.Equal(t, domain.RiskFlood, a.ActiveRisks[1].ID)
	assert.InDelta(t, 0.54, a.ActiveRisks[1].Severity, 1e-9)
	assert.Equal(t, 1.0, a.ConfidenceScore)
}

func TestEvaluate_ScenarioTwo(t *testing.T) {
	// No condition label and no trend data: the only non-trivial source is
	// the default health anxiety.
	raw := domain.RawCityData{Weather: &domain.WeatherForecast{TemperatureC: ptr(25)}}
	signals := NewSignalNormalizer("Udaipur").Normalize(raw)

	a := NewRiskEvaluator().Evaluate(signals)

	assert.Empty(t, a.ActiveRisks)
	assert.InDelta(t, 1.0/3.0, a.ConfidenceScore, 1e-9)
}

func TestEvaluate_ScenarioThree(t *testing.T) {
	raw := domain.RawCityData{Weather: &domain.WeatherForecast{TemperatureC: ptr(46), Condition: "Clear Sky"}}
	signals := NewSignalNormalizer("Udaipur").Normalize(raw)

	a := NewRiskEvaluator().Evaluate(signals)

	require.Len(t, a.ActiveRisks, 1)
	assert.Equal(t, domain.RiskHeat, a.ActiveRisks[0].ID)
	assert.Equal(t, 1.0, a.ActiveRisks[0].Severity)
	assert.Equal(t, []string{"High Temperatures"}, a.ActiveRisks[0].ContributingFactors)
}

func TestEvaluate_ThresholdsAreStrict(t *testing.T) {
	// flood = 0.6*0.5 + 0.4*0.5 = 0.5, exactly at threshold
	a := NewRiskEvaluator().Evaluate(domain.NormalizedSignals{
		RainfallStress: 0.5,
		DrainageStress: 0.5,
		HeatStress:     0.6,
	})

	assert.NotContains(t, a.RiskIDs(), domain.RiskFlood)
	assert.NotContains(t, a.RiskIDs(), domain.RiskHeat)
}

func TestEvaluate_Idempotent(t *testing.T) {
	signals := NewSignalNormalizer("Udaipur").Normalize(scenarioOne())
	e := NewRiskEvaluator()

	assert.Equal(t, e.Evaluate(signals), e.Evaluate(signals))
}

func TestEvaluate_ConfidenceMonotone(t *testing.T) {
	steps := []domain.NormalizedSignals{
		{},
		{WeatherConditionRaw: "Rain"},
		{WeatherConditionRaw: "Rain", SanitationStress: 0.2},
		{WeatherConditionRaw: "Rain", SanitationStress: 0.2, HealthAnxiety: 0.1},
	}

	e := NewRiskEvaluator()
	prev := -1.0
	for i, s := range steps {
		c := e.Evaluate(s).ConfidenceScore
		assert.GreaterOrEqual(t, c, prev, "step %d", i)
		assert.GreaterOrEqual(t, c, 0.0)
		assert.LessOrEqual(t, c, 1.0)
		prev = c
	}
	assert.Equal(t, 1.0, prev)
}

func TestEvaluate_UnknownConditionNotEvidence(t *testing.T) {
	a := NewRiskEvaluator().Evaluate(domain.NormalizedSignals{WeatherConditionRaw: domain.UnknownCondition})
	assert.Equal(t, 0.0, a.ConfidenceScore)
}
