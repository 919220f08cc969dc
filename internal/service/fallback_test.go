package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcity/calo/internal/domain"
)

func TestRuleBased_Themes(t *testing.T) {
	tests := []struct {
		name     string
		risks    []domain.RiskRecord
		theme    domain.VisualTheme
		headline string
	}{
		{"calm", nil, domain.ThemeNormal, "City systems normal - AI analysis offline"},
		{"advisory", []domain.RiskRecord{{ID: domain.RiskBio, Name: "Bio", Severity: 0.61}}, domain.ThemeCaution, "Advisory: 1 risk(s) require attention"},
		{"at boundary", []domain.RiskRecord{{ID: domain.RiskBio, Name: "Bio", Severity: 0.7}}, domain.ThemeCaution, "Advisory: 1 risk(s) require attention"},
		{"critical", []domain.RiskRecord{
			{ID: domain.RiskBio, Name: "Bio", Severity: 0.5},
			{ID: domain.RiskHeat, Name: "Heat", Severity: 1.0},
		}, domain.ThemeCritical, "Alert: 2 risk(s) detected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := NewRuleBasedStrategy("").Produce(context.Background(), domain.RiskAssessment{ActiveRisks: tt.risks}, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.theme, out.CitizenView.VisualTheme)
			assert.True(t, out.CitizenView.VisualTheme.Valid())
			assert.Equal(t, tt.headline, out.CitizenView.StatusHeadline)
			assert.Equal(t, RuleBasedName, out.Source)
		})
	}
}

func TestRuleBased_ActionsCappedAtFive(t *testing.T) {
	protocols := []domain.Protocol{
		{ID: "A", Actions: []string{"a1", "a2", "a3"}},
		{ID: "B", Actions: []string{"b1", "b2", "b3"}},
	}

	out := NewRuleBasedStrategy("groq").Synthesize(bioAssessment(), protocols, nil)

	assert.Equal(t, []string{"a1", "a2", "a3", "b1", "b2"}, out.EngineerView.RecommendedActions)
}

func TestRuleBased_GenericActions(t *testing.T) {
	s := NewRuleBasedStrategy("groq")

	risky := s.Synthesize(bioAssessment(), nil, nil)
	assert.Equal(t, genericRiskActions, risky.EngineerView.RecommendedActions)

	calm := s.Synthesize(domain.RiskAssessment{}, nil, nil)
	assert.Equal(t, genericCalmActions, calm.EngineerView.RecommendedActions)

	calm.EngineerView.RecommendedActions[0] = "mutated"
	assert.Equal(t, "Continue routine monitoring", genericCalmActions[0])
}

func TestRuleBased_EngineerView(t *testing.T) {
	a := bioAssessment()

	out := NewRuleBasedStrategy(RuleBasedName).Synthesize(a, bioProtocols(), []string{"groq: http 429"})

	ev := out.EngineerView
	assert.Equal(t, domain.Score(1.0), ev.ConfidenceScore)
	assert.Equal(t, []string{"Vector-Borne Disease Cluster", "Urban Flash Flood"}, ev.DetectedRisks)
	assert.Equal(t, map[string]float64{"weather": 0.5, "complaints": 0.6, "trends": 0.7}, ev.RawSignals)
	assert.Contains(t, ev.LogicTrace, "Rule-based analysis (AI: unavailable)")
	assert.Contains(t, ev.LogicTrace, "• Provider fallback: groq: http 429")
	assert.Contains(t, ev.LogicTrace, "• Vector-Borne Disease Cluster: severity 0.61")
	assert.Contains(t, ev.LogicTrace, "• Urban Flash Flood: severity 0.54")
	assert.Contains(t, ev.LogicTrace, "• Matched protocols: Vector Control")
}
