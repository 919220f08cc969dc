package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/smartcity/calo/internal/domain"
	"github.com/smartcity/calo/pkg/utils"
)

const (
	criticalSeverity = 0.7
	maxFallbackSteps = 5
)

var (
	genericRiskActions = []string{
		"Monitor conditions closely",
		"Review historical patterns",
		"Prepare contingency protocols",
	}
	genericCalmActions = []string{
		"Continue routine monitoring",
		"Maintain current alert status",
	}
)

// RuleBasedStrategy synthesizes the explanation from the assessment and
// protocols alone. It never fails.
type RuleBasedStrategy struct {
	provider string
}

// NewRuleBasedStrategy creates the fallback; provider names the external
// strategy it stands in for and appears in the logic trace.
func NewRuleBasedStrategy(provider string) *RuleBasedStrategy {
	if provider == "" || provider == RuleBasedName {
		provider = "unavailable"
	}
	return &RuleBasedStrategy{provider: provider}
}

func (s *RuleBasedStrategy) Name() string { return RuleBasedName }

// Produce implements ReasoningStrategy.
func (s *RuleBasedStrategy) Produce(_ context.Context, assessment domain.RiskAssessment, protocols []domain.Protocol) (domain.ReasoningOutput, error) {
	return s.Synthesize(assessment, protocols, nil), nil
}

// Synthesize builds the dual-view output. failures are the provider errors
// that led here and are cited in the logic trace.
func (s *RuleBasedStrategy) Synthesize(assessment domain.RiskAssessment, protocols []domain.Protocol, failures []string) domain.ReasoningOutput {
	risks := assessment.ActiveRisks

	theme := domain.ThemeNormal
	headline := "City systems normal - AI analysis offline"
	if len(risks) > 0 {
		if assessment.MaxSeverity() > criticalSeverity {
			theme = domain.ThemeCritical
			headline = fmt.Sprintf("Alert: %d risk(s) detected", len(risks))
		} else {
			theme = domain.ThemeCaution
			headline = fmt.Sprintf("Advisory: %d risk(s) require attention", len(risks))
		}
	}

	return domain.ReasoningOutput{
		CitizenView: domain.CitizenView{
			StatusHeadline: headline,
			VisualTheme:    theme,
		},
		EngineerView: domain.EngineerView{
			ConfidenceScore:    domain.Score(utils.RoundTo(assessment.ConfidenceScore, 2)),
			DetectedRisks:      assessment.RiskNames(),
			RawSignals:         summarizeSignals(assessment.Signals),
			LogicTrace:         s.trace(assessment, protocols, failures),
			RecommendedActions: fallbackActions(len(risks) > 0, protocols),
		},
		Source: RuleBasedName,
	}
}

func fallbackActions(risky bool, protocols []domain.Protocol) []string {
	var actions []string
	for _, p := range protocols {
		actions = append(actions, p.Actions...)
	}
	switch {
	case len(actions) > maxFallbackSteps:
		return actions[:maxFallbackSteps]
	case len(actions) > 0:
		return actions
	case risky:
		return append([]string(nil), genericRiskActions...)
	default:
		return append([]string(nil), genericCalmActions...)
	}
}

// summarizeSignals is the small fixed-key signal summary shown to engineers.
func summarizeSignals(s domain.NormalizedSignals) map[string]float64 {
	return map[string]float64{
		"weather":    utils.RoundTo(math.Max(s.RainfallStress, s.HeatStress), 2),
		"complaints": utils.RoundTo(s.SanitationStress, 2),
		"trends":     utils.RoundTo(s.HealthAnxiety, 2),
	}
}

func (s *RuleBasedStrategy) trace(a domain.RiskAssessment, protocols []domain.Protocol, failures []string) string {
	var b strings.Builder
	sig := a.Signals

	fmt.Fprintf(&b, "Rule-based analysis (AI: %s):\n", s.provider)
	for _, f := range failures {
		fmt.Fprintf(&b, "• Provider fallback: %s\n", f)
	}
	fmt.Fprintf(&b, "• Weather: condition %s, rainfall stress %.2f, heat stress %.2f\n",
		sig.WeatherConditionRaw, sig.RainfallStress, sig.HeatStress)
	fmt.Fprintf(&b, "• Complaints: sanitation stress %.2f, drainage stress %.2f\n",
		sig.SanitationStress, sig.DrainageStress)
	fmt.Fprintf(&b, "• Social: health anxiety %.2f, traffic anxiety %.2f\n",
		sig.HealthAnxiety, sig.TrafficAnxiety)
	fmt.Fprintf(&b, "• Confidence %.2f\n", a.ConfidenceScore)
	fmt.Fprintf(&b, "• Detected %d risk(s)\n", len(a.ActiveRisks))
	for _, r := range a.ActiveRisks {
		fmt.Fprintf(&b, "• %s: severity %.2f\n", r.Name, r.Severity)
	}
	if len(protocols) > 0 {
		names := make([]string, 0, len(protocols))
		for _, p := range protocols {
			names = append(names, p.Name)
		}
		fmt.Fprintf(&b, "• Matched protocols: %s\n", strings.Join(names, ", "))
	}
	return b.String()
}
