package service

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/smartcity/calo/internal/domain"
)

const (
	defaultHeadline    = "City Status Unknown"
	defaultLogicTrace  = "No analysis trace available."
	defaultConfidence  = 0.5
	noRiskDetail       = "No significant risks detected"
	futureLeadIn       = "Continued monitoring recommended. "
	futureNoActionTail = "No urgent actions required at this time."
)

// ResponseFormatter maps reasoning output and the risk assessment onto the
// published AnalyzeResponse.
type ResponseFormatter struct {
	logger *slog.Logger
}

func NewResponseFormatter(logger *slog.Logger) *ResponseFormatter {
	return &ResponseFormatter{logger: logger}
}

// Format never panics. Missing fields get fixed defaults and any internal
// failure yields DegradedResponse.
func (f *ResponseFormatter) Format(reasoning domain.ReasoningOutput, assessment *domain.RiskAssessment) (resp domain.AnalyzeResponse) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("%v", r)
			f.logger.Error("failed to format analysis", "error", err)
			resp = DegradedResponse(err)
		}
	}()

	citizen := reasoning.CitizenView
	if strings.TrimSpace(citizen.StatusHeadline) == "" {
		citizen.StatusHeadline = defaultHeadline
	}
	if !citizen.VisualTheme.Valid() {
		citizen.VisualTheme = domain.ThemeNormal
	}

	engineer := reasoning.EngineerView
	engineer.ConfidenceScore = defaultConfidence
	engineer.DataSources = nil
	if assessment != nil {
		engineer.ConfidenceScore = domain.Score(assessment.ConfidenceScore)
		signals := assessment.Signals
		engineer.DataSources = &signals
	}
	if engineer.DetectedRisks == nil {
		engineer.DetectedRisks = []string{}
	}
	if engineer.RawSignals == nil {
		engineer.RawSignals = map[string]float64{}
	}
	if strings.TrimSpace(engineer.LogicTrace) == "" {
		engineer.LogicTrace = defaultLogicTrace
	}
	if engineer.RecommendedActions == nil {
		engineer.RecommendedActions = []string{}
	}

	return domain.AnalyzeResponse{
		Status:       domain.StatusForTheme(citizen.VisualTheme),
		Summary:      citizen.StatusHeadline,
		Details:      riskDetails(assessment),
		Future:       futureText(engineer.RecommendedActions),
		CitizenView:  citizen,
		EngineerView: engineer,
	}
}

func riskDetails(a *domain.RiskAssessment) []string {
	if a == nil || len(a.ActiveRisks) == 0 {
		return []string{noRiskDetail}
	}
	details := make([]string, 0, len(a.ActiveRisks)*3)
	for _, r := range a.ActiveRisks {
		details = append(details, fmt.Sprintf("%s (Severity: %.2f)", r.Name, r.Severity))
		details = append(details, r.ContributingFactors...)
	}
	return details
}

func futureText(actions []string) string {
	if len(actions) == 0 {
		return futureLeadIn + futureNoActionTail
	}
	if len(actions) > 2 {
		actions = actions[:2]
	}
	return futureLeadIn + "Recommended actions: " + strings.Join(actions, ", ")
}

// DegradedResponse is the fixed response published when formatting fails.
func DegradedResponse(err error) domain.AnalyzeResponse {
	return domain.AnalyzeResponse{
		Status:  domain.StatusUnknown,
		Summary: "Analysis formatting error occurred",
		Details: []string{"Unable to format analysis results"},
		Future:  "Please retry the analysis",
		CitizenView: domain.CitizenView{
			StatusHeadline: "System Error",
			VisualTheme:    domain.ThemeCaution,
		},
		EngineerView: domain.EngineerView{
			ConfidenceScore:    0,
			DetectedRisks:      []string{},
			RawSignals:         map[string]float64{},
			LogicTrace:         fmt.Sprintf("Formatting error: %v", err),
			RecommendedActions: []string{"Check system logs", "Retry analysis"},
		},
	}
}
