package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// VisualTheme is the citizen-facing severity theme
type VisualTheme string

const (
	ThemeNormal   VisualTheme = "Normal"
	ThemeCaution  VisualTheme = "Caution"
	ThemeCritical VisualTheme = "Critical"
)

// Valid reports whether t is one of the published themes.
func (t VisualTheme) Valid() bool {
	switch t {
	case ThemeNormal, ThemeCaution, ThemeCritical:
		return true
	}
	return false
}

// Score is a float that also decodes from a numeric JSON string, since
// generative providers often quote numbers.
type Score float64

// UnmarshalJSON accepts 0.61 and "0.61".
func (s *Score) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		raw = strings.TrimSpace(str)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("score: invalid value %s", data)
	}
	*s = Score(v)
	return nil
}

// CitizenView is the calm, citizen-facing projection
type CitizenView struct {
	StatusHeadline string      `json:"status_headline"`
	VisualTheme    VisualTheme `json:"visual_theme"`
}

// EngineerView is the detailed diagnostic projection
type EngineerView struct {
	ConfidenceScore    Score              `json:"confidence_score"`
	DetectedRisks      []string           `json:"detected_risks"`
	RawSignals         map[string]float64 `json:"raw_signals"`
	LogicTrace         string             `json:"logic_trace"`
	RecommendedActions []string           `json:"recommended_actions"`
	DataSources        *NormalizedSignals `json:"data_sources,omitempty"`
}

// ReasoningOutput is the dual-view explanation produced by a reasoning strategy.
// Source names the strategy that produced it and is never published.
type ReasoningOutput struct {
	CitizenView  CitizenView  `json:"citizen_view"`
	EngineerView EngineerView `json:"engineer_view"`
	Source       string       `json:"-"`
}
