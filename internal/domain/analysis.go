package domain

import "time"

// Status is the overall published city status
type Status string

const (
	StatusHealthy  Status = "Healthy"
	StatusWarning  Status = "Warning"
	StatusCritical Status = "Critical"
	StatusUnknown  Status = "Unknown"
)

// StatusForTheme maps a visual theme onto the published status.
func StatusForTheme(t VisualTheme) Status {
	switch t {
	case ThemeCritical:
		return StatusCritical
	case ThemeCaution:
		return StatusWarning
	default:
		return StatusHealthy
	}
}

// AnalyzeResponse is the published analysis contract. Field names are fixed.
type AnalyzeResponse struct {
	Status       Status       `json:"status"`
	Summary      string       `json:"summary"`
	Details      []string     `json:"details"`
	Future       string       `json:"future"`
	CitizenView  CitizenView  `json:"citizen_view"`
	EngineerView EngineerView `json:"engineer_view"`
}

// AnalysisRecord is one persisted analysis
type AnalysisRecord struct {
	ID              string          `json:"id"`
	City            string          `json:"city"`
	CreatedAt       time.Time       `json:"created_at"`
	Status          Status          `json:"status"`
	ConfidenceScore float64         `json:"confidence_score"`
	RiskIDs         []string        `json:"risk_ids"`
	ReasoningSource string          `json:"reasoning_source"`
	HeadlineCount   int             `json:"headline_count"`
	NewsSentiment   float64         `json:"news_sentiment"`
	IsMockData      bool            `json:"is_mock_data"`
	Response        AnalyzeResponse `json:"response"`
}
