package domain

// Risk scenario identifiers.
const (
	RiskBio   = "BIO_RISK"
	RiskFlood = "FLOOD_RISK"
	RiskHeat  = "HEAT_RISK"
)

// RiskRecord is one triggered risk scenario
type RiskRecord struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name"`
	Severity            float64  `json:"severity"`
	ContributingFactors []string `json:"contributing_factors"`
}

// RiskAssessment is the sole input of the reasoning stage
type RiskAssessment struct {
	Signals         NormalizedSignals `json:"signals"`
	ActiveRisks     []RiskRecord      `json:"active_risks"`
	ConfidenceScore float64           `json:"confidence_score"`
}

// RiskIDs returns the active risk identifiers in evaluation order.
func (a RiskAssessment) RiskIDs() []string {
	ids := make([]string, 0, len(a.ActiveRisks))
	for _, r := range a.ActiveRisks {
		ids = append(ids, r.ID)
	}
	return ids
}

// RiskNames returns the active risk display names in evaluation order.
func (a RiskAssessment) RiskNames() []string {
	names := make([]string, 0, len(a.ActiveRisks))
	for _, r := range a.ActiveRisks {
		names = append(names, r.Name)
	}
	return names
}

// MaxSeverity returns the highest active severity, 0 when nothing triggered.
func (a RiskAssessment) MaxSeverity() float64 {
	var max float64
	for _, r := range a.ActiveRisks {
		if r.Severity > max {
			max = r.Severity
		}
	}
	return max
}
