package domain

// Protocol is a static operational playbook keyed to risk scenarios
type Protocol struct {
	ID             string   `json:"id" yaml:"id"`
	Name           string   `json:"name" yaml:"name"`
	MatchesRiskIDs []string `json:"matches_risk_ids" yaml:"matches_risk_ids"`
	Actions        []string `json:"actions" yaml:"actions"`
}

// RespondsTo reports whether the protocol is tagged with any of the given ids.
func (p Protocol) RespondsTo(riskIDs map[string]struct{}) bool {
	for _, id := range p.MatchesRiskIDs {
		if _, ok := riskIDs[id]; ok {
			return true
		}
	}
	return false
}
