package service

import "strings"

// TrendService supplies qualitative search-trend statuses for the city.
// No public trends API is wired; the statuses are fixed.
type TrendService struct {
	city string
}

func NewTrendService(city string) *TrendService {
	return &TrendService{city: strings.ToLower(city)}
}

// GetTrends returns search term to status, e.g. "fever udaipur" -> "Rising"
func (s *TrendService) GetTrends() map[string]string {
	return map[string]string{
		"fever " + s.city:   "Rising",
		"traffic " + s.city: "Stable",
	}
}
