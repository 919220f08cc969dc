package service

import (
	"strings"

	"github.com/smartcity/calo/internal/domain"
	"github.com/smartcity/calo/pkg/utils"
)

// Normalization constants.
const (
	RainfallCriticalMM = 50.0
	TempNeutralC       = 25.0
	TempMaxC           = 45.0
	ComplaintsCritical = 5.0

	// TrafficAnxietyDefault stands in until a traffic trend source exists.
	TrafficAnxietyDefault = 0.2

	sanitationCategory = "sanitation"
)

// SignalNormalizer converts raw per-source payloads into the signal vector.
// It is pure: no I/O, no randomness, no shared state.
type SignalNormalizer struct {
	healthTrendKey string
}

// NewSignalNormalizer creates a normalizer that reads health anxiety from the
// "fever <city>" search trend.
func NewSignalNormalizer(city string) *SignalNormalizer {
	return &SignalNormalizer{healthTrendKey: "fever " + strings.ToLower(strings.TrimSpace(city))}
}

// Normalize maps a snapshot onto NormalizedSignals. Missing data never fails;
// each lookup falls back to its documented default.
func (n *SignalNormalizer) Normalize(raw domain.RawCityData) domain.NormalizedSignals {
	var s domain.NormalizedSignals

	// Weather
	s.WeatherConditionRaw = domain.UnknownCondition
	if f := raw.Weather; f != nil {
		s.RainfallStress = rainfallStress(f.RainfallMM)
		s.HeatStress = heatStress(f.TemperatureC)
		if c := strings.TrimSpace(f.Condition); c != "" {
			s.WeatherConditionRaw = c
		}
	}

	// Complaints. Drainage mirrors sanitation until complaints carry a
	// dedicated drainage category.
	s.SanitationStress = complaintStress(raw.Complaints, sanitationCategory)
	s.DrainageStress = s.SanitationStress

	// Social trends
	s.HealthAnxiety = trendAnxiety(lookupTrend(raw.Trends, n.healthTrendKey))
	s.TrafficAnxiety = TrafficAnxietyDefault

	return s
}

func rainfallStress(mm float64) float64 {
	return utils.Clamp(mm/RainfallCriticalMM, 0.0, 1.0)
}

func heatStress(tempC *float64) float64 {
	if tempC == nil {
		return 0.0
	}
	return utils.Clamp((*tempC-TempNeutralC)/(TempMaxC-TempNeutralC), 0.0, 1.0)
}

func complaintStress(complaints []domain.Complaint, category string) float64 {
	count := 0
	for _, c := range complaints {
		if strings.EqualFold(strings.TrimSpace(c.Category), category) {
			count++
		}
	}
	return utils.Clamp(float64(count)/ComplaintsCritical, 0.0, 1.0)
}

// lookupTrend finds a trend value by case-insensitive key.
func lookupTrend(trends map[string]string, key string) string {
	if v, ok := trends[key]; ok {
		return v
	}
	for k, v := range trends {
		if strings.EqualFold(strings.TrimSpace(k), key) {
			return v
		}
	}
	return ""
}

// trendAnxiety maps a qualitative trend label onto [0, 1].
func trendAnxiety(status string) float64 {
	status = strings.ToLower(status)
	switch {
	case strings.Contains(status, "spike"), strings.Contains(status, "high"):
		return 1.0
	case strings.Contains(status, "rising"):
		return 0.7
	default:
		return 0.1
	}
}
