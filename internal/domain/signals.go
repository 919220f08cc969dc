package domain

// Signal names as published in engineer diagnostics.
const (
	SignalRainfallStress   = "weather_rainfall_stress"
	SignalHeatStress       = "weather_heat_stress"
	SignalConditionRaw     = "weather_condition_raw"
	SignalSanitationStress = "complaints_sanitation_stress"
	SignalDrainageStress   = "complaints_drainage_stress"
	SignalHealthAnxiety    = "social_health_anxiety"
	SignalTrafficAnxiety   = "social_traffic_anxiety"
)

// UnknownCondition marks a forecast without a condition label.
const UnknownCondition = "Unknown"

// NormalizedSignals holds the fixed signal vector of one request. Every float
// field lies in [0, 1]; WeatherConditionRaw is a passthrough label used only
// for confidence bookkeeping.
type NormalizedSignals struct {
	RainfallStress      float64 `json:"weather_rainfall_stress"`
	HeatStress          float64 `json:"weather_heat_stress"`
	WeatherConditionRaw string  `json:"weather_condition_raw"`
	SanitationStress    float64 `json:"complaints_sanitation_stress"`
	DrainageStress      float64 `json:"complaints_drainage_stress"`
	HealthAnxiety       float64 `json:"social_health_anxiety"`
	TrafficAnxiety      float64 `json:"social_traffic_anxiety"`
}

// Scores returns the numeric signals keyed by their published names.
func (s NormalizedSignals) Scores() map[string]float64 {
	return map[string]float64{
		SignalRainfallStress:   s.RainfallStress,
		SignalHeatStress:       s.HeatStress,
		SignalSanitationStress: s.SanitationStress,
		SignalDrainageStress:   s.DrainageStress,
		SignalHealthAnxiety:    s.HealthAnxiety,
		SignalTrafficAnxiety:   s.TrafficAnxiety,
	}
}

// WeatherKnown reports whether the forecast carried a condition label.
func (s NormalizedSignals) WeatherKnown() bool {
	return s.WeatherConditionRaw != "" && s.WeatherConditionRaw != UnknownCondition
}
