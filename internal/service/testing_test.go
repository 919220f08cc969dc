package service

import (
	"io"
	"log/slog"

	"github.com/smartcity/calo/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr(v float64) *float64 { return &v }

func sanitationComplaints(n int) []domain.Complaint {
	out := make([]domain.Complaint, n)
	for i := range out {
		out[i] = domain.Complaint{Category: "sanitation"}
	}
	return out
}

// scenarioOne is the monsoon scenario: 25mm rain, 25°C, three sanitation
// complaints and rising fever searches.
func scenarioOne() domain.RawCityData {
	return domain.RawCityData{
		City:       "Udaipur",
		Weather:    &domain.WeatherForecast{TemperatureC: ptr(25), RainfallMM: 25, Condition: "Rain"},
		Complaints: sanitationComplaints(3),
		Trends:     map[string]string{"fever udaipur": "rising"},
	}
}
