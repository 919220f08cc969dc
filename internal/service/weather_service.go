package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/smartcity/calo/internal/domain"
)

// WeatherService fetches the current forecast from open-meteo
type WeatherService struct {
	apiURL     string
	useReal    bool
	clock      clockwork.Clock
	httpClient *http.Client
}

// NewWeatherService creates a new weather service. With useReal false it
// only ever returns the mock forecast.
func NewWeatherService(apiURL string, useReal bool, timeout time.Duration, clock clockwork.Clock) *WeatherService {
	return &WeatherService{
		apiURL:  apiURL,
		useReal: useReal,
		clock:   clock,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// openMeteoResponse represents the open-meteo forecast response
type openMeteoResponse struct {
	CurrentWeather struct {
		Temperature *float64 `json:"temperature"`
		WeatherCode *int     `json:"weathercode"`
		Time        string   `json:"time"`
	} `json:"current_weather"`
	Daily struct {
		Time             []string   `json:"time"`
		PrecipitationSum []*float64 `json:"precipitation_sum"`
	} `json:"daily"`
}

// GetForecast returns today's forecast. Errors are left to the caller, which
// substitutes MockForecast.
func (s *WeatherService) GetForecast(ctx context.Context) (domain.WeatherForecast, error) {
	if !s.useReal {
		return s.MockForecast(), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.apiURL, nil)
	if err != nil {
		return domain.WeatherForecast{}, fmt.Errorf("weather: failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return domain.WeatherForecast{}, fmt.Errorf("weather: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.WeatherForecast{}, fmt.Errorf("weather: unexpected status %d", resp.StatusCode)
	}

	var om openMeteoResponse
	if err := json.NewDecoder(resp.Body).Decode(&om); err != nil {
		return domain.WeatherForecast{}, fmt.Errorf("weather: failed to decode response: %w", err)
	}

	forecast := domain.WeatherForecast{
		Date:         s.clock.Now().Format(time.DateOnly),
		TemperatureC: om.CurrentWeather.Temperature,
		Condition:    domain.UnknownCondition,
		Source:       "open-meteo",
	}
	if om.CurrentWeather.WeatherCode != nil {
		forecast.Condition = weatherCondition(*om.CurrentWeather.WeatherCode)
	}
	if len(om.Daily.Time) > 0 {
		forecast.Date = om.Daily.Time[0]
	}
	if len(om.Daily.PrecipitationSum) > 0 && om.Daily.PrecipitationSum[0] != nil {
		forecast.RainfallMM = *om.Daily.PrecipitationSum[0]
	}

	return forecast, nil
}

// MockForecast returns the monsoon-day forecast used when live data is off
// or unavailable.
func (s *WeatherService) MockForecast() domain.WeatherForecast {
	temp := 35.0
	return domain.WeatherForecast{
		Date:         s.clock.Now().Format(time.DateOnly),
		TemperatureC: &temp,
		RainfallMM:   25,
		Condition:    "Partly Cloudy",
		Source:       "mock",
		IsMock:       true,
	}
}

// weatherCondition maps a WMO weather code onto a condition label
func weatherCondition(code int) string {
	switch {
	case code == 0:
		return "Clear Sky"
	case code >= 1 && code <= 3:
		return "Partly Cloudy"
	case code == 45 || code == 48:
		return "Fog"
	case code >= 51 && code <= 57:
		return "Drizzle"
	case code >= 61 && code <= 67:
		return "Rain"
	case code >= 71 && code <= 77:
		return "Snow"
	case code >= 80 && code <= 82:
		return "Rain Showers"
	case code >= 95 && code <= 99:
		return "Thunderstorm"
	default:
		return domain.UnknownCondition
	}
}
