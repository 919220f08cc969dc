package domain

import "time"

// WeatherForecast is the latest forecast for the monitored city
type WeatherForecast struct {
	Date         string   `json:"date"`
	TemperatureC *float64 `json:"temperature_celsius,omitempty"`
	RainfallMM   float64  `json:"rainfall_mm"`
	Condition    string   `json:"condition"`
	Source       string   `json:"source"`
	IsMock       bool     `json:"is_mock"`
}

// Complaint is a single civic complaint record
type Complaint struct {
	ID          string    `json:"complaint_id"`
	WardID      int       `json:"ward_id"`
	Category    string    `json:"category"`
	Status      string    `json:"status"`
	Severity    string    `json:"severity"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

// Headline is a news headline with a keyword sentiment in [-1, 1]
type Headline struct {
	Title     string  `json:"title"`
	Sentiment float64 `json:"sentiment"`
	Published string  `json:"published,omitempty"`
}

// RawCityData is one snapshot of every source. Nil or empty slots are
// treated as empty by the pipeline.
type RawCityData struct {
	City        string            `json:"city"`
	Weather     *WeatherForecast  `json:"weather,omitempty"`
	Complaints  []Complaint       `json:"complaints,omitempty"`
	Trends      map[string]string `json:"trends,omitempty"`
	News        []Headline        `json:"news,omitempty"`
	CollectedAt time.Time         `json:"collected_at"`
	IsMock      bool              `json:"is_mock"`
}

// NewsSentiment returns the mean headline sentiment, 0 when there is no news.
func (d RawCityData) NewsSentiment() float64 {
	if len(d.News) == 0 {
		return 0
	}
	var sum float64
	for _, h := range d.News {
		sum += h.Sentiment
	}
	return sum / float64(len(d.News))
}
