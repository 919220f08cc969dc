package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcity/calo/internal/domain"
	"github.com/smartcity/calo/internal/observability"
)

var monsoonDay = time.Date(2026, time.July, 14, 9, 30, 0, 0, time.UTC)

const openMeteoBody = `{
	"current_weather": {"temperature": 31.4, "weathercode": 63, "time": "2026-07-14T09:00"},
	"daily": {"time": ["2026-07-14"], "precipitation_sum": [42.5]}
}`

const rssBody = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Rajasthan</title>
<item><title>Dengue cases rise after flood in Udaipur</title><pubDate>Tue, 14 Jul 2026 08:00:00 GMT</pubDate></item>
<item><title>Cricket team wins series</title></item>
<item><title>Corporation to improve sanitation with green drive</title></item>
<item><title>Traffic diverted near lake</title></item>
<item><title>Heavy rain lashes city</title></item>
</channel></rss>`

func TestWeatherService_Live(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(openMeteoBody))
	}))
	defer srv.Close()

	svc := NewWeatherService(srv.URL, true, time.Second, clockwork.NewFakeClockAt(monsoonDay))
	f, err := svc.GetForecast(context.Background())
	require.NoError(t, err)

	require.NotNil(t, f.TemperatureC)
	assert.Equal(t, 31.4, *f.TemperatureC)
	assert.Equal(t, 42.5, f.RainfallMM)
	assert.Equal(t, "Rain", f.Condition)
	assert.Equal(t, "2026-07-14", f.Date)
	assert.False(t, f.IsMock)
}

func TestWeatherService_MockWhenDisabled(t *testing.T) {
	svc := NewWeatherService("http://unused", false, time.Second, clockwork.NewFakeClockAt(monsoonDay))

	f, err := svc.GetForecast(context.Background())
	require.NoError(t, err)

	assert.True(t, f.IsMock)
	assert.Equal(t, 35.0, *f.TemperatureC)
	assert.Equal(t, 25.0, f.RainfallMM)
	assert.Equal(t, "Partly Cloudy", f.Condition)
}

func TestWeatherCondition(t *testing.T) {
	assert.Equal(t, "Clear Sky", weatherCondition(0))
	assert.Equal(t, "Partly Cloudy", weatherCondition(2))
	assert.Equal(t, "Thunderstorm", weatherCondition(95))
	assert.Equal(t, "Unknown", weatherCondition(1000))
}

func TestComplaintService_DeterministicPerDay(t *testing.T) {
	clock := clockwork.NewFakeClockAt(monsoonDay)
	svc := NewComplaintService(0, clock)

	first := svc.GetComplaints()
	clock.Advance(2 * time.Hour)
	second := svc.GetComplaints()

	require.Len(t, first, defaultComplaintCount)
	assert.Equal(t, complaintIDs(first), complaintIDs(second))

	clock.Advance(24 * time.Hour)
	assert.NotEqual(t, complaintIDs(first), complaintIDs(svc.GetComplaints()))

	for _, c := range first {
		assert.Equal(t, strings.ToLower(c.Category), c.Category)
		assert.GreaterOrEqual(t, c.WardID, 1)
		assert.LessOrEqual(t, c.WardID, 50)
	}
}

func TestNewsService_Live(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(rssBody))
	}))
	defer srv.Close()

	headlines, err := NewNewsService(srv.URL, true, time.Second).GetHeadlines(context.Background())
	require.NoError(t, err)

	require.Len(t, headlines, maxHeadlines)
	assert.Equal(t, "Dengue cases rise after flood in Udaipur", headlines[0].Title)
	assert.Equal(t, -1.0, headlines[0].Sentiment)
	assert.Equal(t, 1.0, headlines[1].Sentiment)
	assert.Equal(t, "Traffic diverted near lake", headlines[2].Title)
}

func TestHeadlineSentiment(t *testing.T) {
	assert.Equal(t, 0.0, HeadlineSentiment("Lake levels steady"))
	assert.Equal(t, -1.0, HeadlineSentiment("Protest over pollution"))
	assert.Equal(t, 0.0, HeadlineSentiment("Clean-up drive after flood"))
}

func TestCityCollector_SourcesDegradeIndependently(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	clock := clockwork.NewFakeClockAt(monsoonDay)
	metrics := observability.NewMetricsForTesting()
	c := NewCityCollector("Udaipur",
		NewWeatherService(srv.URL, true, time.Second, clock),
		NewComplaintService(10, clock),
		NewTrendService("Udaipur"),
		NewNewsService(srv.URL, true, time.Second),
		clock, discardLogger(), metrics,
	)

	raw, err := c.Collect(context.Background())
	require.NoError(t, err)

	require.NotNil(t, raw.Weather)
	assert.True(t, raw.Weather.IsMock)
	assert.Equal(t, MockHeadlines(), raw.News)
	assert.Len(t, raw.Complaints, 10)
	assert.Equal(t, "Rising", raw.Trends["fever udaipur"])
	assert.True(t, raw.IsMock)
	assert.Equal(t, monsoonDay, raw.CollectedAt)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.SourceFallbacks.WithLabelValues("weather")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.SourceFallbacks.WithLabelValues("news")))
}

func complaintIDs(complaints []domain.Complaint) []string {
	out := make([]string, 0, len(complaints))
	for _, c := range complaints {
		out = append(out, c.ID)
	}
	return out
}
