package service

import (
	"context"
	"log/slog"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/smartcity/calo/internal/domain"
	"github.com/smartcity/calo/internal/observability"
)

// CityCollector assembles a RawCityData snapshot from all sources
// concurrently. A failed source is replaced by its mock value.
type CityCollector struct {
	city       string
	weather    *WeatherService
	complaints *ComplaintService
	trends     *TrendService
	news       *NewsService
	clock      clockwork.Clock
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewCityCollector creates a new collector
func NewCityCollector(
	city string,
	weather *WeatherService,
	complaints *ComplaintService,
	trends *TrendService,
	news *NewsService,
	clock clockwork.Clock,
	logger *slog.Logger,
	metrics *observability.Metrics,
) *CityCollector {
	return &CityCollector{
		city:       city,
		weather:    weather,
		complaints: complaints,
		trends:     trends,
		news:       news,
		clock:      clock,
		logger:     logger,
		metrics:    metrics,
	}
}

// Collect implements domain.CityDataCollector. It never returns a source error.
func (c *CityCollector) Collect(ctx context.Context) (domain.RawCityData, error) {
	var (
		forecast   domain.WeatherForecast
		complaints []domain.Complaint
		trends     map[string]string
		headlines  []domain.Headline
		newsMock   bool
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		f, err := c.weather.GetForecast(gctx)
		if err != nil {
			c.degrade("weather", err)
			f = c.weather.MockForecast()
		}
		forecast = f
		return nil
	})

	g.Go(func() error {
		complaints = c.complaints.GetComplaints()
		return nil
	})

	g.Go(func() error {
		trends = c.trends.GetTrends()
		return nil
	})

	g.Go(func() error {
		h, err := c.news.GetHeadlines(gctx)
		if err != nil {
			c.degrade("news", err)
			h = MockHeadlines()
		}
		headlines = h
		newsMock = err != nil || !c.news.useReal
		return nil
	})

	if err := g.Wait(); err != nil {
		return domain.RawCityData{}, err
	}

	return domain.RawCityData{
		City:        c.city,
		Weather:     &forecast,
		Complaints:  complaints,
		Trends:      trends,
		News:        headlines,
		CollectedAt: c.clock.Now(),
		IsMock:      forecast.IsMock || newsMock,
	}, nil
}

func (c *CityCollector) degrade(source string, err error) {
	c.logger.Warn("data source unavailable, using default", "source", source, "error", err)
	c.metrics.SourceFallbacks.WithLabelValues(source).Inc()
}

var _ domain.CityDataCollector = (*CityCollector)(nil)
