package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcity/calo/internal/domain"
	"github.com/smartcity/calo/internal/observability"
)

type memRepo struct {
	saved   []domain.AnalysisRecord
	saveErr error
	health  error
	mock    bool
}

func (r *memRepo) SaveAnalysis(_ context.Context, rec domain.AnalysisRecord) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saved = append(r.saved, rec)
	return nil
}

func (r *memRepo) RecentAnalyses(_ context.Context, limit int) ([]domain.AnalysisRecord, error) {
	if len(r.saved) < limit {
		limit = len(r.saved)
	}
	return r.saved[:limit], nil
}

func (r *memRepo) Health(context.Context) error { return r.health }

func (r *memRepo) IsMock() bool { return r.mock }

func newAnalysisService(t *testing.T, collector domain.CityDataCollector, repo domain.AnalysisRepository, candidates ...ProviderCandidate) (*AnalysisService, *observability.Metrics) {
	t.Helper()
	logger := discardLogger()
	metrics := observability.NewMetricsForTesting()
	return NewAnalysisService(AnalysisDeps{
		City:       "Udaipur",
		Collector:  collector,
		Normalizer: NewSignalNormalizer("Udaipur"),
		Evaluator:  NewRiskEvaluator(),
		Catalog:    LoadProtocolCatalog(filepath.Join("..", "..", "data", "protocols.json"), logger),
		Chain:      NewReasoningChain(time.Second, logger, metrics, candidates...),
		Formatter:  NewResponseFormatter(logger),
		Repo:       repo,
		Clock:      clockwork.NewFakeClockAt(monsoonDay),
		Logger:     logger,
		Metrics:    metrics,
	}), metrics
}

func TestAnalyze_EndToEnd(t *testing.T) {
	repo := &memRepo{}
	raw := scenarioOne()
	raw.News = []domain.Headline{{Title: "a", Sentiment: -0.4}, {Title: "b", Sentiment: 0.2}}
	svc, metrics := newAnalysisService(t, &countingCollector{raw: raw}, repo)

	resp, err := svc.Analyze(context.Background())
	require.NoError(t, err)
	svc.WaitBackground()

	assert.Equal(t, domain.StatusWarning, resp.Status)
	assert.Equal(t, "Advisory: 2 risk(s) require attention", resp.Summary)
	assert.Equal(t, "Vector-Borne Disease Cluster (Severity: 0.61)", resp.Details[0])
	assert.Len(t, resp.EngineerView.RecommendedActions, 5)
	assert.Equal(t, domain.Score(1.0), resp.EngineerView.ConfidenceScore)

	require.Len(t, repo.saved, 1)
	rec := repo.saved[0]
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "Udaipur", rec.City)
	assert.Equal(t, []string{domain.RiskBio, domain.RiskFlood}, rec.RiskIDs)
	assert.Equal(t, RuleBasedName, rec.ReasoningSource)
	assert.Equal(t, 2, rec.HeadlineCount)
	assert.InDelta(t, -0.1, rec.NewsSentiment, 1e-9)
	assert.Equal(t, monsoonDay, rec.CreatedAt)
	assert.Equal(t, resp, rec.Response)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.AnalysesTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RisksTriggered.WithLabelValues(domain.RiskBio)))
}

func TestAnalyze_PrimaryProviderFailure(t *testing.T) {
	groq := &stubStrategy{name: "groq", err: &ProviderError{Provider: "groq", Err: errors.New("http 401")}}
	svc, _ := newAnalysisService(t, &countingCollector{raw: scenarioOne()}, &memRepo{}, candidate(groq))

	resp, err := svc.Analyze(context.Background())
	require.NoError(t, err)
	svc.WaitBackground()

	assert.NotEmpty(t, resp.EngineerView.RecommendedActions)
	assert.Contains(t, resp.EngineerView.LogicTrace, "groq: request failed")
	assert.NotContains(t, resp.EngineerView.LogicTrace, "http 401")
}

func TestAnalyze_CollectorError(t *testing.T) {
	svc, _ := newAnalysisService(t, &countingCollector{err: errors.New("boom")}, &memRepo{})

	_, err := svc.Analyze(context.Background())

	assert.ErrorContains(t, err, "failed to collect city data")
}

func TestAnalyze_SaveFailureDoesNotFailRequest(t *testing.T) {
	svc, _ := newAnalysisService(t, &countingCollector{raw: scenarioOne()}, &memRepo{saveErr: errors.New("db down")})

	_, err := svc.Analyze(context.Background())
	svc.WaitBackground()

	assert.NoError(t, err)
}

func TestHistory_Limits(t *testing.T) {
	svc, _ := newAnalysisService(t, &countingCollector{raw: scenarioOne()}, &memRepo{})

	for _, limit := range []int{0, -1, MaxHistoryLimit + 1} {
		_, err := svc.History(context.Background(), limit)
		assert.ErrorIs(t, err, ErrInvalidLimit, "limit %d", limit)
	}

	records, err := svc.History(context.Background(), DefaultHistoryLimit)
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestServices(t *testing.T) {
	svc, _ := newAnalysisService(t, &countingCollector{}, &memRepo{mock: true})

	assert.Equal(t, map[string]string{
		"reasoning_provider": RuleBasedName,
		"protocol_catalog":   "loaded (5 protocols)",
		"data_loader":        "mock",
		"logic_engine":       "ok",
		"database":           "mock",
	}, svc.Services(context.Background()))

	down, _ := newAnalysisService(t, &countingCollector{}, &memRepo{health: errors.New("refused")})
	assert.Equal(t, "unavailable", down.Services(context.Background())["database"])
}
