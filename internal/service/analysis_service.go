package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/smartcity/calo/internal/domain"
	"github.com/smartcity/calo/internal/observability"
)

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// ErrInvalidLimit is returned by History for a limit outside 1..MaxHistoryLimit.
var ErrInvalidLimit = fmt.Errorf("limit must be between 1 and %d", MaxHistoryLimit)

// AnalysisDeps are the collaborators of an AnalysisService. All are required.
type AnalysisDeps struct {
	City       string
	LiveData   bool
	Collector  domain.CityDataCollector
	Normalizer *SignalNormalizer
	Evaluator  *RiskEvaluator
	Catalog    *ProtocolCatalog
	Chain      *ReasoningChain
	Formatter  *ResponseFormatter
	Repo       domain.AnalysisRepository
	Clock      clockwork.Clock
	Logger     *slog.Logger
	Metrics    *observability.Metrics
}

// AnalysisService runs the pipeline: collect, normalize, evaluate, match,
// reason and format.
type AnalysisService struct {
	AnalysisDeps

	wgBg sync.WaitGroup // tracks background goroutines for graceful shutdown
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(deps AnalysisDeps) *AnalysisService {
	return &AnalysisService{AnalysisDeps: deps}
}

// WaitBackground blocks until all background save goroutines complete.
// Call during graceful shutdown to avoid dropped writes.
func (s *AnalysisService) WaitBackground() {
	s.wgBg.Wait()
}

// Analyze produces one published analysis. Source and provider failures are
// absorbed; only a collector error escapes.
func (s *AnalysisService) Analyze(ctx context.Context) (domain.AnalyzeResponse, error) {
	start := s.Clock.Now()

	raw, err := s.Collector.Collect(ctx)
	if err != nil {
		return domain.AnalyzeResponse{}, fmt.Errorf("analysis: failed to collect city data: %w", err)
	}

	signals := s.Normalizer.Normalize(raw)
	assessment := s.Evaluator.Evaluate(signals)
	for _, id := range assessment.RiskIDs() {
		s.Metrics.RisksTriggered.WithLabelValues(id).Inc()
	}

	protocols := s.Catalog.Match(assessment.ActiveRisks)
	reasoning := s.Chain.Reason(ctx, assessment, protocols)
	resp := s.Formatter.Format(reasoning, &assessment)

	s.Metrics.AnalysesTotal.Inc()
	s.Metrics.AnalysisDuration.Observe(s.Clock.Since(start).Seconds())
	s.Logger.Info("analysis published",
		"status", resp.Status,
		"risks", assessment.RiskIDs(),
		"confidence", assessment.ConfidenceScore,
		"reasoning_source", reasoning.Source,
		"protocols", len(protocols),
	)

	s.record(domain.AnalysisRecord{
		ID:              uuid.NewString(),
		City:            s.City,
		CreatedAt:       s.Clock.Now().UTC(),
		Status:          resp.Status,
		ConfidenceScore: assessment.ConfidenceScore,
		RiskIDs:         assessment.RiskIDs(),
		ReasoningSource: reasoning.Source,
		HeadlineCount:   len(raw.News),
		NewsSentiment:   raw.NewsSentiment(),
		IsMockData:      raw.IsMock,
		Response:        resp,
	})

	return resp, nil
}

// record persists the analysis asynchronously (tracked for graceful shutdown)
func (s *AnalysisService) record(rec domain.AnalysisRecord) {
	s.wgBg.Add(1)
	go func() {
		defer s.wgBg.Done()
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Repo.SaveAnalysis(bgCtx, rec); err != nil {
			s.Logger.Error("failed to save analysis", "id", rec.ID, "error", err)
		}
	}()
}

// History returns up to limit recent analyses, newest first
func (s *AnalysisService) History(ctx context.Context, limit int) ([]domain.AnalysisRecord, error) {
	if limit < 1 || limit > MaxHistoryLimit {
		return nil, ErrInvalidLimit
	}
	records, err := s.Repo.RecentAnalyses(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("analysis: failed to load history: %w", err)
	}
	if records == nil {
		records = []domain.AnalysisRecord{}
	}
	return records, nil
}

// mockRepository is implemented by in-memory stores
type mockRepository interface {
	IsMock() bool
}

// Services reports the operational state of each pipeline component
func (s *AnalysisService) Services(ctx context.Context) map[string]string {
	catalog := "empty"
	if n := s.Catalog.Len(); n > 0 {
		catalog = fmt.Sprintf("loaded (%d protocols)", n)
	}

	dataLoader := "mock"
	if s.LiveData {
		dataLoader = "live"
	}

	database := "ok"
	if err := s.Repo.Health(ctx); err != nil {
		s.Logger.Warn("database health check failed", "error", err)
		database = "unavailable"
	} else if m, ok := s.Repo.(mockRepository); ok && m.IsMock() {
		database = "mock"
	}

	return map[string]string{
		"reasoning_provider": s.Chain.Provider(),
		"protocol_catalog":   catalog,
		"data_loader":        dataLoader,
		"logic_engine":       "ok",
		"database":           database,
	}
}
