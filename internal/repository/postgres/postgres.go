package postgres

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smartcity/calo/internal/domain"
)

//go:embed migrations/001_analysis_logs.sql
var schema string

// PostgresRepository implements domain.AnalysisRepository
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// EnsureSchema creates the analysis_logs table if it does not exist
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("postgres: failed to create schema: %w", err)
	}
	return nil
}

// SaveAnalysis persists one published analysis to PostgreSQL
func (r *PostgresRepository) SaveAnalysis(ctx context.Context, rec domain.AnalysisRecord) error {
	query := `
		INSERT INTO analysis_logs (
			id, city, created_at, status, confidence_score, risk_ids,
			reasoning_source, headline_count, news_sentiment, is_mock_data, response
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	response, err := json.Marshal(rec.Response)
	if err != nil {
		return fmt.Errorf("postgres: failed to encode response: %w", err)
	}

	riskIDs := rec.RiskIDs
	if riskIDs == nil {
		riskIDs = []string{}
	}

	_, err = r.pool.Exec(ctx, query,
		rec.ID, rec.City, rec.CreatedAt, string(rec.Status), rec.ConfidenceScore, riskIDs,
		rec.ReasoningSource, rec.HeadlineCount, rec.NewsSentiment, rec.IsMockData, response,
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to save analysis: %w", err)
	}

	return nil
}

// RecentAnalyses retrieves up to limit analyses, newest first
func (r *PostgresRepository) RecentAnalyses(ctx context.Context, limit int) ([]domain.AnalysisRecord, error) {
	query := `
		SELECT id::text, city, created_at, status, confidence_score, risk_ids,
			   reasoning_source, headline_count, news_sentiment, is_mock_data, response
		FROM analysis_logs
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query analyses: %w", err)
	}
	defer rows.Close()

	var results []domain.AnalysisRecord
	for rows.Next() {
		var (
			rec      domain.AnalysisRecord
			status   string
			response []byte
		)
		err := rows.Scan(
			&rec.ID, &rec.City, &rec.CreatedAt, &status, &rec.ConfidenceScore, &rec.RiskIDs,
			&rec.ReasoningSource, &rec.HeadlineCount, &rec.NewsSentiment, &rec.IsMockData, &response,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan analysis row: %w", err)
		}
		rec.Status = domain.Status(status)
		if err := json.Unmarshal(response, &rec.Response); err != nil {
			return nil, fmt.Errorf("postgres: failed to decode response %s: %w", rec.ID, err)
		}
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: failed to read analyses: %w", err)
	}

	return results, nil
}

// Health checks database connectivity
func (r *PostgresRepository) Health(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: health check failed: %w", err)
	}
	return nil
}

var _ domain.AnalysisRepository = (*PostgresRepository)(nil)
