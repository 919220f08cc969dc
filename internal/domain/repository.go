package domain

import "context"

// AnalysisRepository defines the interface for analysis persistence
// This follows the Dependency Inversion Principle - domain defines the interface
type AnalysisRepository interface {
	// SaveAnalysis persists one published analysis
	SaveAnalysis(ctx context.Context, record AnalysisRecord) error

	// RecentAnalyses returns up to limit records, newest first
	RecentAnalyses(ctx context.Context, limit int) ([]AnalysisRecord, error)

	// Health checks storage connectivity
	Health(ctx context.Context) error
}

// CityDataCollector supplies a RawCityData snapshot. Implementations substitute
// defaults for failed sources instead of returning their errors.
type CityDataCollector interface {
	Collect(ctx context.Context) (RawCityData, error)
}
