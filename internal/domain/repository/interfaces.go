package repository

import (
	"context"
	"time"

	"ZScout/internal/domain/models"
)

// PriceSource fetches the trailing window of daily closes for one symbol.
// A timeout is reported the same way as any other fetch failure.
type PriceSource interface {
	History(ctx context.Context, symbol string, lookbackDays int) (*models.PriceSeries, error)
}

// QuoteSource resolves a ticker to its company name, used by the seeder to
// enrich registry rows that arrive without one.
type QuoteSource interface {
	CompanyName(ctx context.Context, symbol string) (string, error)
}

// ResultStore owns all persisted state. UpsertNormal and UpsertAbnormal are
// keyed by symbol and must leave the symbol in exactly one of the two result
// tables, atomically per symbol.
type ResultStore interface {
	Migrate(ctx context.Context) error
	SeedSymbols(ctx context.Context, records []models.SymbolRecord) (int, error)
	ListSymbols(ctx context.Context) ([]models.SymbolRecord, error)
	GetCurrent(ctx context.Context, symbol string) (*models.NormalResult, error)
	UpsertNormal(ctx context.Context, res *models.NormalResult) error
	UpsertAbnormal(ctx context.Context, symbol string, reason models.AbnormalReason, asOf time.Time) error
	ListCandidates(ctx context.Context, maxZ float64) ([]models.Candidate, error)
	Counts(ctx context.Context) (normal int64, abnormal int64, err error)
	Close() error
}

// EventPublisher pushes per-symbol outcomes and the run summary to an event
// topic. Publishing is best-effort; failures never change stored results.
type EventPublisher interface {
	PublishOutcome(ctx context.Context, ev *models.OutcomeEvent) error
	PublishSummary(ctx context.Context, s *models.RunSummary) error
	Close() error
}

// Metrics records operational counters. Disabling metrics must not alter
// computed results.
type Metrics interface {
	RecordOutcome(status string)
	RecordError(kind string)
	RecordZScore(symbol string, z float64)
	RecordLatency(op string, seconds float64)
}
