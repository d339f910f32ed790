package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ZScout/internal/domain/models"
	"ZScout/internal/domain/repository"
	"ZScout/internal/services/analytics"
	"ZScout/pkg/logger"
)

// AnalyzerConfig tunes one full pass over the symbol registry.
type AnalyzerConfig struct {
	BatchSize        int
	LookbackDays     int
	BatchPause       time.Duration
	ExcludedSymbols  map[string]struct{}
	ExcludedSuffixes []string
	PublishEvents    bool
}

// Analyzer walks the registry in fixed-size batches and, per symbol, fetches
// the trailing closes, tests them for normality, scores the latest close and
// persists the outcome. Failures are isolated per symbol: a bad fetch or a
// rejected distribution records an abnormal outcome and the pass moves on.
type Analyzer struct {
	store      repository.ResultStore
	source     repository.PriceSource
	classifier *analytics.Classifier
	publisher  repository.EventPublisher
	metrics    repository.Metrics
	log        *logger.Logger
	cfg        AnalyzerConfig
}

// NewAnalyzer wires the pipeline. publisher and metrics may not be nil; use
// the nop implementations when those features are disabled.
func NewAnalyzer(
	store repository.ResultStore,
	source repository.PriceSource,
	classifier *analytics.Classifier,
	publisher repository.EventPublisher,
	metrics repository.Metrics,
	log *logger.Logger,
	cfg AnalyzerConfig,
) *Analyzer {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = 30
	}
	return &Analyzer{
		store:      store,
		source:     source,
		classifier: classifier,
		publisher:  publisher,
		metrics:    metrics,
		log:        log,
		cfg:        cfg,
	}
}

// Run processes every non-excluded registry symbol once and returns the run
// summary. It stops early only when ctx is cancelled or the registry cannot
// be listed; per-symbol errors are absorbed into the summary counts.
func (a *Analyzer) Run(ctx context.Context) (*models.RunSummary, error) {
	started := time.Now().UTC()

	records, err := a.store.ListSymbols(ctx)
	if err != nil {
		return nil, fmt.Errorf("list symbols: %w", err)
	}

	symbols := a.filter(records)
	a.log.Info("analysis started",
		logger.Int("registry", len(records)),
		logger.Int("eligible", len(symbols)),
		logger.Int("batch_size", a.cfg.BatchSize),
		logger.Int("lookback_days", a.cfg.LookbackDays),
	)

	summary := &models.RunSummary{StartedAt: started}
	for start := 0; start < len(symbols); start += a.cfg.BatchSize {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("analysis interrupted: %w", err)
		}

		end := start + a.cfg.BatchSize
		if end > len(symbols) {
			end = len(symbols)
		}
		batch := symbols[start:end]

		batchStart := time.Now()
		for _, sym := range batch {
			a.processSymbol(ctx, sym, summary)
		}
		a.metrics.RecordLatency("batch", time.Since(batchStart).Seconds())

		a.log.Info("batch complete",
			logger.Int("from", start),
			logger.Int("to", end),
			logger.Int("normal", summary.Normal),
			logger.Int("abnormal", summary.Abnormal),
			logger.Int("failed", summary.Failed),
		)

		if a.cfg.BatchPause > 0 && end < len(symbols) {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("analysis interrupted: %w", ctx.Err())
			case <-time.After(a.cfg.BatchPause):
			}
		}
	}

	summary.FinishedAt = time.Now().UTC()
	a.log.Info("analysis finished",
		logger.Int("processed", summary.Processed),
		logger.Int("normal", summary.Normal),
		logger.Int("abnormal", summary.Abnormal),
		logger.Int("failed", summary.Failed),
		logger.Duration("elapsed", summary.FinishedAt.Sub(summary.StartedAt)),
	)

	if a.cfg.PublishEvents {
		if err := a.publisher.PublishSummary(ctx, summary); err != nil {
			a.log.Error("publish summary failed", logger.Error(err))
			a.metrics.RecordError("publish")
		}
	}
	return summary, nil
}

// processSymbol runs one symbol through fetch, classify, score, persist and
// updates the summary in place.
func (a *Analyzer) processSymbol(ctx context.Context, symbol string, summary *models.RunSummary) {
	summary.Processed++
	asOf := time.Now().UTC()

	fetchStart := time.Now()
	series, err := a.source.History(ctx, symbol, a.cfg.LookbackDays)
	a.metrics.RecordLatency("fetch", time.Since(fetchStart).Seconds())
	if err != nil {
		a.log.Warn("price fetch failed", logger.String("symbol", symbol), logger.Error(err))
		a.metrics.RecordError("fetch")
		a.recordAbnormal(ctx, symbol, models.ReasonFetchFailed, asOf, summary)
		return
	}

	fit, err := a.classifier.Classify(series.Closes())
	if err != nil {
		reason := models.ReasonNotNormal
		if errors.Is(err, analytics.ErrInsufficientData) {
			reason = models.ReasonInsufficientData
		}
		a.log.Debug("symbol not scorable",
			logger.String("symbol", symbol),
			logger.String("reason", string(reason)),
			logger.Int("observations", series.Len()),
		)
		a.recordAbnormal(ctx, symbol, reason, asOf, summary)
		return
	}

	latest, _ := series.Latest()
	z, err := analytics.Score(latest.Close, fit.Mean, fit.StdDev)
	if err != nil {
		// Classify guarantees a positive stddev; reaching this is a bug.
		a.log.Error("scoring contract violation", logger.String("symbol", symbol), logger.Error(err))
		a.metrics.RecordError("score")
		a.recordAbnormal(ctx, symbol, models.ReasonNotNormal, asOf, summary)
		return
	}

	res := &models.NormalResult{
		Symbol:      symbol,
		Mean:        fit.Mean,
		StdDev:      fit.StdDev,
		LatestPrice: latest.Close,
		ZScore:      z,
		AsOf:        asOf,
	}
	if err := a.store.UpsertNormal(ctx, res); err != nil {
		a.log.Error("persist normal result failed", logger.String("symbol", symbol), logger.Error(err))
		a.metrics.RecordError("store")
		summary.Failed++
		a.metrics.RecordOutcome("failed")
		return
	}

	summary.Normal++
	a.metrics.RecordOutcome("normal")
	a.metrics.RecordZScore(symbol, z)
	a.publishOutcome(ctx, &models.OutcomeEvent{
		Symbol: symbol,
		Status: "normal",
		ZScore: &z,
		AsOf:   asOf,
	})
}

func (a *Analyzer) recordAbnormal(ctx context.Context, symbol string, reason models.AbnormalReason, asOf time.Time, summary *models.RunSummary) {
	if err := a.store.UpsertAbnormal(ctx, symbol, reason, asOf); err != nil {
		a.log.Error("persist abnormal result failed",
			logger.String("symbol", symbol),
			logger.String("reason", string(reason)),
			logger.Error(err),
		)
		a.metrics.RecordError("store")
		summary.Failed++
		a.metrics.RecordOutcome("failed")
		return
	}

	summary.Abnormal++
	a.metrics.RecordOutcome("abnormal")
	a.publishOutcome(ctx, &models.OutcomeEvent{
		Symbol: symbol,
		Status: "abnormal",
		Reason: reason,
		AsOf:   asOf,
	})
}

func (a *Analyzer) publishOutcome(ctx context.Context, ev *models.OutcomeEvent) {
	if !a.cfg.PublishEvents {
		return
	}
	if err := a.publisher.PublishOutcome(ctx, ev); err != nil {
		a.log.Error("publish outcome failed", logger.String("symbol", ev.Symbol), logger.Error(err))
		a.metrics.RecordError("publish")
	}
}

// filter drops excluded symbols and excluded-suffix tickers (warrants,
// rights, units) before batching.
func (a *Analyzer) filter(records []models.SymbolRecord) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		sym := strings.ToUpper(strings.TrimSpace(r.Symbol))
		if sym == "" {
			continue
		}
		if _, skip := a.cfg.ExcludedSymbols[sym]; skip {
			continue
		}
		if a.hasExcludedSuffix(sym) {
			continue
		}
		out = append(out, sym)
	}
	return out
}

func (a *Analyzer) hasExcludedSuffix(symbol string) bool {
	for _, suffix := range a.cfg.ExcludedSuffixes {
		if suffix == "" {
			continue
		}
		if strings.HasSuffix(symbol, strings.ToUpper(suffix)) && len(symbol) > len(suffix) {
			return true
		}
	}
	return false
}
