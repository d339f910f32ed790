package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"gonum.org/v1/gonum/stat/distuv"

	"ZScout/internal/domain/models"
	"ZScout/internal/repository"
	"ZScout/internal/services/analytics"
	"ZScout/pkg/logger"
	"ZScout/pkg/metrics"
)

type fakeSource struct {
	series map[string]*models.PriceSeries
	errs   map[string]error
	calls  []string
}

func (f *fakeSource) History(_ context.Context, symbol string, _ int) (*models.PriceSeries, error) {
	f.calls = append(f.calls, symbol)
	if err, ok := f.errs[symbol]; ok {
		return nil, err
	}
	if s, ok := f.series[symbol]; ok {
		return s, nil
	}
	return nil, errors.New("unexpected symbol " + symbol)
}

// rampSeries returns n evenly spaced closes centered on mid, reordered so the
// series ends on its lowest value.
func rampSeries(symbol string, n int, mid float64) *models.PriceSeries {
	base := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	half := float64(n-1) / 2

	s := &models.PriceSeries{Symbol: symbol}
	for i := n - 1; i >= 0; i-- {
		s.Points = append(s.Points, models.PricePoint{
			Date:  base.AddDate(0, 0, n-1-i),
			Close: mid + (float64(i) - half),
		})
	}
	return s
}

func shortSeries(symbol string, n int) *models.PriceSeries {
	s := &models.PriceSeries{Symbol: symbol}
	base := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		s.Points = append(s.Points, models.PricePoint{Date: base.AddDate(0, 0, i), Close: 100})
	}
	return s
}

func newTestStore(t *testing.T) *repository.Store {
	t.Helper()
	store, err := repository.Open("file:" + t.Name() + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return store
}

func newAnalyzer(store *repository.Store, source *fakeSource, cfg AnalyzerConfig) *Analyzer {
	return NewAnalyzer(
		store,
		source,
		analytics.NewClassifier(20, 0.05),
		repository.NopPublisher{},
		metrics.Nop{},
		logger.Nop(),
		cfg,
	)
}

func TestRunPartitionsSymbols(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.SeedSymbols(ctx, []models.SymbolRecord{
		{Symbol: "AAA"}, {Symbol: "BBB"}, {Symbol: "CCC"},
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	source := &fakeSource{
		series: map[string]*models.PriceSeries{
			"AAA": rampSeries("AAA", 25, 100),
			"CCC": shortSeries("CCC", 10),
		},
		errs: map[string]error{
			"BBB": errors.New("connection reset"),
		},
	}

	summary, err := newAnalyzer(store, source, AnalyzerConfig{BatchSize: 2, LookbackDays: 30}).Run(ctx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if summary.Processed != 3 || summary.Normal != 1 || summary.Abnormal != 2 || summary.Failed != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	normal, abnormal, err := store.Counts(ctx)
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if normal != 1 || abnormal != 2 {
		t.Fatalf("expected 1 current / 2 abnormal, got %d / %d", normal, abnormal)
	}

	got, err := store.GetCurrent(ctx, "AAA")
	if err != nil {
		t.Fatalf("get current: %v", err)
	}
	if got == nil {
		t.Fatal("expected AAA in current")
	}
	if got.Mean != 100 {
		t.Fatalf("expected mean 100, got %g", got.Mean)
	}
	if got.ZScore >= 0 {
		t.Fatalf("latest close below the mean must score negative, got %g", got.ZScore)
	}

	for _, sym := range []string{"BBB", "CCC"} {
		cur, err := store.GetCurrent(ctx, sym)
		if err != nil {
			t.Fatalf("get current %s: %v", sym, err)
		}
		if cur != nil {
			t.Fatalf("%s must not be in current, got %+v", sym, cur)
		}
	}
}

// normalSeries builds n closes from evenly spaced standard-normal quantiles
// around mid with the given scale, ordered so the lowest close is latest.
func normalSeries(symbol string, n int, mid, scale float64) *models.PriceSeries {
	dist := distuv.Normal{Mu: 0, Sigma: 1}
	base := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

	s := &models.PriceSeries{Symbol: symbol}
	for i := n; i >= 1; i-- {
		q := dist.Quantile((float64(i) - 0.5) / float64(n))
		s.Points = append(s.Points, models.PricePoint{
			Date:  base.AddDate(0, 0, n-i),
			Close: mid + scale*q,
		})
	}
	return s
}

func TestRunEndToEndScenario(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.SeedSymbols(ctx, []models.SymbolRecord{
		{Symbol: "AAA"}, {Symbol: "BBB"},
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	source := &fakeSource{
		series: map[string]*models.PriceSeries{"AAA": normalSeries("AAA", 25, 100, 2)},
		errs:   map[string]error{"BBB": errors.New("invalid symbol")},
	}

	summary, err := newAnalyzer(store, source, AnalyzerConfig{BatchSize: 50}).Run(ctx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.Normal != 1 || summary.Abnormal != 1 {
		t.Fatalf("expected 1 normal / 1 abnormal, got %+v", summary)
	}

	got, err := store.GetCurrent(ctx, "AAA")
	if err != nil || got == nil {
		t.Fatalf("expected AAA in current, got %+v err %v", got, err)
	}
	if got.ZScore > -1.7 || got.ZScore < -2.4 {
		t.Fatalf("latest close near 96 on a stddev-2 series must score around -2, got %g", got.ZScore)
	}

	bbb, err := store.GetCurrent(ctx, "BBB")
	if err != nil {
		t.Fatalf("get current BBB: %v", err)
	}
	if bbb != nil {
		t.Fatalf("BBB must land in abnormal_stocks, got %+v", bbb)
	}
}

func TestRunFetchFailureIsolation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.SeedSymbols(ctx, []models.SymbolRecord{
		{Symbol: "BAD"}, {Symbol: "GOOD"},
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	source := &fakeSource{
		series: map[string]*models.PriceSeries{"GOOD": rampSeries("GOOD", 25, 50)},
		errs:   map[string]error{"BAD": errors.New("timeout")},
	}

	summary, err := newAnalyzer(store, source, AnalyzerConfig{BatchSize: 50}).Run(ctx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.Normal != 1 || summary.Abnormal != 1 {
		t.Fatalf("a failed fetch must not stop the batch: %+v", summary)
	}

	got, err := store.GetCurrent(ctx, "GOOD")
	if err != nil || got == nil {
		t.Fatalf("expected GOOD scored after BAD failed, got %+v err %v", got, err)
	}
}

func TestRunReplacesPreviousOutcome(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.SeedSymbols(ctx, []models.SymbolRecord{{Symbol: "FLIP"}}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	good := &fakeSource{series: map[string]*models.PriceSeries{"FLIP": rampSeries("FLIP", 25, 100)}}
	if _, err := newAnalyzer(store, good, AnalyzerConfig{}).Run(ctx); err != nil {
		t.Fatalf("first run: %v", err)
	}

	bad := &fakeSource{errs: map[string]error{"FLIP": errors.New("gone")}}
	if _, err := newAnalyzer(store, bad, AnalyzerConfig{}).Run(ctx); err != nil {
		t.Fatalf("second run: %v", err)
	}

	normal, abnormal, err := store.Counts(ctx)
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if normal != 0 || abnormal != 1 {
		t.Fatalf("expected FLIP moved to abnormal, got %d / %d", normal, abnormal)
	}

	good2 := &fakeSource{series: map[string]*models.PriceSeries{"FLIP": rampSeries("FLIP", 25, 100)}}
	if _, err := newAnalyzer(store, good2, AnalyzerConfig{}).Run(ctx); err != nil {
		t.Fatalf("third run: %v", err)
	}

	normal, abnormal, err = store.Counts(ctx)
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if normal != 1 || abnormal != 0 {
		t.Fatalf("expected FLIP back in current, got %d / %d", normal, abnormal)
	}
}

func TestRunSkipsExcludedSymbols(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.SeedSymbols(ctx, []models.SymbolRecord{
		{Symbol: "KEEP"}, {Symbol: "SKIP"}, {Symbol: "ACMEW"},
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	source := &fakeSource{series: map[string]*models.PriceSeries{"KEEP": rampSeries("KEEP", 25, 100)}}
	cfg := AnalyzerConfig{
		ExcludedSymbols:  map[string]struct{}{"SKIP": {}},
		ExcludedSuffixes: []string{"W"},
	}

	summary, err := newAnalyzer(store, source, cfg).Run(ctx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.Processed != 1 {
		t.Fatalf("expected only KEEP processed, got %+v", summary)
	}
	if len(source.calls) != 1 || source.calls[0] != "KEEP" {
		t.Fatalf("expected a single fetch for KEEP, got %v", source.calls)
	}
}
