package usecase

import (
	"context"
	"strings"
	"testing"

	"ZScout/internal/domain/models"
	"ZScout/pkg/logger"
)

func TestReadSymbolList(t *testing.T) {
	input := strings.Join([]string{
		"# tech picks",
		"aapl,Apple Inc.,Technology",
		"",
		"MSFT",
		"  goog , Alphabet Inc. ",
		"AAPL,duplicate row",
	}, "\n")

	records, err := ReadSymbolList(strings.NewReader(input))
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	want := []models.SymbolRecord{
		{Symbol: "AAPL", CompanyName: "Apple Inc.", Sector: "Technology"},
		{Symbol: "MSFT"},
		{Symbol: "GOOG", CompanyName: "Alphabet Inc."},
	}
	if len(records) != len(want) {
		t.Fatalf("expected %d records, got %d: %+v", len(want), len(records), records)
	}
	for i, w := range want {
		if records[i] != w {
			t.Fatalf("record %d: expected %+v, got %+v", i, w, records[i])
		}
	}
}

type fakeQuotes struct {
	names map[string]string
}

func (f *fakeQuotes) CompanyName(_ context.Context, symbol string) (string, error) {
	return f.names[symbol], nil
}

func TestSeedEnrichesMissingNames(t *testing.T) {
	store := newTestStore(t)
	quotes := &fakeQuotes{names: map[string]string{"MSFT": "Microsoft Corporation"}}
	seeder := NewSeeder(store, quotes, logger.Nop())

	inserted, err := seeder.Seed(context.Background(), []models.SymbolRecord{
		{Symbol: "AAPL", CompanyName: "Apple Inc."},
		{Symbol: "MSFT"},
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if inserted != 2 {
		t.Fatalf("expected 2 inserted, got %d", inserted)
	}

	symbols, err := store.ListSymbols(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, s := range symbols {
		if s.Symbol == "MSFT" && s.CompanyName != "Microsoft Corporation" {
			t.Fatalf("expected enriched name for MSFT, got %q", s.CompanyName)
		}
		if s.Symbol == "AAPL" && s.CompanyName != "Apple Inc." {
			t.Fatalf("existing name must not be overwritten, got %q", s.CompanyName)
		}
	}
}
