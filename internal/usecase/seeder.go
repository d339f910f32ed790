package usecase

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"ZScout/internal/domain/models"
	"ZScout/internal/domain/repository"
	"ZScout/pkg/logger"
)

// Seeder loads symbol lists into the registry. Lines may carry just a ticker
// or a full "SYMBOL,Company Name,Sector" record; missing company names can be
// filled from a quote source.
type Seeder struct {
	store  repository.ResultStore
	quotes repository.QuoteSource
	log    *logger.Logger
}

// NewSeeder builds a seeder. quotes may be nil to skip name enrichment.
func NewSeeder(store repository.ResultStore, quotes repository.QuoteSource, log *logger.Logger) *Seeder {
	return &Seeder{store: store, quotes: quotes, log: log}
}

// SeedFromFile reads the symbol file at path and inserts new registry rows.
// Returns the number of rows inserted.
func (s *Seeder) SeedFromFile(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open symbol file: %w", err)
	}
	defer f.Close()

	records, err := ReadSymbolList(f)
	if err != nil {
		return 0, fmt.Errorf("read symbol file %s: %w", path, err)
	}
	return s.Seed(ctx, records)
}

// Seed enriches and inserts the given records.
func (s *Seeder) Seed(ctx context.Context, records []models.SymbolRecord) (int, error) {
	if s.quotes != nil {
		for i := range records {
			if records[i].CompanyName != "" {
				continue
			}
			name, err := s.quotes.CompanyName(ctx, records[i].Symbol)
			if err != nil {
				s.log.Warn("company name lookup failed",
					logger.String("symbol", records[i].Symbol),
					logger.Error(err),
				)
				continue
			}
			records[i].CompanyName = name
		}
	}

	inserted, err := s.store.SeedSymbols(ctx, records)
	if err != nil {
		return 0, err
	}

	s.log.Info("registry seeded",
		logger.Int("read", len(records)),
		logger.Int("inserted", inserted),
	)
	return inserted, nil
}

// ReadSymbolList parses a symbol list. One record per line; blank lines and
// lines starting with '#' are skipped. Tickers are uppercased.
func ReadSymbolList(r io.Reader) ([]models.SymbolRecord, error) {
	var records []models.SymbolRecord
	seen := make(map[string]struct{})

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, ",")
		symbol := strings.ToUpper(strings.TrimSpace(parts[0]))
		if symbol == "" {
			continue
		}
		if _, dup := seen[symbol]; dup {
			continue
		}
		seen[symbol] = struct{}{}

		rec := models.SymbolRecord{Symbol: symbol}
		if len(parts) > 1 {
			rec.CompanyName = strings.TrimSpace(parts[1])
		}
		if len(parts) > 2 {
			rec.Sector = strings.TrimSpace(parts[2])
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan symbol list: %w", err)
	}
	return records, nil
}
