package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"ZScout/internal/domain/models"
	drepo "ZScout/internal/domain/repository"
)

// SymbolRow is the symbol registry table.
type SymbolRow struct {
	Symbol      string `gorm:"column:symbol;primaryKey"`
	CompanyName string `gorm:"column:company_name"`
	Sector      string `gorm:"column:sector"`
}

func (SymbolRow) TableName() string { return "stock_symbols" }

// CurrentRow holds the scored outcome for a normally-distributed symbol.
type CurrentRow struct {
	Symbol      string    `gorm:"column:symbol;primaryKey"`
	Mean        float64   `gorm:"column:mean"`
	StdDev      float64   `gorm:"column:stddev"`
	LatestPrice float64   `gorm:"column:latest_price"`
	ZScore      float64   `gorm:"column:z_score"`
	AsOf        time.Time `gorm:"column:as_of"`
}

func (CurrentRow) TableName() string { return "current" }

// AbnormalRow holds the outcome for a symbol that could not be scored.
type AbnormalRow struct {
	Symbol string    `gorm:"column:symbol;primaryKey"`
	Reason string    `gorm:"column:reason"`
	AsOf   time.Time `gorm:"column:as_of"`
}

func (AbnormalRow) TableName() string { return "abnormal_stocks" }

// Store implements the domain ResultStore on SQLite via gorm. Each upsert
// runs in one transaction that also clears the symbol's row from the other
// result table, so a symbol is never visible in both (or neither) once
// processed.
type Store struct {
	db *gorm.DB
}

// Open opens (or creates) the SQLite database at path.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return &Store{db: db}, nil
}

// NewStore wraps an existing gorm connection.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates the three tables if they do not exist. Safe to call
// repeatedly.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&SymbolRow{}, &CurrentRow{}, &AbnormalRow{}); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

// SeedSymbols inserts registry rows, ignoring symbols already present.
// Returns the number of rows actually inserted.
func (s *Store) SeedSymbols(ctx context.Context, records []models.SymbolRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	rows := make([]SymbolRow, 0, len(records))
	for _, r := range records {
		sym := strings.ToUpper(strings.TrimSpace(r.Symbol))
		if sym == "" {
			continue
		}
		rows = append(rows, SymbolRow{
			Symbol:      sym,
			CompanyName: r.CompanyName,
			Sector:      r.Sector,
		})
	}
	if len(rows) == 0 {
		return 0, nil
	}

	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(rows, 200)
	if res.Error != nil {
		return 0, fmt.Errorf("seed symbols: %w", res.Error)
	}
	return int(res.RowsAffected), nil
}

// ListSymbols returns the registry ordered by symbol.
func (s *Store) ListSymbols(ctx context.Context) ([]models.SymbolRecord, error) {
	var rows []SymbolRow
	if err := s.db.WithContext(ctx).Order("symbol").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list symbols: %w", err)
	}

	out := make([]models.SymbolRecord, len(rows))
	for i, r := range rows {
		out[i] = models.SymbolRecord{Symbol: r.Symbol, CompanyName: r.CompanyName, Sector: r.Sector}
	}
	return out, nil
}

// GetCurrent returns the stored normal result for symbol, or nil when the
// symbol has no current row.
func (s *Store) GetCurrent(ctx context.Context, symbol string) (*models.NormalResult, error) {
	var row CurrentRow
	err := s.db.WithContext(ctx).First(&row, "symbol = ?", strings.ToUpper(symbol)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get current %s: %w", symbol, err)
	}

	return &models.NormalResult{
		Symbol:      row.Symbol,
		Mean:        row.Mean,
		StdDev:      row.StdDev,
		LatestPrice: row.LatestPrice,
		ZScore:      row.ZScore,
		AsOf:        row.AsOf,
	}, nil
}

// UpsertNormal writes the scored result and removes any stale abnormal row
// for the same symbol, atomically.
func (s *Store) UpsertNormal(ctx context.Context, res *models.NormalResult) error {
	if res == nil || res.Symbol == "" {
		return fmt.Errorf("upsert normal: empty result")
	}
	row := CurrentRow{
		Symbol:      strings.ToUpper(res.Symbol),
		Mean:        res.Mean,
		StdDev:      res.StdDev,
		LatestPrice: res.LatestPrice,
		ZScore:      res.ZScore,
		AsOf:        res.AsOf,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&AbnormalRow{}, "symbol = ?", row.Symbol).Error; err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "symbol"}},
			UpdateAll: true,
		}).Create(&row).Error
	})
	if err != nil {
		return fmt.Errorf("upsert normal %s: %w", row.Symbol, err)
	}
	return nil
}

// UpsertAbnormal writes the abnormal outcome and removes any stale current
// row for the same symbol, atomically.
func (s *Store) UpsertAbnormal(ctx context.Context, symbol string, reason models.AbnormalReason, asOf time.Time) error {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	if sym == "" {
		return fmt.Errorf("upsert abnormal: empty symbol")
	}
	row := AbnormalRow{Symbol: sym, Reason: string(reason), AsOf: asOf}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&CurrentRow{}, "symbol = ?", sym).Error; err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "symbol"}},
			UpdateAll: true,
		}).Create(&row).Error
	})
	if err != nil {
		return fmt.Errorf("upsert abnormal %s: %w", sym, err)
	}
	return nil
}

// ListCandidates returns current rows with z_score <= maxZ, least negative
// first, joined with the registry for company names.
func (s *Store) ListCandidates(ctx context.Context, maxZ float64) ([]models.Candidate, error) {
	type joined struct {
		CurrentRow
		CompanyName string
	}

	var rows []joined
	err := s.db.WithContext(ctx).
		Table("current").
		Select("current.*, stock_symbols.company_name").
		Joins("LEFT JOIN stock_symbols ON stock_symbols.symbol = current.symbol").
		Where("current.z_score <= ?", maxZ).
		Order("current.z_score DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}

	out := make([]models.Candidate, len(rows))
	for i, r := range rows {
		out[i] = models.Candidate{
			Symbol:      r.Symbol,
			CompanyName: r.CompanyName,
			ZScore:      r.ZScore,
			LatestPrice: r.LatestPrice,
			AsOf:        r.AsOf,
		}
	}
	return out, nil
}

// Counts returns the sizes of both result tables.
func (s *Store) Counts(ctx context.Context) (int64, int64, error) {
	var normal, abnormal int64
	if err := s.db.WithContext(ctx).Model(&CurrentRow{}).Count(&normal).Error; err != nil {
		return 0, 0, fmt.Errorf("count current: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&AbnormalRow{}).Count(&abnormal).Error; err != nil {
		return 0, 0, fmt.Errorf("count abnormal: %w", err)
	}
	return normal, abnormal, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

var _ drepo.ResultStore = (*Store)(nil)
