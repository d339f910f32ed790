package usecase

import (
	"context"
	"strings"

	"ZScout/internal/domain/models"
	"ZScout/internal/domain/repository"
)

// ResultCounts is the stored-outcome breakdown served by the summary
// endpoint.
type ResultCounts struct {
	Normal   int64 `json:"normal"`
	Abnormal int64 `json:"abnormal"`
	Total    int64 `json:"total"`
}

// ResultReader is the read side of the result store for the API surface.
type ResultReader struct {
	store repository.ResultStore
}

// NewResultReader creates a result reader.
func NewResultReader(store repository.ResultStore) *ResultReader {
	return &ResultReader{store: store}
}

// Current returns the scored result for symbol, nil when the symbol has no
// current row.
func (r *ResultReader) Current(ctx context.Context, symbol string) (*models.NormalResult, error) {
	return r.store.GetCurrent(ctx, strings.ToUpper(strings.TrimSpace(symbol)))
}

// Counts returns the sizes of both result tables.
func (r *ResultReader) Counts(ctx context.Context) (*ResultCounts, error) {
	normal, abnormal, err := r.store.Counts(ctx)
	if err != nil {
		return nil, err
	}
	return &ResultCounts{
		Normal:   normal,
		Abnormal: abnormal,
		Total:    normal + abnormal,
	}, nil
}
