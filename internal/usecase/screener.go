package usecase

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"ZScout/internal/domain/models"
	"ZScout/internal/domain/repository"
)

// Screener reads ranked buy candidates from the result store. A candidate is
// a scored symbol whose z-score is at or below the threshold; less negative
// scores rank first.
type Screener struct {
	store     repository.ResultStore
	threshold float64
}

// NewScreener builds a screener with the default z-score threshold.
func NewScreener(store repository.ResultStore, threshold float64) *Screener {
	return &Screener{store: store, threshold: threshold}
}

// Candidates returns the ranked candidates at the configured threshold.
func (s *Screener) Candidates(ctx context.Context) ([]models.Candidate, error) {
	return s.CandidatesAt(ctx, s.threshold)
}

// CandidatesAt returns the ranked candidates at an explicit threshold.
func (s *Screener) CandidatesAt(ctx context.Context, maxZ float64) ([]models.Candidate, error) {
	return s.store.ListCandidates(ctx, maxZ)
}

// Render writes a plain-text candidate table, one row per symbol.
func (s *Screener) Render(w io.Writer, candidates []models.Candidate) error {
	if len(candidates) == 0 {
		_, err := fmt.Fprintln(w, "no candidates at the current threshold")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SYMBOL\tCOMPANY\tZ-SCORE\tLATEST\tAS OF")
	for _, c := range candidates {
		fmt.Fprintf(tw, "%s\t%s\t%.4f\t%.2f\t%s\n",
			c.Symbol, c.CompanyName, c.ZScore, c.LatestPrice, c.AsOf.Format("2006-01-02"))
	}
	return tw.Flush()
}
