package models

import "time"

// SymbolRecord is one row of the symbol registry. The registry is populated
// by the seeding step and read-only to the analysis pipeline.
type SymbolRecord struct {
	Symbol      string `json:"symbol"`
	CompanyName string `json:"company_name,omitempty"`
	Sector      string `json:"sector,omitempty"`
}

// PricePoint is a single daily close.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// PriceSeries is the trailing window of daily closes for one symbol.
// It lives only for the duration of that symbol's analysis and is never
// persisted.
type PriceSeries struct {
	Symbol string       `json:"symbol"`
	Points []PricePoint `json:"points"`
}

// Len returns the number of observations.
func (s *PriceSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Points)
}

// Closes returns the close prices in date order.
func (s *PriceSeries) Closes() []float64 {
	if s == nil {
		return nil
	}
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Close
	}
	return out
}

// Latest returns the most recent point, ok=false on an empty series.
func (s *PriceSeries) Latest() (PricePoint, bool) {
	if s == nil || len(s.Points) == 0 {
		return PricePoint{}, false
	}
	return s.Points[len(s.Points)-1], true
}

// AbnormalReason says why a symbol landed in abnormal_stocks.
type AbnormalReason string

const (
	ReasonInsufficientData AbnormalReason = "INSUFFICIENT_DATA"
	ReasonNotNormal        AbnormalReason = "NOT_NORMAL"
	ReasonFetchFailed      AbnormalReason = "FETCH_FAILED"
)

// NormalResult is the persisted outcome for a symbol whose trailing closes
// passed the normality test. StdDev is the sample standard deviation
// (ddof=1). Lower ZScore means the latest close sits further below the
// trailing mean, i.e. a stronger buy candidate.
type NormalResult struct {
	Symbol      string    `json:"symbol"`
	Mean        float64   `json:"mean"`
	StdDev      float64   `json:"stddev"`
	LatestPrice float64   `json:"latest_price"`
	ZScore      float64   `json:"z_score"`
	AsOf        time.Time `json:"as_of"`
}

// AbnormalResult is the persisted outcome for a symbol that could not be
// scored. A symbol is in exactly one of current/abnormal_stocks after a run.
type AbnormalResult struct {
	Symbol string         `json:"symbol"`
	Reason AbnormalReason `json:"reason"`
	AsOf   time.Time      `json:"as_of"`
}

// Candidate is a ranked buy candidate from the current table.
type Candidate struct {
	Symbol      string    `json:"symbol"`
	CompanyName string    `json:"company_name,omitempty"`
	ZScore      float64   `json:"z_score"`
	LatestPrice float64   `json:"latest_price"`
	AsOf        time.Time `json:"as_of"`
}

// RunSummary aggregates one full pass over the registry.
// Processed = Normal + Abnormal + Failed.
type RunSummary struct {
	Processed  int       `json:"processed"`
	Normal     int       `json:"normal"`
	Abnormal   int       `json:"abnormal"`
	Failed     int       `json:"failed"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// OutcomeEvent is the per-symbol message published to the event topic when
// event publishing is enabled.
type OutcomeEvent struct {
	Symbol string          `json:"symbol"`
	Status string          `json:"status"` // normal, abnormal, failed
	Reason AbnormalReason  `json:"reason,omitempty"`
	ZScore *float64        `json:"z_score,omitempty"`
	AsOf   time.Time       `json:"as_of"`
}
