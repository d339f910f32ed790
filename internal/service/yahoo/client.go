package yahoo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/quote"

	"ZScout/internal/domain/models"
	"ZScout/internal/service/ratelimit"
	pkgcache "ZScout/pkg/cache"
)

var (
	// ErrInvalidSymbol means Yahoo does not know the ticker.
	ErrInvalidSymbol = errors.New("yahoo: invalid symbol")

	// ErrNoData means the ticker resolved but the window had no closes.
	ErrNoData = errors.New("yahoo: no price data in window")
)

const limiterKey = "yahoo"

// Client fetches daily closing-price history from Yahoo Finance. Every call
// passes through the shared token bucket; a context deadline is reported as
// an ordinary fetch failure.
type Client struct {
	limiter      *ratelimit.Limiter
	cache        pkgcache.Service
	cacheTTL     time.Duration
	rateCapacity float64
	rateRefill   float64
	timeout      time.Duration
}

// Option configures Client.
type Option func(*Client)

// WithRate sets the token bucket capacity and refill rate.
func WithRate(capacity, refillPerSec float64) Option {
	return func(c *Client) {
		c.rateCapacity = capacity
		c.rateRefill = refillPerSec
	}
}

// WithTimeout sets the per-fetch timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithCache fronts fetches with a cache keyed by symbol and window.
func WithCache(svc pkgcache.Service, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = svc
		c.cacheTTL = ttl
	}
}

// New creates a Yahoo Finance client.
func New(limiter *ratelimit.Limiter, opts ...Option) *Client {
	c := &Client{
		limiter:      limiter,
		rateCapacity: 5,
		rateRefill:   2,
		timeout:      10 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// History returns the ordered daily closes for the trailing lookback window.
func (c *Client) History(ctx context.Context, symbol string, lookbackDays int) (*models.PriceSeries, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, ErrInvalidSymbol
	}
	if lookbackDays <= 0 {
		lookbackDays = 30
	}

	cacheKey := fmt.Sprintf("prices:%s:%d", symbol, lookbackDays)
	if c.cache != nil {
		var cached models.PriceSeries
		if err := c.cache.Get(ctx, cacheKey, &cached); err == nil && cached.Len() > 0 {
			return &cached, nil
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, limiterKey, c.rateCapacity, c.rateRefill); err != nil {
			return nil, fmt.Errorf("yahoo: rate wait %s: %w", symbol, err)
		}
	}

	fetchCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	series, err := fetchWithContext(fetchCtx, symbol, lookbackDays)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		_ = c.cache.Set(ctx, cacheKey, series, c.cacheTTL)
	}
	return series, nil
}

// CompanyName resolves a ticker to its short company name.
func (c *Client) CompanyName(ctx context.Context, symbol string) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, limiterKey, c.rateCapacity, c.rateRefill); err != nil {
			return "", fmt.Errorf("yahoo: rate wait %s: %w", symbol, err)
		}
	}
	q, err := quote.Get(strings.ToUpper(strings.TrimSpace(symbol)))
	if err != nil {
		return "", mapFetchError(symbol, err)
	}
	if q == nil {
		return "", ErrInvalidSymbol
	}
	return q.ShortName, nil
}

type fetchResult struct {
	series *models.PriceSeries
	err    error
}

// fetchWithContext runs the blocking chart iteration in a goroutine so a
// context deadline cannot hang the whole batch. The finance-go transport has
// its own HTTP timeouts; this is the outer bound.
func fetchWithContext(ctx context.Context, symbol string, lookbackDays int) (*models.PriceSeries, error) {
	ch := make(chan fetchResult, 1)
	go func() {
		series, err := fetchHistory(symbol, lookbackDays)
		ch <- fetchResult{series: series, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("yahoo: fetch %s: %w", symbol, ctx.Err())
	case res := <-ch:
		return res.series, res.err
	}
}

func fetchHistory(symbol string, lookbackDays int) (*models.PriceSeries, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -lookbackDays)

	iter := chart.Get(&chart.Params{
		Symbol:   symbol,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	})

	series := &models.PriceSeries{Symbol: symbol}
	for iter.Next() {
		bar := iter.Bar()
		if bar == nil {
			continue
		}
		close := bar.Close.InexactFloat64()
		if close <= 0 {
			continue
		}
		series.Points = append(series.Points, models.PricePoint{
			Date:  time.Unix(int64(bar.Timestamp), 0).UTC(),
			Close: close,
		})
	}
	if err := iter.Err(); err != nil {
		return nil, mapFetchError(symbol, err)
	}
	if series.Len() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoData, symbol)
	}
	return series, nil
}

func mapFetchError(symbol string, err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "not found") || strings.Contains(msg, "no data found") {
		return fmt.Errorf("%w: %s", ErrInvalidSymbol, symbol)
	}
	return fmt.Errorf("yahoo: fetch %s: %w", symbol, err)
}
