package dataflows

import (
	"context"
	"fmt"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
)

// BarCache stores fetched bars keyed by symbol and look-back in days.
type BarCache interface {
	Get(symbol string, days int) ([]*Bar, bool)
	Set(symbol string, days int, bars []*Bar)
}

// YahooFinanceClient fetches daily bars used to seed the return history.
type YahooFinanceClient struct {
	retry *RetryConfig
	cache BarCache
}

type ClientOption func(*YahooFinanceClient)

func WithCache(c BarCache) ClientOption {
	return func(yf *YahooFinanceClient) { yf.cache = c }
}

func WithRetryConfig(r *RetryConfig) ClientOption {
	return func(yf *YahooFinanceClient) { yf.retry = r }
}

func NewYahooFinanceClient(opts ...ClientOption) *YahooFinanceClient {
	yf := &YahooFinanceClient{retry: DefaultRetryConfig()}
	for _, opt := range opts {
		opt(yf)
	}
	return yf
}

// GetHistoricalData gets daily bars for symbol between start and end.
func (yf *YahooFinanceClient) GetHistoricalData(ctx context.Context, symbol string, start, end time.Time) ([]*Bar, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	symbol = NormalizeSymbol(symbol)

	var result []*Bar
	err := WithRetry(ctx, yf.retry, func() error {
		params := &chart.Params{
			Symbol:   symbol,
			Start:    datetime.New(&start),
			End:      datetime.New(&end),
			Interval: datetime.OneDay,
		}
		iter := chart.Get(params)

		result = result[:0]
		for iter.Next() {
			bar := iter.Bar()
			result = append(result, &Bar{
				Symbol:   symbol,
				Date:     time.Unix(int64(bar.Timestamp), 0),
				Close:    bar.Close,
				AdjClose: bar.AdjClose,
				Volume:   int64(bar.Volume),
			})
		}
		if err := iter.Err(); err != nil {
			return fmt.Errorf("failed to get historical data for %s: %w", symbol, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetHistoricalReturns returns the gross daily returns of the last days
// calendar days, consulting the cache first when one is configured.
func (yf *YahooFinanceClient) GetHistoricalReturns(ctx context.Context, symbol string, days int) ([]float64, error) {
	if days <= 0 {
		return nil, fmt.Errorf("days must be positive, got %d", days)
	}
	if yf.cache != nil {
		if bars, ok := yf.cache.Get(symbol, days); ok {
			return GrossReturns(bars)
		}
	}

	end := time.Now()
	start := end.AddDate(0, 0, -days)
	bars, err := yf.GetHistoricalData(ctx, symbol, start, end)
	if err != nil {
		return nil, err
	}
	returns, err := GrossReturns(bars)
	if err != nil {
		return nil, err
	}
	if yf.cache != nil {
		yf.cache.Set(symbol, days, bars)
	}
	return returns, nil
}
