package dataflows

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// GrossReturns converts consecutive bars into gross returns
// close[t]/close[t-1], preferring adjusted closes when present.
func GrossReturns(bars []*Bar) ([]float64, error) {
	if len(bars) < 2 {
		return nil, fmt.Errorf("need at least two bars, got %d", len(bars))
	}
	returns := make([]float64, 0, len(bars)-1)
	prev := closeOf(bars[0])
	for i, bar := range bars[1:] {
		cur := closeOf(bar)
		if !prev.IsPositive() {
			return nil, fmt.Errorf("bar %d has non-positive close %s", i, prev)
		}
		r, _ := cur.Div(prev).Float64()
		returns = append(returns, r)
		prev = cur
	}
	return returns, nil
}

func closeOf(b *Bar) decimal.Decimal {
	if b.AdjClose.IsPositive() {
		return b.AdjClose
	}
	return b.Close
}
