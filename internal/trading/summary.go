package trading

import (
	"github.com/grd/stat"
)

type GroupSummary struct {
	Strategy   string
	Agents     int
	Halted     int
	MeanWealth float64
	MeanShares float64
}

// Summary aggregates a finished (or partial) run.
type Summary struct {
	Steps      int
	FinalPrice float64
	MeanReturn float64
	SdReturn   float64
	Volume     float64
	Skipped    int
	// CappedSteps counts auctions whose price was held at the move limit.
	CappedSteps int
	Groups      []GroupSummary
}

func (s *TradingSession) Summary() *Summary {
	sum := &Summary{
		Steps:      s.step,
		FinalPrice: s.stock.Price,
	}

	returns := make(stat.Float64Slice, 0, len(s.records))
	for _, r := range s.records {
		returns = append(returns, r.Return)
		sum.Volume += r.Volume
		sum.Skipped += r.Skipped
		if r.Capped {
			sum.CappedSteps++
		}
	}
	if len(returns) > 0 {
		sum.MeanReturn = stat.Mean(returns)
	}
	if len(returns) > 1 {
		sum.SdReturn = stat.Sd(returns)
	}

	index := make(map[string]int)
	wealth := make(map[string]stat.Float64Slice)
	shares := make(map[string]stat.Float64Slice)
	for _, a := range s.agents {
		name := a.Strategy.Name()
		i, ok := index[name]
		if !ok {
			i = len(sum.Groups)
			index[name] = i
			sum.Groups = append(sum.Groups, GroupSummary{Strategy: name})
		}
		sum.Groups[i].Agents++
		if a.Halted() {
			sum.Groups[i].Halted++
		}
		wealth[name] = append(wealth[name], a.Wealth())
		shares[name] = append(shares[name], a.Shares)
	}
	for i := range sum.Groups {
		name := sum.Groups[i].Strategy
		sum.Groups[i].MeanWealth = stat.Mean(wealth[name])
		sum.Groups[i].MeanShares = stat.Mean(shares[name])
	}
	return sum
}
