package market

import "github.com/dyike/CortexSim/consts"

// SettleType selects whether agents submit price-limited or unconstrained orders.
type SettleType string

const (
	SettleLimit  SettleType = consts.SettleLimit
	SettleMarket SettleType = consts.SettleMarket
)

// Context is the per-step view of the market handed to every strategy.
// It is built once per step by the scheduler and must not be mutated
// while agents are reading it.
type Context struct {
	Price          float64
	Dividend       float64
	DividendVol    float64
	DividendGrowth float64
	// DividendFreq is the number of dividend payments per unit of time.
	DividendFreq float64
	RiskFreeRate float64
	Dt           float64
	Step         int
	Settle       SettleType

	InteractionRate float64
	// ConfidenceLevels holds the cautious and optimistic confidence multipliers.
	ConfidenceLevels [2]float64

	Returns *ReturnHistory
}

// PriceDividend is the current price plus the current dividend.
func (c *Context) PriceDividend() float64 {
	return c.Price + c.Dividend
}
