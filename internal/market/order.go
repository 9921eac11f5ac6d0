package market

import "github.com/shopspring/decimal"

// Order is an agent's linear demand schedule for one auction: at price p
// the agent wants to hold Intercept - Slope*p shares and currently holds
// Holding. A limit, when present, bounds the price the agent trades at.
type Order struct {
	AgentID   int
	Holding   float64
	Intercept float64
	Slope     float64
	Limit     decimal.Decimal
	HasLimit  bool
}

// NewOrder builds an order, rounding the limit price to the given tick.
func NewOrder(agentID int, holding, intercept, slope, limit float64, hasLimit bool, tick decimal.Decimal) Order {
	o := Order{AgentID: agentID, Holding: holding, Intercept: intercept, Slope: slope, HasLimit: hasLimit}
	if hasLimit {
		o.Limit = RoundToTick(decimal.NewFromFloat(limit), tick)
	}
	return o
}

// QuantityAt is the change in holding the agent asks for at price p.
func (o Order) QuantityAt(p float64) float64 {
	return o.Intercept - o.Slope*p - o.Holding
}

func (o Order) IsBuyAt(p float64) bool  { return o.QuantityAt(p) > 0 }
func (o Order) IsSellAt(p float64) bool { return o.QuantityAt(p) < 0 }

// Accepts reports whether the order may trade at price p. A buyer needs
// a limit at or above p, a seller one at or below p.
func (o Order) Accepts(p decimal.Decimal) bool {
	if !o.HasLimit {
		return true
	}
	pf, _ := p.Float64()
	switch {
	case o.IsBuyAt(pf):
		return o.Limit.GreaterThanOrEqual(p)
	case o.IsSellAt(pf):
		return o.Limit.LessThanOrEqual(p)
	}
	return true
}

// RoundToTick rounds p to the nearest multiple of tick. A non-positive tick leaves p unchanged.
func RoundToTick(p, tick decimal.Decimal) decimal.Decimal {
	if !tick.IsPositive() {
		return p
	}
	return p.DivRound(tick, 0).Mul(tick)
}
