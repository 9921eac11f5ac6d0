package agents

import (
	"math/rand"

	"github.com/dyike/CortexSim/consts"
	"github.com/dyike/CortexSim/internal/market"
)

// Momentum extrapolates the direction of the last price plus dividend move.
type Momentum struct {
	*base
	prevPD float64
}

func NewMomentum(agent *Agent, params Params, mkt *market.Context, rng *rand.Rand, opts ...Option) (*Momentum, error) {
	b, err := newBase(consts.StrategyMomentum, agent, params, mkt, rng, opts...)
	if err != nil {
		return nil, err
	}
	return &Momentum{base: b, prevPD: mkt.PriceDividend()}, nil
}

func (m *Momentum) CalcExpPD(mkt *market.Context) (float64, bool, error) {
	phi := 0.02 * m.rng.Float64()
	curr := mkt.PriceDividend()
	switch {
	case curr > m.prevPD:
		m.setBelief(curr * (1 + phi))
	case curr < m.prevPD:
		m.setBelief(curr * (1 - phi))
	default:
		m.setBelief(curr)
	}
	m.prevPD = curr
	return m.expPD, true, nil
}
