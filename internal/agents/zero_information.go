package agents

import (
	"math/rand"

	"github.com/dyike/CortexSim/consts"
	"github.com/dyike/CortexSim/internal/market"
)

// ZeroInformation is a noise trader that mean-reverts towards a randomly
// perturbed price plus dividend.
type ZeroInformation struct {
	*base
}

func NewZeroInformation(agent *Agent, params Params, mkt *market.Context, rng *rand.Rand, opts ...Option) (*ZeroInformation, error) {
	b, err := newBase(consts.StrategyZeroInformation, agent, params, mkt, rng, opts...)
	if err != nil {
		return nil, err
	}
	return &ZeroInformation{base: b}, nil
}

func (z *ZeroInformation) CalcExpPD(mkt *market.Context) (float64, bool, error) {
	noise := 0.98 + 0.04*z.rng.Float64()
	z.setBelief(0.9*z.expPD + 0.1*noise*mkt.PriceDividend())
	return z.expPD, true, nil
}
