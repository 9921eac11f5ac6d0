package agents

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/dyike/CortexSim/consts"
	"github.com/dyike/CortexSim/internal/market"
)

// Value prices the stock as a growing perpetuity of its expected next
// dividend. The belief is only recomputed when a new dividend is observed.
type Value struct {
	*base
	divNoiseSig  float64
	prevDividend float64
	recomputed   int
}

func NewValue(agent *Agent, params Params, mkt *market.Context, rng *rand.Rand, opts ...Option) (*Value, error) {
	b, err := newBase(consts.StrategyValue, agent, params, mkt, rng, opts...)
	if err != nil {
		return nil, err
	}
	return &Value{
		base:         b,
		divNoiseSig:  0.05 + 0.1*b.rng.Float64(),
		prevDividend: mkt.Dividend,
	}, nil
}

// DividendNoise is the agent's idiosyncratic noise scale in [0.05, 0.15].
func (v *Value) DividendNoise() float64 { return v.divNoiseSig }

// Recomputations counts how often the belief was revalued.
func (v *Value) Recomputations() int { return v.recomputed }

func (v *Value) CalcExpPD(mkt *market.Context) (float64, bool, error) {
	if mkt.Step != 0 && v.prevDividend == mkt.Dividend {
		return v.expPD, true, nil
	}
	if mkt.RiskFreeRate == 0 {
		return 0, false, fmt.Errorf("%w: value strategy needs a non-zero risk-free rate", ErrInvalidConfiguration)
	}
	if mkt.DividendFreq <= 0 {
		return 0, false, fmt.Errorf("%w: dividend frequency must be positive, got %g", ErrInvalidConfiguration, mkt.DividendFreq)
	}

	tau := 1 / mkt.DividendFreq
	drift := (mkt.DividendGrowth - 0.5*mkt.DividendVol*mkt.DividendVol) * tau
	shock := mkt.DividendVol * math.Sqrt(tau) * v.rng.NormFloat64() * v.divNoiseSig
	expD := mkt.Dividend * math.Exp(drift+shock)

	v.prevDividend = mkt.Dividend
	v.recomputed++
	v.setBelief(expD/mkt.RiskFreeRate + expD)
	return v.expPD, true, nil
}
