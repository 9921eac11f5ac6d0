package agents

import (
	"fmt"
	"math/rand"

	"github.com/dyike/CortexSim/consts"
	"github.com/dyike/CortexSim/internal/market"
)

// New builds the strategy named kind for agent and attaches it.
func New(kind string, agent *Agent, params Params, lp LearnedParams, mkt *market.Context, rng *rand.Rand, opts ...Option) (Strategy, error) {
	var (
		s   Strategy
		err error
	)
	switch kind {
	case consts.StrategyZeroInformation:
		s, err = NewZeroInformation(agent, params, mkt, rng, opts...)
	case consts.StrategyValue:
		s, err = NewValue(agent, params, mkt, rng, opts...)
	case consts.StrategyMomentum:
		s, err = NewMomentum(agent, params, mkt, rng, opts...)
	case consts.StrategyLearned:
		s, err = NewLearned(agent, params, lp, mkt, rng, opts...)
	default:
		return nil, fmt.Errorf("%w: unknown strategy %q", ErrInvalidConfiguration, kind)
	}
	if err != nil {
		return nil, err
	}
	agent.Strategy = s
	return s, nil
}
