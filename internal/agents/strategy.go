package agents

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/dyike/CortexSim/internal/market"
)

// DefaultTolerance is the share of the belief/price gap an agent is
// willing to concede when quoting a limit price.
const DefaultTolerance = 0.5

// Strategy is the belief and demand engine owned by one agent.
//
// Per step the scheduler calls CollectNeighbourExp, CalcExpPD,
// IncorpNeighbourExp (only when NeighbourExps is non-empty) and then
// CalcShareDemand / CalcLimit. Callers must check ExpPD before asking for
// demand: a strategy without a belief returns ErrUndefinedBelief.
type Strategy interface {
	Name() string
	Agent() *Agent
	Profile() RiskProfile

	// CalcExpPD updates the belief about next period's price plus dividend.
	// The boolean is false while the belief is not yet available.
	CalcExpPD(mkt *market.Context) (float64, bool, error)
	ExpPD() (float64, bool)

	UpdateCondLossAversion()
	CalcShareDemand(mkt *market.Context) (float64, error)
	DemandSlope(mkt *market.Context) (float64, error)
	CalcLimit(mkt *market.Context) (float64, bool, error)

	CollectNeighbourExp(step int, topo Topology, beliefs BeliefSource)
	IncorpNeighbourExp() (float64, error)
	NeighbourExps() []float64
	SetInteractionRate(rate float64)
}

// Params are the construction-time inputs shared by every strategy.
type Params struct {
	RiskAversion float64
	LossAversion float64
	Behaviour    string
}

type Option func(*base)

func WithTolerance(t float64) Option {
	return func(b *base) { b.tolerance = t }
}

// base carries the state and algorithms common to all strategies.
type base struct {
	name    string
	agent   *Agent
	profile RiskProfile
	sigmaSq float64
	rng     *rand.Rand

	tolerance    float64
	interactRate float64

	expPD     float64
	hasBelief bool

	prevWealth float64
	neighExps  []float64
}

func newBase(name string, agent *Agent, params Params, mkt *market.Context, rng *rand.Rand, opts ...Option) (*base, error) {
	if agent == nil {
		return nil, fmt.Errorf("%w: strategy %s has no owning agent", ErrInvalidConfiguration, name)
	}
	if mkt == nil {
		return nil, fmt.Errorf("%w: strategy %s has no market context", ErrInvalidConfiguration, name)
	}
	profile, err := ParseBehaviour(params.Behaviour, params.RiskAversion, params.LossAversion, mkt.ConfidenceLevels)
	if err != nil {
		return nil, err
	}
	if mkt.DividendVol == 0 || math.IsNaN(mkt.DividendVol) {
		return nil, fmt.Errorf("%w: dividend volatility must be non-zero", ErrInvalidConfiguration)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(int64(agent.ID) + 1))
	}

	b := &base{
		name:         name,
		agent:        agent,
		profile:      profile,
		sigmaSq:      mkt.DividendVol * mkt.DividendVol,
		rng:          rng,
		tolerance:    DefaultTolerance,
		interactRate: mkt.InteractionRate,
		expPD:        mkt.PriceDividend(),
		hasBelief:    true,
		prevWealth:   agent.Wealth(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.tolerance < 0 || b.tolerance > 1 {
		return nil, fmt.Errorf("%w: tolerance %g outside [0,1]", ErrInvalidConfiguration, b.tolerance)
	}
	if b.interactRate < 0 || b.interactRate > 1 {
		return nil, fmt.Errorf("%w: interaction rate %g outside [0,1]", ErrInvalidConfiguration, b.interactRate)
	}
	return b, nil
}

func (b *base) Name() string         { return b.name }
func (b *base) Agent() *Agent        { return b.agent }
func (b *base) Profile() RiskProfile { return b.profile }
func (b *base) Tolerance() float64   { return b.tolerance }

func (b *base) ExpPD() (float64, bool) {
	return b.expPD, b.hasBelief
}

func (b *base) setBelief(v float64) {
	b.expPD = v
	b.hasBelief = true
}

func (b *base) clearBelief() {
	b.expPD = 0
	b.hasBelief = false
}

func (b *base) SetInteractionRate(rate float64) {
	b.interactRate = math.Max(0, math.Min(1, rate))
}

// UpdateCondLossAversion activates the nominal loss aversion only when the
// agent's wealth fell since the previous call.
func (b *base) UpdateCondLossAversion() {
	w := b.agent.Wealth()
	if b.prevWealth > w {
		b.profile.CondLossAversion = b.profile.LossAversion
	} else {
		b.profile.CondLossAversion = 1
	}
	b.prevWealth = w
}

// CalcShareDemand returns the desired holding given the current belief.
// Loss-dominant agents refresh their conditional loss aversion first.
func (b *base) CalcShareDemand(mkt *market.Context) (float64, error) {
	if !b.hasBelief {
		return 0, fmt.Errorf("%s demand for agent %d: %w", b.name, b.agent.ID, ErrUndefinedBelief)
	}
	if b.profile.LossAversion != 1 {
		b.UpdateCondLossAversion()
	}
	denom, err := b.demandDenominator()
	if err != nil {
		return 0, err
	}
	return (b.expPD - (1+mkt.RiskFreeRate)*mkt.Price) / denom, nil
}

// DemandSlope is the drop in desired holding per unit of price under the
// current profile. It does not refresh the conditional loss aversion, so
// it is meant to follow CalcShareDemand within a step.
func (b *base) DemandSlope(mkt *market.Context) (float64, error) {
	denom, err := b.demandDenominator()
	if err != nil {
		return 0, err
	}
	return (1 + mkt.RiskFreeRate) / denom, nil
}

func (b *base) demandDenominator() (float64, error) {
	denom := b.profile.RiskAversion * b.profile.CondLossAversion * b.profile.Confidence * b.sigmaSq
	if denom == 0 {
		return 0, fmt.Errorf("%w: zero demand denominator for agent %d", ErrInvalidConfiguration, b.agent.ID)
	}
	return denom, nil
}

// CalcLimit returns the limit price under limit settlement. Under market
// settlement the boolean is false and there is no limit.
func (b *base) CalcLimit(mkt *market.Context) (float64, bool, error) {
	if mkt.Settle != market.SettleLimit {
		return 0, false, nil
	}
	if !b.hasBelief {
		return 0, false, fmt.Errorf("%s limit for agent %d: %w", b.name, b.agent.ID, ErrUndefinedBelief)
	}
	growth := math.Pow(1+mkt.RiskFreeRate, mkt.Dt)
	return b.tolerance*b.expPD + (1-b.tolerance)*growth*mkt.Price, true, nil
}
