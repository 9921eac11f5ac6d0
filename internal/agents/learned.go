package agents

import (
	"fmt"
	"math/rand"

	"github.com/rs/zerolog/log"

	"github.com/dyike/CortexSim/consts"
	"github.com/dyike/CortexSim/internal/market"
	"github.com/dyike/CortexSim/internal/predictor"
)

// LearnedParams controls the training schedule of the Learned strategy.
type LearnedParams struct {
	Lookback   int
	HistCutoff int
	TrainFreq  int
	Predictor  predictor.Config
}

func DefaultLearnedParams() LearnedParams {
	return LearnedParams{
		Lookback:   10,
		HistCutoff: 250,
		TrainFreq:  50,
		Predictor:  predictor.DefaultConfig(),
	}
}

// WarmUp is the step at which the first training happens.
func (p LearnedParams) WarmUp() int {
	return p.Lookback + p.HistCutoff
}

func (p LearnedParams) Validate() error {
	if p.Lookback <= 0 || p.HistCutoff < p.Lookback || p.TrainFreq <= 0 {
		return fmt.Errorf("%w: learned params lookback=%d cutoff=%d train_freq=%d",
			ErrInvalidConfiguration, p.Lookback, p.HistCutoff, p.TrainFreq)
	}
	return nil
}

// Learned predicts the next gross return from recent returns with a small
// neural network. It has no belief, and its agent does not trade, until
// the warm-up step.
type Learned struct {
	*base
	params  LearnedParams
	model   *predictor.Network
	trained []int
}

func NewLearned(agent *Agent, params Params, lp LearnedParams, mkt *market.Context, rng *rand.Rand, opts ...Option) (*Learned, error) {
	if err := lp.Validate(); err != nil {
		return nil, err
	}
	b, err := newBase(consts.StrategyLearned, agent, params, mkt, rng, opts...)
	if err != nil {
		return nil, err
	}
	lp.Predictor.Inputs = lp.Lookback
	model, err := predictor.New(lp.Predictor, rand.New(rand.NewSource(b.rng.Int63())))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	b.clearBelief()
	agent.SetHalted(true)
	return &Learned{base: b, params: lp, model: model}, nil
}

// TrainingSteps lists the steps at which the model was fitted.
func (l *Learned) TrainingSteps() []int {
	return append([]int(nil), l.trained...)
}

func (l *Learned) CalcExpPD(mkt *market.Context) (float64, bool, error) {
	warm := l.params.WarmUp()
	switch {
	case mkt.Step < warm:
		return 0, false, nil
	case mkt.Step == warm:
		if err := l.train(mkt.Step, mkt.Returns.All()); err != nil {
			return 0, false, err
		}
		l.agent.SetHalted(false)
	default:
		if len(l.trained) == 0 || (mkt.Step-warm)%l.params.TrainFreq == 0 {
			if err := l.train(mkt.Step, mkt.Returns.Last(l.params.HistCutoff+1)); err != nil {
				return 0, false, err
			}
			l.agent.SetHalted(false)
		}
	}

	window := mkt.Returns.Last(l.params.Lookback)
	if len(window) < l.params.Lookback {
		return 0, false, fmt.Errorf("learned agent %d: %w", l.agent.ID, predictor.ErrInsufficientHistory)
	}
	expRet, err := l.model.Predict(window)
	if err != nil {
		return 0, false, fmt.Errorf("learned agent %d predict: %w", l.agent.ID, err)
	}
	l.setBelief(mkt.Price * expRet)
	return l.expPD, true, nil
}

func (l *Learned) train(step int, returns []float64) error {
	inputs, targets, err := predictor.SlidingWindows(returns, l.params.Lookback)
	if err != nil {
		return fmt.Errorf("learned agent %d train: %w", l.agent.ID, err)
	}
	loss, err := l.model.Fit(inputs, targets)
	if err != nil {
		return fmt.Errorf("learned agent %d train: %w", l.agent.ID, err)
	}
	l.trained = append(l.trained, step)
	log.Debug().
		Int("agent", l.agent.ID).
		Int("step", step).
		Int("samples", len(inputs)).
		Float64("loss", loss).
		Msg("learned strategy trained")
	return nil
}
