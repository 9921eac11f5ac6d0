package agents

import (
	"errors"
	"math"
	"math/rand"
	"reflect"
	"testing"

	"github.com/dyike/CortexSim/consts"
	"github.com/dyike/CortexSim/internal/market"
)

func TestLearnedSchedule(t *testing.T) {
	mkt := testMarket()
	a := testAgent(0)
	s, err := NewLearned(a, Params{RiskAversion: 2, LossAversion: 2.25, Behaviour: consts.BehaviourLoss}, DefaultLearnedParams(), mkt, rand.New(rand.NewSource(9)))
	if err != nil {
		t.Fatalf("NewLearned: %v", err)
	}
	if !a.Halted() {
		t.Fatalf("learned agent should start halted")
	}
	if _, ok := s.ExpPD(); ok {
		t.Fatalf("learned agent should start without a belief")
	}
	if _, err := s.CalcShareDemand(mkt); !errors.Is(err, ErrUndefinedBelief) {
		t.Fatalf("expected ErrUndefinedBelief before warm-up, got %v", err)
	}

	for step := 0; step <= 370; step++ {
		mkt.Step = step
		got, ok, err := s.CalcExpPD(mkt)
		if err != nil {
			t.Fatalf("step %d: %v", step, err)
		}
		switch {
		case step < 260:
			if ok || !a.Halted() {
				t.Fatalf("step %d: expected no belief and halted agent, got ok=%v halted=%v", step, ok, a.Halted())
			}
		default:
			if !ok || a.Halted() {
				t.Fatalf("step %d: expected belief and active agent, got ok=%v halted=%v", step, ok, a.Halted())
			}
			if math.IsNaN(got) || math.IsInf(got, 0) {
				t.Fatalf("step %d: belief %g is not finite", step, got)
			}
		}
		mkt.Returns.Append(1 + 0.01*math.Sin(float64(step)/7))
	}

	if got, want := s.TrainingSteps(), []int{260, 310, 360}; !reflect.DeepEqual(got, want) {
		t.Fatalf("TrainingSteps = %v, want %v", got, want)
	}
}

func TestLearnedInsufficientHistory(t *testing.T) {
	mkt := testMarket()
	lp := DefaultLearnedParams()
	s, err := NewLearned(testAgent(0), Params{RiskAversion: 2, LossAversion: 2.25, Behaviour: consts.BehaviourRisk}, lp, mkt, nil)
	if err != nil {
		t.Fatalf("NewLearned: %v", err)
	}
	mkt.Step = lp.WarmUp()
	mkt.Returns = market.NewReturnHistory(1, 1, 1)
	if _, _, err := s.CalcExpPD(mkt); err == nil {
		t.Fatalf("expected an error when the history is shorter than the lookback")
	}
}

func TestLearnedParamsValidate(t *testing.T) {
	lp := DefaultLearnedParams()
	if err := lp.Validate(); err != nil {
		t.Fatalf("default params invalid: %v", err)
	}
	if lp.WarmUp() != 260 {
		t.Fatalf("WarmUp = %d, want 260", lp.WarmUp())
	}
	lp.TrainFreq = 0
	if err := lp.Validate(); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}

	// a retrain window of cutoff+1 returns must hold at least one sample
	short := DefaultLearnedParams()
	short.HistCutoff = short.Lookback - 1
	if err := short.Validate(); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("expected cutoff below lookback to be rejected, got %v", err)
	}
	short.HistCutoff = short.Lookback
	if err := short.Validate(); err != nil {
		t.Fatalf("cutoff equal to lookback should be valid: %v", err)
	}
	if _, err := NewLearned(testAgent(0), Params{RiskAversion: 2, LossAversion: 2.25, Behaviour: consts.BehaviourRisk},
		LearnedParams{Lookback: 10, HistCutoff: 5, TrainFreq: 50, Predictor: DefaultLearnedParams().Predictor}, testMarket(), nil); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("NewLearned accepted a cutoff below the lookback: %v", err)
	}
}

func TestLearnedRetrainsWithMinimalCutoff(t *testing.T) {
	mkt := testMarket()
	lp := DefaultLearnedParams()
	lp.HistCutoff = lp.Lookback
	lp.TrainFreq = 5
	s, err := NewLearned(testAgent(0), Params{RiskAversion: 2, LossAversion: 2.25, Behaviour: consts.BehaviourRisk}, lp, mkt, rand.New(rand.NewSource(2)))
	if err != nil {
		t.Fatalf("NewLearned: %v", err)
	}
	for step := 0; step <= lp.WarmUp()+2*lp.TrainFreq; step++ {
		mkt.Step = step
		if _, _, err := s.CalcExpPD(mkt); err != nil {
			t.Fatalf("step %d: %v", step, err)
		}
		mkt.Returns.Append(1 + 0.01*math.Cos(float64(step)))
	}
	if got := len(s.TrainingSteps()); got != 3 {
		t.Fatalf("trained %d times, want 3", got)
	}
}
