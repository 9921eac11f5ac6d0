package trading

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/rs/zerolog"

	"github.com/dyike/CortexSim/config"
	"github.com/dyike/CortexSim/consts"
	"github.com/dyike/CortexSim/internal/market"
)

func smallConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.DefaultConfigWithRoot(t.TempDir())
	cfg.Groups = []config.AgentGroup{
		{Strategy: consts.StrategyZeroInformation, Count: 4, Behaviour: consts.BehaviourRisk, RiskAversion: 2, LossAversion: 2.25},
		{Strategy: consts.StrategyValue, Count: 4, Behaviour: consts.BehaviourLossCautious, RiskAversion: 2, LossAversion: 2.25},
		{Strategy: consts.StrategyMomentum, Count: 4, Behaviour: consts.BehaviourRiskOptimistic, RiskAversion: 2, LossAversion: 2.25},
		{Strategy: consts.StrategyLearned, Count: 2, Behaviour: consts.BehaviourLoss, RiskAversion: 2, LossAversion: 2.25},
	}
	cfg.Steps = 40
	cfg.Learned.Lookback = 5
	cfg.Learned.HistCutoff = 10
	cfg.Learned.TrainFreq = 5
	return *cfg
}

func quietSession(t *testing.T, cfg config.Config, opts ...Option) *TradingSession {
	t.Helper()
	opts = append(opts, WithLogger(zerolog.Nop()))
	s, err := NewTradingSession(cfg, opts...)
	if err != nil {
		t.Fatalf("NewTradingSession: %v", err)
	}
	return s
}

func TestSessionExecute(t *testing.T) {
	cfg := smallConfig(t)
	s := quietSession(t, cfg)

	sum, err := s.Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if sum.Steps != cfg.Steps || len(s.Records()) != cfg.Steps {
		t.Fatalf("ran %d steps with %d records, want %d", sum.Steps, len(s.Records()), cfg.Steps)
	}
	if s.History().Len() != cfg.Steps {
		t.Fatalf("history has %d returns, want %d", s.History().Len(), cfg.Steps)
	}
	if sum.FinalPrice <= 0 || math.IsNaN(sum.FinalPrice) {
		t.Fatalf("final price %g is not a positive number", sum.FinalPrice)
	}
	if len(sum.Groups) != 4 {
		t.Fatalf("summary has %d groups, want 4", len(sum.Groups))
	}
	for _, g := range sum.Groups {
		if g.Strategy == consts.StrategyLearned && g.Halted != 0 {
			t.Errorf("learned agents still halted after warm-up")
		}
	}

	var shares float64
	for _, a := range s.Agents() {
		shares += a.Shares
	}
	if want := float64(cfg.NumAgents()) * cfg.InitialShares; math.Abs(shares-want) > 1e-6 {
		t.Fatalf("share supply drifted: %g, want %g", shares, want)
	}
}

func TestLearnedAgentsHaltedBeforeWarmUp(t *testing.T) {
	cfg := smallConfig(t)
	s := quietSession(t, cfg)
	for i := 0; i < 5; i++ {
		if _, err := s.Step(context.Background()); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
	for _, a := range s.Agents() {
		if a.Strategy.Name() == consts.StrategyLearned && !a.Halted() {
			t.Fatalf("learned agent %d trading before warm-up", a.ID)
		}
	}
}

func TestSessionDeterministicBySeed(t *testing.T) {
	cfg := smallConfig(t)
	cfg.Steps = 20

	a := quietSession(t, cfg)
	b := quietSession(t, cfg)
	if _, err := a.Execute(context.Background()); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if _, err := b.Execute(context.Background()); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	for i := range a.Records() {
		if a.Records()[i] != b.Records()[i] {
			t.Fatalf("step %d differs: %+v vs %+v", i, a.Records()[i], b.Records()[i])
		}
	}
}

func TestApplyLiveTakesEffectNextStep(t *testing.T) {
	s := quietSession(t, smallConfig(t))
	ctx := context.Background()
	if _, err := s.Step(ctx); err != nil {
		t.Fatalf("Step: %v", err)
	}

	s.ApplyLive(config.LiveSettings{SettleType: consts.SettleMarket, InteractionRate: 0.5, RiskFreeRate: 0.03})
	if s.Context().Settle != market.SettleLimit {
		t.Fatalf("live settings applied before the step boundary")
	}
	if _, err := s.Step(ctx); err != nil {
		t.Fatalf("Step: %v", err)
	}
	mkt := s.Context()
	if mkt.Settle != market.SettleMarket || mkt.InteractionRate != 0.5 || mkt.RiskFreeRate != 0.03 {
		t.Fatalf("live settings not applied: %+v", mkt)
	}

	s.ApplyLive(config.LiveSettings{SettleType: "auction", InteractionRate: 0.9, RiskFreeRate: 0.03})
	if _, err := s.Step(ctx); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if s.Context().InteractionRate != 0.5 {
		t.Fatalf("invalid live settings should be ignored")
	}
}

func TestSeedReturnsPrefillHistory(t *testing.T) {
	seed := []float64{1.01, 0.99, 1.0}
	s := quietSession(t, smallConfig(t), WithSeedReturns(seed))
	if s.History().Len() != len(seed) {
		t.Fatalf("history len = %d, want %d", s.History().Len(), len(seed))
	}
}

func TestNewTradingSessionRejectsInvalidConfig(t *testing.T) {
	cfg := smallConfig(t)
	cfg.DividendVol = 0
	if _, err := NewTradingSession(cfg); err == nil {
		t.Fatalf("expected zero dividend volatility to be rejected")
	}
}

func TestStepHonoursCancellation(t *testing.T) {
	s := quietSession(t, smallConfig(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Step(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestDefaultRunClearsInsideMoveLimit(t *testing.T) {
	if testing.Short() {
		t.Skip("long run")
	}
	cfg := *config.DefaultConfigWithRoot(t.TempDir())
	cfg.Steps = 500
	s := quietSession(t, cfg)

	sum, err := s.Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute at step %d: %v", s.CurrentStep(), err)
	}
	if s.CurrentStep() != cfg.Steps {
		t.Fatalf("CurrentStep = %d after a full run, want %d", s.CurrentStep(), cfg.Steps)
	}

	prev := cfg.InitialPrice
	atLimit := 0
	for _, rec := range s.Records() {
		if rec.Price <= 0 || math.IsNaN(rec.Price) {
			t.Fatalf("step %d price %g is not a positive number", rec.Step, rec.Price)
		}
		if math.Abs(rec.Price/prev-1) >= cfg.MaxPriceMove-0.001 {
			atLimit++
		}
		prev = rec.Price
	}
	if sum.CappedSteps*2 >= cfg.Steps {
		t.Fatalf("move limit bound on %d of %d steps", sum.CappedSteps, cfg.Steps)
	}
	if atLimit*2 >= cfg.Steps {
		t.Fatalf("%d of %d steps moved by the full limit", atLimit, cfg.Steps)
	}
}

func TestCurrentStepAdvancesPerStep(t *testing.T) {
	s := quietSession(t, smallConfig(t))
	for i := 0; i < 3; i++ {
		if s.CurrentStep() != i {
			t.Fatalf("CurrentStep = %d, want %d", s.CurrentStep(), i)
		}
		if _, err := s.Step(context.Background()); err != nil {
			t.Fatalf("Step %d: %v", i, err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Step(ctx); err == nil {
		t.Fatalf("expected cancelled step to fail")
	}
	if s.CurrentStep() != 3 {
		t.Fatalf("cancelled step advanced CurrentStep to %d", s.CurrentStep())
	}
}
