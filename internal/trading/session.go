package trading

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/grd/stat"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/dyike/CortexSim/config"
	"github.com/dyike/CortexSim/internal/agents"
	"github.com/dyike/CortexSim/internal/market"
	"github.com/dyike/CortexSim/internal/network"
	"github.com/dyike/CortexSim/internal/predictor"
)

// StepRecord is what one step of the session produced.
type StepRecord struct {
	Step       int
	Price      float64
	Dividend   float64
	Return     float64
	Volume     float64
	Orders     int
	Rejected   int
	Skipped    int
	Capped     bool
	MeanBelief float64
}

type Option func(*TradingSession)

func WithLogger(l zerolog.Logger) Option {
	return func(s *TradingSession) { s.log = l }
}

// WithSeedReturns prefills the return history, e.g. with market data.
func WithSeedReturns(returns []float64) Option {
	return func(s *TradingSession) { s.seed = append([]float64(nil), returns...) }
}

// WithTopology replaces the generated small-world network.
func WithTopology(t agents.Topology) Option {
	return func(s *TradingSession) { s.topo = t }
}

// TradingSession is the scheduler: it owns the agents, the stock and the
// network and advances the market one step at a time.
type TradingSession struct {
	cfg      config.Config
	log      zerolog.Logger
	rng      *rand.Rand
	stock    *market.Stock
	history  *market.ReturnHistory
	agents   []*agents.Agent
	topo     agents.Topology
	clearing *market.Clearing
	seed     []float64

	step    int
	records []StepRecord

	mu      sync.Mutex
	live    config.LiveSettings
	pending *config.LiveSettings
}

// NewTradingSession validates cfg and builds every agent up front. Any
// construction error aborts the session.
func NewTradingSession(cfg config.Config, opts ...Option) (*TradingSession, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	s := &TradingSession{
		cfg:  cfg,
		log:  log.Logger,
		rng:  rand.New(rand.NewSource(cfg.Seed)),
		live: cfg.Live(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.stock = market.NewStock(cfg.InitialPrice, cfg.InitialDividend, cfg.DividendGrowth, cfg.DividendVol, cfg.DividendFreq)
	s.history = market.NewReturnHistory(s.seed...)

	n := cfg.NumAgents()
	if s.topo == nil {
		nw, err := network.SmallWorld(n, cfg.NetworkDegree, cfg.RewireProb, rand.New(rand.NewSource(s.rng.Int63())))
		if err != nil {
			return nil, fmt.Errorf("build network: %w", err)
		}
		s.topo = nw
	}

	if err := s.initializeAgents(); err != nil {
		return nil, err
	}

	s.clearing = &market.Clearing{
		MaxMove: cfg.MaxPriceMove,
		Tick:    decimal.NewFromFloat(cfg.PriceTick),
	}
	return s, nil
}

func (s *TradingSession) initializeAgents() error {
	cfg := s.cfg
	mkt := s.Context()
	lp := agents.LearnedParams{
		Lookback:   cfg.Learned.Lookback,
		HistCutoff: cfg.Learned.HistCutoff,
		TrainFreq:  cfg.Learned.TrainFreq,
		Predictor: predictor.Config{
			Inputs:       cfg.Learned.Lookback,
			HiddenLayers: cfg.Learned.HiddenLayers,
			Width:        cfg.Learned.Width,
			LearningRate: cfg.Learned.LearningRate,
			Rho:          0.9,
			Epsilon:      1e-7,
			Epochs:       cfg.Learned.Epochs,
			BatchSize:    cfg.Learned.BatchSize,
		},
	}
	cash := decimal.NewFromFloat(cfg.InitialCash)

	id := 0
	for _, g := range cfg.Groups {
		params := agents.Params{
			RiskAversion: g.RiskAversion,
			LossAversion: g.LossAversion,
			Behaviour:    g.Behaviour,
		}
		for i := 0; i < g.Count; i++ {
			a := agents.NewAgent(id, cash, cfg.InitialShares, cfg.InitialPrice)
			rng := rand.New(rand.NewSource(s.rng.Int63()))
			if _, err := agents.New(g.Strategy, a, params, lp, mkt, rng, agents.WithTolerance(cfg.Tolerance)); err != nil {
				return fmt.Errorf("agent %d (%s): %w", id, g.Strategy, err)
			}
			s.agents = append(s.agents, a)
			id++
		}
	}
	return nil
}

func (s *TradingSession) Agents() []*agents.Agent        { return s.agents }
func (s *TradingSession) History() *market.ReturnHistory { return s.history }
func (s *TradingSession) Records() []StepRecord          { return s.records }
func (s *TradingSession) CurrentStep() int               { return s.step }
func (s *TradingSession) Stock() *market.Stock           { return s.stock }

// ApplyLive queues new live settings. They take effect at the start of
// the next step so that no step sees a mix of old and new parameters.
func (s *TradingSession) ApplyLive(live config.LiveSettings) {
	s.mu.Lock()
	s.pending = &live
	s.mu.Unlock()
}

func (s *TradingSession) applyPending() {
	s.mu.Lock()
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()
	if pending == nil {
		return
	}
	if err := pending.Validate(); err != nil {
		s.log.Warn().Err(err).Msg("ignoring invalid live update")
		return
	}
	s.live = *pending
	for _, a := range s.agents {
		a.Strategy.SetInteractionRate(pending.InteractionRate)
	}
	s.log.Info().
		Int("step", s.step).
		Str("settle_type", s.live.SettleType).
		Float64("interaction_rate", s.live.InteractionRate).
		Float64("risk_free_rate", s.live.RiskFreeRate).
		Msg("live settings applied")
}

// Context is the market view for the current step.
func (s *TradingSession) Context() *market.Context {
	return &market.Context{
		Price:            s.stock.Price,
		Dividend:         s.stock.Dividend,
		DividendVol:      s.stock.DividendVol,
		DividendGrowth:   s.stock.DividendGrowth,
		DividendFreq:     s.stock.DividendFreq,
		RiskFreeRate:     s.live.RiskFreeRate,
		Dt:               s.cfg.Dt,
		Step:             s.step,
		Settle:           market.SettleType(s.live.SettleType),
		InteractionRate:  s.live.InteractionRate,
		ConfidenceLevels: s.cfg.ConfidenceLevels,
		Returns:          s.history,
	}
}

// Step runs collect, belief update, incorporation, demand and clearing
// for every agent, then settles and advances the stock.
func (s *TradingSession) Step(ctx context.Context) (StepRecord, error) {
	if err := ctx.Err(); err != nil {
		return StepRecord{}, err
	}
	s.applyPending()

	mkt := s.Context()
	snap := agents.TakeSnapshot(s.agents)

	for _, a := range s.agents {
		a.Strategy.CollectNeighbourExp(mkt.Step, s.topo, snap)
	}

	for _, a := range s.agents {
		wasHalted := a.Halted()
		if _, _, err := a.Strategy.CalcExpPD(mkt); err != nil {
			return StepRecord{}, fmt.Errorf("step %d agent %d belief: %w", mkt.Step, a.ID, err)
		}
		if wasHalted && !a.Halted() {
			s.log.Info().Int("step", mkt.Step).Int("agent", a.ID).Str("strategy", a.Strategy.Name()).Msg("agent resumed trading")
		}
	}

	beliefs := make([]float64, 0, len(s.agents))
	for _, a := range s.agents {
		if _, ok := a.Strategy.ExpPD(); !ok || len(a.Strategy.NeighbourExps()) == 0 {
			continue
		}
		if _, err := a.Strategy.IncorpNeighbourExp(); err != nil {
			return StepRecord{}, fmt.Errorf("step %d agent %d incorporate: %w", mkt.Step, a.ID, err)
		}
	}

	rec := StepRecord{Step: mkt.Step}
	orders := make([]market.Order, 0, len(s.agents))
	for _, a := range s.agents {
		if v, ok := a.Strategy.ExpPD(); ok {
			beliefs = append(beliefs, v)
		}
		if a.Halted() {
			continue
		}
		order, err := s.buildOrder(a, mkt)
		if errors.Is(err, agents.ErrUndefinedBelief) {
			rec.Skipped++
			s.log.Warn().Err(err).Int("step", mkt.Step).Int("agent", a.ID).Msg("skipping agent without belief")
			continue
		}
		if err != nil {
			return StepRecord{}, fmt.Errorf("step %d agent %d order: %w", mkt.Step, a.ID, err)
		}
		orders = append(orders, order)
	}

	res := s.clearing.Clear(mkt.Price, orders)
	s.settle(res)

	prev := s.stock.Price
	s.stock.Price, _ = res.Price.Float64()
	s.accrue(mkt)

	ret := (s.stock.Price + s.stock.Dividend) / prev
	s.history.Append(ret)
	for _, a := range s.agents {
		a.MarkToMarket(s.stock.Price)
	}

	rec.Price = s.stock.Price
	rec.Dividend = s.stock.Dividend
	rec.Return = ret
	rec.Volume = res.Volume
	rec.Orders = len(orders)
	rec.Rejected = res.Rejected
	rec.Capped = res.Capped
	if len(beliefs) > 0 {
		rec.MeanBelief = stat.Mean(stat.Float64Slice(beliefs))
	}
	s.records = append(s.records, rec)
	s.step++
	return rec, nil
}

func (s *TradingSession) buildOrder(a *agents.Agent, mkt *market.Context) (market.Order, error) {
	demand, err := a.Strategy.CalcShareDemand(mkt)
	if err != nil {
		return market.Order{}, err
	}
	slope, err := a.Strategy.DemandSlope(mkt)
	if err != nil {
		return market.Order{}, err
	}
	limit, hasLimit, err := a.Strategy.CalcLimit(mkt)
	if err != nil {
		return market.Order{}, err
	}
	// demand is the holding wanted at the current price; the clearing
	// solves along the schedule through that point.
	return market.NewOrder(a.ID, a.Shares, demand+slope*mkt.Price, slope, limit, hasLimit, s.clearing.Tick), nil
}

func (s *TradingSession) settle(res market.ClearingResult) {
	for _, f := range res.Fills {
		a := s.agents[f.AgentID]
		qty := decimal.NewFromFloat(f.Quantity)
		a.Shares += f.Quantity
		a.Cash = a.Cash.Sub(qty.Mul(f.Price))
	}
}

// accrue pays interest on cash for dt and, when the stock crosses a
// payment date, the new dividend on every holding.
func (s *TradingSession) accrue(mkt *market.Context) {
	growth := decimal.NewFromFloat(math.Pow(1+mkt.RiskFreeRate, mkt.Dt))
	paid := s.stock.Advance(mkt.Dt, s.rng)
	div := decimal.NewFromFloat(s.stock.Dividend)
	for _, a := range s.agents {
		a.Cash = a.Cash.Mul(growth)
		if paid {
			a.Cash = a.Cash.Add(div.Mul(decimal.NewFromFloat(a.Shares)))
		}
	}
}

// Execute runs the configured number of steps and returns the run summary.
func (s *TradingSession) Execute(ctx context.Context) (*Summary, error) {
	s.log.Info().
		Int("agents", len(s.agents)).
		Int("steps", s.cfg.Steps).
		Int64("seed", s.cfg.Seed).
		Str("settle_type", s.live.SettleType).
		Msg("session started")

	for s.step < s.cfg.Steps {
		rec, err := s.Step(ctx)
		if err != nil {
			return nil, err
		}
		s.log.Debug().
			Int("step", rec.Step).
			Float64("price", rec.Price).
			Float64("volume", rec.Volume).
			Int("orders", rec.Orders).
			Msg("step cleared")
	}

	sum := s.Summary()
	s.log.Info().Float64("final_price", sum.FinalPrice).Float64("volume", sum.Volume).Msg("session finished")
	return sum, nil
}
