package agents

import "github.com/shopspring/decimal"

// Agent is a market participant. Wealth is mutated only by the scheduler
// during settlement; strategies read it.
type Agent struct {
	ID       int
	Cash     decimal.Decimal
	Shares   float64
	Strategy Strategy

	wealth    float64
	halted    bool
	neighbors []int
	resolved  bool
}

func NewAgent(id int, cash decimal.Decimal, shares, price float64) *Agent {
	a := &Agent{ID: id, Cash: cash, Shares: shares}
	a.MarkToMarket(price)
	return a
}

func (a *Agent) Wealth() float64 { return a.wealth }

// SetWealth overrides the marked-to-market wealth.
func (a *Agent) SetWealth(w float64) { a.wealth = w }

// MarkToMarket recomputes wealth as cash plus holdings valued at price.
func (a *Agent) MarkToMarket(price float64) {
	cash, _ := a.Cash.Float64()
	a.wealth = cash + a.Shares*price
}

func (a *Agent) Halted() bool            { return a.halted }
func (a *Agent) SetHalted(h bool)        { a.halted = h }
func (a *Agent) Neighbors() []int        { return a.neighbors }
func (a *Agent) NeighborsResolved() bool { return a.resolved }

func (a *Agent) setNeighbors(ids []int) {
	a.neighbors = append([]int(nil), ids...)
	a.resolved = true
}
