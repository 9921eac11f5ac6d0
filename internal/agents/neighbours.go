package agents

import (
	"fmt"

	"github.com/grd/stat"
)

// Topology resolves an agent's neighbours on the social network.
type Topology interface {
	Neighbors(id int) []int
}

// BeliefSource gives read-only access to other agents' beliefs. The
// boolean is false when the agent has no belief yet.
type BeliefSource interface {
	Belief(id int) (float64, bool)
}

// Snapshot is a frozen copy of the beliefs held at the end of the previous
// step. Agents without a belief are simply absent.
type Snapshot map[int]float64

func (s Snapshot) Belief(id int) (float64, bool) {
	v, ok := s[id]
	return v, ok
}

// TakeSnapshot records the current belief of every agent that has one.
func TakeSnapshot(agents []*Agent) Snapshot {
	s := make(Snapshot, len(agents))
	for _, a := range agents {
		if a.Strategy == nil {
			continue
		}
		if v, ok := a.Strategy.ExpPD(); ok {
			s[a.ID] = v
		}
	}
	return s
}

// CollectNeighbourExp gathers the defined beliefs of the agent's
// neighbours. The neighbour list is resolved from the topology once, at
// step 0, and reused afterwards.
func (b *base) CollectNeighbourExp(step int, topo Topology, beliefs BeliefSource) {
	if step == 0 || !b.agent.NeighborsResolved() {
		if topo != nil {
			b.agent.setNeighbors(topo.Neighbors(b.agent.ID))
		}
	}
	b.neighExps = b.neighExps[:0]
	for _, id := range b.agent.Neighbors() {
		if v, ok := beliefs.Belief(id); ok {
			b.neighExps = append(b.neighExps, v)
		}
	}
}

func (b *base) NeighbourExps() []float64 {
	return b.neighExps
}

// IncorpNeighbourExp blends the own belief with the neighbours' mean
// using the interaction rate as weight.
func (b *base) IncorpNeighbourExp() (float64, error) {
	if !b.hasBelief {
		return 0, fmt.Errorf("incorporate for agent %d: %w", b.agent.ID, ErrUndefinedBelief)
	}
	if len(b.neighExps) == 0 {
		return 0, fmt.Errorf("incorporate for agent %d: %w", b.agent.ID, ErrEmptyNeighborSet)
	}
	mean := stat.Mean(stat.Float64Slice(b.neighExps))
	alpha := b.interactRate
	b.expPD = (1-alpha)*b.expPD + alpha*mean
	return b.expPD, nil
}
