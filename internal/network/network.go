// Package network builds the social graph over which agents exchange beliefs.
package network

import (
	"fmt"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
)

// Network is an undirected social graph keyed by agent id.
type Network struct {
	g *simple.UndirectedGraph
}

// Empty returns a graph of n isolated agents.
func Empty(n int) *Network {
	g := simple.NewUndirectedGraph()
	for i := 0; i < n; i++ {
		g.AddNode(simple.Node(i))
	}
	return &Network{g: g}
}

// SmallWorld builds a Watts-Strogatz graph: a ring lattice where each
// agent links to its k nearest neighbours, after which every lattice edge
// is rewired with probability beta.
func SmallWorld(n, k int, beta float64, rng *rand.Rand) (*Network, error) {
	switch {
	case n <= 0:
		return nil, fmt.Errorf("network size must be positive, got %d", n)
	case k < 0 || k%2 != 0:
		return nil, fmt.Errorf("network degree must be even and non-negative, got %d", k)
	case k >= n:
		return nil, fmt.Errorf("network degree %d must be below size %d", k, n)
	case beta < 0 || beta > 1:
		return nil, fmt.Errorf("rewiring probability %g outside [0,1]", beta)
	}

	nw := Empty(n)
	for i := 0; i < n; i++ {
		for j := 1; j <= k/2; j++ {
			nw.Connect(i, (i+j)%n)
		}
	}
	for j := 1; j <= k/2; j++ {
		for i := 0; i < n; i++ {
			t := (i + j) % n
			if rng.Float64() >= beta || !nw.g.HasEdgeBetween(int64(i), int64(t)) {
				continue
			}
			if nw.Degree(i) >= n-1 {
				continue
			}
			c := rng.Intn(n)
			for c == i || nw.g.HasEdgeBetween(int64(i), int64(c)) {
				c = rng.Intn(n)
			}
			nw.g.RemoveEdge(int64(i), int64(t))
			nw.Connect(i, c)
		}
	}
	return nw, nil
}

func (nw *Network) Connect(a, b int) {
	if a == b {
		return
	}
	nw.g.SetEdge(simple.Edge{F: simple.Node(a), T: simple.Node(b)})
}

func (nw *Network) Size() int {
	return nw.g.Nodes().Len()
}

func (nw *Network) Degree(id int) int {
	return nw.g.From(int64(id)).Len()
}

// Neighbors returns the ids adjacent to id in ascending order.
func (nw *Network) Neighbors(id int) []int {
	nodes := graph.NodesOf(nw.g.From(int64(id)))
	ids := make([]int, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, int(n.ID()))
	}
	sort.Ints(ids)
	return ids
}
