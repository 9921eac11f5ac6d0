package network

import (
	"math/rand"
	"sort"
	"testing"
)

func TestSmallWorldLattice(t *testing.T) {
	nw, err := SmallWorld(10, 4, 0, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("SmallWorld: %v", err)
	}
	if nw.Size() != 10 {
		t.Fatalf("Size = %d, want 10", nw.Size())
	}
	for i := 0; i < 10; i++ {
		if nw.Degree(i) != 4 {
			t.Errorf("node %d degree = %d, want 4", i, nw.Degree(i))
		}
	}
	want := []int{1, 2, 8, 9}
	got := nw.Neighbors(0)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Neighbors(0) = %v, want %v", got, want)
		}
	}
}

func TestSmallWorldRewiredIsSymmetric(t *testing.T) {
	nw, err := SmallWorld(50, 6, 0.3, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("SmallWorld: %v", err)
	}
	edges := 0
	for i := 0; i < 50; i++ {
		ns := nw.Neighbors(i)
		if !sort.IntsAreSorted(ns) {
			t.Fatalf("Neighbors(%d) not sorted: %v", i, ns)
		}
		for _, j := range ns {
			if j == i {
				t.Fatalf("self loop at %d", i)
			}
			back := nw.Neighbors(j)
			if idx := sort.SearchInts(back, i); idx == len(back) || back[idx] != i {
				t.Fatalf("edge %d-%d is not symmetric", i, j)
			}
		}
		edges += len(ns)
	}
	// rewiring moves edges, it never adds or removes them
	if edges/2 != 50*3 {
		t.Fatalf("edge count = %d, want %d", edges/2, 150)
	}
}

func TestSmallWorldRejectsBadParams(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	cases := []struct {
		n, k int
		beta float64
	}{
		{0, 2, 0.1},
		{10, 3, 0.1},
		{10, 10, 0.1},
		{10, 2, 1.5},
	}
	for _, c := range cases {
		if _, err := SmallWorld(c.n, c.k, c.beta, rng); err == nil {
			t.Errorf("SmallWorld(%d, %d, %g) accepted bad params", c.n, c.k, c.beta)
		}
	}
}

func TestConnectIgnoresSelfLoops(t *testing.T) {
	nw := Empty(3)
	nw.Connect(1, 1)
	nw.Connect(0, 2)
	if nw.Degree(1) != 0 || nw.Degree(0) != 1 || nw.Degree(2) != 1 {
		t.Fatalf("unexpected degrees after Connect")
	}
}
