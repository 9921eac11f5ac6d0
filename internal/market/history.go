package market

import "sync"

// ReturnHistory is an append-only, time-ordered series of gross returns.
type ReturnHistory struct {
	mu      sync.RWMutex
	returns []float64
}

func NewReturnHistory(seed ...float64) *ReturnHistory {
	h := &ReturnHistory{returns: make([]float64, 0, len(seed))}
	h.returns = append(h.returns, seed...)
	return h
}

func (h *ReturnHistory) Append(r float64) {
	h.mu.Lock()
	h.returns = append(h.returns, r)
	h.mu.Unlock()
}

func (h *ReturnHistory) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.returns)
}

// Last returns a copy of the most recent n returns, or all of them when fewer exist.
func (h *ReturnHistory) Last(n int) []float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if n < 0 {
		n = 0
	}
	if n > len(h.returns) {
		n = len(h.returns)
	}
	out := make([]float64, n)
	copy(out, h.returns[len(h.returns)-n:])
	return out
}

// All returns a copy of the full history.
func (h *ReturnHistory) All() []float64 {
	return h.Last(h.Len())
}
