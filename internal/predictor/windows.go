package predictor

import "fmt"

// SlidingWindows turns a return series into supervised samples. Each input
// is a contiguous run of lookback returns. Every target is the return that
// follows the first window, returns[lookback], for all samples of the call.
func SlidingWindows(returns []float64, lookback int) ([][]float64, []float64, error) {
	if lookback <= 0 {
		return nil, nil, fmt.Errorf("%w: lookback must be positive, got %d", ErrInputSize, lookback)
	}
	if len(returns) <= lookback {
		return nil, nil, fmt.Errorf("%w: have %d returns, need more than %d", ErrInsufficientHistory, len(returns), lookback)
	}
	n := len(returns) - lookback
	inputs := make([][]float64, 0, n)
	targets := make([]float64, 0, n)
	target := returns[lookback]
	for i := 0; i < n; i++ {
		inputs = append(inputs, append([]float64(nil), returns[i:i+lookback]...))
		targets = append(targets, target)
	}
	return inputs, targets, nil
}
