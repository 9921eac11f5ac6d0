package predictor

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

func TestSlidingWindowsFixedTarget(t *testing.T) {
	returns := []float64{1, 2, 3, 4, 5, 6}
	inputs, targets, err := SlidingWindows(returns, 3)
	if err != nil {
		t.Fatalf("SlidingWindows: %v", err)
	}
	if len(inputs) != 3 || len(targets) != 3 {
		t.Fatalf("got %d inputs and %d targets, want 3", len(inputs), len(targets))
	}
	for i, x := range inputs {
		if x[0] != returns[i] || len(x) != 3 {
			t.Errorf("window %d = %v", i, x)
		}
		if targets[i] != 4 {
			t.Errorf("target %d = %g, want returns[lookback] = 4", i, targets[i])
		}
	}

	inputs[0][0] = 99
	if returns[0] != 1 {
		t.Fatalf("windows must not alias the input series")
	}
}

func TestSlidingWindowsErrors(t *testing.T) {
	if _, _, err := SlidingWindows([]float64{1, 2, 3}, 3); !errors.Is(err, ErrInsufficientHistory) {
		t.Fatalf("expected ErrInsufficientHistory, got %v", err)
	}
	if _, _, err := SlidingWindows([]float64{1, 2, 3}, 0); !errors.Is(err, ErrInputSize) {
		t.Fatalf("expected ErrInputSize, got %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	bad := DefaultConfig()
	bad.Width = 0
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected zero width to be rejected")
	}
	if _, err := New(bad, nil); err == nil {
		t.Fatalf("New accepted an invalid config")
	}
}

func TestPredictInputSize(t *testing.T) {
	n, err := New(DefaultConfig(), rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := n.Predict(make([]float64, 9)); !errors.Is(err, ErrInputSize) {
		t.Fatalf("expected ErrInputSize, got %v", err)
	}
	if _, err := n.Fit([][]float64{make([]float64, 4)}, []float64{1}); !errors.Is(err, ErrInputSize) {
		t.Fatalf("expected ErrInputSize from Fit, got %v", err)
	}
	if _, err := n.Fit(nil, nil); !errors.Is(err, ErrInsufficientHistory) {
		t.Fatalf("expected ErrInsufficientHistory from empty Fit, got %v", err)
	}
}

func TestFitReducesLoss(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Inputs = 2
	cfg.LearningRate = 0.01
	n, err := New(cfg, rand.New(rand.NewSource(3)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	rng := rand.New(rand.NewSource(4))
	inputs := make([][]float64, 256)
	targets := make([]float64, 256)
	for i := range inputs {
		inputs[i] = []float64{rng.Float64(), rng.Float64()}
		targets[i] = 1
	}

	first, err := n.Fit(inputs, targets)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	var last float64
	for i := 0; i < 200; i++ {
		if last, err = n.Fit(inputs, targets); err != nil {
			t.Fatalf("Fit: %v", err)
		}
	}
	if !(last < first) {
		t.Fatalf("loss did not decrease: first=%g last=%g", first, last)
	}
	if n.Fits() != 201 {
		t.Fatalf("Fits = %d, want 201", n.Fits())
	}

	got, err := n.Predict([]float64{0.5, 0.5})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if math.IsNaN(got) {
		t.Fatalf("prediction is NaN")
	}
}
