// Package predictor implements the small feed-forward regressor used by
// the learned trading strategy.
package predictor

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrInputSize           = errors.New("input size mismatch")
	ErrInsufficientHistory = errors.New("not enough history to build a training window")
)

type Config struct {
	Inputs       int
	HiddenLayers int
	Width        int
	LearningRate float64
	// Rho is the RMSprop decay of the squared-gradient average.
	Rho       float64
	Epsilon   float64
	Epochs    int
	BatchSize int
}

func DefaultConfig() Config {
	return Config{
		Inputs:       10,
		HiddenLayers: 3,
		Width:        5,
		LearningRate: 0.001,
		Rho:          0.9,
		Epsilon:      1e-7,
		Epochs:       1,
		BatchSize:    32,
	}
}

func (c Config) Validate() error {
	switch {
	case c.Inputs <= 0:
		return fmt.Errorf("predictor inputs must be positive, got %d", c.Inputs)
	case c.HiddenLayers < 0:
		return fmt.Errorf("predictor hidden layers must not be negative, got %d", c.HiddenLayers)
	case c.Width <= 0:
		return fmt.Errorf("predictor width must be positive, got %d", c.Width)
	case c.LearningRate <= 0:
		return fmt.Errorf("predictor learning rate must be positive, got %g", c.LearningRate)
	case c.Rho < 0 || c.Rho >= 1:
		return fmt.Errorf("predictor rho must be in [0,1), got %g", c.Rho)
	case c.Epochs <= 0:
		return fmt.Errorf("predictor epochs must be positive, got %d", c.Epochs)
	case c.BatchSize <= 0:
		return fmt.Errorf("predictor batch size must be positive, got %d", c.BatchSize)
	}
	return nil
}

// Network is a dense ReLU regressor with a linear scalar output, fitted
// with RMSprop on mean squared error. Fit and Predict may be called from
// different goroutines; a prediction never observes a half-applied update.
type Network struct {
	mu     sync.RWMutex
	cfg    Config
	layers []*dense
	rng    *rand.Rand
	fitted int
}

func New(cfg Config, rng *rand.Rand) (*Network, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Epsilon <= 0 {
		cfg.Epsilon = 1e-7
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	n := &Network{cfg: cfg, rng: rng}
	in := cfg.Inputs
	for i := 0; i < cfg.HiddenLayers; i++ {
		n.layers = append(n.layers, newDense(in, cfg.Width, true, rng))
		in = cfg.Width
	}
	n.layers = append(n.layers, newDense(in, 1, false, rng))
	return n, nil
}

// Fits reports how many times Fit has completed.
func (n *Network) Fits() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.fitted
}

// Predict returns the regressor output for a single input window.
func (n *Network) Predict(x []float64) (float64, error) {
	if len(x) != n.cfg.Inputs {
		return 0, fmt.Errorf("%w: want %d values, got %d", ErrInputSize, n.cfg.Inputs, len(x))
	}
	n.mu.RLock()
	defer n.mu.RUnlock()
	in := mat.NewDense(1, len(x), append([]float64(nil), x...))
	out := n.forward(in, false)
	return out.At(0, 0), nil
}

// Fit trains on the given samples for the configured number of epochs
// and returns the mean squared error of the last epoch.
func (n *Network) Fit(inputs [][]float64, targets []float64) (float64, error) {
	if len(inputs) == 0 {
		return 0, ErrInsufficientHistory
	}
	if len(inputs) != len(targets) {
		return 0, fmt.Errorf("%w: %d inputs for %d targets", ErrInputSize, len(inputs), len(targets))
	}
	for i, x := range inputs {
		if len(x) != n.cfg.Inputs {
			return 0, fmt.Errorf("%w: sample %d has %d values, want %d", ErrInputSize, i, len(x), n.cfg.Inputs)
		}
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	var loss float64
	for epoch := 0; epoch < n.cfg.Epochs; epoch++ {
		order := n.rng.Perm(len(inputs))
		var sum float64
		for start := 0; start < len(order); start += n.cfg.BatchSize {
			end := start + n.cfg.BatchSize
			if end > len(order) {
				end = len(order)
			}
			sum += n.step(inputs, targets, order[start:end])
		}
		loss = sum / float64(len(inputs))
	}
	n.fitted++
	return loss, nil
}

// step runs one RMSprop update on a mini-batch and returns the summed
// squared error of the batch before the update.
func (n *Network) step(inputs [][]float64, targets []float64, idx []int) float64 {
	rows := len(idx)
	x := mat.NewDense(rows, n.cfg.Inputs, nil)
	for r, i := range idx {
		x.SetRow(r, inputs[i])
	}
	out := n.forward(x, true)

	grad := mat.NewDense(rows, 1, nil)
	var sse float64
	for r, i := range idx {
		diff := out.At(r, 0) - targets[i]
		sse += diff * diff
		grad.Set(r, 0, 2*diff/float64(rows))
	}

	var g mat.Matrix = grad
	for l := len(n.layers) - 1; l >= 0; l-- {
		g = n.layers[l].backward(g)
	}
	for _, l := range n.layers {
		l.rmsprop(n.cfg.LearningRate, n.cfg.Rho, n.cfg.Epsilon)
	}
	return sse
}

func (n *Network) forward(x mat.Matrix, keep bool) *mat.Dense {
	var a mat.Matrix = x
	var out *mat.Dense
	for _, l := range n.layers {
		out = l.forward(a, keep)
		a = out
	}
	return out
}

type dense struct {
	w, gw, sw *mat.Dense
	b, gb, sb []float64
	relu      bool

	in mat.Matrix
	z  *mat.Dense
}

// newDense uses Glorot-uniform weights and zero biases.
func newDense(in, out int, relu bool, rng *rand.Rand) *dense {
	limit := math.Sqrt(6 / float64(in+out))
	w := mat.NewDense(in, out, nil)
	for i := 0; i < in; i++ {
		for j := 0; j < out; j++ {
			w.Set(i, j, (2*rng.Float64()-1)*limit)
		}
	}
	return &dense{
		w:    w,
		gw:   mat.NewDense(in, out, nil),
		sw:   mat.NewDense(in, out, nil),
		b:    make([]float64, out),
		gb:   make([]float64, out),
		sb:   make([]float64, out),
		relu: relu,
	}
}

func (d *dense) forward(x mat.Matrix, keep bool) *mat.Dense {
	var z mat.Dense
	z.Mul(x, d.w)
	rows, cols := z.Dims()
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			z.Set(r, c, z.At(r, c)+d.b[c])
		}
	}
	if keep {
		d.in = x
		d.z = mat.DenseCopyOf(&z)
	}
	if d.relu {
		z.Apply(func(_, _ int, v float64) float64 { return math.Max(0, v) }, &z)
	}
	return &z
}

// backward stores parameter gradients and returns the gradient with
// respect to the layer input.
func (d *dense) backward(gradOut mat.Matrix) mat.Matrix {
	rows, cols := gradOut.Dims()
	dz := mat.DenseCopyOf(gradOut)
	if d.relu {
		dz.Apply(func(i, j int, v float64) float64 {
			if d.z.At(i, j) > 0 {
				return v
			}
			return 0
		}, dz)
	}

	d.gw.Mul(d.in.T(), dz)
	for c := 0; c < cols; c++ {
		var s float64
		for r := 0; r < rows; r++ {
			s += dz.At(r, c)
		}
		d.gb[c] = s
	}

	var gradIn mat.Dense
	gradIn.Mul(dz, d.w.T())
	return &gradIn
}

func (d *dense) rmsprop(lr, rho, eps float64) {
	rows, cols := d.w.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			g := d.gw.At(i, j)
			s := rho*d.sw.At(i, j) + (1-rho)*g*g
			d.sw.Set(i, j, s)
			d.w.Set(i, j, d.w.At(i, j)-lr*g/(math.Sqrt(s)+eps))
		}
	}
	for j := range d.b {
		g := d.gb[j]
		d.sb[j] = rho*d.sb[j] + (1-rho)*g*g
		d.b[j] -= lr * g / (math.Sqrt(d.sb[j]) + eps)
	}
}
