package market

import (
	"math"
	"math/rand"
)

// Stock is the single traded asset and its dividend process.
type Stock struct {
	Price          float64
	Dividend       float64
	DividendGrowth float64
	DividendVol    float64
	DividendFreq   float64

	elapsed  float64
	nextPaid float64
}

func NewStock(price, dividend, growth, vol, freq float64) *Stock {
	s := &Stock{
		Price:          price,
		Dividend:       dividend,
		DividendGrowth: growth,
		DividendVol:    vol,
		DividendFreq:   freq,
	}
	s.nextPaid = s.period()
	return s
}

func (s *Stock) period() float64 {
	if s.DividendFreq <= 0 {
		return math.Inf(1)
	}
	return 1 / s.DividendFreq
}

// Advance moves the clock by dt and draws a new dividend each time a
// payment date is crossed. It reports whether a dividend was paid.
func (s *Stock) Advance(dt float64, rng *rand.Rand) bool {
	s.elapsed += dt
	paid := false
	for s.elapsed+1e-12 >= s.nextPaid {
		s.Dividend = s.nextDividend(rng)
		s.nextPaid += s.period()
		paid = true
	}
	return paid
}

// nextDividend steps the log-normal dividend process over one payment period.
func (s *Stock) nextDividend(rng *rand.Rand) float64 {
	tau := s.period()
	drift := (s.DividendGrowth - 0.5*s.DividendVol*s.DividendVol) * tau
	shock := s.DividendVol * math.Sqrt(tau) * rng.NormFloat64()
	return s.Dividend * math.Exp(drift+shock)
}
