package market

import (
	"math"

	"github.com/shopspring/decimal"
)

// Fill is the executed part of an order.
type Fill struct {
	AgentID  int
	Quantity float64
	Price    decimal.Decimal
}

type ClearingResult struct {
	Price    decimal.Decimal
	Volume   float64
	Fills    []Fill
	Rejected int
	// Capped is set when the market-clearing price lay outside the
	// allowed band and the band edge was used instead.
	Capped bool
}

// Clearing is a uniform-price call auction over linear demand schedules.
// The clearing price is the one at which the participants' total desired
// holding equals what they hold now. Orders whose limit excludes that
// price are dropped and the price is solved again for the rest.
type Clearing struct {
	Tick decimal.Decimal
	// MaxMove caps the relative price change of one auction. Zero disables the cap.
	MaxMove float64
}

func (c *Clearing) Clear(price float64, orders []Order) ClearingResult {
	book := make([]Order, 0, len(orders))
	for _, o := range orders {
		if o.Slope > 0 {
			book = append(book, o)
		}
	}

	var res ClearingResult
	for {
		p, capped := c.solve(price, book)
		res.Price = c.round(p, price)
		res.Capped = capped

		kept := make([]Order, 0, len(book))
		for _, o := range book {
			if o.Accepts(res.Price) {
				kept = append(kept, o)
			} else {
				res.Rejected++
			}
		}
		if len(kept) == len(book) {
			break
		}
		book = kept
	}

	pf, _ := res.Price.Float64()
	var buys, sells float64
	for _, o := range book {
		q := o.QuantityAt(pf)
		if q > 0 {
			buys += q
		} else {
			sells -= q
		}
	}
	matched := math.Min(buys, sells)
	if matched <= 0 {
		return res
	}
	buyRatio := matched / buys
	sellRatio := matched / sells

	for _, o := range book {
		q := o.QuantityAt(pf)
		if q == 0 {
			continue
		}
		ratio := sellRatio
		if o.IsBuyAt(pf) {
			ratio = buyRatio
		}
		res.Fills = append(res.Fills, Fill{
			AgentID:  o.AgentID,
			Quantity: q * ratio,
			Price:    res.Price,
		})
	}
	res.Volume = matched
	return res
}

// solve returns the price at which the book's excess demand is zero,
// clamped to the allowed band around the previous price.
func (c *Clearing) solve(prev float64, book []Order) (float64, bool) {
	var intercept, slope, holding float64
	for _, o := range book {
		intercept += o.Intercept
		slope += o.Slope
		holding += o.Holding
	}
	if slope <= 0 {
		return prev, false
	}
	p := (intercept - holding) / slope
	if c.MaxMove > 0 {
		lo, hi := prev*(1-c.MaxMove), prev*(1+c.MaxMove)
		switch {
		case p < lo:
			return lo, true
		case p > hi:
			return hi, true
		}
	}
	return p, false
}

func (c *Clearing) round(p, prev float64) decimal.Decimal {
	d := RoundToTick(decimal.NewFromFloat(p), c.Tick)
	if d.IsPositive() {
		return d
	}
	if c.Tick.IsPositive() {
		return c.Tick
	}
	return decimal.NewFromFloat(prev)
}
