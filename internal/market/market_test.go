package market

import (
	"math"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
)

func TestReturnHistoryLastCopies(t *testing.T) {
	h := NewReturnHistory(1.01, 0.99)
	h.Append(1.02)
	if h.Len() != 3 {
		t.Fatalf("Len = %d, want 3", h.Len())
	}

	last := h.Last(2)
	if len(last) != 2 || last[0] != 0.99 || last[1] != 1.02 {
		t.Fatalf("Last(2) = %v", last)
	}
	last[0] = 42
	if h.All()[1] != 0.99 {
		t.Fatalf("Last must return a copy")
	}
	if got := h.Last(10); len(got) != 3 {
		t.Fatalf("Last beyond length returned %d values", len(got))
	}
	if got := h.Last(-1); len(got) != 0 {
		t.Fatalf("Last(-1) returned %v", got)
	}
}

func TestRoundToTick(t *testing.T) {
	tick := decimal.RequireFromString("0.05")
	tests := []struct{ in, want string }{
		{"100.02", "100"},
		{"100.03", "100.05"},
		{"99.975", "100"},
	}
	for _, tt := range tests {
		got := RoundToTick(decimal.RequireFromString(tt.in), tick)
		if !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("RoundToTick(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
	if got := RoundToTick(decimal.RequireFromString("1.234"), decimal.Zero); !got.Equal(decimal.RequireFromString("1.234")) {
		t.Errorf("zero tick should leave price unchanged, got %s", got)
	}
}

func TestOrderAccepts(t *testing.T) {
	tick := decimal.RequireFromString("0.01")
	// at 100 the buyer asks for +5 shares and the seller offers 5
	buy := NewOrder(1, 0, 15, 0.1, 101, true, tick)
	sell := NewOrder(2, 10, 15, 0.1, 99, true, tick)
	mkt := NewOrder(3, 0, 15, 0.1, 0, false, tick)

	p := decimal.NewFromInt(100)
	if !buy.IsBuyAt(100) || !sell.IsSellAt(100) {
		t.Fatalf("unexpected sides at 100: buy %g, sell %g", buy.QuantityAt(100), sell.QuantityAt(100))
	}
	if !buy.Accepts(p) || !sell.Accepts(p) || !mkt.Accepts(p) {
		t.Fatalf("all orders should accept 100")
	}
	high := decimal.NewFromInt(102)
	if buy.Accepts(high) {
		t.Errorf("buy limited at 101 accepted 102")
	}
	if !sell.Accepts(high) {
		t.Errorf("sell limited at 99 rejected 102")
	}
	if !mkt.Accepts(high) {
		t.Errorf("order without limit rejected a price")
	}
}

func testBook() []Order {
	tick := decimal.RequireFromString("0.01")
	return []Order{
		NewOrder(0, 10, 80, 0.5, 0, false, tick),
		NewOrder(1, 10, 60, 0.5, 0, false, tick),
	}
}

func TestClearingFindsEquilibrium(t *testing.T) {
	c := &Clearing{MaxMove: 0.1, Tick: decimal.RequireFromString("0.01")}
	res := c.Clear(115, testBook())
	// (80 + 60 - 20) / (0.5 + 0.5)
	if !res.Price.Equal(decimal.NewFromInt(120)) {
		t.Fatalf("price = %s, want 120", res.Price)
	}
	if res.Capped {
		t.Fatalf("equilibrium inside the band must not be capped")
	}
	if res.Volume != 10 {
		t.Fatalf("volume = %g, want 10", res.Volume)
	}

	var net float64
	for _, f := range res.Fills {
		net += f.Quantity
		if !f.Price.Equal(res.Price) {
			t.Errorf("fill for agent %d at %s, want %s", f.AgentID, f.Price, res.Price)
		}
	}
	if math.Abs(net) > 1e-12 {
		t.Fatalf("fills do not net to zero: %g", net)
	}
}

func TestClearingCapsPriceMove(t *testing.T) {
	c := &Clearing{MaxMove: 0.1, Tick: decimal.RequireFromString("0.01")}
	up := c.Clear(100, testBook())
	if !up.Price.Equal(decimal.NewFromInt(110)) || !up.Capped {
		t.Fatalf("capped up move = %s (capped %v), want 110", up.Price, up.Capped)
	}
	// at 110 the buyer wants 15 and the seller offers 5
	if up.Volume != 5 {
		t.Fatalf("volume = %g, want 5", up.Volume)
	}
	for _, f := range up.Fills {
		if f.AgentID == 0 && math.Abs(f.Quantity-5) > 1e-12 {
			t.Errorf("buyer filled %g, want 5", f.Quantity)
		}
	}

	down := c.Clear(150, testBook())
	if !down.Price.Equal(decimal.NewFromInt(135)) || !down.Capped {
		t.Fatalf("capped down move = %s (capped %v), want 135", down.Price, down.Capped)
	}

	free := &Clearing{Tick: c.Tick}
	if res := free.Clear(100, testBook()); !res.Price.Equal(decimal.NewFromInt(120)) || res.Capped {
		t.Fatalf("zero MaxMove should not cap, got %s", res.Price)
	}
}

func TestClearingDropsRejectedLimits(t *testing.T) {
	c := &Clearing{Tick: decimal.RequireFromString("0.01")}
	orders := testBook()
	orders[0] = NewOrder(0, 10, 80, 0.5, 110, true, c.Tick)

	res := c.Clear(100, orders)
	// the buyer will not pay 120, and the seller alone clears at 100
	if res.Rejected != 1 {
		t.Fatalf("rejected = %d, want 1", res.Rejected)
	}
	if !res.Price.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("price = %s, want 100", res.Price)
	}
	if res.Volume != 0 || len(res.Fills) != 0 {
		t.Fatalf("no counterparty left, got %+v", res)
	}
}

func TestClearingEmptyBook(t *testing.T) {
	c := &Clearing{MaxMove: 0.1, Tick: decimal.RequireFromString("0.01")}
	res := c.Clear(50, nil)
	if !res.Price.Equal(decimal.NewFromInt(50)) || res.Volume != 0 || res.Capped {
		t.Fatalf("empty book should keep the price, got %+v", res)
	}
}

func TestStockPaysDividendEachPeriod(t *testing.T) {
	s := NewStock(100, 5, 0.02, 0.1, 4)
	rng := rand.New(rand.NewSource(1))

	paid := 0
	for i := 0; i < 252; i++ {
		if s.Advance(1.0/252, rng) {
			paid++
		}
	}
	if paid != 4 {
		t.Fatalf("paid %d dividends in one year, want 4", paid)
	}
	if s.Dividend <= 0 {
		t.Fatalf("dividend must stay positive, got %g", s.Dividend)
	}
}

func TestContextPriceDividend(t *testing.T) {
	c := &Context{Price: 100, Dividend: 5}
	if c.PriceDividend() != 105 {
		t.Fatalf("PriceDividend = %g", c.PriceDividend())
	}
}
