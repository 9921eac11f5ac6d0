package dataflows

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bar is one daily price bar.
type Bar struct {
	Symbol   string          `json:"symbol"`
	Date     time.Time       `json:"date"`
	Close    decimal.Decimal `json:"close"`
	AdjClose decimal.Decimal `json:"adj_close"`
	Volume   int64           `json:"volume"`
}
