package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceBar is one trading day's OHLCV record. Date is unique in the store.
type PriceBar struct {
	Date   time.Time
	Open   decimal.Decimal
	High   decimal.Decimal
	Low    decimal.Decimal
	Close  decimal.Decimal
	Volume int64
}

// FeatureVector holds the model inputs derived from one PriceBar.
type FeatureVector struct {
	Open           float64
	High           float64
	Low            float64
	Volume         float64
	DailyRange     float64
	PriceChangePct float64
	Volatility     float64
}

// FeatureNames lists the stock model inputs in training order.
var FeatureNames = []string{
	"open_price", "high_price", "low_price", "volume",
	"daily_range", "price_change_pct", "volatility",
}

// Values returns the vector in FeatureNames order.
func (f FeatureVector) Values() []float64 {
	return []float64{f.Open, f.High, f.Low, f.Volume, f.DailyRange, f.PriceChangePct, f.Volatility}
}

// ETLResult summarises one ETL run.
type ETLResult struct {
	Symbol   string
	Fetched  int
	Inserted int
	Skipped  bool // another instance held the run lock
	Duration time.Duration
}
