package features

import (
	"StockCast/internal/domain/errs"
	"StockCast/internal/domain/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// FromBar derives the model features from one daily bar:
//
//	daily_range      = high - low
//	price_change_pct = (close - open) / open * 100
//	volatility       = (high - low) / open
//
// A zero open price is rejected since both ratios are undefined.
func FromBar(bar models.PriceBar) (models.FeatureVector, error) {
	if bar.Open.IsZero() {
		return models.FeatureVector{}, errs.Wrapf(errs.ErrValidation, "open price is zero for %s", bar.Date.Format("2006-01-02"))
	}

	dailyRange := bar.High.Sub(bar.Low)
	changePct := bar.Close.Sub(bar.Open).Div(bar.Open).Mul(hundred)
	volatility := dailyRange.Div(bar.Open)

	return models.FeatureVector{
		Open:           bar.Open.InexactFloat64(),
		High:           bar.High.InexactFloat64(),
		Low:            bar.Low.InexactFloat64(),
		Volume:         float64(bar.Volume),
		DailyRange:     dailyRange.InexactFloat64(),
		PriceChangePct: changePct.InexactFloat64(),
		Volatility:     volatility.InexactFloat64(),
	}, nil
}

// FromBars applies FromBar to each bar, stopping at the first invalid one.
func FromBars(bars []models.PriceBar) ([]models.FeatureVector, error) {
	out := make([]models.FeatureVector, 0, len(bars))
	for _, b := range bars {
		fv, err := FromBar(b)
		if err != nil {
			return nil, err
		}
		out = append(out, fv)
	}
	return out, nil
}
