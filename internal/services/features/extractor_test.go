package features

import (
	"errors"
	"testing"
	"time"

	"StockCast/internal/domain/errs"
	"StockCast/internal/domain/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bar(open, high, low, close string, volume int64) models.PriceBar {
	return models.PriceBar{
		Date:   time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		Open:   decimal.RequireFromString(open),
		High:   decimal.RequireFromString(high),
		Low:    decimal.RequireFromString(low),
		Close:  decimal.RequireFromString(close),
		Volume: volume,
	}
}

func TestFromBar(t *testing.T) {
	fv, err := FromBar(bar("100", "105", "98", "102", 1000))
	require.NoError(t, err)

	assert.Equal(t, 100.0, fv.Open)
	assert.Equal(t, 105.0, fv.High)
	assert.Equal(t, 98.0, fv.Low)
	assert.Equal(t, 1000.0, fv.Volume)
	assert.Equal(t, 7.0, fv.DailyRange)
	assert.InDelta(t, 2.0, fv.PriceChangePct, 1e-12)
	assert.InDelta(t, 0.07, fv.Volatility, 1e-12)
}

func TestFromBarNegativeChange(t *testing.T) {
	fv, err := FromBar(bar("200", "201", "180", "190", 5))
	require.NoError(t, err)

	assert.InDelta(t, -5.0, fv.PriceChangePct, 1e-12)
	assert.InDelta(t, 21.0, fv.DailyRange, 1e-12)
	assert.InDelta(t, 0.105, fv.Volatility, 1e-12)
}

func TestFromBarZeroOpen(t *testing.T) {
	_, err := FromBar(bar("0", "1", "0", "1", 1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrValidation))
}

func TestValuesOrder(t *testing.T) {
	fv, err := FromBar(bar("100", "105", "98", "102", 1000))
	require.NoError(t, err)

	v := fv.Values()
	require.Len(t, v, len(models.FeatureNames))
	assert.Equal(t, []float64{100, 105, 98, 1000, 7}, v[:5])
}

func TestFromBarsStopsOnInvalid(t *testing.T) {
	_, err := FromBars([]models.PriceBar{bar("1", "2", "1", "2", 1), bar("0", "1", "0", "1", 1)})
	assert.ErrorIs(t, err, errs.ErrValidation)

	out, err := FromBars([]models.PriceBar{bar("1", "2", "1", "2", 1)})
	require.NoError(t, err)
	assert.Len(t, out, 1)
}
