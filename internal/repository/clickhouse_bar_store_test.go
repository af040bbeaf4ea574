package repository

import (
	"testing"

	"StockCast/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterNew(t *testing.T) {
	bars := []models.PriceBar{
		priceBar("2024-01-03", "1", "2", 1),
		priceBar("2024-01-04", "1", "2", 1),
		priceBar("2024-01-04", "9", "9", 9),
		priceBar("2024-01-05", "1", "2", 1),
	}
	existing := map[string]struct{}{"2024-01-03": {}}

	out := filterNew(bars, existing)
	require.Len(t, out, 2)
	assert.Equal(t, "2024-01-04", out[0].Date.Format("2006-01-02"))
	assert.True(t, out[0].Open.Equal(bars[1].Open))
	assert.Equal(t, "2024-01-05", out[1].Date.Format("2006-01-02"))
}

func TestBuildCHInsert(t *testing.T) {
	q, args := buildCHInsert([]models.PriceBar{
		priceBar("2024-01-04", "100", "102", 10),
		priceBar("2024-01-05", "102", "101", 20),
	})

	assert.Equal(t,
		"INSERT INTO stock_data (date, open_price, high_price, low_price, close_price, volume) VALUES (toDate(?), ?, ?, ?, ?, ?), (toDate(?), ?, ?, ?, ?, ?)",
		q)
	require.Len(t, args, 12)
	assert.Equal(t, "2024-01-04", args[0])
	assert.Equal(t, 100.0, args[1])
	assert.Equal(t, 103.0, args[2])
	assert.Equal(t, 99.0, args[3])
	assert.Equal(t, 102.0, args[4])
	assert.Equal(t, int64(10), args[5])
	assert.Equal(t, "2024-01-05", args[6])
}
