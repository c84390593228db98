package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricewatch-service/internal/pricing/model"
)

// series builds n consecutive January days starting at the given price,
// stepping by delta per day.
func series(facility string, n, start, delta int) []model.Record {
	out := make([]model.Record, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, rec(facility, fmt.Sprintf("2024-01-%02d", i+1), start+i*delta))
	}
	return out
}

func TestForecastSkipsShortHistory(t *testing.T) {
	f := NewForecaster(1)
	records := series("Hotel A", 6, 10000, 100) // one short of the floor
	for _, method := range []string{MethodLinear, MethodSeasonal, MethodARIMA} {
		out := f.ForecastAll(records, 7, method)
		assert.NotContains(t, out, "Hotel A", "method %s", method)
	}
}

func TestForecastSkipsZeroPriceObservations(t *testing.T) {
	f := NewForecaster(1)
	records := series("Hotel A", 7, 10000, 100)
	records[3].Price = 0
	records[3].Available = false
	// only 6 positive observations remain
	out := f.ForecastAll(records, 7, MethodLinear)
	assert.Empty(t, out)
}

func TestForecastLinearFollowsTrend(t *testing.T) {
	f := NewForecaster(1)
	records := series("Hotel A", 10, 10000, 100)
	out := f.ForecastAll(records, 5, MethodLinear)
	points := out["Hotel A"]
	require.Len(t, points, 5)

	assert.Equal(t, "2024-01-11", points[0].Date)
	// rising series keeps rising
	prev := 10000 + 9*100
	for _, p := range points {
		assert.Greater(t, p.Price, prev)
		prev = p.Price
	}
	// confidence decays from 0.8 toward 0.5
	assert.InDelta(t, 0.74, points[0].Confidence, 0.001)
	assert.InDelta(t, 0.5, points[4].Confidence, 0.001)
}

func TestForecastSeasonalFixedConfidence(t *testing.T) {
	f := NewForecaster(1)
	records := series("Hotel A", 14, 12000, 0)
	out := f.ForecastAll(records, 7, MethodSeasonal)
	points := out["Hotel A"]
	require.Len(t, points, 7)
	for _, p := range points {
		assert.InDelta(t, 0.7, p.Confidence, 0.001)
		// flat history forecasts flat
		assert.Equal(t, 12000, p.Price)
	}
}

func TestForecastMovingAverageBoundedNoise(t *testing.T) {
	f := NewForecaster(42)
	records := series("Hotel A", 10, 10000, 0)
	out := f.ForecastAll(records, 7, MethodARIMA)
	points := out["Hotel A"]
	require.Len(t, points, 7)
	for _, p := range points {
		assert.InDelta(t, 0.6, p.Confidence, 0.001)
		// flat series with ±5% noise per step stays well inside this band
		assert.Greater(t, p.Price, 5000)
		assert.Less(t, p.Price, 20000)
	}
}

func TestForecastDeterministicWithSeed(t *testing.T) {
	records := series("Hotel A", 10, 10000, 50)
	a := NewForecaster(7).ForecastAll(records, 5, MethodARIMA)
	b := NewForecaster(7).ForecastAll(records, 5, MethodARIMA)
	assert.Equal(t, a, b)
}
