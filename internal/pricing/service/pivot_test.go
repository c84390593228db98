package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pricewatch-service/internal/pricing/model"
)

func rec(facility, date string, price int) model.Record {
	return model.Record{Facility: facility, Date: date, Price: price, Available: price > 0}
}

func TestSummarizeEmptyIsValid(t *testing.T) {
	sum := Summarize(nil)
	assert.Equal(t, model.Summary{}, sum)
}

func TestSummarizeExcludesZeroPricesFromMean(t *testing.T) {
	records := []model.Record{
		rec("A", "2024-01-01", 10000),
		rec("A", "2024-01-02", 0),
		rec("B", "2024-01-01", 20000),
		rec("B", "2024-01-02", 0),
	}
	sum := Summarize(records)
	assert.Equal(t, 2, sum.Count)
	assert.Equal(t, 4, sum.Total)
	assert.InDelta(t, 15000, sum.Mean, 0.001)
	assert.Equal(t, 10000, sum.Min)
	assert.Equal(t, 20000, sum.Max)
	assert.Equal(t, "A", sum.MinFacility)
	assert.Equal(t, "B", sum.MaxFacility)
	assert.InDelta(t, 0.5, sum.AvailabilityRate, 0.001)
}

func TestMedianOddCount(t *testing.T) {
	assert.Equal(t, 200, median([]int{300, 100, 200}, 200))
}

func TestMedianEvenCountPicksValueCloserToMean(t *testing.T) {
	// mean pulled up by the outlier: middles are 200 and 210
	prices := []int{100, 200, 210, 600}
	mean := 277.5
	assert.Equal(t, 210, median(prices, mean))
}

func TestMedianEvenCountTiePrefersLower(t *testing.T) {
	// mean 150 is equidistant from both middles; lower wins
	assert.Equal(t, 100, median([]int{100, 200}, 150))
}

func TestPivotMultiPlanCell(t *testing.T) {
	details := model.DetailIndex{
		model.DetailKey("A", "2024-01-01"): {
			{Price: 12000, PlanName: "素泊まり"},
			{Price: 14000, PlanName: "朝食付き"},
		},
	}
	records := []model.Record{
		{Facility: "A", Date: "2024-01-01", Price: 14000, Available: true, PlanName: "朝食付き"},
		{Facility: "A", Date: "2024-01-01", Price: 12000, Available: true, PlanName: "素泊まり"},
		{Facility: "A", Date: "2024-01-02", Price: 9000, Available: true},
	}
	pivot := Pivot(records, details)

	multi := pivot["A"]["2024-01-01"]
	assert.True(t, multi.Multi())
	assert.Equal(t, 12000, multi.Price) // cheapest plan is the scalar view
	assert.Len(t, multi.Plans, 2)

	single := pivot["A"]["2024-01-02"]
	assert.False(t, single.Multi())
	assert.Equal(t, 9000, single.Price)
	assert.Nil(t, single.Plans)
}

func TestWeekdayAverages(t *testing.T) {
	records := []model.Record{
		rec("A", "2024-01-01", 10000), // Monday
		rec("A", "2024-01-08", 20000), // Monday
		rec("A", "2024-01-06", 30000), // Saturday
		rec("A", "2024-01-06", 0),     // ignored
	}
	avgs := WeekdayAverages(records)
	assert.InDelta(t, 15000, avgs[1], 0.001)
	assert.InDelta(t, 30000, avgs[6], 0.001)
	assert.Zero(t, avgs[0])
}

func TestMonthlyAverages(t *testing.T) {
	records := []model.Record{
		rec("A", "2024-01-10", 10000),
		rec("A", "2024-01-20", 20000),
		rec("A", "2024-02-01", 30000),
	}
	avgs := MonthlyAverages(records)
	assert.InDelta(t, 15000, avgs["2024-01"], 0.001)
	assert.InDelta(t, 30000, avgs["2024-02"], 0.001)
}

func TestPriceTier(t *testing.T) {
	tests := []struct {
		price int
		want  string
	}{
		{9999, "low"},
		{10000, "medium"},
		{19999, "medium"},
		{20000, "high"},
		{29999, "high"},
		{30000, "very-high"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PriceTier(tt.price), "price %d", tt.price)
	}
}

func TestChangeRate(t *testing.T) {
	assert.InDelta(t, 10, ChangeRate(11000, 10000), 0.001)
	assert.InDelta(t, 10, ChangeRate(9000, 10000), 0.001)
	assert.Zero(t, ChangeRate(5000, 0))
}

func TestFormatYen(t *testing.T) {
	assert.Equal(t, "CLOSE", FormatYen(0))
	assert.Equal(t, "¥12000", FormatYen(12000))
}
