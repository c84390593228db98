package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pricewatch-service/internal/pricing/model"
)

func filterFixture() []model.Record {
	return []model.Record{
		rec("Hotel A", "2024-01-01", 10000),
		rec("Hotel A", "2024-01-02", 0),
		rec("Hotel A", "2024-01-03", 15000),
		rec("Hotel B", "2024-01-01", 8000),
		rec("Hotel B", "2024-01-04", 25000),
	}
}

func TestApplyFiltersNoBoundsIsIdentity(t *testing.T) {
	records := filterFixture()
	assert.Equal(t, records, ApplyFilters(records, model.FilterState{}))
}

func TestApplyFiltersDateRangeInclusive(t *testing.T) {
	out := ApplyFilters(filterFixture(), model.FilterState{DateFrom: "2024-01-02", DateTo: "2024-01-03"})
	assert.Len(t, out, 2)
	for _, r := range out {
		assert.GreaterOrEqual(t, r.Date, "2024-01-02")
		assert.LessOrEqual(t, r.Date, "2024-01-03")
	}
}

func TestApplyFiltersPriceRangeInclusive(t *testing.T) {
	out := ApplyFilters(filterFixture(), model.FilterState{PriceMin: 8000, PriceMax: 15000})
	assert.Len(t, out, 3)
}

func TestApplyFiltersFacilitySubset(t *testing.T) {
	out := ApplyFilters(filterFixture(), model.FilterState{Facilities: []string{"Hotel B"}})
	assert.Len(t, out, 2)
	for _, r := range out {
		assert.Equal(t, "Hotel B", r.Facility)
	}
}

func TestApplyFiltersAvailableOnly(t *testing.T) {
	out := ApplyFilters(filterFixture(), model.FilterState{AvailableOnly: true})
	assert.Len(t, out, 4)
	for _, r := range out {
		assert.True(t, r.Available)
	}
}

func TestApplyFiltersSubsetAndMonotonic(t *testing.T) {
	records := filterFixture()
	base := model.FilterState{DateFrom: "2024-01-01", DateTo: "2024-01-04"}
	wide := ApplyFilters(records, base)

	// narrowing any one bound never grows the result
	narrower := []model.FilterState{
		{DateFrom: "2024-01-02", DateTo: "2024-01-04"},
		{DateFrom: "2024-01-01", DateTo: "2024-01-03"},
		{DateFrom: "2024-01-01", DateTo: "2024-01-04", PriceMin: 9000},
		{DateFrom: "2024-01-01", DateTo: "2024-01-04", Facilities: []string{"Hotel A"}},
		{DateFrom: "2024-01-01", DateTo: "2024-01-04", AvailableOnly: true},
	}
	for _, fs := range narrower {
		got := ApplyFilters(records, fs)
		assert.LessOrEqual(t, len(got), len(wide), "%+v", fs)
		for _, r := range got {
			assert.Contains(t, records, r)
		}
	}
}

func TestApplyFiltersEmptyResultIsValid(t *testing.T) {
	out := ApplyFilters(filterFixture(), model.FilterState{PriceMin: 100000})
	assert.Empty(t, out)
	assert.Equal(t, model.Summary{Total: 0}, Summarize(out))
}
