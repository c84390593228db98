package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pricewatch-service/internal/pricing/model"
)

func TestIsHoliday(t *testing.T) {
	tests := []struct {
		date string
		want bool
	}{
		{"2024-01-01", true},  // exact table
		{"2024-01-08", true},  // moving holiday, exact table only
		{"2026-01-01", true},  // beyond the table, fixed month-day match
		{"2026-01-08", false}, // moving holidays don't recur on a fixed day
		{"2024-06-10", false},
		{"not a date", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsHoliday(tt.date), "date %s", tt.date)
	}
}

func TestHolidayName(t *testing.T) {
	assert.Equal(t, "元日", HolidayName("2024-01-01"))
	assert.Equal(t, "", HolidayName("2024-06-10"))
}

func TestHolidayDates(t *testing.T) {
	records := []model.Record{
		rec("Hotel A", "2024-01-01", 12000),
		rec("Hotel B", "2024-01-01", 9000), // same date counted once
		rec("Hotel A", "2024-01-02", 11000),
		rec("Hotel A", "2026-01-01", 13000), // fixed-day fallback, no exact name
	}
	assert.Equal(t, map[string]string{
		"2024-01-01": "元日",
		"2026-01-01": "祝日",
	}, HolidayDates(records))
}
