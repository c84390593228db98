package service

import "pricewatch-service/internal/pricing/model"

// Japanese national holidays by exact date. Per-year tables need refreshing
// when the cabinet office publishes the next calendar.
var holidayDates = map[string]string{
	"2024-01-01": "元日",
	"2024-01-08": "成人の日",
	"2024-02-11": "建国記念の日",
	"2024-02-12": "振替休日",
	"2024-02-23": "天皇誕生日",
	"2024-03-20": "春分の日",
	"2024-04-29": "昭和の日",
	"2024-05-03": "憲法記念日",
	"2024-05-04": "みどりの日",
	"2024-05-05": "こどもの日",
	"2024-05-06": "振替休日",
	"2024-07-15": "海の日",
	"2024-08-11": "山の日",
	"2024-08-12": "振替休日",
	"2024-09-16": "敬老の日",
	"2024-09-22": "秋分の日",
	"2024-09-23": "振替休日",
	"2024-10-14": "スポーツの日",
	"2024-11-03": "文化の日",
	"2024-11-04": "振替休日",
	"2024-11-23": "勤労感謝の日",
	"2025-01-01": "元日",
	"2025-01-13": "成人の日",
	"2025-02-11": "建国記念の日",
	"2025-02-23": "天皇誕生日",
	"2025-02-24": "振替休日",
	"2025-03-20": "春分の日",
	"2025-04-29": "昭和の日",
	"2025-05-03": "憲法記念日",
	"2025-05-04": "みどりの日",
	"2025-05-05": "こどもの日",
	"2025-05-06": "振替休日",
	"2025-07-21": "海の日",
	"2025-08-11": "山の日",
	"2025-09-15": "敬老の日",
	"2025-09-23": "秋分の日",
	"2025-10-13": "スポーツの日",
	"2025-11-03": "文化の日",
	"2025-11-23": "勤労感謝の日",
	"2025-11-24": "振替休日",
}

// recurring fixed-date holidays, matched on month-day for years the exact
// table does not cover.
var fixedHolidays = map[string]struct{}{
	"01-01": {}, // 元日
	"02-11": {}, // 建国記念の日
	"02-23": {}, // 天皇誕生日
	"04-29": {}, // 昭和の日
	"05-03": {}, // 憲法記念日
	"05-04": {}, // みどりの日
	"05-05": {}, // こどもの日
	"08-11": {}, // 山の日
	"11-03": {}, // 文化の日
	"11-23": {}, // 勤労感謝の日
}

// IsHoliday reports whether a canonical date is a holiday. The exact-date
// table and the month-day fallback are checked independently; either match
// counts.
func IsHoliday(date string) bool {
	if _, ok := holidayDates[date]; ok {
		return true
	}
	if len(date) != 10 {
		return false
	}
	_, ok := fixedHolidays[date[5:]]
	return ok
}

// HolidayName returns the holiday name for exact-table dates, "" otherwise.
func HolidayName(date string) string {
	return holidayDates[date]
}

// HolidayDates maps every distinct holiday date in the record set to its
// name. Month-day fallback matches outside the exact tables are labeled 祝日.
func HolidayDates(records []model.Record) map[string]string {
	out := map[string]string{}
	for _, r := range records {
		if _, seen := out[r.Date]; seen || !IsHoliday(r.Date) {
			continue
		}
		name := HolidayName(r.Date)
		if name == "" {
			name = "祝日"
		}
		out[r.Date] = name
	}
	return out
}
