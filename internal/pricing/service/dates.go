package service

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	reISO       = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	reYMD       = regexp.MustCompile(`^(\d{4})[/-](\d{1,2})[/-](\d{1,2})$`)
	reMDY       = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	reJPFull    = regexp.MustCompile(`(\d{4})年(\d{1,2})月(\d{1,2})日`)
	reJPNoYear  = regexp.MustCompile(`^(\d{1,2})月(\d{1,2})日$`)
	reSerialNum = regexp.MustCompile(`^\d+(\.0+)?$`)
)

// excelEpoch is the serial-date base used by spreadsheet formats. Day 1 is
// 1899-12-31, so serial N maps to epoch + N days.
var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// serial values outside this window are treated as plain numbers, not dates
// (25569 = 1970-01-01, 80000 ≈ year 2119).
const (
	serialMin = 20000
	serialMax = 80000
)

// NormalizeDate converts any supported date representation to YYYY-MM-DD.
// Unrecognized input is returned unchanged; the caller treats it as an
// opaque label.
func NormalizeDate(cell string) string {
	return normalizeDateAt(cell, time.Now())
}

// normalizeDateAt is the clock-injected form. Month-day-only kanji dates
// default to now's calendar year, which is ambiguous for year-boundary data.
func normalizeDateAt(cell string, now time.Time) string {
	s := strings.TrimSpace(cell)
	if s == "" {
		return ""
	}

	if reISO.MatchString(s) {
		return s
	}
	if m := reYMD.FindStringSubmatch(s); m != nil {
		return joinDate(m[1], m[2], m[3])
	}
	if m := reMDY.FindStringSubmatch(s); m != nil {
		return joinDate(m[3], m[1], m[2])
	}
	if m := reJPFull.FindStringSubmatch(s); m != nil {
		return joinDate(m[1], m[2], m[3])
	}
	if m := reJPNoYear.FindStringSubmatch(s); m != nil {
		return joinDate(strconv.Itoa(now.Year()), m[1], m[2])
	}
	if reSerialNum.MatchString(s) {
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			if d, ok := serialToDate(n); ok {
				return d
			}
		}
	}
	return s
}

// serialToDate converts an Excel serial day count via the fixed epoch, using
// UTC arithmetic to avoid timezone drift.
func serialToDate(serial float64) (string, bool) {
	if serial < serialMin || serial > serialMax {
		return "", false
	}
	return excelEpoch.AddDate(0, 0, int(serial)).Format("2006-01-02"), true
}

func joinDate(y, m, d string) string {
	mi, _ := strconv.Atoi(m)
	di, _ := strconv.Atoi(d)
	return fmt.Sprintf("%s-%02d-%02d", y, mi, di)
}

// DateLike reports whether the cell would normalize to a calendar date.
// Used by the format detector when classifying header rows.
func DateLike(cell string) bool {
	s := strings.TrimSpace(cell)
	if s == "" {
		return false
	}
	if reISO.MatchString(s) || reYMD.MatchString(s) || reMDY.MatchString(s) ||
		reJPFull.MatchString(s) || reJPNoYear.MatchString(s) {
		return true
	}
	if reSerialNum.MatchString(s) {
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			_, ok := serialToDate(n)
			return ok
		}
	}
	return false
}

// Weekday returns the weekday for a canonical date, and false for opaque
// labels that never normalized.
func Weekday(date string) (time.Weekday, bool) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return 0, false
	}
	return t.Weekday(), true
}

// weekday abbreviations in table-header order (Sunday first).
var weekdayJP = [7]string{"日", "月", "火", "水", "木", "金", "土"}

// WeekdayLabel returns the single-character Japanese weekday abbreviation,
// or "" for an opaque date label.
func WeekdayLabel(date string) string {
	wd, ok := Weekday(date)
	if !ok {
		return ""
	}
	return weekdayJP[int(wd)]
}
