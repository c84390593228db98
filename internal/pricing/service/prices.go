package service

import (
	"strconv"
	"strings"
)

// characters stripped before parsing: separators, whitespace and yen glyphs.
var priceStrip = strings.NewReplacer(
	",", "", "，", "",
	" ", "", "\t", "", " ", "", "　", "",
	"円", "", "¥", "", "￥", "",
)

// NormalizePrice converts a localized price string to integer yen. Full-width
// digits are folded to ASCII first. Anything unparseable yields 0, the
// sold-out sentinel; zero is never an error anywhere in the system.
func NormalizePrice(cell string) int {
	s := strings.TrimSpace(cell)
	if s == "" {
		return 0
	}
	s = foldFullWidthDigits(s)
	s = priceStrip.Replace(s)
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0
		}
		return n
	}
	// spreadsheet cells sometimes round-trip as "12000.0"
	if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 0 {
		return int(f)
	}
	return 0
}

// foldFullWidthDigits maps U+FF10..U+FF19 onto ASCII digits.
func foldFullWidthDigits(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r >= '０' && r <= '９' {
			r = '0' + (r - '０')
		}
		out = append(out, r)
	}
	return string(out)
}
