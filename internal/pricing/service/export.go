package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"pricewatch-service/internal/pricing/model"
)

// utf8BOM keeps exported CSV double-clickable in Excel.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WritePivotCSV writes the facility×date matrix as UTF-8 CSV with a
// byte-order mark. encoding/csv handles RFC4180 quoting. Empty cells are
// written as 0 (sold out). When annotateWeekday is set, date headers carry
// the weekday abbreviation, e.g. "2024-01-06(土)"; national holidays are
// marked 祝 instead, e.g. "2024-01-01(祝)".
func WritePivotCSV(w io.Writer, records []model.Record, details model.DetailIndex, annotateWeekday bool) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("csv export: %w", err)
	}

	pivot := Pivot(records, details)
	facilities := sortedKeys(toSet(facilitiesOf(records)))
	dates := sortedKeys(toSet(datesOf(records)))

	cw := csv.NewWriter(w)
	header := make([]string, 0, len(dates)+1)
	header = append(header, "施設名")
	for _, d := range dates {
		label := d
		if annotateWeekday {
			if IsHoliday(d) {
				label = fmt.Sprintf("%s(祝)", d)
			} else if wd := WeekdayLabel(d); wd != "" {
				label = fmt.Sprintf("%s(%s)", d, wd)
			}
		}
		header = append(header, label)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("csv export: %w", err)
	}

	for _, facility := range facilities {
		row := make([]string, 0, len(dates)+1)
		row = append(row, facility)
		for _, d := range dates {
			cell := pivot[facility][d]
			row = append(row, fmt.Sprintf("%d", cell.Price))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("csv export: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ChartFilename builds the image export name: {prefix}_{chartType}_{isoDate}.png
func ChartFilename(prefix, chartType string, t time.Time) string {
	return fmt.Sprintf("%s_%s_%s.png", prefix, chartType, t.Format("2006-01-02"))
}

func facilitiesOf(records []model.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Facility
	}
	return out
}

func datesOf(records []model.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Date
	}
	return out
}

func toSet(vals []string) map[string]struct{} {
	m := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		m[v] = struct{}{}
	}
	return m
}
