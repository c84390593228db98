package service

import (
	"errors"
	"sort"
	"strings"

	"pricewatch-service/internal/pricing/model"
)

// ErrNoRecords is returned when a table yields no usable rows at all.
// Individual malformed rows are skipped and counted, never escalated.
var ErrNoRecords = errors.New("no usable rows in table")

// SyntheticFacility labels the single value series built from tables that
// carry no facility dimension.
const SyntheticFacility = "series"

// Build turns a raw table into canonical records plus the detail index,
// dispatching on the detected format.
func Build(rows [][]string, format model.FormatKind) (*model.Dataset, error) {
	ds := &model.Dataset{Format: format, Details: model.DetailIndex{}}
	switch format {
	case model.FormatWidePivot:
		buildWide(rows, ds)
	case model.FormatLongDetailed:
		buildLong(rows, ds)
	case model.FormatSimpleTwoColumn:
		buildTwoColumn(rows, ds)
	default:
		buildGeneric(rows, ds)
	}
	if len(ds.Records) == 0 {
		return nil, ErrNoRecords
	}
	deriveSets(ds)
	return ds, nil
}

// buildWide: header cells after column 0 are dates, each data row's first
// cell is the facility. Zero-price cells are kept (sold out is data).
func buildWide(rows [][]string, ds *model.Dataset) {
	if len(rows) < 2 {
		return
	}
	header := rows[0]
	dates := make([]string, len(header)) // by column index
	for j := 1; j < len(header); j++ {
		if strings.TrimSpace(header[j]) != "" {
			dates[j] = NormalizeDate(header[j])
		}
	}
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		facility := strings.TrimSpace(row[0])
		if facility == "" {
			ds.Skipped++
			continue
		}
		for j := 1; j < len(row) && j < len(dates); j++ {
			if dates[j] == "" {
				continue
			}
			price := NormalizePrice(row[j])
			ds.Records = append(ds.Records, model.Record{
				Facility:  facility,
				Date:      dates[j],
				Price:     price,
				Available: price > 0,
			})
		}
	}
}

// buildLong maps header names to logical fields by substring containment,
// then reads one record per row. Rows missing facility or date, or with a
// non-positive price, carry no information and are dropped. Rows sharing a
// facility+date accumulate in the detail index as separate plan entries.
func buildLong(rows [][]string, ds *model.Dataset) {
	if len(rows) < 2 {
		return
	}
	cols := map[headerField]int{}
	for j, cell := range rows[0] {
		f := classifyHeader(cell)
		if f == fieldNone {
			continue
		}
		if _, taken := cols[f]; !taken {
			cols[f] = j
		}
	}
	get := func(row []string, f headerField) string {
		j, ok := cols[f]
		if !ok || j >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[j])
	}
	for _, row := range rows[1:] {
		facility := get(row, fieldFacility)
		date := NormalizeDate(get(row, fieldDate))
		price := NormalizePrice(get(row, fieldPrice))
		if facility == "" || date == "" || price <= 0 {
			ds.Skipped++
			continue
		}
		rec := model.Record{
			Facility:        facility,
			Date:            date,
			Price:           price,
			Available:       true,
			RoomType:        get(row, fieldRoom),
			PlanName:        get(row, fieldPlan),
			URL:             get(row, fieldURL),
			Timestamp:       get(row, fieldTimestamp),
			SearchCondition: get(row, fieldSearchCondition),
		}
		ds.Records = append(ds.Records, rec)
		key := model.DetailKey(facility, date)
		ds.Details[key] = append(ds.Details[key], model.PlanEntry{
			Price:    price,
			RoomType: rec.RoomType,
			PlanName: rec.PlanName,
		})
	}
}

// buildTwoColumn degrades to a single synthetic series: column 1 is the
// date, column 2 the value.
func buildTwoColumn(rows [][]string, ds *model.Dataset) {
	for _, row := range rows {
		if len(row) < 2 || !DateLike(row[0]) {
			ds.Skipped++
			continue
		}
		price := NormalizePrice(row[1])
		ds.Records = append(ds.Records, model.Record{
			Facility:  SyntheticFacility,
			Date:      NormalizeDate(row[0]),
			Price:     price,
			Available: price > 0,
		})
	}
}

// buildGeneric scans every row left to right pairing a date-like cell with
// the next numeric cell.
func buildGeneric(rows [][]string, ds *model.Dataset) {
	for _, row := range rows {
		for j := 0; j < len(row); j++ {
			if !DateLike(row[j]) {
				continue
			}
			date := NormalizeDate(row[j])
			for k := j + 1; k < len(row); k++ {
				if strings.TrimSpace(row[k]) == "" {
					continue
				}
				if price := NormalizePrice(row[k]); price > 0 {
					ds.Records = append(ds.Records, model.Record{
						Facility:  SyntheticFacility,
						Date:      date,
						Price:     price,
						Available: true,
					})
					j = k
				}
				break
			}
		}
	}
}

// deriveSets rebuilds the deduplicated, sorted facility and date sets.
func deriveSets(ds *model.Dataset) {
	facilities := map[string]struct{}{}
	dates := map[string]struct{}{}
	for _, r := range ds.Records {
		facilities[r.Facility] = struct{}{}
		dates[r.Date] = struct{}{}
	}
	ds.Facilities = sortedKeys(facilities)
	ds.Dates = sortedKeys(dates)
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
