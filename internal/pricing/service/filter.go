package service

import "pricewatch-service/internal/pricing/model"

// ApplyFilters is a pure filter over the record set: date range and price
// range are inclusive when set, facility membership applies when the set is
// non-empty. Empty results are valid and flow through to empty statistics.
func ApplyFilters(records []model.Record, fs model.FilterState) []model.Record {
	var selected map[string]struct{}
	if len(fs.Facilities) > 0 {
		selected = make(map[string]struct{}, len(fs.Facilities))
		for _, f := range fs.Facilities {
			selected[f] = struct{}{}
		}
	}

	out := make([]model.Record, 0, len(records))
	for _, r := range records {
		if fs.DateFrom != "" && r.Date < fs.DateFrom {
			continue
		}
		if fs.DateTo != "" && r.Date > fs.DateTo {
			continue
		}
		if fs.PriceMin > 0 && r.Price < fs.PriceMin {
			continue
		}
		if fs.PriceMax > 0 && r.Price > fs.PriceMax {
			continue
		}
		if selected != nil {
			if _, ok := selected[r.Facility]; !ok {
				continue
			}
		}
		if fs.AvailableOnly && !r.Available {
			continue
		}
		out = append(out, r)
	}
	return out
}
