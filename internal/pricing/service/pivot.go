package service

import (
	"fmt"
	"math"
	"sort"

	"pricewatch-service/internal/pricing/model"
)

// Pivot builds the facility×date lookup. Multi-plan cells collect every
// price and keep the per-plan breakdown; single-plan cells stay scalar.
func Pivot(records []model.Record, details model.DetailIndex) model.PivotTable {
	pivot := model.PivotTable{}
	for _, r := range records {
		row, ok := pivot[r.Facility]
		if !ok {
			row = map[string]model.PivotCell{}
			pivot[r.Facility] = row
		}
		cell := row[r.Date]
		cell.Prices = append(cell.Prices, r.Price)
		if len(cell.Prices) == 1 {
			cell.Price = r.Price
		} else {
			// scalar view of a multi-plan cell is the cheapest plan
			if r.Price > 0 && (cell.Price == 0 || r.Price < cell.Price) {
				cell.Price = r.Price
			}
			cell.Plans = details[model.DetailKey(r.Facility, r.Date)]
		}
		row[r.Date] = cell
	}
	return pivot
}

// Summarize computes the aggregate statistics over a record set. The mean
// covers positive prices only; zero-price entries count toward the
// availability rate denominator but never toward price statistics. An empty
// set yields the zero Summary, which is valid "no data" output.
func Summarize(records []model.Record) model.Summary {
	var sum model.Summary
	sum.Total = len(records)
	if sum.Total == 0 {
		return sum
	}

	var prices []int
	available := 0
	for _, r := range records {
		if r.Available {
			available++
		}
		if r.Price > 0 {
			prices = append(prices, r.Price)
			if r.Price > sum.Max {
				sum.Max = r.Price
				sum.MaxFacility = r.Facility
			}
			if sum.Min == 0 || r.Price < sum.Min {
				sum.Min = r.Price
				sum.MinFacility = r.Facility
			}
		}
	}
	sum.AvailabilityRate = float64(available) / float64(sum.Total)
	sum.Count = len(prices)
	if sum.Count == 0 {
		return sum
	}

	total := 0
	for _, p := range prices {
		total += p
	}
	sum.Mean = float64(total) / float64(sum.Count)
	sum.Median = median(prices, sum.Mean)
	sum.StdDev = stddev(prices, sum.Mean)
	if sum.Mean > 0 {
		sum.CoeffVariation = sum.StdDev / sum.Mean
	}
	return sum
}

// median sorts a copy of prices and takes the middle value. For an even
// count the middle value closer to the mean wins; on an exact tie the lower
// of the two is preferred. A deliberate tie-break, not the textbook median.
func median(prices []int, mean float64) int {
	sorted := append([]int(nil), prices...)
	sort.Ints(sorted)
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	lo, hi := sorted[n/2-1], sorted[n/2]
	if math.Abs(float64(hi)-mean) < math.Abs(float64(lo)-mean) {
		return hi
	}
	return lo
}

func stddev(prices []int, mean float64) float64 {
	if len(prices) < 2 {
		return 0
	}
	var ss float64
	for _, p := range prices {
		d := float64(p) - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(prices)))
}

// WeekdayAverages groups positive prices by day of week. Index 0 is Sunday.
// Days with no data stay at 0.
func WeekdayAverages(records []model.Record) [7]float64 {
	var sums [7]float64
	var counts [7]int
	for _, r := range records {
		if r.Price <= 0 {
			continue
		}
		wd, ok := Weekday(r.Date)
		if !ok {
			continue
		}
		sums[int(wd)] += float64(r.Price)
		counts[int(wd)]++
	}
	var out [7]float64
	for i := range sums {
		if counts[i] > 0 {
			out[i] = sums[i] / float64(counts[i])
		}
	}
	return out
}

// MonthlyAverages groups positive prices by year-month ("2024-01").
func MonthlyAverages(records []model.Record) map[string]float64 {
	sums := map[string]float64{}
	counts := map[string]int{}
	for _, r := range records {
		if r.Price <= 0 || len(r.Date) < 7 {
			continue
		}
		ym := r.Date[:7]
		sums[ym] += float64(r.Price)
		counts[ym]++
	}
	out := make(map[string]float64, len(sums))
	for ym, s := range sums {
		out[ym] = s / float64(counts[ym])
	}
	return out
}

// price-tier thresholds in yen.
const (
	tierLowMax    = 10000
	tierMediumMax = 20000
	tierHighMax   = 30000
)

// PriceTier classifies a positive price into a fixed band.
func PriceTier(price int) string {
	switch {
	case price < tierLowMax:
		return "low"
	case price < tierMediumMax:
		return "medium"
	case price < tierHighMax:
		return "high"
	default:
		return "very-high"
	}
}

// TierCounts tallies positive-price records per tier.
func TierCounts(records []model.Record) map[string]int {
	out := map[string]int{}
	for _, r := range records {
		if r.Price > 0 {
			out[PriceTier(r.Price)]++
		}
	}
	return out
}

// ChangeRate is the percentage move of latest against a window average.
func ChangeRate(latest int, windowAvg float64) float64 {
	if windowAvg == 0 {
		return 0
	}
	return math.Abs(float64(latest)-windowAvg) / windowAvg * 100
}

// FormatYen renders a price for table output; zero is sold out.
func FormatYen(price int) string {
	if price == 0 {
		return "CLOSE"
	}
	return fmt.Sprintf("¥%d", price)
}
