package service

import (
	"math/rand"
	"sort"
	"time"

	"pricewatch-service/internal/pricing/model"
)

// Forecast methods. MethodARIMA is historical naming for the moving-average
// extrapolation; it is not an ARIMA model.
const (
	MethodLinear   = "linear"
	MethodSeasonal = "seasonal"
	MethodARIMA    = "arima"
)

// minObservations is the smallest positive-price history a facility needs
// before any method will forecast it.
const minObservations = 7

// Forecaster produces short-horizon projections. The rand source only feeds
// the moving-average method's bounded noise term.
type Forecaster struct {
	rng *rand.Rand
}

func NewForecaster(seed int64) *Forecaster {
	return &Forecaster{rng: rand.New(rand.NewSource(seed))}
}

// ForecastAll projects horizonDays ahead for every facility with enough
// history. Facilities below the observation floor are skipped, not errors.
func (f *Forecaster) ForecastAll(records []model.Record, horizonDays int, method string) map[string][]model.ForecastPoint {
	byFacility := map[string][]model.Record{}
	for _, r := range records {
		if r.Price > 0 {
			byFacility[r.Facility] = append(byFacility[r.Facility], r)
		}
	}
	out := map[string][]model.ForecastPoint{}
	for facility, series := range byFacility {
		points := f.forecastSeries(series, horizonDays, method)
		if len(points) > 0 {
			out[facility] = points
		}
	}
	return out
}

func (f *Forecaster) forecastSeries(series []model.Record, horizonDays int, method string) []model.ForecastPoint {
	if len(series) < minObservations || horizonDays <= 0 {
		return nil
	}
	sort.SliceStable(series, func(i, j int) bool { return series[i].Date < series[j].Date })
	last, err := time.Parse("2006-01-02", series[len(series)-1].Date)
	if err != nil {
		return nil
	}
	prices := make([]float64, len(series))
	for i, r := range series {
		prices[i] = float64(r.Price)
	}

	switch method {
	case MethodSeasonal:
		return forecastSeasonal(series, prices, last, horizonDays)
	case MethodARIMA:
		return f.forecastMovingAverage(prices, last, horizonDays)
	default:
		return forecastLinear(prices, last, horizonDays)
	}
}

// forecastLinear fits price against the sequential day index by ordinary
// least squares. Confidence decays linearly from 0.8 toward 0.5 across the
// horizon.
func forecastLinear(prices []float64, last time.Time, days int) []model.ForecastPoint {
	n := float64(len(prices))
	var sumX, sumY, sumXY, sumX2 float64
	for i, y := range prices {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}
	denom := n*sumX2 - sumX*sumX
	if denom == 0 {
		return nil
	}
	slope := (n*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / n

	out := make([]model.ForecastPoint, 0, days)
	for i := 1; i <= days; i++ {
		price := int(intercept + slope*(n-1+float64(i)))
		if price < 0 {
			price = 0
		}
		out = append(out, model.ForecastPoint{
			Date:       last.AddDate(0, 0, i).Format("2006-01-02"),
			Price:      price,
			Confidence: 0.8 - float64(i)/float64(days)*0.3,
		})
	}
	return out
}

// forecastSeasonal applies per-weekday multipliers (weekday average over
// overall average) to the trailing 7-day average.
func forecastSeasonal(series []model.Record, prices []float64, last time.Time, days int) []model.ForecastPoint {
	var wdSum [7]float64
	var wdCount [7]int
	var total float64
	for i, r := range series {
		wd, ok := Weekday(r.Date)
		if !ok {
			continue
		}
		wdSum[int(wd)] += prices[i]
		wdCount[int(wd)]++
		total += prices[i]
	}
	overall := total / float64(len(prices))

	recent := prices
	if len(recent) > 7 {
		recent = recent[len(recent)-7:]
	}
	var recentAvg float64
	for _, p := range recent {
		recentAvg += p
	}
	recentAvg /= float64(len(recent))

	out := make([]model.ForecastPoint, 0, days)
	for i := 1; i <= days; i++ {
		date := last.AddDate(0, 0, i)
		factor := 1.0
		if wd := int(date.Weekday()); wdCount[wd] > 0 && overall > 0 {
			factor = wdSum[wd] / float64(wdCount[wd]) / overall
		}
		out = append(out, model.ForecastPoint{
			Date:       date.Format("2006-01-02"),
			Price:      int(recentAvg*factor + 0.5),
			Confidence: 0.7,
		})
	}
	return out
}

// forecastMovingAverage extrapolates a 3-period moving average linearly with
// a small bounded noise term. Named "arima" upstream; it never was one.
func (f *Forecaster) forecastMovingAverage(prices []float64, last time.Time, days int) []model.ForecastPoint {
	const window = 3
	var ma []float64
	for i := window - 1; i < len(prices); i++ {
		sum := 0.0
		for _, p := range prices[i-window+1 : i+1] {
			sum += p
		}
		ma = append(ma, sum/window)
	}
	trend := (ma[len(ma)-1] - ma[0]) / float64(len(ma))
	lastMA := ma[len(ma)-1]

	out := make([]model.ForecastPoint, 0, days)
	for i := 1; i <= days; i++ {
		noise := (f.rng.Float64() - 0.5) * 0.1 * lastMA
		price := int(lastMA + trend*float64(i) + noise)
		if price < 0 {
			price = 0
		}
		lastMA = float64(price)
		out = append(out, model.ForecastPoint{
			Date:       last.AddDate(0, 0, i).Format("2006-01-02"),
			Price:      price,
			Confidence: 0.6,
		})
	}
	return out
}
