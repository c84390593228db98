package service

import (
	"errors"
	"fmt"
	"sort"

	"pricewatch-service/internal/pricing/model"
)

// alertWindow is how many of the most recent positive-price records feed an
// alert evaluation.
const alertWindow = 7

// Alert misconfiguration is rejected at creation time, never stored.
var (
	ErrAlertNoFacility = errors.New("alert needs at least one facility")
	ErrAlertThreshold  = errors.New("alert threshold must be positive")
	ErrAlertCondition  = errors.New("unknown alert condition")
)

// ValidateAlert checks a user-submitted alert before it is stored.
func ValidateAlert(a model.Alert) error {
	if len(a.Facilities) == 0 {
		return ErrAlertNoFacility
	}
	if a.Threshold <= 0 {
		return ErrAlertThreshold
	}
	switch a.Condition {
	case model.CondAbove, model.CondBelow, model.CondChange:
		return nil
	default:
		return ErrAlertCondition
	}
}

// EvaluateAlerts scans the record set against every active alert and returns
// the full triggered list. Triggering is recomputed wholesale on each call;
// there is no edge-triggered state carried between evaluations.
func EvaluateAlerts(alerts []model.Alert, records []model.Record) []model.Triggered {
	var out []model.Triggered
	for _, a := range alerts {
		if !a.Active {
			continue
		}
		for _, facility := range a.Facilities {
			if t, ok := evaluateOne(a, facility, records); ok {
				out = append(out, t)
			}
		}
	}
	return out
}

func evaluateOne(a model.Alert, facility string, records []model.Record) (model.Triggered, bool) {
	window := recentPrices(records, facility, alertWindow)
	if len(window) == 0 {
		return model.Triggered{}, false
	}
	latest := window[len(window)-1]
	sum := 0
	for _, p := range window {
		sum += p
	}
	avg := float64(sum) / float64(len(window))

	t := model.Triggered{
		AlertID:   a.ID,
		Facility:  facility,
		Condition: a.Condition,
		Threshold: a.Threshold,
		Latest:    latest,
		WindowAvg: avg,
	}
	switch a.Condition {
	case model.CondAbove:
		if float64(latest) > a.Threshold {
			t.Message = fmt.Sprintf("%s: price %s is above ¥%.0f", facility, FormatYen(latest), a.Threshold)
			return t, true
		}
	case model.CondBelow:
		if float64(latest) < a.Threshold {
			t.Message = fmt.Sprintf("%s: price %s is below ¥%.0f", facility, FormatYen(latest), a.Threshold)
			return t, true
		}
	case model.CondChange:
		rate := ChangeRate(latest, avg)
		if rate > a.Threshold {
			t.ChangeRate = rate
			t.Message = fmt.Sprintf("%s: price moved %.1f%% against the %d-day average", facility, rate, alertWindow)
			return t, true
		}
	}
	return model.Triggered{}, false
}

// recentPrices returns the last n positive prices for a facility in date
// order.
func recentPrices(records []model.Record, facility string, n int) []int {
	var series []model.Record
	for _, r := range records {
		if r.Facility == facility && r.Price > 0 {
			series = append(series, r)
		}
	}
	sort.SliceStable(series, func(i, j int) bool { return series[i].Date < series[j].Date })
	if len(series) > n {
		series = series[len(series)-n:]
	}
	out := make([]int, len(series))
	for i, r := range series {
		out[i] = r.Price
	}
	return out
}
