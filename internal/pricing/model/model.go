package model

import "time"

// FormatKind classifies the layout of an uploaded table.
type FormatKind int

const (
	FormatGeneric FormatKind = iota
	FormatWidePivot
	FormatLongDetailed
	FormatSimpleTwoColumn
)

func (f FormatKind) String() string {
	switch f {
	case FormatWidePivot:
		return "wide-pivot"
	case FormatLongDetailed:
		return "long-detailed"
	case FormatSimpleTwoColumn:
		return "simple-two-column"
	default:
		return "generic"
	}
}

// Record is the canonical unit of truth: one facility, one date, one price.
// Available is derived strictly from Price > 0 (zero means sold out, not free).
type Record struct {
	Facility        string `json:"facility"`
	Date            string `json:"date"` // YYYY-MM-DD
	Price           int    `json:"price"`
	Available       bool   `json:"available"`
	RoomType        string `json:"roomType,omitempty"`
	PlanName        string `json:"planName,omitempty"`
	URL             string `json:"url,omitempty"`
	Timestamp       string `json:"timestamp,omitempty"`
	SearchCondition string `json:"searchCondition,omitempty"`
}

// PlanEntry is one room/plan sub-entry for a facility+date.
type PlanEntry struct {
	Price    int    `json:"price"`
	RoomType string `json:"roomType,omitempty"`
	PlanName string `json:"planName,omitempty"`
}

// DetailIndex maps "facility_date" to the plan entries seen for that cell.
type DetailIndex map[string][]PlanEntry

// DetailKey builds the composite key used by the DetailIndex and PivotTable.
func DetailKey(facility, date string) string { return facility + "_" + date }

// Dataset is the result of building one table: canonical records plus the
// derived, deduplicated facility/date sets.
type Dataset struct {
	Records    []Record    `json:"records"`
	Details    DetailIndex `json:"details,omitempty"`
	Facilities []string    `json:"facilities"`
	Dates      []string    `json:"dates"`
	Format     FormatKind  `json:"-"`
	Skipped    int         `json:"skipped"`
	SourceFile string      `json:"sourceFile,omitempty"`
}

// PivotCell holds either a scalar price (single plan) or the full price list
// with per-plan breakdown (multi plan).
type PivotCell struct {
	Price  int         `json:"price"`
	Prices []int       `json:"prices,omitempty"`
	Plans  []PlanEntry `json:"plans,omitempty"`
}

// Multi reports whether the cell carries more than one plan entry.
func (c PivotCell) Multi() bool { return len(c.Prices) > 1 }

// PivotTable maps facility -> date -> cell.
type PivotTable map[string]map[string]PivotCell

// FilterState holds the active record filters. Empty string / zero bounds
// mean "unbounded"; a nil Facilities set means "all facilities".
type FilterState struct {
	DateFrom      string   `json:"dateFrom,omitempty"`
	DateTo        string   `json:"dateTo,omitempty"`
	PriceMin      int      `json:"priceMin,omitempty"`
	PriceMax      int      `json:"priceMax,omitempty"`
	Facilities    []string `json:"facilities,omitempty"`
	AvailableOnly bool     `json:"availableOnly,omitempty"`
}

// Alert conditions.
const (
	CondAbove  = "above"
	CondBelow  = "below"
	CondChange = "change" // threshold is a percentage
)

// Alert is a user-defined threshold rule over one or more facilities.
type Alert struct {
	ID         string    `json:"id"`
	Facilities []string  `json:"facilities"`
	Condition  string    `json:"condition"`
	Threshold  float64   `json:"threshold"`
	Active     bool      `json:"active"`
	Created    time.Time `json:"created"`
}

// Triggered is one alert firing for one facility.
type Triggered struct {
	AlertID    string  `json:"alertId"`
	Facility   string  `json:"facility"`
	Condition  string  `json:"condition"`
	Threshold  float64 `json:"threshold"`
	Latest     int     `json:"latest"`
	WindowAvg  float64 `json:"windowAvg"`
	ChangeRate float64 `json:"changeRate,omitempty"`
	Message    string  `json:"message"`
}

// Summary are the aggregate statistics over a filtered record set. Count is
// the number of positive-price records; zero Count means "no data" and all
// other fields are zero.
type Summary struct {
	Count            int     `json:"count"`
	Total            int     `json:"total"`
	Mean             float64 `json:"mean"`
	Median           int     `json:"median"`
	Min              int     `json:"min"`
	Max              int     `json:"max"`
	StdDev           float64 `json:"stdDev"`
	CoeffVariation   float64 `json:"coeffVariation"`
	AvailabilityRate float64 `json:"availabilityRate"`
	MinFacility      string  `json:"minFacility,omitempty"`
	MaxFacility      string  `json:"maxFacility,omitempty"`
}

// ForecastPoint is one projected day for a facility.
type ForecastPoint struct {
	Date       string  `json:"date"`
	Price      int     `json:"price"`
	Confidence float64 `json:"confidence"`
}
