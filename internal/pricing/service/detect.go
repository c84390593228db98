package service

import (
	"strings"

	"pricewatch-service/internal/pricing/model"
)

// logical fields a long-format header can map to. Vocabulary checks run in
// this fixed order and the first match wins, so "日時" is claimed by the
// timestamp field before "日付" can see it.
type headerField int

const (
	fieldNone headerField = iota
	fieldTimestamp
	fieldSearchCondition
	fieldFacility
	fieldDate
	fieldPlan
	fieldRoom
	fieldPrice
	fieldURL
)

var headerVocab = []struct {
	field headerField
	subs  []string
}{
	{fieldTimestamp, []string{"日時", "取得"}},
	{fieldSearchCondition, []string{"検索条件"}},
	{fieldFacility, []string{"ホテル名", "施設", "hotel", "facility"}},
	{fieldDate, []string{"日付", "date"}},
	{fieldPlan, []string{"プラン", "plan"}},
	{fieldRoom, []string{"部屋", "room"}},
	{fieldPrice, []string{"料金", "価格", "price"}},
	{fieldURL, []string{"url"}},
}

// classifyHeader maps one header cell to a logical field by substring
// containment, or fieldNone.
func classifyHeader(cell string) headerField {
	h := strings.ToLower(strings.TrimSpace(cell))
	if h == "" {
		return fieldNone
	}
	for _, v := range headerVocab {
		for _, sub := range v.subs {
			if strings.Contains(h, sub) {
				return v.field
			}
		}
	}
	return fieldNone
}

// Detect classifies a raw table by inspecting its header row and the first
// few data rows. Ties between long and wide layouts resolve to long, the
// stricter format, since it carries more fields.
func Detect(rows [][]string) model.FormatKind {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return model.FormatGeneric
	}
	header := rows[0]

	if isLongHeader(header) {
		return model.FormatLongDetailed
	}
	if isWideHeader(rows) {
		return model.FormatWidePivot
	}
	if len(header) <= 2 && len(rows) > 1 && DateLike(rows[1][0]) {
		return model.FormatSimpleTwoColumn
	}
	return model.FormatGeneric
}

// isLongHeader wants at least a facility column plus one of date/price;
// a single stray vocabulary hit is not enough to claim the format.
func isLongHeader(header []string) bool {
	seen := map[headerField]bool{}
	for _, cell := range header {
		if f := classifyHeader(cell); f != fieldNone {
			seen[f] = true
		}
	}
	return seen[fieldFacility] && (seen[fieldDate] || seen[fieldPrice])
}

// isWideHeader: non-first header cells mostly date-like, and the first
// column of the data rows holds facility-name-like strings, not dates.
func isWideHeader(rows [][]string) bool {
	header := rows[0]
	if len(header) < 2 {
		return false
	}
	dateCells, nonEmpty := 0, 0
	for _, cell := range header[1:] {
		if strings.TrimSpace(cell) == "" {
			continue
		}
		nonEmpty++
		if DateLike(cell) {
			dateCells++
		}
	}
	if nonEmpty == 0 || dateCells*2 <= nonEmpty {
		return false
	}
	probe := len(rows)
	if probe > 6 {
		probe = 6
	}
	for _, row := range rows[1:probe] {
		if len(row) == 0 {
			continue
		}
		first := strings.TrimSpace(row[0])
		if first == "" {
			continue
		}
		if DateLike(first) {
			return false
		}
	}
	return true
}
