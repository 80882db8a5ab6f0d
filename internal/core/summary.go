package core

import (
	"sort"
	"strings"
)

/// SummaryRow is one line of a report: a group key, the summed amount, and a
// pre-rendered secondary breakdown.
type SummaryRow struct {
	Key       string
	Total     int64
	Breakdown string
}

const breakdownSep = " · "

// Per-dimension caps on the secondary breakdown.
const (
	topTypesPerPerson  = 4
	topPersonsPerType  = 3
	unlimitedBreakdown = 0
)

// Summarize produces the report rows for one dimension restricted to one
// year. It is a pure function of its inputs and never mutates records, so it
// is safe to call on every render.
//
// Year restriction: person, type and date use the record's calendar year;
// week uses the year of the settlement key, which is the one place calendar
// year and settlement year diverge.
//
// personFilter applies only to the person dimension and is a case-sensitive,
// untrimmed substring match on the contributor name.
//
// Person and type rows are sorted descending by total (ties keep ascending
// key order, so repeated calls agree); date and week rows ascend by key,
// which for YYYY-MM-DD strings is chronological.
func Summarize(records []ContributionRecord, dim Dimension, year int, personFilter string) []SummaryRow {
	var pool []ContributionRecord
	for _, r := range records {
		if relevantYear(r, dim) != year {
			continue
		}
		if dim == ByPerson && personFilter != "" && !strings.Contains(r.Person, personFilter) {
			continue
		}
		pool = append(pool, r)
	}

	totals := groupSum(pool, dim)
	rows := make([]SummaryRow, 0, len(totals))
	for _, key := range sortedKeys(totals) {
		rows = append(rows, SummaryRow{
			Key:       key,
			Total:     totals[key],
			Breakdown: breakdown(pool, dim, key),
		})
	}

	switch dim {
	case ByPerson, ByType:
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].Total > rows[j].Total })
	}
	return rows
}

// GroupKey returns the grouping key of a record for the given dimension.
func GroupKey(r ContributionRecord, dim Dimension) string {
	switch dim {
	case ByPerson:
		return r.Person
	case ByType:
		return r.Type
	case ByDate:
		return r.Date
	case ByWeek:
		return weekEndOf(r)
	}
	return ""
}

func relevantYear(r ContributionRecord, dim Dimension) int {
	if dim == ByWeek {
		return YearOf(weekEndOf(r))
	}
	return r.Year
}

// weekEndOf trusts the stored settlement key and recomputes it from the date
// only when a record somehow lacks one.
func weekEndOf(r ContributionRecord) string {
	if r.WeekEnd != "" {
		return r.WeekEnd
	}
	we, err := SettlementKey(r.Date)
	if err != nil {
		return ""
	}
	return we
}

func groupSum(records []ContributionRecord, dim Dimension) map[string]int64 {
	m := make(map[string]int64)
	for _, r := range records {
		m[GroupKey(r, dim)] += r.Amount
	}
	return m
}

// breakdown renders the secondary grouping for one report row: categories
// for a person (top 4), contributors for a category (top 3), and the full
// category split for a date or settlement week.
func breakdown(pool []ContributionRecord, dim Dimension, key string) string {
	var subDim Dimension
	limit := unlimitedBreakdown
	switch dim {
	case ByPerson:
		subDim, limit = ByType, topTypesPerPerson
	case ByType:
		subDim, limit = ByPerson, topPersonsPerType
	default:
		subDim = ByType
	}

	sub := make(map[string]int64)
	for _, r := range pool {
		if GroupKey(r, dim) != key {
			continue
		}
		sub[GroupKey(r, subDim)] += r.Amount
	}
	if len(sub) == 0 {
		return ""
	}

	keys := sortedKeys(sub)
	sort.SliceStable(keys, func(i, j int) bool { return sub[keys[i]] > sub[keys[j]] })
	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + " " + FormatAmount(sub[k])
	}
	return strings.Join(parts, breakdownSep)
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
