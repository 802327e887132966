package store

import (
	"strings"
	"time"
)

// TimeRange is a relative window applied against a complaint's creation
// timestamp.
type TimeRange string

const (
	TimeRangeWeek  TimeRange = "week"
	TimeRangeMonth TimeRange = "month"
	TimeRangeAll   TimeRange = "all"
)

const (
	defaultListLimit    = 20
	defaultSummaryLimit = 10
	maxLimit            = 100
)

// ComplaintFilter is an optional, partially-specified predicate set for
// List. Zero values mean "no constraint": an empty IssueType or Location
// adds no predicate, and the UI sentinel "all" is treated the same as
// absent for IssueType.
type ComplaintFilter struct {
	IssueType string
	Location  string
	TimeRange TimeRange
	Limit     int
	Offset    int
}

// SummaryFilter selects the complaints fed to the summary generator.
type SummaryFilter struct {
	Location  string
	TimeRange TimeRange
	Limit     int
}

func (f ComplaintFilter) normalized() ComplaintFilter {
	f.IssueType = normalizeIssueType(f.IssueType)
	f.Location = strings.TrimSpace(f.Location)
	f.Limit = clampLimit(f.Limit, defaultListLimit)
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

func (f SummaryFilter) normalized() SummaryFilter {
	f.Location = strings.TrimSpace(f.Location)
	f.Limit = clampLimit(f.Limit, defaultSummaryLimit)
	return f
}

// normalizeIssueType maps the wire-level "all" sentinel and blank values to
// absent. Matching is exact otherwise; the category list is advisory only.
func normalizeIssueType(v string) string {
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, string(TimeRangeAll)) {
		return ""
	}
	return v
}

func clampLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

// cutoff returns the lower creation-time bound for a range. The second
// return is false for "all", absent, or unrecognized values, which add no
// bound.
func (r TimeRange) cutoff(now time.Time) (time.Time, bool) {
	switch r {
	case TimeRangeWeek:
		return now.Add(-7 * 24 * time.Hour), true
	case TimeRangeMonth:
		return now.Add(-30 * 24 * time.Hour), true
	default:
		return time.Time{}, false
	}
}
