package domain

import (
	"fmt"
	"strings"
	"time"
)

type SortKey string

const (
	SortPopular    SortKey = "popular"
	SortNewest     SortKey = "newest"
	SortMostSaved  SortKey = "mostSaved"
	SortMostViewed SortKey = "mostViewed"
)

type TimeRange string

const (
	RangeAll   TimeRange = "all"
	RangeWeek  TimeRange = "week"
	RangeMonth TimeRange = "month"
	RangeYear  TimeRange = "year"
)

// Page size bounds for List.
const (
	DefaultPageSize = 12
	MaxPageSize     = 50
)

// ParseSortKey accepts the public sort names; empty means popular.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.TrimSpace(s)); k {
	case "":
		return SortPopular, nil
	case SortPopular, SortNewest, SortMostSaved, SortMostViewed:
		return k, nil
	}
	return "", fmt.Errorf("%w: unknown sort %q", ErrInvalidFilter, s)
}

// ParseTimeRange accepts the public range names; empty means all.
func ParseTimeRange(s string) (TimeRange, error) {
	switch r := TimeRange(strings.TrimSpace(s)); r {
	case "":
		return RangeAll, nil
	case RangeAll, RangeWeek, RangeMonth, RangeYear:
		return r, nil
	}
	return "", fmt.Errorf("%w: unknown time range %q", ErrInvalidFilter, s)
}

// Since returns the earliest creation time included by the range.
// ok is false for RangeAll.
func (r TimeRange) Since(now time.Time) (since time.Time, ok bool) {
	switch r {
	case RangeWeek:
		return now.AddDate(0, 0, -7), true
	case RangeMonth:
		return now.AddDate(0, -1, 0), true
	case RangeYear:
		return now.AddDate(-1, 0, 0), true
	}
	return time.Time{}, false
}

// ListFilters narrows a public stack listing.
type ListFilters struct {
	Search    string
	Sort      SortKey
	TimeRange TimeRange
}

// Normalize trims the search text and fills in default sort and range.
func (f ListFilters) Normalize() ListFilters {
	f.Search = strings.TrimSpace(f.Search)
	if f.Sort == "" {
		f.Sort = SortPopular
	}
	if f.TimeRange == "" {
		f.TimeRange = RangeAll
	}
	return f
}

// ClampPage bounds limit to [1, MaxPageSize] and offset to >= 0.
func ClampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
