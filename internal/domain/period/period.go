// Package period maps logical period selectors to concrete date ranges.
// Dates are YYYY-MM-DD strings as the backend expects them.
package period

import (
	"errors"
	"strings"
	"time"
)

// DateLayout is the wire format for dates.
const DateLayout = "2006-01-02"

const daysPerWeek = 7

// Kind selects a dashboard range.
type Kind string

const (
	Today  Kind = "today"
	Week   Kind = "week"
	Custom Kind = "custom"
)

// Named ranking periods.
const (
	ThisWeek  = "this_week"
	LastWeek  = "last_week"
	ThisMonth = "this_month"
	LastMonth = "last_month"
)

var (
	ErrUnknownKind   = errors.New("unknown range kind")
	ErrUnknownPeriod = errors.New("unknown period")
	ErrMissingStart  = errors.New("custom range needs a start date")
)

// Range is an inclusive date range.
type Range struct {
	Start string `json:"start_date"`
	End   string `json:"end_date"`
}

// ParseKind parses a range selector, defaulting to Today when empty.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return Today, nil
	case Today, Week, Custom:
		return k, nil
	default:
		return "", ErrUnknownKind
	}
}

// Resolve maps a range kind to dates relative to now. For Custom the
// caller's dates are passed through uninterpreted and an empty end defaults
// to start. A custom range without a start is ErrMissingStart.
func Resolve(kind Kind, now time.Time, start, end string) (Range, error) {
	today := now.Format(DateLayout)
	switch kind {
	case Today:
		return Range{Start: today, End: today}, nil
	case Week:
		return Range{Start: WeekStart(now).Format(DateLayout), End: today}, nil
	case Custom:
		start = strings.TrimSpace(start)
		end = strings.TrimSpace(end)
		if start == "" {
			return Range{}, ErrMissingStart
		}
		if end == "" {
			end = start
		}
		return Range{Start: start, End: end}, nil
	default:
		return Range{}, ErrUnknownKind
	}
}

// WeekStart returns midnight of the Monday on or before t, in t's location.
func WeekStart(t time.Time) time.Time {
	wd := int(t.Weekday()) // Sunday = 0
	back := wd - 1
	if wd == 0 {
		back = daysPerWeek - 1
	}
	y, m, d := t.Date()
	return time.Date(y, m, d-back, 0, 0, 0, 0, t.Location())
}

// Named resolves a ranking period. Boundaries are calendar aligned
// (Monday-Sunday weeks, whole months). Weeks follow now's calendar date;
// months follow the UTC date. An empty name means LastWeek.
func Named(name string, now time.Time) (Range, error) {
	y, m, d := now.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	monday := WeekStart(day)
	uy, um, _ := now.UTC().Date()

	switch strings.ToLower(strings.TrimSpace(name)) {
	case ThisWeek:
		return span(monday, monday.AddDate(0, 0, daysPerWeek-1)), nil
	case "", LastWeek:
		lastMonday := monday.AddDate(0, 0, -daysPerWeek)
		return span(lastMonday, lastMonday.AddDate(0, 0, daysPerWeek-1)), nil
	case ThisMonth:
		first := time.Date(uy, um, 1, 0, 0, 0, 0, time.UTC)
		return span(first, first.AddDate(0, 1, -1)), nil
	case LastMonth:
		first := time.Date(uy, um-1, 1, 0, 0, 0, 0, time.UTC)
		return span(first, first.AddDate(0, 1, -1)), nil
	default:
		return Range{}, ErrUnknownPeriod
	}
}

// ISOWeek returns the ISO-8601 week number of t's calendar date.
func ISOWeek(t time.Time) int {
	_, w := t.ISOWeek()
	return w
}

// Label is the ranking header for a named period.
func Label(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case ThisWeek:
		return "This Week • Ranking"
	case ThisMonth:
		return "This Month • Ranking"
	case LastMonth:
		return "Last Month • Ranking"
	default:
		return "Last Week • Ranking"
	}
}

func span(start, end time.Time) Range {
	return Range{Start: start.Format(DateLayout), End: end.Format(DateLayout)}
}
