// Package table holds the stateless derivations behind sortable tables:
// type-aware sorting, substring and equality filters, and ranking.
package table

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// ColumnType selects the comparator used by Sort.
type ColumnType int

const (
	String ColumnType = iota
	Number
	Time // HH:MM
)

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// All disables an equality filter.
const All = "ALL"

// Column describes how to read and compare one field of T.
type Column[T any] struct {
	Key  string
	Type ColumnType
	Get  func(T) string
}

// SortState is the single active sort of a table.
type SortState struct {
	Key string    `json:"key"`
	Dir Direction `json:"dir"`
}

// Toggle flips the direction when key is already active, otherwise it
// activates key ascending.
func (s SortState) Toggle(key string) SortState {
	if s.Key == key {
		if s.Dir == Asc {
			return SortState{Key: key, Dir: Desc}
		}
		return SortState{Key: key, Dir: Asc}
	}
	return SortState{Key: key, Dir: Asc}
}

// ParseDirection returns Desc for "desc" (any case) and Asc otherwise.
func ParseDirection(s string) Direction {
	if strings.EqualFold(strings.TrimSpace(s), string(Desc)) {
		return Desc
	}
	return Asc
}

// Lookup finds a column by key.
func Lookup[T any](cols []Column[T], key string) (Column[T], bool) {
	for _, c := range cols {
		if c.Key == key {
			return c, true
		}
	}
	return Column[T]{}, false
}

var clock = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)

// ParseTime converts HH:MM to minutes after midnight.
func ParseTime(s string) (int, bool) {
	m := clock.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, false
	}
	hh, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])
	if hh > 23 || mm > 59 {
		return 0, false
	}
	return hh*60 + mm, true
}

// ParseNumber parses a finite number. Empty text is not a number.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Sort returns a stably sorted copy of rows. For Number and Time columns
// unparsable values sort last in both directions.
func Sort[T any](rows []T, col Column[T], dir Direction) []T {
	out := slices.Clone(rows)
	if col.Get == nil {
		return out
	}
	mul := 1
	if dir == Desc {
		mul = -1
	}
	slices.SortStableFunc(out, func(a, b T) int {
		av, bv := col.Get(a), col.Get(b)
		switch col.Type {
		case Time:
			am, aok := ParseTime(av)
			bm, bok := ParseTime(bv)
			if c, done := missingLast(aok, bok); done {
				return c
			}
			return (am - bm) * mul
		case Number:
			an, aok := ParseNumber(av)
			bn, bok := ParseNumber(bv)
			if c, done := missingLast(aok, bok); done {
				return c
			}
			switch {
			case an < bn:
				return -mul
			case an > bn:
				return mul
			}
			return 0
		default:
			return strings.Compare(
				strings.ToLower(strings.TrimSpace(av)),
				strings.ToLower(strings.TrimSpace(bv)),
			) * mul
		}
	})
	return out
}

func missingLast(aok, bok bool) (int, bool) {
	switch {
	case !aok && !bok:
		return 0, true
	case !aok:
		return 1, true
	case !bok:
		return -1, true
	}
	return 0, false
}

// FilterContains keeps rows whose field contains q, ignoring case.
// An empty q keeps everything.
func FilterContains[T any](rows []T, get func(T) string, q string) []T {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return rows
	}
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if strings.Contains(strings.ToLower(get(r)), q) {
			out = append(out, r)
		}
	}
	return out
}

// FilterEqual keeps rows whose field equals value, ignoring case.
// An empty value or All keeps everything.
func FilterEqual[T any](rows []T, get func(T) string, value string) []T {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, All) {
		return rows
	}
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if strings.EqualFold(strings.TrimSpace(get(r)), value) {
			out = append(out, r)
		}
	}
	return out
}

// Ranked pairs a row with its 1-based position.
type Ranked[T any] struct {
	Rank int `json:"rank"`
	Row  T   `json:"row"`
}

// Rank numbers rows by position. Ties keep the order they arrive in.
func Rank[T any](rows []T) []Ranked[T] {
	out := make([]Ranked[T], len(rows))
	for i, r := range rows {
		out[i] = Ranked[T]{Rank: i + 1, Row: r}
	}
	return out
}
