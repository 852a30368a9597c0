package pipeline

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Schedule is a parsed 5-field cron expression:
//
//	minute hour day-of-month month day-of-week
//
// Each field accepts "*", a number, a range "a-b", a step "*/n" or "a-b/n",
// and comma-separated lists of those. Day-of-week 0 is Sunday.
type Schedule struct {
	expr   string
	fields [5]cronField
}

// cronField is the set of values one field matches.
type cronField map[int]bool

var fieldBounds = [5]struct {
	name     string
	min, max int
}{
	{"minute", 0, 59},
	{"hour", 0, 23},
	{"day-of-month", 1, 31},
	{"month", 1, 12},
	{"day-of-week", 0, 6},
}

// ParseSchedule parses expr.
func ParseSchedule(expr string) (Schedule, error) {
	parts := strings.Fields(expr)
	if len(parts) != 5 {
		return Schedule{}, fmt.Errorf("cron %q: want 5 fields, got %d", expr, len(parts))
	}
	s := Schedule{expr: expr}
	for i, p := range parts {
		b := fieldBounds[i]
		f, err := parseField(p, b.min, b.max)
		if err != nil {
			return Schedule{}, fmt.Errorf("cron %q: %s: %w", expr, b.name, err)
		}
		s.fields[i] = f
	}
	return s, nil
}

func parseField(field string, lo, hi int) (cronField, error) {
	out := cronField{}
	for _, term := range strings.Split(field, ",") {
		rangePart, step := term, 1
		if i := strings.IndexByte(term, '/'); i >= 0 {
			n, err := strconv.Atoi(term[i+1:])
			if err != nil || n < 1 {
				return nil, fmt.Errorf("invalid step in %q", term)
			}
			rangePart, step = term[:i], n
		}

		from, to := lo, hi
		switch {
		case rangePart == "*":
		case strings.Contains(rangePart, "-"):
			a, b, _ := strings.Cut(rangePart, "-")
			var err1, err2 error
			from, err1 = strconv.Atoi(a)
			to, err2 = strconv.Atoi(b)
			if err1 != nil || err2 != nil {
				return nil, fmt.Errorf("invalid range %q", rangePart)
			}
		default:
			v, err := strconv.Atoi(rangePart)
			if err != nil {
				return nil, fmt.Errorf("invalid value %q", rangePart)
			}
			from, to = v, v
			if step > 1 {
				to = hi
			}
		}
		if from < lo || to > hi || from > to {
			return nil, fmt.Errorf("%q out of range %d-%d", term, lo, hi)
		}
		for v := from; v <= to; v += step {
			out[v] = true
		}
	}
	return out, nil
}

func (s Schedule) String() string { return s.expr }

func (s Schedule) matches(t time.Time) bool {
	return s.fields[0][t.Minute()] &&
		s.fields[1][t.Hour()] &&
		s.fields[2][t.Day()] &&
		s.fields[3][int(t.Month())] &&
		s.fields[4][int(t.Weekday())]
}

// Next returns the first minute strictly after after that matches. It
// searches at most one year ahead.
func (s Schedule) Next(after time.Time) (time.Time, error) {
	if s.fields[0] == nil {
		return time.Time{}, fmt.Errorf("empty schedule")
	}
	t := after.Truncate(time.Minute).Add(time.Minute)
	limit := after.AddDate(1, 0, 1)
	for t.Before(limit) {
		if s.matches(t) {
			return t, nil
		}
		t = t.Add(time.Minute)
	}
	return time.Time{}, fmt.Errorf("cron %q: no match within a year", s.expr)
}
