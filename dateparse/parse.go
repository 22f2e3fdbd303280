package dateparse

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/relvacode/iso8601"
	"github.com/sosodev/duration"
)

var ErrInvalidExpression = errors.New("invalid time expression")

type unit int

const (
	unitSecond unit = iota
	unitMinute
	unitHour
	unitDay
	unitWeek
	unitMonth
	unitQuarter
	unitYear
)

var unitNames = map[string]unit{
	"s": unitSecond, "sec": unitSecond, "secs": unitSecond, "second": unitSecond, "seconds": unitSecond,
	"m": unitMinute, "min": unitMinute, "mins": unitMinute, "minute": unitMinute, "minutes": unitMinute,
	"h": unitHour, "hr": unitHour, "hrs": unitHour, "hour": unitHour, "hours": unitHour,
	"d": unitDay, "day": unitDay, "days": unitDay,
	"w": unitWeek, "week": unitWeek, "weeks": unitWeek,
	"mon": unitMonth, "month": unitMonth, "months": unitMonth,
	"q": unitQuarter, "qtr": unitQuarter, "quarter": unitQuarter, "quarters": unitQuarter,
	"y": unitYear, "yr": unitYear, "yrs": unitYear, "year": unitYear, "years": unitYear,
}

// Zone-less layouts, interpreted in the location of the reference time.
var layouts = []string{
	"01/02/2006:15:04:05",
	"01/02/2006",
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
}

type Range struct {
	Earliest time.Time
	Latest   time.Time
}

// Parse resolves expr against now. Relative expressions are a sequence of
// signed offsets ("-1d", "+30m", "-PT2H") and snaps ("@d") applied left to
// right, optionally prefixed by "now".
func Parse(expr string, now time.Time) (time.Time, error) {
	s := strings.TrimSpace(expr)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty expression", ErrInvalidExpression)
	}

	if len(s) >= 3 && strings.EqualFold(s[:3], "now") {
		return parseRelative(s[3:], now, expr)
	}
	switch s[0] {
	case '-', '+', '@':
		return parseRelative(s, now, expr)
	}

	return parseAbsolute(s, now.Location())
}

// ParseRange parses a dashboard earliest/latest pair. An empty earliest means
// the zero time and an empty latest means now.
func ParseRange(earliest, latest string, now time.Time) (Range, error) {
	var r Range
	var err error

	if strings.TrimSpace(earliest) != "" {
		if r.Earliest, err = Parse(earliest, now); err != nil {
			return Range{}, err
		}
	}

	r.Latest = now
	if strings.TrimSpace(latest) != "" {
		if r.Latest, err = Parse(latest, now); err != nil {
			return Range{}, err
		}
	}

	if r.Earliest.After(r.Latest) {
		return Range{}, fmt.Errorf("%w: earliest %q is after latest %q", ErrInvalidExpression, earliest, latest)
	}
	return r, nil
}

func parseRelative(s string, now time.Time, expr string) (time.Time, error) {
	t := now
	for len(s) > 0 {
		switch c := s[0]; c {
		case '-', '+':
			sign := 1
			if c == '-' {
				sign = -1
			}
			token, rest := nextToken(s[1:])
			next, err := applyOffset(t, sign, token)
			if err != nil {
				return time.Time{}, fmt.Errorf("%w: %q: %v", ErrInvalidExpression, expr, err)
			}
			t, s = next, rest

		case '@':
			token, rest := nextToken(s[1:])
			u, ok := lookupUnit(token)
			if !ok {
				return time.Time{}, fmt.Errorf("%w: %q: unknown snap unit %q", ErrInvalidExpression, expr, token)
			}
			t, s = snap(t, u), rest

		default:
			return time.Time{}, fmt.Errorf("%w: %q: unexpected %q", ErrInvalidExpression, expr, s)
		}
	}
	return t, nil
}

// lookupUnit matches unit names case-insensitively, except that a bare "M"
// is rejected: dashboards disagree on whether it means minutes or months.
func lookupUnit(name string) (unit, bool) {
	if u, ok := unitNames[name]; ok {
		return u, true
	}
	if name == "M" {
		return 0, false
	}
	u, ok := unitNames[strings.ToLower(name)]
	return u, ok
}

// nextToken splits s at the next offset or snap marker.
func nextToken(s string) (string, string) {
	if i := strings.IndexAny(s, "+-@"); i >= 0 {
		return s[:i], s[i:]
	}
	return s, ""
}

func applyOffset(t time.Time, sign int, token string) (time.Time, error) {
	if token == "" {
		return time.Time{}, errors.New("missing offset")
	}

	if token[0] == 'P' || token[0] == 'p' {
		d, err := duration.Parse(strings.ToUpper(token))
		if err != nil {
			return time.Time{}, err
		}
		return t.Add(time.Duration(sign) * d.ToTimeDuration()), nil
	}

	digits := len(token) - len(strings.TrimLeft(token, "0123456789"))
	n := 1
	if digits > 0 {
		var err error
		if n, err = strconv.Atoi(token[:digits]); err != nil {
			return time.Time{}, err
		}
	}

	name := token[digits:]
	u, ok := lookupUnit(name)
	if !ok {
		return time.Time{}, fmt.Errorf("unknown unit %q", name)
	}

	n *= sign
	switch u {
	case unitSecond:
		return t.Add(time.Duration(n) * time.Second), nil
	case unitMinute:
		return t.Add(time.Duration(n) * time.Minute), nil
	case unitHour:
		return t.Add(time.Duration(n) * time.Hour), nil
	case unitDay:
		return t.AddDate(0, 0, n), nil
	case unitWeek:
		return t.AddDate(0, 0, 7*n), nil
	case unitMonth:
		return t.AddDate(0, n, 0), nil
	case unitQuarter:
		return t.AddDate(0, 3*n, 0), nil
	default:
		return t.AddDate(n, 0, 0), nil
	}
}

// snap truncates t to the start of u in t's location. Weeks start on Sunday.
func snap(t time.Time, u unit) time.Time {
	y, mo, d := t.Date()
	loc := t.Location()

	switch u {
	case unitSecond:
		return time.Date(y, mo, d, t.Hour(), t.Minute(), t.Second(), 0, loc)
	case unitMinute:
		return time.Date(y, mo, d, t.Hour(), t.Minute(), 0, 0, loc)
	case unitHour:
		return time.Date(y, mo, d, t.Hour(), 0, 0, 0, loc)
	case unitDay:
		return time.Date(y, mo, d, 0, 0, 0, 0, loc)
	case unitWeek:
		return time.Date(y, mo, d-int(t.Weekday()), 0, 0, 0, 0, loc)
	case unitMonth:
		return time.Date(y, mo, 1, 0, 0, 0, 0, loc)
	case unitQuarter:
		return time.Date(y, (mo-1)/3*3+1, 1, 0, 0, 0, 0, loc)
	default:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
	}
}

func parseAbsolute(s string, loc *time.Location) (time.Time, error) {
	if strings.Trim(s, "0123456789") == "" {
		secs, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q: %v", ErrInvalidExpression, s, err)
		}
		return time.Unix(secs, 0).In(loc), nil
	}

	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}

	t, err := iso8601.Parse([]byte(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidExpression, s)
	}
	return t, nil
}
