// Package coerce converts raw registry cells into typed values. Every
// function is pure and reports failure as an error; callers decide the
// fallback value.
package coerce

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrEmpty is returned for blank input.
var ErrEmpty = errors.New("coerce: empty value")

// DateLayout is the output form of a parsed birth date.
const DateLayout = "2006-01-02"

// birthDateLayouts lists accepted birth date forms in precedence order:
// ISO year-first, then day-before-month, then month names. A "2" or "1"
// element accepts one or two digits.
var birthDateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"20060102",

	"2/1/2006",
	"2-1-2006",
	"2.1.2006",
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"2-1-2006 15:04:05",
	"2/1/06",
	"2-1-06",

	"2 January 2006",
	"2 Jan 2006",
	"2-Jan-2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2 2006",
}

// monthFirstLayouts are only consulted once every day-first reading has
// failed, e.g. "12/25/1990" where 25 cannot be a month.
var monthFirstLayouts = []string{
	"1/2/2006",
	"1-2-2006",
	"1.2.2006",
	"1/2/06",
}

var monthWord = regexp.MustCompile(`[A-Za-z]+`)

// Indonesian month names and abbreviations that differ from English.
var idMonths = map[string]string{
	"januari":  "January",
	"februari": "February",
	"pebruari": "February",
	"maret":    "March",
	"mei":      "May",
	"juni":     "June",
	"juli":     "July",
	"agustus":  "August",
	"agu":      "Aug",
	"agt":      "Aug",
	"oktober":  "October",
	"okt":      "Oct",
	"desember": "December",
	"des":      "Dec",
}

func translateMonths(s string) string {
	return monthWord.ReplaceAllStringFunc(s, func(w string) string {
		if en, ok := idMonths[strings.ToLower(w)]; ok {
			return en
		}
		return w
	})
}

func parseFirst(s string, layouts []string) (time.Time, bool) {
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// BirthDate parses a birth date preferring day-before-month ordering and
// returns it as YYYY-MM-DD.
func BirthDate(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", ErrEmpty
	}
	s = translateMonths(s)
	if t, ok := parseFirst(s, birthDateLayouts); ok {
		return t.Format(DateLayout), nil
	}
	if t, ok := parseFirst(s, monthFirstLayouts); ok {
		return t.Format(DateLayout), nil
	}
	return "", fmt.Errorf("coerce: unrecognised date %q", raw)
}

type tsLayout struct {
	layout string
	zoned  bool
}

// timestampLayouts lists accepted upload timestamp forms in precedence
// order. Fractional seconds are accepted after any seconds field.
var timestampLayouts = []tsLayout{
	{time.RFC3339, true},
	{"2006-01-02 15:04:05Z07:00", true},
	{"2006-01-02T15:04:05Z0700", true},
	{"2006-01-02 15:04:05 -0700", true},
	{"2006-01-02T15:04:05", false},
	{"2006-01-02 15:04:05", false},
	{"2006-01-02T15:04", false},
	{"2006-01-02 15:04", false},
	{"2006-01-02", false},
	{"2006/01/02 15:04:05", false},
	{"2/1/2006 15:04:05", false},
	{"2/1/2006 15:04", false},
	{"2/1/2006", false},
	{"2-1-2006 15:04:05", false},
	{"2-1-2006", false},
}

// Timestamp parses an upload timestamp and re-emits it as ISO-8601:
// YYYY-MM-DDTHH:MM:SS, with six fractional digits when sub-second
// precision is present and a numeric offset when the input carried one.
func Timestamp(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", ErrEmpty
	}
	for _, l := range timestampLayouts {
		t, err := time.Parse(l.layout, s)
		if err != nil {
			continue
		}
		out := "2006-01-02T15:04:05"
		if t.Nanosecond()/1000 != 0 {
			out += ".000000"
		}
		if l.zoned {
			out += "-07:00"
		}
		return t.Format(out), nil
	}
	return "", fmt.Errorf("coerce: unrecognised timestamp %q", raw)
}

// Version parses a floating point number and truncates it toward zero, so
// "3.0" and "3.9" both yield 3.
func Version(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, ErrEmpty
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f >= math.MaxInt64 || f <= math.MinInt64 {
		return 0, fmt.Errorf("coerce: version %q out of range", raw)
	}
	return int(f), nil
}

// NullableString maps blank input to nil and passes anything else through.
func NullableString(raw string) *string {
	if raw == "" {
		return nil
	}
	return &raw
}
