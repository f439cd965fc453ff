package utils

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-date form exchanged with the shop API.
const DateLayout = "2006-01-02"

// Now is swapped in tests.
var Now = time.Now

// Today returns the local calendar date as YYYY-MM-DD.
func Today() string {
	return Now().Format(DateLayout)
}

func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if len(value) >= len(DateLayout) {
		value = value[:len(DateLayout)]
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", value)
	}
	return t, nil
}

// IsFutureDate reports whether the calendar date lies after today.
func IsFutureDate(value string) bool {
	t, err := ParseDate(value)
	if err != nil {
		return false
	}
	return t.Format(DateLayout) > Today()
}

// FormatDisplayDate renders a date (or timestamp) as dd/mm/yyyy; unparseable input is returned as is.
func FormatDisplayDate(value string) string {
	t, err := ParseDate(value)
	if err != nil {
		return value
	}
	return t.Format("02/01/2006")
}
