package utils

import (
	"testing"
	"time"
)

func TestFormatDisplayDate(t *testing.T) {
	cases := []struct {
		in       string
		expected string
	}{
		{"2024-05-01", "01/05/2024"},
		{"2024-05-01T14:30:00.000Z", "01/05/2024"},
		{"not a date", "not a date"},
	}
	for _, tc := range cases {
		if got := FormatDisplayDate(tc.in); got != tc.expected {
			t.Fatalf("FormatDisplayDate(%q) expected %s, got %s", tc.in, tc.expected, got)
		}
	}
}

func TestIsFutureDate(t *testing.T) {
	Now = func() time.Time { return time.Date(2024, 5, 10, 12, 0, 0, 0, time.Local) }
	defer func() { Now = time.Now }()

	if IsFutureDate("2024-05-10") {
		t.Fatalf("today must not be a future date")
	}
	if !IsFutureDate("2024-05-11") {
		t.Fatalf("tomorrow must be a future date")
	}
	if IsFutureDate("2023-12-31") {
		t.Fatalf("past date must not be a future date")
	}
}
