package climate

import (
	"errors"
	"testing"
	"time"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	v, err := ParseDate(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return v
}

func TestWindowStartUsesCalendarDays(t *testing.T) {
	cases := []struct {
		latest string
		want   string
	}{
		// 2016-02-29 lies inside the window, so the start moves one day forward.
		{"2016-03-01", "2015-03-02"},
		{"2016-02-29", "2015-03-01"},
		{"2017-08-23", "2016-08-23"},
		{"2013-01-01", "2012-01-02"},
	}
	for _, tc := range cases {
		got := FormatDate(WindowStart(mustDate(t, tc.latest)))
		if got != tc.want {
			t.Errorf("WindowStart(%s) = %s, want %s", tc.latest, got, tc.want)
		}
	}
}

func TestParseDateRejectsMalformed(t *testing.T) {
	for _, s := range []string{"", "2017-8-1", "2017-02-30", "yesterday", "2017-08-21T00:00:00Z"} {
		if _, err := ParseDate(s); !errors.Is(err, ErrMalformedDate) {
			t.Errorf("ParseDate(%q): expected ErrMalformedDate, got %v", s, err)
		}
	}
}

func TestParseDateRange(t *testing.T) {
	r, err := ParseDateRange("2017-08-01", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.End != nil {
		t.Fatal("expected open-ended range")
	}
	if !r.Contains(mustDate(t, "2099-01-01")) {
		t.Fatal("open range should contain any later date")
	}
	if r.Contains(mustDate(t, "2017-07-31")) {
		t.Fatal("range should not contain dates before start")
	}

	r, err = ParseDateRange("2017-08-01", "2017-08-03")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, d := range []string{"2017-08-01", "2017-08-02", "2017-08-03"} {
		if !r.Contains(mustDate(t, d)) {
			t.Errorf("expected %s inside inclusive range", d)
		}
	}
	if r.Contains(mustDate(t, "2017-08-04")) {
		t.Fatal("range should not contain dates after end")
	}

	// Reversed bounds parse fine and match nothing.
	r, err = ParseDateRange("2017-08-03", "2017-08-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Contains(mustDate(t, "2017-08-02")) {
		t.Fatal("reversed range should be empty")
	}

	if _, err := ParseDateRange("2017-08-01", "08/03/2017"); !errors.Is(err, ErrMalformedDate) {
		t.Fatalf("expected ErrMalformedDate for bad end, got %v", err)
	}
}
