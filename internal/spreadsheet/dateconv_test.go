package spreadsheet

import (
	"strconv"
	"testing"
	"time"
)

func TestConvertCellDateSerials(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1", "1900-01-01"},
		{"59", "1900-02-28"},
		// Serial 60 is the phantom 1900-02-29; it collapses onto the 28th.
		{"60", "1900-02-28"},
		{"61", "1900-03-01"},
		{"45688", "2025-01-31"},
		{"45688.75", "2025-01-31"},
	}

	for _, tc := range cases {
		got, ok := ConvertCellDate(tc.in)
		if !ok {
			t.Fatalf("ConvertCellDate(%q) reported failure", tc.in)
		}
		if got != tc.want {
			t.Errorf("ConvertCellDate(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestConvertCellDateSerialLeapDayCompensation(t *testing.T) {
	// For every serial above 59 the result is the naive epoch calculation
	// minus exactly one day.
	epoch := time.Date(1899, time.December, 31, 0, 0, 0, 0, time.UTC)
	for _, serial := range []int{60, 100, 1000, 36526, 45688} {
		got, ok := ConvertCellDate(strconv.Itoa(serial))
		if !ok {
			t.Fatalf("serial %d reported failure", serial)
		}
		want := epoch.AddDate(0, 0, serial-1).Format("2006-01-02")
		if got != want {
			t.Errorf("serial %d = %q, want naive-minus-one %q", serial, got, want)
		}
		if _, err := time.Parse("2006-01-02", got); err != nil {
			t.Errorf("serial %d produced invalid date %q", serial, got)
		}
	}
}

func TestConvertCellDateISOStrings(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2024-06-01", "2024-06-01"},
		// Date portion kept verbatim, no timezone reinterpretation.
		{"2024-06-01T23:30:00Z", "2024-06-01"},
		{"2024-06-01 15:04:05", "2024-06-01"},
	}

	for _, tc := range cases {
		got, ok := ConvertCellDate(tc.in)
		if !ok || got != tc.want {
			t.Errorf("ConvertCellDate(%q) = (%q, %v), want (%q, true)", tc.in, got, ok, tc.want)
		}
	}
}

func TestConvertCellDateGenericLayouts(t *testing.T) {
	got, ok := ConvertCellDate("06/15/2024")
	if !ok || got != "2024-06-15" {
		t.Errorf("ConvertCellDate(06/15/2024) = (%q, %v), want (2024-06-15, true)", got, ok)
	}
}

func TestConvertCellDateRejectsImpossibleISODates(t *testing.T) {
	// Structurally ISO but not on the calendar.
	for _, in := range []string{"9999-99-99", "2024-02-30", "2024-13-01", "2024-00-10"} {
		got, ok := ConvertCellDate(in)
		if ok || got != "" {
			t.Errorf("ConvertCellDate(%q) = (%q, %v), want empty failure", in, got, ok)
		}
	}

	if got, ok := ConvertCellDate("2024-02-29"); !ok || got != "2024-02-29" {
		t.Errorf("ConvertCellDate(2024-02-29) = (%q, %v), want real leap day accepted", got, ok)
	}
}

func TestConvertCellDateDegradesToEmpty(t *testing.T) {
	for _, in := range []string{"", "   ", "not a date", "0", "-5", "99999999"} {
		got, ok := ConvertCellDate(in)
		if ok || got != "" {
			t.Errorf("ConvertCellDate(%q) = (%q, %v), want empty failure", in, got, ok)
		}
	}
}
