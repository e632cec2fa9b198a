package survey

import (
	"testing"
	"time"
)

func TestTourStatusDerivation(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour).Format(time.RFC3339)
	future := now.Add(time.Hour).Format(time.RFC3339)

	cases := []struct {
		name string
		tour Tour
		want TourStatus
	}{
		{"end date set wins", Tour{StartDate: future, EndDate: past}, TourCompleted},
		{"started in past", Tour{StartDate: past}, TourInProgress},
		{"starts in future", Tour{StartDate: future}, TourPending},
		{"no dates", Tour{}, TourPending},
		{"unparseable start", Tour{StartDate: "not-a-date"}, TourPending},
	}

	for _, tc := range cases {
		if got := tc.tour.Status(now); got != tc.want {
			t.Fatalf("%s: Status() = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestParseServerTimeLayouts(t *testing.T) {
	for _, value := range []string{
		"2025-06-15T12:00:00Z",
		"2025-06-15T12:00:00.000000Z",
		"2025-06-15 12:00:00",
		"2025-06-15",
	} {
		if _, err := ParseServerTime(value); err != nil {
			t.Fatalf("ParseServerTime(%q) error = %v", value, err)
		}
	}

	if _, err := ParseServerTime("yesterday"); err == nil {
		t.Fatalf("ParseServerTime() expected error for junk input")
	}
}
