package core

import (
	"math"
	"testing"
	"time"
)

func TestNewIDIsUnique(t *testing.T) {
	a, b := NewID(), NewID()
	if a == b {
		t.Error("two generated IDs collided")
	}
	if a.IsEmpty() {
		t.Error("generated ID is empty")
	}
}

func TestParseProductName(t *testing.T) {
	if _, err := ParseProductName("ndvi_trend_stats"); err != nil {
		t.Fatal(err)
	}
	if _, err := ParseProductName("   "); err == nil {
		t.Error("expected an error for a blank name")
	}
}

func TestParseRunID(t *testing.T) {
	if _, err := ParseRunID(""); err == nil {
		t.Error("expected an error for an empty run ID")
	}
}

func TestTimestampOrdering(t *testing.T) {
	early := NewTimestamp(time.Date(1990, time.June, 1, 0, 0, 0, 0, time.UTC))
	late := NewTimestamp(time.Date(1995, time.June, 1, 0, 0, 0, 0, time.UTC))

	if !early.Before(late) || late.Before(early) {
		t.Error("Before is inconsistent")
	}
	if !late.After(early) {
		t.Error("After is inconsistent")
	}
	if early.Year() != 1990 {
		t.Errorf("year = %d", early.Year())
	}
}

func TestTimestampNormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("CST", -6*3600)
	ts := NewTimestamp(time.Date(2000, time.January, 1, 0, 0, 0, 0, loc))
	if ts.Time().Location() != time.UTC {
		t.Error("timestamp not normalized to UTC")
	}
}

func TestFractionalYears(t *testing.T) {
	epoch := time.Date(1990, time.January, 1, 0, 0, 0, 0, time.UTC)
	ts := NewTimestamp(epoch.AddDate(2, 0, 0))

	got := ts.FractionalYears(epoch)
	if math.Abs(got-2) > 0.01 {
		t.Errorf("fractional years = %g, want about 2", got)
	}
	if NewTimestamp(epoch).FractionalYears(epoch) != 0 {
		t.Error("epoch should map to 0")
	}
}

func TestMidYear(t *testing.T) {
	ts := MidYear(1992)
	if ts.Year() != 1992 || ts.Time().Month() != time.July {
		t.Errorf("mid-year = %v", ts.Time())
	}
}
