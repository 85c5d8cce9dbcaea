package model

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestParseTimeOfDay(t *testing.T) {
	got, err := ParseTimeOfDay(" 15:00 ")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got != (TimeOfDay{Hour: 15}) || got.String() != "15:00" {
		t.Fatalf("unexpected time of day: %+v", got)
	}
	for _, bad := range []string{"", "1500", "24:00", "12:60", "ab:cd"} {
		if _, err := ParseTimeOfDay(bad); !errors.Is(err, ErrInvalidTimeOfDay) {
			t.Fatalf("expected ErrInvalidTimeOfDay for %q, got %v", bad, err)
		}
	}
}

func TestTimeOfDayReached(t *testing.T) {
	threshold := TimeOfDay{Hour: 15}
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local)
	if threshold.Reached(day.Add(14*time.Hour + 59*time.Minute)) {
		t.Fatal("14:59 should not reach 15:00")
	}
	if !threshold.Reached(day.Add(15 * time.Hour)) {
		t.Fatal("15:00 should reach 15:00")
	}
}

func TestTimeOfDayJSON(t *testing.T) {
	st := SpecialTask{Level: 2, StartTime: TimeOfDay{Hour: 9, Minute: 5}}
	raw, err := json.Marshal(st)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back SpecialTask
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != st {
		t.Fatalf("got %+v, want %+v", back, st)
	}
}

func TestDayKeyAndSameDay(t *testing.T) {
	a := time.Date(2026, 3, 1, 23, 59, 0, 0, time.UTC)
	b := a.Add(2 * time.Minute)
	if DayKey(a) != "2026-03-01" || DayKey(b) != "2026-03-02" {
		t.Fatalf("unexpected day keys: %s %s", DayKey(a), DayKey(b))
	}
	if SameDay(a, b) {
		t.Fatal("expected different days")
	}
	if !SameDay(a, a.Add(-time.Hour)) {
		t.Fatal("expected same day")
	}
}
