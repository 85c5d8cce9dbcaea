package countdown

import (
	"errors"
	"testing"
	"time"
)

var taipei = time.FixedZone("UTC+8", 8*3600)

func TestProjectNotScheduled(t *testing.T) {
	now := time.Date(2026, 2, 9, 10, 0, 0, 0, taipei)
	p := Project(nil, 60, 0, now, DisplaySameDay)
	if p.Status != StatusNotScheduled || p.DisplayText != NotScheduledText || p.CompletionAt != nil {
		t.Fatalf("unexpected projection for nil entry: %+v", p)
	}
	p = Project(&now, 0, 0, now, DisplaySameDay)
	if p.Status != StatusNotScheduled || p.CompletionAt != nil {
		t.Fatalf("unexpected projection for zero duration: %+v", p)
	}
}

func TestProjectFreshTaskScenario(t *testing.T) {
	entry := time.Date(2026, 2, 9, 10, 0, 0, 0, taipei)
	nominal := 2 * 1440

	p := Project(&entry, nominal, 0, entry.Add(24*time.Hour), DisplaySameDay)
	if p.Status != StatusPending {
		t.Fatalf("expected pending, got %s", p.Status)
	}
	if p.RemainingMinutes != 1440 {
		t.Fatalf("expected 1440 remaining, got %d", p.RemainingMinutes)
	}
	if p.DisplayText != "02/11 10:00" {
		t.Fatalf("expected next-day form, got %q", p.DisplayText)
	}

	p = Project(&entry, nominal, 0, entry.Add(48*time.Hour+time.Minute), DisplaySameDay)
	if p.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s", p.Status)
	}
	if p.CompletionAt == nil || !p.CompletionAt.Equal(entry.Add(48*time.Hour)) {
		t.Fatalf("expected completion instant kept, got %v", p.CompletionAt)
	}
}

func TestProjectSameDayAndFullPolicy(t *testing.T) {
	entry := time.Date(2026, 2, 9, 10, 0, 0, 0, taipei)
	now := entry
	p := Project(&entry, 90, 0, now, DisplaySameDay)
	if p.DisplayText != "11:30" {
		t.Fatalf("expected same-day short form, got %q", p.DisplayText)
	}
	p = Project(&entry, 90, 0, now, DisplayFull)
	if p.DisplayText != "02/09 11:30" {
		t.Fatalf("expected full form, got %q", p.DisplayText)
	}
}

func TestProjectAppliesDeductions(t *testing.T) {
	entry := time.Date(2026, 2, 9, 9, 0, 0, 0, taipei)
	p := Project(&entry, 3000, 120, entry, DisplayFull)
	want := entry.Add(2880 * time.Minute)
	if !p.CompletionAt.Equal(want) || p.RemainingMinutes != 2880 {
		t.Fatalf("unexpected deducted projection: %+v", p)
	}
	p = Project(&entry, 60, 120, entry, DisplayFull)
	if p.Status != StatusCompleted {
		t.Fatalf("expected over-deducted task to read completed, got %s", p.Status)
	}
}

func TestProjectMonotonic(t *testing.T) {
	entry := time.Date(2026, 2, 9, 9, 0, 0, 0, taipei)
	const nominal, deducted = 500, 40
	boundary := entry.Add((nominal - deducted) * time.Minute)
	prev := nominal + 1
	for step := 0; step <= 600; step++ {
		now := entry.Add(time.Duration(step)*time.Minute + 17*time.Second)
		p := Project(&entry, nominal, deducted, now, DisplaySameDay)
		if p.RemainingMinutes > prev {
			t.Fatalf("remaining increased at step %d: %d > %d", step, p.RemainingMinutes, prev)
		}
		prev = p.RemainingMinutes
		wantCompleted := !now.Before(boundary)
		if (p.Status == StatusCompleted) != wantCompleted {
			t.Fatalf("status %s at %v, boundary %v", p.Status, now, boundary)
		}
	}
	if p := Project(&entry, nominal, deducted, boundary, DisplaySameDay); p.Status != StatusCompleted {
		t.Fatalf("expected completed exactly at boundary, got %s", p.Status)
	}
}

func TestParseDisplayPolicy(t *testing.T) {
	if p, err := ParseDisplayPolicy(""); err != nil || p != DisplaySameDay {
		t.Fatalf("expected default sameday, got %q %v", p, err)
	}
	if p, err := ParseDisplayPolicy("FULL"); err != nil || p != DisplayFull {
		t.Fatalf("expected full, got %q %v", p, err)
	}
	if _, err := ParseDisplayPolicy("weekly"); !errors.Is(err, ErrInvalidDisplayPolicy) {
		t.Fatalf("expected ErrInvalidDisplayPolicy, got %v", err)
	}
}

func TestFormatRemainingAndProgress(t *testing.T) {
	if got := FormatRemaining(1440 + 125); got != "1d 2h 5m" {
		t.Fatalf("unexpected remaining text %q", got)
	}
	if got := FormatRemaining(45); got != "45m" {
		t.Fatalf("unexpected remaining text %q", got)
	}
	entry := time.Date(2026, 2, 9, 9, 0, 0, 0, taipei)
	if got := Progress(&entry, 120, 0, entry.Add(30*time.Minute)); got != 0.25 {
		t.Fatalf("expected 0.25 progress, got %v", got)
	}
	if got := Progress(&entry, 120, 0, entry.Add(5*time.Hour)); got != 1 {
		t.Fatalf("expected clamped progress, got %v", got)
	}
}

func TestProjectSaturatesHugeDurations(t *testing.T) {
	entry := time.Date(2026, 2, 9, 10, 0, 0, 0, taipei)
	now := entry.Add(time.Minute)
	p := Project(&entry, 200000*1440, 0, now, DisplayFull)
	if p.Status != StatusPending {
		t.Fatalf("expected pending for a 200000 day task, got %+v", p)
	}
	if p.RemainingMinutes <= 0 || !p.CompletionAt.After(now) {
		t.Fatalf("unexpected saturated projection: %+v", p)
	}
	if got := Progress(&entry, 200000*1440, 0, now); got < 0 || got > 0.001 {
		t.Fatalf("unexpected progress %f", got)
	}
}
