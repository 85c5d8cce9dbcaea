// Package countdown projects a task's anchor, nominal duration and
// accumulated deductions onto a completion instant and display text.
package countdown

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	NotScheduledText = "N/A"
	CompletedText    = "done"

	shortLayout = "15:04"
	fullLayout  = "01/02 15:04"
)

var ErrInvalidDisplayPolicy = errors.New("countdown: invalid display policy")

type Status string

const (
	StatusNotScheduled Status = "not_scheduled"
	StatusPending      Status = "pending"
	StatusCompleted    Status = "completed"
)

// DisplayPolicy selects how pending completion instants are rendered.
type DisplayPolicy string

const (
	// DisplaySameDay renders HH:MM for completions later today, MM/DD HH:MM otherwise.
	DisplaySameDay DisplayPolicy = "sameday"
	// DisplayFull always renders MM/DD HH:MM.
	DisplayFull DisplayPolicy = "full"
)

func ParseDisplayPolicy(raw string) (DisplayPolicy, error) {
	switch p := DisplayPolicy(strings.ToLower(strings.TrimSpace(raw))); p {
	case DisplaySameDay, DisplayFull:
		return p, nil
	case "":
		return DisplaySameDay, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidDisplayPolicy, raw)
	}
}

type Projection struct {
	Status           Status
	RemainingMinutes int
	DisplayText      string
	CompletionAt     *time.Time
}

// Project computes completion = entry + (nominal - deducted) minutes.
// A completed projection keeps its CompletionAt so recent completions
// can still be placed in time windows.
func Project(entry *time.Time, nominalMinutes, deductedMinutes int, now time.Time, policy DisplayPolicy) Projection {
	if entry == nil || entry.IsZero() || nominalMinutes <= 0 {
		return Projection{Status: StatusNotScheduled, DisplayText: NotScheduledText}
	}
	at := entry.Add(effectiveSpan(nominalMinutes, deductedMinutes))
	if !now.Before(at) {
		return Projection{Status: StatusCompleted, DisplayText: CompletedText, CompletionAt: &at}
	}
	return Projection{
		Status:           StatusPending,
		RemainingMinutes: ceilMinutes(at.Sub(now)),
		DisplayText:      FormatInstant(at, now, policy),
		CompletionAt:     &at,
	}
}

// FormatInstant renders at relative to now in now's location.
func FormatInstant(at, now time.Time, policy DisplayPolicy) string {
	at = at.In(now.Location())
	if policy != DisplayFull && sameDay(at, now) {
		return at.Format(shortLayout)
	}
	return at.Format(fullLayout)
}

// FormatRemaining renders a minute count as "1d 2h 3m", omitting leading zero units.
func FormatRemaining(minutes int) string {
	if minutes <= 0 {
		return "0m"
	}
	d := minutes / (24 * 60)
	h := minutes % (24 * 60) / 60
	m := minutes % 60
	switch {
	case d > 0:
		return fmt.Sprintf("%dd %dh %dm", d, h, m)
	case h > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	default:
		return fmt.Sprintf("%dm", m)
	}
}

// Progress is the elapsed fraction of the effective duration, clamped to [0,1].
func Progress(entry *time.Time, nominalMinutes, deductedMinutes int, now time.Time) float64 {
	if entry == nil || nominalMinutes <= 0 {
		return 0
	}
	total := effectiveSpan(nominalMinutes, deductedMinutes)
	if total <= 0 {
		return 1
	}
	p := float64(now.Sub(*entry)) / float64(total)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

const maxSpanMinutes = math.MaxInt64 / int64(time.Minute)

// effectiveSpan is nominal minus deducted minutes, saturated to the
// largest representable time.Duration.
func effectiveSpan(nominalMinutes, deductedMinutes int) time.Duration {
	m := int64(nominalMinutes) - int64(deductedMinutes)
	if m > maxSpanMinutes {
		return time.Duration(maxSpanMinutes) * time.Minute
	}
	if m < -maxSpanMinutes {
		return -time.Duration(maxSpanMinutes) * time.Minute
	}
	return time.Duration(m) * time.Minute
}

func ceilMinutes(d time.Duration) int {
	m := int(d / time.Minute)
	if d%time.Minute > 0 {
		m++
	}
	return m
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
