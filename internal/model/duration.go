package model

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	minutesPerHour = 60
	minutesPerDay  = 24 * minutesPerHour

	// MaxSegment caps each parsed D-H-M segment so totals never overflow.
	MaxSegment = 999_999
)

// Duration is the nominal days-hours-minutes value a user typed for a
// task. Fields are kept exactly as entered: 90 minutes stays 90 minutes.
type Duration struct {
	Days    int `json:"days"`
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
}

// ParseDuration reads a "D-H-M" expression. Missing or malformed
// segments count as zero; it never fails.
func ParseDuration(raw string) Duration {
	parts := strings.Split(raw, "-")
	seg := func(i int) int {
		if i >= len(parts) {
			return 0
		}
		return leadingInt(parts[i])
	}
	return Duration{Days: seg(0), Hours: seg(1), Minutes: seg(2)}
}

func (d Duration) TotalMinutes() int {
	return d.Days*minutesPerDay + d.Hours*minutesPerHour + d.Minutes
}

func (d Duration) IsZero() bool {
	return d.TotalMinutes() <= 0
}

func (d Duration) String() string {
	return fmt.Sprintf("%d-%d-%d", d.Days, d.Hours, d.Minutes)
}

func (d Duration) Validate() error {
	if d.Days < 0 || d.Hours < 0 || d.Minutes < 0 {
		return fmt.Errorf("%w: %s", ErrNegativeDuration, d)
	}
	if d.Days > MaxSegment || d.Hours > MaxSegment || d.Minutes > MaxSegment {
		return fmt.Errorf("%w: %s", ErrDurationTooLarge, d)
	}
	return nil
}

// leadingInt mirrors a lenient integer read: optional sign, then the
// longest run of digits. Anything unreadable or negative is zero and
// anything above MaxSegment is MaxSegment.
func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	end := 0
	if s[0] == '+' || s[0] == '-' {
		end = 1
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0
	}
	if s[0] == '-' {
		return 0
	}
	v, err := strconv.Atoi(s[:end])
	if err != nil || v > MaxSegment {
		// only a range error is possible here: the run is all digits
		return MaxSegment
	}
	return v
}
