package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// MaxWorkers caps the worker slots configurable for one section.
const MaxWorkers = 9

var (
	ErrNegativeDuration = errors.New("model: negative duration")
	ErrDurationTooLarge = errors.New("model: duration segment too large")
	ErrInvalidWorker    = errors.New("model: invalid worker")
	ErrInvalidSection   = errors.New("model: invalid section")
)

// Task is one worker's current assignment inside an account section.
type Task struct {
	ID                   string     `json:"id"`
	Section              Section    `json:"section"`
	Worker               int        `json:"worker"`
	Label                string     `json:"task"`
	Duration             Duration   `json:"duration"`
	EntryTimestamp       *time.Time `json:"entryTimestamp"`
	TotalDeductedMinutes int        `json:"totalDeductedMinutes"`
	Completion           string     `json:"completion"`
	CreatedAt            time.Time  `json:"createdAt"`
}

// Blank reports whether the task carries neither a label nor a duration.
func (t Task) Blank() bool {
	return strings.TrimSpace(t.Label) == "" && t.Duration.IsZero()
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("model: task id is required")
	}
	if strings.TrimSpace(string(t.Section)) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidSection)
	}
	if t.Worker < 1 || t.Worker > MaxWorkers {
		return fmt.Errorf("%w: %d", ErrInvalidWorker, t.Worker)
	}
	if err := t.Duration.Validate(); err != nil {
		return err
	}
	if t.TotalDeductedMinutes < 0 {
		return fmt.Errorf("model: negative deduction %d", t.TotalDeductedMinutes)
	}
	return nil
}
