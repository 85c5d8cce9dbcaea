package storage

import (
	"context"
	"errors"
)

var ErrEmptyKey = errors.New("storage: key is required")

// Store is the string-valued key-value persistence the app state lives
// in, plus an append-only journal of applied deductions.
type Store interface {
	Load(ctx context.Context, key string) (string, bool, error)
	Save(ctx context.Context, key, value string) error

	AppendDeductions(ctx context.Context, entries []Deduction) error
	ListDeductions(ctx context.Context, filter DeductionFilter) ([]Deduction, error)

	Close() error
}
