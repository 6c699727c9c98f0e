// Package history keeps a record of finished analysis runs.
package history

import (
	"context"
	"errors"
	"time"
)

// Entry is one finished run.
type Entry struct {
	RunID          string    `json:"runId"`
	CreatedAt      time.Time `json:"createdAt"`
	Candidate      string    `json:"candidate"`
	Profile        string    `json:"-"`
	JobDescription string    `json:"-"`
	Success        bool      `json:"success"`
	MatchScore     int       `json:"matchScore"`
	MatchAnalysis  string    `json:"matchAnalysis"`
	Message        string    `json:"message"`
	Termination    string    `json:"termination"`
	Iterations     int       `json:"iterations"`
	Error          string    `json:"error,omitempty"`
}

type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

type Lister interface {
	Recent(ctx context.Context, limit int) ([]Entry, error)
}

// Multi records to every recorder and joins their errors.
type Multi []Recorder

func (m Multi) Record(ctx context.Context, entry Entry) error {
	var errs []error
	for _, r := range m {
		if r == nil {
			continue
		}
		if err := r.Record(ctx, entry); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop discards entries.
type Nop struct{}

func (Nop) Record(context.Context, Entry) error { return nil }

func (Nop) Recent(context.Context, int) ([]Entry, error) { return nil, nil }
