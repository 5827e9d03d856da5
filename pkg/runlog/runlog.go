// Package runlog records simulator run history.
//
// Every tracking run appends a Record describing what was traced, where the
// work directory lives, and how the process ended. The Store interface has
// two backends: memory for tests and short-lived processes, and an
// append-only JSON lines file for the CLI, so `beamforge run` invocations
// stay inspectable after the fact.
package runlog

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Status classifies how a run ended.
type Status string

const (
	// StatusCompleted marks a run whose process exited cleanly.
	StatusCompleted Status = "completed"

	// StatusFailed marks a run that returned an error.
	StatusFailed Status = "failed"
)

// Record is one entry of run history.
type Record struct {
	ID       string        `json:"id" bson:"id"`
	Line     string        `json:"line" bson:"line"`
	Status   Status        `json:"status" bson:"status"`
	Started  time.Time     `json:"started" bson:"started"`
	Duration time.Duration `json:"duration" bson:"duration"`
	WorkDir  string        `json:"work_dir,omitempty" bson:"work_dir,omitempty"`
	Error    string        `json:"error,omitempty" bson:"error,omitempty"`
}

// Store is the interface for run history backends.
type Store interface {
	// Append adds a record, assigning a fresh ID when the record has none.
	Append(ctx context.Context, rec *Record) error

	// Get retrieves a record by ID. A missing ID is a RUN_NOT_FOUND error.
	Get(ctx context.Context, id string) (*Record, error)

	// List returns all records in append order.
	List(ctx context.Context) ([]*Record, error)

	// Close releases backend resources.
	Close() error
}

// NewID returns a fresh run identifier.
func NewID() string {
	return uuid.NewString()
}
