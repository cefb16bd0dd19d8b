package app

import (
	"time"

	"github.com/google/uuid"
)

// Operation tracks one CLI invocation. Its ID tags every log line the
// invocation writes.
type Operation struct {
	ID      string
	Name    string
	Started time.Time
	Status  string // "success" or "error"
}

// NewOperation creates a new operation that is successful until Fail is called.
func NewOperation(name string) *Operation {
	return &Operation{
		ID:      uuid.New().String(),
		Name:    name,
		Started: time.Now(),
		Status:  "success",
	}
}

// Fail marks the operation as failed when err is non-nil.
func (op *Operation) Fail(err error) {
	if err != nil {
		op.Status = "error"
	}
}

// Failed returns true if Fail was called with an error.
func (op *Operation) Failed() bool {
	return op.Status == "error"
}
