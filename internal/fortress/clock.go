package fortress

import (
	"time"

	"github.com/google/uuid"
)

// Clock abstracts time retrieval so note timestamps are deterministic in tests.
type Clock interface {
	Now() time.Time
}

// RealClock returns the actual current time.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// IDGenerator abstracts note ID generation.
type IDGenerator interface {
	New() string
}

// UUIDGenerator produces random (version 4) UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) New() string { return uuid.New().String() }
