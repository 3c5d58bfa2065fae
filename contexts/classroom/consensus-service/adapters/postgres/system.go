package postgresadapter

import (
	"context"
	"time"

	"classconsensus/contexts/classroom/consensus-service/ports"

	"github.com/google/uuid"
)

// SystemClock stamps rows with wall-clock UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// UUIDGenerator issues event and outbox ids.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID(context.Context) (string, error) {
	return uuid.NewString(), nil
}

var _ ports.Clock = SystemClock{}
var _ ports.IDGenerator = UUIDGenerator{}
