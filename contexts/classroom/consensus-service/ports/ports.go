package ports

import (
	"context"
	"encoding/json"
	"time"

	"classconsensus/contexts/classroom/consensus-service/domain/entities"
)

// Repository is the durable classroom state. Reads outside Atomic observe only
// committed state.
type Repository interface {
	// Atomic runs fn as one serialized unit of work. Writes staged through tx
	// become visible only when fn returns nil; any error discards all of them.
	Atomic(ctx context.Context, fn func(tx Tx) error) error

	GetIdentity(ctx context.Context, address string) (entities.Identity, bool, error)
	GetRoster(ctx context.Context) (entities.Roster, error)
	GetPresentation(ctx context.Context, id int64) (entities.Presentation, error)
	ListPresentationIDs(ctx context.Context) ([]int64, error)
	ListStudents(ctx context.Context) ([]entities.Student, error)
}

// Tx is the write view handed to Repository.Atomic callbacks.
type Tx interface {
	GetIdentity(ctx context.Context, address string) (entities.Identity, bool, error)
	SaveIdentity(ctx context.Context, identity entities.Identity) error
	GetRoster(ctx context.Context) (entities.Roster, error)
	SaveRoster(ctx context.Context, roster entities.Roster) error

	// NextPresentationID reserves the next id. The reservation is released
	// if the surrounding unit of work fails.
	NextPresentationID(ctx context.Context) (int64, error)
	GetPresentation(ctx context.Context, id int64) (entities.Presentation, error)
	SavePresentation(ctx context.Context, presentation entities.Presentation) error

	// MarkStudentVoted records that voter voted on presentationID and reports
	// false when a marker already existed.
	MarkStudentVoted(ctx context.Context, presentationID int64, voter string) (bool, error)

	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// EventEnvelope is the canonical event shape written to the outbox.
type EventEnvelope struct {
	EventID          string          `json:"event_id"`
	EventType        string          `json:"event_type"`
	OccurredAt       time.Time       `json:"occurred_at"`
	SourceService    string          `json:"source_service"`
	TraceID          string          `json:"trace_id"`
	SchemaVersion    int             `json:"schema_version"`
	PartitionKeyPath string          `json:"partition_key_path"`
	PartitionKey     string          `json:"partition_key"`
	Data             json.RawMessage `json:"data"`
}

type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

type EventSubscriber interface {
	Subscribe(
		ctx context.Context,
		topic string,
		consumerGroup string,
		handler func(context.Context, EventEnvelope) error,
	) error
}
