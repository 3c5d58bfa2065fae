package commands

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"classconsensus/contexts/classroom/consensus-service/domain/entities"
	"classconsensus/contexts/classroom/consensus-service/ports"
)

const (
	eventPresentationCreated  = "presentation.created"
	EventResultFinalized      = "presentation.result_finalized"
	EventResultOverridden     = "presentation.result_overridden"
	consensusSourceService    = "class-consensus"
	presentationPartitionPath = "presentation_id"
)

func newConsensusEnvelope(
	eventID string,
	eventType string,
	presentationID int64,
	occurredAt time.Time,
	data map[string]any,
) (ports.EventEnvelope, error) {
	// Events are partitioned by presentation so consumers see one
	// presentation's lifecycle in order.
	payload, err := json.Marshal(data)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    consensusSourceService,
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: presentationPartitionPath,
		PartitionKey:     strconv.FormatInt(presentationID, 10),
		Data:             payload,
	}, nil
}

func appendPresentationEvent(
	ctx context.Context,
	tx ports.Tx,
	idGen ports.IDGenerator,
	eventType string,
	presentation entities.Presentation,
	metadata map[string]any,
) error {
	// Without an id generator there is no outbox wiring; events are skipped.
	if idGen == nil {
		return nil
	}
	eventID, err := idGen.NewID(ctx)
	if err != nil {
		return err
	}
	data := map[string]any{
		"presentation_id": presentation.ID,
		"result":          presentation.Result.String(),
		"result_code":     int(presentation.Result),
		"occurred_at":     presentation.UpdatedAt.Format(time.RFC3339),
	}
	for key, value := range metadata {
		data[key] = value
	}
	envelope, err := newConsensusEnvelope(eventID, eventType, presentation.ID, presentation.UpdatedAt, data)
	if err != nil {
		return err
	}
	return tx.AppendOutbox(ctx, envelope)
}
