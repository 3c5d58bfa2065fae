package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	application "classconsensus/contexts/classroom/consensus-service/application"
	"classconsensus/contexts/classroom/consensus-service/ports"
)

const (
	workerModule     = "classroom/consensus-service"
	defaultBatchSize = 100
)

// OutboxRelay drains pending outbox rows into the event bus. A row is marked
// published only after the publisher accepted it, so delivery is at least once.
type OutboxRelay struct {
	Outbox    ports.OutboxRepository
	Publisher ports.EventPublisher
	Clock     ports.Clock
	BatchSize int
	Logger    *slog.Logger
}

// RunOnce publishes up to BatchSize rows in creation order and returns the
// number published. It stops at the first failure; the rest stay pending.
func (r OutboxRelay) RunOnce(ctx context.Context) (int, error) {
	logger := application.ResolveLogger(r.Logger)
	limit := r.BatchSize
	if limit <= 0 {
		limit = defaultBatchSize
	}

	pending, err := r.Outbox.ListPendingOutbox(ctx, limit)
	if err != nil {
		return 0, relayFailed(logger, "consensus_outbox_list_failed", err)
	}
	if len(pending) == 0 {
		logger.Debug("consensus outbox relay idle",
			"event", "consensus_outbox_relay_noop",
			"module", workerModule,
			"layer", "worker",
		)
		return 0, nil
	}

	published := 0
	for _, row := range pending {
		var envelope ports.EventEnvelope
		if err := json.Unmarshal(row.Payload, &envelope); err != nil {
			return published, relayFailed(logger, "consensus_outbox_decode_failed", err, "outbox_id", row.OutboxID)
		}
		topic := envelope.EventType
		if topic == "" {
			topic = row.EventType
		}
		if err := r.Publisher.Publish(ctx, topic, envelope); err != nil {
			return published, relayFailed(logger, "consensus_outbox_publish_failed", err,
				"outbox_id", row.OutboxID,
				"event_type", topic,
			)
		}
		if err := r.Outbox.MarkOutboxPublished(ctx, row.OutboxID, r.now()); err != nil {
			return published, relayFailed(logger, "consensus_outbox_mark_published_failed", err, "outbox_id", row.OutboxID)
		}
		published++
	}

	logger.Info("consensus outbox relay cycle completed",
		"event", "consensus_outbox_relay_completed",
		"module", workerModule,
		"layer", "worker",
		"published_count", published,
	)
	return published, nil
}

// Run calls RunOnce every interval until ctx is done. Cycle failures are
// logged by RunOnce and retried on the next tick.
func (r OutboxRelay) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		_, _ = r.RunOnce(ctx)
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (r OutboxRelay) now() time.Time {
	if r.Clock != nil {
		return r.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

func relayFailed(logger *slog.Logger, event string, err error, attrs ...any) error {
	fields := append([]any{
		"event", event,
		"module", workerModule,
		"layer", "worker",
		"error", err.Error(),
	}, attrs...)
	logger.Error("consensus outbox relay failed", fields...)
	return err
}
