package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	application "classconsensus/contexts/classroom/consensus-service/application"
	"classconsensus/contexts/classroom/consensus-service/application/commands"
	"classconsensus/contexts/classroom/consensus-service/ports"
)

const defaultResultConsumerGroup = "class-consensus-results-cg"

// ResultNotification is the (id, result) pair carried by finalize and
// override events.
type ResultNotification struct {
	EventID        string
	EventType      string
	PresentationID int64
	Result         string
	Overridden     bool
}

// ResultNotificationConsumer delivers presentation outcome events to Notify.
// Without Notify the outcome is only logged.
type ResultNotificationConsumer struct {
	Subscriber    ports.EventSubscriber
	ConsumerGroup string
	Notify        func(context.Context, ResultNotification) error
	Logger        *slog.Logger
}

func (c ResultNotificationConsumer) Start(ctx context.Context) error {
	logger := application.ResolveLogger(c.Logger)
	group := strings.TrimSpace(c.ConsumerGroup)
	if group == "" {
		group = defaultResultConsumerGroup
	}
	for _, topic := range []string{commands.EventResultFinalized, commands.EventResultOverridden} {
		if err := c.Subscriber.Subscribe(ctx, topic, group, c.handle); err != nil {
			return relayFailed(logger, "consensus_result_consumer_subscribe_failed", err,
				"topic", topic,
				"consumer_group", group,
			)
		}
	}
	logger.Info("result consumer subscriptions active",
		"event", "consensus_result_consumer_started",
		"module", workerModule,
		"layer", "worker",
		"consumer_group", group,
	)
	return nil
}

func (c ResultNotificationConsumer) handle(ctx context.Context, event ports.EventEnvelope) error {
	logger := application.ResolveLogger(c.Logger)
	var payload struct {
		PresentationID int64  `json:"presentation_id"`
		Result         string `json:"result"`
	}
	if err := json.Unmarshal(event.Data, &payload); err != nil {
		return fmt.Errorf("decode %s payload: %w", event.EventType, err)
	}
	notification := ResultNotification{
		EventID:        event.EventID,
		EventType:      event.EventType,
		PresentationID: payload.PresentationID,
		Result:         payload.Result,
		Overridden:     event.EventType == commands.EventResultOverridden,
	}

	logger.Info("presentation result announced",
		"event", "consensus_result_announced",
		"module", workerModule,
		"layer", "worker",
		"presentation_id", notification.PresentationID,
		"result", notification.Result,
		"overridden", notification.Overridden,
	)
	if c.Notify == nil {
		return nil
	}
	return c.Notify(ctx, notification)
}
