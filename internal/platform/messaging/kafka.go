package messaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"classconsensus/contexts/classroom/consensus-service/ports"
)

const subscriberBuffer = 128

// ErrSubscriberFull is returned by Publish when a subscriber could not take
// the event. The caller keeps the event pending and retries it later.
var ErrSubscriberFull = errors.New("messaging: subscriber buffer full")

// Kafka is the event bus the outbox relay publishes to. Delivery is
// in-process; the broker list is retained for the external client.
type Kafka struct {
	mu          sync.RWMutex
	brokers     []string
	subscribers map[string][]chan ports.EventEnvelope
	logger      *slog.Logger
}

func NewKafka(brokers []string, logger *slog.Logger) (*Kafka, error) {
	if logger == nil {
		logger = slog.Default()
	}
	return &Kafka{
		brokers:     append([]string(nil), brokers...),
		subscribers: make(map[string][]chan ports.EventEnvelope),
		logger:      logger,
	}, nil
}

func (k *Kafka) Brokers() []string {
	return append([]string(nil), k.brokers...)
}

// Publish fans event out to every subscriber of topic. When a subscriber's
// buffer is full the event is not delivered to it and ErrSubscriberFull is
// returned, so delivery is at least once per subscriber.
func (k *Kafka) Publish(ctx context.Context, topic string, event ports.EventEnvelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	k.mu.RLock()
	subs := append([]chan ports.EventEnvelope(nil), k.subscribers[topic]...)
	k.mu.RUnlock()

	dropped := 0
	for _, sub := range subs {
		select {
		case sub <- event:
		default:
			dropped++
		}
	}
	if dropped > 0 {
		k.logger.Warn("subscriber buffer full",
			"event", "kafka_publish_backpressure",
			"module", "internal/platform/messaging",
			"layer", "platform",
			"topic", topic,
			"event_id", event.EventID,
			"dropped", dropped,
		)
		return fmt.Errorf("%w: topic %s, %d of %d subscribers", ErrSubscriberFull, topic, dropped, len(subs))
	}

	k.logger.Debug("event published",
		"event", "kafka_publish",
		"module", "internal/platform/messaging",
		"layer", "platform",
		"topic", topic,
		"event_id", event.EventID,
		"subscribers", len(subs),
	)
	return nil
}

// Subscribe runs handler for each event on topic until ctx is done.
func (k *Kafka) Subscribe(
	ctx context.Context,
	topic string,
	consumerGroup string,
	handler func(context.Context, ports.EventEnvelope) error,
) error {
	ch := make(chan ports.EventEnvelope, subscriberBuffer)

	k.mu.Lock()
	k.subscribers[topic] = append(k.subscribers[topic], ch)
	k.mu.Unlock()

	go func() {
		defer k.removeSubscriber(topic, ch)
		for {
			select {
			case <-ctx.Done():
				return
			case event := <-ch:
				if err := handler(ctx, event); err != nil {
					k.logger.Error("consumer handler failed",
						"event", "kafka_consume_failed",
						"module", "internal/platform/messaging",
						"layer", "platform",
						"topic", topic,
						"consumer_group", consumerGroup,
						"event_id", event.EventID,
						"error", err.Error(),
					)
				}
			}
		}
	}()
	return nil
}

func (k *Kafka) removeSubscriber(topic string, target chan ports.EventEnvelope) {
	k.mu.Lock()
	defer k.mu.Unlock()

	items := k.subscribers[topic]
	filtered := items[:0]
	for _, item := range items {
		if item != target {
			filtered = append(filtered, item)
		}
	}
	if len(filtered) == 0 {
		delete(k.subscribers, topic)
		return
	}
	k.subscribers[topic] = filtered
}

var _ ports.EventPublisher = (*Kafka)(nil)
var _ ports.EventSubscriber = (*Kafka)(nil)
