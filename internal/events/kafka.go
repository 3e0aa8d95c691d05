package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/bogdang40/DouaInimi/internal/config"
	"github.com/bogdang40/DouaInimi/internal/logger"
	"github.com/segmentio/kafka-go"
)

// KafkaMirror forwards bus events to a Kafka topic so external consumers
// (push notification workers, analytics) can react without coupling to this
// process. Delivery is best-effort; a broker outage only logs.
type KafkaMirror struct {
	writer *kafka.Writer
	topic  string
}

func NewKafkaMirror(cfg *config.Config) *KafkaMirror {
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Kafka.Brokers...),
		Topic:        cfg.Kafka.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
	}
	return &KafkaMirror{writer: w, topic: cfg.Kafka.Topic}
}

func (m *KafkaMirror) Close() error {
	if m == nil || m.writer == nil {
		return nil
	}
	return m.writer.Close()
}

// Handle implements the bus Handler signature. Events are keyed by match id
// so per-match ordering survives partitioning.
func (m *KafkaMirror) Handle(ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		logger.Error("failed to marshal event for kafka", "type", ev.Type, "err", err)
		return
	}

	var key string
	switch {
	case ev.MatchCreated != nil:
		key = strconv.FormatUint(ev.MatchCreated.MatchID, 10)
	case ev.MessageSent != nil:
		key = strconv.FormatUint(ev.MessageSent.MatchID, 10)
	default:
		key = ev.Type
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := m.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: payload,
	}); err != nil {
		logger.Error("failed to publish event to kafka", "type", ev.Type, "topic", m.topic, "err", err)
	}
}
