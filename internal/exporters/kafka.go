package exporters

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/mrlokans/session-catalog/internal/entities"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher sends one JSON message per session, keyed by session code
// so updates to a session land on the same partition.
type KafkaPublisher struct {
	writer  messageWriter
	event   string
	Timeout time.Duration
	now     func() time.Time
}

func NewKafkaPublisher(brokers []string, topic, event string) *KafkaPublisher {
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:     brokers,
		Topic:       topic,
		Balancer:    &kafka.Hash{},
		MaxAttempts: 3,
	})
	return newKafkaPublisher(writer, event)
}

func newKafkaPublisher(w messageWriter, event string) *KafkaPublisher {
	return &KafkaPublisher{writer: w, event: event, Timeout: defaultExportTimeout, now: time.Now}
}

// ExportContext writes all sessions in one batch.
func (p *KafkaPublisher) ExportContext(ctx context.Context, sessions []entities.Session) (ExportResult, error) {
	if len(sessions) == 0 {
		return ExportResult{}, nil
	}

	now := p.now()
	msgs := make([]kafka.Message, 0, len(sessions))
	result := ExportResult{}
	for _, s := range sessions {
		payload, err := json.Marshal(NewSessionDocument(s, p.event, now))
		if err != nil {
			log.Printf("[KAFKA] Failed to encode %s: %v", s.ID, err)
			result.SessionsFailed++
			continue
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(s.ID),
			Value: payload,
			Time:  now,
			Headers: []kafka.Header{
				{Key: "event", Value: []byte(p.event)},
				{Key: "level", Value: []byte(s.Level)},
			},
		})
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		result.SessionsFailed += len(msgs)
		return result, fmt.Errorf("publish sessions: %w", err)
	}
	result.SessionsProcessed = len(msgs)
	return result, nil
}

func (p *KafkaPublisher) Export(sessions []entities.Session) (ExportResult, error) {
	ctx, cancel := context.WithTimeout(context.Background(), p.Timeout)
	defer cancel()
	return p.ExportContext(ctx, sessions)
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

var _ SessionExporter = (*KafkaPublisher)(nil)
