package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const topic = "ticket-events"

// Producer publishes ledger events to kafka. Publishing is best-effort: the
// store transaction has already committed by the time an event goes out, so a
// broker failure is logged and not surfaced to the caller.
type Producer struct {
	writer *kafka.Writer
	logger *zap.Logger
}

func NewProducer(brokers string, logger *zap.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}

	return &Producer{
		writer: writer,
		logger: logger,
	}
}

func (p *Producer) TicketsIssued(event TicketIssuedEvent) {
	event.Type = TypeTicketIssued
	p.publish(event.EventID, event)
}

func (p *Producer) TicketRedeemed(event TicketRedeemedEvent) {
	event.Type = TypeTicketRedeemed
	p.publish(event.EventID, event)
}

func (p *Producer) ProductUpdated(event ProductUpdatedEvent) {
	event.Type = TypeProductUpdated
	p.publish(event.EventID, event)
}

func (p *Producer) publish(key string, event any) {
	eventBytes, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("Failed to marshal event", zap.Error(err))
		return
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: eventBytes,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish event",
			zap.String("event_id", key),
			zap.Error(err))
		return
	}

	p.logger.Info("Event published",
		zap.String("event_id", key))
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
