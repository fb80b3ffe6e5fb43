// Package events publishes emitted records to a Redis stream so
// downstream consumers can react to newly discovered products.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/maltedev/amazon-search-scraper/internal/models"
)

// EventType identifies the kind of event on the stream.
type EventType string

const EventTypeRecordDetected EventType = "PRODUCT_RECORD_DETECTED"

// RecordDetectedPayload is the stream entry for one emitted record.
type RecordDetectedPayload struct {
	EventID   string                `json:"event_id"`
	EventType string                `json:"event_type"`
	Timestamp time.Time             `json:"timestamp"`
	Record    *models.ProductRecord `json:"record"`
	Source    string                `json:"source"`
}

// Publisher writes record events to a Redis stream. It satisfies the
// pipeline.RecordSink interface.
type Publisher struct {
	client *redis.Client
	stream string
	logger *slog.Logger
}

func NewPublisher(client *redis.Client, stream string) *Publisher {
	return &Publisher{
		client: client,
		stream: stream,
		logger: slog.Default().With("component", "event_publisher"),
	}
}

func (p *Publisher) Write(ctx context.Context, rec *models.ProductRecord) error {
	payload := RecordDetectedPayload{
		EventID:   uuid.New().String(),
		EventType: string(EventTypeRecordDetected),
		Timestamp: time.Now().UTC(),
		Record:    rec,
		Source:    "search-crawler",
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{
			"event_type": payload.EventType,
			"payload":    string(data),
		},
	}).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.Debug("event published", "asin", rec.ASIN, "stream", p.stream)
	return nil
}

func (p *Publisher) Close() error {
	return nil
}
