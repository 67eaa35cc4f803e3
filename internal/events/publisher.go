package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/maltedev/evspare-scraper/internal/models"
	"github.com/maltedev/evspare-scraper/internal/scraper"
	"github.com/redis/go-redis/v9"
)

type EventType string

const (
	// EventTypeCatalogScraped is published once per completed run
	EventTypeCatalogScraped EventType = "CATALOG_SCRAPED"
	// EventTypeProductExtracted is published for every extracted record
	EventTypeProductExtracted EventType = "PRODUCT_EXTRACTED"

	DefaultStream = "stream:catalog"
	source        = "evspare-scraper"
)

// StreamClient is the part of the Redis client the publisher needs.
type StreamClient interface {
	XAdd(ctx context.Context, args *redis.XAddArgs) *redis.StringCmd
}

type Event struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	RunID     string          `json:"run_id"`
	Timestamp time.Time       `json:"timestamp"`
	Source    string          `json:"source"`
	Payload   json.RawMessage `json:"payload"`
}

type CatalogScrapedPayload struct {
	OriginURL    string   `json:"origin_url"`
	ProductCount int      `json:"product_count"`
	ImageCount   int      `json:"image_count"`
	Categories   []string `json:"categories"`
	DurationMS   int64    `json:"duration_ms"`
}

type ProductExtractedPayload struct {
	Position int            `json:"position"`
	Product  models.Product `json:"product"`
}

// Publisher appends catalog events to a Redis stream.
type Publisher struct {
	client StreamClient
	stream string
	now    func() time.Time
	logger *slog.Logger
}

func NewPublisher(client StreamClient, stream string, logger *slog.Logger) *Publisher {
	if stream == "" {
		stream = DefaultStream
	}
	return &Publisher{
		client: client,
		stream: stream,
		now:    time.Now,
		logger: logger.With("component", "event_publisher"),
	}
}

func (p *Publisher) Name() string {
	return "event_publish"
}

// AfterRun publishes the per-product events followed by the run summary.
// A failed product event is logged and the rest are still attempted.
func (p *Publisher) AfterRun(ctx context.Context, result *scraper.RunResult) error {
	runID := result.RunID.String()
	failed := 0

	for i, product := range result.Products {
		payload := ProductExtractedPayload{Position: i, Product: product}
		if err := p.publish(ctx, EventTypeProductExtracted, runID, product.Key(), payload); err != nil {
			failed++
			p.logger.Error("failed to publish product event", "product", product.Name, "error", err)
		}
	}

	summary := CatalogScrapedPayload{
		OriginURL:    result.OriginURL,
		ProductCount: len(result.Products),
		ImageCount:   result.ImageCount(),
		Categories:   result.Categories(),
		DurationMS:   result.FinishedAt.Sub(result.StartedAt).Milliseconds(),
	}
	if err := p.publish(ctx, EventTypeCatalogScraped, runID, runID, summary); err != nil {
		return err
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d product events failed", failed, len(result.Products))
	}

	p.logger.Info("events published", "stream", p.stream, "run_id", runID, "products", len(result.Products))
	return nil
}

func (p *Publisher) publish(ctx context.Context, eventType EventType, runID, aggregateID string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	event := Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		RunID:     runID,
		Timestamp: p.now().UTC(),
		Source:    source,
		Payload:   data,
	}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"data":         string(eventJSON),
			"event_id":     event.ID,
			"event_type":   string(eventType),
			"run_id":       runID,
			"aggregate_id": aggregateID,
			"timestamp":    fmt.Sprintf("%d", event.Timestamp.UnixNano()),
		},
	}

	if _, err := p.client.XAdd(ctx, args).Result(); err != nil {
		return fmt.Errorf("failed to publish %s to redis: %w", eventType, err)
	}
	return nil
}
