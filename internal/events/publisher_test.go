package events

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/maltedev/evspare-scraper/internal/models"
	"github.com/maltedev/evspare-scraper/internal/scraper"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockStreamClient is a mock for the Redis stream client
type MockStreamClient struct {
	mock.Mock
}

func (m *MockStreamClient) XAdd(ctx context.Context, args *redis.XAddArgs) *redis.StringCmd {
	mockArgs := m.Called(ctx, args)
	cmd := redis.NewStringCmd(ctx)
	if mockArgs.Get(0) != nil {
		cmd.SetErr(mockArgs.Error(0))
	} else {
		cmd.SetVal("1234567890-0")
	}
	return cmd
}

func sampleResult() *scraper.RunResult {
	charger := models.NewProduct("[A1] FAST CHARGER (FC-100)", "INR", "PCS")
	charger.Code = "FC-100"
	charger.Category = "CHARGERS"
	charger.ImageFilename = "FC-100.jpg"

	kit := models.NewProduct("HUB MOTOR KIT", "INR", "PCS")
	kit.Category = "MOTORS"

	started := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return &scraper.RunResult{
		RunID:      uuid.MustParse("7d444840-9dc0-11d1-b245-5ffdce74fad2"),
		OriginURL:  "https://store.elyfevspare.com/",
		StartedAt:  started,
		FinishedAt: started.Add(1500 * time.Millisecond),
		Products:   []models.Product{charger, kit},
	}
}

func streamValues(args *redis.XAddArgs) map[string]interface{} {
	values, _ := args.Values.(map[string]interface{})
	return values
}

func eventTypeIs(eventType EventType) interface{} {
	return mock.MatchedBy(func(args *redis.XAddArgs) bool {
		return args.Stream == DefaultStream && streamValues(args)["event_type"] == string(eventType)
	})
}

func TestPublisher_AfterRun(t *testing.T) {
	ctx := context.Background()
	client := new(MockStreamClient)

	var summary *redis.XAddArgs
	client.On("XAdd", ctx, eventTypeIs(EventTypeProductExtracted)).Return(nil).Twice()
	client.On("XAdd", ctx, eventTypeIs(EventTypeCatalogScraped)).
		Run(func(args mock.Arguments) { summary = args.Get(1).(*redis.XAddArgs) }).
		Return(nil).Once()

	p := NewPublisher(client, "", slog.Default())
	require.NoError(t, p.AfterRun(ctx, sampleResult()))
	client.AssertExpectations(t)

	require.NotNil(t, summary)
	assert.Equal(t, "7d444840-9dc0-11d1-b245-5ffdce74fad2", streamValues(summary)["run_id"])

	data, ok := streamValues(summary)["data"].(string)
	require.True(t, ok)
	var event Event
	require.NoError(t, json.Unmarshal([]byte(data), &event))
	assert.Equal(t, EventTypeCatalogScraped, event.Type)
	assert.Equal(t, "evspare-scraper", event.Source)

	var payload CatalogScrapedPayload
	require.NoError(t, json.Unmarshal(event.Payload, &payload))
	assert.Equal(t, 2, payload.ProductCount)
	assert.Equal(t, 1, payload.ImageCount)
	assert.Equal(t, []string{"CHARGERS", "MOTORS"}, payload.Categories)
	assert.Equal(t, int64(1500), payload.DurationMS)
}

func TestPublisher_ProductEventAggregate(t *testing.T) {
	ctx := context.Background()
	client := new(MockStreamClient)

	client.On("XAdd", ctx, mock.MatchedBy(func(args *redis.XAddArgs) bool {
		values := streamValues(args)
		return values["event_type"] == string(EventTypeProductExtracted) &&
			values["aggregate_id"] == "FC-100"
	})).Return(nil).Once()
	client.On("XAdd", ctx, mock.MatchedBy(func(args *redis.XAddArgs) bool {
		values := streamValues(args)
		return values["event_type"] == string(EventTypeProductExtracted) &&
			values["aggregate_id"] == "HUB MOTOR KIT"
	})).Return(nil).Once()
	client.On("XAdd", ctx, eventTypeIs(EventTypeCatalogScraped)).Return(nil).Once()

	p := NewPublisher(client, DefaultStream, slog.Default())
	require.NoError(t, p.AfterRun(ctx, sampleResult()))
	client.AssertExpectations(t)
}

func TestPublisher_ProductFailureContinues(t *testing.T) {
	ctx := context.Background()
	client := new(MockStreamClient)

	client.On("XAdd", ctx, eventTypeIs(EventTypeProductExtracted)).Return(errors.New("connection refused")).Twice()
	client.On("XAdd", ctx, eventTypeIs(EventTypeCatalogScraped)).Return(nil).Once()

	p := NewPublisher(client, "", slog.Default())
	err := p.AfterRun(ctx, sampleResult())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 of 2 product events failed")
	client.AssertExpectations(t)
}

func TestPublisher_SummaryFailure(t *testing.T) {
	ctx := context.Background()
	client := new(MockStreamClient)

	client.On("XAdd", ctx, eventTypeIs(EventTypeProductExtracted)).Return(nil)
	client.On("XAdd", ctx, eventTypeIs(EventTypeCatalogScraped)).Return(errors.New("READONLY"))

	p := NewPublisher(client, "", slog.Default())
	err := p.AfterRun(ctx, sampleResult())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "CATALOG_SCRAPED")
}

func TestPublisher_Name(t *testing.T) {
	p := NewPublisher(new(MockStreamClient), "stream:custom", slog.Default())
	assert.Equal(t, "event_publish", p.Name())
	assert.Equal(t, "stream:custom", p.stream)
}
