package event

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/FoodStore/internal/domain"
	pkgkafka "github.com/utafrali/FoodStore/pkg/kafka"
	"github.com/utafrali/FoodStore/pkg/logger"
)

type published struct {
	topic string
	event *pkgkafka.Event
}

type recordingSink struct {
	events []published
	err    error
}

func (s *recordingSink) Publish(_ context.Context, topic string, e *pkgkafka.Event) error {
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, published{topic: topic, event: e})
	return nil
}

func TestTopics(t *testing.T) {
	assert.Equal(t, "foodstore.food.added", TopicFoodAdded)
	assert.Equal(t, "foodstore.food.stock_updated", TopicFoodStockUpdated)
	assert.Equal(t, "foodstore.cart.updated", TopicCartUpdated)
	assert.Equal(t, "foodstore.user.registered", TopicUserRegistered)
}

func TestProducer_PublishFoodAdded(t *testing.T) {
	sink := &recordingSink{}
	p := NewProducer(sink, logger.Discard())
	ctx := logger.WithCorrelationID(context.Background(), "corr-1")

	food := &domain.Product{
		ID:           "f-1",
		Name:         "Amla Candy",
		Category:     "Amla",
		PackingSizes: []domain.PackingSize{{Size: "100g", Price: domain.PriceFromInt(50)}},
		Image:        "f-1.png",
	}
	require.NoError(t, p.PublishFoodAdded(ctx, food))

	require.Len(t, sink.events, 1)
	got := sink.events[0]
	assert.Equal(t, TopicFoodAdded, got.topic)
	assert.Equal(t, "f-1", got.event.AggregateID)
	assert.Equal(t, AggregateTypeFood, got.event.AggregateType)
	assert.Equal(t, SourceFoodAPI, got.event.Source)
	assert.Equal(t, "corr-1", got.event.CorrelationID)

	var data FoodAddedData
	require.NoError(t, got.event.UnmarshalData(&data))
	assert.Equal(t, "Amla Candy", data.Name)
	require.Len(t, data.PackingSizes, 1)
	assert.Equal(t, "50", data.PackingSizes[0].Price.String())
}

func TestProducer_PublishCartUpdated(t *testing.T) {
	sink := &recordingSink{}
	p := NewProducer(sink, logger.Discard())

	items := domain.CartItems{domain.NewCartKey("A", "250g"): 2, domain.NewCartKey("B", ""): 1}
	require.NoError(t, p.PublishCartUpdated(context.Background(), "u-1", items))

	require.Len(t, sink.events, 1)
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(sink.events[0].event.Data, &raw))
	assert.JSONEq(t, `{"A|250g":2,"B|":1}`, string(raw["items"]))
	assert.JSONEq(t, `3`, string(raw["count"]))
	assert.Empty(t, sink.events[0].event.CorrelationID)
}

func TestProducer_OtherEvents(t *testing.T) {
	sink := &recordingSink{}
	p := NewProducer(sink, logger.Discard())
	ctx := context.Background()

	require.NoError(t, p.PublishFoodRemoved(ctx, "f-1"))
	require.NoError(t, p.PublishFoodStockUpdated(ctx, "f-1", false))
	require.NoError(t, p.PublishUserRegistered(ctx, &domain.User{ID: "u-1", Name: "Asha", Email: "asha@example.com", PasswordHash: "secret"}))

	require.Len(t, sink.events, 3)
	assert.Equal(t, TopicFoodRemoved, sink.events[0].topic)
	assert.Equal(t, TopicFoodStockUpdated, sink.events[1].topic)
	assert.Equal(t, TopicUserRegistered, sink.events[2].topic)
	assert.NotContains(t, string(sink.events[2].event.Data), "secret")
}

func TestProducer_PublishError(t *testing.T) {
	sink := &recordingSink{err: errors.New("broker down")}
	p := NewProducer(sink, logger.Discard())

	err := p.PublishFoodRemoved(context.Background(), "f-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish foodstore.food.removed event")
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	ctx := context.Background()

	assert.NoError(t, p.PublishFoodAdded(ctx, &domain.Product{}))
	assert.NoError(t, p.PublishFoodRemoved(ctx, "x"))
	assert.NoError(t, p.PublishFoodStockUpdated(ctx, "x", true))
	assert.NoError(t, p.PublishCartUpdated(ctx, "u", nil))
	assert.NoError(t, p.PublishUserRegistered(ctx, &domain.User{}))
}
