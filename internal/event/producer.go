package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/FoodStore/internal/domain"
	pkgkafka "github.com/utafrali/FoodStore/pkg/kafka"
	"github.com/utafrali/FoodStore/pkg/logger"
)

// Kafka topics for food API domain events.
var (
	TopicFoodAdded        = pkgkafka.Topic("food", "added")
	TopicFoodRemoved      = pkgkafka.Topic("food", "removed")
	TopicFoodStockUpdated = pkgkafka.Topic("food", "stock_updated")
	TopicCartUpdated      = pkgkafka.Topic("cart", "updated")
	TopicUserRegistered   = pkgkafka.Topic("user", "registered")
)

// Aggregate types.
const (
	AggregateTypeFood = "food"
	AggregateTypeCart = "cart"
	AggregateTypeUser = "user"
)

// SourceFoodAPI identifies events originating from the food API.
const SourceFoodAPI = "foodapi"

// Publisher publishes domain events. Callers log failures and carry on.
type Publisher interface {
	PublishFoodAdded(ctx context.Context, food *domain.Product) error
	PublishFoodRemoved(ctx context.Context, id string) error
	PublishFoodStockUpdated(ctx context.Context, id string, inStock bool) error
	PublishCartUpdated(ctx context.Context, userID string, items domain.CartItems) error
	PublishUserRegistered(ctx context.Context, user *domain.User) error
}

// FoodAddedData is the payload for a food.added event.
type FoodAddedData struct {
	ID           string               `json:"id"`
	Name         string               `json:"name"`
	Category     string               `json:"category"`
	PackingSizes []domain.PackingSize `json:"packing_sizes"`
	Image        string               `json:"image"`
}

// FoodRemovedData is the payload for a food.removed event.
type FoodRemovedData struct {
	ID string `json:"id"`
}

// FoodStockUpdatedData is the payload for a food.stock_updated event.
type FoodStockUpdatedData struct {
	ID      string `json:"id"`
	InStock bool   `json:"in_stock"`
}

// CartUpdatedData is the payload for a cart.updated event.
type CartUpdatedData struct {
	UserID string           `json:"user_id"`
	Items  domain.CartItems `json:"items"`
	Count  int              `json:"count"`
}

// UserRegisteredData is the payload for a user.registered event.
type UserRegisteredData struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Sink is the part of *pkgkafka.Producer the event producer needs.
type Sink interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes food API events to Kafka.
type Producer struct {
	kafka  Sink
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka Sink, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishFoodAdded publishes a food.added event.
func (p *Producer) PublishFoodAdded(ctx context.Context, food *domain.Product) error {
	return p.publish(ctx, TopicFoodAdded, food.ID, AggregateTypeFood, FoodAddedData{
		ID:           food.ID,
		Name:         food.Name,
		Category:     food.Category,
		PackingSizes: food.PackingSizes,
		Image:        food.Image,
	})
}

// PublishFoodRemoved publishes a food.removed event.
func (p *Producer) PublishFoodRemoved(ctx context.Context, id string) error {
	return p.publish(ctx, TopicFoodRemoved, id, AggregateTypeFood, FoodRemovedData{ID: id})
}

// PublishFoodStockUpdated publishes a food.stock_updated event.
func (p *Producer) PublishFoodStockUpdated(ctx context.Context, id string, inStock bool) error {
	return p.publish(ctx, TopicFoodStockUpdated, id, AggregateTypeFood, FoodStockUpdatedData{ID: id, InStock: inStock})
}

// PublishCartUpdated publishes a cart.updated event.
func (p *Producer) PublishCartUpdated(ctx context.Context, userID string, items domain.CartItems) error {
	return p.publish(ctx, TopicCartUpdated, userID, AggregateTypeCart, CartUpdatedData{
		UserID: userID,
		Items:  items,
		Count:  items.Count(),
	})
}

// PublishUserRegistered publishes a user.registered event.
func (p *Producer) PublishUserRegistered(ctx context.Context, user *domain.User) error {
	return p.publish(ctx, TopicUserRegistered, user.ID, AggregateTypeUser, UserRegisteredData{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	})
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	event, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, SourceFoodAPI, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		event.WithCorrelationID(id)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
	)

	return nil
}

// Nop discards every event. It is used when Kafka is disabled.
type Nop struct{}

func (Nop) PublishFoodAdded(context.Context, *domain.Product) error            { return nil }
func (Nop) PublishFoodRemoved(context.Context, string) error                   { return nil }
func (Nop) PublishFoodStockUpdated(context.Context, string, bool) error        { return nil }
func (Nop) PublishCartUpdated(context.Context, string, domain.CartItems) error { return nil }
func (Nop) PublishUserRegistered(context.Context, *domain.User) error          { return nil }

var (
	_ Publisher = (*Producer)(nil)
	_ Publisher = Nop{}
	_ Sink      = (*pkgkafka.Producer)(nil)
)
