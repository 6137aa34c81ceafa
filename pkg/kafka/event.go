package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// TopicPrefix namespaces every topic this module publishes to.
const TopicPrefix = "foodstore"

// SchemaVersion is stamped on every envelope; consumers reject newer majors.
const SchemaVersion = 1

// Topic builds "<prefix>.<aggregate>.<action>", e.g. foodstore.food.added.
func Topic(aggregate, action string) string {
	return TopicPrefix + "." + aggregate + "." + action
}

// Event is the envelope around a domain payload. Data stays raw so a
// consumer can route on EventType before decoding.
type Event struct {
	EventID       string            `json:"event_id"`
	EventType     string            `json:"event_type"`
	AggregateID   string            `json:"aggregate_id"`
	AggregateType string            `json:"aggregate_type"`
	Version       int               `json:"version"`
	Timestamp     time.Time         `json:"timestamp"`
	Source        string            `json:"source"`
	CorrelationID string            `json:"correlation_id,omitempty"`
	Data          json.RawMessage   `json:"data"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// NewEvent wraps data for the aggregate identified by aggregateType/aggregateID.
func NewEvent(eventType, aggregateID, aggregateType, source string, data any) (*Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", eventType, err)
	}
	return &Event{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		Version:       SchemaVersion,
		Timestamp:     time.Now().UTC(),
		Source:        source,
		Data:          raw,
	}, nil
}

// WithCorrelationID sets the correlation id and returns e for chaining.
func (e *Event) WithCorrelationID(id string) *Event {
	e.CorrelationID = id
	return e
}

// WithMetadata adds a metadata pair and returns e for chaining.
func (e *Event) WithMetadata(key, value string) *Event {
	if e.Metadata == nil {
		e.Metadata = map[string]string{}
	}
	e.Metadata[key] = value
	return e
}

// Marshal serializes the event to JSON.
func (e *Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// message builds the Kafka record for e. Records are keyed by aggregate id
// so one partition sees every change to a food or cart in order.
func (e *Event) message(topic string) (kafka.Message, error) {
	value, err := e.Marshal()
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal event: %w", err)
	}
	headers := []kafka.Header{
		{Key: "event_type", Value: []byte(e.EventType)},
		{Key: "source", Value: []byte(e.Source)},
	}
	if e.CorrelationID != "" {
		headers = append(headers, kafka.Header{Key: "correlation_id", Value: []byte(e.CorrelationID)})
	}
	return kafka.Message{
		Topic:   topic,
		Key:     []byte(e.AggregateID),
		Value:   value,
		Headers: headers,
	}, nil
}

// UnmarshalEvent decodes an envelope and rejects versions this build does
// not understand.
func UnmarshalEvent(data []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	if event.Version > SchemaVersion {
		return nil, fmt.Errorf("event %s: unsupported version %d", event.EventID, event.Version)
	}
	return &event, nil
}

// UnmarshalData decodes the payload into target.
func (e *Event) UnmarshalData(target any) error {
	if len(e.Data) == 0 {
		return fmt.Errorf("event %s has no payload", e.EventID)
	}
	return json.Unmarshal(e.Data, target)
}
