package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/utafrali/FoodStore/pkg/logger"
)

type recordingWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

// --- Event ---

func TestNewEvent_Fields(t *testing.T) {
	type stockData struct {
		FoodID  string `json:"food_id"`
		InStock bool   `json:"in_stock"`
	}

	data := stockData{FoodID: "f-1", InStock: false}
	event, err := NewEvent("food.stock_updated", "f-1", "food", "foodapi", data)
	require.NoError(t, err)

	assert.Len(t, event.EventID, 36)
	assert.Equal(t, "food.stock_updated", event.EventType)
	assert.Equal(t, "food", event.AggregateType)
	assert.Equal(t, 1, event.Version)
	assert.WithinDuration(t, time.Now().UTC(), event.Timestamp, 2*time.Second)

	var decoded stockData
	require.NoError(t, event.UnmarshalData(&decoded))
	assert.Equal(t, data, decoded)
}

func TestNewEvent_InvalidData(t *testing.T) {
	_, err := NewEvent("x", "a", "t", "s", make(chan int))
	require.Error(t, err)
}

func TestEvent_Chaining(t *testing.T) {
	event := &Event{}
	got := event.WithCorrelationID("corr-1").WithMetadata("user_id", "u-1")
	assert.Same(t, event, got)
	assert.Equal(t, "corr-1", event.CorrelationID)
	assert.Equal(t, "u-1", event.Metadata["user_id"])
}

func TestUnmarshalEvent(t *testing.T) {
	original, err := NewEvent("cart.updated", "u-1", "cart", "foodapi", map[string]int{"A|250g": 2})
	require.NoError(t, err)
	raw, err := original.Marshal()
	require.NoError(t, err)

	restored, err := UnmarshalEvent(raw)
	require.NoError(t, err)
	assert.Equal(t, original.EventID, restored.EventID)
	assert.JSONEq(t, string(original.Data), string(restored.Data))

	_, err = UnmarshalEvent([]byte(`{broken`))
	assert.Error(t, err)
}

func TestTopic(t *testing.T) {
	assert.Equal(t, "foodstore.food.added", Topic("food", "added"))
	assert.Equal(t, "foodstore.cart.updated", Topic("cart", "updated"))
}

// --- Producer ---

func TestProducer_PublishSetsKeyAndHeaders(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	w := &recordingWriter{}
	p := &Producer{writer: w, logger: logger.Discard()}

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled,
	}))

	event, err := NewEvent("food.added", "f-9", "food", "foodapi", nil)
	require.NoError(t, err)
	event.WithCorrelationID("corr-7")

	require.NoError(t, p.Publish(ctx, Topic("food", "added"), event))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "foodstore.food.added", msg.Topic)
	assert.Equal(t, "f-9", string(msg.Key))

	headers := NewHeaderCarrier(&msg.Headers)
	assert.Equal(t, "food.added", headers.Get("event_type"))
	assert.Equal(t, "corr-7", headers.Get("correlation_id"))
	assert.Contains(t, headers.Get("traceparent"), "4bf92f3577b34da6a3ce929d0e0e4736")

	var body Event
	require.NoError(t, json.Unmarshal(msg.Value, &body))
	assert.Equal(t, event.EventID, body.EventID)
}

func TestProducer_PublishError(t *testing.T) {
	p := &Producer{writer: &recordingWriter{err: errors.New("leader not available")}, logger: logger.Discard()}
	event, _ := NewEvent("food.removed", "f-1", "food", "foodapi", nil)

	err := p.Publish(context.Background(), "t", event)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish event to t")
}

func TestProducer_Close(t *testing.T) {
	w := &recordingWriter{}
	p := &Producer{writer: w}
	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestNewProducer_DoesNotConnect(t *testing.T) {
	p := NewProducer(DefaultProducerConfig([]string{"localhost:19092"}), nil)
	require.NotNil(t, p)
	assert.Equal(t, []string{"localhost:19092"}, p.brokers)
	assert.NoError(t, p.Close())
}

func TestPingBrokers_NoBrokers(t *testing.T) {
	err := PingBrokers(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no brokers configured")
}

func TestProducer_PublishRecordsResult(t *testing.T) {
	topic := Topic("food", "metrics_check")
	okBefore := testutil.ToFloat64(eventsPublished.WithLabelValues(topic, resultOK))
	errBefore := testutil.ToFloat64(eventsPublished.WithLabelValues(topic, resultError))

	event, err := NewEvent("food.added", "f-1", "food", "foodapi", nil)
	require.NoError(t, err)

	ok := &Producer{writer: &recordingWriter{}, logger: logger.Discard()}
	require.NoError(t, ok.Publish(context.Background(), topic, event))

	failing := &Producer{writer: &recordingWriter{err: errors.New("broker gone")}, logger: logger.Discard()}
	require.Error(t, failing.Publish(context.Background(), topic, event))

	assert.Equal(t, okBefore+1, testutil.ToFloat64(eventsPublished.WithLabelValues(topic, resultOK)))
	assert.Equal(t, errBefore+1, testutil.ToFloat64(eventsPublished.WithLabelValues(topic, resultError)))
}

func TestUnmarshalEvent_RejectsNewerVersion(t *testing.T) {
	_, err := UnmarshalEvent([]byte(`{"event_id":"e-1","version":2,"data":{}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported version 2")
}

func TestEvent_UnmarshalDataEmpty(t *testing.T) {
	var target map[string]any
	assert.Error(t, (&Event{EventID: "e-2"}).UnmarshalData(&target))
}
