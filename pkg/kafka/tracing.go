package kafka

import (
	"github.com/segmentio/kafka-go"
)

// KafkaHeaderCarrier adapts message headers to propagation.TextMapCarrier.
type KafkaHeaderCarrier struct {
	headers *[]kafka.Header
}

// NewHeaderCarrier wraps headers so propagators can read and write them.
func NewHeaderCarrier(headers *[]kafka.Header) *KafkaHeaderCarrier {
	return &KafkaHeaderCarrier{headers: headers}
}

// Get returns the value of key, or "".
func (c *KafkaHeaderCarrier) Get(key string) string {
	for _, h := range *c.headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

// Set replaces or appends key.
func (c *KafkaHeaderCarrier) Set(key, value string) {
	for i, h := range *c.headers {
		if h.Key == key {
			(*c.headers)[i].Value = []byte(value)
			return
		}
	}
	*c.headers = append(*c.headers, kafka.Header{Key: key, Value: []byte(value)})
}

// Keys lists header keys.
func (c *KafkaHeaderCarrier) Keys() []string {
	keys := make([]string, 0, len(*c.headers))
	for _, h := range *c.headers {
		keys = append(keys, h.Key)
	}
	return keys
}
