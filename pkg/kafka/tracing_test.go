package kafka

import (
	"sort"
	"testing"

	"github.com/segmentio/kafka-go"
)

func TestKafkaHeaderCarrier_SetAndGet(t *testing.T) {
	headers := []kafka.Header{{Key: "existing", Value: []byte("value1")}}
	carrier := NewHeaderCarrier(&headers)

	if got := carrier.Get("existing"); got != "value1" {
		t.Errorf("Get(existing) = %q, want %q", got, "value1")
	}
	if got := carrier.Get("missing"); got != "" {
		t.Errorf("Get(missing) = %q, want empty", got)
	}

	carrier.Set("new-key", "new-value")
	carrier.Set("existing", "updated")
	if got := carrier.Get("existing"); got != "updated" {
		t.Errorf("Get(existing) after update = %q", got)
	}
	if len(headers) != 2 {
		t.Errorf("headers = %d, want 2 (Set must replace, not append)", len(headers))
	}
}

func TestKafkaHeaderCarrier_Keys(t *testing.T) {
	headers := []kafka.Header{{Key: "b"}, {Key: "a"}}
	keys := NewHeaderCarrier(&headers).Keys()
	sort.Strings(keys)
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
		t.Errorf("Keys() = %v", keys)
	}

	var empty []kafka.Header
	if n := len(NewHeaderCarrier(&empty).Keys()); n != 0 {
		t.Errorf("Keys() on empty headers = %d, want 0", n)
	}
}
