package domain

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Price is a monetary amount that may be absent. Every serialized shape the
// backend has emitted over time is collapsed into a decimal on decode.
type Price struct {
	Amount decimal.Decimal
	Valid  bool
}

// NewPrice returns a present price.
func NewPrice(d decimal.Decimal) Price {
	return Price{Amount: d, Valid: true}
}

// PriceFromInt returns a present whole-number price.
func PriceFromInt(v int64) Price {
	return NewPrice(decimal.NewFromInt(v))
}

// ParsePrice parses a decimal string. Blank or malformed input yields an
// absent price and false.
func ParsePrice(s string) (Price, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Price{}, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Price{}, false
	}
	return NewPrice(d), true
}

// Or returns the amount, or zero when the price is absent.
func (p Price) Or() decimal.Decimal {
	if !p.Valid {
		return decimal.Zero
	}
	return p.Amount
}

func (p Price) String() string {
	if !p.Valid {
		return ""
	}
	return p.Amount.String()
}

// boxed numeric wrappers written by document stores' extended JSON.
var boxedKeys = []string{"$numberInt", "$numberDouble", "$numberLong", "$numberDecimal"}

// UnmarshalJSON accepts a number, a numeric string or a boxed number.
// Anything else decodes to an absent price without error.
func (p *Price) UnmarshalJSON(data []byte) error {
	*p = Price{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err == nil {
			*p, _ = ParsePrice(s)
		}
	case '{':
		var boxed map[string]json.RawMessage
		if err := json.Unmarshal(data, &boxed); err != nil {
			return nil
		}
		for _, k := range boxedKeys {
			if raw, ok := boxed[k]; ok {
				return p.UnmarshalJSON(raw)
			}
		}
	default:
		*p, _ = ParsePrice(string(data))
	}
	return nil
}

// MarshalJSON encodes a plain JSON number, or null when absent.
func (p Price) MarshalJSON() ([]byte, error) {
	if !p.Valid {
		return []byte("null"), nil
	}
	return []byte(p.Amount.String()), nil
}
