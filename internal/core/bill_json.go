package core

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// UnmarshalJSON decodes a stored bill record leniently so one odd field does
// not make the record unreadable: amount and vat accept numbers or strings,
// a blank or null vat is empty, and a missing or unreadable pct is
// DefaultPct. An unreadable amount is left zero.
func (b *Bill) UnmarshalJSON(data []byte) error {
	type plain Bill
	aux := struct {
		*plain
		Amount json.RawMessage `json:"amount"`
		VAT    json.RawMessage `json:"vat"`
		Pct    json.RawMessage `json:"pct"`
	}{plain: (*plain)(b)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	b.Amount = decimal.Zero
	if d, ok := ParseStoredDecimal(rawScalar(aux.Amount)); ok {
		b.Amount = d
	}

	b.VAT = decimal.NullDecimal{}
	if d, ok := ParseStoredDecimal(rawScalar(aux.VAT)); ok {
		b.VAT = decimal.NewNullDecimal(d)
	}

	b.Pct = DefaultPct
	if p, err := strconv.Atoi(strings.TrimSpace(rawScalar(aux.Pct))); err == nil {
		b.Pct = p
	}
	return nil
}

// rawScalar returns the text of a JSON string or number, or "" for null,
// absent and non-scalar values.
func rawScalar(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return s
	}
	if raw[0] == '{' || raw[0] == '[' {
		return ""
	}
	return string(raw)
}
