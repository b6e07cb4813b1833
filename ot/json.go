package ot

import (
	"encoding/json"
	"fmt"
)

// The wire form of an operation is a flat JSON array: a positive integer
// retains that many units (optionally followed by an attribute-delta
// object), a string inserts its text (optionally followed by an attribute
// object), and a negative integer deletes that many units.
// e.g. ["ab", -1, 2, {"bold": true}]

// MarshalJSON implements json.Marshaler.
func (o *Operation) MarshalJSON() ([]byte, error) {
	out := make([]any, 0, len(o.spans))
	for _, s := range o.spans {
		switch s.kind {
		case retainSpan:
			out = append(out, s.n)
			if len(s.attrs) > 0 {
				out = append(out, s.attrs)
			}
		case insertSpan:
			out = append(out, decodeUnits(s.text))
			if len(s.attrs) > 0 {
				out = append(out, s.attrs)
			}
		case deleteSpan:
			out = append(out, -s.n)
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler. Zero or fractional counts,
// attribute objects on deletes and non-scalar attribute values are all
// rejected.
func (o *Operation) UnmarshalJSON(b []byte) error {
	var raw []any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	*o = Operation{}
	i := 0
	// takeAttrs consumes a following attribute object, if any.
	takeAttrs := func() (Attributes, error) {
		if i >= len(raw) {
			return nil, nil
		}
		m, ok := raw[i].(map[string]any)
		if !ok {
			return nil, nil
		}
		i++
		return attributesFrom(m)
	}

	for i < len(raw) {
		switch v := raw[i].(type) {
		case float64:
			n := int(v)
			if float64(n) != v || n == 0 {
				return fmt.Errorf("ot: bad component count %v", v)
			}
			i++
			if n < 0 {
				o.Delete(-n)
				continue
			}
			attrs, err := takeAttrs()
			if err != nil {
				return err
			}
			o.Retain(n, attrs)

		case string:
			i++
			attrs, err := takeAttrs()
			if err != nil {
				return err
			}
			o.Insert(v, attrs)

		default:
			return fmt.Errorf("ot: unexpected component %T", raw[i])
		}
	}
	return nil
}

// attributesFrom validates a decoded attribute object. Values must be JSON
// scalars so runtime comparisons on them stay total.
func attributesFrom(m map[string]any) (Attributes, error) {
	if len(m) == 0 {
		return nil, nil
	}
	out := make(Attributes, len(m))
	for k, v := range m {
		switch v.(type) {
		case bool, string, float64:
			out[k] = v
		default:
			return nil, fmt.Errorf("ot: attribute %q has non-scalar value %T", k, v)
		}
	}
	return out, nil
}
