// Package ot implements an operation algebra for collaborative rich-text
// editing: apply, compose, transform and invert over retain/insert/delete
// component sequences, plus the selection geometry that rides along them.
//
// Positions and lengths are measured in UTF-16 code units, matching the JSON
// clients on the other side of the wire.
package ot

import (
	"errors"
	"fmt"
)

// ErrLengthMismatch is returned when an operation's base or target length
// disagrees with the document (or other operation) it is combined with.
// It indicates a programming or protocol error at the call site and is never
// recovered silently.
var ErrLengthMismatch = errors.New("ot: length mismatch")

func errLengths(what string, a, b int) error {
	return fmt.Errorf("%w: %s saw %d vs %d", ErrLengthMismatch, what, a, b)
}

// Attributes maps attribute names to values, e.g. formatting like bold or
// italic. In a retain delta, a false value removes the attribute.
//
// Values must be comparable scalars (bool, string, number); the wire codec
// enforces this on decode. Attribute maps are shared rather than copied as
// operations are applied, so callers must not mutate a map after handing it
// to the algebra.
type Attributes map[string]any

// Equal reports whether both maps hold the same entries.
// A nil and an empty map are equal.
func (a Attributes) Equal(b Attributes) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		other, ok := b[k]
		if !ok || other != v {
			return false
		}
	}
	return true
}

func (a Attributes) clone() Attributes {
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// orNil collapses an empty map to nil so canonical operations compare equal.
func (a Attributes) orNil() Attributes {
	if len(a) == 0 {
		return nil
	}
	return a
}

// applyDelta produces the attribute set for one document unit after the
// given retain delta. The base map is never mutated.
func applyDelta(base, delta Attributes) Attributes {
	if len(delta) == 0 {
		return base
	}
	out := base.clone()
	for k, v := range delta {
		if v == false {
			delete(out, k)
		} else {
			out[k] = v
		}
	}
	return out.orNil()
}
