package ot

import (
	"fmt"
	"slices"
	"strings"
)

type spanKind uint8

const (
	retainSpan spanKind = iota
	insertSpan
	deleteSpan
)

// span is a single component of an Operation.
// Exactly one of n/text is meaningful: n for retain/delete counts, text for
// insert units. attrs holds a retain delta or an insert attribute set.
type span struct {
	kind  spanKind
	n     int
	text  []uint16
	attrs Attributes
}

func (s span) length() int {
	if s.kind == insertSpan {
		return len(s.text)
	}
	return s.n
}

// Operation is an ordered sequence of retain/insert/delete components.
//
// Build one with New and the chainable Retain/Insert/Delete methods; once an
// operation has been shared (applied, composed, transformed, sent) treat it
// as an immutable value. The builder keeps the component sequence canonical:
// adjacent mergeable components are merged and an insert adjacent to a
// delete is ordered before it, so equal operations have equal
// representations.
type Operation struct {
	spans     []span
	baseLen   int
	targetLen int
}

// New returns an empty operation.
func New() *Operation {
	return &Operation{}
}

// BaseLen is the length a document must have for Apply to accept this
// operation: the sum of all retain and delete counts.
func (o *Operation) BaseLen() int {
	return o.baseLen
}

// TargetLen is the document length after Apply: the sum of all retain and
// insert counts.
func (o *Operation) TargetLen() int {
	return o.targetLen
}

// Noop reports whether applying this operation changes nothing.
func (o *Operation) Noop() bool {
	if len(o.spans) == 0 {
		return true
	}
	return len(o.spans) == 1 && o.spans[0].kind == retainSpan && len(o.spans[0].attrs) == 0
}

// Retain keeps the next n units, adjusting their attributes by the given
// delta (nil for none; a false value removes an attribute).
func (o *Operation) Retain(n int, attrs Attributes) *Operation {
	if n <= 0 {
		return o
	}
	attrs = attrs.orNil()
	o.baseLen += n
	o.targetLen += n

	if last := o.last(); last != nil && last.kind == retainSpan && last.attrs.Equal(attrs) {
		last.n += n
		return o
	}
	o.spans = append(o.spans, span{kind: retainSpan, n: n, attrs: attrs})
	return o
}

// Insert adds new text carrying the given attribute set.
func (o *Operation) Insert(text string, attrs Attributes) *Operation {
	return o.insertUnits(encodeUnits(text), attrs)
}

func (o *Operation) insertUnits(units []uint16, attrs Attributes) *Operation {
	if len(units) == 0 {
		return o
	}
	attrs = attrs.orNil()
	o.targetLen += len(units)

	// Keep inserts ordered before an adjacent delete so the canonical form
	// is unique.
	i := len(o.spans)
	if i > 0 && o.spans[i-1].kind == deleteSpan {
		i--
	}
	if i > 0 && o.spans[i-1].kind == insertSpan && o.spans[i-1].attrs.Equal(attrs) {
		o.spans[i-1].text = append(o.spans[i-1].text, units...)
		return o
	}
	o.spans = slices.Insert(o.spans, i, span{kind: insertSpan, text: slices.Clone(units), attrs: attrs})
	return o
}

// Delete removes the next n units.
func (o *Operation) Delete(n int) *Operation {
	if n <= 0 {
		return o
	}
	o.baseLen += n

	if last := o.last(); last != nil && last.kind == deleteSpan {
		last.n += n
		return o
	}
	o.spans = append(o.spans, span{kind: deleteSpan, n: n})
	return o
}

func (o *Operation) last() *span {
	if len(o.spans) == 0 {
		return nil
	}
	return &o.spans[len(o.spans)-1]
}

// Equal reports whether both operations have the same canonical components.
func (o *Operation) Equal(p *Operation) bool {
	if o.baseLen != p.baseLen || o.targetLen != p.targetLen || len(o.spans) != len(p.spans) {
		return false
	}
	for i, s := range o.spans {
		q := p.spans[i]
		if s.kind != q.kind || s.n != q.n || !slices.Equal(s.text, q.text) || !s.attrs.Equal(q.attrs) {
			return false
		}
	}
	return true
}

func (o *Operation) String() string {
	var b strings.Builder
	for i, s := range o.spans {
		if i > 0 {
			b.WriteByte(' ')
		}
		switch s.kind {
		case retainSpan:
			if len(s.attrs) == 0 {
				fmt.Fprintf(&b, "retain(%d)", s.n)
			} else {
				fmt.Fprintf(&b, "retain(%d,%v)", s.n, map[string]any(s.attrs))
			}
		case insertSpan:
			if len(s.attrs) == 0 {
				fmt.Fprintf(&b, "insert(%q)", decodeUnits(s.text))
			} else {
				fmt.Fprintf(&b, "insert(%q,%v)", decodeUnits(s.text), map[string]any(s.attrs))
			}
		case deleteSpan:
			fmt.Fprintf(&b, "delete(%d)", s.n)
		}
	}
	return b.String()
}

// Apply runs this operation against a document, producing a new one.
// The document length must equal BaseLen.
func (o *Operation) Apply(d *Doc) (*Doc, error) {
	if o.baseLen != d.Len() {
		return nil, errLengths("apply", o.baseLen, d.Len())
	}

	units := make([]uint16, 0, o.targetLen)
	attrs := make([]Attributes, 0, o.targetLen)
	pos := 0

	for _, s := range o.spans {
		switch s.kind {
		case retainSpan:
			units = append(units, d.units[pos:pos+s.n]...)
			if len(s.attrs) == 0 {
				attrs = append(attrs, d.attrs[pos:pos+s.n]...)
			} else {
				for i := pos; i < pos+s.n; i++ {
					attrs = append(attrs, applyDelta(d.attrs[i], s.attrs))
				}
			}
			pos += s.n

		case insertSpan:
			units = append(units, s.text...)
			for range s.text {
				attrs = append(attrs, s.attrs)
			}

		case deleteSpan:
			pos += s.n
		}
	}

	return &Doc{units: units, attrs: attrs}, nil
}
