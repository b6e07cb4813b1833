package ot

import (
	"unicode/utf16"
)

// Doc is a rich-text document value: a sequence of UTF-16 code units where
// each unit optionally carries an attribute set.
//
// A Doc is immutable once built; Operation.Apply returns a fresh Doc.
// Attribute maps may be shared between revisions and are never changed in
// place.
type Doc struct {
	units []uint16
	attrs []Attributes
}

// NewDoc builds a plain (attribute-free) document from text.
func NewDoc(text string) *Doc {
	units := encodeUnits(text)
	return &Doc{units: units, attrs: make([]Attributes, len(units))}
}

// Len returns the document length in UTF-16 code units.
func (d *Doc) Len() int {
	return len(d.units)
}

// String returns the document text without attributes.
func (d *Doc) String() string {
	return decodeUnits(d.units)
}

// AttributesAt returns the attribute set of the unit at i, or nil.
// The returned map must not be mutated.
func (d *Doc) AttributesAt(i int) Attributes {
	return d.attrs[i]
}

// Equal reports whether both documents hold the same units and attributes.
func (d *Doc) Equal(other *Doc) bool {
	if d.Len() != other.Len() {
		return false
	}
	for i, u := range d.units {
		if other.units[i] != u || !d.attrs[i].Equal(other.attrs[i]) {
			return false
		}
	}
	return true
}

func encodeUnits(s string) []uint16 {
	return utf16.Encode([]rune(s))
}

func decodeUnits(u []uint16) string {
	return string(utf16.Decode(u))
}
