package ot

// Range is a cursor or selection over the document index space.
// Anchor and Head carry direction and are not required to be ordered; a
// caret has Anchor == Head.
type Range struct {
	Anchor int `json:"anchor"`
	Head   int `json:"head"`
}

// Empty reports whether this range is a caret.
func (r Range) Empty() bool {
	return r.Anchor == r.Head
}

// Transform maps the range forward through an operation.
func (r Range) Transform(o *Operation) Range {
	return Range{
		Anchor: transformIndex(r.Anchor, o),
		Head:   transformIndex(r.Head, o),
	}
}

// transformIndex maps a document index forward through an operation's
// components: deletes before it pull it left, inserts at or before it push
// it right. A caret exactly at an insertion point moves past the inserted
// text, keeping a cursor that caused an insert after its own content.
func transformIndex(index int, o *Operation) int {
	newIndex := index
	for _, s := range o.spans {
		switch s.kind {
		case retainSpan:
			index -= s.n
		case insertSpan:
			newIndex += len(s.text)
		case deleteSpan:
			newIndex -= min(index, s.n)
			index -= s.n
		}
		if index < 0 {
			break
		}
	}
	return newIndex
}

// Selection is a set of independent ranges (multi-cursor).
// A nil Selection means no selection is known.
type Selection []Range

// Transform maps every range forward through an operation.
// Overlapping results are kept as-is, not merged.
func (s Selection) Transform(o *Operation) Selection {
	if s == nil {
		return nil
	}
	out := make(Selection, len(s))
	for i, r := range s {
		out[i] = r.Transform(o)
	}
	return out
}
