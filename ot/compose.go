package ot

// composeAttributes merges an attribute delta into an earlier attribute
// component. When the earlier component is an insert its attributes are
// absolute, so a false (removal) entry deletes the key outright instead of
// recording a removal.
func composeAttributes(first, second Attributes, firstIsInsert bool) Attributes {
	out := first.clone()
	for k, v := range second {
		if firstIsInsert && v == false {
			delete(out, k)
			continue
		}
		out[k] = v
	}
	return out.orNil()
}

// Compose combines this operation with one that applies directly after it,
// producing a single operation with the same effect:
// apply(apply(d, o), b) == apply(d, o.Compose(b)) for every valid d.
// o.TargetLen must equal b.BaseLen.
func (o *Operation) Compose(b *Operation) (*Operation, error) {
	if o.targetLen != b.baseLen {
		return nil, errLengths("compose", o.targetLen, b.baseLen)
	}

	out := New()
	as, bs := o.spans, b.spans
	var ca, cb span
	var haveA, haveB bool

	for {
		if !haveA && len(as) > 0 {
			ca, as = as[0], as[1:]
			haveA = true
		}
		if !haveB && len(bs) > 0 {
			cb, bs = bs[0], bs[1:]
			haveB = true
		}

		// A's deletes and B's inserts pass through unchanged; they never
		// overlap with a component of the other side.
		if haveA && ca.kind == deleteSpan {
			out.Delete(ca.n)
			haveA = false
			continue
		}
		if haveB && cb.kind == insertSpan {
			out.insertUnits(cb.text, cb.attrs)
			haveB = false
			continue
		}

		if !haveA && !haveB {
			break
		}
		if !haveA || !haveB {
			// lengths agreed but components ran out, e.g. a malformed op
			return nil, errLengths("compose", o.targetLen, b.baseLen)
		}

		n := min(ca.length(), cb.length())
		switch {
		case ca.kind == retainSpan && cb.kind == retainSpan:
			out.Retain(n, composeAttributes(ca.attrs, cb.attrs, false))
		case ca.kind == retainSpan && cb.kind == deleteSpan:
			out.Delete(n)
		case ca.kind == insertSpan && cb.kind == retainSpan:
			out.insertUnits(ca.text[:n], composeAttributes(ca.attrs, cb.attrs, true))
		case ca.kind == insertSpan && cb.kind == deleteSpan:
			// B deletes what A inserted; both vanish.
		}

		haveA = consume(&ca, n)
		haveB = consume(&cb, n)
	}

	return out, nil
}

// consume discards n leading units from a partially-processed span,
// reporting whether anything remains.
func consume(s *span, n int) bool {
	if s.kind == insertSpan {
		s.text = s.text[n:]
		return len(s.text) > 0
	}
	s.n -= n
	return s.n > 0
}
