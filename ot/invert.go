package ot

// invertDelta produces the retain delta that undoes the given delta over a
// unit whose attributes were prior.
func invertDelta(delta, prior Attributes) Attributes {
	out := make(Attributes, len(delta))
	for k := range delta {
		if pv, ok := prior[k]; ok {
			out[k] = pv
		} else {
			out[k] = false
		}
	}
	return out.orNil()
}

// Invert derives the operation that undoes this one. It needs the document
// the operation was applied to, to recover deleted text and prior attribute
// values: apply(apply(d, o), o.Invert(d)) == d.
func (o *Operation) Invert(d *Doc) (*Operation, error) {
	if o.baseLen != d.Len() {
		return nil, errLengths("invert", o.baseLen, d.Len())
	}

	out := New()
	pos := 0

	for _, s := range o.spans {
		switch s.kind {
		case retainSpan:
			if len(s.attrs) == 0 {
				out.Retain(s.n, nil)
			} else {
				// prior values differ per unit; the builder merges equal runs
				for i := pos; i < pos+s.n; i++ {
					out.Retain(1, invertDelta(s.attrs, d.attrs[i]))
				}
			}
			pos += s.n

		case insertSpan:
			out.Delete(len(s.text))

		case deleteSpan:
			for i := pos; i < pos+s.n; i++ {
				out.insertUnits(d.units[i:i+1], d.attrs[i])
			}
			pos += s.n
		}
	}

	return out, nil
}
