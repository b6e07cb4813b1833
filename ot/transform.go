package ot

// transformAttributes splits two concurrent retain deltas over the same span
// into the deltas each side must still apply after the other. Where both set
// the same attribute to different values the second side's value survives:
// it stays in bPrime and is dropped from aPrime, so both apply orders end on
// b's value.
func transformAttributes(a, b Attributes) (aPrime, bPrime Attributes) {
	aPrime = Attributes{}
	bPrime = Attributes{}
	for k, av := range a {
		bv, ok := b[k]
		if !ok {
			aPrime[k] = av
		} else if av != bv {
			bPrime[k] = bv
		}
		// equal values: neither side needs to reapply
	}
	for k, bv := range b {
		if _, ok := a[k]; !ok {
			bPrime[k] = bv
		}
	}
	return aPrime.orNil(), bPrime.orNil()
}

// Transform resolves two operations made concurrently against the same
// document into [aPrime, bPrime] such that
// apply(apply(d, a), bPrime) == apply(apply(d, b), aPrime) for every valid d.
//
// Ties between inserts at the same position are broken in favour of the
// first argument: its insertion is ordered before the other's. Callers must
// keep the argument order consistent — pass the already-committed
// ("server-side") operation first — or convergence breaks.
func Transform(a, b *Operation) (aPrime, bPrime *Operation, err error) {
	if a.baseLen != b.baseLen {
		return nil, nil, errLengths("transform", a.baseLen, b.baseLen)
	}

	aP, bP := New(), New()
	as, bs := a.spans, b.spans
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

		// Inserts win over everything; the other side retains past them so
		// its later components still land after the inserted text.
		if haveA && ca.kind == insertSpan {
			aP.insertUnits(ca.text, ca.attrs)
			bP.Retain(len(ca.text), nil)
			haveA = false
			continue
		}
		if haveB && cb.kind == insertSpan {
			aP.Retain(len(cb.text), nil)
			bP.insertUnits(cb.text, cb.attrs)
			haveB = false
			continue
		}

		if !haveA && !haveB {
			break
		}
		if !haveA || !haveB {
			return nil, nil, errLengths("transform", a.baseLen, b.baseLen)
		}

		n := min(ca.length(), cb.length())
		switch {
		case ca.kind == retainSpan && cb.kind == retainSpan:
			da, db := transformAttributes(ca.attrs, cb.attrs)
			aP.Retain(n, da)
			bP.Retain(n, db)
		case ca.kind == deleteSpan && cb.kind == deleteSpan:
			// both deleted the same span; nothing left for either
		case ca.kind == deleteSpan && cb.kind == retainSpan:
			aP.Delete(n)
		case ca.kind == retainSpan && cb.kind == deleteSpan:
			bP.Delete(n)
		}

		haveA = consume(&ca, n)
		haveB = consume(&cb, n)
	}

	return aP, bP, nil
}
