package ot

// Wrapped pairs an operation with the selection its author held after the
// edit. The selection travels through compose/transform alongside the
// operation but never takes part in Apply.
type Wrapped struct {
	Op   *Operation `json:"operation"`
	Meta Selection  `json:"selection,omitempty"`
}

// Wrap builds a Wrapped operation. meta may be nil.
func Wrap(op *Operation, meta Selection) Wrapped {
	return Wrapped{Op: op, Meta: meta}
}

// Compose combines with an operation that applies directly after this one.
// Only the later selection matters, so it supersedes this one wholesale.
func (w Wrapped) Compose(x Wrapped) (Wrapped, error) {
	op, err := w.Op.Compose(x.Op)
	if err != nil {
		return Wrapped{}, err
	}
	return Wrapped{Op: op, Meta: x.Meta}, nil
}

// TransformWrapped transforms two concurrent wrapped operations, carrying
// each side's selection forward through the other side's operation so it
// stays valid against the merged document. The tie-break of Transform
// applies: pass the committed operation first.
func TransformWrapped(a, b Wrapped) (aPrime, bPrime Wrapped, err error) {
	opA, opB, err := Transform(a.Op, b.Op)
	if err != nil {
		return Wrapped{}, Wrapped{}, err
	}
	aPrime = Wrapped{Op: opA, Meta: a.Meta.Transform(b.Op)}
	bPrime = Wrapped{Op: opB, Meta: b.Meta.Transform(a.Op)}
	return aPrime, bPrime, nil
}

// Invert inverts the operation against the document it applied to.
// The selection is kept as-is; no before-edit selection is tracked.
func (w Wrapped) Invert(d *Doc) (Wrapped, error) {
	op, err := w.Op.Invert(d)
	if err != nil {
		return Wrapped{}, err
	}
	return Wrapped{Op: op, Meta: w.Meta}, nil
}
