package ot

import (
	"errors"
	"testing"
)

// converge applies a then b' on one side and b then a' on the other,
// and fails unless both sides produce the same document.
func converge(t *testing.T, d *Doc, a, b *Operation) (*Doc, *Operation, *Operation) {
	t.Helper()

	aPrime, bPrime, err := Transform(a, b)
	if err != nil {
		t.Fatalf("transform failed: %v", err)
	}

	left := mustApply(t, mustApply(t, d, a), bPrime)
	right := mustApply(t, mustApply(t, d, b), aPrime)
	if !left.Equal(right) {
		t.Fatalf("divergence:\n d=%q\n a=%v\n b=%v\n left=%q right=%q",
			d.String(), a, b, left.String(), right.String())
	}
	return left, aPrime, bPrime
}

func TestTransformInsertTie(t *testing.T) {
	d := NewDoc("ab")
	a := New().Insert("X", nil).Retain(2, nil)
	b := New().Insert("Y", nil).Retain(2, nil)

	// same-position inserts resolve in favor of the first argument
	out, _, _ := converge(t, d, a, b)
	if got := out.String(); got != "XYab" {
		t.Errorf("got %q, want %q", got, "XYab")
	}
}

func TestTransformInsertAgainstDelete(t *testing.T) {
	d := NewDoc("abc")
	a := New().Delete(1).Retain(2, nil)
	b := New().Retain(3, nil).Insert("Y", nil)

	out, _, bPrime := converge(t, d, a, b)
	if out.String() != "bcY" {
		t.Errorf("got %q, want %q", out.String(), "bcY")
	}
	want := New().Retain(2, nil).Insert("Y", nil)
	if !bPrime.Equal(want) {
		t.Errorf("rebased op %v, want %v", bPrime, want)
	}
}

func TestTransformDeleteOverlap(t *testing.T) {
	d := NewDoc("abcdef")
	a := New().Retain(1, nil).Delete(3).Retain(2, nil)
	b := New().Retain(3, nil).Delete(2).Retain(1, nil)

	// overlapping region is deleted once, not twice
	out, _, _ := converge(t, d, a, b)
	if out.String() != "af" {
		t.Errorf("got %q, want %q", out.String(), "af")
	}
}

func TestTransformInsertInsideDelete(t *testing.T) {
	d := NewDoc("abcd")
	a := New().Retain(1, nil).Delete(2).Retain(1, nil)
	b := New().Retain(2, nil).Insert("X", nil).Retain(2, nil)

	// the insert survives even though its surroundings are gone
	out, _, _ := converge(t, d, a, b)
	if out.String() != "aXd" {
		t.Errorf("got %q, want %q", out.String(), "aXd")
	}
}

func TestTransformAttributeConflict(t *testing.T) {
	d := NewDoc("ab")
	a := New().Retain(2, Attributes{"color": "red"})
	b := New().Retain(2, Attributes{"color": "blue"})

	// the second argument's value wins on both sides
	out, _, _ := converge(t, d, a, b)
	for i := range out.Len() {
		if got := out.AttributesAt(i)["color"]; got != "blue" {
			t.Errorf("unit %d color = %v, want blue", i, got)
		}
	}
}

func TestTransformAttributesDisjoint(t *testing.T) {
	d := NewDoc("ab")
	a := New().Retain(2, Attributes{"bold": true})
	b := New().Retain(2, Attributes{"i": true})

	out, _, _ := converge(t, d, a, b)
	for i := range out.Len() {
		attrs := out.AttributesAt(i)
		if attrs["bold"] != true || attrs["i"] != true {
			t.Errorf("unit %d attrs = %v, want both keys", i, attrs)
		}
	}
}

func TestTransformNoopAgainstNoop(t *testing.T) {
	a := New().Retain(3, nil)
	b := New().Retain(3, nil)
	_, aPrime, bPrime := converge(t, NewDoc("abc"), a, b)
	if !aPrime.Noop() || !bPrime.Noop() {
		t.Errorf("expected noops, got %v and %v", aPrime, bPrime)
	}
}

func TestTransformLengthMismatch(t *testing.T) {
	a := New().Retain(2, nil)
	b := New().Retain(3, nil)
	if _, _, err := Transform(a, b); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("expected ErrLengthMismatch, got %v", err)
	}
}

func TestTransformRandom(t *testing.T) {
	for range 200 {
		d := randomDoc(10)
		a := randomOp(d)
		b := randomOp(d)
		converge(t, d, a, b)
	}
}
