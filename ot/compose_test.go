package ot

import (
	"errors"
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestComposeCorrectness(t *testing.T) {
	run := func(text string, a, b *Operation) {
		t.Helper()
		d := NewDoc(text)

		stepped := mustApply(t, mustApply(t, d, a), b)

		c, err := a.Compose(b)
		if err != nil {
			t.Fatalf("compose failed: %v", err)
		}
		direct := mustApply(t, d, c)

		if !stepped.Equal(direct) {
			t.Errorf("compose mismatch for %v then %v: %q vs %q", a, b, stepped.String(), direct.String())
		}
	}

	run("abc",
		New().Retain(1, nil).Insert("X", nil).Retain(2, nil),
		New().Retain(4, nil).Insert("Y", nil))
	run("abc",
		New().Delete(1).Retain(2, nil),
		New().Retain(2, nil).Insert("Y", nil))
	run("abcdef",
		New().Retain(2, nil).Delete(2).Retain(2, nil),
		New().Delete(1).Retain(3, nil))
	run("abc",
		New().Retain(3, Attributes{"bold": true}),
		New().Retain(1, Attributes{"bold": false}).Retain(2, Attributes{"i": true}))
}

func TestComposeInsertDeleteCancel(t *testing.T) {
	a := New().Insert("xy", nil).Retain(2, nil)
	b := New().Delete(2).Retain(2, nil)

	c, err := a.Compose(b)
	if err != nil {
		t.Fatalf("compose failed: %v", err)
	}
	if !c.Noop() {
		t.Errorf("expected inserted-then-deleted text to vanish, got %v", c)
	}
}

func TestComposeInsertAttributes(t *testing.T) {
	// a retain delta over inserted text edits its absolute attribute set;
	// false removes the key outright rather than recording a removal
	a := New().Insert("x", Attributes{"bold": true, "i": true})
	b := New().Retain(1, Attributes{"bold": false})

	c, err := a.Compose(b)
	if err != nil {
		t.Fatalf("compose failed: %v", err)
	}
	want := New().Insert("x", Attributes{"i": true})
	if !c.Equal(want) {
		t.Errorf("got %v, want %v", c, want)
	}
}

func TestComposeLengthMismatch(t *testing.T) {
	a := New().Retain(2, nil)
	b := New().Retain(3, nil)
	if _, err := a.Compose(b); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("expected ErrLengthMismatch, got %v", err)
	}
}

func TestComposeLengths(t *testing.T) {
	a := New().Retain(1, nil).Insert("XY", nil).Delete(2)
	b := New().Retain(2, nil).Delete(1).Insert("Z", nil)

	c, err := a.Compose(b)
	if err != nil {
		t.Fatalf("compose failed: %v", err)
	}
	assert.Equal(t, c.BaseLen(), a.BaseLen())
	assert.Equal(t, c.TargetLen(), b.TargetLen())
}

func TestComposeRandom(t *testing.T) {
	for range 200 {
		d := randomDoc(10)
		a := randomOp(d)
		mid := mustApply(t, d, a)
		b := randomOp(mid)

		c, err := a.Compose(b)
		if err != nil {
			t.Fatalf("compose of %v then %v failed: %v", a, b, err)
		}

		stepped := mustApply(t, mid, b)
		direct := mustApply(t, d, c)
		if !stepped.Equal(direct) {
			t.Fatalf("compose mismatch:\n d=%q\n a=%v\n b=%v\n c=%v", d.String(), a, b, c)
		}
	}
}
