package ot

import (
	"encoding/json"
	"testing"
)

func TestOperationMarshal(t *testing.T) {
	o := New().Retain(1, Attributes{"bold": true}).Insert("ab", nil).Delete(2)

	b, err := json.Marshal(o)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	want := `[1,{"bold":true},"ab",-2]`
	if string(b) != want {
		t.Errorf("got %s, want %s", b, want)
	}
}

func TestOperationRoundTrip(t *testing.T) {
	ops := []*Operation{
		New(),
		New().Retain(3, nil),
		New().Insert("héllo", Attributes{"i": true}).Delete(1),
		New().Retain(2, Attributes{"color": "red"}).Insert("😀", nil).Retain(1, nil),
	}
	for _, o := range ops {
		b, err := json.Marshal(o)
		if err != nil {
			t.Fatalf("marshal %v failed: %v", o, err)
		}
		var back Operation
		if err := json.Unmarshal(b, &back); err != nil {
			t.Fatalf("unmarshal %s failed: %v", b, err)
		}
		if !back.Equal(o) {
			t.Errorf("round trip of %v gave %v", o, &back)
		}
	}
}

func TestOperationUnmarshalCanonicalizes(t *testing.T) {
	// adjacent same-kind components merge, insert moves before delete
	var o Operation
	if err := json.Unmarshal([]byte(`[1,1,-1,"a","b"]`), &o); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	want := New().Retain(2, nil).Insert("ab", nil).Delete(1)
	if !o.Equal(want) {
		t.Errorf("got %v, want %v", &o, want)
	}
}

func TestOperationUnmarshalRejects(t *testing.T) {
	bad := []string{
		`[0]`,
		`[1.5]`,
		`[-1,{"bold":true}]`,
		`[{"bold":true},1]`,
		`[true]`,
		`[1,{"bold":[1,2]}]`,
		`["a",{"nested":{"x":1}}]`,
		`{"not":"an array"}`,
	}
	for _, s := range bad {
		var o Operation
		if err := json.Unmarshal([]byte(s), &o); err == nil {
			t.Errorf("expected %s to be rejected", s)
		}
	}
}

func TestWrappedMarshal(t *testing.T) {
	w := Wrap(New().Insert("x", nil), Selection{{Anchor: 1, Head: 1}})

	b, err := json.Marshal(w)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	want := `{"operation":["x"],"selection":[{"anchor":1,"head":1}]}`
	if string(b) != want {
		t.Errorf("got %s, want %s", b, want)
	}

	var back Wrapped
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !back.Op.Equal(w.Op) || len(back.Meta) != 1 || back.Meta[0] != w.Meta[0] {
		t.Errorf("round trip gave %+v", back)
	}
}
