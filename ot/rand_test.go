package ot

import (
	"math/rand/v2"
)

// helpers for randomized algebra properties

const randLetters = "abcdefghijklmnopqrstuvwxyz "

func randomText(n int) string {
	out := make([]byte, n)
	for i := range out {
		out[i] = randLetters[rand.IntN(len(randLetters))]
	}
	return string(out)
}

func randomAttributes() Attributes {
	switch rand.IntN(4) {
	case 0:
		return Attributes{"bold": true}
	case 1:
		return Attributes{"i": true}
	case 2:
		return Attributes{"color": []string{"red", "blue", "green"}[rand.IntN(3)]}
	}
	return nil
}

func randomDelta() Attributes {
	attrs := randomAttributes()
	if attrs != nil && rand.IntN(2) == 0 {
		// flip one entry into a removal
		for k := range attrs {
			attrs[k] = false
		}
	}
	return attrs
}

func randomDoc(n int) *Doc {
	op := New()
	for n > 0 {
		k := 1 + rand.IntN(n)
		op.Insert(randomText(k), randomAttributes())
		n -= k
	}
	d, err := op.Apply(NewDoc(""))
	if err != nil {
		panic(err)
	}
	return d
}

// randomOp builds a valid operation against d.
func randomOp(d *Doc) *Operation {
	op := New()
	left := d.Len()
	for left > 0 {
		k := 1 + rand.IntN(left)
		switch rand.IntN(3) {
		case 0:
			op.Retain(k, randomDelta())
		case 1:
			op.Delete(k)
		case 2:
			op.Insert(randomText(1+rand.IntN(4)), randomAttributes())
			continue // consumed nothing
		}
		left -= k
	}
	if rand.IntN(3) == 0 {
		op.Insert(randomText(1+rand.IntN(4)), randomAttributes())
	}
	return op
}
