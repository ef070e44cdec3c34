package intset

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestScenarioS1(t *testing.T) {
	s := New(^uint32(0))
	s.InsertRange(10, 300)
	s.RemoveRange(50, 100)

	got := s.IterRanges()
	want := []Range{{10, 49}, {101, 300}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("IterRanges mismatch (-want +got):\n%s", diff)
	}
	if s.Len() != 240 {
		t.Errorf("Len() = %d, want 240", s.Len())
	}
}

func TestScenarioS2(t *testing.T) {
	s := New(^uint32(0))
	s.InsertRange(0, 511)

	got := s.IterRanges()
	want := []Range{{0, 511}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("IterRanges mismatch (-want +got):\n%s", diff)
	}
	if s.Len() != 512 {
		t.Errorf("Len() = %d, want 512", s.Len())
	}
}

func TestInvertInvolution(t *testing.T) {
	s := New(2000)
	s.InsertRange(10, 300)
	s.InsertRange(600, 700)

	before := append([]uint32(nil), s.Iter()...)
	s.Invert()
	s.Invert()
	after := s.Iter()

	if diff := cmp.Diff(before, after); diff != "" {
		t.Errorf("invert().invert() changed membership (-before +after):\n%s", diff)
	}
}

func TestUnionIdempotentAndCommutative(t *testing.T) {
	a := New(5000)
	a.InsertRange(1, 100)
	a.InsertRange(2000, 2100)

	b := New(5000)
	b.InsertRange(50, 150)
	b.InsertRange(3000, 3050)

	ab := a.Clone()
	ab.Union(b)
	ba := b.Clone()
	ba.Union(a)
	if diff := cmp.Diff(ab.Iter(), ba.Iter()); diff != "" {
		t.Errorf("union not commutative (-ab +ba):\n%s", diff)
	}

	selfUnion := a.Clone()
	selfUnion.Union(a)
	if diff := cmp.Diff(a.Iter(), selfUnion.Iter()); diff != "" {
		t.Errorf("union not idempotent (-a +a.union(a)):\n%s", diff)
	}
}

func TestIntersectSelfIsIdentity(t *testing.T) {
	a := New(5000)
	a.InsertRange(1, 100)
	a.InsertRange(4000, 4050)

	selfIntersect := a.Clone()
	selfIntersect.Intersect(a)
	if diff := cmp.Diff(a.Iter(), selfIntersect.Iter()); diff != "" {
		t.Errorf("intersect(self) not identity (-a +a.intersect(a)):\n%s", diff)
	}
}

func TestSubtractSelfIsEmpty(t *testing.T) {
	a := New(5000)
	a.InsertRange(1, 100)
	a.Subtract(a)
	if !a.IsEmpty() {
		t.Errorf("a.subtract(a) not empty, got %v", a.Iter())
	}
}

func TestSubtractFromEmptyIsEmpty(t *testing.T) {
	empty := New(5000)
	other := New(5000)
	other.InsertRange(1, 100)
	empty.Subtract(other)
	if !empty.IsEmpty() {
		t.Errorf("empty.subtract(x) not empty, got %v", empty.Iter())
	}
}

func TestIterRangesFlattenEqualsIter(t *testing.T) {
	a := New(10000)
	a.InsertRange(5, 20)
	a.InsertRange(100, 100)
	a.InsertRange(9000, 9500)

	var flattened []uint32
	for _, r := range a.IterRanges() {
		for v := r.Lo; ; v++ {
			flattened = append(flattened, v)
			if v == r.Hi {
				break
			}
		}
	}
	if diff := cmp.Diff(a.Iter(), flattened); diff != "" {
		t.Errorf("flatten(iter_ranges) != iter (-iter +flattened):\n%s", diff)
	}
}

func TestIntersectsRangeMatchesIntersect(t *testing.T) {
	a := New(2000)
	a.InsertRange(100, 200)
	a.InsertRange(500, 510)

	cases := []Range{{0, 99}, {100, 100}, {150, 150}, {201, 499}, {505, 1000}, {1500, 1999}}
	for _, r := range cases {
		got := a.IntersectsRange(r.Lo, r.Hi)
		probe := New(2000)
		probe.InsertRange(r.Lo, r.Hi)
		probe.Intersect(a)
		want := !probe.IsEmpty()
		if got != want {
			t.Errorf("IntersectsRange(%d,%d) = %v, want %v", r.Lo, r.Hi, got, want)
		}
	}
}

// referenceSet is a naive ordered-set oracle used to fuzz Set against.
type referenceSet map[uint32]struct{}

func (r referenceSet) sorted() []uint32 {
	out := make([]uint32, 0, len(r))
	for v := range r {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func TestBTreeSetEquivalenceRandomOps(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	s := New(10000)
	ref := referenceSet{}

	for i := 0; i < 2000; i++ {
		op := rng.Intn(4)
		v := uint32(rng.Intn(10001))
		switch op {
		case 0:
			s.Insert(v)
			ref[v] = struct{}{}
		case 1:
			s.Remove(v)
			delete(ref, v)
		case 2:
			hi := v + uint32(rng.Intn(50))
			if hi > 10000 {
				hi = 10000
			}
			s.InsertRange(v, hi)
			for x := v; x <= hi; x++ {
				ref[x] = struct{}{}
			}
		case 3:
			hi := v + uint32(rng.Intn(50))
			if hi > 10000 {
				hi = 10000
			}
			s.RemoveRange(v, hi)
			for x := v; x <= hi; x++ {
				delete(ref, x)
			}
		}
	}

	if diff := cmp.Diff(ref.sorted(), s.Iter()); diff != "" {
		t.Fatalf("set diverged from reference (-ref +set):\n%s", diff)
	}
	if s.Len() != len(ref) {
		t.Errorf("Len() = %d, want %d", s.Len(), len(ref))
	}
	for _, v := range []uint32{0, 1, 5000, 9999, 10000} {
		if s.Contains(v) != (func() bool { _, ok := ref[v]; return ok })() {
			t.Errorf("Contains(%d) mismatch", v)
		}
	}
}

func FuzzSetRangeOps(f *testing.F) {
	f.Add(uint32(10), uint32(300), uint32(50), uint32(100))
	f.Add(uint32(0), uint32(511), uint32(0), uint32(0))
	f.Fuzz(func(t *testing.T, insLo, insHi, remLo, remHi uint32) {
		const max = 1 << 14
		insLo, insHi = clampPair(insLo, insHi, max)
		remLo, remHi = clampPair(remLo, remHi, max)

		s := New(max)
		s.InsertRange(insLo, insHi)
		s.RemoveRange(remLo, remHi)

		var flattened []uint32
		for _, r := range s.IterRanges() {
			if r.Lo > r.Hi {
				t.Fatalf("range has Lo > Hi: %+v", r)
			}
			for v := r.Lo; ; v++ {
				flattened = append(flattened, v)
				if v == r.Hi {
					break
				}
			}
		}
		if diff := cmp.Diff(s.Iter(), flattened); diff != "" {
			t.Fatalf("flatten(iter_ranges) != iter:\n%s", diff)
		}
		if s.Len() != len(flattened) {
			t.Fatalf("Len() = %d, want %d", s.Len(), len(flattened))
		}
	})
}

func clampPair(a, b, max uint32) (uint32, uint32) {
	a %= max + 1
	b %= max + 1
	if a > b {
		a, b = b, a
	}
	return a, b
}
