package intset

import "sort"

// Range is an inclusive range of domain values [Lo, Hi].
type Range struct {
	Lo, Hi uint32
}

// defaultMax is the largest possible domain maximum. New always takes
// the maximum explicitly; see also Set.SetMax.
const defaultMax = ^uint32(0)

// Set is a hybrid page-bitmap/range set over uint32. It supports an
// inverted (complement) representation: when Inverted is true, the set
// denotes (domain \ stored pages) rather than the stored pages
// themselves. Toggling Invert is O(1); only iteration and Len over an
// inverted set are O(pages)/O(domain size) respectively.
type Set struct {
	pages    pageMap
	inverted bool
	// max bounds the domain for inverted iteration and Len; it mirrors
	// Domain.Max() for the richest caller (TypedSet) but defaults to
	// ^uint32(0) for raw use.
	max uint32
}

// New returns an empty, non-inverted Set with the given inclusive
// domain maximum (used only when the set is later inverted).
func New(max uint32) *Set {
	return &Set{max: max}
}

// SetMax updates the domain maximum used for inverted-set operations.
func (s *Set) SetMax(max uint32) { s.max = max }

func majorMinor(v uint32) (uint32, uint32) { return v / pageBits, v % pageBits }

// Insert adds v to the set, returning true iff it was not already a
// member.
func (s *Set) Insert(v uint32) bool {
	if s.inverted {
		return s.removeRaw(v)
	}
	return s.insertRaw(v)
}

// Remove removes v from the set, returning true iff it was a member.
func (s *Set) Remove(v uint32) bool {
	if s.inverted {
		return s.insertRaw(v)
	}
	return s.removeRaw(v)
}

func (s *Set) insertRaw(v uint32) bool {
	major, minor := majorMinor(v)
	p := s.pages.getOrCreate(major)
	return p.insert(minor)
}

func (s *Set) removeRaw(v uint32) bool {
	major, minor := majorMinor(v)
	p, ok := s.pages.get(major)
	if !ok {
		return false
	}
	changed := p.remove(minor)
	if changed {
		s.pages.prune(major)
	}
	return changed
}

// Contains reports whether v is a member of the set.
func (s *Set) Contains(v uint32) bool {
	major, minor := majorMinor(v)
	p, ok := s.pages.get(major)
	stored := ok && p.contains(minor)
	if s.inverted {
		return !stored
	}
	return stored
}

// Len returns the number of members. For an inverted set this is
// relative to the configured domain maximum and is only meaningful
// when that maximum is finite.
func (s *Set) Len() int {
	stored := 0
	for _, p := range s.pages.pages {
		stored += p.length
	}
	if !s.inverted {
		return stored
	}
	total := int(uint64(s.max) + 1)
	return total - stored
}

// IsEmpty reports whether the set has no members.
func (s *Set) IsEmpty() bool {
	if !s.inverted {
		return s.pages.isEmpty()
	}
	return s.Len() == 0
}

// Clear removes all members.
func (s *Set) Clear() {
	s.pages.clear()
	s.inverted = false
}

// First returns the smallest member, if any.
func (s *Set) First() (uint32, bool) {
	if !s.inverted {
		major, ok := s.pages.firstMajor()
		if !ok {
			return 0, false
		}
		p, _ := s.pages.get(major)
		local := p.iter()
		if len(local) == 0 {
			return 0, false
		}
		return major*pageBits + local[0], true
	}
	for _, r := range s.gapRanges() {
		return r.Lo, true
	}
	return 0, false
}

// Last returns the largest member, if any.
func (s *Set) Last() (uint32, bool) {
	if !s.inverted {
		major, ok := s.pages.lastMajor()
		if !ok {
			return 0, false
		}
		p, _ := s.pages.get(major)
		local := p.iter()
		if len(local) == 0 {
			return 0, false
		}
		return major*pageBits + local[len(local)-1], true
	}
	ranges := s.gapRanges()
	if len(ranges) == 0 {
		return 0, false
	}
	return ranges[len(ranges)-1].Hi, true
}

// InsertRange adds every value in [lo, hi] to the set.
func (s *Set) InsertRange(lo, hi uint32) {
	if hi < lo {
		return
	}
	if s.inverted {
		s.removeRangeRaw(lo, hi)
		return
	}
	s.insertRangeRaw(lo, hi)
}

// RemoveRange removes every value in [lo, hi] from the set.
func (s *Set) RemoveRange(lo, hi uint32) {
	if hi < lo {
		return
	}
	if s.inverted {
		s.insertRangeRaw(lo, hi)
		return
	}
	s.removeRangeRaw(lo, hi)
}

func (s *Set) insertRangeRaw(lo, hi uint32) {
	majorLo, majorHi := lo/pageBits, hi/pageBits
	for major := majorLo; major <= majorHi; major++ {
		p := s.pages.getOrCreate(major)
		rlo := uint32(0)
		if major == majorLo {
			rlo = lo % pageBits
		}
		rhi := uint32(pageBits - 1)
		if major == majorHi {
			rhi = hi % pageBits
		}
		p.insertRange(rlo, rhi)
		if major == majorHi {
			break
		}
	}
}

func (s *Set) removeRangeRaw(lo, hi uint32) {
	majorLo, majorHi := lo/pageBits, hi/pageBits
	for major := majorLo; major <= majorHi; major++ {
		p, ok := s.pages.get(major)
		if !ok {
			if major == majorHi {
				break
			}
			continue
		}
		rlo := uint32(0)
		if major == majorLo {
			rlo = lo % pageBits
		}
		rhi := uint32(pageBits - 1)
		if major == majorHi {
			rhi = hi % pageBits
		}
		p.removeRange(rlo, rhi)
		s.pages.prune(major)
		if major == majorHi {
			break
		}
	}
}

// IntersectsRange reports whether the set has any member in [lo, hi].
func (s *Set) IntersectsRange(lo, hi uint32) bool {
	if hi < lo {
		return false
	}
	if !s.inverted {
		majorLo, majorHi := lo/pageBits, hi/pageBits
		for major := majorLo; major <= majorHi; major++ {
			p, ok := s.pages.get(major)
			if !ok {
				if major == majorHi {
					break
				}
				continue
			}
			rlo := uint32(0)
			if major == majorLo {
				rlo = lo % pageBits
			}
			rhi := uint32(pageBits - 1)
			if major == majorHi {
				rhi = hi % pageBits
			}
			tmp := &bitPage{}
			tmp.insertRange(rlo, rhi)
			if p.intersectsSet(tmp) {
				return true
			}
			if major == majorHi {
				break
			}
		}
		return false
	}
	// Inverted: the range intersects unless it is fully covered by
	// stored (excluded) pages.
	for v := lo; ; v++ {
		if !s.Contains(v) {
			return true
		}
		if v == hi {
			break
		}
	}
	return false
}

// Iter returns all members in ascending order. Callers must not call
// this on an unbounded inverted set.
func (s *Set) Iter() []uint32 {
	if !s.inverted {
		var out []uint32
		for i, major := range s.pages.majors {
			p := s.pages.pages[i]
			for _, local := range p.iter() {
				out = append(out, major*pageBits+local)
			}
		}
		return out
	}
	var out []uint32
	for _, r := range s.gapRanges() {
		for v := r.Lo; ; v++ {
			out = append(out, v)
			if v == r.Hi {
				break
			}
		}
	}
	return out
}

// IterAfter returns all members strictly greater than v, in ascending
// order.
func (s *Set) IterAfter(v uint32) []uint32 {
	all := s.Iter()
	for i, x := range all {
		if x > v {
			return all[i:]
		}
	}
	return nil
}

// IterRanges returns maximal, non-overlapping, ascending runs of
// members.
func (s *Set) IterRanges() []Range {
	if !s.inverted {
		var out []Range
		var pendingLo, pendingHi uint32
		havePending := false
		for i, major := range s.pages.majors {
			p := s.pages.pages[i]
			for _, pr := range p.iterRanges() {
				lo := major*pageBits + pr.lo
				hi := major*pageBits + pr.hi
				if havePending && lo == pendingHi+1 {
					pendingHi = hi
					continue
				}
				if havePending {
					out = append(out, Range{pendingLo, pendingHi})
				}
				pendingLo, pendingHi = lo, hi
				havePending = true
			}
		}
		if havePending {
			out = append(out, Range{pendingLo, pendingHi})
		}
		return out
	}
	return s.gapRanges()
}

// IterExcludedRanges returns the ascending, non-overlapping ranges of
// values in [0, max] that are NOT members of the set. For a
// non-inverted set this is the gap complement of the stored pages; for
// an inverted set this is exactly the stored pages (clipped to
// [0, max]), since membership there is defined as "not stored".
func (s *Set) IterExcludedRanges() []Range {
	if s.inverted {
		return clipRanges(s.memberRangesRaw(), s.max)
	}
	return s.gapRanges()
}

// gapRanges returns the ascending ranges of values in [0, max] that are
// NOT present in the raw stored pages, independent of the inverted
// flag. This is the "members" view for an inverted set and the
// "excluded" view for a non-inverted one.
func (s *Set) gapRanges() []Range {
	members := s.memberRangesRaw()
	var out []Range
	next := uint32(0)
	for _, r := range members {
		lo, hi := r.Lo, r.Hi
		if lo > s.max {
			break
		}
		if hi > s.max {
			hi = s.max
		}
		if lo > next {
			out = append(out, Range{next, lo - 1})
		}
		if hi+1 < next {
			// overflow guard, unreachable in practice
			continue
		}
		next = hi + 1
		if next == 0 { // wrapped past uint32 max
			return out
		}
	}
	if next <= s.max {
		out = append(out, Range{next, s.max})
	}
	return out
}

// clipRanges clips ranges to [0, max], dropping any range entirely
// beyond it.
func clipRanges(ranges []Range, max uint32) []Range {
	var out []Range
	for _, r := range ranges {
		if r.Lo > max {
			break
		}
		if r.Hi > max {
			r.Hi = max
		}
		out = append(out, r)
	}
	return out
}

// memberRangesRaw returns the ranges of the raw stored page content,
// ignoring the inverted flag.
func (s *Set) memberRangesRaw() []Range {
	var out []Range
	var pendingLo, pendingHi uint32
	havePending := false
	for i, major := range s.pages.majors {
		p := s.pages.pages[i]
		for _, pr := range p.iterRanges() {
			lo := major*pageBits + pr.lo
			hi := major*pageBits + pr.hi
			if havePending && lo == pendingHi+1 {
				pendingHi = hi
				continue
			}
			if havePending {
				out = append(out, Range{pendingLo, pendingHi})
			}
			pendingLo, pendingHi = lo, hi
			havePending = true
		}
	}
	if havePending {
		out = append(out, Range{pendingLo, pendingHi})
	}
	return out
}

// Invert toggles the inverted flag in O(1).
func (s *Set) Invert() {
	s.inverted = !s.inverted
}

// Clone returns a deep copy.
func (s *Set) Clone() *Set {
	return &Set{pages: *s.pages.clone(), inverted: s.inverted, max: s.max}
}

// union, intersect, and subtract are only meaningful between
// non-inverted sets in this implementation's hot path (glyph/feature
// sets are always inclusive in practice); inverted operands are
// normalised via their excluded-range view first.

func (s *Set) asInclusive() *Set {
	if !s.inverted {
		return s
	}
	out := New(s.max)
	for _, r := range s.gapRanges() {
		out.InsertRange(r.Lo, r.Hi)
	}
	return out
}

// Union mutates s in place to be the union of s and other.
func (s *Set) Union(other *Set) {
	a, b := s.asInclusive(), other.asInclusive()
	if a != s {
		*s = *a
	}
	s.inverted = false
	for _, r := range b.IterRanges() {
		s.InsertRange(r.Lo, r.Hi)
	}
}

// Intersect mutates s in place to be the intersection of s and other.
func (s *Set) Intersect(other *Set) {
	a, b := s.asInclusive(), other.asInclusive()
	result := New(s.max)
	for _, r := range a.IterRanges() {
		for v := r.Lo; ; v++ {
			if b.Contains(v) {
				result.Insert(v)
			}
			if v == r.Hi {
				break
			}
		}
	}
	*s = *result
}

// Subtract mutates s in place to remove every member of other.
func (s *Set) Subtract(other *Set) {
	a := s.asInclusive()
	if a != s {
		*s = *a
	}
	s.inverted = false
	for _, r := range other.asInclusive().IterRanges() {
		s.RemoveRange(r.Lo, r.Hi)
	}
}

// Extend inserts every value from vs, which must already be sorted
// ascending; this is the fast path (no internal sort needed).
func (s *Set) Extend(vs []uint32) {
	for _, v := range vs {
		s.Insert(v)
	}
}

// ExtendUnsorted inserts every value from vs, sorting a copy first and
// then inserting the values one at a time via Extend.
func (s *Set) ExtendUnsorted(vs []uint32) {
	cp := append([]uint32(nil), vs...)
	sort.Slice(cp, func(i, j int) bool { return cp[i] < cp[j] })
	s.Extend(cp)
}

// RemoveAll removes every value in vs.
func (s *Set) RemoveAll(vs []uint32) {
	for _, v := range vs {
		s.Remove(v)
	}
}
