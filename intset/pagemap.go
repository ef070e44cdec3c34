package intset

import "sort"

// pageMap is an ordered sequence of (major, page) pairs, equivalent to a
// sorted map[uint32]*bitPage. Majors are kept strictly increasing;
// lookups use binary search.
type pageMap struct {
	majors []uint32
	pages  []*bitPage
}

func (m *pageMap) find(major uint32) (int, bool) {
	i := sort.Search(len(m.majors), func(i int) bool { return m.majors[i] >= major })
	if i < len(m.majors) && m.majors[i] == major {
		return i, true
	}
	return i, false
}

// getOrCreate returns the page for major, creating an empty one and
// inserting it in order if absent.
func (m *pageMap) getOrCreate(major uint32) *bitPage {
	i, ok := m.find(major)
	if ok {
		return m.pages[i]
	}
	p := &bitPage{}
	m.majors = append(m.majors, 0)
	copy(m.majors[i+1:], m.majors[i:])
	m.majors[i] = major
	m.pages = append(m.pages, nil)
	copy(m.pages[i+1:], m.pages[i:])
	m.pages[i] = p
	return p
}

func (m *pageMap) get(major uint32) (*bitPage, bool) {
	i, ok := m.find(major)
	if !ok {
		return nil, false
	}
	return m.pages[i], true
}

// prune removes the page at major if it is empty.
func (m *pageMap) prune(major uint32) {
	i, ok := m.find(major)
	if !ok || !m.pages[i].isEmpty() {
		return
	}
	m.majors = append(m.majors[:i], m.majors[i+1:]...)
	m.pages = append(m.pages[:i], m.pages[i+1:]...)
}

func (m *pageMap) clear() {
	m.majors = nil
	m.pages = nil
}

func (m *pageMap) isEmpty() bool { return len(m.majors) == 0 }

func (m *pageMap) clone() *pageMap {
	out := &pageMap{
		majors: append([]uint32(nil), m.majors...),
		pages:  make([]*bitPage, len(m.pages)),
	}
	for i, p := range m.pages {
		cp := *p
		out.pages[i] = &cp
	}
	return out
}

// firstMajor/lastMajor report the lowest/highest major index present.
func (m *pageMap) firstMajor() (uint32, bool) {
	if len(m.majors) == 0 {
		return 0, false
	}
	return m.majors[0], true
}

func (m *pageMap) lastMajor() (uint32, bool) {
	if len(m.majors) == 0 {
		return 0, false
	}
	return m.majors[len(m.majors)-1], true
}
