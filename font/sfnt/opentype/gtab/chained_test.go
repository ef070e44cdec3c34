// seehuhn.de/go/pdf - a library for reading and writing PDF files
// Copyright (C) 2022  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package gtab

import (
	"testing"

	"github.com/googlefonts/ift-go/font/sfnt/opentype/classdef"
	"github.com/googlefonts/ift-go/font/sfnt/opentype/coverage"
	"github.com/googlefonts/ift-go/intset"
)

func TestChainedSeqContext2RoundTrip(t *testing.T) {
	l := &ChainedSeqContext2{
		Cov:              coverage.Table{5: 0},
		BacktrackClasses: classdef.Info{1: 1},
		InputClasses:     classdef.Info{5: 2, 6: 2},
		LookaheadClasses: classdef.Info{9: 3},
		Rules: [][]*ChainedClassSequenceRule{
			{
				{
					Backtrack: []uint16{1},
					Input:     []uint16{2},
					Lookahead: []uint16{3},
					Actions:   Nested{{SequenceIndex: 0, LookupListIndex: 5}},
				},
			},
		},
	}
	roundTripNested(t, l, readChainedSeqContext2)
}

func TestChainedSeqContext3RoundTrip(t *testing.T) {
	l := &ChainedSeqContext3{
		Backtrack: []coverage.Table{{1: 0}},
		Input:     []coverage.Table{{5: 0}},
		Lookahead: []coverage.Table{{9: 0}},
		Actions:   Nested{{SequenceIndex: 0, LookupListIndex: 5}},
	}
	roundTripNested(t, l, readChainedSeqContext3)
}

func TestChainedSeqContext3Intersects(t *testing.T) {
	l := &ChainedSeqContext3{
		Input:   []coverage.Table{{5: 0}},
		Actions: Nested{{LookupListIndex: 5}},
	}
	glyphs := intset.New(100)
	if l.Intersects(glyphs) {
		t.Error("empty glyph set should not intersect")
	}
	glyphs.Insert(5)
	if !l.Intersects(glyphs) {
		t.Error("should intersect once the first input glyph is present")
	}
	if got := l.NestedLookups(); len(got) != 1 || got[0] != 5 {
		t.Errorf("NestedLookups() = %v, want [5]", got)
	}
}
