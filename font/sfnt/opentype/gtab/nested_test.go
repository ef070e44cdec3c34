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
	"bytes"
	"reflect"
	"testing"

	"github.com/googlefonts/ift-go/font/glyph"
	"github.com/googlefonts/ift-go/font/parser"
	"github.com/googlefonts/ift-go/font/sfnt/opentype/classdef"
	"github.com/googlefonts/ift-go/font/sfnt/opentype/coverage"
	"github.com/googlefonts/ift-go/intset"
)

func roundTripNested(t *testing.T, l1 Subtable, read func(p *parser.Parser, pos int64) (Subtable, error)) Subtable {
	t.Helper()
	data := l1.Encode()
	if len(data) != l1.EncodeLen() {
		t.Errorf("EncodeLen mismatch: %d != %d", l1.EncodeLen(), len(data))
	}
	p := parser.New("test", bytes.NewReader(data))
	if _, err := p.ReadUint16(); err != nil { // format
		t.Fatal(err)
	}
	l2, err := read(p, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(l1, l2) {
		t.Errorf("round trip mismatch: %#v != %#v", l1, l2)
	}
	return l2
}

func TestSeqContext1RoundTrip(t *testing.T) {
	l := &SeqContext1{
		Cov: coverage.Table{5: 0},
		Rules: [][]*SeqRule{
			{
				{Input: []glyph.ID{6, 7}, Actions: Nested{{SequenceIndex: 0, LookupListIndex: 3}}},
			},
		},
	}
	roundTripNested(t, l, readSeqContext1)
}

func TestSeqContext1IntersectsAndNested(t *testing.T) {
	l := &SeqContext1{
		Cov: coverage.Table{5: 0},
		Rules: [][]*SeqRule{
			{
				{Input: []glyph.ID{6}, Actions: Nested{{LookupListIndex: 2}, {LookupListIndex: 2}, {LookupListIndex: 4}}},
			},
		},
	}
	glyphs := intset.New(100)
	if l.Intersects(glyphs) {
		t.Error("should not intersect an empty glyph set")
	}
	glyphs.Insert(5)
	if !l.Intersects(glyphs) {
		t.Error("should intersect once the covered glyph is present")
	}

	got := l.NestedLookups()
	want := []LookupIndex{2, 4}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NestedLookups() = %v, want %v (deduplicated)", got, want)
	}
}

func TestSeqContext2RoundTrip(t *testing.T) {
	l := &SeqContext2{
		Cov:     coverage.Table{5: 0},
		Classes: classdef.Info{5: 1, 6: 2},
		Rules: [][]*ClassSequenceRule{
			{
				{Input: []uint16{2}, Actions: Nested{{SequenceIndex: 0, LookupListIndex: 1}}},
			},
		},
	}
	roundTripNested(t, l, readSeqContext2)
}

func TestSeqContext3RoundTrip(t *testing.T) {
	l := &SeqContext3{
		Covv: []coverage.Table{
			{5: 0},
			{6: 0},
		},
		Actions: Nested{{SequenceIndex: 1, LookupListIndex: 9}},
	}
	roundTripNested(t, l, readSeqContext3)
}

func TestSeqContext3Intersects(t *testing.T) {
	l := &SeqContext3{
		Covv: []coverage.Table{
			{5: 0},
			{6: 0},
		},
		Actions: Nested{{LookupListIndex: 9}},
	}
	glyphs := intset.New(100)
	glyphs.Insert(6)
	if l.Intersects(glyphs) {
		t.Error("only the first coverage table should gate Intersects")
	}
	glyphs.Insert(5)
	if !l.Intersects(glyphs) {
		t.Error("should intersect once the first input glyph is present")
	}
}

func TestChainedSeqContext1RoundTrip(t *testing.T) {
	l := &ChainedSeqContext1{
		Cov: coverage.Table{5: 0},
		Rules: [][]*ChainedSeqRule{
			{
				{
					Backtrack: []glyph.ID{1, 2},
					Input:     []glyph.ID{6},
					Lookahead: []glyph.ID{8, 9},
					Actions:   Nested{{SequenceIndex: 0, LookupListIndex: 3}},
				},
			},
		},
	}
	roundTripNested(t, l, readChainedSeqContext1)
}
