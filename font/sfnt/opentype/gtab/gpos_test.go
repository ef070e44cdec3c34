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

func roundTripGpos(t *testing.T, l1 Subtable, read func(p *parser.Parser, pos int64) (Subtable, error)) Subtable {
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

func TestGpos1_1RoundTrip(t *testing.T) {
	l := &Gpos1_1{
		Cov:    coverage.Table{8: 0, 9: 1},
		Adjust: &GposValueRecord{XAdvance: 100},
	}
	roundTripGpos(t, l, readGpos1_1)
}

func TestGpos1_1Intersects(t *testing.T) {
	l := &Gpos1_1{
		Cov:    coverage.Table{8: 0, 9: 1},
		Adjust: &GposValueRecord{XAdvance: 100},
	}
	glyphs := intset.New(100)
	if l.Intersects(glyphs) {
		t.Error("empty glyph set should not intersect")
	}
	glyphs.Insert(9)
	if !l.Intersects(glyphs) {
		t.Error("should intersect once a covered glyph is present")
	}
	before := glyphs.Len()
	l.ClosureGlyphs(glyphs)
	if glyphs.Len() != before {
		t.Error("GPOS subtables must never widen the glyph set")
	}
}

func TestGpos1_2RoundTrip(t *testing.T) {
	l := &Gpos1_2{
		Cov: coverage.Table{8: 0, 9: 1},
		Adjust: []*GposValueRecord{
			{XAdvance: 100},
			{XAdvance: 50, XPlacement: -50},
		},
	}
	roundTripGpos(t, l, readGpos1_2)
}

func TestGpos2_1RoundTrip(t *testing.T) {
	l := &Gpos2_1{
		Cov: coverage.Table{1: 0, 3: 1},
		Adjust: []map[glyph.ID]*PairAdjust{
			{
				2: {First: &GposValueRecord{XAdvance: -10}, Second: &GposValueRecord{}},
			},
			{
				2: {First: &GposValueRecord{XAdvance: -10}, Second: &GposValueRecord{}},
				4: {
					First:  &GposValueRecord{XAdvance: -10},
					Second: &GposValueRecord{XPlacement: 5},
				},
				6: {
					First: &GposValueRecord{XAdvance: -10},
					Second: &GposValueRecord{
						XPlacement:        1,
						YPlacement:        2,
						XAdvance:          3,
						YAdvance:          4,
						XPlacementDevOffs: 5,
						YPlacementDevOffs: 6,
						XAdvanceDevOffs:   7,
						YAdvanceDevOffs:   8,
					},
				},
			},
		},
	}
	roundTripGpos(t, l, readGpos2_1)
}

func TestGpos2_2RoundTrip(t *testing.T) {
	l := &Gpos2_2{
		Cov:    coverage.Table{1: 0, 12: 1},
		Class1: classdef.Info{1: 1, 2: 1, 12: 2},
		Class2: classdef.Info{3: 1, 4: 2},
		Adjust: [][]*PairAdjust{
			{
				{
					First:  &GposValueRecord{XPlacement: 1, YPlacement: 2, XAdvance: 3, YAdvance: 4},
					Second: &GposValueRecord{XPlacement: 5, YPlacement: 6, XAdvance: 7, YAdvance: 8},
				},
				{
					First:  &GposValueRecord{XPlacement: 9, YPlacement: 10, XAdvance: 11, YAdvance: 12},
					Second: &GposValueRecord{XPlacement: 13, YPlacement: 14, XAdvance: 15, YAdvance: 16},
				},
				{
					First:  &GposValueRecord{XPlacement: 1000, YPlacement: 2000, XAdvance: 3000, YAdvance: 4000},
					Second: &GposValueRecord{XPlacement: 5000, YPlacement: 6000, XAdvance: 7000, YAdvance: 8000},
				},
			},
		},
	}
	data := l.Encode()
	p := parser.New("test", bytes.NewReader(data))
	_, err := p.ReadUint16()
	if err != nil {
		t.Fatal(err)
	}
	got, err := readGpos2_2(p, 0)
	if err != nil {
		t.Fatal(err)
	}
	l2 := got.(*Gpos2_2)
	if !reflect.DeepEqual(l.Cov, l2.Cov) ||
		!reflect.DeepEqual(l.Class1, l2.Class1) ||
		!reflect.DeepEqual(l.Class2, l2.Class2) ||
		!reflect.DeepEqual(l.Adjust, l2.Adjust) {
		t.Errorf("mismatch: %#v != %#v", l, l2)
	}
}

func TestGpos4_1RoundTrip(t *testing.T) {
	l := &Gpos4_1{
		MarkCov: coverage.Table{1: 0},
		BaseCov: coverage.Table{2: 0},
		MarkArray: []MarkRecord{
			{Class: 0, Anchor: Anchor{Present: true, X: 1, Y: 2}},
		},
		BaseArray: [][]Anchor{
			{{Present: true, X: 3, Y: 4}},
		},
	}
	roundTripGpos(t, l, readGpos4_1)
}

func TestGpos4_1Intersects(t *testing.T) {
	l := &Gpos4_1{
		MarkCov: coverage.Table{1: 0},
		BaseCov: coverage.Table{2: 0},
	}
	glyphs := intset.New(100)
	if l.Intersects(glyphs) {
		t.Error("empty glyph set should not intersect")
	}
	glyphs.Insert(2)
	if !l.Intersects(glyphs) {
		t.Error("should intersect once the base glyph is present")
	}
}

func TestGpos6_1RoundTrip(t *testing.T) {
	l := &Gpos6_1{
		Mark1Cov: coverage.Table{1: 0, 3: 1, 9: 2},
		Mark2Cov: coverage.Table{2: 0, 4: 1, 6: 2},
		Mark1Array: []MarkRecord{
			{Class: 0, Anchor: Anchor{Present: true, X: -32768, Y: 0}},
			{Class: 1, Anchor: Anchor{Present: true, X: 32767, Y: 0}},
			{Class: 0, Anchor: Anchor{Present: true, X: -1, Y: 1}},
		},
		Mark2Array: [][]Anchor{
			{{Present: true, X: -2, Y: -1}, {Present: true, X: 0, Y: 1}},
			{{Present: true, X: 2, Y: 3}, {Present: true, X: 4, Y: 5}},
			{{Present: true, X: 6, Y: 7}, {Present: true, X: 8, Y: 255}},
		},
	}
	roundTripGpos(t, l, readGpos6_1)
}

func TestNotImplementedGposSubtableIsConservative(t *testing.T) {
	st := notImplementedGposSubtable{lookupType: 9, lookupFormat: 2}
	glyphs := intset.New(10)
	if !st.Intersects(glyphs) {
		t.Error("unimplemented subtable formats must report Intersects = true (conservative closure)")
	}
	if st.NestedLookups() != nil {
		t.Error("unimplemented subtable formats must report no nested lookups")
	}
}
