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
	"github.com/googlefonts/ift-go/font/sfnt/opentype/coverage"
	"github.com/googlefonts/ift-go/intset"
)

func roundTripGsub(t *testing.T, l1 Subtable, read func(p *parser.Parser, pos int64) (Subtable, error)) Subtable {
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

func FuzzGsub1_1(f *testing.F) {
	l := &Gsub1_1{
		Cov:   coverage.Table{3: 0},
		Delta: 26,
	}
	f.Add(l.Encode())

	f.Fuzz(func(t *testing.T, data []byte) {
		p := parser.New("test", bytes.NewReader(data))
		format, err := p.ReadUint16()
		if err != nil || format != 1 {
			return
		}

		l1, err := readGsub1_1(p, 0)
		if err != nil {
			return
		}
		roundTripGsub(t, l1, readGsub1_1)
	})
}

func FuzzGsub1_2(f *testing.F) {
	l := &Gsub1_2{
		Cov:                coverage.Table{2: 0, 3: 1},
		SubstituteGlyphIDs: []glyph.ID{6, 7},
	}
	f.Add(l.Encode())

	f.Fuzz(func(t *testing.T, data []byte) {
		p := parser.New("test", bytes.NewReader(data))
		format, err := p.ReadUint16()
		if err != nil || format != 2 {
			return
		}

		l1, err := readGsub1_2(p, 0)
		if err != nil {
			return
		}
		roundTripGsub(t, l1, readGsub1_2)
	})
}

func TestGsub1_1Closure(t *testing.T) {
	l := &Gsub1_1{
		Cov:   coverage.Table{3: 0},
		Delta: 26,
	}
	glyphs := intset.New(1000)
	if l.Intersects(glyphs) {
		t.Error("empty glyph set should not intersect")
	}
	glyphs.Insert(3)
	if !l.Intersects(glyphs) {
		t.Error("glyph set containing covered glyph should intersect")
	}
	l.ClosureGlyphs(glyphs)
	if !glyphs.Contains(3 + 26) {
		t.Error("closure should add the substituted glyph")
	}
}

func TestGsub4_1RoundTrip(t *testing.T) {
	l := &Gsub4_1{
		Cov: coverage.Table{10: 0},
		Repl: [][]Ligature{
			{
				{In: []glyph.ID{11, 12}, Out: 20},
				{In: []glyph.ID{11}, Out: 21},
			},
		},
	}
	roundTripGsub(t, l, readGsub4_1)
}

func TestGsub4_1Closure(t *testing.T) {
	l := &Gsub4_1{
		Cov: coverage.Table{10: 0},
		Repl: [][]Ligature{
			{
				{In: []glyph.ID{11, 12}, Out: 20},
			},
		},
	}
	glyphs := intset.New(1000)
	glyphs.Insert(10)
	l.ClosureGlyphs(glyphs)
	if glyphs.Contains(20) {
		t.Error("ligature should not fire without all components present")
	}
	glyphs.Insert(11)
	glyphs.Insert(12)
	l.ClosureGlyphs(glyphs)
	if !glyphs.Contains(20) {
		t.Error("ligature should fire once all components are present")
	}
}
