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

package glyf

import (
	"testing"

	"github.com/googlefonts/ift-go/font"
)

func TestReadLocaOffsetsShort(t *testing.T) {
	enc := &Encoded{
		GlyfData:   make([]byte, 26),
		LocaData:   []byte{0, 0, 0, 13},
		LocaFormat: 0,
	}
	offs, err := ReadLocaOffsets(enc)
	if err != nil {
		t.Fatal(err)
	}
	want := []uint32{0, 26}
	if len(offs) != len(want) || offs[0] != want[0] || offs[1] != want[1] {
		t.Errorf("got %v, want %v", offs, want)
	}
}

func TestReadLocaOffsetsLong(t *testing.T) {
	enc := &Encoded{
		GlyfData:   make([]byte, 20),
		LocaData:   []byte{0, 0, 0, 0, 0, 0, 0, 10, 0, 0, 0, 20},
		LocaFormat: 1,
	}
	offs, err := ReadLocaOffsets(enc)
	if err != nil {
		t.Fatal(err)
	}
	want := []uint32{0, 10, 20}
	for i, w := range want {
		if offs[i] != w {
			t.Errorf("offs[%d] = %d, want %d", i, offs[i], w)
		}
	}
}

func TestReadLocaOffsetsUnsupportedFormat(t *testing.T) {
	enc := &Encoded{LocaFormat: 2}
	_, err := ReadLocaOffsets(enc)
	if !font.IsUnsupported(err) {
		t.Fatalf("got err = %v, want NotSupportedError", err)
	}
}

func TestReadLocaOffsetsOffsetBeyondGlyfData(t *testing.T) {
	enc := &Encoded{
		GlyfData:   make([]byte, 4),
		LocaData:   []byte{0, 0, 0, 10},
		LocaFormat: 0,
	}
	_, err := ReadLocaOffsets(enc)
	if !font.IsInvalid(err) {
		t.Fatalf("got err = %v, want InvalidFontError", err)
	}
}

func TestReadLocaOffsetsShortTableTruncated(t *testing.T) {
	enc := &Encoded{LocaData: []byte{0, 0, 0}, LocaFormat: 0}
	_, err := ReadLocaOffsets(enc)
	if !font.IsInvalid(err) {
		t.Fatalf("got err = %v, want InvalidFontError", err)
	}
}
