// seehuhn.de/go/pdf - a library for reading and writing PDF files
// Copyright (C) 2021  Jochen Voss <voss@seehuhn.de>
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

package parser

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

// bytes.Reader already implements io.ReadSeeker and Size() int64, so it
// satisfies ReadSeekSizer directly.
func newTestParser(tableName string, data []byte) *Parser {
	return New(tableName, bytes.NewReader(data))
}

func TestParserReadUint16(t *testing.T) {
	p := newTestParser("test", []byte("1234AB"))
	x, err := p.ReadUint16()
	if err != nil {
		t.Fatal(err)
	}
	if want := uint16('1')*256 + uint16('2'); x != want {
		t.Errorf("wrong value, expected %d but got %d", want, x)
	}
}

func TestParserReadPastEOF(t *testing.T) {
	p := newTestParser("test", []byte("12"))
	_, err := p.ReadBytes(2)
	if err != nil {
		t.Fatal(err)
	}
	_, err = p.ReadBytes(2)
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("EOF not detected, got err=%v", err)
	}
}

func TestParserSeekPos(t *testing.T) {
	p := newTestParser("xyz", []byte("01234567"))

	x, err := p.ReadInt16()
	if err != nil {
		t.Fatal(err)
	}
	if x != int16('0')<<8|int16('1') {
		t.Errorf("unexpected value %d", x)
	}

	if err := p.SeekPos(6); err != nil {
		t.Fatal(err)
	}
	y, err := p.ReadInt16()
	if err != nil {
		t.Fatal(err)
	}
	if y != int16('6')<<8|int16('7') {
		t.Errorf("unexpected value %d", y)
	}
}

func TestParserPos(t *testing.T) {
	p := newTestParser("test", []byte{'0', '1', '2', '3', '4', '5', '6', '7'})

	if p.Pos() != 0 {
		t.Errorf("wrong position, expected 0 but got %d", p.Pos())
	}
	if _, err := p.ReadUint16(); err != nil {
		t.Fatal(err)
	}
	if p.Pos() != 2 {
		t.Errorf("wrong position, expected 2 but got %d", p.Pos())
	}
	if err := p.SeekPos(5); err != nil {
		t.Fatal(err)
	}
	if p.Pos() != 5 {
		t.Errorf("wrong position, expected 5 but got %d", p.Pos())
	}
}

func TestParserReadTag(t *testing.T) {
	p := newTestParser("test", []byte("GSUBrest"))
	tag, err := p.ReadTag()
	if err != nil {
		t.Fatal(err)
	}
	if tag != "GSUB" {
		t.Errorf("ReadTag() = %q, want GSUB", tag)
	}
}
