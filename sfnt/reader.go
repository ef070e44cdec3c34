// ift-go - a font engineering toolkit for incremental font transfer
// Copyright (C) 2026 The ift-go Authors
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

// Package sfnt reads and writes the OpenType table directory. Reader
// gives patch-application code byte-exact access to every table in a
// source font, including tables ("COLR", "CPAL", the IFT tables
// themselves), with no filtering by a list of known tables; Builder assembles a new font binary from a replacement
// table set, re-deriving the directory and the "head" checksum.
package sfnt

import (
	"bytes"
	"encoding/binary"
	"io"
	"sort"

	"github.com/googlefonts/ift-go/font"
	"github.com/googlefonts/ift-go/font/sfnt/head"
	"github.com/googlefonts/ift-go/font/sfnt/table"
)

// record mirrors the 16-byte per-table entry of the sfnt offset
// subtable.
type record struct {
	Tag      font.Tag
	CheckSum uint32
	Offset   uint32
	Length   uint32
}

// Reader gives random access to the tables of a single sfnt font.
type Reader struct {
	r          io.ReaderAt
	ScalerType uint32
	toc        map[string]record
}

// Open reads the table directory of the font in r. Every table present
// in the directory is retained, not filtered down to a known-table
// allowlist: patch application must be able to copy tables such as
// "COLR" through unchanged.
func Open(r io.ReaderAt) (*Reader, error) {
	var hdr [12]byte
	if _, err := r.ReadAt(hdr[:], 0); err != nil {
		return nil, err
	}
	scalerType := binary.BigEndian.Uint32(hdr[0:4])
	numTables := int(binary.BigEndian.Uint16(hdr[4:6]))
	if numTables > 280 {
		return nil, &font.InvalidFontError{SubSystem: "sfnt", Reason: "too many tables"}
	}

	toc := make(map[string]record, numTables)
	var rec [16]byte
	for i := 0; i < numTables; i++ {
		if _, err := r.ReadAt(rec[:], int64(12+i*16)); err != nil {
			return nil, err
		}
		var tag font.Tag
		copy(tag[:], rec[0:4])
		toc[tag.String()] = record{
			Tag:      tag,
			CheckSum: binary.BigEndian.Uint32(rec[4:8]),
			Offset:   binary.BigEndian.Uint32(rec[8:12]),
			Length:   binary.BigEndian.Uint32(rec[12:16]),
		}
	}
	if len(toc) == 0 {
		return nil, &font.InvalidFontError{SubSystem: "sfnt", Reason: "no tables found"}
	}

	return &Reader{r: r, ScalerType: scalerType, toc: toc}, nil
}

// Has reports whether the font contains a table with the given tag.
func (rd *Reader) Has(tag string) bool {
	_, ok := rd.toc[tag]
	return ok
}

// Tags returns every table tag present in the font, sorted ascending.
func (rd *Reader) Tags() []string {
	tags := make([]string, 0, len(rd.toc))
	for tag := range rd.toc {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// TableBytes returns the raw bytes of the named table, or ok=false if
// the font does not contain it.
func (rd *Reader) TableBytes(tag string) ([]byte, bool) {
	rec, ok := rd.toc[tag]
	if !ok {
		return nil, false
	}
	buf := make([]byte, rec.Length)
	n, err := rd.r.ReadAt(buf, int64(rec.Offset))
	if n < len(buf) && err != nil {
		return nil, false
	}
	return buf, true
}

// NumGlyphs returns the glyph count from the "maxp" table.
func (rd *Reader) NumGlyphs() (int, error) {
	data, ok := rd.TableBytes("maxp")
	if !ok {
		return 0, &table.ErrNoTable{Name: "maxp"}
	}
	info, err := table.ReadMaxp(bytes.NewReader(data))
	if err != nil {
		return 0, err
	}
	return info.NumGlyphs, nil
}

// LocaFormat returns the indexToLocFormat flag from the "head" table:
// 0 for short (uint16, half-scale) offsets, 1 for long (uint32)
// offsets.
func (rd *Reader) LocaFormat() (int16, error) {
	data, ok := rd.TableBytes("head")
	if !ok {
		return 0, &table.ErrNoTable{Name: "head"}
	}
	info, err := head.Read(bytes.NewReader(data))
	if err != nil {
		return 0, err
	}
	if info.HasLongOffsets {
		return 1, nil
	}
	return 0, nil
}

// checksum computes the checksum of a single sfnt table, padding the
// data to a multiple of 4 bytes with zeros.
func checksum(data []byte) uint32 {
	return table.Checksum(data)
}

// recommended optimized table ordering, see
// https://docs.microsoft.com/en-us/typography/opentype/spec/recom#optimized-table-ordering
var ttTableOrder = map[string]int{
	"head": 95,
	"hhea": 90,
	"maxp": 85,
	"OS/2": 80,
	"hmtx": 75,
	"LTSH": 70,
	"VDMX": 65,
	"hdmx": 60,
	"cmap": 55,
	"fpgm": 50,
	"prep": 45,
	"cvt ": 40,
	"loca": 35,
	"glyf": 30,
	"kern": 25,
	"name": 20,
	"post": 15,
	"gasp": 10,
	"DSIG": 5,
}
