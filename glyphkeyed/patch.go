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

// Package glyphkeyed applies glyph-keyed incremental font transfer
// patches: opaque per-glyph data blobs, keyed by glyph ID, that get
// spliced into a base font's "glyf"/"loca" tables (and, once
// supported, "CFF "/"CFF2"/"gvar").
// https://w3c.github.io/IFT/Overview.html#glyph-keyed
package glyphkeyed

import (
	"bytes"
	"io"

	"github.com/andybalholm/brotli"
	"github.com/googlefonts/ift-go/font"
	"github.com/googlefonts/ift-go/font/glyph"
	"github.com/googlefonts/ift-go/font/parser"
)

// patchFormatTag is the only format tag this package accepts in a
// GlyphKeyedPatch header.
var patchFormatTag = font.MakeTag("ifgk")

// Flags holds the bits carried alongside a glyph-keyed patch.
type Flags uint16

// WideGlyphIDs selects u24 glyph-ID encoding in a GlyphPatches body;
// when unset, glyph IDs are encoded as plain u16 values.
const WideGlyphIDs Flags = 1 << 0

func (f Flags) wide() bool { return f&WideGlyphIDs != 0 }

// Patch is a single parsed "ifgk"-format glyph-keyed patch header; its
// BrotliStream still needs decompressing into a GlyphPatches body.
type Patch struct {
	Format                font.Tag
	CompatibilityID       [16]byte
	MaxUncompressedLength uint32
	Flags                 Flags
	BrotliStream          []byte
}

// ReadPatch parses a GlyphKeyedPatch header from raw patch bytes.
func ReadPatch(data []byte) (*Patch, error) {
	r := bytes.NewReader(data)
	p := parser.New("ifgk", r)

	tag, err := p.ReadTag()
	if err != nil {
		return nil, &InvalidPatchError{Reason: "truncated patch header"}
	}
	format := font.MakeTag(tag)
	if format != patchFormatTag {
		return nil, &InvalidPatchError{Reason: "patch file tag is not \"ifgk\""}
	}

	var compatID [16]byte
	idBytes, err := p.ReadBytes(16)
	if err != nil {
		return nil, &InvalidPatchError{Reason: "truncated compatibility id"}
	}
	copy(compatID[:], idBytes)

	maxLen, err := p.ReadUint32()
	if err != nil {
		return nil, &InvalidPatchError{Reason: "truncated max_uncompressed_length"}
	}
	flags, err := p.ReadUint16()
	if err != nil {
		return nil, &InvalidPatchError{Reason: "truncated flags"}
	}

	rest := data[p.Pos():]
	stream := make([]byte, len(rest))
	copy(stream, rest)

	return &Patch{
		Format:                format,
		CompatibilityID:       compatID,
		MaxUncompressedLength: maxLen,
		Flags:                 Flags(flags),
		BrotliStream:          stream,
	}, nil
}

// decompress brotli-decodes the patch's stream, rejecting output
// beyond the declared max_uncompressed_length (read with a one-byte
// margin so an over-long stream is detected rather than silently
// truncated).
func (p *Patch) decompress() ([]byte, error) {
	limit := int64(p.MaxUncompressedLength)
	r := brotli.NewReader(bytes.NewReader(p.BrotliStream))

	var buf bytes.Buffer
	_, err := io.Copy(&buf, io.LimitReader(r, limit+1))
	if err != nil {
		return nil, &DecompressionFailedError{Err: err}
	}
	if int64(buf.Len()) > limit {
		return nil, &DecompressionFailedError{
			Err: &InvalidPatchError{Reason: "decompressed length exceeds max_uncompressed_length"},
		}
	}
	return buf.Bytes(), nil
}

// GlyphBlob is one (glyph ID, replacement data) pair decoded from a
// GlyphPatches table's blob region.
type GlyphBlob struct {
	GID  glyph.ID
	Data []byte
}

// GlyphPatches is a parsed glyph-keyed patch body: a per-table,
// per-glyph index into a shared blob region.
type GlyphPatches struct {
	FormatVersion uint16
	Flags         Flags
	GlyphCount    int
	Tables        []font.Tag
	GlyphIDs      []uint32
	Offsets       []uint32 // length GlyphCount*len(Tables) + 1
	Data          []byte
}

// ReadGlyphPatches parses a decompressed GlyphPatches body.
func ReadGlyphPatches(data []byte) (*GlyphPatches, error) {
	r := bytes.NewReader(data)
	p := parser.New("GlyphPatches", r)

	formatVersion, err := p.ReadUint16()
	if err != nil {
		return nil, &InvalidPatchError{Reason: "truncated format_version"}
	}
	flags, err := p.ReadUint16()
	if err != nil {
		return nil, &InvalidPatchError{Reason: "truncated flags"}
	}
	glyphCount, err := p.ReadUint16()
	if err != nil {
		return nil, &InvalidPatchError{Reason: "truncated glyph_count"}
	}
	tableCount, err := p.ReadUint8()
	if err != nil {
		return nil, &InvalidPatchError{Reason: "truncated table_count"}
	}

	tables := make([]font.Tag, tableCount)
	var prevTable font.Tag
	for i := range tables {
		tag, err := p.ReadTag()
		if err != nil {
			return nil, &InvalidPatchError{Reason: "truncated table tag list"}
		}
		tables[i] = font.MakeTag(tag)
		if i > 0 && !prevTable.Less(tables[i]) {
			return nil, &InvalidPatchError{
				Reason: "Table tags are unsorted or contain duplicate entries.",
			}
		}
		prevTable = tables[i]
	}

	gidWidth := 2
	if Flags(flags).wide() {
		gidWidth = 3
	}
	glyphIDs := make([]uint32, glyphCount)
	for i := range glyphIDs {
		raw, err := p.ReadBytes(gidWidth)
		if err != nil {
			return nil, &InvalidPatchError{Reason: "truncated glyph id array"}
		}
		var v uint32
		for _, b := range raw {
			v = v<<8 | uint32(b)
		}
		glyphIDs[i] = v
	}

	numOffsets := int(tableCount)*int(glyphCount) + 1
	offsets := make([]uint32, numOffsets)
	for i := range offsets {
		v, err := p.ReadUint32()
		if err != nil {
			return nil, &InvalidPatchError{Reason: "truncated glyph_data_offsets array"}
		}
		offsets[i] = v
	}

	dataStart := p.Pos()
	if dataStart < 0 || dataStart > int64(len(data)) {
		return nil, &InvalidPatchError{Reason: "offset_for(data) out of bounds"}
	}
	body := data[dataStart:]

	return &GlyphPatches{
		FormatVersion: formatVersion,
		Flags:         Flags(flags),
		GlyphCount:    int(glyphCount),
		Tables:        tables,
		GlyphIDs:      glyphIDs,
		Offsets:       offsets,
		Data:          body,
	}, nil
}

// GlyphDataForTable returns the (GID, blob) pairs for the table at the
// given index among gp.Tables, validating that GIDs are strictly
// ascending and blob offsets are ascending. It returns every pair
// successfully decoded before the first validation or bounds error,
// together with that error.
func (gp *GlyphPatches) GlyphDataForTable(tableIndex int) ([]GlyphBlob, error) {
	startIndex := tableIndex * gp.GlyphCount

	out := make([]GlyphBlob, 0, gp.GlyphCount)
	var prevGID uint32
	havePrev := false
	for i := 0; i < gp.GlyphCount; i++ {
		gid := gp.GlyphIDs[i]
		if havePrev && gid <= prevGID {
			return out, &InvalidPatchError{Reason: "Glyph IDs are unsorted or duplicated."}
		}
		havePrev, prevGID = true, gid

		start := gp.Offsets[startIndex+i]
		end := gp.Offsets[startIndex+i+1]
		if end < start {
			return out, &InvalidPatchError{Reason: "glyph data offsets are not ascending."}
		}
		if int64(end) > int64(len(gp.Data)) {
			return out, &InvalidPatchError{Reason: "glyph data blob out of bounds"}
		}

		out = append(out, GlyphBlob{GID: glyph.ID(gid), Data: gp.Data[start:end]})
	}
	return out, nil
}
