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

// Package colr reads OpenType "COLR" tables (versions 0 and 1) and
// computes the glyph/layer/palette/variation-index closures a font
// subsetter needs to decide what COLR data to keep for a glyph subset.
// https://docs.microsoft.com/en-us/typography/opentype/spec/colr
package colr

import (
	"fmt"
	"sort"

	"github.com/googlefonts/ift-go/font"
	"github.com/googlefonts/ift-go/font/glyph"
	"github.com/googlefonts/ift-go/font/parser"
)

// BaseGlyphRecord is a v0 "BaseGlyphRecord": it maps a base glyph to a
// contiguous run of layers in the table's LayerRecords array.
type BaseGlyphRecord struct {
	GID             glyph.ID
	FirstLayerIndex uint16
	NumLayers       uint16
}

// LayerRecord is a v0 "LayerRecord": one glyph/palette-entry pair.
type LayerRecord struct {
	GID          glyph.ID
	PaletteIndex uint16
}

// BaseGlyphPaintRecord is a v1 "BaseGlyphPaintRecord": it maps a base
// glyph to the root Paint of its v1 paint graph.
type BaseGlyphPaintRecord struct {
	GID   glyph.ID
	Paint Paint
}

// Clip is a v1 "ClipRecord": a [StartGID, EndGID] range together with
// the clip box that applies to every glyph it covers.
type Clip struct {
	StartGID, EndGID glyph.ID
	Box              *ClipBox
}

// ClipBox is a v1 clip box. Only format 2 (variable) carries variation
// indices; format 1 is a plain, non-variable box.
type ClipBox struct {
	Format       uint8
	XMin, YMin   int16
	XMax, YMax   int16
	VarIndexBase uint32 // format 2 only; NoVariationIndex if unused
}

// NoVariationIndex is the OpenType sentinel meaning "this field carries
// no variation data" (0xFFFFFFFF).
const NoVariationIndex uint32 = 0xFFFFFFFF

// Table is a parsed COLR table.
type Table struct {
	Version uint16

	BaseGlyphRecords []BaseGlyphRecord
	LayerRecords     []LayerRecord

	BaseGlyphList []BaseGlyphPaintRecord // v1
	LayerList     []Paint                // v1, indexed by layer index
	ClipList      []Clip                 // v1
	VarIndexMap   *DeltaSetIndexMap      // v1, optional
}

// baseGlyph returns the v0 record for gid, if any, via binary search
// (BaseGlyphRecords is sorted by GID on both read and write).
func (t *Table) baseGlyph(gid glyph.ID) (BaseGlyphRecord, bool) {
	i := sort.Search(len(t.BaseGlyphRecords), func(i int) bool {
		return t.BaseGlyphRecords[i].GID >= gid
	})
	if i < len(t.BaseGlyphRecords) && t.BaseGlyphRecords[i].GID == gid {
		return t.BaseGlyphRecords[i], true
	}
	return BaseGlyphRecord{}, false
}

// baseGlyphPaint returns the v1 paint record for gid, if any.
func (t *Table) baseGlyphPaint(gid glyph.ID) (BaseGlyphPaintRecord, bool) {
	i := sort.Search(len(t.BaseGlyphList), func(i int) bool {
		return t.BaseGlyphList[i].GID >= gid
	})
	if i < len(t.BaseGlyphList) && t.BaseGlyphList[i].GID == gid {
		return t.BaseGlyphList[i], true
	}
	return BaseGlyphPaintRecord{}, false
}

// Read parses a COLR table starting at the current file position.
func Read(p *parser.Parser) (*Table, error) {
	base := p.Pos()

	buf, err := p.ReadBytes(2)
	if err != nil {
		return nil, err
	}
	version := uint16(buf[0])<<8 | uint16(buf[1])
	if version > 1 {
		return nil, &font.NotSupportedError{
			SubSystem: "colr",
			Feature:   fmt.Sprintf("COLR table version %d", version),
		}
	}

	numBaseGlyphs, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	baseGlyphRecordsOffset, err := p.ReadUint32()
	if err != nil {
		return nil, err
	}
	layerRecordsOffset, err := p.ReadUint32()
	if err != nil {
		return nil, err
	}
	numLayerRecords, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}

	t := &Table{Version: version}

	if numBaseGlyphs > 0 {
		if err := p.SeekPos(base + int64(baseGlyphRecordsOffset)); err != nil {
			return nil, err
		}
		t.BaseGlyphRecords = make([]BaseGlyphRecord, numBaseGlyphs)
		for i := range t.BaseGlyphRecords {
			gid, err := p.ReadUint16()
			if err != nil {
				return nil, err
			}
			first, err := p.ReadUint16()
			if err != nil {
				return nil, err
			}
			n, err := p.ReadUint16()
			if err != nil {
				return nil, err
			}
			t.BaseGlyphRecords[i] = BaseGlyphRecord{
				GID: glyph.ID(gid), FirstLayerIndex: first, NumLayers: n,
			}
		}
	}

	if numLayerRecords > 0 {
		if err := p.SeekPos(base + int64(layerRecordsOffset)); err != nil {
			return nil, err
		}
		t.LayerRecords = make([]LayerRecord, numLayerRecords)
		for i := range t.LayerRecords {
			gid, err := p.ReadUint16()
			if err != nil {
				return nil, err
			}
			pal, err := p.ReadUint16()
			if err != nil {
				return nil, err
			}
			t.LayerRecords[i] = LayerRecord{GID: glyph.ID(gid), PaletteIndex: pal}
		}
	}

	if version < 1 {
		return t, nil
	}

	baseGlyphListOffset, err := p.ReadUint32()
	if err != nil {
		return nil, err
	}
	layerListOffset, err := p.ReadUint32()
	if err != nil {
		return nil, err
	}
	clipListOffset, err := p.ReadUint32()
	if err != nil {
		return nil, err
	}
	varIndexMapOffset, err := p.ReadUint32()
	if err != nil {
		return nil, err
	}
	_, err = p.ReadUint32() // itemVariationStoreOffset: variation application is out of scope
	if err != nil {
		return nil, err
	}

	if baseGlyphListOffset != 0 {
		t.BaseGlyphList, err = readBaseGlyphList(p, base, base+int64(baseGlyphListOffset))
		if err != nil {
			return nil, err
		}
	}
	if layerListOffset != 0 {
		t.LayerList, err = readLayerList(p, base, base+int64(layerListOffset))
		if err != nil {
			return nil, err
		}
	}
	if clipListOffset != 0 {
		t.ClipList, err = readClipList(p, base, base+int64(clipListOffset))
		if err != nil {
			return nil, err
		}
	}
	if varIndexMapOffset != 0 {
		t.VarIndexMap, err = readDeltaSetIndexMap(p, base+int64(varIndexMapOffset))
		if err != nil {
			return nil, err
		}
	}

	return t, nil
}

func readBaseGlyphList(p *parser.Parser, colrBase, pos int64) ([]BaseGlyphPaintRecord, error) {
	if err := p.SeekPos(pos); err != nil {
		return nil, err
	}
	count, err := p.ReadUint32()
	if err != nil {
		return nil, err
	}
	type rawRecord struct {
		gid    glyph.ID
		offset uint32
	}
	raw := make([]rawRecord, count)
	for i := range raw {
		gid, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		off, err := p.ReadUint32()
		if err != nil {
			return nil, err
		}
		raw[i] = rawRecord{gid: glyph.ID(gid), offset: off}
	}

	out := make([]BaseGlyphPaintRecord, count)
	for i, r := range raw {
		paint, err := readPaint(p, colrBase, pos+int64(r.offset))
		if err != nil {
			return nil, err
		}
		out[i] = BaseGlyphPaintRecord{GID: r.gid, Paint: paint}
	}
	return out, nil
}

func readLayerList(p *parser.Parser, colrBase, pos int64) ([]Paint, error) {
	if err := p.SeekPos(pos); err != nil {
		return nil, err
	}
	count, err := p.ReadUint32()
	if err != nil {
		return nil, err
	}
	offsets := make([]uint32, count)
	for i := range offsets {
		offsets[i], err = p.ReadUint32()
		if err != nil {
			return nil, err
		}
	}
	out := make([]Paint, count)
	for i, off := range offsets {
		out[i], err = readPaint(p, colrBase, pos+int64(off))
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func readClipList(p *parser.Parser, colrBase, pos int64) ([]Clip, error) {
	if err := p.SeekPos(pos); err != nil {
		return nil, err
	}
	format, err := p.ReadUint8()
	if err != nil {
		return nil, err
	}
	if format != 1 {
		return nil, &font.NotSupportedError{SubSystem: "colr", Feature: fmt.Sprintf("ClipList format %d", format)}
	}
	count, err := p.ReadUint32()
	if err != nil {
		return nil, err
	}
	clips := make([]Clip, count)
	for i := range clips {
		start, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		end, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		off, err := p.ReadBytes(3)
		if err != nil {
			return nil, err
		}
		clipBoxOffset := uint32(off[0])<<16 | uint32(off[1])<<8 | uint32(off[2])
		box, err := readClipBox(p, pos+int64(clipBoxOffset))
		if err != nil {
			return nil, err
		}
		clips[i] = Clip{StartGID: glyph.ID(start), EndGID: glyph.ID(end), Box: box}
	}
	return clips, nil
}

func readClipBox(p *parser.Parser, pos int64) (*ClipBox, error) {
	if err := p.SeekPos(pos); err != nil {
		return nil, err
	}
	format, err := p.ReadUint8()
	if err != nil {
		return nil, err
	}
	box := &ClipBox{Format: format, VarIndexBase: NoVariationIndex}
	xMin, err := p.ReadInt16()
	if err != nil {
		return nil, err
	}
	yMin, err := p.ReadInt16()
	if err != nil {
		return nil, err
	}
	xMax, err := p.ReadInt16()
	if err != nil {
		return nil, err
	}
	yMax, err := p.ReadInt16()
	if err != nil {
		return nil, err
	}
	box.XMin, box.YMin, box.XMax, box.YMax = xMin, yMin, xMax, yMax
	if format == 2 {
		vib, err := p.ReadUint32()
		if err != nil {
			return nil, err
		}
		box.VarIndexBase = vib
	} else if format != 1 {
		return nil, &font.NotSupportedError{SubSystem: "colr", Feature: fmt.Sprintf("ClipBox format %d", format)}
	}
	return box, nil
}

// Encode serializes the table back to its binary form. Only the version 0
// header, BaseGlyphRecords and LayerRecords are written; the v1 data and
// the item variation store are not round-tripped: this package only ever
// needs to close over a parsed table, never to reproduce an untouched
// COLR table byte-for-byte.
func (t *Table) Encode() []byte {
	// Only version 0 is re-serialized: v1 paint graphs are consumed for
	// closure purposes only in this package, never re-encoded.
	total := 14
	var glyphData, layerData []byte
	baseOff := total
	for _, r := range t.BaseGlyphRecords {
		glyphData = append(glyphData,
			byte(r.GID>>8), byte(r.GID),
			byte(r.FirstLayerIndex>>8), byte(r.FirstLayerIndex),
			byte(r.NumLayers>>8), byte(r.NumLayers))
	}
	total += len(glyphData)
	layerOff := total
	for _, r := range t.LayerRecords {
		layerData = append(layerData,
			byte(r.GID>>8), byte(r.GID),
			byte(r.PaletteIndex>>8), byte(r.PaletteIndex))
	}
	total += len(layerData)

	buf := make([]byte, 0, total)
	buf = append(buf, 0, 0) // version 0
	n := len(t.BaseGlyphRecords)
	buf = append(buf, byte(n>>8), byte(n))
	buf = append(buf, byte(baseOff>>24), byte(baseOff>>16), byte(baseOff>>8), byte(baseOff))
	buf = append(buf, byte(layerOff>>24), byte(layerOff>>16), byte(layerOff>>8), byte(layerOff))
	m := len(t.LayerRecords)
	buf = append(buf, byte(m>>8), byte(m))
	buf = append(buf, glyphData...)
	buf = append(buf, layerData...)
	return buf
}

// DeltaSetIndexMap maps "delta set index" values collected during a
// variable-paint closure to real (outer<<16|inner) variation indices.
type DeltaSetIndexMap struct {
	entries []deltaSetEntry
}

type deltaSetEntry struct {
	outer, inner uint16
}

// Get resolves delta set index idx to a variation index. ok is false if
// idx is out of range (the map entry is absent).
func (m *DeltaSetIndexMap) Get(idx uint32) (varIndex uint32, ok bool) {
	if m == nil || int(idx) >= len(m.entries) {
		return 0, false
	}
	e := m.entries[idx]
	return uint32(e.outer)<<16 | uint32(e.inner), true
}

func readDeltaSetIndexMap(p *parser.Parser, pos int64) (*DeltaSetIndexMap, error) {
	if err := p.SeekPos(pos); err != nil {
		return nil, err
	}
	format, err := p.ReadUint8()
	if err != nil {
		return nil, err
	}
	entryFormat, err := p.ReadUint8()
	if err != nil {
		return nil, err
	}
	var mapCount uint32
	switch format {
	case 0:
		v, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		mapCount = uint32(v)
	case 1:
		mapCount, err = p.ReadUint32()
		if err != nil {
			return nil, err
		}
	default:
		return nil, &font.NotSupportedError{SubSystem: "colr", Feature: fmt.Sprintf("DeltaSetIndexMap format %d", format)}
	}

	innerBitCount := uint(entryFormat&0x0F) + 1
	entrySize := int((entryFormat>>4)&0x3) + 1

	m := &DeltaSetIndexMap{entries: make([]deltaSetEntry, mapCount)}
	for i := range m.entries {
		raw, err := p.ReadBytes(entrySize)
		if err != nil {
			return nil, err
		}
		var v uint32
		for _, b := range raw {
			v = v<<8 | uint32(b)
		}
		inner := v & ((1 << innerBitCount) - 1)
		outer := v >> innerBitCount
		m.entries[i] = deltaSetEntry{outer: uint16(outer), inner: uint16(inner)}
	}
	return m, nil
}
