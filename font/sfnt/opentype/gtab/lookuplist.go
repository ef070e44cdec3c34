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
	"fmt"

	"github.com/googlefonts/ift-go/font"
	"github.com/googlefonts/ift-go/font/parser"
	"github.com/googlefonts/ift-go/intset"
)

// LookupIndex enumerates lookups.
// It is used as an index into a LookupList.
type LookupIndex uint16

// LookupList contains the information from a Lookup List Table.
// https://docs.microsoft.com/en-us/typography/opentype/spec/chapter2#lookup-list-table
type LookupList []*LookupTable

// LookupTable represents a lookup table inside a "GSUB" or "GPOS" table of a
// font.
// https://docs.microsoft.com/en-us/typography/opentype/spec/chapter2#lookup-table
type LookupTable struct {
	Meta      *LookupMetaInfo
	Subtables Subtables
}

// Intersects reports whether any subtable of the lookup has input coverage
// intersecting glyphs.
func (l *LookupTable) Intersects(glyphs *intset.Set) bool {
	for _, st := range l.Subtables {
		if st.Intersects(glyphs) {
			return true
		}
	}
	return false
}

// ClosureGlyphs adds the glyphs produced by applying the lookup's subtables
// to members of glyphs already present. GPOS and contextual subtables never
// widen the glyph set.
func (l *LookupTable) ClosureGlyphs(glyphs *intset.Set) {
	for _, st := range l.Subtables {
		if st.Intersects(glyphs) {
			st.ClosureGlyphs(glyphs)
		}
	}
}

// NestedLookups returns the lookup indices referenced by this lookup's
// contextual/chaining-contextual subtables, for recursive closure.
func (l *LookupTable) NestedLookups() []LookupIndex {
	var out []LookupIndex
	for _, st := range l.Subtables {
		out = append(out, st.NestedLookups()...)
	}
	return out
}

// LookupMetaInfo contains information associated with a lookup but not
// specific to a subtable.
type LookupMetaInfo struct {
	LookupType       uint16
	LookupFlag       LookupFlags
	MarkFilteringSet uint16
}

// LookupFlags contains bits which modify application of a lookup to a glyph string.
// https://docs.microsoft.com/en-us/typography/opentype/spec/chapter2#lookupFlags
type LookupFlags uint16

// Bit values for LookupFlag.
const (
	LookupRightToLeft         LookupFlags = 0x0001
	LookupIgnoreBaseGlyphs    LookupFlags = 0x0002
	LookupIgnoreLigatures     LookupFlags = 0x0004
	LookupIgnoreMarks         LookupFlags = 0x0008
	LookupUseMarkFilteringSet LookupFlags = 0x0010
	LookupMarkAttachTypeMask  LookupFlags = 0xFF00
)

// Subtable represents a subtable of a "GSUB" or "GPOS" lookup table.
type Subtable interface {
	EncodeLen() int

	Encode() []byte

	// Intersects reports whether the subtable's input coverage intersects
	// glyphs.
	Intersects(glyphs *intset.Set) bool

	// ClosureGlyphs adds to glyphs the glyphs this subtable would produce
	// when applied to glyphs already present. Subtables that never widen
	// the glyph set (GPOS, contextual/chaining) implement this as a no-op.
	ClosureGlyphs(glyphs *intset.Set)

	// NestedLookups returns the lookup indices this subtable dispatches to
	// recursively (contextual/chaining-contextual rules). Subtables with no
	// nested lookups return nil.
	NestedLookups() []LookupIndex
}

// Subtables is a slice of Subtable.
type Subtables []Subtable

// subtableReader is a function that can decode a subtable.
// Different functions are required for "GSUB" and "GPOS" tables.
type subtableReader func(*parser.Parser, int64, *LookupMetaInfo) (Subtable, error)

func readLookupList(p *parser.Parser, pos int64, sr subtableReader) (LookupList, error) {
	err := p.SeekPos(pos)
	if err != nil {
		return nil, err
	}

	lookupOffsets, err := p.ReadUint16Slice()
	if err != nil {
		return nil, err
	}

	res := make(LookupList, len(lookupOffsets))

	numLookups := 0
	numSubTables := 0

	var subtableOffsets []uint16
	for i, offs := range lookupOffsets {
		lookupTablePos := pos + int64(offs)
		err := p.SeekPos(lookupTablePos)
		if err != nil {
			return nil, err
		}
		buf, err := p.ReadBytes(6)
		if err != nil {
			return nil, err
		}
		lookupType := uint16(buf[0])<<8 | uint16(buf[1])
		lookupFlag := LookupFlags(buf[2])<<8 | LookupFlags(buf[3])
		subTableCount := uint16(buf[4])<<8 | uint16(buf[5])
		numLookups++
		numSubTables += int(subTableCount)
		if numLookups+numSubTables > 6000 {
			// The condition ensures that we can always store the lookup
			// data (using extension subtables if necessary), without
			// exceeding the maximum offset size in the lookup list table.
			return nil, &font.InvalidFontError{
				SubSystem: "sfnt/opentype/gtab",
				Reason:    "too many lookup (sub-)tables",
			}
		}
		subtableOffsets = subtableOffsets[:0]
		for j := 0; j < int(subTableCount); j++ {
			subtableOffset, err := p.ReadUint16()
			if err != nil {
				return nil, err
			}
			subtableOffsets = append(subtableOffsets, subtableOffset)
		}
		var markFilteringSet uint16
		if lookupFlag&LookupUseMarkFilteringSet != 0 {
			markFilteringSet, err = p.ReadUint16()
			if err != nil {
				return nil, err
			}
		}

		meta := &LookupMetaInfo{
			LookupType:       lookupType,
			LookupFlag:       lookupFlag,
			MarkFilteringSet: markFilteringSet,
		}

		subtables := make(Subtables, subTableCount)
		for j, subtableOffset := range subtableOffsets {
			subtable, err := sr(p, lookupTablePos+int64(subtableOffset), meta)
			if err != nil {
				return nil, err
			}
			subtables[j] = subtable
		}

		if tp, ok := isExtension(subtables); ok {
			if tp == meta.LookupType {
				return nil, &font.InvalidFontError{
					SubSystem: "sfnt/opentype/gtab",
					Reason:    "invalid extension subtable",
				}
			}
			meta.LookupType = tp
			for j, subtable := range subtables {
				l, ok := subtable.(*extensionSubtable)
				if !ok || l.ExtensionLookupType != tp {
					return nil, &font.InvalidFontError{
						SubSystem: "sfnt/opentype/gtab",
						Reason:    "inconsistent extension subtables",
					}
				}
				pos := lookupTablePos + int64(subtableOffsets[j]) + l.ExtensionOffset
				subtable, err := sr(p, pos, meta)
				if err != nil {
					return nil, err
				}
				subtables[j] = subtable
			}
		}

		res[i] = &LookupTable{
			Meta:      meta,
			Subtables: subtables,
		}
	}
	return res, nil
}

func isExtension(ss Subtables) (uint16, bool) {
	if len(ss) == 0 {
		return 0, false
	}
	l, ok := ss[0].(*extensionSubtable)
	if !ok {
		return 0, false
	}
	return l.ExtensionLookupType, true
}

func (info LookupList) encode() []byte {
	if info == nil {
		return nil
	}

	lookupCount := len(info)

	var chunks []layoutChunk
	chunks = append(chunks, layoutChunk{
		size: 2 + 2*uint32(lookupCount),
	})
	for i, l := range info {
		lookupHeaderLen := 6 + 2*len(l.Subtables)
		if l.Meta.LookupFlag&LookupUseMarkFilteringSet != 0 {
			lookupHeaderLen += 2
		}
		lCode := (uint32(i) & 0x3FFF) << 14
		chunks = append(chunks, layoutChunk{
			code: 1<<28 | lCode,
			size: uint32(lookupHeaderLen),
		})
		for j, subtable := range l.Subtables {
			sCode := uint32(j) & 0x3FFF
			chunks = append(chunks, layoutChunk{
				code: 2<<28 | lCode | sCode,
				size: uint32(subtable.EncodeLen()),
			})
		}
	}

	chunkPos := make(map[uint32]uint32, len(chunks))
	total := uint32(0)
	isTooLarge := false
	for i := range chunks {
		code := chunks[i].code
		if code>>28 == 1 && total > 0xFFFF {
			isTooLarge = true
			break
		}
		chunkPos[code] = total
		total += chunks[i].size
	}

	if isTooLarge {
		// reorder chunks and use extension records as needed.
		chunks = info.tryReorder(chunks)
	}

	buf := make([]byte, 0, total)
	for k := range chunks {
		code := chunks[k].code
		if chunkPos[code] != uint32(len(buf)) {
			panic("internal error")
		}
		switch code >> 28 {
		case 0: // LookupList table
			buf = append(buf, byte(lookupCount>>8), byte(lookupCount))
			for i := range info {
				lCode := (uint32(i) & 0x3FFF) << 14
				lookupOffset := chunkPos[1<<28|lCode]
				buf = append(buf, byte(lookupOffset>>8), byte(lookupOffset))
			}
		case 1: // Lookup table
			lCode := code & 0x0FFFC000
			i := int(lCode >> 14)
			li := info[i]
			subTableCount := len(li.Subtables)
			buf = append(buf,
				byte(li.Meta.LookupType>>8), byte(li.Meta.LookupType),
				byte(li.Meta.LookupFlag>>8), byte(li.Meta.LookupFlag),
				byte(subTableCount>>8), byte(subTableCount),
			)
			base := chunkPos[code]
			for j := range li.Subtables {
				sCode := uint32(j) & 0x3FFF
				subtablePos := chunkPos[2<<28|lCode|sCode]
				subtableOffset := subtablePos - base
				buf = append(buf, byte(subtableOffset>>8), byte(subtableOffset))
			}
			if li.Meta.LookupFlag&LookupUseMarkFilteringSet != 0 {
				buf = append(buf,
					byte(li.Meta.MarkFilteringSet>>8), byte(li.Meta.MarkFilteringSet),
				)
			}
		case 2: // lookup subtable
			i := int((code >> 14) & 0x3FFF)
			j := int(code & 0x3FFF)
			subtable := info[i].Subtables[j]
			buf = append(buf, subtable.Encode()...)
		}
	}
	return buf
}

type layoutChunk struct {
	code uint32
	size uint32
}

// tryReorder is not implemented: reordering large lookup lists to avoid the
// 16-bit subtable offset limit only matters when re-serialising a font with
// an enormous lookup list, which this package never needs to do (closure and
// patch application only read lookup lists).
func (info LookupList) tryReorder(chunks []layoutChunk) []layoutChunk {
	panic(fmt.Sprintf("sfnt/gtab: lookup list too large to encode (%d chunks)", len(chunks)))
}

// Extension Substitution Subtable Format 1
// https://docs.microsoft.com/en-us/typography/opentype/spec/gsub#71-extension-substitution-subtable-format-1
type extensionSubtable struct {
	ExtensionLookupType uint16
	ExtensionOffset     int64
}

func readExtensionSubtable(p *parser.Parser, subtablePos int64) (Subtable, error) {
	buf, err := p.ReadBytes(6)
	if err != nil {
		return nil, err
	}
	extensionLookupType := uint16(buf[0])<<8 | uint16(buf[1])
	extensionOffset := int64(buf[2])<<24 | int64(buf[3])<<16 | int64(buf[4])<<8 | int64(buf[5])
	res := &extensionSubtable{
		ExtensionLookupType: extensionLookupType,
		ExtensionOffset:     extensionOffset,
	}
	return res, nil
}

// extensionSubtable values are always replaced with the real, pointed-to
// subtable by readLookupList before being returned to callers.

func (l *extensionSubtable) Intersects(*intset.Set) bool {
	panic("unreachable")
}

func (l *extensionSubtable) ClosureGlyphs(*intset.Set) {
	panic("unreachable")
}

func (l *extensionSubtable) NestedLookups() []LookupIndex {
	panic("unreachable")
}

func (l *extensionSubtable) EncodeLen() int {
	return 8
}

func (l *extensionSubtable) Encode() []byte {
	return []byte{
		0, 1, // format
		byte(l.ExtensionLookupType >> 8), byte(l.ExtensionLookupType),
		byte(l.ExtensionOffset >> 24), byte(l.ExtensionOffset >> 16), byte(l.ExtensionOffset >> 8), byte(l.ExtensionOffset),
	}
}
