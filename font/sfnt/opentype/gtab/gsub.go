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
	"github.com/googlefonts/ift-go/font/glyph"
	"github.com/googlefonts/ift-go/font/parser"
	"github.com/googlefonts/ift-go/font/sfnt/opentype/coverage"
	"github.com/googlefonts/ift-go/intset"
)

// readGsubSubtable reads a GSUB subtable.
// This function can be used as the SubtableReader argument to Read().
func readGsubSubtable(p *parser.Parser, pos int64, meta *LookupMetaInfo) (Subtable, error) {
	err := p.SeekPos(pos)
	if err != nil {
		return nil, err
	}

	format, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}

	switch 10*meta.LookupType + format {
	case 1_1:
		return readGsub1_1(p, pos)
	case 1_2:
		return readGsub1_2(p, pos)
	case 2_1:
		return readGsub2_1(p, pos)
	case 3_1:
		return readGsub3_1(p, pos)
	case 4_1:
		return readGsub4_1(p, pos)
	case 7_1:
		return readExtensionSubtable(p, pos+2)
	default:
		return notImplementedGsubSubtable{meta.LookupType, format}, nil
	}
}

// notImplementedGsubSubtable is used for GSUB subtable formats this package
// does not decode (reverse chaining single substitution, and any vendor
// extensions). Treating it as always-intersecting keeps closure
// conservative rather than silently dropping glyphs a real shaper would
// reach through this lookup.
type notImplementedGsubSubtable struct {
	lookupType, format uint16
}

func (st notImplementedGsubSubtable) Intersects(*intset.Set) bool { return true }

func (st notImplementedGsubSubtable) ClosureGlyphs(*intset.Set) {}

func (st notImplementedGsubSubtable) NestedLookups() []LookupIndex { return nil }

func (st notImplementedGsubSubtable) EncodeLen() int {
	panic(fmt.Sprintf("GSUB lookup type %d, format %d not implemented", st.lookupType, st.format))
}

func (st notImplementedGsubSubtable) Encode() []byte {
	panic(fmt.Sprintf("GSUB lookup type %d, format %d not implemented", st.lookupType, st.format))
}

// Gsub1_1 is a Single Substitution GSUB subtable (type 1, format 1).
// https://docs.microsoft.com/en-us/typography/opentype/spec/gsub#11-single-substitution-format-1
type Gsub1_1 struct {
	Cov   coverage.Table
	Delta glyph.ID
}

func readGsub1_1(p *parser.Parser, subtablePos int64) (Subtable, error) {
	buf, err := p.ReadBytes(4)
	if err != nil {
		return nil, err
	}
	coverageOffset := int64(buf[0])<<8 | int64(buf[1])
	deltaGlyphID := glyph.ID(buf[2])<<8 | glyph.ID(buf[3])
	cov, err := coverage.Read(p, subtablePos+coverageOffset)
	if err != nil {
		return nil, err
	}
	res := &Gsub1_1{
		Cov:   cov,
		Delta: deltaGlyphID,
	}
	return res, nil
}

// Intersects implements the Subtable interface.
func (l *Gsub1_1) Intersects(glyphs *intset.Set) bool {
	for _, gid := range l.Cov.Glyphs() {
		if glyphs.Contains(uint32(gid)) {
			return true
		}
	}
	return false
}

// ClosureGlyphs implements the Subtable interface.
func (l *Gsub1_1) ClosureGlyphs(glyphs *intset.Set) {
	for _, gid := range l.Cov.Glyphs() {
		if glyphs.Contains(uint32(gid)) {
			glyphs.Insert(uint32(gid + l.Delta))
		}
	}
}

// NestedLookups implements the Subtable interface.
func (l *Gsub1_1) NestedLookups() []LookupIndex { return nil }

// EncodeLen implements the Subtable interface.
func (l *Gsub1_1) EncodeLen() int {
	return 6 + l.Cov.EncodeLen()
}

// Encode implements the Subtable interface.
func (l *Gsub1_1) Encode() []byte {
	buf := make([]byte, 6+l.Cov.EncodeLen())
	// buf[0] = 0
	buf[1] = 1
	// buf[2] = 0
	buf[3] = 6
	buf[4] = byte(l.Delta >> 8)
	buf[5] = byte(l.Delta)
	copy(buf[6:], l.Cov.Encode())
	return buf
}

// Gsub1_2 is a Single Substitution GSUB subtable (type 1, format 2).
// https://docs.microsoft.com/en-us/typography/opentype/spec/gsub#12-single-substitution-format-2
type Gsub1_2 struct {
	Cov                coverage.Table
	SubstituteGlyphIDs []glyph.ID
}

func readGsub1_2(p *parser.Parser, subtablePos int64) (Subtable, error) {
	coverageOffset, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	substituteGlyphIDs, err := p.ReadGIDSlice()
	if err != nil {
		return nil, err
	}

	cov, err := coverage.Read(p, subtablePos+int64(coverageOffset))
	if err != nil {
		return nil, err
	}

	if len(cov) != len(substituteGlyphIDs) {
		return nil, &font.InvalidFontError{
			SubSystem: "sfnt/gtab",
			Reason:    "malformed format 1.2 GSUB subtable",
		}
	}

	res := &Gsub1_2{
		Cov:                cov,
		SubstituteGlyphIDs: substituteGlyphIDs,
	}
	return res, nil
}

// Intersects implements the Subtable interface.
func (l *Gsub1_2) Intersects(glyphs *intset.Set) bool {
	for _, gid := range l.Cov.Glyphs() {
		if glyphs.Contains(uint32(gid)) {
			return true
		}
	}
	return false
}

// ClosureGlyphs implements the Subtable interface.
func (l *Gsub1_2) ClosureGlyphs(glyphs *intset.Set) {
	for gid, idx := range l.Cov {
		if glyphs.Contains(uint32(gid)) {
			glyphs.Insert(uint32(l.SubstituteGlyphIDs[idx]))
		}
	}
}

// NestedLookups implements the Subtable interface.
func (l *Gsub1_2) NestedLookups() []LookupIndex { return nil }

// EncodeLen implements the Subtable interface.
func (l *Gsub1_2) EncodeLen() int {
	return 6 + 2*len(l.SubstituteGlyphIDs) + l.Cov.EncodeLen()
}

// Encode implements the Subtable interface.
func (l *Gsub1_2) Encode() []byte {
	n := len(l.SubstituteGlyphIDs)
	covOffs := 6 + 2*n

	buf := make([]byte, covOffs+l.Cov.EncodeLen())
	// buf[0] = 0
	buf[1] = 2
	buf[2] = byte(covOffs >> 8)
	buf[3] = byte(covOffs)
	buf[4] = byte(n >> 8)
	buf[5] = byte(n)
	for i := 0; i < n; i++ {
		buf[6+2*i] = byte(l.SubstituteGlyphIDs[i] >> 8)
		buf[6+2*i+1] = byte(l.SubstituteGlyphIDs[i])
	}
	copy(buf[covOffs:], l.Cov.Encode())
	return buf
}

// Gsub2_1 is a Multiple Substitution GSUB subtable (type 2, format 1).
// https://docs.microsoft.com/en-us/typography/opentype/spec/gsub#21-multiple-substitution-format-1
type Gsub2_1 struct {
	Cov  coverage.Table
	Repl [][]glyph.ID // individual sequences must have non-zero length
}

func readGsub2_1(p *parser.Parser, subtablePos int64) (Subtable, error) {
	coverageOffset, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	sequenceOffsets, err := p.ReadUint16Slice()
	if err != nil {
		return nil, err
	}
	sequenceCount := len(sequenceOffsets)

	repl := make([][]glyph.ID, sequenceCount)
	for i := 0; i < sequenceCount; i++ {
		err := p.SeekPos(subtablePos + int64(sequenceOffsets[i]))
		if err != nil {
			return nil, err
		}
		repl[i], err = p.ReadGIDSlice()
		if err != nil {
			return nil, err
		}
	}

	cov, err := coverage.Read(p, subtablePos+int64(coverageOffset))
	if err != nil {
		return nil, err
	}

	if len(cov) != sequenceCount {
		return nil, &font.InvalidFontError{
			SubSystem: "sfnt/gtab",
			Reason:    "malformed format 2.1 GSUB subtable",
		}
	}

	res := &Gsub2_1{
		Cov:  cov,
		Repl: repl,
	}
	return res, nil
}

// Intersects implements the Subtable interface.
func (l *Gsub2_1) Intersects(glyphs *intset.Set) bool {
	for _, gid := range l.Cov.Glyphs() {
		if glyphs.Contains(uint32(gid)) {
			return true
		}
	}
	return false
}

// ClosureGlyphs implements the Subtable interface.
func (l *Gsub2_1) ClosureGlyphs(glyphs *intset.Set) {
	for gid, idx := range l.Cov {
		if !glyphs.Contains(uint32(gid)) {
			continue
		}
		for _, out := range l.Repl[idx] {
			glyphs.Insert(uint32(out))
		}
	}
}

// NestedLookups implements the Subtable interface.
func (l *Gsub2_1) NestedLookups() []LookupIndex { return nil }

// EncodeLen implements the Subtable interface.
func (l *Gsub2_1) EncodeLen() int {
	total := 6 + 2*len(l.Repl)
	for _, repl := range l.Repl {
		total += 2 + 2*len(repl)
	}
	total += l.Cov.EncodeLen()
	return total
}

// Encode implements the Subtable interface.
func (l *Gsub2_1) Encode() []byte {
	sequenceCount := len(l.Repl)
	covOffs := 6 + 2*sequenceCount

	sequenceOffsets := make([]uint16, sequenceCount)
	for i, repl := range l.Repl {
		sequenceOffsets[i] = uint16(covOffs)
		covOffs += 2 + 2*len(repl)
	}

	buf := make([]byte, covOffs+l.Cov.EncodeLen())
	// buf[0] = 0
	buf[1] = 1
	buf[2] = byte(covOffs >> 8)
	buf[3] = byte(covOffs)
	buf[4] = byte(len(l.Repl) >> 8)
	buf[5] = byte(len(l.Repl))
	pos := 6
	for i := range l.Repl {
		buf[pos] = byte(sequenceOffsets[i] >> 8)
		buf[pos+1] = byte(sequenceOffsets[i])
		pos += 2
	}
	for _, repl := range l.Repl {
		buf[pos] = byte(len(repl) >> 8)
		buf[pos+1] = byte(len(repl))
		pos += 2
		for _, gid := range repl {
			buf[pos] = byte(gid >> 8)
			buf[pos+1] = byte(gid)
			pos += 2
		}
	}
	copy(buf[covOffs:], l.Cov.Encode())
	return buf
}

// Gsub3_1 is an Alternate Substitution GSUB subtable (type 3, format 1).
// https://docs.microsoft.com/en-us/typography/opentype/spec/gsub#31-alternate-substitution-format-1
type Gsub3_1 struct {
	Cov coverage.Table
	Alt [][]glyph.ID
}

func readGsub3_1(p *parser.Parser, subtablePos int64) (Subtable, error) {
	coverageOffset, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	alternateSetOffsets, err := p.ReadUint16Slice()
	if err != nil {
		return nil, err
	}
	alternateSetCount := len(alternateSetOffsets)

	alt := make([][]glyph.ID, alternateSetCount)
	for i := 0; i < alternateSetCount; i++ {
		err := p.SeekPos(subtablePos + int64(alternateSetOffsets[i]))
		if err != nil {
			return nil, err
		}
		glyphCount, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		alt[i] = make([]glyph.ID, glyphCount)
		for j := 0; j < int(glyphCount); j++ {
			gid, err := p.ReadUint16()
			if err != nil {
				return nil, err
			}
			alt[i][j] = glyph.ID(gid)
		}
	}

	cov, err := coverage.Read(p, subtablePos+int64(coverageOffset))
	if err != nil {
		return nil, err
	}

	if len(cov) != alternateSetCount {
		return nil, &font.InvalidFontError{
			SubSystem: "sfnt/gtab",
			Reason:    "malformed format 3.1 GSUB subtable",
		}
	}

	res := &Gsub3_1{
		Cov: cov,
		Alt: alt,
	}
	return res, nil
}

// Intersects implements the Subtable interface.
func (l *Gsub3_1) Intersects(glyphs *intset.Set) bool {
	for _, gid := range l.Cov.Glyphs() {
		if glyphs.Contains(uint32(gid)) {
			return true
		}
	}
	return false
}

// ClosureGlyphs implements the Subtable interface.
func (l *Gsub3_1) ClosureGlyphs(glyphs *intset.Set) {
	for gid, idx := range l.Cov {
		if !glyphs.Contains(uint32(gid)) {
			continue
		}
		for _, out := range l.Alt[idx] {
			glyphs.Insert(uint32(out))
		}
	}
}

// NestedLookups implements the Subtable interface.
func (l *Gsub3_1) NestedLookups() []LookupIndex { return nil }

// EncodeLen implements the Subtable interface.
func (l *Gsub3_1) EncodeLen() int {
	total := 6 + 2*len(l.Alt)
	for _, repl := range l.Alt {
		total += 2 + 2*len(repl)
	}
	total += l.Cov.EncodeLen()
	return total
}

// Encode implements the Subtable interface.
func (l *Gsub3_1) Encode() []byte {
	alternateSetCount := len(l.Alt)
	covOffs := 6 + 2*alternateSetCount

	alternateSetOffsets := make([]uint16, alternateSetCount)
	for i, repl := range l.Alt {
		alternateSetOffsets[i] = uint16(covOffs)
		covOffs += 2 + 2*len(repl)
	}

	buf := make([]byte, covOffs+l.Cov.EncodeLen())
	// buf[0] = 0
	buf[1] = 1
	buf[2] = byte(covOffs >> 8)
	buf[3] = byte(covOffs)
	buf[4] = byte(len(l.Alt) >> 8)
	buf[5] = byte(len(l.Alt))
	pos := 6
	for i := range l.Alt {
		buf[pos] = byte(alternateSetOffsets[i] >> 8)
		buf[pos+1] = byte(alternateSetOffsets[i])
		pos += 2
	}
	for _, alt := range l.Alt {
		buf[pos] = byte(len(alt) >> 8)
		buf[pos+1] = byte(len(alt))
		pos += 2
		for _, gid := range alt {
			buf[pos] = byte(gid >> 8)
			buf[pos+1] = byte(gid)
			pos += 2
		}
	}
	copy(buf[covOffs:], l.Cov.Encode())
	return buf
}

// Gsub4_1 is a Ligature Substitution GSUB subtable (type 4, format 1).
// https://docs.microsoft.com/en-us/typography/opentype/spec/gsub#41-ligature-substitution-format-1
type Gsub4_1 struct {
	Cov  coverage.Table
	Repl [][]Ligature
}

// Ligature represents a substitution of a sequence of glyphs into a single glyph.
type Ligature struct {
	In  []glyph.ID // excludes the first input glyph, since this is in Cov
	Out glyph.ID
}

func readGsub4_1(p *parser.Parser, subtablePos int64) (Subtable, error) {
	coverageOffset, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	ligatureSetOffsets, err := p.ReadUint16Slice()
	if err != nil {
		return nil, err
	}

	repl := make([][]Ligature, len(ligatureSetOffsets))
	for i, ligatureSetOffset := range ligatureSetOffsets {
		ligatureSetPos := subtablePos + int64(ligatureSetOffset)
		err := p.SeekPos(ligatureSetPos)
		if err != nil {
			return nil, err
		}
		ligatureOffsets, err := p.ReadUint16Slice()
		if err != nil {
			return nil, err
		}

		repl[i] = make([]Ligature, len(ligatureOffsets))
		for j, ligatureOffset := range ligatureOffsets {
			err = p.SeekPos(ligatureSetPos + int64(ligatureOffset))
			if err != nil {
				return nil, err
			}
			ligatureGlyph, err := p.ReadUint16()
			if err != nil {
				return nil, err
			}
			componentCount, err := p.ReadUint16()
			if err != nil {
				return nil, err
			}
			if componentCount == 0 {
				return nil, &font.InvalidFontError{
					SubSystem: "sfnt/gtab",
					Reason:    "invalid component count in format 4.1 GSUB subtable",
				}
			}
			componentGlyphIDs := make([]glyph.ID, componentCount-1)
			for k := range componentGlyphIDs {
				gid, err := p.ReadUint16()
				if err != nil {
					return nil, err
				}
				componentGlyphIDs[k] = glyph.ID(gid)
			}

			repl[i][j].In = componentGlyphIDs
			repl[i][j].Out = glyph.ID(ligatureGlyph)
		}
	}

	cov, err := coverage.Read(p, subtablePos+int64(coverageOffset))
	if err != nil {
		return nil, err
	}

	return &Gsub4_1{
		Cov:  cov,
		Repl: repl,
	}, nil
}

// Intersects implements the Subtable interface.
//
// The first glyph of every ligature sequence is in Cov; this reports
// whether any of those first glyphs is present. Closure is conservative
// here: it does not require the remaining components to also be present,
// matching common subsetting-library practice for ligature closure.
func (l *Gsub4_1) Intersects(glyphs *intset.Set) bool {
	for _, gid := range l.Cov.Glyphs() {
		if glyphs.Contains(uint32(gid)) {
			return true
		}
	}
	return false
}

// ClosureGlyphs implements the Subtable interface.
func (l *Gsub4_1) ClosureGlyphs(glyphs *intset.Set) {
	for gid, idx := range l.Cov {
		if !glyphs.Contains(uint32(gid)) {
			continue
		}
		for _, lig := range l.Repl[idx] {
			allPresent := true
			for _, comp := range lig.In {
				if !glyphs.Contains(uint32(comp)) {
					allPresent = false
					break
				}
			}
			if allPresent {
				glyphs.Insert(uint32(lig.Out))
			}
		}
	}
}

// NestedLookups implements the Subtable interface.
func (l *Gsub4_1) NestedLookups() []LookupIndex { return nil }

// EncodeLen implements the Subtable interface.
func (l *Gsub4_1) EncodeLen() int {
	total := 6 + 2*len(l.Repl) + l.Cov.EncodeLen()
	for _, ligSet := range l.Repl {
		total += 2 + 2*len(ligSet)
		for _, lig := range ligSet {
			total += 4 + 2*len(lig.In)
		}
	}
	return total
}

// Encode implements the Subtable interface.
func (l *Gsub4_1) Encode() []byte {
	ligatureSetCount := len(l.Repl)
	covOffs := 6 + 2*ligatureSetCount

	ligSetSizes := make([]int, ligatureSetCount)
	for i, ligSet := range l.Repl {
		size := 2 + 2*len(ligSet)
		for _, lig := range ligSet {
			size += 4 + 2*len(lig.In)
		}
		ligSetSizes[i] = size
	}

	total := covOffs
	ligatureSetOffsets := make([]int, ligatureSetCount)
	for i, size := range ligSetSizes {
		ligatureSetOffsets[i] = total
		total += size
	}
	coverageOffset := total
	total += l.Cov.EncodeLen()

	buf := make([]byte, 0, total)
	buf = append(buf,
		0, 1, // format
		byte(coverageOffset>>8), byte(coverageOffset),
		byte(ligatureSetCount>>8), byte(ligatureSetCount),
	)
	for _, offs := range ligatureSetOffsets {
		buf = append(buf, byte(offs>>8), byte(offs))
	}
	for _, ligSet := range l.Repl {
		ligatureCount := len(ligSet)
		buf = append(buf, byte(ligatureCount>>8), byte(ligatureCount))
		pos := 2 + 2*ligatureCount
		for _, lig := range ligSet {
			buf = append(buf, byte(pos>>8), byte(pos))
			pos += 4 + 2*len(lig.In)
		}
		for _, lig := range ligSet {
			compCount := len(lig.In) + 1
			buf = append(buf,
				byte(lig.Out>>8), byte(lig.Out),
				byte(compCount>>8), byte(compCount),
			)
			for _, gid := range lig.In {
				buf = append(buf, byte(gid>>8), byte(gid))
			}
		}
	}
	buf = append(buf, l.Cov.Encode()...)
	return buf
}
