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

package glyphkeyed

import (
	"github.com/googlefonts/ift-go/font"
	"github.com/googlefonts/ift-go/intset"
)

// dedupGIDReplacementData merges the per-patch blobs for tableTag
// across every patch in the group into a single GID set and a
// deduplicated blob slice (ordered by ascending GID). The IFT
// specification allows patches within a group to be applied in any
// order, so when two patches touch the same GID the first one
// encountered wins.
func dedupGIDReplacementData(patches []*GlyphPatches, tableTag font.Tag) (*intset.Set, [][]byte, error) {
	dataForGID := make(map[uint32][]byte)
	gids := intset.New(^uint32(0))

	for _, gp := range patches {
		tableIndex := -1
		for i, t := range gp.Tables {
			if t == tableTag {
				tableIndex = i
				break
			}
		}
		if tableIndex < 0 {
			continue
		}

		blobs, err := gp.GlyphDataForTable(tableIndex)
		if err != nil {
			return nil, nil, err
		}
		for _, b := range blobs {
			gid := uint32(b.GID)
			if _, ok := dataForGID[gid]; !ok {
				dataForGID[gid] = b.Data
			}
			gids.Insert(gid)
		}
	}

	deduped := make([][]byte, 0, len(dataForGID))
	for _, gid := range gids.Iter() {
		deduped = append(deduped, dataForGID[gid])
	}
	return gids, deduped, nil
}

// retainedGlyphsInFont returns the ascending, non-overlapping GID
// ranges that are NOT being replaced, clipped to [0, maxGlyphID].
func retainedGlyphsInFont(replaceGIDs *intset.Set, maxGlyphID uint32) []intset.Range {
	replaceGIDs.SetMax(maxGlyphID)
	return replaceGIDs.IterExcludedRanges()
}

// retainedGlyphsTotalSize sums the original "glyf" byte ranges for
// every retained glyph.
func retainedGlyphsTotalSize(replaceGIDs *intset.Set, loca []uint32, maxGlyphID uint32) (uint64, error) {
	var total uint64
	for _, rng := range retainedGlyphsInFont(replaceGIDs, maxGlyphID) {
		if int(rng.Hi)+1 >= len(loca) {
			return 0, &FontParsingFailedError{Reason: "loca entry missing for retained glyph range"}
		}
		start, end := loca[rng.Lo], loca[rng.Hi+1]
		if end < start {
			return 0, &FontParsingFailedError{Reason: "loca entries are not in ascending order"}
		}
		total += uint64(end - start)
	}
	return total, nil
}

// shortLocaMaxOffset is the largest byte offset a short ("loca" format
// 0) table can address: it stores offset/2 as a u16.
const shortLocaMaxOffset = 0xffff * 2

// synthesizeGlyfAndLoca rebuilds "glyf" and "loca" by walking the
// replace-GID ranges and the retained-GID ranges in lockstep, always
// advancing through whichever range starts first - a merge of two
// already-sorted range sequences.
func synthesizeGlyfAndLoca(
	replaceGIDs *intset.Set,
	maxGlyphID uint32,
	replacementData [][]byte,
	glyfData []byte,
	loca []uint32,
	isShortLoca bool,
) ([]byte, []byte, error) {
	if last, ok := replaceGIDs.Last(); ok && last > maxGlyphID {
		return nil, nil, &InvalidPatchError{Reason: "Patch would add a glyph beyond this fonts maximum."}
	}

	totalSize, err := retainedGlyphsTotalSize(replaceGIDs, loca, maxGlyphID)
	if err != nil {
		return nil, nil, err
	}
	for _, data := range replacementData {
		n := uint64(len(data))
		totalSize += n
		if isShortLoca && n%2 != 0 {
			totalSize++
		}
	}
	if isShortLoca && totalSize > shortLocaMaxOffset {
		return nil, nil, &InvalidPatchError{Reason: "loca offset type switch required"}
	}

	offSize := 4
	if isShortLoca {
		offSize = 2
	}
	newGlyf := make([]byte, totalSize)
	newLoca := make([]byte, (int(maxGlyphID)+2)*offSize)

	writeLocaOffset := func(gid, off uint32) {
		pos := int(gid) * offSize
		if isShortLoca {
			v := uint16(off / 2)
			newLoca[pos], newLoca[pos+1] = byte(v>>8), byte(v)
			return
		}
		newLoca[pos] = byte(off >> 24)
		newLoca[pos+1] = byte(off >> 16)
		newLoca[pos+2] = byte(off >> 8)
		newLoca[pos+3] = byte(off)
	}

	replaceRanges := replaceGIDs.IterRanges()
	keepRanges := retainedGlyphsInFont(replaceGIDs, maxGlyphID)

	ri, ki, blobIdx := 0, 0, 0
	writeIndex := uint32(0)
	for ri < len(replaceRanges) || ki < len(keepRanges) {
		replace := ri < len(replaceRanges) &&
			(ki >= len(keepRanges) || replaceRanges[ri].Lo <= keepRanges[ki].Lo)

		if replace {
			rng := replaceRanges[ri]
			ri++
			for gid := rng.Lo; gid <= rng.Hi; gid++ {
				if blobIdx >= len(replacementData) {
					return nil, nil, &InternalError{Reason: "replacement data exhausted before replace range"}
				}
				data := replacementData[blobIdx]
				blobIdx++
				if int(writeIndex)+len(data) > len(newGlyf) {
					return nil, nil, &InternalError{Reason: "glyf buffer overflow"}
				}
				copy(newGlyf[writeIndex:], data)
				writeLocaOffset(gid, writeIndex)
				writeIndex += uint32(len(data))
				if isShortLoca && len(data)%2 != 0 {
					writeIndex++
				}
			}
		} else {
			rng := keepRanges[ki]
			ki++
			startOff, endOff := loca[rng.Lo], loca[rng.Hi+1]
			length := endOff - startOff
			if int(startOff)+int(length) > len(glyfData) || int(writeIndex)+int(length) > len(newGlyf) {
				return nil, nil, &InternalError{Reason: "glyf buffer overflow"}
			}
			copy(newGlyf[writeIndex:], glyfData[startOff:endOff])
			for gid := rng.Lo; gid <= rng.Hi; gid++ {
				writeLocaOffset(gid, loca[gid]-startOff+writeIndex)
			}
			writeIndex += length
		}
	}

	writeLocaOffset(maxGlyphID+1, writeIndex)
	return newGlyf, newLoca, nil
}
