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
	"bytes"
	"encoding/binary"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/googlefonts/ift-go/font"
	"github.com/googlefonts/ift-go/font/glyph"
	"github.com/googlefonts/ift-go/font/sfnt/head"
	"github.com/googlefonts/ift-go/font/sfnt/table"
	"github.com/googlefonts/ift-go/intset"
	"github.com/googlefonts/ift-go/sfnt"
)

// Fixture used by every test below: a 5-glyph short-loca font.
//
//	gid0: [01 02]             (2 bytes)
//	gid1: [03 04 05 06]        (4 bytes)
//	gid2: []                   (0 bytes)
//	gid3: [07 08]              (2 bytes)
//	gid4: [09 0A]              (2 bytes)
var fixtureGlyf = []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0A}
var fixtureLocaOffsets = []uint32{0, 2, 6, 6, 8, 10}

func encodeShortLoca(offsets []uint32) []byte {
	out := make([]byte, 2*len(offsets))
	for i, off := range offsets {
		v := uint16(off / 2)
		out[2*i], out[2*i+1] = byte(v>>8), byte(v)
	}
	return out
}

func buildFixtureFont(t *testing.T, numGlyphs int) []byte {
	t.Helper()

	headData, err := (&head.Info{
		UnitsPerEm:     1000,
		Created:        time.Unix(0, 0).UTC(),
		Modified:       time.Unix(0, 0).UTC(),
		HasLongOffsets: false,
	}).Encode()
	if err != nil {
		t.Fatalf("encode head: %v", err)
	}
	maxpData, err := (&table.MaxpInfo{NumGlyphs: numGlyphs}).Encode()
	if err != nil {
		t.Fatalf("encode maxp: %v", err)
	}

	b := sfnt.NewBuilder(table.ScalerTypeTrueType)
	b.AddRaw("head", headData)
	b.AddRaw("maxp", maxpData)
	b.AddRaw("glyf", fixtureGlyf)
	b.AddRaw("loca", encodeShortLoca(fixtureLocaOffsets))
	b.AddRaw("post", []byte{0, 3, 0, 0}) // unrelated table, must survive verbatim

	out, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return out
}

func openFixtureFont(t *testing.T, numGlyphs int) *sfnt.Reader {
	t.Helper()
	rd, err := sfnt.Open(bytes.NewReader(buildFixtureFont(t, numGlyphs)))
	if err != nil {
		t.Fatalf("sfnt.Open: %v", err)
	}
	return rd
}

func TestSynthesizeGlyfAndLocaBasic(t *testing.T) {
	gids := intset.New(^uint32(0))
	gids.Insert(1)
	gids.Insert(3)
	replacementData := [][]byte{[]byte("AB"), []byte("CDE")}

	newGlyf, newLoca, err := synthesizeGlyfAndLoca(gids, 4, replacementData, fixtureGlyf, fixtureLocaOffsets, true)
	if err != nil {
		t.Fatalf("synthesizeGlyfAndLoca: %v", err)
	}

	wantGlyf := []byte{0x01, 0x02, 'A', 'B', 'C', 'D', 'E', 0x00, 0x09, 0x0A}
	if !bytes.Equal(newGlyf, wantGlyf) {
		t.Errorf("new glyf = %v, want %v", newGlyf, wantGlyf)
	}

	wantLoca := []uint32{0, 2, 4, 4, 8, 10}
	if len(newLoca) != 2*len(wantLoca) {
		t.Fatalf("new loca length = %d, want %d", len(newLoca), 2*len(wantLoca))
	}
	for i, want := range wantLoca {
		got := uint32(binary.BigEndian.Uint16(newLoca[2*i:])) * 2
		if got != want {
			t.Errorf("loca[%d] = %d, want %d", i, got, want)
		}
	}
}

func TestSynthesizeGlyfAndLocaBeyondMaxGlyphID(t *testing.T) {
	gids := intset.New(^uint32(0))
	gids.Insert(5)
	_, _, err := synthesizeGlyfAndLoca(gids, 4, [][]byte{[]byte("x")}, fixtureGlyf, fixtureLocaOffsets, true)
	if !IsInvalidPatch(err) {
		t.Fatalf("got err = %v, want InvalidPatchError", err)
	}
}

func buildGlyphPatchesBody(tableTag font.Tag, glyphIDs []uint32, blobs [][]byte, wide bool) []byte {
	var buf bytes.Buffer
	writeU16 := func(v uint16) { buf.WriteByte(byte(v >> 8)); buf.WriteByte(byte(v)) }
	writeU32 := func(v uint32) {
		buf.WriteByte(byte(v >> 24))
		buf.WriteByte(byte(v >> 16))
		buf.WriteByte(byte(v >> 8))
		buf.WriteByte(byte(v))
	}

	var flags uint16
	if wide {
		flags = uint16(WideGlyphIDs)
	}

	writeU16(1) // format_version
	writeU16(flags)
	writeU16(uint16(len(glyphIDs)))
	buf.WriteByte(1) // table_count
	buf.Write(tableTag[:])

	for _, gid := range glyphIDs {
		if wide {
			buf.WriteByte(byte(gid >> 16))
			buf.WriteByte(byte(gid >> 8))
			buf.WriteByte(byte(gid))
		} else {
			writeU16(uint16(gid))
		}
	}

	var off uint32
	writeU32(off)
	for _, blob := range blobs {
		off += uint32(len(blob))
		writeU32(off)
	}
	for _, blob := range blobs {
		buf.Write(blob)
	}
	return buf.Bytes()
}

func TestReadGlyphPatchesNarrow(t *testing.T) {
	body := buildGlyphPatchesBody(font.MakeTag("glyf"), []uint32{1, 3}, [][]byte{[]byte("AB"), []byte("CDE")}, false)

	gp, err := ReadGlyphPatches(body)
	if err != nil {
		t.Fatalf("ReadGlyphPatches: %v", err)
	}
	if gp.GlyphCount != 2 || len(gp.Tables) != 1 || gp.Tables[0] != font.MakeTag("glyf") {
		t.Fatalf("unexpected header: %+v", gp)
	}

	blobs, err := gp.GlyphDataForTable(0)
	if err != nil {
		t.Fatalf("GlyphDataForTable: %v", err)
	}
	want := []GlyphBlob{{GID: 1, Data: []byte("AB")}, {GID: 3, Data: []byte("CDE")}}
	if len(blobs) != len(want) {
		t.Fatalf("got %d blobs, want %d", len(blobs), len(want))
	}
	for i := range want {
		if blobs[i].GID != want[i].GID || !bytes.Equal(blobs[i].Data, want[i].Data) {
			t.Errorf("blob[%d] = %+v, want %+v", i, blobs[i], want[i])
		}
	}
}

func TestReadGlyphPatchesWideGlyphIDs(t *testing.T) {
	body := buildGlyphPatchesBody(font.MakeTag("glyf"), []uint32{70000, 70002}, [][]byte{[]byte("Z"), []byte("YY")}, true)

	gp, err := ReadGlyphPatches(body)
	if err != nil {
		t.Fatalf("ReadGlyphPatches: %v", err)
	}
	blobs, err := gp.GlyphDataForTable(0)
	if err != nil {
		t.Fatalf("GlyphDataForTable: %v", err)
	}
	if blobs[0].GID != 70000 || blobs[1].GID != 70002 {
		t.Fatalf("got gids %d, %d, want 70000, 70002", blobs[0].GID, blobs[1].GID)
	}
}

func TestGlyphDataForTableUnsortedGIDs(t *testing.T) {
	body := buildGlyphPatchesBody(font.MakeTag("glyf"), []uint32{7, 3}, [][]byte{[]byte("a"), []byte("b")}, false)
	gp, err := ReadGlyphPatches(body)
	if err != nil {
		t.Fatalf("ReadGlyphPatches: %v", err)
	}
	_, err = gp.GlyphDataForTable(0)
	if !IsInvalidPatch(err) {
		t.Fatalf("got err = %v, want InvalidPatchError", err)
	}
}

func compressBrotli(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := brotli.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		t.Fatalf("brotli write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("brotli close: %v", err)
	}
	return buf.Bytes()
}

func assemblePatch(t *testing.T, body []byte) []byte {
	t.Helper()
	compressed := compressBrotli(t, body)

	var buf bytes.Buffer
	buf.WriteString("ifgk")
	buf.Write(make([]byte, 16)) // compatibility_id
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(body)))
	buf.Write(lenBuf[:])
	buf.WriteByte(0)
	buf.WriteByte(0) // flags
	buf.Write(compressed)
	return buf.Bytes()
}

func TestApplyGlyphKeyedPatchesBasic(t *testing.T) {
	rd := openFixtureFont(t, 5)

	body := buildGlyphPatchesBody(font.MakeTag("glyf"), []uint32{1, 3}, [][]byte{[]byte("AB"), []byte("CDE")}, false)
	patchBytes := assemblePatch(t, body)

	patch, err := ReadPatch(patchBytes)
	if err != nil {
		t.Fatalf("ReadPatch: %v", err)
	}

	out, err := ApplyGlyphKeyedPatches([]*Patch{patch}, rd)
	if err != nil {
		t.Fatalf("ApplyGlyphKeyedPatches: %v", err)
	}

	patched, err := sfnt.Open(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("reopen patched font: %v", err)
	}

	glyf, ok := patched.TableBytes("glyf")
	if !ok {
		t.Fatal("patched font missing glyf")
	}
	wantGlyf := []byte{0x01, 0x02, 'A', 'B', 'C', 'D', 'E', 0x00, 0x09, 0x0A}
	if !bytes.Equal(glyf, wantGlyf) {
		t.Errorf("patched glyf = %v, want %v", glyf, wantGlyf)
	}

	post, ok := patched.TableBytes("post")
	if !ok || !bytes.Equal(post, []byte{0, 3, 0, 0}) {
		t.Errorf("unrelated table post not copied through verbatim: %v, ok=%v", post, ok)
	}
}

func TestApplyGlyphKeyedPatchesWrongFormatTag(t *testing.T) {
	_, err := ReadPatch([]byte("xxxx0000000000000000\x00\x00\x00\x00\x00\x00"))
	if !IsInvalidPatch(err) {
		t.Fatalf("got err = %v, want InvalidPatchError", err)
	}
}

func TestApplyGlyphKeyedPatchesRejectsCFF(t *testing.T) {
	rd := openFixtureFont(t, 5)

	body := buildGlyphPatchesBody(font.MakeTag("CFF "), []uint32{1}, [][]byte{[]byte("x")}, false)
	patch, err := ReadPatch(assemblePatch(t, body))
	if err != nil {
		t.Fatalf("ReadPatch: %v", err)
	}

	_, err = ApplyGlyphKeyedPatches([]*Patch{patch}, rd)
	if !IsUnsupportedPatch(err) {
		t.Fatalf("got err = %v, want UnsupportedPatchError", err)
	}
}

func buildMultiTableGlyphPatchesBody(tables []font.Tag, glyphIDs []uint32, blobsByTable [][][]byte) []byte {
	var buf bytes.Buffer
	writeU16 := func(v uint16) { buf.WriteByte(byte(v >> 8)); buf.WriteByte(byte(v)) }
	writeU32 := func(v uint32) {
		buf.WriteByte(byte(v >> 24))
		buf.WriteByte(byte(v >> 16))
		buf.WriteByte(byte(v >> 8))
		buf.WriteByte(byte(v))
	}

	writeU16(1)
	writeU16(0)
	writeU16(uint16(len(glyphIDs)))
	buf.WriteByte(byte(len(tables)))
	for _, tag := range tables {
		buf.Write(tag[:])
	}
	for _, gid := range glyphIDs {
		writeU16(uint16(gid))
	}

	var allBlobs [][]byte
	for _, perTable := range blobsByTable {
		allBlobs = append(allBlobs, perTable...)
	}
	var off uint32
	writeU32(off)
	for _, blob := range allBlobs {
		off += uint32(len(blob))
		writeU32(off)
	}
	for _, blob := range allBlobs {
		buf.Write(blob)
	}
	return buf.Bytes()
}

func TestGlyphDataForTableMultipleTables(t *testing.T) {
	tables := []font.Tag{font.MakeTag("glyf"), font.MakeTag("gvar")}
	glyphIDs := []uint32{2, 7, 8}
	body := buildMultiTableGlyphPatchesBody(tables, glyphIDs, [][][]byte{
		{[]byte("abc"), []byte("defg"), []byte("hijkl")},
		{[]byte("mn"), []byte("opq"), []byte("r")},
	})

	gp, err := ReadGlyphPatches(body)
	if err != nil {
		t.Fatalf("ReadGlyphPatches: %v", err)
	}

	table0, err := gp.GlyphDataForTable(0)
	if err != nil {
		t.Fatalf("GlyphDataForTable(0): %v", err)
	}
	wantTable0 := [][]byte{[]byte("abc"), []byte("defg"), []byte("hijkl")}
	for i, blob := range table0 {
		if blob.GID != glyph.ID(glyphIDs[i]) || !bytes.Equal(blob.Data, wantTable0[i]) {
			t.Errorf("table0[%d] = %+v, want gid %d data %q", i, blob, glyphIDs[i], wantTable0[i])
		}
	}

	table1, err := gp.GlyphDataForTable(1)
	if err != nil {
		t.Fatalf("GlyphDataForTable(1): %v", err)
	}
	wantTable1 := [][]byte{[]byte("mn"), []byte("opq"), []byte("r")}
	for i, blob := range table1 {
		if blob.GID != glyph.ID(glyphIDs[i]) || !bytes.Equal(blob.Data, wantTable1[i]) {
			t.Errorf("table1[%d] = %+v, want gid %d data %q", i, blob, glyphIDs[i], wantTable1[i])
		}
	}
}

func TestReadGlyphPatchesUnsortedTableTags(t *testing.T) {
	body := buildMultiTableGlyphPatchesBody(
		[]font.Tag{font.MakeTag("gvar"), font.MakeTag("glyf")},
		[]uint32{1},
		[][][]byte{{[]byte("a")}, {[]byte("b")}},
	)
	_, err := ReadGlyphPatches(body)
	if !IsInvalidPatch(err) {
		t.Fatalf("got err = %v, want InvalidPatchError", err)
	}
}

func TestDedupGIDReplacementDataFirstPatchWins(t *testing.T) {
	bodyFirst, err := ReadGlyphPatches(buildGlyphPatchesBody(font.MakeTag("glyf"), []uint32{1}, [][]byte{[]byte("AB")}, false))
	if err != nil {
		t.Fatalf("ReadGlyphPatches: %v", err)
	}
	bodySecond, err := ReadGlyphPatches(buildGlyphPatchesBody(font.MakeTag("glyf"), []uint32{1, 2}, [][]byte{[]byte("ZZ"), []byte("Q")}, false))
	if err != nil {
		t.Fatalf("ReadGlyphPatches: %v", err)
	}

	gids, data, err := dedupGIDReplacementData([]*GlyphPatches{bodyFirst, bodySecond}, font.MakeTag("glyf"))
	if err != nil {
		t.Fatalf("dedupGIDReplacementData: %v", err)
	}
	if gids.Len() != 2 {
		t.Fatalf("got %d gids, want 2", gids.Len())
	}
	ordered := gids.Iter()
	for i, gid := range ordered {
		if gid == 1 && string(data[i]) != "AB" {
			t.Errorf("gid1 data = %q, want first-patch-wins %q", data[i], "AB")
		}
		if gid == 2 && string(data[i]) != "Q" {
			t.Errorf("gid2 data = %q, want %q", data[i], "Q")
		}
	}
}

func TestApplyGlyphKeyedPatchesMultiplePatchesDedupFirstWins(t *testing.T) {
	rd := openFixtureFont(t, 5)

	bodyFirst := buildGlyphPatchesBody(font.MakeTag("glyf"), []uint32{1}, [][]byte{[]byte("AB")}, false)
	bodySecond := buildGlyphPatchesBody(font.MakeTag("glyf"), []uint32{1}, [][]byte{[]byte("ZZ")}, false)

	patch1, err := ReadPatch(assemblePatch(t, bodyFirst))
	if err != nil {
		t.Fatalf("ReadPatch: %v", err)
	}
	patch2, err := ReadPatch(assemblePatch(t, bodySecond))
	if err != nil {
		t.Fatalf("ReadPatch: %v", err)
	}

	out, err := ApplyGlyphKeyedPatches([]*Patch{patch1, patch2}, rd)
	if err != nil {
		t.Fatalf("ApplyGlyphKeyedPatches: %v", err)
	}
	patched, err := sfnt.Open(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	glyf, _ := patched.TableBytes("glyf")
	// gid1 should carry patch1's "AB", not patch2's "ZZ".
	if !bytes.Contains(glyf, []byte("AB")) || bytes.Contains(glyf, []byte("ZZ")) {
		t.Errorf("first-patch-wins dedup failed, glyf = %v", glyf)
	}
}
