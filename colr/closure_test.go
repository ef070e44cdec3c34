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

package colr

import (
	"testing"

	"github.com/googlefonts/ift-go/font/glyph"
	"github.com/googlefonts/ift-go/intset"
)

func TestV0ClosureGlyphsAndPalettes(t *testing.T) {
	table := &Table{
		BaseGlyphRecords: []BaseGlyphRecord{
			{GID: 100, FirstLayerIndex: 0, NumLayers: 1}, // layers 0..=1 inclusive (2 entries)
		},
		LayerRecords: []LayerRecord{
			{GID: 5, PaletteIndex: 0},
			{GID: 6, PaletteIndex: 1},
		},
	}

	in := intset.New(200)
	in.Insert(100)

	out := table.V0ClosureGlyphs(in)
	if !out.Contains(100) || !out.Contains(5) || !out.Contains(6) {
		t.Fatalf("expected base glyph plus both layers, got %v", out.Iter())
	}

	pal := intset.New(0)
	table.V0ClosurePaletteIndices(out, pal)
	if !pal.Contains(0) || !pal.Contains(1) {
		t.Errorf("expected palette indices {0,1}, got %v", pal.Iter())
	}
}

func TestV0ClosureGlyphsUnmappedGlyphPassesThrough(t *testing.T) {
	table := &Table{
		BaseGlyphRecords: []BaseGlyphRecord{{GID: 100, FirstLayerIndex: 0, NumLayers: 1}},
		LayerRecords:     []LayerRecord{{GID: 5}, {GID: 6}},
	}
	in := intset.New(200)
	in.Insert(8) // not in BaseGlyphRecords

	out := table.V0ClosureGlyphs(in)
	if out.Len() != 1 || !out.Contains(8) {
		t.Errorf("expected just {8}, got %v", out.Iter())
	}
}

func TestV1ClosureSimpleGlyphPaint(t *testing.T) {
	table := &Table{
		Version: 1,
		BaseGlyphList: []BaseGlyphPaintRecord{
			{GID: 50, Paint: &PaintGlyph{paintHeader: paintHeader{Offset: 10}, GID: 7}},
		},
	}

	glyphSet := intset.New(200)
	glyphSet.Insert(50)

	result := table.V1Closure(glyphSet)

	if !glyphSet.Contains(7) {
		t.Error("v1 closure should add the glyph referenced by PaintGlyph")
	}
	if result.PaletteIndices.Len() != 0 {
		t.Errorf("no solid paint in graph, expected no palette indices, got %v", result.PaletteIndices.Iter())
	}
}

func TestV1ClosureVarSolidCollectsVariationIndices(t *testing.T) {
	table := &Table{
		Version: 1,
		BaseGlyphList: []BaseGlyphPaintRecord{
			{GID: 50, Paint: &PaintVarSolid{paintHeader: paintHeader{Offset: 10}, PaletteIndex: 3, VarIndexBase: 20}},
		},
	}

	glyphSet := intset.New(200)
	glyphSet.Insert(50)

	result := table.V1Closure(glyphSet)
	if !result.PaletteIndices.Contains(3) {
		t.Error("expected palette index 3")
	}
	if !result.VariationIndices.Contains(20) {
		t.Errorf("expected variation index 20, got %v", result.VariationIndices.Iter())
	}
}

func TestV1ClosureColrLayersRecursesIntoLayerList(t *testing.T) {
	table := &Table{
		Version: 1,
		BaseGlyphList: []BaseGlyphPaintRecord{
			{GID: 50, Paint: &PaintColrLayers{paintHeader: paintHeader{Offset: 10}, FirstLayerIndex: 0, NumLayers: 2}},
		},
		LayerList: []Paint{
			&PaintSolid{paintHeader: paintHeader{Offset: 100}, PaletteIndex: 1},
			&PaintSolid{paintHeader: paintHeader{Offset: 200}, PaletteIndex: 2},
		},
	}

	glyphSet := intset.New(200)
	glyphSet.Insert(50)

	result := table.V1Closure(glyphSet)
	if !result.LayerIndices.Contains(0) || !result.LayerIndices.Contains(1) {
		t.Errorf("expected layer indices {0,1}, got %v", result.LayerIndices.Iter())
	}
	if !result.PaletteIndices.Contains(1) || !result.PaletteIndices.Contains(2) {
		t.Errorf("expected palette indices {1,2}, got %v", result.PaletteIndices.Iter())
	}
}

func TestV1ClosureColrGlyphCycleTerminates(t *testing.T) {
	// Two base glyphs whose ColrGlyph paints reference each other.
	table := &Table{Version: 1}
	table.BaseGlyphList = []BaseGlyphPaintRecord{
		{GID: 1, Paint: &PaintColrGlyph{paintHeader: paintHeader{Offset: 10}, GID: 2}},
		{GID: 2, Paint: &PaintColrGlyph{paintHeader: paintHeader{Offset: 20}, GID: 1}},
	}

	glyphSet := intset.New(10)
	glyphSet.Insert(1)

	done := make(chan struct{})
	var result *V1ClosureResult
	go func() {
		result = table.V1Closure(glyphSet)
		close(done)
	}()
	<-done

	if result == nil {
		t.Fatal("closure did not complete")
	}
	if !glyphSet.Contains(1) || !glyphSet.Contains(2) {
		t.Errorf("expected both glyphs in cycle to be added, got %v", glyphSet.Iter())
	}
}

func TestV1ClosureDeltaSetIndexMapRemapping(t *testing.T) {
	table := &Table{
		Version: 1,
		BaseGlyphList: []BaseGlyphPaintRecord{
			{GID: 50, Paint: &PaintVarSolid{paintHeader: paintHeader{Offset: 10}, PaletteIndex: 1, VarIndexBase: 0}},
		},
		VarIndexMap: &DeltaSetIndexMap{
			entries: []deltaSetEntry{{outer: 3, inner: 7}},
		},
	}

	glyphSet := intset.New(200)
	glyphSet.Insert(50)

	result := table.V1Closure(glyphSet)
	if !result.DeltaSetIndices.Contains(0) {
		t.Errorf("expected delta set index 0 retained, got %v", result.DeltaSetIndices.Iter())
	}
	want := uint32(3)<<16 | 7
	if !result.VariationIndices.Contains(want) {
		t.Errorf("expected remapped variation index %d, got %v", want, result.VariationIndices.Iter())
	}
}

func TestClipListSkipsNonIntersectingRange(t *testing.T) {
	table := &Table{
		Version: 1,
		ClipList: []Clip{
			{StartGID: glyph.ID(500), EndGID: glyph.ID(600),
				Box: &ClipBox{Format: 2, VarIndexBase: 40}},
		},
	}
	glyphSet := intset.New(1000)
	glyphSet.Insert(50) // outside the clip range

	result := table.V1Closure(glyphSet)
	if result.VariationIndices.Contains(40) {
		t.Error("clip range does not intersect the glyph set, should not contribute variation indices")
	}
}

func TestClipListFormat2AddsVariationIndices(t *testing.T) {
	table := &Table{
		Version: 1,
		ClipList: []Clip{
			{StartGID: glyph.ID(40), EndGID: glyph.ID(60),
				Box: &ClipBox{Format: 2, VarIndexBase: 40}},
		},
	}
	glyphSet := intset.New(1000)
	glyphSet.Insert(50) // inside the clip range

	result := table.V1Closure(glyphSet)
	for i := uint32(40); i <= 43; i++ {
		if !result.VariationIndices.Contains(i) {
			t.Errorf("expected variation index %d from format-2 clip box", i)
		}
	}
}
