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
	"github.com/googlefonts/ift-go/font/glyph"
	"github.com/googlefonts/ift-go/intset"
)

// maxNestingLevel bounds COLR v1 paint-graph recursion. Both this depth
// check and visitedPaints cycle detection must be active: either alone
// is insufficient on an adversarial paint graph (a cycle of paints that
// never repeats an offset within 64 steps would otherwise run forever;
// a long acyclic chain deeper than 64 would otherwise recurse
// unboundedly).
const maxNestingLevel = 64

// V0ClosureGlyphs returns glyphSet extended with every v0 layer glyph
// reachable from it: for gid in glyphSet with a BaseGlyphRecord, the
// layer glyphs in LayerRecords[first .. first+numLayers] (inclusive of
// both ends, matching the upstream reference implementation this
// package is grounded on).
func (t *Table) V0ClosureGlyphs(glyphSet *intset.Set) *intset.Set {
	out := intset.New(0)
	for _, g := range glyphSet.Iter() {
		out.Insert(g)
	}
	for _, g := range glyphSet.Iter() {
		rec, ok := t.baseGlyph(glyph.ID(g))
		if !ok {
			continue
		}
		start := uint32(rec.FirstLayerIndex)
		end := start + uint32(rec.NumLayers)
		for i := start; i <= end; i++ {
			if int(i) < len(t.LayerRecords) {
				out.Insert(uint32(t.LayerRecords[i].GID))
			}
		}
	}
	return out
}

// V0ClosurePaletteIndices adds to paletteIndices the v0 palette index
// of every layer reachable from glyphSet. Called after V0ClosureGlyphs
// (and after V1Closure, if both versions are present) so palette
// indices used only by v1-produced glyphs are still captured.
func (t *Table) V0ClosurePaletteIndices(glyphSet *intset.Set, paletteIndices *intset.Set) {
	for _, g := range glyphSet.Iter() {
		rec, ok := t.baseGlyph(glyph.ID(g))
		if !ok {
			continue
		}
		start := uint32(rec.FirstLayerIndex)
		end := start + uint32(rec.NumLayers)
		for i := start; i <= end; i++ {
			if int(i) < len(t.LayerRecords) {
				paletteIndices.Insert(uint32(t.LayerRecords[i].PaletteIndex))
			}
		}
	}
}

// V1ClosureResult collects the side outputs of a V1Closure walk.
type V1ClosureResult struct {
	LayerIndices     *intset.Set
	PaletteIndices   *intset.Set
	VariationIndices *intset.Set
	DeltaSetIndices  *intset.Set
}

func newV1ClosureResult() *V1ClosureResult {
	return &V1ClosureResult{
		LayerIndices:     intset.New(0),
		PaletteIndices:   intset.New(0),
		VariationIndices: intset.New(0),
		DeltaSetIndices:  intset.New(0),
	}
}

// v1ClosureContext carries the mutable state threaded through one
// V1Closure call: the glyph set discovered so far (kept separate from
// the caller's glyphSet until the walk over BaseGlyphList completes,
// matching the grounding source's two-phase union), the cycle-detecting
// visitedPaints set keyed by byte offset from the COLR table start, and
// the recursion budget.
type v1ClosureContext struct {
	table *Table

	glyphSet         *intset.Set
	layerIndices     *intset.Set
	paletteIndices   *intset.Set
	variationIndices *intset.Set

	nestingLeft   int
	visitedPaints map[uint32]bool
}

func (c *v1ClosureContext) dispatch(p Paint) {
	if p == nil || c.nestingLeft <= 0 {
		return
	}
	if c.paintVisited(p) {
		return
	}
	c.nestingLeft--
	p.closure(c)
	c.nestingLeft++
}

func (c *v1ClosureContext) paintVisited(p Paint) bool {
	off := p.paintOffset()
	if c.visitedPaints[off] {
		return true
	}
	c.visitedPaints[off] = true
	return false
}

func (c *v1ClosureContext) addLayerIndices(first, last uint32) {
	c.layerIndices.InsertRange(first, last)
}

func (c *v1ClosureContext) addPaletteIndex(idx uint16) {
	c.paletteIndices.Insert(uint32(idx))
}

func (c *v1ClosureContext) addVariationIndices(varIndexBase uint32, numVars uint8) {
	if numVars == 0 || varIndexBase == NoVariationIndex {
		return
	}
	last := varIndexBase + uint32(numVars) - 1
	c.variationIndices.InsertRange(varIndexBase, last)
}

func (c *v1ClosureContext) addGlyph(gid glyph.ID) {
	c.glyphSet.Insert(uint32(gid))
}

// V1Closure computes the v1 paint-graph closure of glyphSet: it widens
// glyphSet in place with every glyph reachable through a Paint/Glyph or
// Paint/ColrGlyph node, and returns the layer/palette/variation index
// sets the walk collected. A table with Version < 1 is a no-op
// returning empty sets. If VarIndexMap is present, the variation
// indices collected during the walk are delta-set indices; they are
// remapped to real variation indices and the originals are returned
// separately as DeltaSetIndices.
func (t *Table) V1Closure(glyphSet *intset.Set) *V1ClosureResult {
	result := newV1ClosureResult()
	if t.Version < 1 {
		return result
	}

	c := &v1ClosureContext{
		table:            t,
		glyphSet:         intset.New(0),
		layerIndices:     result.LayerIndices,
		paletteIndices:   result.PaletteIndices,
		variationIndices: result.VariationIndices,
		nestingLeft:      maxNestingLevel,
		visitedPaints:    map[uint32]bool{},
	}

	for _, rec := range t.BaseGlyphList {
		if !glyphSet.Contains(uint32(rec.GID)) {
			continue
		}
		c.dispatch(rec.Paint)
	}
	for _, g := range c.glyphSet.Iter() {
		glyphSet.Insert(g)
	}

	if t.ClipList != nil {
		for _, g := range glyphSet.Iter() {
			c.glyphSet.Insert(g)
		}
		for _, clip := range t.ClipList {
			clip.closure(c, glyphSet)
		}
	}

	if t.VarIndexMap != nil {
		for _, v := range result.VariationIndices.Iter() {
			result.DeltaSetIndices.Insert(v)
		}
		result.VariationIndices.Clear()
		for _, delta := range result.DeltaSetIndices.Iter() {
			if varIdx, ok := t.VarIndexMap.Get(delta); ok {
				result.VariationIndices.Insert(varIdx)
			}
		}
	}

	return result
}

func (clip Clip) closure(c *v1ClosureContext, glyphSet *intset.Set) {
	if clip.Box == nil {
		return
	}
	included := intset.New(0)
	included.InsertRange(uint32(clip.StartGID), uint32(clip.EndGID))
	included.Intersect(glyphSet)
	if included.IsEmpty() {
		return
	}
	if clip.Box.Format == 2 {
		c.addVariationIndices(clip.Box.VarIndexBase, 4)
	}
}

// --- Paint.closure implementations, one per format ---

func (p *PaintColrLayers) closure(c *v1ClosureContext) {
	if p.NumLayers == 0 {
		return
	}
	last := p.FirstLayerIndex + uint32(p.NumLayers) - 1
	c.addLayerIndices(p.FirstLayerIndex, last)
	for i := p.FirstLayerIndex; i <= last; i++ {
		if int(i) < len(c.table.LayerList) {
			c.dispatch(c.table.LayerList[i])
		}
	}
}

func (p *PaintSolid) closure(c *v1ClosureContext) {
	c.addPaletteIndex(p.PaletteIndex)
}

func (p *PaintVarSolid) closure(c *v1ClosureContext) {
	c.addPaletteIndex(p.PaletteIndex)
	c.addVariationIndices(p.VarIndexBase, 1)
}

func (cl ColorLine) closure(c *v1ClosureContext) {
	for _, s := range cl.Stops {
		c.addPaletteIndex(s.PaletteIndex)
	}
}

func (cl VarColorLine) closure(c *v1ClosureContext) {
	for _, s := range cl.Stops {
		c.addPaletteIndex(s.PaletteIndex)
		c.addVariationIndices(s.VarIndexBase, 2)
	}
}

func (p *PaintLinearGradient) closure(c *v1ClosureContext)    { p.ColorLine.closure(c) }
func (p *PaintRadialGradient) closure(c *v1ClosureContext)    { p.ColorLine.closure(c) }
func (p *PaintSweepGradient) closure(c *v1ClosureContext)     { p.ColorLine.closure(c) }

func (p *PaintVarLinearGradient) closure(c *v1ClosureContext) {
	p.ColorLine.closure(c)
	c.addVariationIndices(p.VarIndexBase, 6)
}

func (p *PaintVarRadialGradient) closure(c *v1ClosureContext) {
	p.ColorLine.closure(c)
	c.addVariationIndices(p.VarIndexBase, 6)
}

func (p *PaintVarSweepGradient) closure(c *v1ClosureContext) {
	p.ColorLine.closure(c)
	c.addVariationIndices(p.VarIndexBase, 4)
}

func (p *PaintGlyph) closure(c *v1ClosureContext) {
	c.addGlyph(p.GID)
	c.dispatch(p.Paint)
}

func (p *PaintColrGlyph) closure(c *v1ClosureContext) {
	rec, ok := c.table.baseGlyphPaint(p.GID)
	if !ok {
		return
	}
	c.addGlyph(p.GID)
	c.dispatch(rec.Paint)
}

func (p *PaintTransform) closure(c *v1ClosureContext) { c.dispatch(p.Paint) }

func (p *PaintVarTransform) closure(c *v1ClosureContext) {
	c.dispatch(p.Paint)
	c.addVariationIndices(p.Transform.VarIndexBase, 6)
}

func (p *PaintTranslate) closure(c *v1ClosureContext) { c.dispatch(p.Paint) }
func (p *PaintVarTranslate) closure(c *v1ClosureContext) {
	c.dispatch(p.Paint)
	c.addVariationIndices(p.VarIndexBase, 2)
}

func (p *PaintScale) closure(c *v1ClosureContext) { c.dispatch(p.Paint) }
func (p *PaintVarScale) closure(c *v1ClosureContext) {
	c.dispatch(p.Paint)
	c.addVariationIndices(p.VarIndexBase, 2)
}

func (p *PaintScaleAroundCenter) closure(c *v1ClosureContext) { c.dispatch(p.Paint) }
func (p *PaintVarScaleAroundCenter) closure(c *v1ClosureContext) {
	c.dispatch(p.Paint)
	c.addVariationIndices(p.VarIndexBase, 4)
}

func (p *PaintScaleUniform) closure(c *v1ClosureContext) { c.dispatch(p.Paint) }
func (p *PaintVarScaleUniform) closure(c *v1ClosureContext) {
	c.dispatch(p.Paint)
	c.addVariationIndices(p.VarIndexBase, 1)
}

func (p *PaintScaleUniformAroundCenter) closure(c *v1ClosureContext) { c.dispatch(p.Paint) }
func (p *PaintVarScaleUniformAroundCenter) closure(c *v1ClosureContext) {
	c.dispatch(p.Paint)
	c.addVariationIndices(p.VarIndexBase, 3)
}

func (p *PaintRotate) closure(c *v1ClosureContext) { c.dispatch(p.Paint) }
func (p *PaintVarRotate) closure(c *v1ClosureContext) {
	c.dispatch(p.Paint)
	c.addVariationIndices(p.VarIndexBase, 1)
}

func (p *PaintRotateAroundCenter) closure(c *v1ClosureContext) { c.dispatch(p.Paint) }
func (p *PaintVarRotateAroundCenter) closure(c *v1ClosureContext) {
	c.dispatch(p.Paint)
	c.addVariationIndices(p.VarIndexBase, 3)
}

func (p *PaintSkew) closure(c *v1ClosureContext) { c.dispatch(p.Paint) }
func (p *PaintVarSkew) closure(c *v1ClosureContext) {
	c.dispatch(p.Paint)
	c.addVariationIndices(p.VarIndexBase, 2)
}

func (p *PaintSkewAroundCenter) closure(c *v1ClosureContext) { c.dispatch(p.Paint) }
func (p *PaintVarSkewAroundCenter) closure(c *v1ClosureContext) {
	c.dispatch(p.Paint)
	c.addVariationIndices(p.VarIndexBase, 4)
}

func (p *PaintComposite) closure(c *v1ClosureContext) {
	c.dispatch(p.SourcePaint)
	c.dispatch(p.BackdropPaint)
}
