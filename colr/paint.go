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
	"fmt"

	"github.com/googlefonts/ift-go/font"
	"github.com/googlefonts/ift-go/font/glyph"
	"github.com/googlefonts/ift-go/font/parser"
)

// Paint is one node of a COLR v1 paint graph. Offset is the node's byte
// position relative to the COLR table's own start; it is the identity
// used by the v1 closure to detect cycles (two offsets are the same
// node iff they are byte-identical, exactly as the binary format
// shares subgraphs by sharing offsets).
type Paint interface {
	paintOffset() uint32
	closure(c *v1ClosureContext)
}

type paintHeader struct {
	Offset uint32
}

func (h paintHeader) paintOffset() uint32 { return h.Offset }

// ColorStop is one entry of a (non-variable) ColorLine.
type ColorStop struct {
	StopOffset   uint16 // F2Dot14
	PaletteIndex uint16
	Alpha        uint16 // F2Dot14
}

// VarColorStop is one entry of a variable ColorLine.
type VarColorStop struct {
	StopOffset   uint16
	PaletteIndex uint16
	Alpha        uint16
	VarIndexBase uint32
}

// ColorLine is a non-variable gradient color line.
type ColorLine struct {
	Extend byte
	Stops  []ColorStop
}

// VarColorLine is a variable gradient color line.
type VarColorLine struct {
	Extend byte
	Stops  []VarColorStop
}

// PaintColrLayers (format 1) paints a run of layers from the COLR
// table's LayerList, each in turn.
type PaintColrLayers struct {
	paintHeader
	NumLayers       uint8
	FirstLayerIndex uint32
}

// PaintSolid (format 2) fills with a flat palette color.
type PaintSolid struct {
	paintHeader
	PaletteIndex uint16
	Alpha        uint16
}

// PaintVarSolid (format 3) is the variable form of PaintSolid.
type PaintVarSolid struct {
	paintHeader
	PaletteIndex uint16
	Alpha        uint16
	VarIndexBase uint32
}

// PaintLinearGradient (format 4).
type PaintLinearGradient struct {
	paintHeader
	ColorLine              ColorLine
	X0, Y0, X1, Y1, X2, Y2 int16
}

// PaintVarLinearGradient (format 5).
type PaintVarLinearGradient struct {
	paintHeader
	ColorLine              VarColorLine
	X0, Y0, X1, Y1, X2, Y2 int16
	VarIndexBase           uint32
}

// PaintRadialGradient (format 6).
type PaintRadialGradient struct {
	paintHeader
	ColorLine          ColorLine
	X0, Y0, R0         uint16
	X1, Y1             uint16
	R1                 uint16
}

// PaintVarRadialGradient (format 7).
type PaintVarRadialGradient struct {
	paintHeader
	ColorLine    VarColorLine
	X0, Y0, R0   uint16
	X1, Y1       uint16
	R1           uint16
	VarIndexBase uint32
}

// PaintSweepGradient (format 8).
type PaintSweepGradient struct {
	paintHeader
	ColorLine                ColorLine
	CenterX, CenterY         int16
	StartAngle, EndAngle     uint16 // F2Dot14
}

// PaintVarSweepGradient (format 9).
type PaintVarSweepGradient struct {
	paintHeader
	ColorLine            VarColorLine
	CenterX, CenterY     int16
	StartAngle, EndAngle uint16
	VarIndexBase         uint32
}

// PaintGlyph (format 10) clips the child paint to a glyph's outline.
type PaintGlyph struct {
	paintHeader
	GID   glyph.ID
	Paint Paint
}

// PaintColrGlyph (format 11) paints another base glyph's v1 paint graph
// in place, resolved by looking gid up in the COLR table's BaseGlyphList.
type PaintColrGlyph struct {
	paintHeader
	GID glyph.ID
}

// PaintTransform (format 12) applies a fixed affine transform.
type PaintTransform struct {
	paintHeader
	Paint Paint
}

// VarAffine2x3 is the variable affine-transform table referenced by
// PaintVarTransform.
type VarAffine2x3 struct {
	VarIndexBase uint32
}

// PaintVarTransform (format 13) applies a variable affine transform.
type PaintVarTransform struct {
	paintHeader
	Paint     Paint
	Transform VarAffine2x3
}

// PaintTranslate (format 14).
type PaintTranslate struct {
	paintHeader
	Paint  Paint
	Dx, Dy int16
}

// PaintVarTranslate (format 15).
type PaintVarTranslate struct {
	paintHeader
	Paint        Paint
	Dx, Dy       int16
	VarIndexBase uint32
}

// PaintScale (format 16).
type PaintScale struct {
	paintHeader
	Paint          Paint
	ScaleX, ScaleY uint16
}

// PaintVarScale (format 17).
type PaintVarScale struct {
	paintHeader
	Paint          Paint
	ScaleX, ScaleY uint16
	VarIndexBase   uint32
}

// PaintScaleAroundCenter (format 18).
type PaintScaleAroundCenter struct {
	paintHeader
	Paint                    Paint
	ScaleX, ScaleY           uint16
	CenterX, CenterY         int16
}

// PaintVarScaleAroundCenter (format 19).
type PaintVarScaleAroundCenter struct {
	paintHeader
	Paint            Paint
	ScaleX, ScaleY   uint16
	CenterX, CenterY int16
	VarIndexBase     uint32
}

// PaintScaleUniform (format 20).
type PaintScaleUniform struct {
	paintHeader
	Paint Paint
	Scale uint16
}

// PaintVarScaleUniform (format 21).
type PaintVarScaleUniform struct {
	paintHeader
	Paint        Paint
	Scale        uint16
	VarIndexBase uint32
}

// PaintScaleUniformAroundCenter (format 22).
type PaintScaleUniformAroundCenter struct {
	paintHeader
	Paint            Paint
	Scale            uint16
	CenterX, CenterY int16
}

// PaintVarScaleUniformAroundCenter (format 23).
type PaintVarScaleUniformAroundCenter struct {
	paintHeader
	Paint            Paint
	Scale            uint16
	CenterX, CenterY int16
	VarIndexBase     uint32
}

// PaintRotate (format 24).
type PaintRotate struct {
	paintHeader
	Paint Paint
	Angle uint16
}

// PaintVarRotate (format 25).
type PaintVarRotate struct {
	paintHeader
	Paint        Paint
	Angle        uint16
	VarIndexBase uint32
}

// PaintRotateAroundCenter (format 26).
type PaintRotateAroundCenter struct {
	paintHeader
	Paint            Paint
	Angle            uint16
	CenterX, CenterY int16
}

// PaintVarRotateAroundCenter (format 27).
type PaintVarRotateAroundCenter struct {
	paintHeader
	Paint            Paint
	Angle            uint16
	CenterX, CenterY int16
	VarIndexBase     uint32
}

// PaintSkew (format 28).
type PaintSkew struct {
	paintHeader
	Paint                  Paint
	XSkewAngle, YSkewAngle uint16
}

// PaintVarSkew (format 29).
type PaintVarSkew struct {
	paintHeader
	Paint                  Paint
	XSkewAngle, YSkewAngle uint16
	VarIndexBase           uint32
}

// PaintSkewAroundCenter (format 30).
type PaintSkewAroundCenter struct {
	paintHeader
	Paint                  Paint
	XSkewAngle, YSkewAngle uint16
	CenterX, CenterY       int16
}

// PaintVarSkewAroundCenter (format 31).
type PaintVarSkewAroundCenter struct {
	paintHeader
	Paint                  Paint
	XSkewAngle, YSkewAngle uint16
	CenterX, CenterY       int16
	VarIndexBase           uint32
}

// PaintComposite (format 32) composites one paint over another.
type PaintComposite struct {
	paintHeader
	SourcePaint   Paint
	CompositeMode uint8
	BackdropPaint Paint
}

// readPaint reads one Paint node at pos, computing its paintOffset() relative
// to colrBase. Offsets are used by the v1 closure to detect cycles.
func readPaint(p *parser.Parser, colrBase, pos int64) (Paint, error) {
	if err := p.SeekPos(pos); err != nil {
		return nil, err
	}
	format, err := p.ReadUint8()
	if err != nil {
		return nil, err
	}
	hdr := paintHeader{Offset: uint32(pos - colrBase)}

	readChildPaintOffset24 := func() (int64, error) {
		buf, err := p.ReadBytes(3)
		if err != nil {
			return 0, err
		}
		off := uint32(buf[0])<<16 | uint32(buf[1])<<8 | uint32(buf[2])
		return pos + int64(off), nil
	}
	readColorLine := func() (ColorLine, error) {
		buf, err := p.ReadBytes(3)
		if err != nil {
			return ColorLine{}, err
		}
		off := uint32(buf[0])<<16 | uint32(buf[1])<<8 | uint32(buf[2])
		return readColorLineAt(p, pos+int64(off))
	}
	readVarColorLine := func() (VarColorLine, error) {
		buf, err := p.ReadBytes(3)
		if err != nil {
			return VarColorLine{}, err
		}
		off := uint32(buf[0])<<16 | uint32(buf[1])<<8 | uint32(buf[2])
		return readVarColorLineAt(p, pos+int64(off))
	}

	switch format {
	case 1:
		numLayers, err := p.ReadUint8()
		if err != nil {
			return nil, err
		}
		first, err := p.ReadUint32()
		if err != nil {
			return nil, err
		}
		return &PaintColrLayers{paintHeader: hdr, NumLayers: numLayers, FirstLayerIndex: first}, nil

	case 2, 3:
		pal, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		alpha, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		if format == 2 {
			return &PaintSolid{paintHeader: hdr, PaletteIndex: pal, Alpha: alpha}, nil
		}
		vib, err := p.ReadUint32()
		if err != nil {
			return nil, err
		}
		return &PaintVarSolid{paintHeader: hdr, PaletteIndex: pal, Alpha: alpha, VarIndexBase: vib}, nil

	case 4:
		cl, err := readColorLine()
		if err != nil {
			return nil, err
		}
		coords, err := readInt16s(p, 6)
		if err != nil {
			return nil, err
		}
		return &PaintLinearGradient{paintHeader: hdr, ColorLine: cl,
			X0: coords[0], Y0: coords[1], X1: coords[2], Y1: coords[3], X2: coords[4], Y2: coords[5]}, nil

	case 5:
		cl, err := readVarColorLine()
		if err != nil {
			return nil, err
		}
		coords, err := readInt16s(p, 6)
		if err != nil {
			return nil, err
		}
		vib, err := p.ReadUint32()
		if err != nil {
			return nil, err
		}
		return &PaintVarLinearGradient{paintHeader: hdr, ColorLine: cl,
			X0: coords[0], Y0: coords[1], X1: coords[2], Y1: coords[3], X2: coords[4], Y2: coords[5],
			VarIndexBase: vib}, nil

	case 6:
		cl, err := readColorLine()
		if err != nil {
			return nil, err
		}
		vals, err := readUint16s(p, 6)
		if err != nil {
			return nil, err
		}
		return &PaintRadialGradient{paintHeader: hdr, ColorLine: cl,
			X0: vals[0], Y0: vals[1], R0: vals[2], X1: vals[3], Y1: vals[4], R1: vals[5]}, nil

	case 7:
		cl, err := readVarColorLine()
		if err != nil {
			return nil, err
		}
		vals, err := readUint16s(p, 6)
		if err != nil {
			return nil, err
		}
		vib, err := p.ReadUint32()
		if err != nil {
			return nil, err
		}
		return &PaintVarRadialGradient{paintHeader: hdr, ColorLine: cl,
			X0: vals[0], Y0: vals[1], R0: vals[2], X1: vals[3], Y1: vals[4], R1: vals[5],
			VarIndexBase: vib}, nil

	case 8:
		cl, err := readColorLine()
		if err != nil {
			return nil, err
		}
		center, err := readInt16s(p, 2)
		if err != nil {
			return nil, err
		}
		angles, err := readUint16s(p, 2)
		if err != nil {
			return nil, err
		}
		return &PaintSweepGradient{paintHeader: hdr, ColorLine: cl,
			CenterX: center[0], CenterY: center[1], StartAngle: angles[0], EndAngle: angles[1]}, nil

	case 9:
		cl, err := readVarColorLine()
		if err != nil {
			return nil, err
		}
		center, err := readInt16s(p, 2)
		if err != nil {
			return nil, err
		}
		angles, err := readUint16s(p, 2)
		if err != nil {
			return nil, err
		}
		vib, err := p.ReadUint32()
		if err != nil {
			return nil, err
		}
		return &PaintVarSweepGradient{paintHeader: hdr, ColorLine: cl,
			CenterX: center[0], CenterY: center[1], StartAngle: angles[0], EndAngle: angles[1],
			VarIndexBase: vib}, nil

	case 10:
		childPos, err := readChildPaintOffset24()
		if err != nil {
			return nil, err
		}
		gid, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		child, err := readPaint(p, colrBase, childPos)
		if err != nil {
			return nil, err
		}
		return &PaintGlyph{paintHeader: hdr, GID: glyph.ID(gid), Paint: child}, nil

	case 11:
		gid, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		return &PaintColrGlyph{paintHeader: hdr, GID: glyph.ID(gid)}, nil

	case 12, 13:
		childPos, err := readChildPaintOffset24()
		if err != nil {
			return nil, err
		}
		xformBuf, err := p.ReadBytes(3)
		if err != nil {
			return nil, err
		}
		xformOff := uint32(xformBuf[0])<<16 | uint32(xformBuf[1])<<8 | uint32(xformBuf[2])
		child, err := readPaint(p, colrBase, childPos)
		if err != nil {
			return nil, err
		}
		if format == 12 {
			return &PaintTransform{paintHeader: hdr, Paint: child}, nil
		}
		vib, err := readVarAffine2x3At(p, pos+int64(xformOff))
		if err != nil {
			return nil, err
		}
		return &PaintVarTransform{paintHeader: hdr, Paint: child, Transform: vib}, nil

	case 14, 15:
		childPos, err := readChildPaintOffset24()
		if err != nil {
			return nil, err
		}
		dx, err := p.ReadInt16()
		if err != nil {
			return nil, err
		}
		dy, err := p.ReadInt16()
		if err != nil {
			return nil, err
		}
		child, err := readPaint(p, colrBase, childPos)
		if err != nil {
			return nil, err
		}
		if format == 14 {
			return &PaintTranslate{paintHeader: hdr, Paint: child, Dx: dx, Dy: dy}, nil
		}
		vib, err := p.ReadUint32()
		if err != nil {
			return nil, err
		}
		return &PaintVarTranslate{paintHeader: hdr, Paint: child, Dx: dx, Dy: dy, VarIndexBase: vib}, nil

	case 16, 17:
		childPos, err := readChildPaintOffset24()
		if err != nil {
			return nil, err
		}
		sx, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		sy, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		child, err := readPaint(p, colrBase, childPos)
		if err != nil {
			return nil, err
		}
		if format == 16 {
			return &PaintScale{paintHeader: hdr, Paint: child, ScaleX: sx, ScaleY: sy}, nil
		}
		vib, err := p.ReadUint32()
		if err != nil {
			return nil, err
		}
		return &PaintVarScale{paintHeader: hdr, Paint: child, ScaleX: sx, ScaleY: sy, VarIndexBase: vib}, nil

	case 18, 19:
		childPos, err := readChildPaintOffset24()
		if err != nil {
			return nil, err
		}
		sx, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		sy, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		cx, err := p.ReadInt16()
		if err != nil {
			return nil, err
		}
		cy, err := p.ReadInt16()
		if err != nil {
			return nil, err
		}
		child, err := readPaint(p, colrBase, childPos)
		if err != nil {
			return nil, err
		}
		if format == 18 {
			return &PaintScaleAroundCenter{paintHeader: hdr, Paint: child, ScaleX: sx, ScaleY: sy, CenterX: cx, CenterY: cy}, nil
		}
		vib, err := p.ReadUint32()
		if err != nil {
			return nil, err
		}
		return &PaintVarScaleAroundCenter{paintHeader: hdr, Paint: child, ScaleX: sx, ScaleY: sy, CenterX: cx, CenterY: cy, VarIndexBase: vib}, nil

	case 20, 21:
		childPos, err := readChildPaintOffset24()
		if err != nil {
			return nil, err
		}
		s, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		child, err := readPaint(p, colrBase, childPos)
		if err != nil {
			return nil, err
		}
		if format == 20 {
			return &PaintScaleUniform{paintHeader: hdr, Paint: child, Scale: s}, nil
		}
		vib, err := p.ReadUint32()
		if err != nil {
			return nil, err
		}
		return &PaintVarScaleUniform{paintHeader: hdr, Paint: child, Scale: s, VarIndexBase: vib}, nil

	case 22, 23:
		childPos, err := readChildPaintOffset24()
		if err != nil {
			return nil, err
		}
		s, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		cx, err := p.ReadInt16()
		if err != nil {
			return nil, err
		}
		cy, err := p.ReadInt16()
		if err != nil {
			return nil, err
		}
		child, err := readPaint(p, colrBase, childPos)
		if err != nil {
			return nil, err
		}
		if format == 22 {
			return &PaintScaleUniformAroundCenter{paintHeader: hdr, Paint: child, Scale: s, CenterX: cx, CenterY: cy}, nil
		}
		vib, err := p.ReadUint32()
		if err != nil {
			return nil, err
		}
		return &PaintVarScaleUniformAroundCenter{paintHeader: hdr, Paint: child, Scale: s, CenterX: cx, CenterY: cy, VarIndexBase: vib}, nil

	case 24, 25:
		childPos, err := readChildPaintOffset24()
		if err != nil {
			return nil, err
		}
		a, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		child, err := readPaint(p, colrBase, childPos)
		if err != nil {
			return nil, err
		}
		if format == 24 {
			return &PaintRotate{paintHeader: hdr, Paint: child, Angle: a}, nil
		}
		vib, err := p.ReadUint32()
		if err != nil {
			return nil, err
		}
		return &PaintVarRotate{paintHeader: hdr, Paint: child, Angle: a, VarIndexBase: vib}, nil

	case 26, 27:
		childPos, err := readChildPaintOffset24()
		if err != nil {
			return nil, err
		}
		a, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		cx, err := p.ReadInt16()
		if err != nil {
			return nil, err
		}
		cy, err := p.ReadInt16()
		if err != nil {
			return nil, err
		}
		child, err := readPaint(p, colrBase, childPos)
		if err != nil {
			return nil, err
		}
		if format == 26 {
			return &PaintRotateAroundCenter{paintHeader: hdr, Paint: child, Angle: a, CenterX: cx, CenterY: cy}, nil
		}
		vib, err := p.ReadUint32()
		if err != nil {
			return nil, err
		}
		return &PaintVarRotateAroundCenter{paintHeader: hdr, Paint: child, Angle: a, CenterX: cx, CenterY: cy, VarIndexBase: vib}, nil

	case 28, 29:
		childPos, err := readChildPaintOffset24()
		if err != nil {
			return nil, err
		}
		xs, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		ys, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		child, err := readPaint(p, colrBase, childPos)
		if err != nil {
			return nil, err
		}
		if format == 28 {
			return &PaintSkew{paintHeader: hdr, Paint: child, XSkewAngle: xs, YSkewAngle: ys}, nil
		}
		vib, err := p.ReadUint32()
		if err != nil {
			return nil, err
		}
		return &PaintVarSkew{paintHeader: hdr, Paint: child, XSkewAngle: xs, YSkewAngle: ys, VarIndexBase: vib}, nil

	case 30, 31:
		childPos, err := readChildPaintOffset24()
		if err != nil {
			return nil, err
		}
		xs, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		ys, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		cx, err := p.ReadInt16()
		if err != nil {
			return nil, err
		}
		cy, err := p.ReadInt16()
		if err != nil {
			return nil, err
		}
		child, err := readPaint(p, colrBase, childPos)
		if err != nil {
			return nil, err
		}
		if format == 30 {
			return &PaintSkewAroundCenter{paintHeader: hdr, Paint: child, XSkewAngle: xs, YSkewAngle: ys, CenterX: cx, CenterY: cy}, nil
		}
		vib, err := p.ReadUint32()
		if err != nil {
			return nil, err
		}
		return &PaintVarSkewAroundCenter{paintHeader: hdr, Paint: child, XSkewAngle: xs, YSkewAngle: ys, CenterX: cx, CenterY: cy, VarIndexBase: vib}, nil

	case 32:
		srcPos, err := readChildPaintOffset24()
		if err != nil {
			return nil, err
		}
		mode, err := p.ReadUint8()
		if err != nil {
			return nil, err
		}
		backdropBuf, err := p.ReadBytes(3)
		if err != nil {
			return nil, err
		}
		backdropOff := uint32(backdropBuf[0])<<16 | uint32(backdropBuf[1])<<8 | uint32(backdropBuf[2])
		src, err := readPaint(p, colrBase, srcPos)
		if err != nil {
			return nil, err
		}
		backdrop, err := readPaint(p, colrBase, pos+int64(backdropOff))
		if err != nil {
			return nil, err
		}
		return &PaintComposite{paintHeader: hdr, SourcePaint: src, CompositeMode: mode, BackdropPaint: backdrop}, nil

	default:
		return nil, &font.NotSupportedError{SubSystem: "colr", Feature: fmt.Sprintf("paint format %d", format)}
	}
}

func readInt16s(p *parser.Parser, n int) ([]int16, error) {
	out := make([]int16, n)
	for i := range out {
		v, err := p.ReadInt16()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func readUint16s(p *parser.Parser, n int) ([]uint16, error) {
	out := make([]uint16, n)
	for i := range out {
		v, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func readColorLineAt(p *parser.Parser, pos int64) (ColorLine, error) {
	if err := p.SeekPos(pos); err != nil {
		return ColorLine{}, err
	}
	extend, err := p.ReadUint8()
	if err != nil {
		return ColorLine{}, err
	}
	n, err := p.ReadUint16()
	if err != nil {
		return ColorLine{}, err
	}
	stops := make([]ColorStop, n)
	for i := range stops {
		off, err := p.ReadUint16()
		if err != nil {
			return ColorLine{}, err
		}
		pal, err := p.ReadUint16()
		if err != nil {
			return ColorLine{}, err
		}
		alpha, err := p.ReadUint16()
		if err != nil {
			return ColorLine{}, err
		}
		stops[i] = ColorStop{StopOffset: off, PaletteIndex: pal, Alpha: alpha}
	}
	return ColorLine{Extend: extend, Stops: stops}, nil
}

func readVarColorLineAt(p *parser.Parser, pos int64) (VarColorLine, error) {
	if err := p.SeekPos(pos); err != nil {
		return VarColorLine{}, err
	}
	extend, err := p.ReadUint8()
	if err != nil {
		return VarColorLine{}, err
	}
	n, err := p.ReadUint16()
	if err != nil {
		return VarColorLine{}, err
	}
	stops := make([]VarColorStop, n)
	for i := range stops {
		off, err := p.ReadUint16()
		if err != nil {
			return VarColorLine{}, err
		}
		pal, err := p.ReadUint16()
		if err != nil {
			return VarColorLine{}, err
		}
		alpha, err := p.ReadUint16()
		if err != nil {
			return VarColorLine{}, err
		}
		vib, err := p.ReadUint32()
		if err != nil {
			return VarColorLine{}, err
		}
		stops[i] = VarColorStop{StopOffset: off, PaletteIndex: pal, Alpha: alpha, VarIndexBase: vib}
	}
	return VarColorLine{Extend: extend, Stops: stops}, nil
}

func readVarAffine2x3At(p *parser.Parser, pos int64) (VarAffine2x3, error) {
	if err := p.SeekPos(pos); err != nil {
		return VarAffine2x3{}, err
	}
	// xx, yx, xy, yy, dx, dy (6 Fixed values) precede var_index_base; the
	// coefficients themselves are irrelevant to closure so they are
	// skipped rather than decoded.
	if _, err := p.ReadBytes(24); err != nil {
		return VarAffine2x3{}, err
	}
	vib, err := p.ReadUint32()
	if err != nil {
		return VarAffine2x3{}, err
	}
	return VarAffine2x3{VarIndexBase: vib}, nil
}
