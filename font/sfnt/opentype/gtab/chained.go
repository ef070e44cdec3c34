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
	"github.com/googlefonts/ift-go/font"
	"github.com/googlefonts/ift-go/font/parser"
	"github.com/googlefonts/ift-go/font/sfnt/opentype/classdef"
	"github.com/googlefonts/ift-go/font/sfnt/opentype/coverage"
	"github.com/googlefonts/ift-go/intset"
)

// ChainedSeqContext2 is used for GSUB type 6 format 2 and GPOS type 8 format 2
// subtables.
// https://docs.microsoft.com/en-us/typography/opentype/spec/chapter2#chained-sequence-context-format-2-class-based-glyph-contexts
type ChainedSeqContext2 struct {
	Cov              coverage.Table
	BacktrackClasses classdef.Info
	InputClasses     classdef.Info
	LookaheadClasses classdef.Info
	Rules            [][]*ChainedClassSequenceRule
}

// ChainedClassSequenceRule describes a sequence of glyph classes, together
// with backtrack and lookahead class sequences, and the actions to be
// performed.
type ChainedClassSequenceRule struct {
	Backtrack []uint16
	Input     []uint16 // excludes the first input glyph, since this is in Cov
	Lookahead []uint16
	Actions   Nested
}

func readChainedSeqContext2(p *parser.Parser, subtablePos int64) (Subtable, error) {
	buf, err := p.ReadBytes(8)
	if err != nil {
		return nil, err
	}
	coverageOffset := uint16(buf[0])<<8 | uint16(buf[1])
	backtrackClassDefOffset := uint16(buf[2])<<8 | uint16(buf[3])
	inputClassDefOffset := uint16(buf[4])<<8 | uint16(buf[5])
	lookaheadClassDefOffset := uint16(buf[6])<<8 | uint16(buf[7])

	chainedClassSeqRuleSetOffsets, err := p.ReadUint16Slice()
	if err != nil {
		return nil, err
	}

	cov, err := coverage.Read(p, subtablePos+int64(coverageOffset))
	if err != nil {
		return nil, err
	}
	if len(cov) > len(chainedClassSeqRuleSetOffsets) {
		cov.Prune(len(chainedClassSeqRuleSetOffsets))
	} else {
		chainedClassSeqRuleSetOffsets = chainedClassSeqRuleSetOffsets[:len(cov)]
	}

	readClasses := func(offset uint16) (classdef.Info, error) {
		if offset == 0 {
			return classdef.Info{}, nil
		}
		if err := p.SeekPos(subtablePos + int64(offset)); err != nil {
			return nil, err
		}
		return classdef.Read(p, nil)
	}

	backtrackClasses, err := readClasses(backtrackClassDefOffset)
	if err != nil {
		return nil, err
	}
	inputClasses, err := readClasses(inputClassDefOffset)
	if err != nil {
		return nil, err
	}
	lookaheadClasses, err := readClasses(lookaheadClassDefOffset)
	if err != nil {
		return nil, err
	}

	rules := make([][]*ChainedClassSequenceRule, len(chainedClassSeqRuleSetOffsets))
	for i, setOffset := range chainedClassSeqRuleSetOffsets {
		if setOffset == 0 {
			continue
		}
		base := subtablePos + int64(setOffset)
		if err := p.SeekPos(base); err != nil {
			return nil, err
		}
		ruleOffsets, err := p.ReadUint16Slice()
		if err != nil {
			return nil, err
		}
		rules[i] = make([]*ChainedClassSequenceRule, len(ruleOffsets))
		for j, ruleOffset := range ruleOffsets {
			if err := p.SeekPos(base + int64(ruleOffset)); err != nil {
				return nil, err
			}

			backtrack, err := readUint16Seq(p)
			if err != nil {
				return nil, err
			}
			inputGlyphCount, err := p.ReadUint16()
			if err != nil {
				return nil, err
			}
			input := make([]uint16, int(inputGlyphCount)-1)
			for k := range input {
				input[k], err = p.ReadUint16()
				if err != nil {
					return nil, err
				}
			}
			lookahead, err := readUint16Seq(p)
			if err != nil {
				return nil, err
			}
			seqLookupCount, err := p.ReadUint16()
			if err != nil {
				return nil, err
			}
			actions := make(Nested, seqLookupCount)
			for k := range actions {
				buf, err := p.ReadBytes(4)
				if err != nil {
					return nil, err
				}
				actions[k].SequenceIndex = uint16(buf[0])<<8 | uint16(buf[1])
				actions[k].LookupListIndex = LookupIndex(buf[2])<<8 | LookupIndex(buf[3])
			}

			rules[i][j] = &ChainedClassSequenceRule{
				Backtrack: backtrack,
				Input:     input,
				Lookahead: lookahead,
				Actions:   actions,
			}
		}
	}

	return &ChainedSeqContext2{
		Cov:              cov,
		BacktrackClasses: backtrackClasses,
		InputClasses:     inputClasses,
		LookaheadClasses: lookaheadClasses,
		Rules:            rules,
	}, nil
}

func readUint16Seq(p *parser.Parser) ([]uint16, error) {
	count, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	out := make([]uint16, count)
	for i := range out {
		out[i], err = p.ReadUint16()
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Intersects implements the Subtable interface.
func (l *ChainedSeqContext2) Intersects(glyphs *intset.Set) bool {
	for _, gid := range l.Cov.Glyphs() {
		if glyphs.Contains(uint32(gid)) {
			return true
		}
	}
	return false
}

// ClosureGlyphs implements the Subtable interface.
func (l *ChainedSeqContext2) ClosureGlyphs(glyphs *intset.Set) {}

// NestedLookups implements the Subtable interface.
func (l *ChainedSeqContext2) NestedLookups() []LookupIndex {
	var out []LookupIndex
	for _, rules := range l.Rules {
		for _, r := range rules {
			if r == nil {
				continue
			}
			out = append(out, nestedLookupIndices(r.Actions)...)
		}
	}
	return out
}

// EncodeLen implements the Subtable interface.
func (l *ChainedSeqContext2) EncodeLen() int {
	total := 12 + 2*len(l.Rules)
	total += l.Cov.EncodeLen()
	total += len(l.BacktrackClasses.Encode())
	total += len(l.InputClasses.Encode())
	total += len(l.LookaheadClasses.Encode())
	for _, rules := range l.Rules {
		if rules == nil {
			continue
		}
		total += 2 + 2*len(rules)
		for _, r := range rules {
			total += 2 + 2*len(r.Backtrack)
			total += 2 + 2*len(r.Input)
			total += 2 + 2*len(r.Lookahead)
			total += 2 + 4*len(r.Actions)
		}
	}
	return total
}

// Encode implements the Subtable interface.
func (l *ChainedSeqContext2) Encode() []byte {
	chainedClassSeqRuleSetCount := len(l.Rules)
	total := 12 + 2*chainedClassSeqRuleSetCount
	coverageOffset := total
	total += l.Cov.EncodeLen()
	backtrackClassDefOffset := total
	backtrackBytes := l.BacktrackClasses.Encode()
	total += len(backtrackBytes)
	inputClassDefOffset := total
	inputBytes := l.InputClasses.Encode()
	total += len(inputBytes)
	lookaheadClassDefOffset := total
	lookaheadBytes := l.LookaheadClasses.Encode()
	total += len(lookaheadBytes)

	ruleSetOffsets := make([]uint16, chainedClassSeqRuleSetCount)
	for i, rules := range l.Rules {
		if rules == nil {
			continue
		}
		ruleSetOffsets[i] = uint16(total)
		total += 2 + 2*len(rules)
		for _, r := range rules {
			total += 2 + 2*len(r.Backtrack)
			total += 2 + 2*len(r.Input)
			total += 2 + 2*len(r.Lookahead)
			total += 2 + 4*len(r.Actions)
		}
	}

	buf := make([]byte, 0, total)
	buf = append(buf,
		0, 2, // format
		byte(coverageOffset>>8), byte(coverageOffset),
		byte(backtrackClassDefOffset>>8), byte(backtrackClassDefOffset),
		byte(inputClassDefOffset>>8), byte(inputClassDefOffset),
		byte(lookaheadClassDefOffset>>8), byte(lookaheadClassDefOffset),
		byte(chainedClassSeqRuleSetCount>>8), byte(chainedClassSeqRuleSetCount),
	)
	for _, offs := range ruleSetOffsets {
		buf = append(buf, byte(offs>>8), byte(offs))
	}
	buf = append(buf, l.Cov.Encode()...)
	buf = append(buf, backtrackBytes...)
	buf = append(buf, inputBytes...)
	buf = append(buf, lookaheadBytes...)

	for _, rules := range l.Rules {
		if rules == nil {
			continue
		}
		buf = append(buf, byte(len(rules)>>8), byte(len(rules)))
		pos := 2 + 2*len(rules)
		for _, r := range rules {
			buf = append(buf, byte(pos>>8), byte(pos))
			pos += 2 + 2*len(r.Backtrack)
			pos += 2 + 2*len(r.Input)
			pos += 2 + 2*len(r.Lookahead)
			pos += 2 + 4*len(r.Actions)
		}
		for _, r := range rules {
			buf = append(buf, byte(len(r.Backtrack)>>8), byte(len(r.Backtrack)))
			for _, cls := range r.Backtrack {
				buf = append(buf, byte(cls>>8), byte(cls))
			}
			inputGlyphCount := len(r.Input) + 1
			buf = append(buf, byte(inputGlyphCount>>8), byte(inputGlyphCount))
			for _, cls := range r.Input {
				buf = append(buf, byte(cls>>8), byte(cls))
			}
			buf = append(buf, byte(len(r.Lookahead)>>8), byte(len(r.Lookahead)))
			for _, cls := range r.Lookahead {
				buf = append(buf, byte(cls>>8), byte(cls))
			}
			buf = append(buf, byte(len(r.Actions)>>8), byte(len(r.Actions)))
			for _, a := range r.Actions {
				buf = append(buf,
					byte(a.SequenceIndex>>8), byte(a.SequenceIndex),
					byte(a.LookupListIndex>>8), byte(a.LookupListIndex),
				)
			}
		}
	}
	return buf
}

// ChainedSeqContext3 is used for GSUB type 6 format 3 and GPOS type 8 format 3
// subtables.
// https://docs.microsoft.com/en-us/typography/opentype/spec/chapter2#chained-sequence-context-format-3-coverage-based-glyph-contexts
type ChainedSeqContext3 struct {
	Backtrack []coverage.Table
	Input     []coverage.Table
	Lookahead []coverage.Table
	Actions   Nested
}

func readChainedSeqContext3(p *parser.Parser, subtablePos int64) (Subtable, error) {
	backtrackGlyphCount, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	backtrackCoverageOffsets := make([]uint16, backtrackGlyphCount)
	for i := range backtrackCoverageOffsets {
		backtrackCoverageOffsets[i], err = p.ReadUint16()
		if err != nil {
			return nil, err
		}
	}

	inputGlyphCount, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	if inputGlyphCount < 1 {
		return nil, &font.InvalidFontError{
			SubSystem: "sfnt/opentype/gtab",
			Reason:    "invalid glyph count in ChainedSeqContext3",
		}
	}
	inputCoverageOffsets := make([]uint16, inputGlyphCount)
	for i := range inputCoverageOffsets {
		inputCoverageOffsets[i], err = p.ReadUint16()
		if err != nil {
			return nil, err
		}
	}

	lookaheadGlyphCount, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	lookaheadCoverageOffsets := make([]uint16, lookaheadGlyphCount)
	for i := range lookaheadCoverageOffsets {
		lookaheadCoverageOffsets[i], err = p.ReadUint16()
		if err != nil {
			return nil, err
		}
	}

	seqLookupCount, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	actions := make(Nested, seqLookupCount)
	for i := range actions {
		buf, err := p.ReadBytes(4)
		if err != nil {
			return nil, err
		}
		actions[i].SequenceIndex = uint16(buf[0])<<8 | uint16(buf[1])
		actions[i].LookupListIndex = LookupIndex(buf[2])<<8 | LookupIndex(buf[3])
	}

	res := &ChainedSeqContext3{Actions: actions}

	for _, offs := range backtrackCoverageOffsets {
		cov, err := coverage.Read(p, subtablePos+int64(offs))
		if err != nil {
			return nil, err
		}
		res.Backtrack = append(res.Backtrack, cov)
	}
	for _, offs := range inputCoverageOffsets {
		cov, err := coverage.Read(p, subtablePos+int64(offs))
		if err != nil {
			return nil, err
		}
		res.Input = append(res.Input, cov)
	}
	for _, offs := range lookaheadCoverageOffsets {
		cov, err := coverage.Read(p, subtablePos+int64(offs))
		if err != nil {
			return nil, err
		}
		res.Lookahead = append(res.Lookahead, cov)
	}
	return res, nil
}

// Intersects implements the Subtable interface.
func (l *ChainedSeqContext3) Intersects(glyphs *intset.Set) bool {
	if len(l.Input) == 0 {
		return false
	}
	for _, gid := range l.Input[0].Glyphs() {
		if glyphs.Contains(uint32(gid)) {
			return true
		}
	}
	return false
}

// ClosureGlyphs implements the Subtable interface.
func (l *ChainedSeqContext3) ClosureGlyphs(glyphs *intset.Set) {}

// NestedLookups implements the Subtable interface.
func (l *ChainedSeqContext3) NestedLookups() []LookupIndex {
	return nestedLookupIndices(l.Actions)
}

// EncodeLen implements the Subtable interface.
func (l *ChainedSeqContext3) EncodeLen() int {
	total := 10 +2*len(l.Backtrack) + 2*len(l.Input) + 2*len(l.Lookahead) + 4*len(l.Actions)
	for _, cov := range l.Backtrack {
		total += cov.EncodeLen()
	}
	for _, cov := range l.Input {
		total += cov.EncodeLen()
	}
	for _, cov := range l.Lookahead {
		total += cov.EncodeLen()
	}
	return total
}

// Encode implements the Subtable interface.
func (l *ChainedSeqContext3) Encode() []byte {
	total := 10 +2*len(l.Backtrack) + 2*len(l.Input) + 2*len(l.Lookahead) + 4*len(l.Actions)

	backtrackOffsets := make([]uint16, len(l.Backtrack))
	for i, cov := range l.Backtrack {
		backtrackOffsets[i] = uint16(total)
		total += cov.EncodeLen()
	}
	inputOffsets := make([]uint16, len(l.Input))
	for i, cov := range l.Input {
		inputOffsets[i] = uint16(total)
		total += cov.EncodeLen()
	}
	lookaheadOffsets := make([]uint16, len(l.Lookahead))
	for i, cov := range l.Lookahead {
		lookaheadOffsets[i] = uint16(total)
		total += cov.EncodeLen()
	}

	buf := make([]byte, 0, total)
	buf = append(buf, 0, 3) // format
	buf = append(buf, byte(len(l.Backtrack)>>8), byte(len(l.Backtrack)))
	for _, offs := range backtrackOffsets {
		buf = append(buf, byte(offs>>8), byte(offs))
	}
	buf = append(buf, byte(len(l.Input)>>8), byte(len(l.Input)))
	for _, offs := range inputOffsets {
		buf = append(buf, byte(offs>>8), byte(offs))
	}
	buf = append(buf, byte(len(l.Lookahead)>>8), byte(len(l.Lookahead)))
	for _, offs := range lookaheadOffsets {
		buf = append(buf, byte(offs>>8), byte(offs))
	}
	buf = append(buf, byte(len(l.Actions)>>8), byte(len(l.Actions)))
	for _, a := range l.Actions {
		buf = append(buf,
			byte(a.SequenceIndex>>8), byte(a.SequenceIndex),
			byte(a.LookupListIndex>>8), byte(a.LookupListIndex),
		)
	}
	for _, cov := range l.Backtrack {
		buf = append(buf, cov.Encode()...)
	}
	for _, cov := range l.Input {
		buf = append(buf, cov.Encode()...)
	}
	for _, cov := range l.Lookahead {
		buf = append(buf, cov.Encode()...)
	}
	return buf
}
