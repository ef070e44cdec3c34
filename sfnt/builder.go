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

package sfnt

import (
	"bytes"
	"encoding/binary"
	"math/bits"
	"sort"

	"github.com/googlefonts/ift-go/font"
	"github.com/googlefonts/ift-go/font/sfnt/head"
)

// Builder accumulates a replacement table set and assembles it into a
// new sfnt binary, the `font_builder.add_raw` collaborator patch
// application writes into.
type Builder struct {
	scalerType uint32
	tables     map[string][]byte
}

// NewBuilder starts a Builder that will produce a font with the given
// scaler type (table.ScalerTypeTrueType for "glyf"-outline fonts).
func NewBuilder(scalerType uint32) *Builder {
	return &Builder{scalerType: scalerType, tables: make(map[string][]byte)}
}

// AddRaw adds or replaces a table. Passing the same tag twice
// overwrites the earlier data.
func (b *Builder) AddRaw(tag string, data []byte) {
	b.tables[tag] = data
}

// Build assembles the table directory and every table's bytes into a
// complete font binary, recomputing the "head" checksum in place.
func (b *Builder) Build() ([]byte, error) {
	numTables := len(b.tables)

	tableNames := make([]string, 0, numTables)
	for name := range b.tables {
		tableNames = append(tableNames, name)
	}
	sort.Slice(tableNames, func(i, j int) bool {
		iPrio := ttTableOrder[tableNames[i]]
		jPrio := ttTableOrder[tableNames[j]]
		if iPrio != jPrio {
			return iPrio > jPrio
		}
		return tableNames[i] < tableNames[j]
	})

	entrySelector := bits.Len(uint(numTables)) - 1
	offsets := struct {
		ScalerType    uint32
		NumTables     uint16
		SearchRange   uint16
		EntrySelector uint16
		RangeShift    uint16
	}{
		ScalerType:    b.scalerType,
		NumTables:     uint16(numTables),
		SearchRange:   1 << (entrySelector + 4),
		EntrySelector: uint16(entrySelector),
		RangeShift:    uint16(16 * (numTables - 1<<entrySelector)),
	}

	if headData, ok := b.tables["head"]; ok {
		head.ClearChecksum(headData)
	}

	var totalSum uint32
	offset := uint32(12 + 16*numTables)
	records := make([]record, numTables)
	for i, name := range tableNames {
		body := b.tables[name]
		length := uint32(len(body))
		sum := checksum(body)

		records[i] = record{
			Tag:      font.MakeTag(name),
			CheckSum: sum,
			Offset:   offset,
			Length:   length,
		}

		totalSum += sum
		offset += 4 * ((length + 3) / 4)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Tag.Less(records[j].Tag)
	})

	buf := &bytes.Buffer{}
	if err := binary.Write(buf, binary.BigEndian, offsets); err != nil {
		return nil, err
	}
	if err := binary.Write(buf, binary.BigEndian, records); err != nil {
		return nil, err
	}
	headerBytes := buf.Bytes()
	totalSum += checksum(headerBytes)

	if headData, ok := b.tables["head"]; ok {
		head.PatchChecksum(headData, totalSum)
	}

	out := bytes.NewBuffer(make([]byte, 0, int(offset)))
	out.Write(headerBytes)
	var pad [3]byte
	for _, name := range tableNames {
		body := b.tables[name]
		out.Write(body)
		if k := len(body) % 4; k != 0 {
			out.Write(pad[:4-k])
		}
	}

	return out.Bytes(), nil
}
