// seehuhn.de/go/pdf - a library for reading and writing PDF files
// Copyright (C) 2021  Jochen Voss <voss@seehuhn.de>
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

package table

// ScalerTypeTrueType is the sfnt version tag at the start of the table
// directory of a font with TrueType ("glyf") outlines.
const ScalerTypeTrueType = 0x00010000

// Checksum computes the checksum of a single sfnt table, as defined by
// the OpenType spec. It is exported for use by table-directory builders
// outside this package.
func Checksum(data []byte) uint32 {
	return checksum(data)
}

// checksum computes the checksum of a single sfnt table, as defined by the
// OpenType spec: the table is treated as a sequence of big-endian uint32
// words, padded with zero bytes to a multiple of 4.
func checksum(data []byte) uint32 {
	var sum uint32
	for i := 0; i < len(data); i += 4 {
		var word uint32
		for j := 0; j < 4; j++ {
			word <<= 8
			if i+j < len(data) {
				word |= uint32(data[i+j])
			}
		}
		sum += word
	}
	return sum
}
