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

// Package glyph defines the glyph ID type shared by the layout, color,
// and glyph-keyed patch packages.
package glyph

// ID enumerates the glyphs in a font. The first glyph has index 0 and
// is used to indicate a missing character (usually rendered as an
// empty box). Unlike the 16-bit glyph index used by legacy OpenType
// shaping code, ID is 32 bits wide: glyph-keyed patches and IFT
// closures must be able to represent GIDs up to 0xFFFFFF (the widest
// encoding used by the patch format) without truncation.
type ID uint32

// Pair represents two consecutive glyphs.
type Pair struct {
	Left  ID
	Right ID
}
