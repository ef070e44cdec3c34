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

// Package font holds the few types shared by every table-reading
// package below it: the 4-byte OpenType Tag, an integer bounding
// rectangle, and the font-level error types.
package font

import "fmt"

// Rect is an integer bounding box, in font design units.
type Rect struct {
	LLx, LLy, URx, URy int16
}

// Tag is a 4-byte OpenType table or feature/script/language tag, for
// example "GSUB", "latn", or "kern".
type Tag [4]byte

// MakeTag constructs a Tag from a string, which must be exactly four
// bytes. Shorter strings are not padded; callers pass the literal
// 4-character tag.
func MakeTag(s string) Tag {
	var t Tag
	copy(t[:], s)
	return t
}

func (t Tag) String() string { return string(t[:]) }

// Less reports whether t sorts strictly before o in the byte-wise
// ascending order the patch format and table directory require.
func (t Tag) Less(o Tag) bool {
	for i := range t {
		if t[i] != o[i] {
			return t[i] < o[i]
		}
	}
	return false
}

// InvalidFontError reports that a font's binary data violates the
// format it claims to be (bounds, magic numbers, cross-references).
type InvalidFontError struct {
	SubSystem string
	Reason    string
}

func (e *InvalidFontError) Error() string {
	return fmt.Sprintf("%s: invalid font: %s", e.SubSystem, e.Reason)
}

// IsInvalid reports whether err is an *InvalidFontError.
func IsInvalid(err error) bool {
	_, ok := err.(*InvalidFontError)
	return ok
}

// NotSupportedError reports that a font uses a well-formed but
// currently unimplemented feature.
type NotSupportedError struct {
	SubSystem string
	Feature   string
}

func (e *NotSupportedError) Error() string {
	return fmt.Sprintf("%s: not supported: %s", e.SubSystem, e.Feature)
}

// IsUnsupported reports whether err is a *NotSupportedError.
func IsUnsupported(err error) bool {
	_, ok := err.(*NotSupportedError)
	return ok
}
