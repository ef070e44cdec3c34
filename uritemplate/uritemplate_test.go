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

package uritemplate

import (
	"errors"
	"testing"
)

func TestExpandValid(t *testing.T) {
	cases := []struct {
		template, id, id64, want string
	}{
		{"foo/bar$", "abc", "def", "foo/bar$"},
		{"%af%AF%09", "abc", "def", "%af%AF%09"},
		{"foo/b%a8", "abc", "def", "foo/b%a8"},
		{"foo/b%bFar", "abc", "def", "foo/b%bFar"},
		{"foo/b\xc3\xa0r", "abc", "def", "foo/b%C3%A0r"},
		{"{id}{id64}", "abc", "def", "abcdef"},
		{"//foo.bar/{id}", "abc", "def", "//foo.bar/abc"},
		{"//foo.bar/{id}/baz", "abc", "def", "//foo.bar/abc/baz"},
		{"//foo.bar/{id64}", "abc", "def", "//foo.bar/def"},
		{"//foo.bar/{id64}/baz", "abc", "def", "//foo.bar/def/baz"},
		{"//foo.bar/{d1}/{d2}/{d3}/{id}", "FC", "def", "//foo.bar/C/F/_/FC"},
		{"//foo.bar/{d1}/{d2}/{d3}/{d4}/{id}", "ABCD", "def", "//foo.bar/D/C/B/A/ABCD"},

		// Undefined variable names expand to empty but are not errors.
		{"//foo.bar/{idd}/baz", "abc", "def", "//foo.bar//baz"},
		{"//foo.bar/{idid}/baz", "abc", "def", "//foo.bar//baz"},
		{"//foo.bar/{id_id}/baz", "abc", "def", "//foo.bar//baz"},
		{"//foo.bar/{_id}/baz", "abc", "def", "//foo.bar//baz"},
		{"//foo.bar/{7id}/baz", "abc", "def", "//foo.bar//baz"},
		{"//foo.bar/{Id}/baz", "abc", "def", "//foo.bar//baz"},
		{"//foo.bar/{d5}/baz", "abc", "def", "//foo.bar//baz"},
		{"//foo.bar/{id74}/{id}", "abc", "def", "//foo.bar//abc"},
		{"//foo.bar/{foo_bar}", "abc", "def", "//foo.bar/"},
		{"//foo.bar/{foo%ab}", "abc", "def", "//foo.bar/"},
		{"//foo.bar/{%ab}", "abc", "def", "//foo.bar/"},
		{"//foo.bar/{foo.a.b}", "abc", "def", "//foo.bar/"},
	}

	for _, c := range cases {
		got, err := Expand(c.template, c.id, c.id64)
		if err != nil {
			t.Errorf("Expand(%q): unexpected error %v", c.template, err)
			continue
		}
		if got != c.want {
			t.Errorf("Expand(%q) = %q, want %q", c.template, got, c.want)
		}
	}
}

func TestExpandInvalid(t *testing.T) {
	templates := []string{
		"{id64", // unterminated expression

		// unsupported RFC 6570 operators
		"{+id}", "{.id}", "{/id}", "{/}",

		// malformed variable names
		"{}", "{}}", "{id}}", "{i+d}", "{i/d}",
		"{.}", "{a.}", "{id.}", "{i..d}", "{id:1}", "{id,id64}",

		// malformed percent encodings inside a variable name
		"{%}", "{%A}", "{%AG}", "{id%GA}",

		// malformed literal percent encodings
		"foo/b%a/", "foo/b%a", "foo/b%a{id}",

		// unexpected close brace
		"foo/b}ar",

		// invalid literal characters
		"foo/\"bar\"", "foo bar", "foo\x00", "foo\x1F",
	}

	for _, tmpl := range templates {
		_, err := Expand(tmpl, "abc", "def")
		if !errors.Is(err, ErrInvalidTemplate) {
			t.Errorf("Expand(%q): got err = %v, want ErrInvalidTemplate", tmpl, err)
		}
	}
}

func FuzzExpand(f *testing.F) {
	f.Add("//foo.bar/{id}/{d1}/{d2}", "abc", "ZGVm")
	f.Add("{id64}", "", "")
	f.Add("foo%20bar", "x", "y")

	f.Fuzz(func(t *testing.T, template, id, id64 string) {
		// Must never panic. The brace depth counted below is not
		// asserted: id and id64 are substituted verbatim and may
		// themselves contain "{" or "}".
		out, err := Expand(template, id, id64)
		if err != nil {
			return
		}
		depth := 0
		for _, b := range []byte(out) {
			if b == '{' {
				depth++
			}
			if b == '}' && depth > 0 {
				depth--
			}
		}
	})
}
