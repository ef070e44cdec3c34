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
	"bytes"
	"reflect"
	"testing"

	"github.com/googlefonts/ift-go/font/parser"
)

func FuzzFeatureList(f *testing.F) {
	info := FeatureListInfo{}
	f.Add(info.encode())

	info = append(info, &Feature{Tag: "test"})
	f.Add(info.encode())

	info = append(info, &Feature{Tag: "kern", Lookups: []LookupIndex{0, 1, 2, 3}})
	f.Add(info.encode())

	f.Fuzz(func(t *testing.T, data []byte) {
		p := parser.New("test", bytes.NewReader(data))
		info1, err := readFeatureList(p, 0)
		if err != nil {
			return
		}

		data2 := info1.encode()

		p = parser.New("test", bytes.NewReader(data2))
		info2, err := readFeatureList(p, 0)
		if err != nil {
			t.Fatal(err)
		}

		if !reflect.DeepEqual(info1, info2) {
			t.Errorf("round trip mismatch: %#v != %#v", info1, info2)
		}
	})
}

func TestFeatureListRoundTrip(t *testing.T) {
	info := FeatureListInfo{
		{Tag: "kern", Lookups: []LookupIndex{0, 1}},
		{Tag: "liga", Lookups: []LookupIndex{2, 3, 4}},
	}
	data := info.encode()

	p := parser.New("test", bytes.NewReader(data))
	got, err := readFeatureList(p, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(info, got) {
		t.Errorf("round trip mismatch: %#v != %#v", info, got)
	}
}
