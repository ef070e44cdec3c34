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
	"github.com/googlefonts/ift-go/font/parser"
)

// Feature describes one entry of a FeatureList table.
type Feature struct {
	Tag     string
	Lookups []LookupIndex
}

// FeatureListInfo contains the information of a FeatureList table. An
// entry's slice index is its FeatureIndex, as referenced from the Required
// and Optional fields of a Features value.
type FeatureListInfo []*Feature

// FeatureIndex enumerates features.
// It is used as an index into a FeatureListInfo.
type FeatureIndex uint16

// https://docs.microsoft.com/en-us/typography/opentype/spec/chapter2#feature-list-table
func readFeatureList(p *parser.Parser, pos int64) (FeatureListInfo, error) {
	err := p.SeekPos(pos)
	if err != nil {
		return nil, err
	}

	featureCount, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}

	type featureRecord struct {
		tag    string
		offset uint16
	}
	records := make([]featureRecord, featureCount)
	for i := range records {
		buf, err := p.ReadBytes(6)
		if err != nil {
			return nil, err
		}
		records[i] = featureRecord{
			tag:    string(buf[:4]),
			offset: uint16(buf[4])<<8 | uint16(buf[5]),
		}
	}

	res := make(FeatureListInfo, featureCount)
	for i, rec := range records {
		err := p.SeekPos(pos + int64(rec.offset))
		if err != nil {
			return nil, err
		}
		// featureParamsOffset, lookupIndexCount
		hdr, err := p.ReadBytes(4)
		if err != nil {
			return nil, err
		}
		lookupIndexCount := uint16(hdr[2])<<8 | uint16(hdr[3])

		lookups := make([]LookupIndex, lookupIndexCount)
		for j := range lookups {
			idx, err := p.ReadUint16()
			if err != nil {
				return nil, err
			}
			lookups[j] = LookupIndex(idx)
		}

		res[i] = &Feature{
			Tag:     rec.tag,
			Lookups: lookups,
		}
	}

	return res, nil
}

// encode writes the FeatureList table. Feature parameter blocks (used by a
// handful of features such as "size") are not preserved.
func (info FeatureListInfo) encode() []byte {
	if info == nil {
		return nil
	}

	headerSize := 2 + 6*len(info)
	total := headerSize
	for _, f := range info {
		total += 4 + 2*len(f.Lookups)
	}

	buf := make([]byte, total)
	buf[0] = byte(len(info) >> 8)
	buf[1] = byte(len(info))

	pos := headerSize
	for i, f := range info {
		p := 2 + i*6
		var tag [4]byte
		copy(tag[:], f.Tag)
		copy(buf[p:p+4], tag[:])
		buf[p+4] = byte(pos >> 8)
		buf[p+5] = byte(pos)

		buf[pos+2] = byte(len(f.Lookups) >> 8)
		buf[pos+3] = byte(len(f.Lookups))
		for j, idx := range f.Lookups {
			buf[pos+4+2*j] = byte(idx >> 8)
			buf[pos+4+2*j+1] = byte(idx)
		}
		pos += 4 + 2*len(f.Lookups)
	}

	return buf
}
