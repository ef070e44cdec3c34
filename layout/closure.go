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

// Package layout computes the transitive closure of GSUB/GPOS features,
// lookups, and glyphs reachable from a requested set of scripts,
// languages, features, and an input glyph set.
package layout

import (
	"sort"

	"github.com/googlefonts/ift-go/font"
	"github.com/googlefonts/ift-go/font/sfnt/opentype/gtab"
	"github.com/googlefonts/ift-go/intset"
)

// Resource caps enforced by FeatureClosure and LookupClosure. A cap is a
// DoS guard against adversarial tables: when exceeded, the walk silently
// truncates rather than erroring, and the result is a conservative
// (possibly partial) closure.
const (
	MaxScripts          = 500
	MaxLangSys          = 2000
	MaxFeatureIndices   = 1500
	MaxLookupVisitCount = 35000
	MaxNestingLevel     = 64
)

// TagFilter selects which script, language, or feature tags a closure walk
// considers. The nil *TagFilter matches every tag ("all").
type TagFilter struct {
	tags map[font.Tag]bool
}

// AllTags returns a filter matching every tag.
func AllTags() *TagFilter { return nil }

// NewTagFilter returns a filter matching exactly the given tags.
func NewTagFilter(tags ...font.Tag) *TagFilter {
	m := make(map[font.Tag]bool, len(tags))
	for _, t := range tags {
		m[t] = true
	}
	return &TagFilter{tags: m}
}

func (f *TagFilter) matches(t font.Tag) bool {
	if f == nil {
		return true
	}
	return f.tags[t]
}

// FeatureClosure resolves the feature indices reachable from the given
// script, language, and feature tag filters by walking the ScriptList and
// LangSys tables of a GSUB or GPOS layout table. The required feature of a
// LangSys (sentinel 0xFFFF meaning none) is treated like any other entry
// in its feature index list.
func FeatureClosure(info *gtab.Info, scripts, languages, features *TagFilter) map[gtab.FeatureIndex]bool {
	filter := map[gtab.FeatureIndex]bool{}
	for i, feat := range info.FeatureList {
		if feat == nil {
			continue
		}
		if len(filter) >= MaxFeatureIndices {
			break
		}
		if features.matches(font.MakeTag(feat.Tag)) {
			filter[gtab.FeatureIndex(i)] = true
		}
	}

	type entry struct {
		script, lang font.Tag
	}
	var entries []entry
	for sl := range info.ScriptList {
		entries = append(entries, entry{script: sl.Script, lang: sl.Lang})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].script != entries[j].script {
			return entries[i].script.Less(entries[j].script)
		}
		return entries[i].lang.Less(entries[j].lang)
	})

	result := map[gtab.FeatureIndex]bool{}
	visitedScripts := map[font.Tag]bool{}
	visitedLangSys := map[gtab.ScriptLang]bool{}
	for _, e := range entries {
		if len(filter) == 0 {
			break
		}
		if !scripts.matches(e.script) {
			continue
		}
		if !visitedScripts[e.script] {
			if len(visitedScripts) >= MaxScripts {
				continue
			}
			visitedScripts[e.script] = true
		}

		isDefault := e.lang == (font.Tag{})
		if !isDefault && !languages.matches(e.lang) {
			continue
		}

		sl := gtab.ScriptLang{Script: e.script, Lang: e.lang}
		if visitedLangSys[sl] {
			continue
		}
		if len(visitedLangSys) >= MaxLangSys {
			continue
		}
		visitedLangSys[sl] = true

		ff := info.ScriptList[sl]
		if ff == nil {
			continue
		}
		if ff.Required != 0xFFFF && filter[ff.Required] {
			result[ff.Required] = true
			delete(filter, ff.Required)
		}
		for _, idx := range ff.Optional {
			if filter[idx] {
				result[idx] = true
				delete(filter, idx)
			}
		}
	}

	return result
}

// LookupClosureState carries the visited/inactive bookkeeping across one or
// more LookupClosure calls, so a caller running GSUB and GPOS closures (or
// several feature subsets) against the same glyph set does not re-walk
// lookups it has already resolved.
type LookupClosureState struct {
	// Visited holds every lookup index that closeLookup has processed.
	Visited map[gtab.LookupIndex]bool
	// Inactive holds lookups proved not to intersect the glyph set at the
	// point they were visited; useful to callers pruning unused lookups.
	Inactive map[gtab.LookupIndex]bool

	visits int
}

// NewLookupClosureState returns an empty closure state.
func NewLookupClosureState() *LookupClosureState {
	return &LookupClosureState{
		Visited:  map[gtab.LookupIndex]bool{},
		Inactive: map[gtab.LookupIndex]bool{},
	}
}

// LookupClosure walks every lookup referenced by featureIndices, directly
// or via nested sequence-lookup records, intersecting each lookup's
// subtables against glyphs. Lookups that intersect widen glyphs in place
// (GSUB lookups add produced glyphs; GPOS lookups never add glyphs, only
// gate on intersection) and recurse into their nested lookups. The walk is
// bounded by MaxNestingLevel and MaxLookupVisitCount; state may be nil, in
// which case a fresh one is used for this call only.
func LookupClosure(info *gtab.Info, featureIndices map[gtab.FeatureIndex]bool, glyphs *intset.Set, state *LookupClosureState) {
	if state == nil {
		state = NewLookupClosureState()
	}

	var indices []gtab.LookupIndex
	seen := map[gtab.LookupIndex]bool{}
	for idx := range featureIndices {
		if int(idx) >= len(info.FeatureList) {
			continue
		}
		feat := info.FeatureList[idx]
		if feat == nil {
			continue
		}
		for _, li := range feat.Lookups {
			if !seen[li] {
				seen[li] = true
				indices = append(indices, li)
			}
		}
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })

	for _, li := range indices {
		closeLookup(info, li, glyphs, state, 0)
	}
}

func closeLookup(info *gtab.Info, li gtab.LookupIndex, glyphs *intset.Set, state *LookupClosureState, depth int) {
	if depth >= MaxNestingLevel {
		return
	}
	if state.Visited[li] {
		return
	}
	if state.visits >= MaxLookupVisitCount {
		return
	}
	if int(li) >= len(info.LookupList) {
		return
	}
	state.Visited[li] = true
	state.visits++

	lt := info.LookupList[li]
	if lt == nil {
		return
	}
	if !lt.Intersects(glyphs) {
		state.Inactive[li] = true
		return
	}
	lt.ClosureGlyphs(glyphs)

	for _, nested := range lt.NestedLookups() {
		closeLookup(info, nested, glyphs, state, depth+1)
	}
}

// Closure resolves the feature indices selected by the given tag filters
// and widens glyphs with their lookup closure, in one call. It returns the
// selected feature indices, which a caller may reuse for a second Closure
// call against a different layout table (GPOS after GSUB) sharing state.
func Closure(info *gtab.Info, scripts, languages, features *TagFilter, glyphs *intset.Set, state *LookupClosureState) map[gtab.FeatureIndex]bool {
	featureIndices := FeatureClosure(info, scripts, languages, features)
	LookupClosure(info, featureIndices, glyphs, state)
	return featureIndices
}
