// Copyright 2026 Dominik Schlosser
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package mdoc

import "strings"

// Markup emitted by Flatten. Renderers inject flattened values as
// pre-formatted markup, so both are escape sequences rather than raw
// whitespace.
const (
	LineBreak  = "<br/>"
	IndentUnit = "&nbsp;&nbsp;"
)

// Truncated replaces content nested deeper than maxNestedLevels.
const Truncated = "…"

type shape int

const (
	shapeScalar shape = iota
	shapeList
	shapeWrappedScalar
	shapeRecord
)

// shapeOf classifies v for display. A mapping with a text "value" entry is a
// wrapped scalar, whatever its other entries are; the text is returned.
func shapeOf(v Value) (shape, string) {
	switch v.Kind() {
	case KindSequence:
		return shapeList, ""
	case KindMapping:
		if inner, ok := v.Get("value"); ok {
			if s, ok := inner.AsText(); ok {
				return shapeWrappedScalar, s
			}
		}
		return shapeRecord, ""
	default:
		return shapeScalar, ""
	}
}

// Flatten renders an element value as a single display string.
//
// Scalars render as their text (Null as ""), sequences as their elements'
// JSON joined with ", ", and mappings as "key: value" lines joined by
// LineBreak, each indented by IndentUnit per nesting level.
func Flatten(v Value) string {
	return flatten(v, 0)
}

func flatten(v Value, depth int) string {
	if depth > maxNestedLevels {
		return Truncated
	}

	kind, wrapped := shapeOf(v)
	switch kind {
	case shapeScalar:
		return v.String()

	case shapeWrappedScalar:
		return wrapped

	case shapeList:
		parts := make([]string, 0, len(v.Items()))
		for _, item := range v.Items() {
			b, err := item.MarshalJSON()
			if err != nil {
				parts = append(parts, "")
				continue
			}
			parts = append(parts, string(b))
		}
		return strings.Join(parts, ", ")
	}

	prefix := strings.Repeat(IndentUnit, depth+1)
	lines := make([]string, 0, len(v.Entries()))
	for _, e := range v.Entries() {
		lines = append(lines, prefix+e.Key.String()+": "+flatten(e.Value, depth+1))
	}

	out := strings.Join(lines, LineBreak)
	if depth > 0 {
		// A nested record starts on its own line below its key.
		out = LineBreak + out
	}
	return out
}
