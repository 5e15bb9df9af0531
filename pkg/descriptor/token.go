// SPDX-License-Identifier: MPL-2.0

package descriptor

import (
	"regexp"
	"strings"
)

// referencePattern matches {[section]key}. Section names may contain colons
// (testenv:docs) but never brackets; keys never contain braces or spaces.
var referencePattern = regexp.MustCompile(`\{\[([^\[\]{}]+)\]([^\[\]{}\s]+)\}`)

type (
	// Reference points at the field Key of section Section.
	Reference struct {
		Section string
		Key     string
	}

	// Part is one token of a line: literal text, or a reference when Ref is set.
	Part struct {
		Text string
		Ref  *Reference
	}

	// Line is an ordered sequence of parts.
	Line []Part

	// Value is a field value: an ordered list of lines.
	Value []Line
)

// String renders the reference in descriptor syntax.
func (r Reference) String() string {
	return "{[" + r.Section + "]" + r.Key + "}"
}

// Literal returns a line made of a single literal part.
func Literal(text string) Line {
	return Line{{Text: text}}
}

// Ref returns a line made of a single reference part.
func Ref(section, key string) Line {
	return Line{{Ref: &Reference{Section: section, Key: CanonicalKey(key)}}}
}

// ParseLine tokenises one line into literal and reference parts.
func ParseLine(s string) Line {
	matches := referencePattern.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return Literal(s)
	}

	line := make(Line, 0, 2*len(matches)+1)
	last := 0
	for _, m := range matches {
		if m[0] > last {
			line = append(line, Part{Text: s[last:m[0]]})
		}
		line = append(line, Part{Ref: &Reference{
			Section: s[m[2]:m[3]],
			Key:     CanonicalKey(s[m[4]:m[5]]),
		}})
		last = m[1]
	}
	if last < len(s) {
		line = append(line, Part{Text: s[last:]})
	}
	return line
}

// ParseValue splits a raw multi-line field into tokenised lines. Blank lines
// and comment lines (starting with # or ;) are dropped; surrounding
// whitespace is trimmed from every line.
func ParseValue(raw string) Value {
	var v Value
	for _, l := range strings.Split(raw, "\n") {
		l = strings.TrimSpace(strings.TrimSuffix(l, "\r"))
		if l == "" || strings.HasPrefix(l, "#") || strings.HasPrefix(l, ";") {
			continue
		}
		v = append(v, ParseLine(l))
	}
	return v
}

// LiteralValue builds a value of literal lines.
func LiteralValue(lines ...string) Value {
	v := make(Value, 0, len(lines))
	for _, l := range lines {
		v = append(v, Literal(l))
	}
	return v
}

// SoleReference reports whether the line is exactly one reference.
func (l Line) SoleReference() (Reference, bool) {
	if len(l) == 1 && l[0].Ref != nil {
		return *l[0].Ref, true
	}
	return Reference{}, false
}

// HasReferences reports whether any part of the line is a reference.
func (l Line) HasReferences() bool {
	for _, p := range l {
		if p.Ref != nil {
			return true
		}
	}
	return false
}

// String renders the line back in descriptor syntax.
func (l Line) String() string {
	var sb strings.Builder
	for _, p := range l {
		if p.Ref != nil {
			sb.WriteString(p.Ref.String())
			continue
		}
		sb.WriteString(p.Text)
	}
	return sb.String()
}

// Strings renders every line in descriptor syntax.
func (v Value) Strings() []string {
	out := make([]string, len(v))
	for i, l := range v {
		out[i] = l.String()
	}
	return out
}

// References lists every reference in the value in order of appearance.
func (v Value) References() []Reference {
	var refs []Reference
	for _, l := range v {
		for _, p := range l {
			if p.Ref != nil {
				refs = append(refs, *p.Ref)
			}
		}
	}
	return refs
}
