// SPDX-License-Identifier: MPL-2.0

package descriptor

import (
	"slices"
	"testing"
)

func TestParseLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     string
		wantParts int
		wantRefs  []Reference
	}{
		{name: "plain literal", input: "pytest>=7", wantParts: 1},
		{name: "sole reference", input: "{[testenv]deps}", wantParts: 1, wantRefs: []Reference{{Section: "testenv", Key: "deps"}}},
		{name: "section with colon", input: "{[testenv:docs]commands}", wantParts: 1, wantRefs: []Reference{{Section: "testenv:docs", Key: "commands"}}},
		{name: "alias key normalised", input: "{[global_var]passenv}", wantParts: 1, wantRefs: []Reference{{Section: "global_var", Key: KeyPassEnv}}},
		{name: "embedded reference", input: "pytest {[base]opts} -x", wantParts: 3, wantRefs: []Reference{{Section: "base", Key: "opts"}}},
		{name: "env token is literal", input: "{env:HOME:/tmp}", wantParts: 1},
		{name: "posargs is literal", input: "pytest {posargs:tests}", wantParts: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			line := ParseLine(tt.input)
			if len(line) != tt.wantParts {
				t.Fatalf("ParseLine(%q) has %d parts, want %d", tt.input, len(line), tt.wantParts)
			}
			refs := Value{line}.References()
			if !slices.Equal(refs, tt.wantRefs) {
				t.Errorf("ParseLine(%q) references = %v, want %v", tt.input, refs, tt.wantRefs)
			}
		})
	}
}

func TestLine_SoleReference(t *testing.T) {
	t.Parallel()

	if _, ok := ParseLine("{[a]deps}").SoleReference(); !ok {
		t.Error("expected sole reference")
	}
	if _, ok := ParseLine("x {[a]deps}").SoleReference(); ok {
		t.Error("embedded reference must not count as sole reference")
	}
	if _, ok := ParseLine("x==1").SoleReference(); ok {
		t.Error("literal must not count as sole reference")
	}
}

func TestParseValue_DropsBlankAndCommentLines(t *testing.T) {
	t.Parallel()

	raw := "\n    x==1\n    # pinned for CI\n\n    ; also a comment\n    {[a]deps}\n"
	got := ParseValue(raw).Strings()
	want := []string{"x==1", "{[a]deps}"}
	if !slices.Equal(got, want) {
		t.Errorf("ParseValue() = %v, want %v", got, want)
	}
}

func TestLine_StringRoundTrip(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"a {[b]c} d", "{[x]y}{[z]w}", "plain"} {
		if got := ParseLine(s).String(); got != s {
			t.Errorf("ParseLine(%q).String() = %q", s, got)
		}
	}
}

func TestExpandFactors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  []string
	}{
		{input: "lint", want: []string{"lint"}},
		{input: "py{39,310}", want: []string{"py39", "py310"}},
		{input: "py{39,310}-{min,latest}", want: []string{"py39-min", "py39-latest", "py310-min", "py310-latest"}},
		{input: "broken{", want: []string{"broken{"}},
	}

	for _, tt := range tests {
		if got := ExpandFactors(tt.input); !slices.Equal(got, tt.want) {
			t.Errorf("ExpandFactors(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestCanonicalKey(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"basepython":          KeyBasePython,
		"passenv":             KeyPassEnv,
		"setenv":              KeySetEnv,
		"whitelist_externals": KeyAllowlistExternals,
		"envlist":             KeyEnvList,
		"deps":                KeyDeps,
		" commands ":          KeyCommands,
	}
	for in, want := range tests {
		if got := CanonicalKey(in); got != want {
			t.Errorf("CanonicalKey(%q) = %q, want %q", in, got, want)
		}
	}
}
