// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"strings"
	"testing"
)

const testSchema = `
#Doc: {
	name:  string & !=""
	count: int & >=0 | *1
	tags?: [...string]
}
`

type testDoc struct {
	Name  string   `json:"name"`
	Count int      `json:"count"`
	Tags  []string `json:"tags"`
}

func TestParseAndDecode(t *testing.T) {
	t.Parallel()

	res, err := ParseAndDecode[testDoc]([]byte(testSchema), []byte(`name: "x", tags: ["a"]`), "#Doc",
		WithFilename("doc.cue"))
	if err != nil {
		t.Fatalf("ParseAndDecode() error: %v", err)
	}
	if res.Value.Name != "x" || res.Value.Count != 1 || len(res.Value.Tags) != 1 {
		t.Errorf("decoded %+v", *res.Value)
	}
}

func TestParseAndDecode_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
		opts []Option
		want string
	}{
		{"syntax", `name: `, nil, "doc.cue"},
		{"schema violation", `name: "x", count: -1`, nil, "count"},
		{"closed definition", `name: "x", extra: true`, nil, "extra"},
		{"too large", `name: "x"`, []Option{WithMaxFileSize(2)}, "exceeds maximum"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			opts := append([]Option{WithFilename("doc.cue")}, tt.opts...)
			_, err := ParseAndDecode[testDoc]([]byte(testSchema), []byte(tt.data), "#Doc", opts...)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should contain %q", err, tt.want)
			}
		})
	}
}

func TestParseAndDecode_NonConcrete(t *testing.T) {
	t.Parallel()

	if _, err := ParseAndDecode[testDoc]([]byte(testSchema), []byte(`count: 2`), "#Doc"); err == nil {
		t.Error("missing name should fail concrete validation")
	}
}
