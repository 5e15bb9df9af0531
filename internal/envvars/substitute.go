// SPDX-License-Identifier: MPL-2.0

package envvars

import (
	"os"
	"strings"
)

const envTokenPrefix = "{env:"

// Lookup reports the caller's value for a variable.
type Lookup func(name string) (string, bool)

// OSLookup reads the process environment.
func OSLookup() Lookup { return os.LookupEnv }

// MapLookup serves variables from a map.
func MapLookup(m map[string]string) Lookup {
	return func(name string) (string, bool) {
		v, ok := m[name]
		return v, ok
	}
}

// EnvironLookup serves variables from KEY=VALUE pairs. Later pairs win.
func EnvironLookup(environ []string) Lookup {
	return MapLookup(environMap(environ))
}

// Expand replaces every {env:NAME} and {env:NAME:default} token in s. The
// caller's value wins when set; otherwise the default is used, itself
// expanded, and a missing default yields the empty string. Unterminated
// tokens are left as written.
func Expand(s string, lookup Lookup) string {
	if !strings.Contains(s, envTokenPrefix) {
		return s
	}
	var b strings.Builder
	for {
		start := strings.Index(s, envTokenPrefix)
		if start < 0 {
			b.WriteString(s)
			return b.String()
		}
		end := matchingBrace(s, start)
		if end < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:start])
		b.WriteString(expandToken(s[start+len(envTokenPrefix):end], lookup))
		s = s[end+1:]
	}
}

// ExpandAll applies Expand to every entry.
func ExpandAll(values []string, lookup Lookup) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = Expand(v, lookup)
	}
	return out
}

func expandToken(body string, lookup Lookup) string {
	name, def, hasDefault := strings.Cut(body, ":")
	if v, ok := lookup(name); ok {
		return v
	}
	if !hasDefault {
		return ""
	}
	return Expand(def, lookup)
}

// matchingBrace returns the index of the brace closing the one at open.
func matchingBrace(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func environMap(environ []string) map[string]string {
	m := make(map[string]string, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		m[k] = v
	}
	return m
}
