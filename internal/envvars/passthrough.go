// SPDX-License-Identifier: MPL-2.0

package envvars

import (
	"slices"
	"strings"
)

var defaultPassEnv = []string{
	"CURL_CA_BUNDLE",
	"FORCE_COLOR",
	"HOME",
	"HTTP_PROXY",
	"HTTPS_PROXY",
	"LANG",
	"LANGUAGE",
	"LD_LIBRARY_PATH",
	"NO_COLOR",
	"NO_PROXY",
	"PATH",
	"PIP_*",
	"REQUESTS_CA_BUNDLE",
	"SSL_CERT_FILE",
	"TERM",
	"TMPDIR",
	"VIRTUALENV_*",
	// Windows
	"COMSPEC",
	"PATHEXT",
	"SYSTEMDRIVE",
	"SYSTEMROOT",
	"TEMP",
	"TMP",
	"USERPROFILE",
}

// DefaultPassEnv returns the variables every environment receives from the
// caller regardless of its own pass_env.
func DefaultPassEnv() []string {
	return slices.Clone(defaultPassEnv)
}

// SplitNames splits pass_env entries that list several names on one line,
// separated by commas or whitespace.
func SplitNames(entries []string) []string {
	var out []string
	for _, e := range entries {
		out = append(out, strings.FieldsFunc(e, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t'
		})...)
	}
	return out
}

// MergePassEnv concatenates the global list and the environment's own list,
// keeping the first occurrence of every name.
func MergePassEnv(global, own []string) []string {
	names := SplitNames(append(append([]string{}, global...), own...))
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
