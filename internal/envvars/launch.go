// SPDX-License-Identifier: MPL-2.0

package envvars

import (
	"path"
	"slices"
	"strings"
)

// LaunchEnv builds the environment a command runs with: caller variables
// matched by passEnv (glob patterns allowed), then set_env on top. Variables
// the caller does not define are omitted. The result is sorted by name.
func LaunchEnv(passEnv []string, set *Assignments, environ []string) []string {
	caller := environMap(environ)
	patterns := SplitNames(passEnv)

	out := make(map[string]string)
	for name, value := range caller {
		if matchesAny(name, patterns) {
			out[name] = value
		}
	}
	if set != nil {
		for _, k := range set.keys {
			out[k] = set.values[k]
		}
	}

	keys := make([]string, 0, len(out))
	for k := range out {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	env := make([]string, 0, len(keys))
	for _, k := range keys {
		env = append(env, k+"="+out[k])
	}
	return env
}

// Passed reports the caller variables passEnv forwards, in pattern order.
func Passed(passEnv []string, environ []string) []string {
	caller := environMap(environ)
	var names []string
	for _, p := range SplitNames(passEnv) {
		if !hasGlob(p) {
			if _, ok := caller[p]; ok && !slices.Contains(names, p) {
				names = append(names, p)
			}
			continue
		}
		var matched []string
		for name := range caller {
			if ok, _ := path.Match(p, name); ok && !slices.Contains(names, name) {
				matched = append(matched, name)
			}
		}
		slices.Sort(matched)
		names = append(names, matched...)
	}
	return names
}

func matchesAny(name string, patterns []string) bool {
	for _, p := range patterns {
		if p == name {
			return true
		}
		if hasGlob(p) {
			if ok, _ := path.Match(p, name); ok {
				return true
			}
		}
	}
	return false
}

func hasGlob(p string) bool {
	return strings.ContainsAny(p, "*?[")
}
