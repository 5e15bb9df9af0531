// SPDX-License-Identifier: MPL-2.0

package envvars

import (
	"slices"
	"strings"
)

const envFilePrefix = "file|"

// Assignments is an insertion-ordered KEY=VALUE mapping. Reassigning a key
// replaces its value and keeps its original position.
type Assignments struct {
	keys   []string
	values map[string]string
}

// NewAssignments creates an empty mapping.
func NewAssignments() *Assignments {
	return &Assignments{values: make(map[string]string)}
}

// Set assigns value to key.
func (a *Assignments) Set(key, value string) {
	if _, ok := a.values[key]; !ok {
		a.keys = append(a.keys, key)
	}
	a.values[key] = value
}

// Get returns the value of key.
func (a *Assignments) Get(key string) (string, bool) {
	v, ok := a.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (a *Assignments) Keys() []string { return slices.Clone(a.keys) }

// Len returns the number of keys.
func (a *Assignments) Len() int { return len(a.keys) }

// Pairs renders the mapping as KEY=VALUE strings in insertion order.
func (a *Assignments) Pairs() []string {
	out := make([]string, 0, len(a.keys))
	for _, k := range a.keys {
		out = append(out, k+"="+a.values[k])
	}
	return out
}

// Clone returns an independent copy.
func (a *Assignments) Clone() *Assignments {
	c := NewAssignments()
	for _, k := range a.keys {
		c.Set(k, a.values[k])
	}
	return c
}

// ParseSetEnv interprets resolved set_env lines. Each line is KEY=VALUE or
// file|PATH naming a dotenv file relative to baseDir. Values have their
// {env:...} tokens expanded with lookup.
func ParseSetEnv(lines []string, baseDir string, lookup Lookup) (*Assignments, error) {
	set := NewAssignments()
	for _, line := range lines {
		if path, ok := strings.CutPrefix(line, envFilePrefix); ok {
			path = strings.TrimSpace(Expand(path, lookup))
			if path == "" {
				return nil, &AssignmentError{Line: line, Reason: "empty file path"}
			}
			if err := LoadEnvFile(set, path, baseDir); err != nil {
				return nil, err
			}
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			return nil, &AssignmentError{Line: line, Reason: "missing '='"}
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, &AssignmentError{Line: line, Reason: "empty variable name"}
		}
		set.Set(key, Expand(strings.TrimSpace(value), lookup))
	}
	return set, nil
}
