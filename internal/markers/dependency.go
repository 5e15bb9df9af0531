// SPDX-License-Identifier: MPL-2.0

package markers

import (
	"regexp"
	"strings"
)

var (
	namePattern      = regexp.MustCompile(`^([A-Za-z0-9][A-Za-z0-9._-]*)`)
	separatorPattern = regexp.MustCompile(`[-_.]+`)
)

// Dependency is one entry of a dependency list.
type Dependency struct {
	// Requirement is the entry without its marker (e.g. "numpy>=1.24").
	Requirement string
	// Name is the normalised package name, empty for installer options
	// (-r requirements.txt, -e .) and paths.
	Name string
	// Marker is the predicate text after ';', empty when unconditional.
	Marker string
}

// ParseDependency splits a dependency line into requirement, name and marker.
func ParseDependency(line string) Dependency {
	req, marker, _ := strings.Cut(line, ";")
	req = strings.TrimSpace(req)
	dep := Dependency{
		Requirement: req,
		Marker:      normaliseMarker(marker),
	}
	if strings.HasPrefix(req, "-") || strings.HasPrefix(req, ".") || strings.Contains(req, "/") && !strings.Contains(req, "@") {
		return dep
	}
	if m := namePattern.FindStringSubmatch(req); m != nil {
		dep.Name = NormaliseName(m[1])
	}
	return dep
}

// ParseDependencies parses every line.
func ParseDependencies(lines []string) []Dependency {
	deps := make([]Dependency, 0, len(lines))
	for _, l := range lines {
		deps = append(deps, ParseDependency(l))
	}
	return deps
}

// NormaliseName lower-cases a package name and collapses runs of - _ . into
// a single dash.
func NormaliseName(name string) string {
	return separatorPattern.ReplaceAllString(strings.ToLower(name), "-")
}

// Key identifies the package for de-duplication.
func (d Dependency) Key() string {
	if d.Name != "" {
		return d.Name
	}
	return d.Requirement
}

// String renders the entry as a dependency line.
func (d Dependency) String() string {
	if d.Marker == "" {
		return d.Requirement
	}
	return d.Requirement + "; " + d.Marker
}

// Dedupe keeps the first entry per package and marker. A later entry for the
// same package survives only when its marker differs.
func Dedupe(deps []Dependency) []Dependency {
	type key struct{ pkg, marker string }
	seen := make(map[key]bool, len(deps))
	out := make([]Dependency, 0, len(deps))
	for _, d := range deps {
		k := key{pkg: d.Key(), marker: d.Marker}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, d)
	}
	return out
}

func normaliseMarker(m string) string {
	m = strings.Join(strings.Fields(m), " ")
	return strings.ReplaceAll(m, `"`, `'`)
}
