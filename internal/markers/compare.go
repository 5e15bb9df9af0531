// SPDX-License-Identifier: MPL-2.0

package markers

import (
	"regexp"
	"strings"

	"golang.org/x/mod/semver"
)

var versionPattern = regexp.MustCompile(`^(\d+(?:\.\d+)*)(?:\.?((?:a|b|rc|dev)\d*))?$`)

// compare applies one marker comparison. Both sides are version-like:
// ordering is semantic. Otherwise strings are compared as-is.
func compare(left, op, right string) bool {
	switch op {
	case "in":
		return strings.Contains(right, left)
	case "not in":
		return !strings.Contains(right, left)
	case "===":
		return left == right
	}

	if (op == "==" || op == "!=") && strings.HasSuffix(right, ".*") {
		prefix := strings.TrimSuffix(right, ".*")
		match := left == prefix || strings.HasPrefix(left, prefix+".")
		return match == (op == "==")
	}

	lv, lok := canonicalVersion(left)
	rv, rok := canonicalVersion(right)
	if !lok || !rok {
		return compareOrdered(strings.Compare(left, right), op)
	}
	if op == "~=" {
		return compatibleRelease(left, lv, right, rv)
	}
	return compareOrdered(semver.Compare(lv, rv), op)
}

func compareOrdered(c int, op string) bool {
	switch op {
	case "==":
		return c == 0
	case "!=":
		return c != 0
	case "<":
		return c < 0
	case "<=":
		return c <= 0
	case ">":
		return c > 0
	case ">=":
		return c >= 0
	default:
		return false
	}
}

// compatibleRelease implements "~=": at least right, and the same release
// series as right without its last component.
func compatibleRelease(left, lv, right, rv string) bool {
	parts := strings.Split(releaseOf(right), ".")
	if len(parts) < 2 {
		return false
	}
	prefix := strings.Join(parts[:len(parts)-1], ".")
	rel := releaseOf(left)
	if rel != prefix && !strings.HasPrefix(rel, prefix+".") {
		return false
	}
	return semver.Compare(lv, rv) >= 0
}

func releaseOf(v string) string {
	m := versionPattern.FindStringSubmatch(strings.TrimSpace(v))
	if m == nil {
		return v
	}
	return m[1]
}

// canonicalVersion converts a python release string ("3.10", "3.13.0rc1")
// into a semver string ("v3.10", "v3.13.0-rc1").
func canonicalVersion(v string) (string, bool) {
	m := versionPattern.FindStringSubmatch(strings.TrimSpace(v))
	if m == nil {
		return "", false
	}
	parts := strings.Split(m[1], ".")
	if len(parts) > 3 {
		parts = parts[:3]
	}
	for i, p := range parts {
		parts[i] = strings.TrimLeft(p, "0")
		if parts[i] == "" {
			parts[i] = "0"
		}
	}
	out := "v" + strings.Join(parts, ".")
	if m[2] != "" {
		for len(parts) < 3 {
			parts = append(parts, "0")
		}
		out = "v" + strings.Join(parts, ".") + "-" + m[2]
	}
	if !semver.IsValid(out) {
		return "", false
	}
	return out, true
}
