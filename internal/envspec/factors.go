// SPDX-License-Identifier: MPL-2.0

package envspec

import (
	"regexp"
	"strings"

	"github.com/envrun/envrun/pkg/descriptor"
)

// conditionPattern matches "py311,lint: value" style factor-conditional lines.
var conditionPattern = regexp.MustCompile(`^([\w{}.!,-]+):\s+(.+)$`)

// Factors splits an environment name into its dash-separated factors.
func Factors(env string) []string {
	return strings.Split(env, "-")
}

// FilterConditional keeps unconditional lines and the conditional lines
// whose condition matches the environment's factors, with the condition
// prefix removed.
//
// A condition is a comma-separated list of alternatives; an alternative is
// a dash-separated list of factors that must all be present, each
// optionally negated with '!'. Braces expand as in env_list.
func FilterConditional(lines []string, env string) []string {
	have := make(map[string]bool)
	for _, f := range Factors(env) {
		have[f] = true
	}

	out := make([]string, 0, len(lines))
	for _, line := range lines {
		m := conditionPattern.FindStringSubmatch(line)
		if m == nil {
			out = append(out, line)
			continue
		}
		if conditionHolds(m[1], have) {
			out = append(out, m[2])
		}
	}
	return out
}

func conditionHolds(cond string, have map[string]bool) bool {
	for _, expanded := range descriptor.ExpandFactors(cond) {
		for alt := range strings.SplitSeq(expanded, ",") {
			if alt = strings.TrimSpace(alt); alt != "" && allFactors(alt, have) {
				return true
			}
		}
	}
	return false
}

func allFactors(alt string, have map[string]bool) bool {
	for f := range strings.SplitSeq(alt, "-") {
		negated := strings.HasPrefix(f, "!")
		if have[strings.TrimPrefix(f, "!")] == negated {
			return false
		}
	}
	return true
}
