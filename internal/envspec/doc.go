// SPDX-License-Identifier: MPL-2.0

// Package envspec builds the immutable, fully resolved description of one
// environment from the registry: references expanded, factor conditions
// applied, dependencies filtered by markers, passthrough lists merged and
// {env:...} defaults substituted.
package envspec
