// SPDX-License-Identifier: MPL-2.0

// Package markers filters dependency entries by environment markers.
//
// A dependency line may carry a PEP 508 style marker after a semicolon:
//
//	numpy==1.22; platform_system == 'Windows'
//
// Markers are rewritten so that every comparison becomes a call to a
// comparison function, and the remaining boolean structure (and, or, not,
// parentheses) is compiled and evaluated with expr. Comparisons between two
// version-looking values use semantic version ordering; everything else
// compares as strings, and "in" tests substring containment.
package markers
