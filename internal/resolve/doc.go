// SPDX-License-Identifier: MPL-2.0

// Package resolve expands {[section]key} references between descriptor fields.
//
// Every field is a list of tokenised lines (see pkg/descriptor). A line that
// is exactly one reference is replaced in place by the referenced field's
// resolved lines; a reference embedded in other text is replaced by those
// lines joined with a single space. Resolution is memoised per section+key
// and tracks the fields currently being expanded, so a reference chain that
// comes back to an in-progress field fails with ReferenceCycleError instead
// of recursing forever.
package resolve
