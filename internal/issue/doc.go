// SPDX-License-Identifier: MPL-2.0

// Package issue provides user-facing error context for the CLI.
//
// ActionableError records the failed operation, the resource involved and
// suggestions for a fix. The issue catalog holds longer Markdown guides,
// rendered in the terminal with glamour, for the failures users hit most.
package issue
