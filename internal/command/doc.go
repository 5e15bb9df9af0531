// SPDX-License-Identifier: MPL-2.0

// Package command turns resolved command templates into argument vectors.
//
// Templates are joined across backslash continuations, split with POSIX
// shell rules and have their {posargs} placeholder replaced by the caller's
// extra arguments (or the placeholder's default tokens). Assembly is a pure
// function of the template, the arguments and the substitution values.
package command
