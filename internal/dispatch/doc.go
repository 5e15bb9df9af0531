// SPDX-License-Identifier: MPL-2.0

// Package dispatch runs a selection of environments one after another.
//
// Each environment is resolved, its install step and commands are launched
// in order, and the first failing command ends that environment. The next
// environment still runs. The run's exit code is the first non-zero
// environment exit code, or zero when every environment succeeded.
package dispatch
