// SPDX-License-Identifier: MPL-2.0

// Package runtime launches the commands of an environment.
//
// Two launchers implement the Launcher interface:
//   - native: runs the argv directly on the host with os/exec, prefixed with
//     the host spawn command when running inside a Flatpak or Snap sandbox
//   - dry-run: prints the command line it would run and reports success
//
// A Request carries the argv, working directory, environment and I/O
// streams; the returned Result carries the exit code and any launch error.
package runtime
