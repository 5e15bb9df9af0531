// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the envrun command-line interface.
//
// Every command is built against an App, the composition root holding the
// configuration provider, the command launcher and the standard streams, so
// tests can run the whole command tree without touching the process state.
package cmd
