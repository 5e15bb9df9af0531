// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"io"
	"log/slog"

	"github.com/charmbracelet/log"
)

// newLogger returns a slog logger backed by a charmbracelet/log handler.
// Verbose output lowers the level to debug and adds timestamps.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := log.WarnLevel
	if verbose {
		level = log.DebugLevel
	}
	handler := log.NewWithOptions(w, log.Options{
		Prefix:          "envrun",
		Level:           level,
		ReportTimestamp: verbose,
		TimeFormat:      "15:04:05.000",
	})
	return slog.New(handler)
}
