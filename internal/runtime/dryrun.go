// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"fmt"
	"io"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// DryRunLauncher prints each command instead of running it.
type DryRunLauncher struct {
	// Out receives one line per launch. Nil falls back to the request's Stdout.
	Out io.Writer
}

// NewDryRunLauncher creates a DryRunLauncher writing to out.
func NewDryRunLauncher(out io.Writer) *DryRunLauncher {
	return &DryRunLauncher{Out: out}
}

// Name returns the launcher name.
func (l *DryRunLauncher) Name() LauncherName { return LauncherDryRun }

// Launch writes the shell-quoted command line and reports success.
func (l *DryRunLauncher) Launch(_ context.Context, req Request) *Result {
	if len(req.Argv) == 0 {
		return NewErrorResult(1, ErrEmptyCommand)
	}
	out := l.Out
	if out == nil {
		out = req.Stdout
	}
	if out == nil {
		return NewSuccessResult()
	}

	line := QuoteArgv(req.Argv)
	if req.Dir != "" {
		line = "(cd " + quote(req.Dir) + " && " + line + ")"
	}
	if _, err := fmt.Fprintln(out, line); err != nil {
		return NewErrorResult(1, err)
	}
	return NewSuccessResult()
}

// QuoteArgv renders argv as a POSIX shell command line.
func QuoteArgv(argv []string) string {
	parts := make([]string, len(argv))
	for i, a := range argv {
		parts[i] = quote(a)
	}
	return strings.Join(parts, " ")
}

func quote(s string) string {
	q, err := syntax.Quote(s, syntax.LangPOSIX)
	if err != nil {
		return fmt.Sprintf("%q", s)
	}
	return q
}
