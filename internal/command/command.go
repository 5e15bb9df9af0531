// SPDX-License-Identifier: MPL-2.0

package command

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	shlex "github.com/anmitsu/go-shlex"
	"mvdan.cc/sh/v3/syntax"
)

const (
	posargsToken  = "{posargs"
	ignorePrefix  = "-"
	continuation  = `\`
	tokenToxRoot  = "{tox_root}"
	tokenIniDir   = "{toxinidir}"
	tokenEnvName  = "{env_name}"
	tokenEnvName3 = "{envname}"
	tokenSep      = "{/}"
	tokenListSep  = "{:}"
)

// ErrInvalidCommand is returned when a template cannot be split into arguments.
var ErrInvalidCommand = errors.New("invalid command")

type (
	// InvalidCommandError reports the template that failed to split.
	InvalidCommandError struct {
		Template string
		Err      error
	}

	// Substitutions holds the values of the non-posargs placeholders.
	Substitutions struct {
		// Root replaces {tox_root} and {toxinidir}.
		Root string
		// EnvName replaces {env_name} and {envname}.
		EnvName string
	}

	// Command is one assembled command line.
	Command struct {
		// Argv is the executable followed by its arguments.
		Argv []string
		// IgnoreExitCode is set for templates prefixed with '-'.
		IgnoreExitCode bool
		// Template is the logical template line the command came from.
		Template string
	}

	segment struct {
		text        string
		placeholder bool
		defaults    string
	}
)

// Error implements the error interface.
func (e *InvalidCommandError) Error() string {
	return fmt.Sprintf("invalid command %q: %v", e.Template, e.Err)
}

// Unwrap returns ErrInvalidCommand for errors.Is() compatibility.
func (e *InvalidCommandError) Unwrap() error { return ErrInvalidCommand }

// String renders the argv quoted for a POSIX shell.
func (c Command) String() string {
	parts := make([]string, len(c.Argv))
	for i, a := range c.Argv {
		q, err := syntax.Quote(a, syntax.LangBash)
		if err != nil {
			q = fmt.Sprintf("%q", a)
		}
		parts[i] = q
	}
	s := strings.Join(parts, " ")
	if c.IgnoreExitCode {
		return ignorePrefix + " " + s
	}
	return s
}

// Executable returns the first argv entry, or "" for an empty command.
func (c Command) Executable() string {
	if len(c.Argv) == 0 {
		return ""
	}
	return c.Argv[0]
}

// JoinContinuations merges lines ending in a backslash with the line that
// follows them.
func JoinContinuations(lines []string) []string {
	var out, pending []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if trimmed, ok := strings.CutSuffix(line, continuation); ok {
			pending = append(pending, strings.TrimSpace(trimmed))
			continue
		}
		out = append(out, strings.Join(append(pending, line), " "))
		pending = pending[:0]
	}
	if len(pending) > 0 {
		out = append(out, strings.Join(pending, " "))
	}
	return out
}

// Assemble expands every template against posargs. Templates that produce no
// arguments are dropped.
func Assemble(templates, posargs []string, subs Substitutions) ([]Command, error) {
	var out []Command
	for _, tmpl := range JoinContinuations(templates) {
		cmd, err := AssembleOne(tmpl, posargs, subs)
		if err != nil {
			return nil, err
		}
		if len(cmd.Argv) == 0 {
			continue
		}
		out = append(out, cmd)
	}
	return out, nil
}

// AssembleOne expands a single logical template.
func AssembleOne(template string, posargs []string, subs Substitutions) (Command, error) {
	cmd := Command{Template: template}
	line := strings.TrimSpace(template)
	if rest, ok := strings.CutPrefix(line, ignorePrefix); ok {
		cmd.IgnoreExitCode = true
		line = strings.TrimSpace(rest)
	}

	argv, err := expand(line, posargs, subs.replacer())
	if err != nil {
		return Command{}, &InvalidCommandError{Template: template, Err: err}
	}
	cmd.Argv = argv
	return cmd, nil
}

func (s Substitutions) replacer() *strings.Replacer {
	return strings.NewReplacer(
		tokenToxRoot, s.Root,
		tokenIniDir, s.Root,
		tokenEnvName, s.EnvName,
		tokenEnvName3, s.EnvName,
		tokenSep, string(filepath.Separator),
		tokenListSep, string(filepath.ListSeparator),
	)
}

// expand splits line and replaces its placeholders. Caller arguments are
// inserted verbatim; template text goes through r. A placeholder written
// directly against text concatenates with the neighbouring token.
func expand(line string, posargs []string, r *strings.Replacer) ([]string, error) {
	segs, err := segments(line)
	if err != nil {
		return nil, err
	}

	var argv []string
	open := false
	for _, seg := range segs {
		var tokens []string
		switch {
		case seg.placeholder && len(posargs) > 0:
			tokens = append(tokens, posargs...)
		case seg.placeholder:
			if tokens, err = split(seg.defaults, r); err != nil {
				return nil, err
			}
		case seg.text == "":
			continue
		default:
			if tokens, err = split(seg.text, r); err != nil {
				return nil, err
			}
		}

		glued := open && (seg.placeholder || !startsWithSpace(seg.text))
		if glued && len(tokens) > 0 {
			argv[len(argv)-1] += tokens[0]
			tokens = tokens[1:]
		}
		argv = append(argv, tokens...)

		if seg.placeholder {
			open = open || len(tokens) > 0
		} else {
			open = len(argv) > 0 && !endsWithSpace(seg.text)
		}
	}
	return argv, nil
}

// segments cuts line into literal text and posargs placeholders.
func segments(line string) ([]segment, error) {
	var segs []segment
	for {
		start := strings.Index(line, posargsToken)
		if start < 0 {
			return append(segs, segment{text: line}), nil
		}
		end := matchingBrace(line, start)
		if end < 0 {
			return nil, fmt.Errorf("unterminated %s placeholder", posargsToken+"}")
		}
		body := line[start+len(posargsToken) : end]
		if body != "" && !strings.HasPrefix(body, ":") {
			// "{posargsX}" is not a placeholder; keep it as text.
			segs = append(segs, segment{text: line[:end+1]})
			line = line[end+1:]
			continue
		}
		segs = append(segs,
			segment{text: line[:start]},
			segment{placeholder: true, defaults: strings.TrimPrefix(body, ":")},
		)
		line = line[end+1:]
	}
}

func split(s string, r *strings.Replacer) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	tokens, err := shlex.Split(s, true)
	if err != nil {
		return nil, err
	}
	for i, t := range tokens {
		tokens[i] = r.Replace(t)
	}
	return tokens, nil
}

func matchingBrace(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func startsWithSpace(s string) bool {
	return s != "" && (s[0] == ' ' || s[0] == '\t')
}

func endsWithSpace(s string) bool {
	return s != "" && (s[len(s)-1] == ' ' || s[len(s)-1] == '\t')
}
