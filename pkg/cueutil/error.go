// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue/errors"
)

// ValidationError reports a document value that passed the schema but fails a
// rule the schema cannot express.
type ValidationError struct {
	FilePath string
	// CUEPath locates the value, e.g. "default_envs[1]".
	CUEPath string
	Message string
	// Suggestion is an optional fix hint; it is not part of Error().
	Suggestion string
}

func (e *ValidationError) Error() string {
	if e.CUEPath != "" {
		return fmt.Sprintf("%s: %s: %s", e.FilePath, e.CUEPath, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.FilePath, e.Message)
}

// Unwrap returns nil; ValidationError is a leaf.
func (e *ValidationError) Unwrap() error { return nil }

// FormatError rewrites a CUE error as "<file>: <path>: <message>", one line per
// underlying error. Non-CUE errors are prefixed with the file name.
//
//	config.cue: ui.color_scheme: 3 errors in empty disjunction
func FormatError(err error, filePath string) error {
	if err == nil {
		return nil
	}

	cueErrors := errors.Errors(err)
	if len(cueErrors) == 0 {
		return fmt.Errorf("%s: %w", filePath, err)
	}

	lines := make([]string, 0, len(cueErrors))
	for _, e := range cueErrors {
		pathStr := formatPath(errors.Path(e))
		msg := e.Error()
		if pathStr != "" {
			// CUE sometimes repeats the path at the start of the message.
			if trimmed, ok := strings.CutPrefix(msg, pathStr); ok {
				msg = strings.TrimSpace(strings.TrimPrefix(trimmed, ":"))
			}
			lines = append(lines, pathStr+": "+msg)
			continue
		}
		lines = append(lines, msg)
	}

	if len(lines) == 1 {
		return fmt.Errorf("%s: %s", filePath, lines[0])
	}
	return fmt.Errorf("%s: validation failed:\n  %s", filePath, strings.Join(lines, "\n  "))
}

// formatPath renders ["default_envs", "2"] as default_envs[2].
func formatPath(path []string) string {
	var sb strings.Builder
	for i, part := range path {
		if i > 0 && isIndex(part) {
			sb.WriteString("[" + part + "]")
			continue
		}
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(part)
	}
	return sb.String()
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// CheckFileSize fails when data is larger than maxSize bytes.
func CheckFileSize(data []byte, maxSize int64, filename string) error {
	if int64(len(data)) > maxSize {
		return fmt.Errorf("%s: file size %d bytes exceeds maximum %d bytes",
			filename, len(data), maxSize)
	}
	return nil
}
