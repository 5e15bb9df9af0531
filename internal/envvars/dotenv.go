// SPDX-License-Identifier: MPL-2.0

package envvars

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LoadEnvFile reads a dotenv file and appends its variables to set.
// Relative paths resolve against baseDir.
func LoadEnvFile(set *Assignments, path, baseDir string) error {
	fullPath := filepath.FromSlash(path)
	if !filepath.IsAbs(fullPath) {
		fullPath = filepath.Join(baseDir, fullPath)
	}

	content, err := os.ReadFile(fullPath)
	if err != nil {
		return &EnvFileError{Path: path, Err: err}
	}
	if err := ParseEnvFile(set, content, path); err != nil {
		return &EnvFileError{Path: path, Err: err}
	}
	return nil
}

// ParseEnvFile parses dotenv content into set.
// Supported format:
//   - Lines starting with # are comments
//   - KEY=value (unquoted, " #" starts a trailing comment)
//   - KEY="value" (escape sequences: \n, \r, \t, \\, \")
//   - KEY='value' (literal)
//   - export KEY=value
//
// The filename parameter is used for error messages.
func ParseEnvFile(set *Assignments, content []byte, filename string) error {
	for i, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))

		key, value, found := strings.Cut(line, "=")
		if !found {
			return fmt.Errorf("%s:%d: invalid format (missing '=')", filename, i+1)
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("%s:%d: empty variable name", filename, i+1)
		}

		parsed, err := parseEnvValue(value)
		if err != nil {
			return fmt.Errorf("%s:%d: %w", filename, i+1, err)
		}
		set.Set(key, parsed)
	}
	return nil
}

func parseEnvValue(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}

	switch value[0] {
	case '"':
		if len(value) < 2 || value[len(value)-1] != '"' {
			return "", fmt.Errorf("unterminated double quote")
		}
		return unescapeDoubleQuoted(value[1 : len(value)-1]), nil
	case '\'':
		if len(value) < 2 || value[len(value)-1] != '\'' {
			return "", fmt.Errorf("unterminated single quote")
		}
		return value[1 : len(value)-1], nil
	}

	if idx := strings.Index(value, " #"); idx != -1 {
		value = strings.TrimSpace(value[:idx])
	}
	return value, nil
}

func unescapeDoubleQuoted(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for i := 0; i < len(value); i++ {
		if value[i] != '\\' || i+1 == len(value) {
			b.WriteByte(value[i])
			continue
		}
		i++
		switch value[i] {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case '\\', '"', '$':
			b.WriteByte(value[i])
		default:
			b.WriteByte('\\')
			b.WriteByte(value[i])
		}
	}
	return b.String()
}
