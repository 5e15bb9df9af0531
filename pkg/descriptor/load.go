// SPDX-License-Identifier: MPL-2.0

package descriptor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultMaxFileSize bounds descriptor files read from disk.
const DefaultMaxFileSize = 4 << 20

// Candidates lists descriptor file names in discovery order.
var Candidates = []string{"tox.toml", "tox.ini", "setup.cfg"}

// Load reads and parses the descriptor at path. Files ending in .toml use the
// TOML loader; everything else is parsed as INI.
func Load(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read descriptor: %w", err)
	}
	if len(data) > DefaultMaxFileSize {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("file size %d bytes exceeds maximum %d bytes", len(data), DefaultMaxFileSize)}
	}
	return Parse(path, data)
}

// Parse parses descriptor content, choosing the format from the path.
func Parse(path string, data []byte) (*Descriptor, error) {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return ParseTOML(path, data)
	}
	return ParseINI(path, data)
}

// Discover returns the path of the first candidate descriptor in dir.
// A setup.cfg only counts when it carries a [tox:tox] section.
func Discover(dir string) (string, error) {
	for _, name := range Candidates {
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		if name == "setup.cfg" && !hasToxSection(path) {
			continue
		}
		return path, nil
	}
	return "", &NotFoundError{Dir: dir, Candidates: Candidates}
}

func hasToxSection(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return strings.Contains(string(data), "["+setupCfgPrefix+CoreSection+"]")
}
