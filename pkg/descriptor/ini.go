// SPDX-License-Identifier: MPL-2.0

package descriptor

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-ini/ini"
)

// setupCfgPrefix marks tox sections inside setup.cfg ([tox:tox]).
const setupCfgPrefix = "tox:"

// iniLoadOptions keeps descriptor text intact: "; marker" suffixes must not be
// eaten as inline comments, indented lines continue the previous value and
// backslash continuations are left for the command assembler.
var iniLoadOptions = ini.LoadOptions{
	AllowPythonMultilineValues: true,
	AllowNonUniqueSections:     true,
	IgnoreInlineComment:        true,
	IgnoreContinuation:         true,
	PreserveSurroundedQuote:    true,
	KeyValueDelimiters:         "=",
}

// ParseINI parses INI descriptor content. The path names the source in
// errors and decides whether setup.cfg section prefixes apply.
func ParseINI(path string, data []byte) (*Descriptor, error) {
	f, err := ini.LoadSources(iniLoadOptions, data)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	setupCfg := filepath.Base(path) == "setup.cfg"
	d := New(path)
	for _, sec := range f.Sections() {
		name := sec.Name()
		if name == ini.DefaultSection && len(sec.Keys()) == 0 {
			continue
		}
		if setupCfg {
			name = strings.TrimPrefix(name, setupCfgPrefix)
		}

		s := NewSection(name)
		for _, key := range sec.Keys() {
			s.Set(key.Name(), ParseValue(key.Value()))
		}
		d.Add(s)
	}

	if len(d.sections) == 0 {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("no sections found")}
	}
	return d, nil
}
