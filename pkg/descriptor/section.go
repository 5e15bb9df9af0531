// SPDX-License-Identifier: MPL-2.0

package descriptor

import (
	"path/filepath"
	"strings"
)

const (
	// CoreSection holds descriptor-wide settings such as env_list.
	CoreSection = "tox"
	// BaseSection holds the fields every environment inherits.
	BaseSection = "testenv"
	// EnvSectionPrefix prefixes the section of a named environment.
	EnvSectionPrefix = BaseSection + ":"

	KeyDescription        = "description"
	KeyBasePython         = "base_python"
	KeySkipInstall        = "skip_install"
	KeyDeps               = "deps"
	KeyExtras             = "extras"
	KeyPassEnv            = "pass_env"
	KeySetEnv             = "set_env"
	KeyCommands           = "commands"
	KeyAllowlistExternals = "allowlist_externals"
	KeyRecreate           = "recreate"
	KeyChangeDir          = "change_dir"
	KeyInstallCommand     = "install_command"
	KeyIgnoreErrors       = "ignore_errors"
	KeyEnvList            = "env_list"
)

// keyAliases maps legacy spellings to canonical keys.
var keyAliases = map[string]string{
	"basepython":          KeyBasePython,
	"passenv":             KeyPassEnv,
	"setenv":              KeySetEnv,
	"changedir":           KeyChangeDir,
	"whitelist_externals": KeyAllowlistExternals,
	"envlist":             KeyEnvList,
}

type (
	// Section is a named group of fields. Keys keep their declaration order.
	Section struct {
		name   string
		keys   []string
		fields map[string]Value
	}

	// Descriptor is the ordered set of sections loaded from one file.
	// Duplicate section names are kept so the registry can reject them.
	Descriptor struct {
		path     string
		sections []*Section
	}
)

// CanonicalKey returns the canonical spelling of a field key.
func CanonicalKey(key string) string {
	key = strings.TrimSpace(key)
	if canonical, ok := keyAliases[key]; ok {
		return canonical
	}
	return key
}

// EnvSectionName returns the section name holding environment env.
func EnvSectionName(env string) string {
	return EnvSectionPrefix + env
}

// EnvNameOf returns the environment name of an environment section.
func EnvNameOf(section string) (string, bool) {
	name, ok := strings.CutPrefix(section, EnvSectionPrefix)
	if !ok || name == "" {
		return "", false
	}
	return name, true
}

// NewSection creates an empty section.
func NewSection(name string) *Section {
	return &Section{name: name, fields: make(map[string]Value)}
}

// Name returns the section name.
func (s *Section) Name() string { return s.name }

// Keys returns the canonical keys in declaration order.
func (s *Section) Keys() []string {
	return append([]string(nil), s.keys...)
}

// Field returns the value of key, if declared.
func (s *Section) Field(key string) (Value, bool) {
	v, ok := s.fields[CanonicalKey(key)]
	return v, ok
}

// Set declares key with value, replacing any earlier declaration.
func (s *Section) Set(key string, v Value) {
	key = CanonicalKey(key)
	if _, ok := s.fields[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.fields[key] = v
}

// New creates an empty descriptor for the file at path.
func New(path string) *Descriptor {
	return &Descriptor{path: path}
}

// Path returns the file the descriptor was loaded from.
func (d *Descriptor) Path() string { return d.path }

// RootDir returns the directory containing the descriptor file.
func (d *Descriptor) RootDir() string {
	if d.path == "" {
		return "."
	}
	return filepath.Dir(d.path)
}

// Add appends a section.
func (d *Descriptor) Add(s *Section) {
	d.sections = append(d.sections, s)
}

// Sections returns all sections in file order, duplicates included.
func (d *Descriptor) Sections() []*Section {
	return append([]*Section(nil), d.sections...)
}

// Section returns the first section with the given name.
func (d *Descriptor) Section(name string) (*Section, bool) {
	for _, s := range d.sections {
		if s.name == name {
			return s, true
		}
	}
	return nil, false
}

// EnvList returns the default environment names declared in the core
// section, with brace factors expanded (py{39,310}-lint becomes py39-lint,
// py310-lint). Entries may be separated by commas or newlines.
func (d *Descriptor) EnvList() []string {
	core, ok := d.Section(CoreSection)
	if !ok {
		return nil
	}
	v, ok := core.Field(KeyEnvList)
	if !ok {
		return nil
	}

	var names []string
	seen := make(map[string]bool)
	for _, line := range v {
		for _, item := range SplitList(line.String()) {
			for _, name := range ExpandFactors(item) {
				if !seen[name] {
					seen[name] = true
					names = append(names, name)
				}
			}
		}
	}
	return names
}

// SplitList splits on commas that are not inside braces.
func SplitList(s string) []string {
	var (
		out   []string
		depth int
		start int
	)
	for i, r := range s {
		switch r {
		case '{':
			depth++
		case '}':
			depth--
		case ',':
			if depth == 0 {
				out = appendTrimmed(out, s[start:i])
				start = i + 1
			}
		}
	}
	return appendTrimmed(out, s[start:])
}

func appendTrimmed(out []string, s string) []string {
	if s = strings.TrimSpace(s); s != "" {
		out = append(out, s)
	}
	return out
}

// ExpandFactors expands every {a,b} group in name into the cartesian product
// of its alternatives, left to right.
func ExpandFactors(name string) []string {
	open := strings.IndexByte(name, '{')
	if open < 0 {
		return []string{name}
	}
	closing := strings.IndexByte(name[open:], '}')
	if closing < 0 {
		return []string{name}
	}
	closing += open

	prefix, body, rest := name[:open], name[open+1:closing], name[closing+1:]
	var out []string
	for _, alt := range strings.Split(body, ",") {
		for _, tail := range ExpandFactors(rest) {
			out = append(out, prefix+strings.TrimSpace(alt)+tail)
		}
	}
	return out
}
