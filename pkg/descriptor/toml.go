// SPDX-License-Identifier: MPL-2.0

package descriptor

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"mvdan.cc/sh/v3/syntax"
)

const (
	tomlBaseTable = "env_run_base"
	tomlEnvTable  = "env"

	replaceRef     = "ref"
	replaceEnv     = "env"
	replacePosargs = "posargs"
)

// ParseTOML parses tox.toml content. Environments and keys keep the order
// they are declared in.
func ParseTOML(path string, data []byte) (*Descriptor, error) {
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	order, err := scanKeyOrder(data)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	d := New(path)
	core := NewSection(CoreSection)
	var tables []*Section

	for _, key := range order.keys(doc) {
		raw := doc[key]
		switch {
		case key == tomlBaseTable:
			s, err := order.section(BaseSection, raw, key)
			if err != nil {
				return nil, &ParseError{Path: path, Err: err}
			}
			tables = append(tables, s)
		case key == tomlEnvTable:
			envs, ok := raw.(map[string]any)
			if !ok {
				return nil, &ParseError{Path: path, Err: fmt.Errorf("%s: expected table, got %T", key, raw)}
			}
			for _, name := range order.keys(envs, key) {
				s, err := order.section(EnvSectionName(name), envs[name], key, name)
				if err != nil {
					return nil, &ParseError{Path: path, Err: err}
				}
				tables = append(tables, s)
			}
		default:
			if isTable(raw) {
				s, err := order.section(key, raw, key)
				if err != nil {
					return nil, &ParseError{Path: path, Err: err}
				}
				tables = append(tables, s)
				continue
			}
			v, err := order.value(raw, key)
			if err != nil {
				return nil, &ParseError{Path: path, Err: fmt.Errorf("%s: %w", key, err)}
			}
			core.Set(key, v)
		}
	}

	if len(core.keys) > 0 {
		d.Add(core)
	}
	for _, s := range tables {
		d.Add(s)
	}
	if len(d.sections) == 0 {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("no tables found")}
	}
	return d, nil
}

// section converts the table at path into a section called name.
func (o keyOrder) section(name string, raw any, path ...string) (*Section, error) {
	table, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s: expected table, got %T", name, raw)
	}
	s := NewSection(name)
	for _, key := range o.keys(table, path...) {
		v, err := o.value(table[key], append(slices.Clone(path), key)...)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", name, key, err)
		}
		s.Set(key, v)
	}
	return s, nil
}

// value converts the decoded TOML value at path into tokenised lines.
func (o keyOrder) value(raw any, path ...string) (Value, error) {
	switch v := raw.(type) {
	case []any:
		var out Value
		for i, item := range v {
			lines, err := tomlListItem(item)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out = append(out, lines...)
		}
		return out, nil
	case map[string]any:
		if _, ok := v["replace"]; ok {
			line, err := tomlReplacement(v, false)
			if err != nil {
				return nil, err
			}
			return Value{line}, nil
		}
		return o.assignments(v, path...)
	default:
		text, err := tomlScalar(raw)
		if err != nil {
			return nil, err
		}
		return Value{ParseLine(text)}, nil
	}
}

func tomlListItem(item any) (Value, error) {
	switch v := item.(type) {
	case []any:
		line, err := tomlArgv(v)
		if err != nil {
			return nil, err
		}
		return Value{line}, nil
	case map[string]any:
		line, err := tomlReplacement(v, false)
		if err != nil {
			return nil, err
		}
		return Value{line}, nil
	default:
		text, err := tomlScalar(item)
		if err != nil {
			return nil, err
		}
		return Value{ParseLine(text)}, nil
	}
}

// tomlArgv renders one argv array as a single shell-quoted command line.
func tomlArgv(argv []any) (Line, error) {
	var line Line
	for i, arg := range argv {
		if i > 0 {
			line = append(line, Part{Text: " "})
		}
		if m, ok := arg.(map[string]any); ok {
			repl, err := tomlReplacement(m, true)
			if err != nil {
				return nil, err
			}
			line = append(line, repl...)
			continue
		}
		text, err := tomlScalar(arg)
		if err != nil {
			return nil, err
		}
		if strings.HasPrefix(text, "{posargs") && strings.HasSuffix(text, "}") {
			line = append(line, Part{Text: text})
			continue
		}
		quoted, err := quoteArg(text)
		if err != nil {
			return nil, err
		}
		line = append(line, ParseLine(quoted)...)
	}
	return line, nil
}

// assignments renders a set_env style table as KEY=VALUE lines.
func (o keyOrder) assignments(table map[string]any, path ...string) (Value, error) {
	var out Value
	for _, key := range o.keys(table, path...) {
		var text string
		switch v := table[key].(type) {
		case map[string]any:
			repl, err := tomlReplacement(v, false)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			out = append(out, append(Line{{Text: key + "="}}, repl...))
			continue
		default:
			s, err := tomlScalar(v)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			text = s
		}
		out = append(out, ParseLine(key+"="+text))
	}
	return out, nil
}

// tomlReplacement maps a {replace = ...} table onto the token model. Inside an
// argv, env tokens are quoted so a value with spaces stays one argument.
func tomlReplacement(m map[string]any, inArgv bool) (Line, error) {
	kind, _ := m["replace"].(string)
	switch kind {
	case replaceRef:
		of, ok := m["of"].([]any)
		if !ok || len(of) == 0 {
			return nil, fmt.Errorf("ref replacement needs a non-empty 'of' list")
		}
		path := make([]string, 0, len(of))
		for _, p := range of {
			s, ok := p.(string)
			if !ok {
				return nil, fmt.Errorf("ref path elements must be strings, got %T", p)
			}
			path = append(path, s)
		}
		section, key := tomlRefTarget(path)
		return Ref(section, key), nil
	case replaceEnv:
		name, _ := m["name"].(string)
		if name == "" {
			return nil, fmt.Errorf("env replacement needs a 'name'")
		}
		token := "{env:" + name + "}"
		if def, ok := m["default"]; ok {
			s, err := tomlScalar(def)
			if err != nil {
				return nil, err
			}
			token = "{env:" + name + ":" + s + "}"
		}
		if inArgv {
			quoted, err := quoteArg(token)
			if err != nil {
				return nil, err
			}
			token = quoted
		}
		return Line{{Text: token}}, nil
	case replacePosargs:
		def, _ := m["default"].([]any)
		if len(def) == 0 {
			return Line{{Text: "{posargs}"}}, nil
		}
		words := make([]string, 0, len(def))
		for _, d := range def {
			s, err := tomlScalar(d)
			if err != nil {
				return nil, err
			}
			q, err := quoteArg(s)
			if err != nil {
				return nil, err
			}
			words = append(words, q)
		}
		return Line{{Text: "{posargs:" + strings.Join(words, " ") + "}"}}, nil
	default:
		return nil, fmt.Errorf("unsupported replacement %q", kind)
	}
}

// tomlRefTarget maps a TOML reference path onto a section name and key.
func tomlRefTarget(path []string) (section, key string) {
	key = path[len(path)-1]
	scope := path[:len(path)-1]
	switch {
	case len(scope) == 0:
		return CoreSection, key
	case len(scope) == 1 && scope[0] == tomlBaseTable:
		return BaseSection, key
	case len(scope) == 2 && scope[0] == tomlEnvTable:
		return EnvSectionName(scope[1]), key
	default:
		return strings.Join(scope, "."), key
	}
}

func tomlScalar(raw any) (string, error) {
	switch v := raw.(type) {
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("unsupported value of type %T", raw)
	}
}

func quoteArg(s string) (string, error) {
	q, err := syntax.Quote(s, syntax.LangBash)
	if err != nil {
		return "", fmt.Errorf("quote %q: %w", s, err)
	}
	return q, nil
}

func isTable(raw any) bool {
	m, ok := raw.(map[string]any)
	if !ok {
		return false
	}
	_, replacement := m["replace"]
	return !replacement
}
