// SPDX-License-Identifier: MPL-2.0

package envspec

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/envrun/envrun/internal/envvars"
	"github.com/envrun/envrun/internal/markers"
	"github.com/envrun/envrun/internal/registry"
	"github.com/envrun/envrun/internal/resolve"
	"github.com/envrun/envrun/pkg/descriptor"
	"github.com/envrun/envrun/pkg/platform"
)

// DefaultInstallCommand installs the packages named by {packages}.
const DefaultInstallCommand = "python -m pip install {opts} {packages}"

var pythonFactorPattern = regexp.MustCompile(`^(py|pypy)(\d)(\d*)$`)

type (
	// Options carries the caller-side inputs of resolution.
	Options struct {
		// GlobalPassEnv is merged ahead of every environment's pass_env.
		// Nil means envvars.DefaultPassEnv.
		GlobalPassEnv []string
		// Lookup answers {env:NAME} tokens. Nil means no variables are set.
		Lookup envvars.Lookup
		// Host supplies the platform marker facts.
		Host platform.Host
		// Facts override individual marker facts.
		Facts map[string]string
		// InstallCommand replaces DefaultInstallCommand when the
		// environment declares none.
		InstallCommand string
	}

	builder struct {
		env      string
		resolver *resolve.Resolver
		opts     Options
	}
)

// Resolve builds the EnvironmentSpec for name. Each call resolves with its
// own reference memo, so concurrent calls over one registry are safe.
func Resolve(reg *registry.Registry, name string, opts Options) (*EnvironmentSpec, error) {
	if _, err := reg.Get(name); err != nil {
		return nil, err
	}
	if opts.Lookup == nil {
		opts.Lookup = envvars.MapLookup(nil)
	}
	if opts.GlobalPassEnv == nil {
		opts.GlobalPassEnv = envvars.DefaultPassEnv()
	}
	b := &builder{env: name, resolver: resolve.New(reg.Descriptor()), opts: opts}
	return b.build(reg.Descriptor().RootDir())
}

// ResolveAll resolves names in order and stops at the first failure.
func ResolveAll(reg *registry.Registry, names []string, opts Options) ([]*EnvironmentSpec, error) {
	specs := make([]*EnvironmentSpec, 0, len(names))
	for _, n := range names {
		s, err := Resolve(reg, n, opts)
		if err != nil {
			return nil, err
		}
		specs = append(specs, s)
	}
	return specs, nil
}

func (b *builder) build(root string) (*EnvironmentSpec, error) {
	s := &EnvironmentSpec{name: b.env, rootDir: root}
	var err error

	if s.description, err = b.scalar(descriptor.KeyDescription); err != nil {
		return nil, err
	}
	if s.basePython, err = b.scalar(descriptor.KeyBasePython); err != nil {
		return nil, err
	}
	if s.basePython == "" {
		s.basePython = PythonForEnv(b.env)
	}
	if s.skipInstall, err = b.flag(descriptor.KeySkipInstall); err != nil {
		return nil, err
	}
	if s.recreate, err = b.flag(descriptor.KeyRecreate); err != nil {
		return nil, err
	}
	if s.ignoreErrors, err = b.flag(descriptor.KeyIgnoreErrors); err != nil {
		return nil, err
	}
	if s.extras, err = b.list(descriptor.KeyExtras); err != nil {
		return nil, err
	}
	if s.allowlist, err = b.list(descriptor.KeyAllowlistExternals); err != nil {
		return nil, err
	}
	if s.commands, err = b.list(descriptor.KeyCommands); err != nil {
		return nil, err
	}
	if err = b.buildDeps(s); err != nil {
		return nil, err
	}
	if err = b.buildEnv(s); err != nil {
		return nil, err
	}

	if s.changeDir, err = b.scalar(descriptor.KeyChangeDir); err != nil {
		return nil, err
	}
	switch {
	case s.changeDir == "":
		s.changeDir = root
	case !filepath.IsAbs(s.changeDir):
		s.changeDir = filepath.Join(root, filepath.FromSlash(s.changeDir))
	}

	if s.installCommand, err = b.scalar(descriptor.KeyInstallCommand); err != nil {
		return nil, err
	}
	if s.installCommand == "" {
		s.installCommand = b.opts.InstallCommand
	}
	if s.installCommand == "" {
		s.installCommand = DefaultInstallCommand
	}
	return s, nil
}

func (b *builder) buildDeps(s *EnvironmentSpec) error {
	lines, err := b.list(descriptor.KeyDeps)
	if err != nil {
		return err
	}
	facts := markers.HostFacts(b.opts.Host, s.basePython).With(b.opts.Facts)
	kept, diags, err := markers.NewEvaluator(facts).Filter(markers.ParseDependencies(lines))
	if err != nil {
		return &FieldError{Env: b.env, Field: descriptor.KeyDeps, Err: err}
	}
	s.deps = kept
	for _, d := range diags {
		s.diagnostics = append(s.diagnostics, d.String())
	}
	return nil
}

func (b *builder) buildEnv(s *EnvironmentSpec) error {
	own, err := b.raw(descriptor.KeyPassEnv)
	if err != nil {
		return err
	}
	s.passEnv = envvars.MergePassEnv(b.opts.GlobalPassEnv, own)

	lines, err := b.raw(descriptor.KeySetEnv)
	if err != nil {
		return err
	}
	s.setEnv, err = envvars.ParseSetEnv(lines, s.rootDir, b.opts.Lookup)
	if err != nil {
		return &FieldError{Env: b.env, Field: descriptor.KeySetEnv, Err: err}
	}
	return nil
}

// raw resolves key through references and factor conditions.
func (b *builder) raw(key string) ([]string, error) {
	lines, _, err := b.resolver.EnvField(b.env, key)
	if err != nil {
		return nil, &FieldError{Env: b.env, Field: key, Err: err}
	}
	return FilterConditional(lines, b.env), nil
}

// list is raw with {env:...} tokens substituted.
func (b *builder) list(key string) ([]string, error) {
	lines, err := b.raw(key)
	if err != nil {
		return nil, err
	}
	return envvars.ExpandAll(lines, b.opts.Lookup), nil
}

func (b *builder) scalar(key string) (string, error) {
	lines, err := b.list(key)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(strings.Join(lines, " ")), nil
}

func (b *builder) flag(key string) (bool, error) {
	v, err := b.scalar(key)
	if err != nil || v == "" {
		return false, err
	}
	on, perr := strconv.ParseBool(strings.ToLower(v))
	if perr != nil {
		return false, &FieldError{Env: b.env, Field: key, Err: fmt.Errorf("%w: %q is not a boolean", ErrInvalidField, v)}
	}
	return on, nil
}

// PythonForEnv derives an interpreter from a pyXY or pypyXY factor in the
// environment name, defaulting to python3.
func PythonForEnv(env string) string {
	for _, f := range Factors(env) {
		m := pythonFactorPattern.FindStringSubmatch(f)
		if m == nil {
			continue
		}
		interp := "python"
		if m[1] == "pypy" {
			interp = "pypy"
		}
		if m[3] == "" {
			return interp + m[2]
		}
		return interp + m[2] + "." + m[3]
	}
	return "python3"
}
