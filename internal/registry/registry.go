// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/envrun/envrun/pkg/descriptor"
)

var (
	// ErrUnknownEnvironment is the sentinel error wrapped by UnknownEnvironmentError.
	ErrUnknownEnvironment = errors.New("unknown environment")
	// ErrDuplicateName is the sentinel error wrapped by DuplicateNameError.
	ErrDuplicateName = errors.New("duplicate environment name")
	// ErrFrozen is returned when registering into a frozen registry.
	ErrFrozen = errors.New("registry is frozen")
)

type (
	// Definition is an unresolved environment: a name and the section that
	// declares it. Section is nil for names only listed in env_list; such
	// environments take every field from the base section.
	Definition struct {
		name    string
		section *descriptor.Section
	}

	// UnknownEnvironmentError is returned by Get for an undefined name.
	UnknownEnvironmentError struct {
		Name  string
		Known []string
	}

	// DuplicateNameError is returned by Register for a name already present.
	DuplicateNameError struct {
		Name string
	}

	// Registry maps environment names to definitions, in declaration order.
	Registry struct {
		source   *descriptor.Descriptor
		defs     map[string]Definition
		order    []string
		defaults []string
		frozen   bool
	}
)

// NewDefinition creates a definition for name backed by section (may be nil).
func NewDefinition(name string, section *descriptor.Section) Definition {
	return Definition{name: name, section: section}
}

// Name returns the environment name.
func (d Definition) Name() string { return d.name }

// Section returns the declaring section, or nil.
func (d Definition) Section() *descriptor.Section { return d.section }

// SectionName returns the name of the environment's own section.
func (d Definition) SectionName() string { return descriptor.EnvSectionName(d.name) }

func (e *UnknownEnvironmentError) Error() string {
	if len(e.Known) == 0 {
		return fmt.Sprintf("unknown environment %q", e.Name)
	}
	return fmt.Sprintf("unknown environment %q (known: %s)", e.Name, strings.Join(e.Known, ", "))
}

// Unwrap returns ErrUnknownEnvironment for errors.Is() compatibility.
func (e *UnknownEnvironmentError) Unwrap() error { return ErrUnknownEnvironment }

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("environment %q is defined more than once", e.Name)
}

// Unwrap returns ErrDuplicateName for errors.Is() compatibility.
func (e *DuplicateNameError) Unwrap() error { return ErrDuplicateName }

// New creates an empty registry over source. Source may be nil in tests that
// register definitions by hand.
func New(source *descriptor.Descriptor) *Registry {
	if source == nil {
		source = descriptor.New("")
	}
	return &Registry{source: source, defs: make(map[string]Definition)}
}

// FromDescriptor registers every [testenv:NAME] section, then every env_list
// name without a section of its own, and freezes the result.
func FromDescriptor(d *descriptor.Descriptor) (*Registry, error) {
	r := New(d)
	for _, s := range d.Sections() {
		name, ok := descriptor.EnvNameOf(s.Name())
		if !ok {
			continue
		}
		if err := r.Register(NewDefinition(name, s)); err != nil {
			return nil, err
		}
	}

	defaults := d.EnvList()
	for _, name := range defaults {
		if _, ok := r.defs[name]; ok {
			continue
		}
		if err := r.Register(NewDefinition(name, nil)); err != nil {
			return nil, err
		}
	}
	r.defaults = defaults
	r.Freeze()
	return r, nil
}

// Register adds def. It fails with DuplicateNameError if the name exists.
func (r *Registry) Register(def Definition) error {
	if r.frozen {
		return ErrFrozen
	}
	if _, ok := r.defs[def.name]; ok {
		return &DuplicateNameError{Name: def.name}
	}
	r.defs[def.name] = def
	r.order = append(r.order, def.name)
	return nil
}

// Get returns the definition for name or an UnknownEnvironmentError.
func (r *Registry) Get(name string) (Definition, error) {
	def, ok := r.defs[name]
	if !ok {
		return Definition{}, &UnknownEnvironmentError{Name: name, Known: r.Names()}
	}
	return def, nil
}

// Names returns all environment names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// DefaultNames returns the descriptor's env_list.
func (r *Registry) DefaultNames() []string {
	return append([]string(nil), r.defaults...)
}

// Descriptor returns the descriptor the registry was built from.
func (r *Registry) Descriptor() *descriptor.Descriptor { return r.source }

// Freeze forbids further registration.
func (r *Registry) Freeze() { r.frozen = true }
