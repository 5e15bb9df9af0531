// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/envrun/envrun/pkg/descriptor"
)

var (
	// ErrUnresolvedReference is the sentinel error wrapped by UnresolvedReferenceError.
	ErrUnresolvedReference = errors.New("unresolved reference")
	// ErrReferenceCycle is the sentinel error wrapped by ReferenceCycleError.
	ErrReferenceCycle = errors.New("reference cycle")
)

type (
	// FieldID identifies one field of one section.
	FieldID struct {
		Section string
		Key     string
	}

	// UnresolvedReferenceError reports a reference to a missing section or key.
	UnresolvedReferenceError struct {
		Ref FieldID
		// From is the field holding the reference; zero when resolving a top-level lookup.
		From FieldID
	}

	// ReferenceCycleError reports a reference chain that revisits a field.
	// Chain starts and ends with the same field.
	ReferenceCycleError struct {
		Chain []FieldID
	}

	// Resolver expands references against one descriptor. A Resolver memoises
	// every field it resolves and is not safe for concurrent use; create one
	// per resolution pass.
	Resolver struct {
		source   *descriptor.Descriptor
		memo     map[FieldID][]string
		visiting map[FieldID]bool
		stack    []FieldID
	}
)

// String renders the field as [section]key.
func (f FieldID) String() string {
	return "[" + f.Section + "]" + f.Key
}

func (e *UnresolvedReferenceError) Error() string {
	if e.From == (FieldID{}) {
		return fmt.Sprintf("unresolved reference {%s}", e.Ref)
	}
	return fmt.Sprintf("unresolved reference {%s} in %s", e.Ref, e.From)
}

// Unwrap returns ErrUnresolvedReference for errors.Is() compatibility.
func (e *UnresolvedReferenceError) Unwrap() error { return ErrUnresolvedReference }

func (e *ReferenceCycleError) Error() string {
	parts := make([]string, len(e.Chain))
	for i, f := range e.Chain {
		parts[i] = f.String()
	}
	return "reference cycle: " + strings.Join(parts, " -> ")
}

// Unwrap returns ErrReferenceCycle for errors.Is() compatibility.
func (e *ReferenceCycleError) Unwrap() error { return ErrReferenceCycle }

// New creates a resolver over d.
func New(d *descriptor.Descriptor) *Resolver {
	return &Resolver{
		source:   d,
		memo:     make(map[FieldID][]string),
		visiting: make(map[FieldID]bool),
	}
}

// Field resolves key of section.
func (r *Resolver) Field(section, key string) ([]string, error) {
	out, err := r.resolveField(FieldID{Section: section, Key: descriptor.CanonicalKey(key)}, FieldID{})
	if err != nil {
		return nil, err
	}
	return slices.Clone(out), nil
}

// Expand resolves an arbitrary value as if it were the field owner.
// Already-resolved input (no references) comes back unchanged.
func (r *Resolver) Expand(owner FieldID, v descriptor.Value) ([]string, error) {
	if r.visiting[owner] {
		return nil, r.cycleAt(owner)
	}
	r.push(owner)
	defer r.pop(owner)
	return r.expand(owner, v)
}

// EnvField resolves key for an environment: the environment's own section
// first, then the base section. ok is false when neither declares the key.
func (r *Resolver) EnvField(env string, key string) (lines []string, ok bool, err error) {
	key = descriptor.CanonicalKey(key)
	for _, section := range []string{descriptor.EnvSectionName(env), descriptor.BaseSection} {
		if !r.declares(section, key) {
			continue
		}
		lines, err := r.Field(section, key)
		if err != nil {
			return nil, true, err
		}
		return lines, true, nil
	}
	return nil, false, nil
}

func (r *Resolver) declares(section, key string) bool {
	s, ok := r.source.Section(section)
	if !ok {
		return false
	}
	_, ok = s.Field(key)
	return ok
}

func (r *Resolver) resolveField(id, from FieldID) ([]string, error) {
	if out, ok := r.memo[id]; ok {
		return out, nil
	}
	if r.visiting[id] {
		return nil, r.cycleAt(id)
	}

	s, ok := r.source.Section(id.Section)
	if !ok {
		return nil, &UnresolvedReferenceError{Ref: id, From: from}
	}
	v, ok := s.Field(id.Key)
	if !ok {
		return nil, &UnresolvedReferenceError{Ref: id, From: from}
	}

	r.push(id)
	out, err := r.expand(id, v)
	r.pop(id)
	if err != nil {
		return nil, err
	}

	r.memo[id] = out
	return out, nil
}

func (r *Resolver) expand(owner FieldID, v descriptor.Value) ([]string, error) {
	out := make([]string, 0, len(v))
	for _, line := range v {
		if ref, ok := line.SoleReference(); ok {
			lines, err := r.resolveField(FieldID(ref), owner)
			if err != nil {
				return nil, err
			}
			out = append(out, lines...)
			continue
		}
		if !line.HasReferences() {
			out = append(out, line.String())
			continue
		}

		var sb strings.Builder
		for _, part := range line {
			if part.Ref == nil {
				sb.WriteString(part.Text)
				continue
			}
			lines, err := r.resolveField(FieldID(*part.Ref), owner)
			if err != nil {
				return nil, err
			}
			sb.WriteString(strings.Join(lines, " "))
		}
		out = append(out, sb.String())
	}
	return out, nil
}

func (r *Resolver) push(id FieldID) {
	r.visiting[id] = true
	r.stack = append(r.stack, id)
}

func (r *Resolver) pop(id FieldID) {
	delete(r.visiting, id)
	r.stack = r.stack[:len(r.stack)-1]
}

// cycleAt builds the chain from the first visit of id to the current field.
func (r *Resolver) cycleAt(id FieldID) error {
	start := slices.Index(r.stack, id)
	chain := append(slices.Clone(r.stack[start:]), id)
	return &ReferenceCycleError{Chain: chain}
}
