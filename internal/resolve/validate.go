// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"errors"
	"slices"

	"github.com/envrun/envrun/internal/dag"
	"github.com/envrun/envrun/pkg/descriptor"
)

// Validate checks every reference in d without expanding anything. It
// reports each reference to a missing section/key and, when the reference
// graph is not acyclic, one ReferenceCycleError whose chain walks the cycle.
func Validate(d *descriptor.Descriptor) []error {
	g := dag.New[FieldID]()
	var errs []error

	declared := func(ref FieldID) bool {
		s, ok := d.Section(ref.Section)
		if !ok {
			return false
		}
		_, ok = s.Field(ref.Key)
		return ok
	}

	for _, s := range d.Sections() {
		for _, key := range s.Keys() {
			owner := FieldID{Section: s.Name(), Key: key}
			g.AddNode(owner)

			v, _ := s.Field(key)
			for _, ref := range v.References() {
				target := FieldID(ref)
				if !declared(target) {
					errs = append(errs, &UnresolvedReferenceError{Ref: target, From: owner})
					continue
				}
				// The referenced field must be resolved before its referrer.
				g.AddEdge(target, owner)
			}
		}
	}

	if _, err := g.TopologicalSort(); err != nil {
		var cycleErr *dag.CycleError[FieldID]
		if !errors.As(err, &cycleErr) {
			return append(errs, err)
		}
		// Edges run from referenced to referrer; report in reference order.
		chain := slices.Clone(cycleErr.Cycle)
		slices.Reverse(chain)
		errs = append(errs, &ReferenceCycleError{Chain: chain})
	}

	return errs
}
