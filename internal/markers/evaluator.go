// SPDX-License-Identifier: MPL-2.0

package markers

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

const compareFunc = "cmp"

// ErrInvalidMarker is returned when a marker cannot be compiled or evaluated.
var ErrInvalidMarker = errors.New("invalid environment marker")

var comparisonPattern = regexp.MustCompile(
	`('[^']*'|"[^"]*"|[A-Za-z_][A-Za-z0-9_]*)\s*(===|==|!=|~=|<=|>=|<|>|\bnot\s+in\b|\bin\b)\s*('[^']*'|"[^"]*"|[A-Za-z_][A-Za-z0-9_]*)`,
)

type (
	// InvalidMarkerError reports a marker that failed to compile or run.
	InvalidMarkerError struct {
		Marker string
		Err    error
	}

	// Diagnostic is a non-fatal finding produced while filtering.
	Diagnostic struct {
		Package string
		Message string
	}

	// Evaluator decides markers against a fixed set of facts. Compiled
	// programs are cached per marker text.
	Evaluator struct {
		facts    Facts
		env      map[string]any
		programs map[string]*vm.Program
	}
)

// Error implements the error interface.
func (e *InvalidMarkerError) Error() string {
	return fmt.Sprintf("invalid marker %q: %v", e.Marker, e.Err)
}

// Unwrap returns ErrInvalidMarker for errors.Is() compatibility.
func (e *InvalidMarkerError) Unwrap() error { return ErrInvalidMarker }

// String renders the diagnostic.
func (d Diagnostic) String() string { return d.Package + ": " + d.Message }

// NewEvaluator creates an Evaluator for facts.
func NewEvaluator(facts Facts) *Evaluator {
	env := make(map[string]any, len(facts)+1)
	for k, v := range facts {
		env[k] = v
	}
	env[compareFunc] = compare
	return &Evaluator{
		facts:    facts,
		env:      env,
		programs: make(map[string]*vm.Program),
	}
}

// Facts returns the facts the evaluator decides against.
func (e *Evaluator) Facts() Facts { return e.facts.With(nil) }

// Eval reports whether marker holds. The empty marker always holds.
func (e *Evaluator) Eval(marker string) (bool, error) {
	marker = normaliseMarker(marker)
	if marker == "" {
		return true, nil
	}
	program, err := e.compile(marker)
	if err != nil {
		return false, err
	}
	out, err := expr.Run(program, e.env)
	if err != nil {
		return false, &InvalidMarkerError{Marker: marker, Err: err}
	}
	result, ok := out.(bool)
	if !ok {
		return false, &InvalidMarkerError{Marker: marker, Err: fmt.Errorf("result is %T, not bool", out)}
	}
	return result, nil
}

// Filter keeps the dependencies whose marker holds, in declared order.
// A package kept under two different markers is reported as a diagnostic.
func (e *Evaluator) Filter(deps []Dependency) ([]Dependency, []Diagnostic, error) {
	kept := make([]Dependency, 0, len(deps))
	markersFor := make(map[string]string)
	var diags []Diagnostic
	for _, d := range Dedupe(deps) {
		ok, err := e.Eval(d.Marker)
		if err != nil {
			return nil, nil, fmt.Errorf("dependency %q: %w", d.Requirement, err)
		}
		if !ok {
			continue
		}
		if d.Name != "" {
			if prev, seen := markersFor[d.Name]; seen {
				diags = append(diags, Diagnostic{
					Package: d.Name,
					Message: fmt.Sprintf("kept under both %s and %s", describeMarker(prev), describeMarker(d.Marker)),
				})
			} else {
				markersFor[d.Name] = d.Marker
			}
		}
		kept = append(kept, d)
	}
	return kept, diags, nil
}

func (e *Evaluator) compile(marker string) (*vm.Program, error) {
	if p, ok := e.programs[marker]; ok {
		return p, nil
	}
	p, err := expr.Compile(rewrite(marker), expr.Env(e.env), expr.AsBool())
	if err != nil {
		return nil, &InvalidMarkerError{Marker: marker, Err: err}
	}
	e.programs[marker] = p
	return p, nil
}

// rewrite turns every comparison into a call of the comparison function,
// leaving and/or/not and parentheses to expr.
func rewrite(marker string) string {
	return comparisonPattern.ReplaceAllStringFunc(marker, func(atom string) string {
		m := comparisonPattern.FindStringSubmatch(atom)
		op := strings.Join(strings.Fields(m[2]), " ")
		return fmt.Sprintf("%s(%s, %s, %s)", compareFunc, m[1], strconv.Quote(op), m[3])
	})
}

func describeMarker(m string) string {
	if m == "" {
		return "no marker"
	}
	return "marker " + strconv.Quote(m)
}
