// Package resolver expands let-bound sub-pipeline references.
//
// Join targets and set-operation operands name let bindings; resolution
// substitutes each referenced pipeline's stage list in place, depth-first,
// copying by value per use site so two inlined copies never alias. A name
// transitively referencing itself is a cycle error; a name with no binding
// is an undefined-reference error. Both are compile errors, never panics.
package resolver

import (
	"fmt"
	"strings"

	"github.com/pipelang/pipelang/pkg/parser"
)

// UndefinedError reports a reference to a name with no let binding.
type UndefinedError struct {
	Name string
}

func (e *UndefinedError) Error() string {
	return fmt.Sprintf("undefined pipeline reference %q", e.Name)
}

// CycleError reports a let binding that transitively references itself.
type CycleError struct {
	Path []string // reference chain ending at the repeated name
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cyclic pipeline reference: %s", strings.Join(e.Path, " -> "))
}

// Resolve expands all let references in the program's main pipeline and
// returns the resolved copy. The input program is not mutated.
func Resolve(prog *parser.Program) (*parser.Pipeline, error) {
	r := &resolver{prog: prog, visiting: make(map[string]bool)}
	return r.resolvePipeline(prog.Main)
}

type resolver struct {
	prog *parser.Program

	// visiting tracks the let names on the current expansion path for
	// cycle detection. Diamond references are fine: a name is only on the
	// path while one of its expansions is in progress, and each use site
	// gets an independent copy.
	visiting map[string]bool
	path     []string
}

// resolvePipeline deep-copies the pipeline and expands every reference in it.
func (r *resolver) resolvePipeline(pipe *parser.Pipeline) (*parser.Pipeline, error) {
	out := pipe.Clone()

	// The source itself may be a let reference: the referenced stages run
	// before this pipeline's own.
	if b := r.prog.Let(out.Source); b != nil {
		inlined, err := r.expand(b)
		if err != nil {
			return nil, err
		}
		out.Source = inlined.Source
		out.Stages = append(inlined.Stages, out.Stages...)
	}

	for _, stage := range out.Stages {
		switch st := stage.(type) {
		case *parser.JoinStage:
			target, err := r.lookup(st.Target)
			if err != nil {
				return nil, err
			}
			st.Resolved = target
		case *parser.SetOpStage:
			target, err := r.lookup(st.Target)
			if err != nil {
				return nil, err
			}
			st.Resolved = target
		}
	}

	return out, nil
}

// lookup finds a binding by name and returns its expansion.
func (r *resolver) lookup(name string) (*parser.Pipeline, error) {
	b := r.prog.Let(name)
	if b == nil {
		return nil, &UndefinedError{Name: name}
	}
	return r.expand(b)
}

// expand resolves a binding's own pipeline, guarding against cycles.
func (r *resolver) expand(b *parser.LetBinding) (*parser.Pipeline, error) {
	if r.visiting[b.Name] {
		return nil, &CycleError{Path: append(append([]string(nil), r.path...), b.Name)}
	}
	r.visiting[b.Name] = true
	r.path = append(r.path, b.Name)
	defer func() {
		delete(r.visiting, b.Name)
		r.path = r.path[:len(r.path)-1]
	}()

	return r.resolvePipeline(b.Pipeline)
}
