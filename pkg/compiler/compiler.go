// Package compiler composes the full pipeline: source text to SQL.
//
// Each phase returns a typed error; the first failure stops compilation
// and is wrapped with the phase that produced it. No partial SQL is ever
// emitted.
package compiler

import (
	"fmt"

	"github.com/pipelang/pipelang/pkg/dialect"
	// Register the built-in dialects.
	_ "github.com/pipelang/pipelang/pkg/dialects/postgres"
	_ "github.com/pipelang/pipelang/pkg/dialects/sqlite"
	_ "github.com/pipelang/pipelang/pkg/dialects/sqlserver"
	"github.com/pipelang/pipelang/pkg/parser"
	"github.com/pipelang/pipelang/pkg/query"
	"github.com/pipelang/pipelang/pkg/render"
	"github.com/pipelang/pipelang/pkg/resolver"
	"github.com/pipelang/pipelang/pkg/token"
)

// Stage identifies the compilation phase that failed.
type Stage string

// Compilation phases, in execution order.
const (
	StageParse   Stage = "parse"
	StageResolve Stage = "resolve"
	StageBuild   Stage = "build"
	StageRender  Stage = "render"
)

// CompileError wraps a phase failure with the phase name and, where
// available, a source position.
type CompileError struct {
	Stage Stage
	Pos   token.Position
	Err   error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s: %s", e.Stage, e.Err)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// Compile translates pipeline source into SQL text for the named dialect.
func Compile(source, dialectName string) (string, error) {
	d, ok := dialect.Get(dialectName)
	if !ok {
		return "", &CompileError{
			Stage: StageRender,
			Err:   fmt.Errorf("%w: %s", dialect.ErrUnknownDialect, dialectName),
		}
	}

	stmt, err := CompileToStatement(source)
	if err != nil {
		return "", err
	}

	sql, err := render.Render(stmt, d)
	if err != nil {
		return "", &CompileError{Stage: StageRender, Err: err}
	}
	return sql, nil
}

// CompileToStatement runs the front half of the pipeline, producing the
// query IR without rendering it. The schema-aware code generation layer
// consumes this to narrow parameter types before choosing a renderer.
func CompileToStatement(source string) (*query.Statement, error) {
	prog, err := parser.Parse(source)
	if err != nil {
		return nil, &CompileError{Stage: StageParse, Pos: errPosition(err), Err: err}
	}

	pipe, err := resolver.Resolve(prog)
	if err != nil {
		return nil, &CompileError{Stage: StageResolve, Err: err}
	}

	stmt, err := query.Build(pipe)
	if err != nil {
		return nil, &CompileError{Stage: StageBuild, Pos: errPosition(err), Err: err}
	}
	return stmt, nil
}

// errPosition extracts a source position from a typed phase error.
func errPosition(err error) token.Position {
	switch e := err.(type) {
	case *parser.ParseError:
		return e.Pos
	case *query.BuildError:
		return e.Pos
	default:
		return token.Position{}
	}
}
