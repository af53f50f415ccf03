package query

import (
	"fmt"

	"github.com/pipelang/pipelang/pkg/token"
)

// BuildError reports a pipeline that cannot be lowered into the query IR.
// Build errors surface eagerly, never at render time.
type BuildError struct {
	Pos     token.Position
	Message string
}

func (e *BuildError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("build error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
	}
	return "build error: " + e.Message
}

// buildErrf constructs a BuildError at the given position.
func buildErrf(pos token.Position, format string, args ...any) *BuildError {
	return &BuildError{Pos: pos, Message: fmt.Sprintf(format, args...)}
}
