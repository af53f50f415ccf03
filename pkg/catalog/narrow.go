package catalog

import (
	"strings"

	"github.com/pipelang/pipelang/pkg/query"
)

// NarrowParams returns a copy of params with the default SQL types
// replaced by real column types wherever a parameter name matches a
// column name, compared case-insensitively. Parameters with no matching
// column keep their current type.
func NarrowParams(params []query.Param, columns []Column) []query.Param {
	byName := make(map[string]string, len(columns))
	for _, col := range columns {
		byName[strings.ToLower(col.Name)] = col.Type
	}

	out := make([]query.Param, len(params))
	for i, p := range params {
		if t, ok := byName[strings.ToLower(p.Name)]; ok {
			p.SQLType = t
		}
		out[i] = p
	}
	return out
}
