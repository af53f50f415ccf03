// Package sqlite provides the SQLite dialect definition.
// This package is pure Go with no database driver dependencies.
package sqlite

import "github.com/pipelang/pipelang/pkg/dialect"

// Config is the SQLite dialect configuration. Pure data, read by the
// builder in dialect.go.
var Config = &dialect.Config{
	Name:             "sqlite",
	Placeholder:      dialect.PlaceholderQuestion,
	Paging:           dialect.PagingLimitOffset,
	Bools:            dialect.BoolInteger,
	OffsetNeedsLimit: true,
	Identifiers: dialect.IdentifierConfig{
		Quote:         `"`,
		QuoteEnd:      `"`,
		Escape:        `""`,
		Normalization: dialect.NormCaseInsensitive,
	},
}
