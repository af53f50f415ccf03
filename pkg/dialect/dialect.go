// Package dialect provides SQL dialect configuration: identifier quoting,
// placeholder formatting, paging style, and reserved-word handling.
//
// Concrete dialect definitions are registered from pkg/dialects/*/
// packages; renderers look them up through the registry and never embed
// dialect-specific constants themselves.
package dialect

import (
	"strconv"
	"strings"
)

// NormalizationStrategy defines how unquoted identifiers are normalized.
type NormalizationStrategy int

const (
	// NormLowercase normalizes unquoted identifiers to lowercase (Postgres).
	NormLowercase NormalizationStrategy = iota
	// NormUppercase normalizes unquoted identifiers to uppercase.
	NormUppercase
	// NormCaseInsensitive compares identifiers case-insensitively without
	// folding them in output (SQLite, SQL Server).
	NormCaseInsensitive
)

// PlaceholderStyle defines how statement parameters are formatted.
type PlaceholderStyle int

const (
	// PlaceholderQuestion uses ? for all parameters (SQLite, MySQL).
	PlaceholderQuestion PlaceholderStyle = iota
	// PlaceholderDollar uses $1, $2, etc. (PostgreSQL).
	PlaceholderDollar
	// PlaceholderAtName uses @name (SQL Server).
	PlaceholderAtName
)

// PagingStyle defines how limit/offset render.
type PagingStyle int

const (
	// PagingLimitOffset renders LIMIT n OFFSET m.
	PagingLimitOffset PagingStyle = iota
	// PagingOffsetFetch renders OFFSET m ROWS FETCH NEXT n ROWS ONLY,
	// with TOP n when only a limit is present.
	PagingOffsetFetch
)

// BoolStyle defines how boolean literals render.
type BoolStyle int

const (
	// BoolKeyword renders TRUE and FALSE.
	BoolKeyword BoolStyle = iota
	// BoolInteger renders 1 and 0 (SQLite, SQL Server).
	BoolInteger
)

// IdentifierConfig defines how identifiers are quoted and normalized.
type IdentifierConfig struct {
	Quote         string // opening quote: " or [
	QuoteEnd      string // closing quote, ] for [
	Escape        string // escape sequence for an embedded closing quote
	Normalization NormalizationStrategy
}

// Config is a dialect's static configuration. Pure data, no behavior.
type Config struct {
	Name          string
	Identifiers   IdentifierConfig
	Placeholder   PlaceholderStyle
	Paging        PagingStyle
	Bools         BoolStyle
	ReservedWords []string

	// OffsetNeedsLimit marks dialects whose grammar only accepts OFFSET
	// after a LIMIT clause (SQLite). Renderers emit LIMIT -1 when an
	// offset is requested without a limit.
	OffsetNeedsLimit bool
}

// Dialect is a registered SQL dialect.
type Dialect struct {
	Name             string
	Identifiers      IdentifierConfig
	Placeholder      PlaceholderStyle
	Paging           PagingStyle
	Bools            BoolStyle
	OffsetNeedsLimit bool

	reservedWords map[string]struct{}
}

// NormalizeName normalizes an identifier according to dialect rules.
func (d *Dialect) NormalizeName(name string) string {
	switch d.Identifiers.Normalization {
	case NormUppercase:
		return strings.ToUpper(name)
	default:
		return strings.ToLower(name)
	}
}

// IsReservedWord reports whether the word needs quoting when used as an
// identifier.
func (d *Dialect) IsReservedWord(word string) bool {
	_, ok := d.reservedWords[d.NormalizeName(word)]
	return ok
}

// QuoteIdentifier quotes an identifier using the dialect's quote
// characters, escaping embedded closing quotes.
func (d *Dialect) QuoteIdentifier(name string) string {
	escaped := strings.ReplaceAll(name, d.Identifiers.QuoteEnd, d.Identifiers.Escape)
	return d.Identifiers.Quote + escaped + d.Identifiers.QuoteEnd
}

// QuoteIdentifierIfNeeded quotes an identifier only when it is a reserved
// word or is not a plain identifier.
func (d *Dialect) QuoteIdentifierIfNeeded(name string) string {
	if d.IsReservedWord(name) || !isPlainIdentifier(name) {
		return d.QuoteIdentifier(name)
	}
	return name
}

// isPlainIdentifier reports whether the name can appear unquoted:
// a letter or underscore followed by letters, digits, or underscores.
func isPlainIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// FormatPlaceholder returns the parameter marker for the given 1-based
// index and name.
func (d *Dialect) FormatPlaceholder(index int, name string) string {
	switch d.Placeholder {
	case PlaceholderDollar:
		return "$" + strconv.Itoa(index)
	case PlaceholderAtName:
		return "@" + name
	default:
		return "?"
	}
}

// FormatBool returns the dialect's spelling of a boolean literal.
func (d *Dialect) FormatBool(v bool) string {
	if d.Bools == BoolInteger {
		if v {
			return "1"
		}
		return "0"
	}
	if v {
		return "TRUE"
	}
	return "FALSE"
}

// Builder provides a fluent API for constructing dialects.
type Builder struct {
	dialect *Dialect
}

// New creates a dialect builder from a Config.
func New(cfg *Config) *Builder {
	b := &Builder{
		dialect: &Dialect{
			Name:             cfg.Name,
			Identifiers:      cfg.Identifiers,
			Placeholder:      cfg.Placeholder,
			Paging:           cfg.Paging,
			Bools:            cfg.Bools,
			OffsetNeedsLimit: cfg.OffsetNeedsLimit,
			reservedWords:    make(map[string]struct{}),
		},
	}
	b.WithReservedWords(cfg.ReservedWords...)
	return b
}

// WithReservedWords registers words that need quoting as identifiers.
func (b *Builder) WithReservedWords(words ...string) *Builder {
	for _, w := range words {
		b.dialect.reservedWords[b.dialect.NormalizeName(w)] = struct{}{}
	}
	return b
}

// Build returns the constructed dialect.
func (b *Builder) Build() *Dialect {
	return b.dialect
}
