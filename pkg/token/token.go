// Package token defines the lexical tokens of the pipeline query language.
package token

import "fmt"

// Type represents the type of a lexical token.
type Type int32

const (
	// Special tokens
	EOF Type = iota
	ILLEGAL

	// Literals
	IDENT  // users, Age
	NUMBER // 123, 45.67
	STRING // "hello"
	PARAM  // @minAge

	// Operators
	PIPE   // |>
	ARROW  // =>
	ASSIGN // =
	EQ     // ==
	NE     // !=
	LT     // <
	GT     // >
	LE     // <=
	GE     // >=
	AND    // &&
	OR     // ||
	DOT    // .
	COMMA  // ,
	LPAREN // (
	RPAREN // )
	STAR   // *

	// Keywords
	LET
	FN
	SELECT
	FILTER
	JOIN
	LEFT_JOIN
	RIGHT_JOIN
	CROSS_JOIN
	GROUP_BY
	HAVING
	ORDER_BY
	DISTINCT
	LIMIT
	OFFSET
	TAKE
	SKIP
	UNION
	UNION_ALL
	INTERSECT
	EXCEPT
	ON
	AS
	ASC
	DESC
	TRUE
	FALSE
	NULL
)

// String returns a human-readable representation of the token type.
func (t Type) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TOKEN(%d)", t)
}

// tokenNames maps token types to their string representations.
var tokenNames = map[Type]string{
	EOF:     "EOF",
	ILLEGAL: "ILLEGAL",

	IDENT:  "IDENT",
	NUMBER: "NUMBER",
	STRING: "STRING",
	PARAM:  "PARAM",

	PIPE:   "|>",
	ARROW:  "=>",
	ASSIGN: "=",
	EQ:     "==",
	NE:     "!=",
	LT:     "<",
	GT:     ">",
	LE:     "<=",
	GE:     ">=",
	AND:    "&&",
	OR:     "||",
	DOT:    ".",
	COMMA:  ",",
	LPAREN: "(",
	RPAREN: ")",
	STAR:   "*",

	LET:        "let",
	FN:         "fn",
	SELECT:     "select",
	FILTER:     "filter",
	JOIN:       "join",
	LEFT_JOIN:  "left_join",
	RIGHT_JOIN: "right_join",
	CROSS_JOIN: "cross_join",
	GROUP_BY:   "group_by",
	HAVING:     "having",
	ORDER_BY:   "order_by",
	DISTINCT:   "distinct",
	LIMIT:      "limit",
	OFFSET:     "offset",
	TAKE:       "take",
	SKIP:       "skip",
	UNION:      "union",
	UNION_ALL:  "union_all",
	INTERSECT:  "intersect",
	EXCEPT:     "except",
	ON:         "on",
	AS:         "as",
	ASC:        "asc",
	DESC:       "desc",
	TRUE:       "true",
	FALSE:      "false",
	NULL:       "null",
}

// keywords maps lowercase keyword strings to their token types.
// The lexer lowercases identifiers before lookup, so ASC and asc are the
// same direction marker while identifier literals keep their casing.
var keywords = map[string]Type{
	"let":        LET,
	"fn":         FN,
	"select":     SELECT,
	"filter":     FILTER,
	"join":       JOIN,
	"left_join":  LEFT_JOIN,
	"right_join": RIGHT_JOIN,
	"cross_join": CROSS_JOIN,
	"group_by":   GROUP_BY,
	"having":     HAVING,
	"order_by":   ORDER_BY,
	"distinct":   DISTINCT,
	"limit":      LIMIT,
	"offset":     OFFSET,
	"take":       TAKE,
	"skip":       SKIP,
	"union":      UNION,
	"union_all":  UNION_ALL,
	"intersect":  INTERSECT,
	"except":     EXCEPT,
	"on":         ON,
	"as":         AS,
	"asc":        ASC,
	"desc":       DESC,
	"true":       TRUE,
	"false":      FALSE,
	"null":       NULL,
}

// LookupIdent returns the token type for the given identifier.
// If the identifier is a keyword, the keyword token type is returned.
// Otherwise, IDENT is returned.
func LookupIdent(ident string) Type {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// IsStageKeyword returns true if the token type introduces a pipeline stage.
func IsStageKeyword(t Type) bool {
	return t >= SELECT && t <= EXCEPT
}

// IsComparison returns true if the token type is a comparison operator.
func IsComparison(t Type) bool {
	return t >= EQ && t <= GE
}

// Token represents a lexical token with position information.
type Token struct {
	Type    Type
	Literal string
	Pos     Position
}
