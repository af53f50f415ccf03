package parser

import (
	"strconv"
	"strings"

	"github.com/pipelang/pipelang/pkg/token"
)

// Lexer tokenizes pipeline query language input.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      byte // current char under examination
	line    int  // current line number (1-based)
	col     int  // current column number (1-based)
}

// NewLexer creates a new Lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
		col:   0,
	}
	l.readChar()
	return l
}

// readChar advances to the next character.
func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0 // ASCII NUL = EOF
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++

	if l.ch == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
}

// peekChar returns the next character without advancing.
func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

// currentPos returns the current position.
func (l *Lexer) currentPos() token.Position {
	return token.Position{
		Line:   l.line,
		Column: l.col,
		Offset: l.pos,
	}
}

// NextToken returns the next token.
func (l *Lexer) NextToken() token.Token {
	l.skipWhitespaceAndComments()

	pos := l.currentPos()

	var tok token.Token
	tok.Pos = pos

	switch l.ch {
	case 0:
		tok.Type = token.EOF
		tok.Literal = ""
	case '|':
		switch l.peekChar() {
		case '>':
			l.readChar()
			tok = token.Token{Type: token.PIPE, Literal: "|>", Pos: pos}
		case '|':
			l.readChar()
			tok = token.Token{Type: token.OR, Literal: "||", Pos: pos}
		default:
			tok = l.illegal(pos, "unexpected character '|'")
		}
	case '&':
		if l.peekChar() == '&' {
			l.readChar()
			tok = token.Token{Type: token.AND, Literal: "&&", Pos: pos}
		} else {
			tok = l.illegal(pos, "unexpected character '&'")
		}
	case '=':
		switch l.peekChar() {
		case '=':
			l.readChar()
			tok = token.Token{Type: token.EQ, Literal: "==", Pos: pos}
		case '>':
			l.readChar()
			tok = token.Token{Type: token.ARROW, Literal: "=>", Pos: pos}
		default:
			tok = l.newToken(token.ASSIGN, "=")
		}
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			tok = token.Token{Type: token.NE, Literal: "!=", Pos: pos}
		} else {
			tok = l.illegal(pos, "unexpected character '!'")
		}
	case '<':
		if l.peekChar() == '=' {
			l.readChar()
			tok = token.Token{Type: token.LE, Literal: "<=", Pos: pos}
		} else {
			tok = l.newToken(token.LT, "<")
		}
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			tok = token.Token{Type: token.GE, Literal: ">=", Pos: pos}
		} else {
			tok = l.newToken(token.GT, ">")
		}
	case '.':
		tok = l.newToken(token.DOT, ".")
	case ',':
		tok = l.newToken(token.COMMA, ",")
	case '(':
		tok = l.newToken(token.LPAREN, "(")
	case ')':
		tok = l.newToken(token.RPAREN, ")")
	case '*':
		tok = l.newToken(token.STAR, "*")
	case '@':
		if !isLetter(l.peekChar()) && l.peekChar() != '_' {
			tok = l.illegal(pos, "expected parameter name after '@'")
			break
		}
		l.readChar() // skip '@'
		tok.Type = token.PARAM
		tok.Literal = l.readIdentifier()
		tok.Pos = pos
		return tok
	case '"':
		lit, ok := l.readString()
		if !ok {
			return l.illegal(pos, ErrUnterminatedString)
		}
		tok.Type = token.STRING
		tok.Literal = lit
		tok.Pos = pos
		return tok
	default:
		switch {
		case isLetter(l.ch) || l.ch == '_':
			tok.Literal = l.readIdentifier()
			tok.Type = token.LookupIdent(strings.ToLower(tok.Literal))
			tok.Pos = pos
			return tok
		case isDigit(l.ch):
			tok.Type = token.NUMBER
			tok.Literal = l.readNumber()
			tok.Pos = pos
			return tok
		default:
			tok = l.illegal(pos, "unexpected character "+quoteChar(l.ch))
		}
	}

	l.readChar()
	return tok
}

// newToken creates a new token at the current position.
func (l *Lexer) newToken(tokenType token.Type, literal string) token.Token {
	return token.Token{Type: tokenType, Literal: literal, Pos: l.currentPos()}
}

// illegal creates an ILLEGAL token whose literal carries the diagnostic.
// The parser surfaces the literal verbatim as the ParseError message.
func (l *Lexer) illegal(pos token.Position, msg string) token.Token {
	return token.Token{Type: token.ILLEGAL, Literal: msg, Pos: pos}
}

// skipWhitespaceAndComments skips whitespace and // line comments.
func (l *Lexer) skipWhitespaceAndComments() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
			l.readChar()
		}

		if l.ch == '/' && l.peekChar() == '/' {
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
			continue
		}

		break
	}
}

// readString reads a double-quoted string literal.
// Handles doubled quotes as escape: "it""s" -> it"s.
// Returns false if the string is unterminated.
func (l *Lexer) readString() (string, bool) {
	l.readChar() // skip opening quote

	var result strings.Builder
	for {
		switch l.ch {
		case 0:
			return "", false
		case '\n':
			return "", false
		case '"':
			if l.peekChar() == '"' {
				result.WriteByte('"')
				l.readChar() // skip first quote
				l.readChar() // skip second quote
			} else {
				l.readChar() // skip closing quote
				return result.String(), true
			}
		default:
			result.WriteByte(l.ch)
			l.readChar()
		}
	}
}

// readIdentifier reads an unquoted identifier.
func (l *Lexer) readIdentifier() string {
	start := l.pos
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}
	return l.input[start:l.pos]
}

// readNumber reads a numeric literal (integer or decimal).
func (l *Lexer) readNumber() string {
	start := l.pos

	for isDigit(l.ch) {
		l.readChar()
	}

	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar() // skip '.'
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	return l.input[start:l.pos]
}

// isLetter returns true if ch is an ASCII letter. The lexer scans raw
// bytes, so non-ASCII input surfaces as an ILLEGAL token rather than
// being misread as Latin-1.
func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

// isDigit returns true if ch is a digit.
func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

// quoteChar formats a byte for a diagnostic message, escaping anything
// outside printable ASCII.
func quoteChar(ch byte) string {
	return strconv.Quote(string(ch))
}

// Tokenize returns all tokens from the input, including the trailing EOF.
func Tokenize(input string) []token.Token {
	l := NewLexer(input)
	var tokens []token.Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	return tokens
}
