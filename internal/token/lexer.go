package token

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/filipkocis/drumnbase/internal/ast"
)

// multiCharOperators lists every multi-character operator/symbol spelling,
// longest first so the scanner matches greedily (§4.3: "Multi-character
// operators are matched longest-first").
var multiCharOperators = []string{
	"<<=", ">>=",
	"->",
	"==", "!=", "<=", ">=", "&&", "||", "<<", ">>",
	"++", "--",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=",
}

var singleCharSymbols = map[byte]bool{
	'{': true, '}': true, '(': true, ')': true, '[': true, ']': true,
	',': true, '.': true, ';': true, ':': true, '?': true,
}

var singleCharOperators = map[byte]bool{
	'+': true, '-': true, '*': true, '/': true, '%': true,
	'=': true, '<': true, '>': true, '!': true,
	'&': true, '|': true, '^': true,
}

// lexer scans one source string into a Token slice.
type lexer struct {
	src   string
	pos   int // byte offset
	line  int
	start int // start of the token currently being scanned
}

// Tokenize converts src into a token stream terminated by a KindEOF token.
// It returns the first error encountered; the tokenizer, unlike the parser,
// does not attempt multi-error recovery (§4.3/§4.4 draw this distinction:
// lex errors are fatal, parse errors accumulate).
func Tokenize(src string) ([]Token, error) {
	l := &lexer{src: src, line: 1}
	var out []Token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		out = append(out, tok)
		if tok.Kind == KindEOF {
			return out, nil
		}
	}
}

func (l *lexer) span() ast.Span {
	return ast.Span{Start: l.start, End: l.pos, Line: l.line}
}

func (l *lexer) eof() bool { return l.pos >= len(l.src) }

func (l *lexer) peek() byte {
	if l.eof() {
		return 0
	}
	return l.src[l.pos]
}

func (l *lexer) peekAt(offset int) byte {
	if l.pos+offset >= len(l.src) {
		return 0
	}
	return l.src[l.pos+offset]
}

func (l *lexer) advance() byte {
	b := l.src[l.pos]
	l.pos++
	if b == '\n' {
		l.line++
	}
	return b
}

func (l *lexer) skipWhitespace() {
	for !l.eof() {
		switch l.peek() {
		case ' ', '\t', '\r', '\n':
			l.advance()
		default:
			return
		}
	}
}

func isIdentStart(r rune) bool { return r == '_' || unicode.IsLetter(r) }
func isIdentCont(r rune) bool  { return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) }

func (l *lexer) next() (Token, error) {
	l.skipWhitespace()
	l.start = l.pos
	if l.eof() {
		return Token{Kind: KindEOF, Span: l.span()}, nil
	}

	c := l.peek()
	switch {
	case c == '"' || c == '\'':
		return l.scanString(c)
	case c >= '0' && c <= '9':
		return l.scanNumber()
	case isIdentStart(rune(c)) || c >= utf8.RuneSelf:
		return l.scanIdentifier()
	default:
		return l.scanSymbolOrOperator()
	}
}

func (l *lexer) scanIdentifier() (Token, error) {
	for !l.eof() {
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		if !isIdentCont(r) {
			break
		}
		l.pos += size
	}
	text := l.src[l.start:l.pos]
	kind := KindIdentifier
	switch {
	case ControlKeywords[text]:
		kind = KindKeyword
	case QueryKeywords[text]:
		kind = KindQueryKeyword
	case SDLKeywords[text]:
		kind = KindSDLKeyword
	}
	return Token{Kind: kind, Text: text, Span: l.span()}, nil
}

func (l *lexer) scanNumber() (Token, error) {
	isFloat := false
	sawDigit := false
	lastWasUnderscore := false

	for !l.eof() {
		c := l.peek()
		switch {
		case c >= '0' && c <= '9':
			sawDigit = true
			lastWasUnderscore = false
			l.advance()
		case c == '_':
			lastWasUnderscore = true
			l.advance()
		case c == '.' && !isFloat && l.peekAt(1) >= '0' && l.peekAt(1) <= '9':
			isFloat = true
			l.advance()
		default:
			goto done
		}
	}
done:
	if lastWasUnderscore {
		return Token{}, fmt.Errorf("lex error at line %d: numeric literal cannot end with '_'", l.line)
	}
	if !sawDigit {
		return Token{}, fmt.Errorf("lex error at line %d: malformed number", l.line)
	}

	raw := strings.ReplaceAll(l.src[l.start:l.pos], "_", "")
	if isFloat {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Token{}, fmt.Errorf("lex error at line %d: bad float literal %q: %w", l.line, raw, err)
		}
		return Token{Kind: KindFloat, Text: raw, Float: f, Span: l.span()}, nil
	}

	u, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return Token{}, fmt.Errorf("lex error at line %d: bad integer literal %q: %w", l.line, raw, err)
	}
	return Token{Kind: KindUInt, Text: raw, UInt: u, Int: int64(u), Span: l.span()}, nil
}

func (l *lexer) scanString(quote byte) (Token, error) {
	l.advance() // opening quote
	var sb strings.Builder
	for {
		if l.eof() {
			return Token{}, fmt.Errorf("lex error at line %d: unterminated string", l.line)
		}
		c := l.advance()
		if c == quote {
			return Token{Kind: KindString, Text: sb.String(), String: sb.String(), Span: l.span()}, nil
		}
		if c == '\\' {
			if l.eof() {
				return Token{}, fmt.Errorf("lex error at line %d: unterminated escape", l.line)
			}
			esc := l.advance()
			switch esc {
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 't':
				sb.WriteByte('\t')
			case '\\':
				sb.WriteByte('\\')
			case '"':
				sb.WriteByte('"')
			case '\'':
				sb.WriteByte('\'')
			default:
				return Token{}, fmt.Errorf("lex error at line %d: bad escape '\\%c'", l.line, esc)
			}
			continue
		}
		sb.WriteByte(c)
	}
}

func (l *lexer) scanSymbolOrOperator() (Token, error) {
	for _, op := range multiCharOperators {
		if strings.HasPrefix(l.src[l.pos:], op) {
			l.pos += len(op)
			return Token{Kind: KindOperator, Text: op, Span: l.span()}, nil
		}
	}

	c := l.advance()
	if singleCharSymbols[c] {
		return Token{Kind: KindSymbol, Text: string(c), Span: l.span()}, nil
	}
	if singleCharOperators[c] {
		return Token{Kind: KindOperator, Text: string(c), Span: l.span()}, nil
	}
	return Token{}, fmt.Errorf("lex error at line %d: unexpected character %q", l.line, c)
}
