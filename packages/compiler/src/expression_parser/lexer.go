package expression_parser

import (
	"strconv"
	"strings"
)

// TokenType represents the type of a token
type TokenType int

const (
	TokenTypeCharacter TokenType = iota
	TokenTypeIdentifier
	TokenTypeKeyword
	TokenTypeString
	TokenTypeOperator
	TokenTypeNumber
	TokenTypeError
)

var keywords = map[string]bool{
	"let":       true,
	"as":        true,
	"null":      true,
	"undefined": true,
	"true":      true,
	"false":     true,
	"this":      true,
}

// Token represents a token in the expression
type Token struct {
	Index    int
	End      int
	Type     TokenType
	NumValue float64
	StrValue string
}

// IsCharacter checks if the token is the given character
func (t *Token) IsCharacter(code rune) bool {
	return t.Type == TokenTypeCharacter && rune(t.NumValue) == code
}

func (t *Token) IsNumber() bool     { return t.Type == TokenTypeNumber }
func (t *Token) IsString() bool     { return t.Type == TokenTypeString }
func (t *Token) IsIdentifier() bool { return t.Type == TokenTypeIdentifier }
func (t *Token) IsKeyword() bool    { return t.Type == TokenTypeKeyword }
func (t *Token) IsError() bool      { return t.Type == TokenTypeError }

// IsOperator checks if the token is an operator with the given value
func (t *Token) IsOperator(operator string) bool {
	return t.Type == TokenTypeOperator && t.StrValue == operator
}

// IsKeywordNamed checks if the token is the given keyword
func (t *Token) IsKeywordNamed(kw string) bool {
	return t.Type == TokenTypeKeyword && t.StrValue == kw
}

// String returns the string representation of the token
func (t *Token) String() string {
	if t.Type == TokenTypeNumber {
		return strconv.FormatFloat(t.NumValue, 'f', -1, 64)
	}
	return t.StrValue
}

// EOF is returned when reading past the last token.
var EOF = &Token{Index: -1, End: -1, Type: TokenTypeCharacter}

// Lexer tokenizes expressions
type Lexer struct{}

// NewLexer creates a new Lexer
func NewLexer() *Lexer {
	return &Lexer{}
}

// Tokenize tokenizes the given text
func (l *Lexer) Tokenize(text string) []*Token {
	s := &scanner{input: text, index: -1}
	s.advance()
	var tokens []*Token
	for tok := s.scanToken(); tok != nil; tok = s.scanToken() {
		tokens = append(tokens, tok)
	}
	return tokens
}

const eofChar rune = 0

type scanner struct {
	input string
	peek  rune
	index int
}

func (s *scanner) advance() {
	s.index++
	if s.index >= len(s.input) {
		s.peek = eofChar
	} else {
		s.peek = rune(s.input[s.index])
	}
}

func (s *scanner) scanToken() *Token {
	for s.index < len(s.input) && isWhitespace(s.peek) {
		s.advance()
	}
	if s.index >= len(s.input) {
		return nil
	}

	peek := s.peek
	start := s.index
	if isIdentifierStart(peek) {
		return s.scanIdentifier()
	}
	if isDigit(peek) {
		return s.scanNumber(start)
	}

	switch peek {
	case '.':
		s.advance()
		if isDigit(s.peek) {
			return s.scanNumber(start)
		}
		return newCharacterToken(start, s.index, '.')
	case '(', ')', '[', ']', '{', '}', ',', ':', ';':
		s.advance()
		return newCharacterToken(start, s.index, peek)
	case '\'', '"':
		return s.scanString()
	case '+', '-', '*', '/', '%', '^':
		s.advance()
		return newOperatorToken(start, s.index, string(peek))
	case '?':
		return s.scanQuestion(start)
	case '<', '>':
		return s.scanComplexOperator(start, string(peek), '=', "=")
	case '!', '=':
		return s.scanComplexOperator(start, string(peek), '=', "=", '=')
	case '&':
		return s.scanComplexOperator(start, "&", '&', "&")
	case '|':
		return s.scanComplexOperator(start, "|", '|', "|")
	}

	s.advance()
	return s.error("Unexpected character ["+string(peek)+"]", 0)
}

func (s *scanner) scanComplexOperator(start int, one string, twoCode rune, two string, threeCode ...rune) *Token {
	s.advance()
	str := one
	if s.peek == twoCode {
		s.advance()
		str += two
	}
	if len(threeCode) > 0 && s.peek == threeCode[0] {
		s.advance()
		str += string(threeCode[0])
	}
	return newOperatorToken(start, s.index, str)
}

func (s *scanner) scanQuestion(start int) *Token {
	s.advance()
	operator := "?"
	// `a ?? b` or `a?.b`
	if s.peek == '?' || s.peek == '.' {
		operator += string(s.peek)
		s.advance()
	}
	return newOperatorToken(start, s.index, operator)
}

func (s *scanner) scanIdentifier() *Token {
	start := s.index
	s.advance()
	for isIdentifierPart(s.peek) {
		s.advance()
	}
	str := s.input[start:s.index]
	if keywords[str] {
		return &Token{Index: start, End: s.index, Type: TokenTypeKeyword, StrValue: str}
	}
	return &Token{Index: start, End: s.index, Type: TokenTypeIdentifier, StrValue: str}
}

func (s *scanner) scanNumber(start int) *Token {
	s.advance()
	for {
		if isDigit(s.peek) || s.peek == '.' {
			// part of the number
		} else if s.peek == 'e' || s.peek == 'E' {
			s.advance()
			if s.peek == '-' || s.peek == '+' {
				s.advance()
			}
			if !isDigit(s.peek) {
				return s.error("Invalid exponent", -1)
			}
		} else {
			break
		}
		s.advance()
	}
	str := s.input[start:s.index]
	value, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return s.error("Invalid number ["+str+"]", 0)
	}
	return &Token{Index: start, End: s.index, Type: TokenTypeNumber, NumValue: value}
}

func (s *scanner) scanString() *Token {
	start := s.index
	quote := s.peek
	s.advance()

	var buf strings.Builder
	marker := s.index
	for s.peek != quote {
		switch {
		case s.peek == '\\':
			buf.WriteString(s.input[marker:s.index])
			s.advance()
			if s.peek == 'u' {
				if s.index+5 > len(s.input) {
					return s.error("Invalid unicode escape", 0)
				}
				hex := s.input[s.index+1 : s.index+5]
				val, err := strconv.ParseInt(hex, 16, 32)
				if err != nil {
					return s.error("Invalid unicode escape [\\u"+hex+"]", 0)
				}
				buf.WriteRune(rune(val))
				for i := 0; i < 5; i++ {
					s.advance()
				}
			} else {
				buf.WriteRune(unescape(s.peek))
				s.advance()
			}
			marker = s.index
		case s.index >= len(s.input):
			return s.error("Unterminated quote", 0)
		default:
			s.advance()
		}
	}
	buf.WriteString(s.input[marker:s.index])
	s.advance()
	return &Token{Index: start, End: s.index, Type: TokenTypeString, StrValue: buf.String()}
}

func (s *scanner) error(message string, offset int) *Token {
	position := s.index + offset
	return &Token{
		Index:    position,
		End:      s.index,
		Type:     TokenTypeError,
		StrValue: "Lexer Error: " + message + " at column " + strconv.Itoa(position) + " in expression [" + s.input + "]",
	}
}

func isWhitespace(c rune) bool {
	return c <= ' ' || c == 0xA0
}

func isDigit(c rune) bool {
	return '0' <= c && c <= '9'
}

func isIdentifierStart(c rune) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || c == '_' || c == '$'
}

func isIdentifierPart(c rune) bool {
	return isIdentifierStart(c) || isDigit(c)
}

// IsIdentifier reports whether input is a single identifier token.
func IsIdentifier(input string) bool {
	if input == "" || !isIdentifierStart(rune(input[0])) {
		return false
	}
	for _, c := range input[1:] {
		if !isIdentifierPart(c) {
			return false
		}
	}
	return true
}

func unescape(c rune) rune {
	switch c {
	case 'n':
		return '\n'
	case 'f':
		return '\f'
	case 'r':
		return '\r'
	case 't':
		return '\t'
	case 'v':
		return '\v'
	default:
		return c
	}
}

func newCharacterToken(index, end int, code rune) *Token {
	return &Token{Index: index, End: end, Type: TokenTypeCharacter, NumValue: float64(code), StrValue: string(code)}
}

func newOperatorToken(index, end int, text string) *Token {
	return &Token{Index: index, End: end, Type: TokenTypeOperator, StrValue: text}
}
