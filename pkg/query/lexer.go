package query

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokString
	tokOp
	tokLParen
	tokRParen
	tokLBracket
	tokRBracket
	tokComma
)

type token struct {
	kind   tokenKind
	text   string // identifier, operator or raw number; the unquoted value for strings
	quoted bool   // identifier written in backquotes
	pos    int
}

func (t token) String() string {
	switch t.kind {
	case tokEOF:
		return "end of query"
	case tokString:
		return fmt.Sprintf("string %q", t.text)
	default:
		return fmt.Sprintf("%q", t.text)
	}
}

// twoCharOps must be checked before single characters.
var twoCharOps = []string{"==", "!=", "<=", ">=", "&&", "||"}

const singleCharOps = "<>!~&|-"

func lex(src string) ([]token, error) {
	var tokens []token

	for i := 0; i < len(src); {
		r, width := utf8.DecodeRuneInString(src[i:])

		switch {
		case unicode.IsSpace(r):
			i += width

		case r == '(':
			tokens = append(tokens, token{kind: tokLParen, text: "(", pos: i})
			i++
		case r == ')':
			tokens = append(tokens, token{kind: tokRParen, text: ")", pos: i})
			i++
		case r == '[':
			tokens = append(tokens, token{kind: tokLBracket, text: "[", pos: i})
			i++
		case r == ']':
			tokens = append(tokens, token{kind: tokRBracket, text: "]", pos: i})
			i++
		case r == ',':
			tokens = append(tokens, token{kind: tokComma, text: ",", pos: i})
			i++

		case r == '\'' || r == '"':
			value, next, err := lexString(src, i)
			if err != nil {
				return nil, err
			}

			tokens = append(tokens, token{kind: tokString, text: value, pos: i})
			i = next

		case r == '`':
			end := strings.IndexByte(src[i+1:], '`')
			if end < 0 {
				return nil, &ParseError{Pos: i, Msg: "unterminated backquoted column name"}
			}

			name := src[i+1 : i+1+end]
			if name == "" {
				return nil, &ParseError{Pos: i, Msg: "empty backquoted column name"}
			}

			tokens = append(tokens, token{kind: tokIdent, text: name, quoted: true, pos: i})
			i += end + 2

		case isDigit(r) || (r == '.' && i+1 < len(src) && isDigit(rune(src[i+1]))):
			next := lexNumber(src, i)
			tokens = append(tokens, token{kind: tokNumber, text: src[i:next], pos: i})
			i = next

		case r == '_' || unicode.IsLetter(r):
			start := i
			for i < len(src) {
				r, width := utf8.DecodeRuneInString(src[i:])
				if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
					break
				}

				i += width
			}

			tokens = append(tokens, token{kind: tokIdent, text: src[start:i], pos: start})

		default:
			op := matchOp(src[i:])
			if op == "" {
				return nil, &ParseError{Pos: i, Msg: fmt.Sprintf("unexpected character %q", r)}
			}

			tokens = append(tokens, token{kind: tokOp, text: op, pos: i})
			i += len(op)
		}
	}

	return append(tokens, token{kind: tokEOF, pos: len(src)}), nil
}

func matchOp(s string) string {
	for _, op := range twoCharOps {
		if strings.HasPrefix(s, op) {
			return op
		}
	}

	if s != "" && strings.IndexByte(singleCharOps, s[0]) >= 0 {
		return s[:1]
	}

	return ""
}

func lexString(src string, start int) (string, int, error) {
	quote := src[start]

	var b strings.Builder

	for i := start + 1; i < len(src); i++ {
		c := src[i]

		switch {
		case c == quote:
			return b.String(), i + 1, nil
		case c == '\\' && i+1 < len(src):
			i++

			switch src[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			default:
				b.WriteByte(src[i])
			}
		default:
			b.WriteByte(c)
		}
	}

	return "", 0, &ParseError{Pos: start, Msg: "unterminated string literal"}
}

func lexNumber(src string, i int) int {
	for i < len(src) && isDigit(rune(src[i])) {
		i++
	}

	if i < len(src) && src[i] == '.' {
		i++
		for i < len(src) && isDigit(rune(src[i])) {
			i++
		}
	}

	if i < len(src) && (src[i] == 'e' || src[i] == 'E') {
		j := i + 1
		if j < len(src) && (src[j] == '+' || src[j] == '-') {
			j++
		}

		if j < len(src) && isDigit(rune(src[j])) {
			i = j
			for i < len(src) && isDigit(rune(src[i])) {
				i++
			}
		}
	}

	return i
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
