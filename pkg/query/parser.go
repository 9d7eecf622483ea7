package query

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseError reports a syntax error at a byte offset of the query.
type ParseError struct {
	Pos int
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("position %d: %s", e.Pos, e.Msg)
}

var (
	orOps  = map[string]bool{"or": true, "|": true, "||": true}
	andOps = map[string]bool{"and": true, "&": true, "&&": true}
	notOps = map[string]bool{"not": true, "~": true, "!": true}
	cmpOps = map[string]bool{"==": true, "!=": true, "<": true, "<=": true, ">": true, ">=": true}
)

var keywordLiterals = map[string]any{
	"true":  true,
	"True":  true,
	"false": false,
	"False": false,
	"null":  nil,
	"None":  nil,
}

// MaxDepth bounds the nesting of parentheses and negations.
const MaxDepth = 64

type parser struct {
	tokens []token
	pos    int
	depth  int
}

func parseExpr(src string) (Expr, error) {
	if strings.TrimSpace(src) == "" {
		return nil, &ParseError{Pos: 0, Msg: "empty query"}
	}

	tokens, err := lex(src)
	if err != nil {
		return nil, err
	}

	p := &parser{tokens: tokens}

	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}

	if tok := p.peek(); tok.kind != tokEOF {
		return nil, p.errorf(tok, "unexpected %s", tok)
	}

	return expr, nil
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}

	return tok
}

func (p *parser) enter(tok token) error {
	p.depth++
	if p.depth > MaxDepth {
		return p.errorf(tok, "expression nested deeper than %d levels", MaxDepth)
	}

	return nil
}

func (p *parser) leave() {
	p.depth--
}

func (p *parser) errorf(tok token, format string, args ...any) error {
	return &ParseError{Pos: tok.pos, Msg: fmt.Sprintf(format, args...)}
}

// word reports whether tok is an unquoted keyword or operator in set.
func word(tok token, set map[string]bool) bool {
	if tok.kind != tokOp && (tok.kind != tokIdent || tok.quoted) {
		return false
	}

	return set[tok.text]
}

func (p *parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	for word(p.peek(), orOps) {
		p.next()

		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}

		left = &LogicalExpr{Op: "or", Left: left, Right: right}
	}

	return left, nil
}

func (p *parser) parseAnd() (Expr, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}

	for word(p.peek(), andOps) {
		p.next()

		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}

		left = &LogicalExpr{Op: "and", Left: left, Right: right}
	}

	return left, nil
}

func (p *parser) parseNot() (Expr, error) {
	if tok := p.peek(); word(tok, notOps) {
		p.next()

		if err := p.enter(tok); err != nil {
			return nil, err
		}
		defer p.leave()

		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}

		return &NotExpr{Operand: operand}, nil
	}

	return p.parseCompare()
}

func (p *parser) parseCompare() (Expr, error) {
	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}

	tok := p.peek()

	switch {
	case tok.kind == tokOp && cmpOps[tok.text]:
		p.next()

		right, err := p.parseOperand()
		if err != nil {
			return nil, err
		}

		return &CompareExpr{Op: tok.text, Left: left, Right: right}, nil

	case word(tok, map[string]bool{"in": true}):
		p.next()

		return p.parseIn(left, false)

	case word(tok, map[string]bool{"not": true}) && word(p.tokens[p.pos+1], map[string]bool{"in": true}):
		p.next()
		p.next()

		return p.parseIn(left, true)
	}

	return left, nil
}

func (p *parser) parseIn(operand Expr, negated bool) (Expr, error) {
	open := p.next()
	if open.kind != tokLBracket {
		return nil, p.errorf(open, "expected [ after in, got %s", open)
	}

	var values []any

	for {
		tok := p.peek()

		value, ok, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}

		if !ok {
			return nil, p.errorf(tok, "in list accepts only literals, got %s", tok)
		}

		values = append(values, value)

		switch sep := p.next(); sep.kind {
		case tokComma:
		case tokRBracket:
			return &InExpr{Operand: operand, Values: values, Negated: negated}, nil
		default:
			return nil, p.errorf(sep, "expected , or ] in list, got %s", sep)
		}
	}
}

func (p *parser) parseOperand() (Expr, error) {
	tok := p.peek()

	if tok.kind == tokLParen {
		p.next()

		if err := p.enter(tok); err != nil {
			return nil, err
		}
		defer p.leave()

		expr, err := p.parseOr()
		if err != nil {
			return nil, err
		}

		if closing := p.next(); closing.kind != tokRParen {
			return nil, p.errorf(closing, "expected ), got %s", closing)
		}

		return expr, nil
	}

	value, ok, err := p.parseLiteral()
	if err != nil {
		return nil, err
	}

	if ok {
		return &LiteralExpr{Value: value}, nil
	}

	if tok.kind == tokIdent {
		if !tok.quoted && isReserved(tok.text) {
			return nil, p.errorf(tok, "unexpected keyword %s", tok)
		}

		p.next()

		return &ColumnExpr{Name: tok.text}, nil
	}

	return nil, p.errorf(tok, "expected column or literal, got %s", tok)
}

// parseLiteral consumes a literal if one starts at the current token.
func (p *parser) parseLiteral() (any, bool, error) {
	tok := p.peek()

	switch {
	case tok.kind == tokString:
		p.next()

		return tok.text, true, nil

	case tok.kind == tokNumber:
		p.next()

		value, err := parseNumber(tok.text, false)
		if err != nil {
			return nil, false, p.errorf(tok, "invalid number %s", tok)
		}

		return value, true, nil

	case tok.kind == tokOp && tok.text == "-" && p.tokens[p.pos+1].kind == tokNumber:
		p.next()
		num := p.next()

		value, err := parseNumber(num.text, true)
		if err != nil {
			return nil, false, p.errorf(num, "invalid number %s", num)
		}

		return value, true, nil

	case tok.kind == tokIdent && !tok.quoted:
		if value, ok := keywordLiterals[tok.text]; ok {
			p.next()

			return value, true, nil
		}
	}

	return nil, false, nil
}

func parseNumber(text string, negative bool) (any, error) {
	if negative {
		text = "-" + text
	}

	if !strings.ContainsAny(text, ".eE") {
		if n, err := strconv.ParseInt(text, 10, 64); err == nil {
			return n, nil
		}
	}

	return strconv.ParseFloat(text, 64)
}

func isReserved(name string) bool {
	switch name {
	case "and", "or", "not", "in":
		return true
	}

	return false
}
