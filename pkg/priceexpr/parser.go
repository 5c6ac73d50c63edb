package priceexpr

import (
	"errors"
	"fmt"
	"strconv"
)

// Parse errors.
var (
	ErrEmptyExpression  = errors.New("empty expression")
	ErrUnexpectedToken  = errors.New("unexpected token")
	ErrUnbalancedParens = errors.New("unbalanced parentheses")
	ErrDivisionByZero   = errors.New("division by zero")
)

// Parse evaluates an arithmetic expression made of decimal literals, the
// binary operators + - * /, unary signs and parentheses. Anything else is an
// error; no identifiers or function calls are recognized.
//
//	expr   = term { ("+" | "-") term }
//	term   = unary { ("*" | "/") unary }
//	unary  = { "+" | "-" } factor
//	factor = number | "(" expr ")"
func Parse(expr string) (float64, error) {
	p := &parser{src: expr}
	p.skipSpace()
	if p.done() {
		return 0, ErrEmptyExpression
	}
	v, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	p.skipSpace()
	if !p.done() {
		if p.peek() == ')' {
			return 0, ErrUnbalancedParens
		}
		return 0, fmt.Errorf("%w %q at offset %d", ErrUnexpectedToken, p.peek(), p.pos)
	}
	return v, nil
}

type parser struct {
	src   string
	pos   int
	depth int
}

// maxDepth bounds nesting so hostile input cannot exhaust the stack.
const maxDepth = 64

func (p *parser) done() bool { return p.pos >= len(p.src) }

func (p *parser) peek() byte {
	if p.done() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) skipSpace() {
	for !p.done() {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) parseExpr() (float64, error) {
	left, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpace()
		op := p.peek()
		if op != '+' && op != '-' {
			return left, nil
		}
		p.pos++
		right, err := p.parseTerm()
		if err != nil {
			return 0, err
		}
		if op == '+' {
			left += right
		} else {
			left -= right
		}
	}
}

func (p *parser) parseTerm() (float64, error) {
	left, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpace()
		op := p.peek()
		if op != '*' && op != '/' {
			return left, nil
		}
		p.pos++
		right, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		if op == '*' {
			left *= right
		} else {
			if right == 0 {
				return 0, ErrDivisionByZero
			}
			left /= right
		}
	}
}

func (p *parser) parseUnary() (float64, error) {
	p.skipSpace()
	switch p.peek() {
	case '-':
		p.pos++
		v, err := p.parseUnary()
		return -v, err
	case '+':
		p.pos++
		return p.parseUnary()
	}
	return p.parseFactor()
}

func (p *parser) parseFactor() (float64, error) {
	p.skipSpace()
	if p.done() {
		return 0, fmt.Errorf("%w: unexpected end of input", ErrUnexpectedToken)
	}
	if p.peek() == '(' {
		p.depth++
		if p.depth > maxDepth {
			return 0, fmt.Errorf("%w: nesting deeper than %d", ErrUnexpectedToken, maxDepth)
		}
		p.pos++
		v, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		p.skipSpace()
		if p.peek() != ')' {
			return 0, ErrUnbalancedParens
		}
		p.pos++
		p.depth--
		return v, nil
	}
	return p.parseNumber()
}

func (p *parser) parseNumber() (float64, error) {
	start := p.pos
	sawDigit, sawDot := false, false
scan:
	for !p.done() {
		c := p.src[p.pos]
		switch {
		case c >= '0' && c <= '9':
			sawDigit = true
		case c == '.' && !sawDot:
			sawDot = true
		default:
			break scan
		}
		p.pos++
	}
	if !sawDigit {
		return 0, fmt.Errorf("%w %q at offset %d", ErrUnexpectedToken, p.peek(), start)
	}
	v, err := strconv.ParseFloat(p.src[start:p.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnexpectedToken, err)
	}
	return v, nil
}
