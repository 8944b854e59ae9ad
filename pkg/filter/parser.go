package filter

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
)

// ParseError is the type of error returned by ParseExpression.
type ParseError struct {
	// Source column position where the error occurred.
	Position int
	// Error message.
	Message string
}

// Error returns a formatted version of the error, including the position.
func (e ParseError) Error() string {
	return fmt.Sprintf("parse error at %d: %s", e.Position, e.Message)
}

type parser struct {
	lexer *lexer
	pos   int    // position of last token (tok)
	tok   Token  // last lexed token
	val   string // string value of last token (or "")
}

// ParseExpression parses a text filter such as
//
//	importir.namaentitas ~ 'maju' and (jalur = 'H' or jalur = 'K')
//
// into a rule tree. Recursive descent methods panic with ParseError which is
// recovered here; any other panic is re-raised.
func ParseExpression(src string) (g *Group, err error) {
	defer func() {
		if r := recover(); r != nil {
			if pe, ok := r.(ParseError); ok {
				g = nil
				err = pe
			} else {
				panic(r)
			}
		}
	}()

	p := parser{lexer: newLexer([]byte(src))}
	p.next()

	if p.tok == eol {
		return NewGroup(CombinatorAnd), nil
	}

	node := p.expression()
	p.expect(eol)

	if grp, ok := node.(*Group); ok {
		return grp, nil
	}
	return NewGroup(CombinatorAnd, node), nil
}

// expression parses an OR chain.
//
// term ( "or" term )*
func (p *parser) expression() Node {
	return p.chain(CombinatorOr, or, p.term)
}

// term parses an AND chain.
//
// factor ( "and" factor )*
func (p *parser) term() Node {
	return p.chain(CombinatorAnd, and, p.factor)
}

// chain collects operands joined by tok into one group. Nested groups with the
// same combinator are flattened so "a and b and c" is a single group.
func (p *parser) chain(c Combinator, tok Token, operand func() Node) Node {
	first := operand()
	if !p.matches(tok) {
		return first
	}

	g := NewGroup(c)
	g.add(first)
	for p.matches(tok) {
		p.next()
		g.add(operand())
	}
	return g
}

func (g *Group) add(n Node) {
	if child, ok := n.(*Group); ok && child.Combinator == g.Combinator {
		g.Rules = append(g.Rules, child.Rules...)
		return
	}
	g.Rules = append(g.Rules, n)
}

// factor parses a comparison or a parenthesised expression.
//
// comparison | "(" expression ")"
func (p *parser) factor() Node {
	if p.matches(lbracket) {
		p.next()
		n := p.expression()
		p.expect(rbracket)
		return n
	}
	return p.comparison()
}

// comparison parses a single rule.
//
// IDENTIFIER op value | IDENTIFIER "in" "(" value ( "," value )* ")"
func (p *parser) comparison() Node {
	if !p.matches(identifier) {
		p.error("expected field name")
	}
	field := p.val
	p.next()

	if !p.matches(equal, notEqual, less, lte, greater, gte, like, notLike, in) {
		p.error("expected operator")
	}
	op := p.tok
	p.next()

	if op == in {
		return NewRule(field, string(op.Operator()), p.list())
	}
	return NewRule(field, string(op.Operator()), p.value())
}

func (p *parser) list() []any {
	p.expect(lbracket)
	values := []any{p.value()}
	for p.matches(comma) {
		p.next()
		values = append(values, p.value())
	}
	p.expect(rbracket)
	return values
}

// value parses a literal.
//
// STRING | NUMBER
func (p *parser) value() any {
	switch p.tok {
	case stringLit:
		v := p.val
		p.next()
		return v
	case number:
		// kept as written so codes like 08471300 keep their leading zeros
		if _, err := strconv.ParseFloat(p.val, 64); err != nil {
			p.error(fmt.Sprintf("invalid number %q", p.val))
		}
		v := json.Number(p.val)
		p.next()
		return v
	default:
		p.error("expected value")
		return nil
	}
}

func (p *parser) next() {
	p.pos, p.tok, p.val = p.lexer.Scan()
	if p.tok == illegal {
		p.error(p.val)
	}
}

func (p *parser) expect(tok Token) {
	if p.tok != tok {
		p.error(fmt.Sprintf("expected %s instead of %s", tok, p.tok))
	}
	p.next()
}

func (p *parser) matches(operators ...Token) bool {
	return slices.Contains(operators, p.tok)
}

func (p *parser) error(msg string) {
	panic(ParseError{Position: p.pos, Message: msg})
}
