package mathexpr

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokVar
	tokOp
	tokLParen
	tokRParen
	tokEquals
	tokQuery
)

type token struct {
	kind  tokenKind
	text  string
	value float64
	pos   int
}

// OCR output frequently contains typographic operators
var operatorAliases = strings.NewReplacer(
	"×", "*",
	"·", "*",
	"÷", "/",
	"−", "-",
	"–", "-",
)

func tokenize(input string) ([]token, error) {
	src := []rune(operatorAliases.Replace(input))
	var tokens []token
	for i := 0; i < len(src); {
		r := src[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case unicode.IsDigit(r) || (r == '.' && i+1 < len(src) && unicode.IsDigit(src[i+1])):
			start := i
			for i < len(src) && (unicode.IsDigit(src[i]) || src[i] == '.') {
				i++
			}
			text := string(src[start:i])
			v, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid number %q at %d", text, start)
			}
			tokens = append(tokens, token{kind: tokNumber, text: text, value: v, pos: start})
		case unicode.IsLetter(r):
			start := i
			for i < len(src) && unicode.IsLetter(src[i]) {
				i++
			}
			word := string(src[start:i])
			if word != "x" && word != "X" {
				return nil, fmt.Errorf("unknown identifier %q at %d", word, start)
			}
			tokens = append(tokens, token{kind: tokVar, text: "x", pos: start})
		default:
			kind := tokOp
			switch r {
			case '+', '-', '*', '/', '^':
			case '(':
				kind = tokLParen
			case ')':
				kind = tokRParen
			case '=':
				kind = tokEquals
			case '?':
				kind = tokQuery
			default:
				return nil, fmt.Errorf("unexpected character %q at %d", r, i)
			}
			tokens = append(tokens, token{kind: kind, text: string(r), pos: i})
			i++
		}
	}
	return append(tokens, token{kind: tokEOF, pos: len(src)}), nil
}

// Equation is a parsed input. Right is nil when the input asks for the value
// of Left ("2 + 2", "2 + 2 = ?" and "2 + 2 =" all parse the same way).
type Equation struct {
	Left  Node
	Right Node
}

type parser struct {
	tokens []token
	pos    int
}

// Parse reads an expression or equation over numbers and x
func Parse(input string) (Equation, error) {
	tokens, err := tokenize(input)
	if err != nil {
		return Equation{}, err
	}
	p := &parser{tokens: tokens}
	if p.peek().kind == tokEOF {
		return Equation{}, fmt.Errorf("empty expression")
	}

	left, err := p.expr()
	if err != nil {
		return Equation{}, err
	}
	eq := Equation{Left: left}

	if p.peek().kind == tokEquals {
		p.next()
		switch p.peek().kind {
		case tokEOF:
		case tokQuery:
			p.next()
		default:
			if eq.Right, err = p.expr(); err != nil {
				return Equation{}, err
			}
		}
	}

	if t := p.peek(); t.kind != tokEOF {
		return Equation{}, fmt.Errorf("unexpected %q at %d", t.text, t.pos)
	}
	return eq, nil
}

func (p *parser) peek() token { return p.tokens[p.pos] }

func (p *parser) next() token {
	t := p.tokens[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) isOp(ops string) bool {
	t := p.peek()
	return t.kind == tokOp && strings.Contains(ops, t.text)
}

// expr := term (('+' | '-') term)*
func (p *parser) expr() (Node, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for p.isOp("+-") {
		op := p.next().text[0]
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: op, left: left, right: right}
	}
	return left, nil
}

// term := unary (('*' | '/') unary | implicit unary)*
func (p *parser) term() (Node, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		var op byte
		switch t := p.peek(); {
		case p.isOp("*/"):
			op = p.next().text[0]
		case t.kind == tokNumber || t.kind == tokVar || t.kind == tokLParen:
			op = '*'
		default:
			return left, nil
		}
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: op, left: left, right: right}
	}
}

// unary := ('-' | '+') unary | power
func (p *parser) unary() (Node, error) {
	if p.isOp("+-") {
		op := p.next().text
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		if op == "+" {
			return operand, nil
		}
		return unaryNode{operand: operand}, nil
	}
	return p.power()
}

// power := primary ('^' unary)?
func (p *parser) power() (Node, error) {
	base, err := p.primary()
	if err != nil {
		return nil, err
	}
	if p.isOp("^") {
		p.next()
		exp, err := p.unary()
		if err != nil {
			return nil, err
		}
		return binaryNode{op: '^', left: base, right: exp}, nil
	}
	return base, nil
}

func (p *parser) primary() (Node, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		return numberNode{value: t.value}, nil
	case tokVar:
		return varNode{}, nil
	case tokLParen:
		inner, err := p.expr()
		if err != nil {
			return nil, err
		}
		if p.peek().kind != tokRParen {
			return nil, fmt.Errorf("missing ) at %d", p.peek().pos)
		}
		p.next()
		return inner, nil
	case tokEOF:
		return nil, fmt.Errorf("unexpected end of expression")
	default:
		return nil, fmt.Errorf("unexpected %q at %d", t.text, t.pos)
	}
}
