package mathexpr

import (
	"math"
	"strconv"
	"strings"
)

// Node is an arithmetic expression over numbers and the variable x
type Node interface {
	// js renders the node as a JavaScript expression
	js() string
	// render writes the node in conventional notation
	render(sb *strings.Builder)
	precedence() int
	hasVar() bool
}

const (
	precAdd = iota + 1
	precMul
	precUnary
	precPow
	precAtom
)

type numberNode struct {
	value float64
}

type varNode struct{}

type unaryNode struct {
	operand Node
}

type binaryNode struct {
	op          byte
	left, right Node
}

func (n numberNode) js() string {
	return strconv.FormatFloat(n.value, 'g', -1, 64)
}

func (n numberNode) render(sb *strings.Builder) { sb.WriteString(FormatNumber(n.value)) }
func (numberNode) precedence() int              { return precAtom }
func (numberNode) hasVar() bool                 { return false }

func (varNode) js() string                 { return "x" }
func (varNode) render(sb *strings.Builder) { sb.WriteString("x") }
func (varNode) precedence() int            { return precAtom }
func (varNode) hasVar() bool               { return true }

func (n unaryNode) js() string { return "(-" + n.operand.js() + ")" }

func (n unaryNode) render(sb *strings.Builder) {
	sb.WriteByte('-')
	renderChild(sb, n.operand, precUnary, false)
}

func (unaryNode) precedence() int { return precUnary }
func (n unaryNode) hasVar() bool  { return n.operand.hasVar() }

func (n binaryNode) js() string {
	if n.op == '^' {
		return "Math.pow(" + n.left.js() + ", " + n.right.js() + ")"
	}
	return "(" + n.left.js() + " " + string(n.op) + " " + n.right.js() + ")"
}

func (n binaryNode) render(sb *strings.Builder) {
	prec := n.precedence()
	if n.op == '^' {
		// right-associative
		renderChild(sb, n.left, prec, true)
		sb.WriteString("^")
		renderChild(sb, n.right, prec, false)
		return
	}
	renderChild(sb, n.left, prec, false)
	sb.WriteString(" " + string(n.op) + " ")
	renderChild(sb, n.right, prec, n.op == '-' || n.op == '/')
}

func (n binaryNode) precedence() int {
	switch n.op {
	case '+', '-':
		return precAdd
	case '*', '/':
		return precMul
	default:
		return precPow
	}
}

func (n binaryNode) hasVar() bool { return n.left.hasVar() || n.right.hasVar() }

// renderChild parenthesizes child when it binds looser than its parent, or
// equally tight on the side where associativity would change the meaning
func renderChild(sb *strings.Builder, child Node, parent int, strict bool) {
	p := child.precedence()
	if p < parent || (strict && p == parent) {
		sb.WriteByte('(')
		child.render(sb)
		sb.WriteByte(')')
		return
	}
	child.render(sb)
}

// Render returns n in conventional notation
func Render(n Node) string {
	var sb strings.Builder
	n.render(&sb)
	return sb.String()
}

// FormatNumber prints v without floating point noise: integers have no
// fractional part and other values are rounded to ten decimal places
func FormatNumber(v float64) string {
	if r := math.Round(v); math.Abs(v-r) < 1e-9 && math.Abs(r) < 1e15 {
		if r == 0 {
			return "0"
		}
		return strconv.FormatFloat(r, 'f', 0, 64)
	}
	rounded := math.Round(v*1e10) / 1e10
	if math.IsInf(rounded, 0) || math.IsNaN(rounded) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}
