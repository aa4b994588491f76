// Package mathexpr evaluates the arithmetic and single-variable algebra that
// shows up in screenshots: "2 + 2 = ?", "3x + 1 = 10", "(x+1)(x-1)".
package mathexpr

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/dop251/goja"
)

// ErrorKind separates input that could not be read from input that could not be computed
type ErrorKind string

const (
	ParseFailure ErrorKind = "parse"
	EvalFailure  ErrorKind = "eval"
)

// EvaluationError is returned for any input Evaluate cannot solve
type EvaluationError struct {
	Kind  ErrorKind
	Input string
	Err   error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("%s failure for %q: %v", e.Kind, e.Input, e.Err)
}

func (e *EvaluationError) Unwrap() error { return e.Err }

// SolutionKind describes what Solution.Text holds
type SolutionKind string

const (
	// SolutionValue is the value of a numeric expression
	SolutionValue SolutionKind = "value"
	// SolutionTruth is "true" or "false" for an equation without unknowns
	// or one that holds for no or every x
	SolutionTruth SolutionKind = "truth"
	// SolutionRoots lists the values of x satisfying an equation
	SolutionRoots SolutionKind = "roots"
	// SolutionExpression is a simplified expression in x
	SolutionExpression SolutionKind = "expression"
)

type Solution struct {
	Kind SolutionKind
	Text string
}

func (s Solution) String() string { return s.Text }

var (
	errNotFinite   = errors.New("result is not a finite number")
	errUnsupported = errors.New("only polynomial equations of degree two or less can be solved")
)

// sample points used to identify polynomials; none of them is a fitting point
var checkPoints = []float64{2, -3, 0.5, 7}

// Evaluate parses text and computes its value or solution. The arithmetic runs
// in a fresh JavaScript runtime that is interrupted when ctx is done.
func Evaluate(ctx context.Context, text string) (Solution, error) {
	if err := ctx.Err(); err != nil {
		return Solution{}, err
	}
	eq, err := Parse(text)
	if err != nil {
		return Solution{}, &EvaluationError{Kind: ParseFailure, Input: text, Err: err}
	}

	vm := newMachine(ctx)
	defer vm.release()

	sol, err := solve(vm, eq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Solution{}, ctxErr
		}
		return Solution{}, &EvaluationError{Kind: EvalFailure, Input: text, Err: err}
	}
	return sol, nil
}

func solve(vm *machine, eq Equation) (Solution, error) {
	if eq.Right == nil {
		if !eq.Left.hasVar() {
			v, err := vm.value(eq.Left, 0)
			if err != nil {
				return Solution{}, err
			}
			return Solution{Kind: SolutionValue, Text: FormatNumber(v)}, nil
		}
		if poly, ok := vm.fit(eq.Left); ok && poly.a == 0 {
			return Solution{Kind: SolutionExpression, Text: poly.linearString()}, nil
		}
		return Solution{Kind: SolutionExpression, Text: Render(eq.Left)}, nil
	}

	diff := binaryNode{op: '-', left: eq.Left, right: eq.Right}
	if !diff.hasVar() {
		l, err := vm.value(eq.Left, 0)
		if err != nil {
			return Solution{}, err
		}
		r, err := vm.value(eq.Right, 0)
		if err != nil {
			return Solution{}, err
		}
		return truth(approxEqual(l, r)), nil
	}

	poly, ok := vm.fit(diff)
	if !ok {
		if vm.err != nil {
			return Solution{}, vm.err
		}
		return Solution{}, errUnsupported
	}
	return poly.roots(), nil
}

func truth(b bool) Solution {
	if b {
		return Solution{Kind: SolutionTruth, Text: "true"}
	}
	return Solution{Kind: SolutionTruth, Text: "false"}
}

// quadratic is a*x^2 + b*x + c
type quadratic struct {
	a, b, c float64
}

func (q quadratic) at(x float64) float64 { return q.a*x*x + q.b*x + q.c }

func (q quadratic) roots() Solution {
	switch {
	case q.a == 0 && q.b == 0:
		return truth(q.c == 0)
	case q.a == 0:
		return Solution{Kind: SolutionRoots, Text: "x = " + FormatNumber(-q.c/q.b)}
	}
	disc := q.b*q.b - 4*q.a*q.c
	if math.Abs(disc) < 1e-12 {
		disc = 0
	}
	if disc < 0 {
		return truth(false)
	}
	sq := math.Sqrt(disc)
	x1 := (-q.b - sq) / (2 * q.a)
	x2 := (-q.b + sq) / (2 * q.a)
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if disc == 0 {
		return Solution{Kind: SolutionRoots, Text: "x = " + FormatNumber(x1)}
	}
	return Solution{Kind: SolutionRoots, Text: "x = " + FormatNumber(x1) + ", x = " + FormatNumber(x2)}
}

// linearString renders b*x + c, e.g. "3x - 2", "-x", "4"
func (q quadratic) linearString() string {
	var sb strings.Builder
	switch {
	case q.b == 0:
		return FormatNumber(q.c)
	case q.b == 1:
		sb.WriteString("x")
	case q.b == -1:
		sb.WriteString("-x")
	default:
		sb.WriteString(FormatNumber(q.b) + "x")
	}
	switch {
	case q.c > 0:
		sb.WriteString(" + " + FormatNumber(q.c))
	case q.c < 0:
		sb.WriteString(" - " + FormatNumber(-q.c))
	}
	return sb.String()
}

// machine wraps one goja runtime for the duration of an evaluation
type machine struct {
	vm   *goja.Runtime
	done chan struct{}
	// err keeps the first runtime failure seen while fitting
	err error
}

func newMachine(ctx context.Context) *machine {
	m := &machine{vm: goja.New(), done: make(chan struct{})}
	go func() {
		select {
		case <-ctx.Done():
			m.vm.Interrupt(ctx.Err())
		case <-m.done:
		}
	}()
	return m
}

func (m *machine) release() {
	close(m.done)
	m.vm.ClearInterrupt()
}

// value evaluates n with x bound to the given value
func (m *machine) value(n Node, x float64) (float64, error) {
	if err := m.vm.Set("x", x); err != nil {
		return 0, err
	}
	res, err := m.vm.RunString(n.js())
	if err != nil {
		var interrupted *goja.InterruptedError
		if errors.As(err, &interrupted) {
			if cause := interrupted.Unwrap(); cause != nil {
				return 0, cause
			}
			return 0, context.Canceled
		}
		return 0, err
	}
	v := res.ToFloat()
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNotFinite
	}
	if v == 0 {
		v = 0 // drop negative zero
	}
	return v, nil
}

// fit identifies n as a polynomial in x of degree two or less
func (m *machine) fit(n Node) (quadratic, bool) {
	at := func(x float64) (float64, bool) {
		v, err := m.value(n, x)
		if err != nil {
			if m.err == nil && !errors.Is(err, errNotFinite) {
				m.err = err
			}
			return 0, false
		}
		return v, true
	}

	f0, ok0 := at(0)
	f1, ok1 := at(1)
	fm1, ok2 := at(-1)
	if !ok0 || !ok1 || !ok2 {
		return quadratic{}, false
	}
	q := quadratic{a: (f1+fm1)/2 - f0, b: (f1 - fm1) / 2, c: f0}
	if approxEqual(q.a, 0) {
		q.a = 0
	}
	if approxEqual(q.b, 0) {
		q.b = 0
	}
	if approxEqual(q.c, 0) {
		q.c = 0
	}

	for _, x := range checkPoints {
		v, ok := at(x)
		if !ok || !approxEqual(v, q.at(x)) {
			return quadratic{}, false
		}
	}
	return q, true
}

func approxEqual(a, b float64) bool {
	scale := math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
	return math.Abs(a-b) <= 1e-9*scale
}
