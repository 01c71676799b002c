package fit

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/parser"
	"go/printer"
	"go/token"
	"math"
	"strconv"
)

// Functions and constants available inside parameter expressions.
var (
	exprFuncs = map[string]func(float64) float64{
		"sin":   math.Sin,
		"cos":   math.Cos,
		"tan":   math.Tan,
		"asin":  math.Asin,
		"acos":  math.Acos,
		"atan":  math.Atan,
		"sinh":  math.Sinh,
		"cosh":  math.Cosh,
		"tanh":  math.Tanh,
		"exp":   math.Exp,
		"log":   math.Log,
		"log10": math.Log10,
		"sqrt":  math.Sqrt,
		"abs":   math.Abs,
		"floor": math.Floor,
		"ceil":  math.Ceil,
	}
	exprConsts = map[string]float64{
		"pi":  math.Pi,
		"e":   math.E,
		"inf": math.Inf(1),
	}
)

// Eval parses and evaluates a numeric expression. Identifiers that are neither
// known constants nor function names are resolved through lookup. Supported
// syntax: numeric literals, + - * /, unary signs, parentheses and calls to the
// fixed function table.
func Eval(expr string, lookup func(name string) (float64, error)) (float64, error) {
	node, err := parseExpr(expr)
	if err != nil {
		return 0, err
	}
	return evalNode(node, lookup)
}

// RewriteIdentifiers parses expr, passes every identifier (including function
// names) through rewrite, and re-serializes the expression. An error from
// rewrite aborts the whole call.
func RewriteIdentifiers(expr string, rewrite func(name string) (string, error)) (string, error) {
	node, err := parseExpr(expr)
	if err != nil {
		return "", err
	}

	var rewriteErr error
	ast.Inspect(node, func(n ast.Node) bool {
		if rewriteErr != nil {
			return false
		}
		ident, ok := n.(*ast.Ident)
		if !ok {
			return true
		}
		name, err := rewrite(ident.Name)
		if err != nil {
			rewriteErr = err
			return false
		}
		ident.Name = name
		return true
	})
	if rewriteErr != nil {
		return "", rewriteErr
	}

	var buf bytes.Buffer
	if err := printer.Fprint(&buf, token.NewFileSet(), node); err != nil {
		return "", fmt.Errorf("%w: %w", ErrBadExpression, err)
	}
	return buf.String(), nil
}

func parseExpr(expr string) (ast.Expr, error) {
	node, err := parser.ParseExpr(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadExpression, err)
	}
	return node, nil
}

func evalNode(node ast.Expr, lookup func(name string) (float64, error)) (float64, error) {
	switch n := node.(type) {
	case *ast.BasicLit:
		if n.Kind != token.INT && n.Kind != token.FLOAT {
			return 0, fmt.Errorf("%w: literal %s", ErrBadExpression, n.Value)
		}
		v, err := strconv.ParseFloat(n.Value, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: literal %s", ErrBadExpression, n.Value)
		}
		return v, nil

	case *ast.Ident:
		if c, ok := exprConsts[n.Name]; ok {
			return c, nil
		}
		return lookup(n.Name)

	case *ast.ParenExpr:
		return evalNode(n.X, lookup)

	case *ast.UnaryExpr:
		v, err := evalNode(n.X, lookup)
		if err != nil {
			return 0, err
		}
		switch n.Op {
		case token.SUB:
			return -v, nil
		case token.ADD:
			return v, nil
		}
		return 0, fmt.Errorf("%w: unary operator %s", ErrBadExpression, n.Op)

	case *ast.BinaryExpr:
		a, err := evalNode(n.X, lookup)
		if err != nil {
			return 0, err
		}
		b, err := evalNode(n.Y, lookup)
		if err != nil {
			return 0, err
		}
		switch n.Op {
		case token.ADD:
			return a + b, nil
		case token.SUB:
			return a - b, nil
		case token.MUL:
			return a * b, nil
		case token.QUO:
			return a / b, nil
		}
		return 0, fmt.Errorf("%w: operator %s", ErrBadExpression, n.Op)

	case *ast.CallExpr:
		ident, ok := n.Fun.(*ast.Ident)
		if !ok {
			return 0, fmt.Errorf("%w: only direct function calls are supported", ErrBadExpression)
		}
		fn, ok := exprFuncs[ident.Name]
		if !ok {
			return 0, fmt.Errorf("%w: unknown function %q", ErrBadExpression, ident.Name)
		}
		if len(n.Args) != 1 {
			return 0, fmt.Errorf("%w: %s takes one argument", ErrBadExpression, ident.Name)
		}
		arg, err := evalNode(n.Args[0], lookup)
		if err != nil {
			return 0, err
		}
		return fn(arg), nil
	}
	return 0, fmt.Errorf("%w: unsupported syntax", ErrBadExpression)
}
