// Package replenishment asks for more stock of a product. The suggested
// quantity comes from a CEL expression over the product's stock figures.
package replenishment

import (
	"fmt"

	"github.com/google/cel-go/cel"
)

// DefaultRule refills to the maximum, or orders the minimum when no maximum is set.
const DefaultRule = "max_stock > current_stock ? max_stock - current_stock : min_stock"

// Policy is a compiled quantity rule. It is safe for concurrent use.
type Policy struct {
	expr    string
	program cel.Program
}

// NewPolicy compiles expr. The expression sees current_stock, min_stock and
// max_stock as ints and must evaluate to an int.
func NewPolicy(expr string) (*Policy, error) {
	if expr == "" {
		expr = DefaultRule
	}
	env, err := cel.NewEnv(
		cel.Variable("current_stock", cel.IntType),
		cel.Variable("min_stock", cel.IntType),
		cel.Variable("max_stock", cel.IntType),
	)
	if err != nil {
		return nil, fmt.Errorf("create cel env: %w", err)
	}
	ast, iss := env.Compile(expr)
	if iss.Err() != nil {
		return nil, fmt.Errorf("compile quantity rule %q: %w", expr, iss.Err())
	}
	if !ast.OutputType().IsExactType(cel.IntType) {
		return nil, fmt.Errorf("quantity rule %q must return int, got %s", expr, ast.OutputType())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("build quantity rule program: %w", err)
	}
	return &Policy{expr: expr, program: prg}, nil
}

// Expr returns the source expression.
func (p *Policy) Expr() string { return p.expr }

// Quantity evaluates the rule. The result is at least 1.
func (p *Policy) Quantity(current, minStock, maxStock int64) (int64, error) {
	out, _, err := p.program.Eval(map[string]any{
		"current_stock": current,
		"min_stock":     minStock,
		"max_stock":     maxStock,
	})
	if err != nil {
		return 0, fmt.Errorf("evaluate quantity rule: %w", err)
	}
	n, ok := out.Value().(int64)
	if !ok {
		return 0, fmt.Errorf("quantity rule returned %T", out.Value())
	}
	return max(n, 1), nil
}
