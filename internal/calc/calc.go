// Package calc evaluates the textual expressions carried by calculate
// actions. Expressions run through expr-lang with no environment, so only
// literals, arithmetic and the built-in functions are reachable.
package calc

import (
	"fmt"

	"github.com/expr-lang/expr"
)

// Evaluator compiles and runs arithmetic expressions.
type Evaluator struct{}

// NewEvaluator creates an Evaluator.
func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// Evaluate runs the expression and formats its result. Compile and runtime
// failures both surface as errors for the dispatcher to report.
func (e *Evaluator) Evaluate(expression string) (string, error) {
	program, err := expr.Compile(expression)
	if err != nil {
		return "", fmt.Errorf("invalid expression: %w", err)
	}
	result, err := expr.Run(program, nil)
	if err != nil {
		return "", fmt.Errorf("evaluation failed: %w", err)
	}
	return fmt.Sprintf("%v", result), nil
}
