package deriv

import (
	"errors"
	"fmt"

	"github.com/wildfunctions/derivada/pkg/expr"
)

// ErrNoRuleMatched is matched by every error Derive returns.
var ErrNoRuleMatched = errors.New("no rule matched")

// NoRuleMatchedError reports the node whose shape has no rule.
type NoRuleMatchedError struct {
	Shape string
	Node  expr.Expr
}

func (e *NoRuleMatchedError) Error() string {
	return fmt.Sprintf("no rule matched %s: %s", e.Shape, e.Node)
}

func (e *NoRuleMatchedError) Is(target error) bool {
	return target == ErrNoRuleMatched
}

func noRule(node expr.Expr) error {
	return &NoRuleMatchedError{Shape: expr.Shape(node), Node: node}
}
