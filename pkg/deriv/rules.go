package deriv

import "fmt"

// Rule identifies one entry of the rewrite table.
type Rule int

const (
	RuleConst Rule = iota
	RuleVar
	RuleSum
	RuleDiff
	RuleProduct
	RuleQuotient
	RulePower
	RuleSen
	RuleCos
	RuleTan
	RuleArctan
	RuleExp
	RuleLn
)

type ruleInfo struct {
	name    string
	pattern string
	result  string
}

var ruleTable = []ruleInfo{
	RuleConst:    {"const", "c", "0"},
	RuleVar:      {"var", "x", "1"},
	RuleSum:      {"sum", "A + B", "dA + dB"},
	RuleDiff:     {"diff", "A - B", "dA - dB"},
	RuleProduct:  {"product", "A * B", "dA * B + A * dB"},
	RuleQuotient: {"quotient", "A / B", "(dA * B - A * dB) / B^2"},
	RulePower:    {"power", "U^N", "N * U^(N-1) * dU"},
	RuleSen:      {"sen", "sen(U)", "cos(U) * dU"},
	RuleCos:      {"cos", "cos(U)", "-sen(U) * dU"},
	RuleTan:      {"tan", "tan(U)", "(1 + tan(U)^2) * dU"},
	RuleArctan:   {"arctan", "arctan(U)", "dU / (1 + U^2)"},
	RuleExp:      {"exp", "exp(U)", "exp(U) * dU"},
	RuleLn:       {"ln", "ln(U)", "dU / U"},
}

func (r Rule) String() string {
	if r < 0 || int(r) >= len(ruleTable) {
		return fmt.Sprintf("Rule(%d)", int(r))
	}
	return ruleTable[r].name
}

// Pattern returns the input shape the rule matches, in infix notation.
func (r Rule) Pattern() string { return ruleTable[r].pattern }

// Result returns the shape the rule produces, in infix notation.
func (r Rule) Result() string { return ruleTable[r].result }

// Rules returns every rule in table order.
func Rules() []Rule {
	rules := make([]Rule, len(ruleTable))
	for i := range ruleTable {
		rules[i] = Rule(i)
	}
	return rules
}
