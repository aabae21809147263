package engine

import "veritas-hq/meridian/pkg/policy/ast"

// Matches evaluates a condition tree against a request and reports
// whether it matched. It is a pure function with no error path: a rule
// that references a field the request does not carry simply does not
// match. That closed-world behavior is load-bearing for fail-safe
// evaluation and is covered explicitly by tests.
func Matches(condition *ast.Condition, req *DecisionRequest) bool {
	if condition == nil {
		return true // No condition means always match.
	}

	switch condition.Type {
	case ast.ConditionTypeCompare:
		field, ok := lookupField(condition.Field, req)
		if !ok {
			return false
		}
		return evaluateCompare(condition.Operator, field, condition.Value)

	case ast.ConditionTypeMember:
		field, ok := lookupField(condition.Field, req)
		if !ok {
			return false
		}
		return evaluateMember(condition.Operator, field, condition.Values)

	case ast.ConditionTypeAll:
		for _, child := range condition.Children {
			if !Matches(child, req) {
				return false
			}
		}
		return true

	case ast.ConditionTypeAny:
		for _, child := range condition.Children {
			if Matches(child, req) {
				return true
			}
		}
		return false

	case ast.ConditionTypeNot:
		if len(condition.Children) != 1 {
			return false
		}
		return !Matches(condition.Children[0], req)

	default:
		// Unknown node kinds are rejected at parse time; fail the match
		// if one slips through.
		return false
	}
}
