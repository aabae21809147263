package engine

import "veritas-hq/meridian/pkg/policy/ast"

// evaluateCompare applies a comparison operator to a resolved field and a
// literal. Type mismatches (ordered operator on a string, numeric literal
// against a string field) fail the match rather than erroring, keeping
// condition evaluation closed-world.
func evaluateCompare(op ast.Operator, field fieldValue, literal ast.Value) bool {
	switch field.kind {
	case fieldNumber:
		if literal.Kind != ast.ValueKindNumber {
			return false
		}
		return compareNumbers(op, field.number, literal.Number)

	case fieldString:
		if literal.Kind != ast.ValueKindString {
			return false
		}
		switch op {
		case ast.OperatorEqual:
			return field.str == literal.String
		case ast.OperatorNotEqual:
			return field.str != literal.String
		default:
			// Ordered comparison is defined for numbers only.
			return false
		}

	default:
		// Set-valued fields are matched with in/not_in, not compare.
		return false
	}
}

// compareNumbers applies an ordered comparison operator.
func compareNumbers(op ast.Operator, a, b float64) bool {
	switch op {
	case ast.OperatorEqual:
		return a == b
	case ast.OperatorNotEqual:
		return a != b
	case ast.OperatorLessThan:
		return a < b
	case ast.OperatorLessEqual:
		return a <= b
	case ast.OperatorGreaterThan:
		return a > b
	case ast.OperatorGreaterEqual:
		return a >= b
	default:
		return false
	}
}

// evaluateMember applies a membership operator. Scalar fields match when
// the field value is in the rule's set. Set-valued fields (data_classes)
// match when any declared element is in the rule's set.
func evaluateMember(op ast.Operator, field fieldValue, values []string) bool {
	in := false
	switch field.kind {
	case fieldString:
		in = containsString(values, field.str)
	case fieldSet:
		for _, element := range field.set {
			if containsString(values, element) {
				in = true
				break
			}
		}
	default:
		// Numeric fields have no membership semantics.
		return false
	}

	if op == ast.OperatorNotIn {
		return !in
	}
	return in
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
