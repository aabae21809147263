package ast

import "fmt"

// ConditionType represents the kind of a condition node.
type ConditionType string

const (
	ConditionTypeCompare ConditionType = "compare" // field op value
	ConditionTypeMember  ConditionType = "member"  // field in/not_in values
	ConditionTypeAll     ConditionType = "all"     // AND of children
	ConditionTypeAny     ConditionType = "any"     // OR of children
	ConditionTypeNot     ConditionType = "not"     // NOT of single child
)

// Operator represents a comparison or membership operator.
type Operator string

const (
	OperatorEqual        Operator = "=="
	OperatorNotEqual     Operator = "!="
	OperatorLessThan     Operator = "<"
	OperatorLessEqual    Operator = "<="
	OperatorGreaterThan  Operator = ">"
	OperatorGreaterEqual Operator = ">="
	OperatorIn           Operator = "in"
	OperatorNotIn        Operator = "not_in"
)

// Condition is a node in the condition expression tree. Conditions are
// evaluated by a pure interpreter; a reference to a field the request does
// not carry fails the match (closed world) rather than raising an error.
type Condition struct {
	Type     ConditionType // Kind of node
	Field    string        // Field name (compare, member)
	Operator Operator      // Operator (compare, member)
	Value    Value         // Comparison value (compare)
	Values   []string      // Membership set (member)
	Children []*Condition  // Child conditions (all, any, not)
}

// Value is a literal comparison operand: a string or a number.
type Value struct {
	Kind   ValueKind
	String string
	Number float64
}

// ValueKind discriminates Value literals.
type ValueKind string

const (
	ValueKindString ValueKind = "string"
	ValueKindNumber ValueKind = "number"
)

// NumberValue constructs a numeric literal value.
func NumberValue(n float64) Value {
	return Value{Kind: ValueKindNumber, Number: n}
}

// StringValue constructs a string literal value.
func StringValue(s string) Value {
	return Value{Kind: ValueKindString, String: s}
}

// IsLogical returns true if this node is a boolean combinator.
func (c *Condition) IsLogical() bool {
	return c.Type == ConditionTypeAll || c.Type == ConditionTypeAny || c.Type == ConditionTypeNot
}

// Validate checks the condition tree's structural invariants.
func (c *Condition) Validate() error {
	switch c.Type {
	case ConditionTypeCompare:
		if c.Field == "" {
			return fmt.Errorf("compare condition: field cannot be empty")
		}
		switch c.Operator {
		case OperatorEqual, OperatorNotEqual, OperatorLessThan,
			OperatorLessEqual, OperatorGreaterThan, OperatorGreaterEqual:
		default:
			return fmt.Errorf("compare condition on %q: invalid operator %q", c.Field, c.Operator)
		}
	case ConditionTypeMember:
		if c.Field == "" {
			return fmt.Errorf("member condition: field cannot be empty")
		}
		if c.Operator != OperatorIn && c.Operator != OperatorNotIn {
			return fmt.Errorf("member condition on %q: invalid operator %q", c.Field, c.Operator)
		}
		if len(c.Values) == 0 {
			return fmt.Errorf("member condition on %q: empty value set", c.Field)
		}
	case ConditionTypeAll, ConditionTypeAny:
		if len(c.Children) == 0 {
			return fmt.Errorf("%s condition: no children", c.Type)
		}
	case ConditionTypeNot:
		if len(c.Children) != 1 {
			return fmt.Errorf("not condition must have exactly one child, got %d", len(c.Children))
		}
	default:
		return fmt.Errorf("unknown condition type %q", c.Type)
	}
	for _, child := range c.Children {
		if err := child.Validate(); err != nil {
			return err
		}
	}
	return nil
}
