package engine

import "strings"

// fieldValue is the resolved value of a request field referenced by a
// condition. Exactly one of the typed slots is meaningful per kind.
type fieldValue struct {
	kind   fieldKind
	str    string
	number float64
	set    []string
}

type fieldKind int

const (
	fieldString fieldKind = iota
	fieldNumber
	fieldSet
)

// contextPrefix addresses request context entries from conditions.
const contextPrefix = "context."

// lookupField resolves a condition field name against a request. The
// second return is false when the request does not carry the field;
// the condition then simply does not match (closed world).
func lookupField(name string, req *DecisionRequest) (fieldValue, bool) {
	switch name {
	case "risk_level":
		return fieldValue{kind: fieldNumber, number: float64(req.RiskLevel)}, true
	case "actor":
		return fieldValue{kind: fieldString, str: req.Actor}, true
	case "action":
		return fieldValue{kind: fieldString, str: req.Action}, true
	case "resource":
		return fieldValue{kind: fieldString, str: req.Resource}, true
	case "data_classes":
		return fieldValue{kind: fieldSet, set: req.DataClasses}, true
	}

	if key, ok := strings.CutPrefix(name, contextPrefix); ok {
		value, present := req.Context[key]
		if !present {
			return fieldValue{}, false
		}
		return fieldValue{kind: fieldString, str: value}, true
	}

	return fieldValue{}, false
}
