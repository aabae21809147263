package engine

import (
	"sort"

	"veritas-hq/meridian/pkg/policy/ast"
)

// OrderRules returns the policy's rules in evaluation order: priority
// descending, declaration order ascending for ties. The sort is stable
// and operates on a copy, so repeated calls over the same policy yield
// the same ordering and the policy itself is never reordered.
func OrderRules(rules []*ast.Rule) []*ast.Rule {
	ordered := make([]*ast.Rule, len(rules))
	copy(ordered, rules)

	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority > ordered[j].Priority
	})

	return ordered
}
