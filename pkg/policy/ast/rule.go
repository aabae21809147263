package ast

import "fmt"

// Action is the outcome a rule contributes when its condition matches.
type Action string

const (
	// ActionAllow permits the proposed action.
	ActionAllow Action = "allow"

	// ActionDeny rejects the proposed action.
	ActionDeny Action = "deny"

	// ActionEscalate routes the decision to a human reviewer.
	ActionEscalate Action = "escalate"

	// ActionRequireConfirmation records a pending decision that must be
	// resolved by a later confirmation entry.
	ActionRequireConfirmation Action = "require_confirmation"
)

// IsTerminal reports whether the action short-circuits evaluation on its
// own. Allow and deny are always terminal; escalate and
// require_confirmation are terminal only when the rule says so.
func (a Action) IsTerminal() bool {
	return a == ActionAllow || a == ActionDeny
}

// Rule is a single governance rule. A rule matches when its condition
// evaluates true against a decision request.
type Rule struct {
	// ID uniquely identifies the rule within its policy.
	ID string

	// Priority orders evaluation: higher priorities are evaluated first.
	// Ties break by declaration order.
	Priority int

	// Condition is the root condition node. A nil condition always matches.
	Condition *Condition

	// Action is the outcome this rule contributes when matched.
	Action Action

	// Terminal makes a non-terminal action (escalate,
	// require_confirmation) short-circuit evaluation like allow/deny.
	Terminal bool

	// Justification is an optional human-readable reason recorded with
	// decisions this rule determines.
	Justification string
}

// HasCondition returns true if the rule has a condition defined.
func (r *Rule) HasCondition() bool {
	return r.Condition != nil
}

// Validate checks the rule's structural invariants.
func (r *Rule) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("rule id cannot be empty")
	}
	switch r.Action {
	case ActionAllow, ActionDeny, ActionEscalate, ActionRequireConfirmation:
	default:
		return fmt.Errorf("rule %s: unknown action %q", r.ID, r.Action)
	}
	if r.Condition != nil {
		if err := r.Condition.Validate(); err != nil {
			return fmt.Errorf("rule %s: %w", r.ID, err)
		}
	}
	return nil
}
