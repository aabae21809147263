package ast

import "fmt"

// Mode controls the default outcome when no rule matches.
type Mode string

const (
	// ModeStrict denies by default.
	ModeStrict Mode = "strict"

	// ModePermissive allows by default.
	ModePermissive Mode = "permissive"

	// ModeParanoid denies by default and additionally forces escalation
	// for any request at or above the policy's paranoid threshold,
	// overriding even an explicit allow.
	ModeParanoid Mode = "paranoid"
)

// MaxRiskLevel is the upper bound of the request risk ordinal (0..4).
const MaxRiskLevel = 4

// Policy is the root of a loaded rule set. Exactly one policy is active
// per ledger instance at a time; a reload replaces the snapshot wholesale.
type Policy struct {
	// Name identifies the policy (kebab-case).
	Name string

	// Version increases monotonically with each loaded revision.
	// A reload with a non-increasing version is rejected.
	Version uint64

	// Description is a human-readable summary.
	Description string

	// Mode selects the default outcome when no rule matches.
	Mode Mode

	// ParanoidThreshold is the risk level at or above which paranoid
	// mode forces escalation. Ignored in other modes.
	ParanoidThreshold int

	// Rules in declaration order. Evaluation order is
	// (priority desc, declaration order asc); see engine.OrderRules.
	Rules []*Rule
}

// GetRule returns the rule with the given id, or nil if not found.
func (p *Policy) GetRule(id string) *Rule {
	for _, rule := range p.Rules {
		if rule.ID == id {
			return rule
		}
	}
	return nil
}

// RuleCount returns the number of rules in the policy.
func (p *Policy) RuleCount() int {
	return len(p.Rules)
}

// Validate checks the policy's structural invariants.
func (p *Policy) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("policy name cannot be empty")
	}
	if p.Version == 0 {
		return fmt.Errorf("policy %s: version must be >= 1", p.Name)
	}
	switch p.Mode {
	case ModeStrict, ModePermissive, ModeParanoid:
	default:
		return fmt.Errorf("policy %s: unknown mode %q", p.Name, p.Mode)
	}
	if p.Mode == ModeParanoid {
		if p.ParanoidThreshold < 0 || p.ParanoidThreshold > MaxRiskLevel {
			return fmt.Errorf("policy %s: paranoid_threshold %d outside 0..%d",
				p.Name, p.ParanoidThreshold, MaxRiskLevel)
		}
	}
	seen := make(map[string]bool, len(p.Rules))
	for i, rule := range p.Rules {
		if err := rule.Validate(); err != nil {
			return fmt.Errorf("policy %s: rule %d: %w", p.Name, i, err)
		}
		if seen[rule.ID] {
			return fmt.Errorf("policy %s: duplicate rule id %q", p.Name, rule.ID)
		}
		seen[rule.ID] = true
	}
	return nil
}
