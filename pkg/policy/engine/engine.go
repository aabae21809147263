package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"veritas-hq/meridian/pkg/policy/ast"
)

// Engine evaluates decision requests against policy snapshots. It holds
// no policy state of its own: the active snapshot is passed into every
// Evaluate call, so evaluation is fully parallelizable and a policy
// reload can never race an in-flight evaluation.
type Engine struct {
	logger *slog.Logger
}

// New creates a policy evaluation engine.
func New(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		logger: logger.With("component", "policy.engine"),
	}
}

// Evaluate evaluates a request against the given policy snapshot and
// returns the resulting decision.
//
// Rules are consulted in (priority desc, declaration order asc) order.
// The first matching rule with a terminal action short-circuits
// evaluation; non-terminal matches (escalate, require_confirmation) are
// recorded and evaluation continues unless the rule is marked terminal.
// If no terminal rule fires, the highest-priority non-terminal match
// determines the outcome; with no match at all the policy mode's default
// applies. In paranoid mode, a request at or above the paranoid
// threshold is forced to escalate regardless of any rule outcome.
//
// Errors (malformed request, no policy) fail closed: callers must treat
// them as deny.
func (e *Engine) Evaluate(req *DecisionRequest, policy *ast.Policy) (*Decision, error) {
	start := time.Now()

	if policy == nil {
		return nil, &NoActivePolicyError{}
	}
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	decision := &Decision{
		ID:            uuid.New().String(),
		Kind:          KindDecision,
		RequestID:     req.ID,
		Actor:         req.Actor,
		Action:        req.Action,
		Resource:      req.Resource,
		DataClasses:   req.DataClasses,
		RiskLevel:     req.RiskLevel,
		PolicyName:    policy.Name,
		PolicyVersion: policy.Version,
	}

	var winner *ast.Rule
	var pending *ast.Rule

	for _, rule := range OrderRules(policy.Rules) {
		matched := Matches(rule.Condition, req)

		decision.AppliedRules = append(decision.AppliedRules, AppliedRule{
			RuleID:   rule.ID,
			Priority: rule.Priority,
			Action:   rule.Action,
			Matched:  matched,
		})

		if !matched {
			continue
		}

		if rule.Action.IsTerminal() || rule.Terminal {
			winner = rule
			break
		}

		// Non-terminal match: remember the first (highest priority) one
		// and keep evaluating lower-priority rules.
		if pending == nil {
			pending = rule
		}
	}

	switch {
	case winner != nil:
		decision.Outcome = Outcome(winner.Action)
		decision.Reason = ruleReason(winner)
	case pending != nil:
		decision.Outcome = Outcome(pending.Action)
		decision.Reason = ruleReason(pending)
	default:
		decision.Outcome = modeDefault(policy.Mode)
		decision.Reason = fmt.Sprintf("no rule matched; %s mode default", policy.Mode)
	}

	// Paranoid override applies last, over any rule outcome.
	if policy.Mode == ast.ModeParanoid && req.RiskLevel >= policy.ParanoidThreshold {
		decision.Outcome = OutcomeEscalate
		decision.Reason = fmt.Sprintf("risk level %d >= paranoid threshold %d",
			req.RiskLevel, policy.ParanoidThreshold)
	}

	decision.EvaluationTime = time.Since(start)

	e.logger.Debug("request evaluated",
		"request_id", req.ID,
		"policy_version", policy.Version,
		"outcome", decision.Outcome,
		"rules_evaluated", len(decision.AppliedRules),
	)

	return decision, nil
}

// ValidateRequest checks a decision request before any rule is consulted.
func ValidateRequest(req *DecisionRequest) error {
	if req == nil {
		return &ValidationError{Field: "request", Message: "cannot be nil"}
	}
	if req.Actor == "" {
		return &ValidationError{Field: "actor", Message: "cannot be empty"}
	}
	if req.Action == "" {
		return &ValidationError{Field: "action", Message: "cannot be empty"}
	}
	if req.RiskLevel < 0 || req.RiskLevel > ast.MaxRiskLevel {
		return &ValidationError{
			Field:   "risk_level",
			Message: fmt.Sprintf("%d outside 0..%d", req.RiskLevel, ast.MaxRiskLevel),
		}
	}
	return nil
}

// modeDefault returns the outcome when no rule matched.
func modeDefault(mode ast.Mode) Outcome {
	if mode == ast.ModePermissive {
		return OutcomeAllow
	}
	return OutcomeDeny
}

// ruleReason builds the decision reason for a winning rule.
func ruleReason(rule *ast.Rule) string {
	if rule.Justification != "" {
		return rule.Justification
	}
	return fmt.Sprintf("rule %s matched", rule.ID)
}
