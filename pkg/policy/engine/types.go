package engine

import (
	"time"

	"github.com/google/uuid"

	"veritas-hq/meridian/pkg/policy/ast"
)

// Outcome is the final result of evaluating a decision request.
type Outcome string

const (
	// OutcomeAllow permits the proposed action.
	OutcomeAllow Outcome = "allow"

	// OutcomeDeny rejects the proposed action.
	OutcomeDeny Outcome = "deny"

	// OutcomeEscalate routes the decision to a human reviewer.
	OutcomeEscalate Outcome = "escalate"

	// OutcomeRequireConfirmation records a pending decision awaiting an
	// external confirmation, resolved by a later resolution decision.
	OutcomeRequireConfirmation Outcome = "require_confirmation"
)

// DecisionKind distinguishes primary decisions from confirmation
// resolutions, which reference an earlier decision by ID.
type DecisionKind string

const (
	KindDecision   DecisionKind = "decision"
	KindResolution DecisionKind = "resolution"
)

// DecisionRequest describes a proposed action to be governed. Requests
// are immutable once constructed; one is created per incoming call.
type DecisionRequest struct {
	// ID uniquely identifies the request. Assigned by the caller or the
	// transport layer; a UUID is generated if empty.
	ID string `json:"id"`

	// Actor is the identity proposing the action (model, service, user).
	Actor string `json:"actor"`

	// Action is the proposed operation (e.g. "tool_call", "read_data").
	Action string `json:"action"`

	// Resource is the target of the action (tool name, dataset, command).
	Resource string `json:"resource"`

	// DataClasses are the declared data sensitivities the action touches
	// (e.g. "pii", "phi", "financial").
	DataClasses []string `json:"data_classes,omitempty"`

	// RiskLevel is the declared risk ordinal, 0 (benign) to 4 (critical).
	RiskLevel int `json:"risk_level"`

	// Context carries free-form request metadata addressable from rule
	// conditions as "context.<key>".
	Context map[string]string `json:"context,omitempty"`
}

// AppliedRule records the evaluation of a single rule, in evaluation
// order. Every rule the engine consulted appears here, not just the
// winner; this is what makes decisions replayable during audit.
type AppliedRule struct {
	// RuleID identifies the rule within the policy version used.
	RuleID string `json:"rule_id"`

	// Priority is the rule's priority at evaluation time.
	Priority int `json:"priority"`

	// Action is the outcome the rule would contribute.
	Action ast.Action `json:"action"`

	// Matched reports whether the rule's condition evaluated true.
	Matched bool `json:"matched"`
}

// Decision is the engine's output for one request. Created once, never
// mutated; the ledger appends its canonical serialization.
type Decision struct {
	// ID uniquely identifies the decision.
	ID string `json:"id"`

	// Kind is "decision" for primary evaluations and "resolution" for
	// confirmation resolutions.
	Kind DecisionKind `json:"kind"`

	// ResolvesID references the decision a resolution settles. Empty for
	// primary decisions.
	ResolvesID string `json:"resolves_id,omitempty"`

	// RequestID references the evaluated request.
	RequestID string `json:"request_id"`

	// Actor, Action, Resource, DataClasses, and RiskLevel are copied from
	// the request so ledger entries are self-contained.
	Actor       string   `json:"actor"`
	Action      string   `json:"action"`
	Resource    string   `json:"resource"`
	DataClasses []string `json:"data_classes,omitempty"`
	RiskLevel   int      `json:"risk_level"`

	// PolicyName and PolicyVersion identify the snapshot used.
	PolicyName    string `json:"policy_name"`
	PolicyVersion uint64 `json:"policy_version"`

	// Outcome is the final decision.
	Outcome Outcome `json:"outcome"`

	// Reason explains the outcome (winning rule justification or mode
	// default).
	Reason string `json:"reason"`

	// AppliedRules lists every rule evaluated, tagged matched or not, in
	// evaluation order.
	AppliedRules []AppliedRule `json:"applied_rules"`

	// EvaluationTime is how long evaluation took. Diagnostic only; it is
	// excluded from the canonical ledger payload.
	EvaluationTime time.Duration `json:"-"`
}

// NewResolution creates a resolution decision settling a pending
// require_confirmation decision. Approval resolves to allow, rejection to
// deny. The resolution is appended to the ledger as a new entry; the
// original entry is never touched.
func NewResolution(original *Decision, approved bool, approver, reason string) *Decision {
	outcome := OutcomeDeny
	if approved {
		outcome = OutcomeAllow
	}
	return &Decision{
		ID:            uuid.New().String(),
		Kind:          KindResolution,
		ResolvesID:    original.ID,
		RequestID:     original.RequestID,
		Actor:         approver,
		Action:        original.Action,
		Resource:      original.Resource,
		DataClasses:   original.DataClasses,
		RiskLevel:     original.RiskLevel,
		PolicyName:    original.PolicyName,
		PolicyVersion: original.PolicyVersion,
		Outcome:       outcome,
		Reason:        reason,
	}
}
