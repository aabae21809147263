package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"veritas-hq/meridian/pkg/ledger"
	"veritas-hq/meridian/pkg/ledger/export"
	"veritas-hq/meridian/pkg/policy/engine"
)

// decideResponse is the body returned by POST /v1/decide.
type decideResponse struct {
	// Decision is the recorded decision.
	Decision *engine.Decision `json:"decision"`

	// Sequence is the ledger sequence the decision was recorded at.
	Sequence uint64 `json:"sequence"`

	// RecordedAt is the ledger entry timestamp.
	RecordedAt time.Time `json:"recorded_at"`
}

// resolveRequest is the body accepted by POST /v1/resolve.
type resolveRequest struct {
	// DecisionID identifies the pending decision to resolve.
	DecisionID string `json:"decision_id"`

	// Approved settles the decision to allow (true) or deny (false).
	Approved bool `json:"approved"`

	// Approver is the identity performing the resolution.
	Approver string `json:"approver"`

	// Reason explains the resolution.
	Reason string `json:"reason"`
}

// ledgerResponse is the body returned by GET /v1/ledger.
type ledgerResponse struct {
	Entries []*ledger.Entry `json:"entries"`
	Count   int             `json:"count"`
}

// verifyRequest is the body accepted by POST /v1/verify.
type verifyRequest struct {
	From uint64 `json:"from"`
	To   uint64 `json:"to"`

	// ExpectedPriorHash anchors partial-range verification.
	ExpectedPriorHash string `json:"expected_prior_hash,omitempty"`
}

// exportRequest is the body accepted by POST /v1/export.
type exportRequest struct {
	From              uint64        `json:"from"`
	To                uint64        `json:"to"`
	Format            export.Format `json:"format"`
	IncludeSignatures bool          `json:"include_signatures"`
	IncludeEvidence   bool          `json:"include_evidence"`
}

// errorResponse is the JSON error envelope for all endpoints. Outcome
// is set to "deny" on decide-path failures so callers that only read
// the outcome still fail closed.
type errorResponse struct {
	Error   string `json:"error"`
	Outcome string `json:"outcome,omitempty"`
}

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// writeError writes a JSON error envelope.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeDenied writes a fail-closed error envelope carrying a deny
// outcome.
func writeDenied(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message, Outcome: string(engine.OutcomeDeny)})
}
