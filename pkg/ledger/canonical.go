package ledger

import (
	"encoding/json"
	"fmt"

	"veritas-hq/meridian/pkg/policy/engine"
)

// CanonicalPayload serializes a decision into the byte form the ledger
// hashes and stores. encoding/json emits struct fields in declaration
// order and map keys sorted, so the same decision always serializes to
// the same bytes; nothing time- or process-dependent is included.
func CanonicalPayload(decision *engine.Decision) ([]byte, error) {
	if decision == nil {
		return nil, fmt.Errorf("decision cannot be nil")
	}
	payload, err := json.Marshal(decision)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize decision: %w", err)
	}
	return payload, nil
}

// DecodePayload parses a stored canonical payload back into a decision,
// for audit replay and export evidence.
func DecodePayload(payload []byte) (*engine.Decision, error) {
	var decision engine.Decision
	if err := json.Unmarshal(payload, &decision); err != nil {
		return nil, fmt.Errorf("failed to decode decision payload: %w", err)
	}
	return &decision, nil
}
