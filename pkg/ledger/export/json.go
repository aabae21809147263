package export

import (
	"encoding/json"
	"time"

	"veritas-hq/meridian/pkg/ledger"
)

// bodyEntry is the export body representation of one ledger entry.
// Field order is fixed; omitted detail (per Options) serializes as
// absent, not null, so the body stays stable across exports.
type bodyEntry struct {
	Sequence    uint64    `json:"sequence"`
	Timestamp   time.Time `json:"timestamp"`
	PrevHash    string    `json:"prev_hash"`
	ContentHash string    `json:"content_hash"`
	Signature   string    `json:"signature,omitempty"`
	Payload     []byte    `json:"payload,omitempty"`
	DecisionID  string    `json:"decision_id"`
	Actor       string    `json:"actor"`
	Outcome     string    `json:"outcome"`
	RiskLevel   int       `json:"risk_level"`
}

// toBodyEntry applies options to a ledger entry.
func toBodyEntry(entry *ledger.Entry, opts Options) bodyEntry {
	be := bodyEntry{
		Sequence:    entry.Sequence,
		Timestamp:   entry.Timestamp,
		PrevHash:    entry.PrevHash,
		ContentHash: entry.ContentHash,
		DecisionID:  entry.DecisionID,
		Actor:       entry.Actor,
		Outcome:     entry.Outcome,
		RiskLevel:   entry.RiskLevel,
	}
	if opts.IncludeSignatures {
		be.Signature = entry.Signature
	}
	if opts.IncludeEvidence {
		be.Payload = entry.Payload
	}
	return be
}

// serializeJSON serializes entries as a JSON array in sequence order.
func serializeJSON(entries []*ledger.Entry, opts Options) ([]byte, error) {
	body := make([]bodyEntry, 0, len(entries))
	for _, entry := range entries {
		body = append(body, toBodyEntry(entry, opts))
	}
	return json.Marshal(body)
}
