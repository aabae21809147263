package export

import (
	"bytes"
	"encoding/base64"
	"encoding/csv"
	"strconv"
	"time"

	"veritas-hq/meridian/pkg/ledger"
)

// csvHeader is the fixed column set for CSV bodies. Signature and
// payload columns are always present so the layout does not shift with
// options; they are empty when excluded.
var csvHeader = []string{
	"sequence", "timestamp", "prev_hash", "content_hash",
	"signature", "payload", "decision_id", "actor", "outcome", "risk_level",
}

// serializeCSV serializes entries as CSV in sequence order.
func serializeCSV(entries []*ledger.Entry, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}

	for _, entry := range entries {
		signature := ""
		if opts.IncludeSignatures {
			signature = entry.Signature
		}
		payload := ""
		if opts.IncludeEvidence {
			payload = base64.StdEncoding.EncodeToString(entry.Payload)
		}

		record := []string{
			strconv.FormatUint(entry.Sequence, 10),
			entry.Timestamp.UTC().Format(time.RFC3339Nano),
			entry.PrevHash,
			entry.ContentHash,
			signature,
			payload,
			entry.DecisionID,
			entry.Actor,
			entry.Outcome,
			strconv.Itoa(entry.RiskLevel),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
