package server

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"veritas-hq/meridian/pkg/ledger"
	"veritas-hq/meridian/pkg/ledger/export"
	"veritas-hq/meridian/pkg/ledger/verify"
	"veritas-hq/meridian/pkg/policy/engine"
)

// handleDecide evaluates a decision request and records the outcome in
// the ledger. A decision that cannot be recorded is not granted: any
// failure on this path returns a deny outcome to the caller.
func (s *Server) handleDecide(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req engine.DecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDenied(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.ID == "" {
		req.ID = uuid.New().String()
	}

	decision, err := s.engine.Evaluate(&req, s.policies.Active())
	if err != nil {
		var validationErr *engine.ValidationError
		status := http.StatusServiceUnavailable
		if errors.As(err, &validationErr) {
			status = http.StatusBadRequest
		}
		writeDenied(w, status, err.Error())
		return
	}

	entry, err := s.ledger.Append(r.Context(), decision)
	if err != nil {
		s.logger.Error("failed to record decision",
			"decision_id", decision.ID,
			"error", err,
		)
		if s.metrics != nil {
			s.metrics.RecordAppendFailure()
		}
		writeDenied(w, http.StatusServiceUnavailable, "decision could not be recorded")
		return
	}

	if s.archive != nil {
		if err := s.archive.Store(r.Context(), decision, &req); err != nil {
			// The ledger entry is authoritative; archive detail is best
			// effort.
			s.logger.Warn("failed to archive decision detail",
				"decision_id", decision.ID,
				"error", err,
			)
		}
	}

	if s.metrics != nil {
		s.metrics.RecordDecision(string(decision.Outcome), decision.PolicyName, decision.EvaluationTime)
		s.metrics.RecordAppend(entry.Sequence)
	}

	writeJSON(w, http.StatusOK, decideResponse{
		Decision:   decision,
		Sequence:   entry.Sequence,
		RecordedAt: entry.Timestamp,
	})
}

// handleResolve settles a pending require_confirmation decision by
// appending a resolution entry. The original entry is never modified.
func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.DecisionID == "" {
		writeError(w, http.StatusBadRequest, "decision_id is required")
		return
	}
	if req.Approver == "" {
		writeError(w, http.StatusBadRequest, "approver is required")
		return
	}

	entries, err := s.store.Query(r.Context(), &ledger.Query{DecisionID: req.DecisionID})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "ledger query failed")
		return
	}
	if len(entries) == 0 {
		writeError(w, http.StatusNotFound, "decision not found")
		return
	}

	original := &engine.Decision{}
	if err := json.Unmarshal(entries[0].Payload, original); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to decode recorded decision")
		return
	}
	if original.Outcome != engine.OutcomeRequireConfirmation {
		writeError(w, http.StatusConflict, "decision is not pending confirmation")
		return
	}

	resolved, err := s.alreadyResolved(r, entries[0].Sequence, original.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "ledger query failed")
		return
	}
	if resolved {
		writeError(w, http.StatusConflict, "decision is already resolved")
		return
	}

	resolution := engine.NewResolution(original, req.Approved, req.Approver, req.Reason)
	entry, err := s.ledger.Append(r.Context(), resolution)
	if err != nil {
		s.logger.Error("failed to record resolution",
			"decision_id", original.ID,
			"error", err,
		)
		writeDenied(w, http.StatusServiceUnavailable, "resolution could not be recorded")
		return
	}

	if s.metrics != nil {
		s.metrics.RecordAppend(entry.Sequence)
	}

	writeJSON(w, http.StatusOK, decideResponse{
		Decision:   resolution,
		Sequence:   entry.Sequence,
		RecordedAt: entry.Timestamp,
	})
}

// alreadyResolved reports whether a resolution referencing decisionID
// was appended after the given sequence.
func (s *Server) alreadyResolved(r *http.Request, after uint64, decisionID string) (bool, error) {
	entries, err := s.store.Get(r.Context(), after+1, 0)
	if err != nil {
		return false, err
	}
	for _, entry := range entries {
		var ref struct {
			Kind       engine.DecisionKind `json:"kind"`
			ResolvesID string              `json:"resolves_id"`
		}
		if err := json.Unmarshal(entry.Payload, &ref); err != nil {
			continue
		}
		if ref.Kind == engine.KindResolution && ref.ResolvesID == decisionID {
			return true, nil
		}
	}
	return false, nil
}

// handleLedger queries ledger entries with filters supplied as URL
// parameters: from, to, actor, outcome, min_risk, decision_id,
// start_time, end_time (RFC 3339), limit, verified. With verified=true
// every returned entry additionally passed hash, linkage, and signature
// checks; entries that fail are dropped from the result.
func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	query, err := parseLedgerQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	verifiedOnly := false
	if v := r.URL.Query().Get("verified"); v != "" {
		verifiedOnly, err = strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid verified parameter")
			return
		}
	}

	entries, err := s.store.Query(r.Context(), query)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "ledger query failed")
		return
	}

	if verifiedOnly {
		entries, err = verify.FilterVerified(r.Context(), s.store, entries, s.ledger.PublicKey())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "ledger query failed")
			return
		}
	}

	writeJSON(w, http.StatusOK, ledgerResponse{Entries: entries, Count: len(entries)})
}

// handleLedgerHead returns the most recent ledger entry.
func (s *Server) handleLedgerHead(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	head, err := s.ledger.Head(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read ledger head")
		return
	}
	if head == nil {
		writeError(w, http.StatusNotFound, "ledger is empty")
		return
	}
	writeJSON(w, http.StatusOK, head)
}

// handleKey returns the ledger's hex-encoded public verification key.
func (s *Server) handleKey(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"public_key": hex.EncodeToString(s.ledger.PublicKey()),
	})
}

// handleVerify verifies chain integrity over a sequence range and
// returns the verification report.
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	var opts *verify.Options
	if req.ExpectedPriorHash != "" {
		opts = &verify.Options{ExpectedPriorHash: req.ExpectedPriorHash}
	}

	report, err := verify.Chain(r.Context(), s.store, req.From, req.To, s.ledger.PublicKey(), opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "verification failed: "+err.Error())
		return
	}

	if s.metrics != nil {
		result := "pass"
		if report.Failed > 0 {
			result = "fail"
		}
		reasons := make([]string, 0, len(report.Failures))
		for _, f := range report.Failures {
			reasons = append(reasons, string(f.Reason))
		}
		s.metrics.RecordVerification(result, reasons)
	}

	writeJSON(w, http.StatusOK, report)
}

// handleExport builds a signed export package over a sequence range.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	opts := export.Options{
		IncludeSignatures: req.IncludeSignatures,
		IncludeEvidence:   req.IncludeEvidence,
	}
	pkg, err := s.exporter.Build(r.Context(), req.From, req.To, req.Format, opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "export failed: "+err.Error())
		return
	}

	if s.metrics != nil {
		s.metrics.RecordExport(string(pkg.Format))
	}

	writeJSON(w, http.StatusOK, pkg)
}

// handleHealthz answers liveness probes.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.checker.Liveness())
}

// handleReadyz answers readiness probes, running all registered checks.
func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	status := s.checker.Readiness(r.Context())
	code := http.StatusOK
	if status.Status != "ok" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, status)
}

// parseLedgerQuery builds a ledger.Query from URL parameters.
func parseLedgerQuery(r *http.Request) (*ledger.Query, error) {
	q := r.URL.Query()
	query := &ledger.Query{
		Actor:      q.Get("actor"),
		Outcome:    q.Get("outcome"),
		DecisionID: q.Get("decision_id"),
	}

	var err error
	if query.FromSequence, err = parseUint(q.Get("from")); err != nil {
		return nil, errors.New("invalid from parameter")
	}
	if query.ToSequence, err = parseUint(q.Get("to")); err != nil {
		return nil, errors.New("invalid to parameter")
	}

	if v := q.Get("min_risk"); v != "" {
		minRisk, err := strconv.Atoi(v)
		if err != nil {
			return nil, errors.New("invalid min_risk parameter")
		}
		query.MinRiskLevel = &minRisk
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			return nil, errors.New("invalid limit parameter")
		}
		query.Limit = limit
	}
	if v := q.Get("start_time"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, errors.New("invalid start_time parameter")
		}
		query.StartTime = &t
	}
	if v := q.Get("end_time"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, errors.New("invalid end_time parameter")
		}
		query.EndTime = &t
	}

	return query, nil
}

// parseUint parses an optional unsigned decimal parameter; "" is 0.
func parseUint(v string) (uint64, error) {
	if v == "" {
		return 0, nil
	}
	return strconv.ParseUint(v, 10, 64)
}
