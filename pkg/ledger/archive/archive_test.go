package archive

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"veritas-hq/meridian/pkg/policy/engine"
)

func openTestArchive(t *testing.T) *Archive {
	t.Helper()
	a, err := Open(Config{DBPath: filepath.Join(t.TempDir(), "archive.db")})
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestArchiveStoreAndRequest(t *testing.T) {
	a := openTestArchive(t)
	ctx := context.Background()

	req := &engine.DecisionRequest{
		ID:          "req-1",
		Actor:       "agent-7",
		Action:      "write_data",
		Resource:    "customers-db",
		DataClasses: []string{"pii"},
		RiskLevel:   2,
		Context:     map[string]string{"environment": "production"},
	}
	decision := &engine.Decision{
		ID:             "dec-1",
		RequestID:      "req-1",
		Outcome:        engine.OutcomeAllow,
		EvaluationTime: 120 * time.Microsecond,
	}

	if err := a.Store(ctx, decision, req); err != nil {
		t.Fatalf("Store() error: %v", err)
	}

	got, err := a.Request(ctx, "dec-1")
	if err != nil {
		t.Fatalf("Request() error: %v", err)
	}
	if got == nil {
		t.Fatal("Request() = nil, want archived request")
	}
	if got.Actor != req.Actor || got.Action != req.Action || got.Resource != req.Resource {
		t.Errorf("archived request = %+v, want %+v", got, req)
	}
	if got.Context["environment"] != "production" {
		t.Errorf("archived context = %v, want environment=production", got.Context)
	}
	if len(got.DataClasses) != 1 || got.DataClasses[0] != "pii" {
		t.Errorf("archived data classes = %v", got.DataClasses)
	}
}

func TestArchiveRequestMissing(t *testing.T) {
	a := openTestArchive(t)

	got, err := a.Request(context.Background(), "unknown")
	if err != nil {
		t.Fatalf("Request() error: %v", err)
	}
	if got != nil {
		t.Errorf("Request() = %+v, want nil for unknown decision", got)
	}
}

func TestArchiveOpenEmptyPath(t *testing.T) {
	if _, err := Open(Config{}); err == nil {
		t.Error("Open() expected error for empty db path")
	}
}
