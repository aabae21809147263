package health

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestLiveness(t *testing.T) {
	c := New(0)
	status := c.Liveness()
	if status.Status != "ok" {
		t.Errorf("Status = %q, want ok", status.Status)
	}
	if status.Timestamp.IsZero() {
		t.Error("Timestamp not set")
	}
}

func TestReadinessAllHealthy(t *testing.T) {
	c := New(0)
	c.Register("ledger", func(ctx context.Context) error { return nil })
	c.Register("policy", func(ctx context.Context) error { return nil })

	status := c.Readiness(context.Background())
	if status.Status != "ok" {
		t.Errorf("Status = %q, want ok", status.Status)
	}
	if len(status.Checks) != 2 {
		t.Fatalf("Checks = %d, want 2", len(status.Checks))
	}
	for name, result := range status.Checks {
		if result.Status != "ok" {
			t.Errorf("check %q = %+v, want ok", name, result)
		}
	}
}

func TestReadinessOneUnhealthy(t *testing.T) {
	c := New(0)
	c.Register("ledger", func(ctx context.Context) error { return nil })
	c.Register("policy", func(ctx context.Context) error {
		return fmt.Errorf("no active policy")
	})

	status := c.Readiness(context.Background())
	if status.Status != "unhealthy" {
		t.Errorf("Status = %q, want unhealthy", status.Status)
	}
	if status.Checks["policy"].Message != "no active policy" {
		t.Errorf("policy check = %+v", status.Checks["policy"])
	}
	if status.Checks["ledger"].Status != "ok" {
		t.Errorf("ledger check = %+v", status.Checks["ledger"])
	}
}

func TestReadinessTimeout(t *testing.T) {
	c := New(20 * time.Millisecond)
	c.Register("slow", func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(2 * time.Second):
			return nil
		}
	})

	status := c.Readiness(context.Background())
	if status.Status != "unhealthy" {
		t.Errorf("Status = %q, want unhealthy for timed-out check", status.Status)
	}
}

func TestRegisterReplaces(t *testing.T) {
	c := New(0)
	c.Register("ledger", func(ctx context.Context) error {
		return fmt.Errorf("broken")
	})
	c.Register("ledger", func(ctx context.Context) error { return nil })

	status := c.Readiness(context.Background())
	if status.Status != "ok" {
		t.Errorf("Status = %q, replacement check should win", status.Status)
	}
}
