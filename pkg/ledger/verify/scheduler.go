package verify

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"veritas-hq/meridian/pkg/ledger"
)

// SchedulerConfig configures background chain verification.
type SchedulerConfig struct {
	// Schedule is a cron expression (e.g. "0 3 * * *" for daily at 3 AM).
	// Empty disables the scheduler.
	Schedule string

	// Timeout bounds a single verification run.
	// Default: 5 minutes
	Timeout time.Duration
}

// Scheduler runs full-chain verification on a cron schedule. Detected
// breaks are surfaced through logs and the report callback; the chain is
// never repaired.
type Scheduler struct {
	store    ledger.Store
	public   ed25519.PublicKey
	config   *SchedulerConfig
	cron     *cron.Cron
	onReport func(*Report)
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
}

// NewScheduler creates a verification scheduler. onReport, if non-nil,
// receives every completed report (used to feed metrics).
func NewScheduler(store ledger.Store, public ed25519.PublicKey, config *SchedulerConfig, onReport func(*Report)) *Scheduler {
	if config.Timeout <= 0 {
		config.Timeout = 5 * time.Minute
	}
	return &Scheduler{
		store:    store,
		public:   public,
		config:   config,
		cron:     cron.New(),
		onReport: onReport,
		logger:   slog.Default().With("component", "ledger.verify.scheduler"),
	}
}

// Start begins scheduled verification. A no-op when no schedule is
// configured.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.config.Schedule == "" {
		s.logger.Info("verification schedule not configured, skipping scheduler")
		return nil
	}

	if _, err := cron.ParseStandard(s.config.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.config.Schedule, err)
	}

	if _, err := s.cron.AddFunc(s.config.Schedule, func() {
		s.runVerification(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule verification: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("verification scheduler started", "schedule", s.config.Schedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop halts the scheduler. An in-flight run completes.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.cron.Stop()
	s.running = false
	s.logger.Info("verification scheduler stopped")
}

// runVerification executes one full-chain verification.
func (s *Scheduler) runVerification(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	start := time.Now()
	report, err := Chain(runCtx, s.store, 1, 0, s.public, nil)
	if err != nil {
		s.logger.Error("scheduled verification failed", "error", err)
		return
	}

	if report.Failed > 0 {
		s.logger.Error("chain integrity violation detected",
			"total", report.Total,
			"failed", report.Failed,
			"chain_intact", report.ChainIntact,
			"signatures_valid", report.SignaturesValid,
		)
	} else {
		s.logger.Info("scheduled verification complete",
			"total", report.Total,
			"verified", report.Verified,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}

	if s.onReport != nil {
		s.onReport(report)
	}
}
