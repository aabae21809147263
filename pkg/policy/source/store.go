package source

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"veritas-hq/meridian/pkg/policy/ast"
	"veritas-hq/meridian/pkg/policy/parser"
)

// Store holds the active policy snapshot for one ledger instance.
// Readers take the snapshot by value through Active; writers replace it
// wholesale through Replace or Reload. There is never more than one
// active policy at a time.
type Store struct {
	active   atomic.Pointer[ast.Policy]
	path     string
	logger   *slog.Logger
	onReload func(status string)
}

// NewStore creates a policy store that loads snapshots from the given
// YAML file path.
func NewStore(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		path:   path,
		logger: logger.With("component", "policy.source"),
	}
}

// Active returns the current policy snapshot, or nil if none is loaded.
// The returned policy is immutable; callers must not modify it.
func (s *Store) Active() *ast.Policy {
	return s.active.Load()
}

// Replace atomically installs a new policy snapshot. The new version
// must be strictly greater than the active one; a stale or equal version
// is rejected so a slow reload can never roll the rule set backwards.
func (s *Store) Replace(policy *ast.Policy) error {
	if err := policy.Validate(); err != nil {
		return err
	}

	for {
		current := s.active.Load()
		if current != nil && policy.Version <= current.Version {
			return fmt.Errorf("policy version %d does not supersede active version %d",
				policy.Version, current.Version)
		}
		if s.active.CompareAndSwap(current, policy) {
			break
		}
	}

	s.logger.Info("policy snapshot replaced",
		"policy", policy.Name,
		"version", policy.Version,
		"mode", policy.Mode,
		"rule_count", policy.RuleCount(),
	)
	return nil
}

// OnReload registers a callback invoked after every Reload with status
// "success" or "failure". Used to feed metrics. Register before any
// watcher starts; the callback is not synchronized against reloads.
func (s *Store) OnReload(fn func(status string)) {
	s.onReload = fn
}

// Reload parses the policy file and installs it as the active snapshot.
func (s *Store) Reload() error {
	policy, err := parser.ParseFile(s.path)
	if err == nil {
		err = s.Replace(policy)
	}

	if s.onReload != nil {
		if err != nil {
			s.onReload("failure")
		} else {
			s.onReload("success")
		}
	}

	if err != nil {
		return fmt.Errorf("policy reload failed: %w", err)
	}
	return nil
}

// Path returns the policy file path this store loads from.
func (s *Store) Path() string {
	return s.path
}
