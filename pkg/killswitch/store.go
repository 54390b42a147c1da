package killswitch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/BrianCLong/govgate/pkg/tenant"
)

// Effective is the store's resolution of the kill-switch state for one
// request. ConfigMissing is reported separately from the mode so callers can
// distinguish "intentionally blocked" from "misconfigured".
type Effective struct {
	// Mode is the effective operating mode for this tenant and route.
	Mode Mode

	// ConfigMissing reports that no configuration snapshot is loaded in a
	// prod environment, which fails closed.
	ConfigMissing bool

	// RouteMatched reports that the route matched a ROUTE_DENY pattern.
	// Only meaningful when Mode is ModeRouteDeny.
	RouteMatched bool
}

// Store holds the current kill-switch configuration snapshot. The snapshot
// pointer is the only shared mutable state on the request path and is swapped
// atomically by Refresh; readers never observe a partially-updated config and
// never contend with refreshes.
type Store struct {
	snapshot atomic.Pointer[Snapshot]
	history  *History
	onSwap   func(*Snapshot)
	logger   *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithHistory journals every applied snapshot to the given history store.
func WithHistory(h *History) Option {
	return func(s *Store) { s.history = h }
}

// WithSwapHook registers a callback invoked after each successful snapshot
// swap. Used to keep the kill-switch mode gauge current.
func WithSwapHook(fn func(*Snapshot)) Option {
	return func(s *Store) { s.onSwap = fn }
}

// NewStore creates an empty store. Until the first successful Refresh the
// store reports no configuration, which is itself a meaningful (fail-closed
// in prod) state.
func NewStore(opts ...Option) *Store {
	s := &Store{
		logger: slog.Default().With("component", "killswitch.store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Current returns the latest snapshot, or nil when no configuration has been
// loaded. Non-blocking; safe for concurrent use.
func (s *Store) Current() *Snapshot {
	return s.snapshot.Load()
}

// Refresh loads configuration from the source and atomically publishes a new
// snapshot. Invoked by the file watcher or an administrative operation, never
// by request handling. On load failure the previous snapshot stays in place.
//
// A source reporting "no config" (nil config, nil error) clears the store:
// subsequent prod evaluations fail closed.
func (s *Store) Refresh(ctx context.Context, source Source) error {
	cfg, err := source.Load(ctx)
	if err != nil {
		return fmt.Errorf("kill-switch refresh failed: %w", err)
	}

	if cfg == nil {
		s.snapshot.Store(nil)
		s.logger.Warn("kill-switch configuration absent, store cleared")
		if s.onSwap != nil {
			s.onSwap(nil)
		}
		return nil
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("kill-switch refresh failed: %w", err)
	}

	cfg.HasConfig = true
	snap := &Snapshot{
		Config:   *cfg,
		Hash:     hashConfig(cfg),
		LoadedAt: time.Now().UTC(),
	}

	prev := s.snapshot.Swap(snap)

	if s.history != nil {
		if herr := s.history.Record(ctx, snap); herr != nil {
			// The new snapshot is already live; journaling is
			// best-effort and must not roll it back.
			s.logger.Error("failed to journal kill-switch snapshot",
				"version", snap.Config.Version,
				"error", herr,
			)
		}
	}

	prevHash := ""
	if prev != nil {
		prevHash = prev.Hash
	}
	s.logger.Info("kill-switch configuration applied",
		"version", snap.Config.Version,
		"mode", string(snap.Config.Mode),
		"hash", snap.Hash,
		"previous_hash", prevHash,
		"tenant_overrides", len(snap.Config.TenantOverrides),
	)

	if s.onSwap != nil {
		s.onSwap(snap)
	}

	return nil
}

// Clear drops the current snapshot. After Clear, prod evaluations fail
// closed. Administrative use only.
func (s *Store) Clear() {
	s.snapshot.Store(nil)
	if s.onSwap != nil {
		s.onSwap(nil)
	}
}

// EffectiveMode resolves the kill-switch state for one request.
//
// Resolution order:
//   - no snapshot + prod  → DENY_ALL equivalent via ConfigMissing
//   - no snapshot + other → OFF (fail-open is acceptable outside prod)
//   - tenant override, when present, otherwise the global mode
//   - ROUTE_DENY reports whether the route actually matched
func (s *Store) EffectiveMode(env tenant.Environment, tenantID, route string) Effective {
	snap := s.snapshot.Load()

	if snap == nil || !snap.Config.HasConfig {
		if env == tenant.EnvProd {
			return Effective{Mode: ModeDenyAll, ConfigMissing: true}
		}
		return Effective{Mode: ModeOff}
	}

	cfg := &snap.Config

	mode := cfg.Mode
	if override, ok := cfg.TenantOverrides[tenantID]; ok {
		mode = override
	}

	eff := Effective{Mode: mode}
	if mode == ModeRouteDeny {
		eff.RouteMatched = cfg.matchesRoute(route)
	}
	return eff
}

// ErrNoSnapshot is returned by helpers that require a loaded configuration.
var ErrNoSnapshot = errors.New("no kill-switch configuration loaded")

// Version returns the version of the current snapshot.
func (s *Store) Version() (string, error) {
	snap := s.snapshot.Load()
	if snap == nil {
		return "", ErrNoSnapshot
	}
	return snap.Config.Version, nil
}
