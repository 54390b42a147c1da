package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/BrianCLong/govgate/pkg/audit"
)

// Config contains configuration for the retention pruner.
type Config struct {
	// RetentionDays is the number of days to retain audit records.
	// 0 means keep records forever.
	RetentionDays int

	// MaxRecords caps the total record count. 0 means unlimited.
	MaxRecords int64

	// PruneSchedule is a cron expression for scheduled pruning.
	// Example: "0 3 * * *" (daily at 3 AM). Empty disables the
	// scheduler; Prune can still be called directly.
	PruneSchedule string
}

// DefaultConfig returns the default retention configuration.
func DefaultConfig() *Config {
	return &Config{
		RetentionDays: 90,
		MaxRecords:    0,
		PruneSchedule: "0 3 * * *",
	}
}

// Pruner enforces retention on the audit store. The gateway itself
// never deletes records; all removal happens here, out of band.
type Pruner struct {
	storage audit.Storage
	config  *Config
	logger  *slog.Logger
}

// NewPruner creates a retention pruner.
func NewPruner(storage audit.Storage, config *Config) *Pruner {
	if config == nil {
		config = DefaultConfig()
	}
	return &Pruner{
		storage: storage,
		config:  config,
		logger:  slog.Default().With("component", "audit.retention"),
	}
}

// Prune runs both retention phases: age-based first, then count-based.
// Returns the total number of records deleted.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	var totalDeleted int64

	if p.config.RetentionDays > 0 {
		cutoff := time.Now().UTC().AddDate(0, 0, -p.config.RetentionDays)
		deleted, err := p.storage.DeleteOlderThan(ctx, cutoff)
		if err != nil {
			return totalDeleted, audit.NewRetentionError(p.config.RetentionDays,
				fmt.Errorf("prune by age failed: %w", err))
		}
		totalDeleted += deleted
		p.logger.Info("pruned audit records by age",
			"deleted_count", deleted,
			"retention_days", p.config.RetentionDays,
		)
	}

	if p.config.MaxRecords > 0 {
		deleted, err := p.pruneByCount(ctx)
		if err != nil {
			return totalDeleted, audit.NewRetentionError(p.config.RetentionDays,
				fmt.Errorf("prune by count failed: %w", err))
		}
		totalDeleted += deleted
	}

	return totalDeleted, nil
}

// pruneByCount removes the oldest records beyond MaxRecords. Ties at
// the boundary timestamp are kept rather than over-deleted.
func (p *Pruner) pruneByCount(ctx context.Context) (int64, error) {
	count, err := p.storage.Count(ctx, nil)
	if err != nil {
		return 0, err
	}
	if count <= p.config.MaxRecords {
		return 0, nil
	}

	// The newest MaxRecords records survive; everything strictly older
	// than the boundary record goes.
	boundary, err := p.storage.Query(ctx, &audit.Query{
		Limit:  1,
		Offset: int(p.config.MaxRecords) - 1,
	})
	if err != nil {
		return 0, err
	}
	if len(boundary) == 0 {
		return 0, nil
	}

	deleted, err := p.storage.DeleteOlderThan(ctx, boundary[0].Timestamp)
	if err != nil {
		return 0, err
	}
	p.logger.Info("pruned audit records by count",
		"deleted_count", deleted,
		"max_records", p.config.MaxRecords,
	)
	return deleted, nil
}
