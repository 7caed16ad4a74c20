package jobs

import (
	"context"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/easishift/clinic-scheduler-go/pkg/metrics"
	"github.com/easishift/clinic-scheduler-go/pkg/models"
)

// CompletionSweeper periodically marks scheduled shifts whose end time has
// passed as completed. It only touches status and the completion timestamp,
// never the shift time bounds, so it cannot introduce conflicts. It runs
// fully decoupled from the allocator.
type CompletionSweeper struct {
	db       *gorm.DB
	logger   *slog.Logger
	interval time.Duration
}

func NewCompletionSweeper(db *gorm.DB, logger *slog.Logger, interval time.Duration) *CompletionSweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &CompletionSweeper{db: db, logger: logger, interval: interval}
}

// Start begins the sweep loop. It blocks until ctx is cancelled.
func (w *CompletionSweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("completion sweeper started", slog.Duration("interval", w.interval))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("completion sweeper stopped")
			return
		case <-ticker.C:
			if _, err := w.RunOnce(ctx); err != nil {
				w.logger.Error("completion sweep failed", slog.String("error", err.Error()))
			}
		}
	}
}

// RunOnce performs a single sweep across all tenants and returns the number
// of shifts transitioned to completed.
func (w *CompletionSweeper) RunOnce(ctx context.Context) (int64, error) {
	now := time.Now().UTC()

	res := w.db.WithContext(ctx).
		Model(&models.Shift{}).
		Where("status = ? AND end_time < ?", models.ShiftScheduled, now).
		Updates(map[string]any{
			"status":       models.ShiftCompleted,
			"completed_at": now,
		})
	if res.Error != nil {
		return 0, res.Error
	}

	if res.RowsAffected > 0 {
		w.logger.Info("shifts marked completed", slog.Int64("count", res.RowsAffected))
		metrics.ObserveSweep(int(res.RowsAffected))
	}
	return res.RowsAffected, nil
}
