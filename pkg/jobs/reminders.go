package jobs

import (
	"context"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/easishift/clinic-scheduler-go/pkg/models"
)

// Notifier delivers a message to its receiver out of band (SMS, email).
// The real senders live outside this service; LogNotifier is the default.
type Notifier interface {
	Notify(ctx context.Context, msg *models.Message) error
}

// LogNotifier records deliveries in the log instead of sending anything.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n *LogNotifier) Notify(_ context.Context, msg *models.Message) error {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("message delivered",
		slog.Uint64("message_id", uint64(msg.ID)),
		slog.Uint64("receiver_id", uint64(msg.ReceiverID)),
		slog.String("subject", msg.Subject),
	)
	return nil
}

// ReminderDispatcher flushes pending messages through a Notifier on a
// fixed interval.
type ReminderDispatcher struct {
	db       *gorm.DB
	notifier Notifier
	logger   *slog.Logger
	interval time.Duration
}

func NewReminderDispatcher(db *gorm.DB, notifier Notifier, logger *slog.Logger, interval time.Duration) *ReminderDispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if notifier == nil {
		notifier = &LogNotifier{Logger: logger}
	}
	return &ReminderDispatcher{db: db, notifier: notifier, logger: logger, interval: interval}
}

// Start begins the dispatch loop. It blocks until ctx is cancelled.
func (d *ReminderDispatcher) Start(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	d.logger.Info("reminder dispatcher started", slog.Duration("interval", d.interval))

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("reminder dispatcher stopped")
			return
		case <-ticker.C:
			if err := d.RunOnce(ctx); err != nil {
				d.logger.Error("reminder dispatch failed", slog.String("error", err.Error()))
			}
		}
	}
}

// RunOnce sends every pending message, marking each sent or failed. A
// failed delivery does not stop the batch.
func (d *ReminderDispatcher) RunOnce(ctx context.Context) error {
	var pending []models.Message
	if err := d.db.WithContext(ctx).
		Where("delivery_status = ?", models.DeliveryPending).
		Find(&pending).Error; err != nil {
		return err
	}

	for i := range pending {
		msg := &pending[i]
		if err := d.notifier.Notify(ctx, msg); err != nil {
			d.logger.Error("failed to deliver message",
				slog.Uint64("message_id", uint64(msg.ID)),
				slog.String("error", err.Error()),
			)
			d.db.WithContext(ctx).Model(msg).Update("delivery_status", models.DeliveryFailed)
			continue
		}

		now := time.Now().UTC()
		d.db.WithContext(ctx).Model(msg).Updates(map[string]any{
			"delivery_status": models.DeliverySent,
			"sent_at":         now,
		})
	}
	return nil
}
