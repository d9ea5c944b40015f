package notify

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/timewatch/internal/domain"
)

// Dispatcher sends alerts on a best-effort basis. A failed send is logged
// and dropped; Dispatch never returns an error and never panics outward.
type Dispatcher struct {
	Notifier Notifier
	Logger   *zap.Logger
	Timeout  time.Duration
}

func NewDispatcher(n Notifier, logger *zap.Logger, timeout time.Duration) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{Notifier: n, Logger: logger, Timeout: timeout}
}

// Dispatch reports whether the alert was delivered.
func (d *Dispatcher) Dispatch(ctx context.Context, subject, message string) (sent bool) {
	if d == nil || d.Notifier == nil {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			d.Logger.Error("alert_publish_panic", zap.String("subject", subject), zap.Any("panic", r))
			sent = false
		}
	}()

	if d.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}

	if err := d.Notifier.Send(ctx, subject, message); err != nil {
		d.Logger.Warn("alert_publish_failed",
			zap.String("subject", subject),
			zap.String("error_kind", string(domain.NotificationFailure)),
			zap.Error(err),
		)
		return false
	}
	d.Logger.Info("alert_published", zap.String("subject", subject))
	return true
}
