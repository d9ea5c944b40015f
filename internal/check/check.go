// Package check runs one validation pass: fetch the reference time, probe
// the service, classify, alert, and overwrite the stored record.
//
// Run never returns an error. Every failure along the way is logged and
// turned into a status or a best-effort alert, and the record is written
// exactly once per run.
package check

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hamed0406/timewatch/internal/domain"
	"github.com/hamed0406/timewatch/internal/metrics"
	"github.com/hamed0406/timewatch/internal/probe"
	"github.com/hamed0406/timewatch/internal/repo"
	"github.com/hamed0406/timewatch/internal/timesource"
	"github.com/hamed0406/timewatch/internal/validate"
)

const SubjectStoreFailure = "Validation Alert: Database Failure"

// Alerter is satisfied by *notify.Dispatcher.
type Alerter interface {
	Dispatch(ctx context.Context, subject, message string) bool
}

type Runner struct {
	Logger  *zap.Logger
	Time    timesource.Source
	Health  probe.Checker
	Target  string // monitored service address
	Store   repo.RecordStore
	Alerts  Alerter
	Metrics *metrics.Check

	Now   func() time.Time
	NewID func() string
}

func NewRunner(
	logger *zap.Logger,
	ts timesource.Source,
	health probe.Checker,
	target string,
	store repo.RecordStore,
	alerts Alerter,
	m *metrics.Check,
) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		Logger:  logger,
		Time:    ts,
		Health:  health,
		Target:  target,
		Store:   store,
		Alerts:  alerts,
		Metrics: m,
		Now:     time.Now,
		NewID:   func() string { return uuid.NewString() },
	}
}

// Summary describes a finished run.
type Summary struct {
	RunID      string
	Record     domain.ValidationRecord
	Outcome    validate.Outcome
	Persisted  bool
	AlertsSent int
}

// Message is the completion line reported to whoever triggered the run.
func (s Summary) Message() string {
	return fmt.Sprintf("Check complete. Final status: %s", s.Record.Status)
}

func (r *Runner) Run(ctx context.Context) Summary {
	start := r.now()
	sum := Summary{RunID: r.newID()}
	log := r.Logger.With(zap.String("run_id", sum.RunID))
	log.Info("check_started", zap.String("target", r.Target))

	// 1. reference time
	tr := r.Time.Fetch(ctx)
	if tr.OK {
		log.Info("time_fetched", zap.String("fetched_time", tr.Raw))
	} else {
		kind := timeFailureKind(tr.Err)
		r.Metrics.ObserveFailure(kind)
		log.Warn("time_fetch_failed", zap.String("error_kind", string(kind)), zap.Error(tr.Err))
	}

	// 2. health
	health := r.Health.Check(ctx, r.Target)
	if health.Success {
		log.Info("health_ok", zap.Int("status", health.StatusCode), zap.Float64("latency_ms", health.LatencyMS))
	} else {
		kind := domain.HealthCheckFailure
		if health.StatusCode == 0 {
			kind = domain.NetworkFailure
		}
		r.Metrics.ObserveFailure(kind)
		log.Warn("health_failed",
			zap.String("error_kind", string(kind)),
			zap.Int("status", health.StatusCode),
			zap.String("reason", health.Message),
		)
	}

	// 3. classify
	out := validate.Evaluate(validate.Input{Health: health, Time: tr, Now: r.now()})
	sum.Outcome = out
	log.Info("check_classified",
		zap.Stringer("status", out.Status),
		zap.Int("source_hour", out.SourceHour),
		zap.Int("local_hour", out.LocalHour),
		zap.String("reason", out.Reason),
	)
	if out.Alert != nil {
		sum.AlertsSent += r.alert(ctx, out.Alert.Subject, out.Alert.Message)
	}

	// 4. persist, always
	sum.Record = domain.NewRecord(tr.Raw, out.Status, r.now())
	if err := r.Store.Put(ctx, sum.Record); err != nil {
		r.Metrics.ObserveFailure(domain.PersistenceFailure)
		log.Error("record_put_failed", zap.String("error_kind", string(domain.PersistenceFailure)), zap.Error(err))
		sum.AlertsSent += r.alert(ctx, SubjectStoreFailure, fmt.Sprintf("Failed to write validation record: %v", err))
	} else {
		sum.Persisted = true
		log.Info("record_put", zap.Stringer("status", sum.Record.Status))
	}

	end := r.now()
	r.Metrics.ObserveRun(sum.Record.Status, end.Sub(start).Seconds(), float64(end.Unix()))
	log.Info("check_finished", zap.String("message", sum.Message()), zap.Int("alerts_sent", sum.AlertsSent))
	return sum
}

func (r *Runner) alert(ctx context.Context, subject, message string) int {
	if r.Alerts == nil {
		return 0
	}
	sent := r.Alerts.Dispatch(ctx, subject, message)
	r.Metrics.ObserveAlert(sent)
	if !sent {
		r.Metrics.ObserveFailure(domain.NotificationFailure)
		return 0
	}
	return 1
}

func (r *Runner) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

func (r *Runner) newID() string {
	if r.NewID == nil {
		return uuid.NewString()
	}
	return r.NewID()
}

func timeFailureKind(err error) domain.FailureKind {
	var pe *timesource.ParseError
	if errors.As(err, &pe) {
		return domain.ParseFailure
	}
	return domain.NetworkFailure
}
