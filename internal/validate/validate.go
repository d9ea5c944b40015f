// Package validate turns a health probe and a time fetch into a status.
//
// Rules, in order:
//
//  1. unhealthy service: FAILED, alert with the probe reason, no time comparison
//  2. healthy service, time source failed: DEGRADED, no alert
//  3. otherwise compare the hour of the source time with the hour of now,
//     both in IST: equal is OK, different is FAILED with an alert
//
// Only the hour is compared so that network latency and minute-level clock
// drift never fail a check.
package validate

import (
	"fmt"
	"time"

	"github.com/hamed0406/timewatch/internal/domain"
	"github.com/hamed0406/timewatch/internal/probe"
	"github.com/hamed0406/timewatch/internal/timesource"
)

// Alert subjects.
const (
	SubjectUnhealthy   = "Validation Alert: Application Unhealthy"
	SubjectUnreachable = "Validation Alert: Server Unreachable"
	SubjectMismatch    = "Validation Alert: Time Mismatch"
)

type Input struct {
	Health probe.CheckResult
	Time   timesource.Result
	Now    time.Time
}

type Alert struct {
	Subject string
	Message string
}

// Outcome is the decision for one check. Alert is nil when nothing should be
// sent. SourceHour and LocalHour are -1 when no comparison was made.
type Outcome struct {
	Status     domain.Status
	Alert      *Alert
	Reason     string
	SourceHour int
	LocalHour  int
}

func Evaluate(in Input) Outcome {
	out := Outcome{Status: domain.StatusUnknown, SourceHour: -1, LocalHour: -1}

	if !in.Health.Success {
		out.Status = domain.StatusFailed
		out.Alert = healthAlert(in.Health)
		out.Reason = out.Alert.Message
		return out
	}

	if !in.Time.OK {
		out.Status = domain.StatusDegraded
		out.Reason = "Server is OK, but time validation could not be performed due to API failure."
		return out
	}

	out.SourceHour = in.Time.Time.In(domain.IST).Hour()
	out.LocalHour = in.Now.In(domain.IST).Hour()
	if out.SourceHour == out.LocalHour {
		out.Status = domain.StatusOK
		out.Reason = "Validation Successful: Time is in sync and server is healthy."
		return out
	}

	out.Status = domain.StatusFailed
	out.Alert = &Alert{
		Subject: SubjectMismatch,
		Message: fmt.Sprintf("Time validation failed. API hour: %d, Local IST hour: %d", out.SourceHour, out.LocalHour),
	}
	out.Reason = out.Alert.Message
	return out
}

func healthAlert(h probe.CheckResult) *Alert {
	if h.StatusCode != 0 {
		return &Alert{
			Subject: SubjectUnhealthy,
			Message: fmt.Sprintf("Application health check failed with status code %d", h.StatusCode),
		}
	}
	return &Alert{
		Subject: SubjectUnreachable,
		Message: fmt.Sprintf("Failed to connect to the application server: %s", h.Message),
	}
}
