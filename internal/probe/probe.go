package probe

import "context"

// CheckResult is the unified result of a single probe.
//
// StatusCode is the HTTP status when a response arrived and 0 for
// transport or DNS errors. Message is a short human-readable reason.
type CheckResult struct {
	Name       string  `json:"name"`
	Success    bool    `json:"success"`
	StatusCode int     `json:"status_code,omitempty"`
	Message    string  `json:"message"`
	LatencyMS  float64 `json:"latency_ms,omitempty"`
	Err        error   `json:"-"`
}

// Checker performs a single check for a given target URL.
type Checker interface {
	Check(ctx context.Context, target string) CheckResult
}
