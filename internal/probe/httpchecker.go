package probe

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPChecker issues one GET per check. Only 200 counts as healthy; there
// are no retries, the next scheduled check is the retry.
type HTTPChecker struct {
	Client *http.Client
}

func NewHTTPChecker(timeout time.Duration) *HTTPChecker {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPChecker{
		Client: &http.Client{Timeout: timeout},
	}
}

func (h *HTTPChecker) Check(ctx context.Context, target string) CheckResult {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, TargetURL(target), nil)
	if err != nil {
		return CheckResult{Name: "HTTP", Success: false, Message: err.Error(), Err: err}
	}

	resp, err := h.Client.Do(req)
	latency := time.Since(start).Seconds() * 1000 // ms
	if err != nil {
		return CheckResult{Name: "HTTP", Success: false, Message: err.Error(), LatencyMS: latency, Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	return CheckResult{
		Name:       "HTTP",
		Success:    resp.StatusCode == http.StatusOK,
		StatusCode: resp.StatusCode,
		Message:    resp.Status,
		LatencyMS:  latency,
	}
}

// TargetURL turns a bare host such as a load balancer DNS name into an
// http:// URL. Values that already carry a scheme are returned unchanged.
func TargetURL(addr string) string {
	addr = strings.TrimSpace(addr)
	if strings.Contains(addr, "://") {
		return addr
	}
	return "http://" + addr
}
