package probe

import (
	"context"
	"net/url"
)

// DNSChecker classifies how a target's host resolves. It is used to explain
// health probe transport failures, not as a health signal of its own.
type DNSChecker struct{}

func NewDNSChecker() *DNSChecker {
	return &DNSChecker{}
}

func (d *DNSChecker) Check(ctx context.Context, target string) CheckResult {
	dns := CheckDNS(ctx, extractHost(TargetURL(target)))

	return CheckResult{
		Name:    "DNS",
		Success: dns.Class == ClassResolves,
		Message: dns.Class,
	}
}

func extractHost(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return raw
	}
	return u.Hostname()
}
