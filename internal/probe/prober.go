package probe

import (
	"context"
	"fmt"
)

// Prober is the health probe of the check routine: one HTTP check and, when
// that fails before any response arrives, a DNS lookup to explain why.
type Prober struct {
	HTTP Checker
	DNS  Checker
}

func NewProber(http, dns Checker) *Prober {
	return &Prober{HTTP: http, DNS: dns}
}

func (p *Prober) Check(ctx context.Context, target string) CheckResult {
	out := p.HTTP.Check(ctx, target)
	if out.Success || out.StatusCode != 0 || p.DNS == nil {
		return out
	}
	dns := p.DNS.Check(ctx, target)
	if dns.Message != "" {
		out.Message = fmt.Sprintf("%s dns=%s", out.Message, dns.Message)
	}
	return out
}
