// cmd/preflight/main.go
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/multierr"

	"github.com/hamed0406/timewatch/internal/config"
	"github.com/hamed0406/timewatch/internal/scheduler"
)

func main() {
	target := pflag.String("for", "all", "binary to check: checker, web, scaler or all")
	pflag.Parse()

	failed := false
	fail := func(msg string) {
		fmt.Fprintln(os.Stderr, "✖", msg)
		failed = true
	}
	warn := func(msg string) { fmt.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Println("✔", msg) }

	cfg := config.Load()
	want := func(name string) bool { return *target == "all" || *target == name }

	report := func(name string, err error) {
		if err == nil {
			ok(name + " configuration complete")
			return
		}
		for _, e := range multierr.Errors(err) {
			fail(name + ": " + e.Error())
		}
	}

	if want("checker") {
		report("checker", cfg.ValidateChecker())
		if cfg.TimeAPIKey == "" {
			warn("ABSTRACT_API_KEY is empty; the time API may reject requests.")
		}
		if strings.Contains(cfg.ServiceAddr, "/") && !strings.Contains(cfg.ServiceAddr, "://") {
			warn("ALB_DNS_NAME contains a path; expected a host name.")
		}
		if cfg.SlackWebhook == "" {
			warn("SLACK_WEBHOOK_URL empty; alerts go to SNS only.")
		}
		if cfg.CheckSchedule != "" {
			if _, err := scheduler.ParseSpec(cfg.CheckSchedule); err != nil {
				fail("CHECK_SCHEDULE: " + err.Error())
			} else {
				ok("CHECK_SCHEDULE=" + cfg.CheckSchedule)
			}
		}
	}

	if want("web") {
		report("web", cfg.ValidateWeb())
		ok("DYNAMODB_TABLE=" + cfg.TableOrDefault())
		if len(cfg.PublicAPIKeys) == 0 {
			warn("PUBLIC_API_KEYS is empty; /api/status is open.")
		}
		if len(cfg.AdminAPIKeys) == 0 {
			warn("ADMIN_API_KEYS is empty; /metrics is open.")
		}
		for name, v := range map[string]string{"ADMIN_API_KEYS": os.Getenv("ADMIN_API_KEYS"), "PUBLIC_API_KEYS": os.Getenv("PUBLIC_API_KEYS")} {
			if strings.Contains(v, " ") {
				warn(name + " contains spaces; use comma-separated with no spaces, e.g. key1,key2")
			}
		}
		if cfg.MetadataURI != "" && !cfg.TrustProxy {
			warn("running on ECS without TRUST_PROXY_HEADERS; behind the ALB every client shares one rate limit.")
		}
		if cfg.MetadataURI == "" {
			warn("ECS_CONTAINER_METADATA_URI_V4 empty; page will show local-dev-container.")
		}
	}

	if want("scaler") {
		report("scaler", cfg.ValidateScaler())
		for name, spec := range map[string]string{"SCALE_UP_SCHEDULE": cfg.ScaleUpSchedule, "SCALE_DOWN_SCHEDULE": cfg.ScaleDownSchedule} {
			if spec == "" {
				continue
			}
			if _, err := scheduler.ParseSpec(spec); err != nil {
				fail(name + ": " + err.Error())
			}
		}
	}

	if cfg.StoreBackend == config.BackendMemory {
		warn("STORE_BACKEND=memory; checker and web will not share the record.")
	}
	if cfg.AWSEndpoint != "" {
		ok("AWS_ENDPOINT_URL=" + cfg.AWSEndpoint)
	}

	if failed {
		os.Exit(1)
	}
	ok("preflight passed")
}
