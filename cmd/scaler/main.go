package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/service/ecs"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/hamed0406/timewatch/internal/awsclient"
	"github.com/hamed0406/timewatch/internal/config"
	"github.com/hamed0406/timewatch/internal/domain"
	"github.com/hamed0406/timewatch/internal/logging"
	"github.com/hamed0406/timewatch/internal/scaling"
	"github.com/hamed0406/timewatch/internal/scheduler"
)

func main() {
	desired := pflag.Int("desired-count", -1, "set the service to this many tasks and exit")
	eventPath := pflag.String("event", "", `read {"desired_count": N} from this file ("-" for stdin) and exit`)
	pflag.Parse()

	cfg := config.Load()
	logger, err := logging.NewLogger(cfg.LogDir, "scaler")
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	if err := run(cfg, logger, *desired, *eventPath); err != nil {
		logger.Error("scaler_failed", zap.Error(err))
		fmt.Fprintln(os.Stderr, err)
		logger.Sync()
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *zap.Logger, desired int, eventPath string) error {
	if err := cfg.ValidateScaler(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	awsCfg, err := awsclient.Load(ctx, cfg.AWSOptions())
	if err != nil {
		return err
	}
	s := scaling.New(ecs.NewFromConfig(awsCfg), cfg.Cluster, cfg.Service, logger)

	switch {
	case eventPath != "":
		b, err := readEvent(eventPath)
		if err != nil {
			return err
		}
		ev, err := scaling.ParseEvent(b)
		if err != nil {
			return err
		}
		return s.Apply(ctx, ev.DesiredCount)

	case desired >= 0:
		return s.Apply(ctx, desired)
	}

	return businessHours(ctx, cfg, logger, s)
}

// businessHours keeps running, scaling up and down on the configured IST
// cron specs. A failed scale is logged and retried on the next tick.
func businessHours(ctx context.Context, cfg config.Config, logger *zap.Logger, s *scaling.Scaler) error {
	if cfg.ScaleUpSchedule == "" || cfg.ScaleDownSchedule == "" {
		return fmt.Errorf("no action: pass --desired-count or --event, or set SCALE_UP_SCHEDULE and SCALE_DOWN_SCHEDULE")
	}
	sched := scheduler.New(logger, domain.IST, 0)
	jobs := []struct {
		name  string
		spec  string
		count int
	}{
		{"scale_up", cfg.ScaleUpSchedule, cfg.ScaleUpCount},
		{"scale_down", cfg.ScaleDownSchedule, cfg.ScaleDownCount},
	}
	for _, j := range jobs {
		count := j.count
		if err := sched.Add(j.name, j.spec, false, func(ctx context.Context) {
			_ = s.Apply(ctx, count)
		}); err != nil {
			return err
		}
	}
	return sched.Run(ctx)
}

func readEvent(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
