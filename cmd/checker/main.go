package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/hamed0406/timewatch/internal/awsclient"
	"github.com/hamed0406/timewatch/internal/check"
	"github.com/hamed0406/timewatch/internal/config"
	"github.com/hamed0406/timewatch/internal/domain"
	"github.com/hamed0406/timewatch/internal/logging"
	"github.com/hamed0406/timewatch/internal/metrics"
	"github.com/hamed0406/timewatch/internal/notify"
	"github.com/hamed0406/timewatch/internal/probe"
	"github.com/hamed0406/timewatch/internal/repo/backend"
	"github.com/hamed0406/timewatch/internal/scheduler"
	"github.com/hamed0406/timewatch/internal/timesource"
)

func main() {
	cfg := config.Load()

	once := pflag.Bool("once", false, "run a single check and exit, ignoring any schedule")
	schedule := pflag.String("schedule", cfg.CheckSchedule, "cron spec (IST) for daemon mode; empty runs once")
	metricsAddr := pflag.String("metrics-addr", "", "serve /metrics on this address in daemon mode")
	pflag.Parse()

	logger, err := logging.NewLogger(cfg.LogDir, "checker")
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	if err := cfg.ValidateChecker(); err != nil {
		logger.Error("config_invalid", zap.Error(err))
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	awsCfg, err := awsclient.Load(ctx, cfg.AWSOptions())
	if err != nil {
		logger.Fatal("aws_config_failed", zap.Error(err))
	}

	store, closeStore, err := backend.Open(ctx, cfg, awsCfg, cfg.Table, logger)
	if err != nil {
		logger.Fatal("store_open_failed", zap.Error(err))
	}
	defer closeStore()

	channels := notify.Multi{notify.NewSNS(sns.NewFromConfig(awsCfg), cfg.TopicARN)}
	if slack := notify.NewSlack(cfg.SlackWebhook, cfg.NotifyTimeout); slack != nil {
		channels = append(channels, slack)
	}
	dispatcher := notify.NewDispatcher(channels, logger, cfg.NotifyTimeout)

	reg := metrics.NewRegistry()
	runner := check.NewRunner(
		logger,
		timesource.New(cfg.TimeAPIURL, cfg.TimeAPIKey, cfg.TimeAPILocation, cfg.TimeAPITimeout),
		probe.NewProber(probe.NewHTTPChecker(cfg.HealthTimeout), probe.NewDNSChecker()),
		probe.TargetURL(cfg.ServiceAddr),
		store,
		dispatcher,
		metrics.NewCheck(reg),
	)

	if *once || *schedule == "" {
		sum := runner.Run(ctx)
		fmt.Println(sum.Message())
		return
	}

	// bound one run by the sum of its external calls
	runTimeout := cfg.TimeAPITimeout + cfg.HealthTimeout + 2*cfg.NotifyTimeout + 30*time.Second
	sched := scheduler.New(logger, domain.IST, runTimeout)
	if err := sched.Add("check", *schedule, true, func(ctx context.Context) {
		runner.Run(ctx)
	}); err != nil {
		logger.Fatal("schedule_invalid", zap.Error(err))
	}

	if *metricsAddr != "" {
		srv := &http.Server{Addr: *metricsAddr, Handler: metrics.Handler(reg), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			logger.Info("metrics_listen", zap.String("addr", *metricsAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics_server_failed", zap.Error(err))
			}
		}()
		defer srv.Close()
	}

	_ = sched.Run(ctx)
}
