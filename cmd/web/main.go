package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/timewatch/internal/awsclient"
	"github.com/hamed0406/timewatch/internal/config"
	"github.com/hamed0406/timewatch/internal/ecsmeta"
	"github.com/hamed0406/timewatch/internal/httpapi"
	apimw "github.com/hamed0406/timewatch/internal/httpapi/middleware"
	"github.com/hamed0406/timewatch/internal/logging"
	"github.com/hamed0406/timewatch/internal/metrics"
	"github.com/hamed0406/timewatch/internal/repo/backend"
)

func main() {
	cfg := config.Load()
	logger, err := logging.NewLogger(cfg.LogDir, "web")
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	if err := cfg.ValidateWeb(); err != nil {
		logger.Fatal("config_invalid", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	awsCfg, err := awsclient.Load(ctx, cfg.AWSOptions())
	if err != nil {
		logger.Fatal("aws_config_failed", zap.Error(err))
	}

	store, closeStore, err := backend.Open(ctx, cfg, awsCfg, cfg.TableOrDefault(), logger)
	if err != nil {
		logger.Fatal("store_open_failed", zap.Error(err))
	}
	defer closeStore()

	containerID := ecsmeta.ContainerID(ctx, cfg.MetadataURI, nil)
	logger.Info("container_identified", zap.String("container_id", containerID))

	reg := metrics.NewRegistry()
	api := httpapi.NewServer(logger, store, containerID, metrics.NewWeb(reg), reg)
	keys := apimw.Keys{Public: cfg.PublicAPIKeys, Admin: cfg.AdminAPIKeys}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Router(keys, apimw.Limits{
			PerMinute:  cfg.PublicRPM,
			Burst:      cfg.PublicBurst,
			TrustProxy: cfg.TrustProxy,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("web_listen", zap.String("addr", cfg.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("web_listen_failed", zap.Error(err))
	}
	logger.Info("web_stopped")
}
