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

	"github.com/hamed0406/pingmore/internal/config"
	"github.com/hamed0406/pingmore/internal/httpapi"
	apimw "github.com/hamed0406/pingmore/internal/httpapi/middleware"
	"github.com/hamed0406/pingmore/internal/logging"
	"github.com/hamed0406/pingmore/internal/probe"
	"github.com/hamed0406/pingmore/internal/repo/memory"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal(err)
	}
	logDir := cfg.LogDir
	if logDir == "" {
		logDir = "logs"
	}
	logger, err := logging.NewLogger(logDir, cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	store := memory.New(cfg.HistorySize)
	api := httpapi.NewServer(logger, store, probe.NewDispatcher(logger), cfg.ProbeTimeout)

	keys := apimw.Keys{Public: cfg.PublicAPIKeys, Admin: cfg.AdminAPIKeys}
	limits := httpapi.Limits{
		PublicRPM: cfg.PublicRPM, PublicBurst: cfg.PublicBurst,
		AdminRPM: cfg.AdminRPM, AdminBurst: cfg.AdminBurst,
	}
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Router(keys, cfg.AllowedOrigins, limits),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("api_shutdown_error", zap.Error(err))
		}
	}()

	logger.Info("api_listen", zap.String("addr", cfg.Addr), zap.Int("history_size", cfg.HistorySize))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("api_listen_error", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("api_stopped")
}
