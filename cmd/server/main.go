package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"devconnect/internal/api"
	"devconnect/internal/config"
	"devconnect/internal/db"
	"devconnect/internal/logging"
	"devconnect/internal/metrics"
	redisdb "devconnect/internal/redis"
	"devconnect/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_FILE"), "path to a JSON config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(logging.Config{
		ServiceName: "devconnect",
		Environment: cfg.Server.Env,
		Level:       cfg.Log.Level,
	})
	slog.SetDefault(logger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	stores, err := db.Open(cfg)
	if err != nil {
		logger.Error("DB init error", "error", err)
		os.Exit(1)
	}
	defer stores.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := user.SeedAdmin(ctx, user.NewStore(stores.Users), user.AdminSeed{
		Username: cfg.Admin.Username,
		Email:    cfg.Admin.Email,
		Password: cfg.Admin.Password,
	}, logger); err != nil {
		logger.Error("admin seed failed", "error", err)
		os.Exit(1)
	}

	rdb := redisdb.NewClient(cfg)
	if rdb != nil {
		defer rdb.Close()
		if err := redisdb.Ping(ctx, rdb, 2*time.Second); err != nil {
			logger.Warn("redis unreachable, presence tracking degraded", "addr", cfg.Redis.Addr, "error", err)
		}
	} else {
		logger.Info("redis not configured, presence tracking disabled")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.MustRegister(reg)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           api.SetupRouter(cfg, logger, stores, rdb, reg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr, "env", cfg.Server.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
