package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ducminhle1904/alpaca-risk-bot/internal/broker/alpaca"
	"github.com/ducminhle1904/alpaca-risk-bot/internal/config"
	"github.com/ducminhle1904/alpaca-risk-bot/internal/execution"
	"github.com/ducminhle1904/alpaca-risk-bot/internal/logger"
	"github.com/ducminhle1904/alpaca-risk-bot/internal/monitoring"
	"github.com/ducminhle1904/alpaca-risk-bot/internal/notifications"
	"github.com/ducminhle1904/alpaca-risk-bot/internal/risk"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	riskLog, err := logger.NewLogger("risk-monitor")
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer riskLog.Close()

	client := alpaca.NewClient(alpaca.Config{
		APIKey:    cfg.Alpaca.APIKey,
		SecretKey: cfg.Alpaca.SecretKey,
		Paper:     cfg.Alpaca.Paper,
	})

	store := risk.NewStore(cfg.Risk.DataFile)
	if err := store.Load(); err != nil {
		log.Fatalf("Failed to load risk data: %v", err)
	}
	riskLog.Info("loaded %d tracked position(s) from %s", store.Len(), cfg.Risk.DataFile)

	var notifier notifications.Notifier = notifications.NopNotifier{}
	if cfg.Notifications.TelegramToken != "" {
		notifier = notifications.NewTelegramNotifier(
			cfg.Notifications.TelegramToken, cfg.Notifications.TelegramChatID)
	} else {
		riskLog.Info("telegram notifications disabled (no token configured)")
	}

	submitter := execution.NewSubmitter(client, riskLog)
	monitor := risk.NewMonitor(client, store, submitter, notifier, riskLog,
		cfg.Risk.HardStopPct, cfg.Risk.TrailPct)

	health := monitoring.NewHealthChecker()
	startServers(cfg, health, riskLog)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	riskLog.Info("risk monitor started (%s, interval %s, hard %.1f%%, trail %.1f%%)",
		client.GetEnvironment(), cfg.Risk.PassInterval,
		cfg.Risk.HardStopPct*100, cfg.Risk.TrailPct*100)

	runPass(ctx, monitor, health, riskLog)

	ticker := time.NewTicker(cfg.Risk.PassInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			riskLog.Info("shutting down")
			return
		case <-ticker.C:
			runPass(ctx, monitor, health, riskLog)
		}
	}
}

// runPass executes one monitoring pass and updates the health state.
// Passes run on the ticker goroutine itself, so a slow pass delays the
// next tick instead of overlapping it.
func runPass(ctx context.Context, monitor *risk.Monitor, health *monitoring.HealthChecker, riskLog *logger.Logger) {
	if ctx.Err() != nil {
		return
	}
	if err := monitor.RunPass(ctx); err != nil {
		riskLog.Error("pass failed: %v", err)
		health.SetConnected(false)
		health.AddError(err.Error())
		return
	}
	health.SetConnected(true)
	health.UpdateLastPass(time.Now())
}

func startServers(cfg *config.Config, health *monitoring.HealthChecker, riskLog *logger.Logger) {
	healthMux := http.NewServeMux()
	healthMux.Handle("/health", health)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Monitoring.HealthPort)
		if err := http.ListenAndServe(addr, healthMux); err != nil {
			riskLog.Error("health server stopped: %v", err)
			os.Exit(1)
		}
	}()

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", monitoring.NewMetricsHandler())
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Monitoring.PrometheusPort)
		if err := http.ListenAndServe(addr, metricsMux); err != nil {
			riskLog.Error("metrics server stopped: %v", err)
			os.Exit(1)
		}
	}()
}
