package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/ducminhle1904/alpaca-risk-bot/internal/broker"
	"github.com/ducminhle1904/alpaca-risk-bot/internal/broker/alpaca"
	"github.com/ducminhle1904/alpaca-risk-bot/internal/config"
	"github.com/ducminhle1904/alpaca-risk-bot/internal/execution"
	"github.com/ducminhle1904/alpaca-risk-bot/internal/logger"
	"github.com/ducminhle1904/alpaca-risk-bot/internal/marketdata"
	"github.com/ducminhle1904/alpaca-risk-bot/pkg/reporting"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	execLog, err := logger.NewLogger("executor")
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer execLog.Close()

	client := alpaca.NewClient(alpaca.Config{
		APIKey:    cfg.Alpaca.APIKey,
		SecretKey: cfg.Alpaca.SecretKey,
		Paper:     cfg.Alpaca.Paper,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := run(ctx, cfg, client, execLog); err != nil {
		execLog.Error("execution run failed: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, client *alpaca.Client, execLog *logger.Logger) error {
	// Orders placed against a closed market queue until the open with
	// stale prices. Refuse to run instead.
	clock, err := client.GetClock(ctx)
	if err != nil {
		return err
	}
	if !clock.IsOpen {
		execLog.Warning("market is closed, next open %s, nothing to do",
			clock.NextOpen.Format(time.RFC1123))
		return nil
	}

	// Stale open orders hold buying power the fresh batch was sized
	// against.
	if err := client.CancelAllOrders(ctx); err != nil {
		return err
	}
	execLog.Info("cancelled all open orders")

	data, err := os.ReadFile(cfg.Execution.DecisionsFile)
	if err != nil {
		return err
	}
	decisions, parseRejections, err := execution.ParseBatch(data)
	if err != nil {
		return err
	}
	execLog.Info("parsed %d decision(s) from %s (%d malformed)",
		len(decisions), cfg.Execution.DecisionsFile, len(parseRejections))

	validator := execution.NewValidator(client, execLog, cfg.Execution.CashBufferPct)
	result, err := validator.ValidateBatch(ctx, decisions)
	if err != nil {
		return err
	}
	result.Rejections = append(parseRejections, result.Rejections...)

	console := reporting.NewConsoleReporter()
	console.PrintStartup(cfg.Environment, cfg.Alpaca.Paper, result.Snapshot.Cash, len(decisions))
	printWatchlist(ctx, console, client, decisions, execLog)

	submitter := execution.NewSubmitter(client, execLog)
	outcomes := make([]reporting.OrderOutcome, 0, len(result.Plans))
	for _, plan := range result.Plans {
		outcome := reporting.OrderOutcome{Plan: plan}
		res, err := submitter.Submit(ctx, plan.Symbol, plan.Side, float64(plan.Qty),
			broker.TimeInForceDay, string(plan.Action))
		if err != nil {
			outcome.Err = err
		} else {
			outcome.OrderID = res.OrderID
			outcome.Status = res.Status
		}
		outcomes = append(outcomes, outcome)
	}

	console.PrintBatchSummary(result, outcomes)

	excel := reporting.NewExcelReporter()
	auditPath, err := excel.WriteAudit(cfg.Execution.AuditDir, result, outcomes)
	if err != nil {
		execLog.Error("failed to write audit workbook: %v", err)
	} else {
		execLog.Info("audit workbook written to %s", auditPath)
	}
	return nil
}

// printWatchlist shows last prices for the batch symbols. Display only,
// served through the TTL cache; sizing prices are always fetched fresh
// by the validator.
func printWatchlist(ctx context.Context, console *reporting.ConsoleReporter, client *alpaca.Client, decisions []execution.Decision, execLog *logger.Logger) {
	cache := marketdata.NewCache("database/market_cache.json")
	if err := cache.Load(); err != nil {
		execLog.Warning("failed to load market cache: %v", err)
	}
	provider := marketdata.NewPriceProvider(client, cache)

	prices := make(map[string]float64, len(decisions))
	order := make([]string, 0, len(decisions))
	for _, d := range decisions {
		order = append(order, d.Symbol)
		price, err := provider.LastPrice(ctx, d.Symbol)
		if err != nil {
			execLog.Warning("no last price for %s: %v", d.Symbol, err)
			continue
		}
		prices[d.Symbol] = price
	}
	console.PrintWatchlist(prices, order)

	if err := cache.Save(); err != nil {
		execLog.Warning("failed to save market cache: %v", err)
	}
}
