package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Zhima-Mochi/stockroom/internal/application/stock"
	"github.com/Zhima-Mochi/stockroom/internal/infrastructure/id"
	"github.com/Zhima-Mochi/stockroom/internal/infrastructure/journal"
	"github.com/Zhima-Mochi/stockroom/internal/infrastructure/memory"
	obsinfra "github.com/Zhima-Mochi/stockroom/internal/infrastructure/observability"
	"github.com/Zhima-Mochi/stockroom/internal/infrastructure/observability/oteltrace"
	"github.com/Zhima-Mochi/stockroom/internal/infrastructure/observability/prometrics"
	"github.com/Zhima-Mochi/stockroom/internal/infrastructure/observability/zaplogger"
	"github.com/Zhima-Mochi/stockroom/internal/infrastructure/snapshot"
	"github.com/Zhima-Mochi/stockroom/internal/observability"
	"github.com/Zhima-Mochi/stockroom/internal/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	serviceName := getenvDefault("SERVICE_NAME", "stockroom")
	env := getenvDefault("ENV", "dev")
	snapshotPath := getenvDefault("SNAPSHOT_FILE", "inventory.json")
	metricsAddr := getenvDefault("METRICS_ADDR", ":8080")

	baseLogger := logging.MustNewLogger(serviceName, env)
	defer func() { _ = baseLogger.Sync() }()
	zap.ReplaceGlobals(baseLogger)

	systemLogger := logging.WithTrace(baseLogger, logging.SystemTraceID, logging.SystemSpanID)
	log := zaplogger.Wrap(baseLogger)

	metrics := prometrics.New(prometheus.DefaultRegisterer, "stockroom", "")
	counters := map[observability.MetricKey]observability.Counter{
		observability.MStoreOps: metrics.Counter(
			string(observability.MStoreOps),
			"Total number of store operations.",
			"use_case", "outcome",
		),
		observability.MSnapshotOps: metrics.Counter(
			string(observability.MSnapshotOps),
			"Total number of snapshot file operations.",
			"peer", "endpoint", "outcome",
		),
		observability.MJournalEvents: metrics.Counter(
			string(observability.MJournalEvents),
			"Total number of journal events handled.",
			"event", "outcome",
		),
	}
	histograms := map[observability.MetricKey]observability.Histogram{
		observability.MStoreOpDuration: metrics.Histogram(
			string(observability.MStoreOpDuration),
			"Duration of store operations in seconds.",
			nil,
			"use_case",
		),
		observability.MSnapshotDuration: metrics.Histogram(
			string(observability.MSnapshotDuration),
			"Duration of snapshot file operations in seconds.",
			nil,
			"peer", "endpoint",
		),
	}
	tel := obsinfra.New(oteltrace.New(serviceName), log, counters, histograms)

	invRepo := memory.NewInventoryRepository()
	files := snapshot.NewFileStore(snapshotPath)
	ids := id.NewUUIDGenerator()

	bus := journal.NewBus(log, tel)
	bus.Start(context.Background())
	defer bus.Stop(context.Background())

	addStock := stock.NewAddStockUseCase(invRepo, bus, ids, tel)
	removeStock := stock.NewRemoveStockUseCase(invRepo, bus, ids, tel)
	quantity := stock.NewQuantityQuery(invRepo, tel)
	report := stock.NewReportQuery(invRepo, tel)
	lowStock := stock.NewLowStockQuery(invRepo, tel)
	saveSnapshot := stock.NewSnapshotUseCase(invRepo, files, tel)
	restore := stock.NewRestoreUseCase(invRepo, files, tel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	autosave := stock.NewAutosaveWorker(bus, saveSnapshot, ids, tel, 0)
	autosave.Start(ctx)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:    metricsAddr,
		Handler: mux,
	}

	go func() {
		systemLogger.Info("metrics_server_start",
			zap.String("addr", server.Addr),
		)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			systemLogger.Error("metrics_server_error",
				zap.Error(err),
			)
		}
	}()

	runDemo(logging.ContextWithLogger(ctx, systemLogger), addStock, removeStock, quantity, report, lowStock, saveSnapshot, restore)

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		systemLogger.Error("metrics_server_shutdown_error",
			zap.Error(err),
		)
	} else {
		systemLogger.Info("metrics_server_stopped")
	}

	// Final snapshot so nothing mutated since the last autosave is lost.
	if _, err := saveSnapshot.Execute(shutdownCtx, stock.SnapshotCommand{}); err != nil {
		systemLogger.Error("final_snapshot_failed",
			zap.Error(err),
		)
	}
}

// runDemo exercises the store end to end: a few adds (including rejected
// input), removals, queries, then a snapshot round-trip.
func runDemo(
	ctx context.Context,
	addStock *stock.AddStockUseCase,
	removeStock *stock.RemoveStockUseCase,
	quantity *stock.QuantityQuery,
	report *stock.ReportQuery,
	lowStock *stock.LowStockQuery,
	saveSnapshot *stock.SnapshotUseCase,
	restore *stock.RestoreUseCase,
) {
	logger := logging.FromContext(ctx)

	if res, err := addStock.Execute(ctx, stock.AddStockCommand{Name: "apple", Quantity: 10}); err != nil {
		logger.Warn("demo_add_failed", zap.String("item", "apple"), zap.Error(err))
	} else {
		for _, entry := range res.Log {
			logger.Info("demo_stock_log", zap.String("entry", entry.String()))
		}
	}
	if _, err := addStock.Execute(ctx, stock.AddStockCommand{Name: "banana", Quantity: -2}); err != nil {
		logger.Warn("demo_add_rejected", zap.String("item", "banana"), zap.Error(err))
	}
	if _, err := addStock.Execute(ctx, stock.AddStockCommand{Name: "", Quantity: 10}); err != nil {
		logger.Warn("demo_add_rejected", zap.String("item", ""), zap.Error(err))
	}
	if _, err := removeStock.Execute(ctx, stock.RemoveStockCommand{Name: "apple", Quantity: 3}); err != nil {
		logger.Warn("demo_remove_failed", zap.String("item", "apple"), zap.Error(err))
	}
	if _, err := removeStock.Execute(ctx, stock.RemoveStockCommand{Name: "orange", Quantity: 1}); err != nil {
		logger.Warn("demo_remove_rejected", zap.String("item", "orange"), zap.Error(err))
	}

	qty, err := quantity.Execute(ctx, stock.QuantityCommand{Name: "apple"})
	if err != nil {
		logger.Warn("demo_quantity_failed", zap.Error(err))
	} else {
		logger.Info("demo_apple_stock", zap.Int("quantity", qty))
	}

	low, err := lowStock.Execute(ctx, stock.LowStockCommand{})
	if err != nil {
		logger.Warn("demo_low_stock_failed", zap.Error(err))
	} else {
		logger.Info("demo_low_items", zap.Strings("items", low))
	}

	if _, err := saveSnapshot.Execute(ctx, stock.SnapshotCommand{}); err != nil {
		logger.Warn("demo_snapshot_failed", zap.Error(err))
	}
	if _, err := restore.Execute(ctx, stock.RestoreCommand{}); err != nil {
		logger.Warn("demo_restore_failed", zap.Error(err))
	}

	lines, err := report.Execute(ctx, stock.ReportCommand{})
	if err != nil {
		logger.Warn("demo_report_failed", zap.Error(err))
		return
	}
	for _, line := range lines {
		logger.Info("demo_stock_report",
			zap.String("item", line.Name),
			zap.Int("quantity", line.Quantity),
		)
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
