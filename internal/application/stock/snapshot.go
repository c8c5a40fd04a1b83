package stock

import (
	"context"
	"fmt"
	"time"

	dominv "github.com/Zhima-Mochi/stockroom/internal/domain/inventory"
	"github.com/Zhima-Mochi/stockroom/internal/infrastructure/snapshot"
	"github.com/Zhima-Mochi/stockroom/internal/observability"
	"github.com/Zhima-Mochi/stockroom/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
)

const (
	useCaseSnapshot = "stock.snapshot"
	useCaseRestore  = "stock.restore"
	snapshotPeer    = "snapshot_file"
)

// SnapshotUseCase serializes the full mapping to the snapshot file.
type SnapshotUseCase struct {
	invRepo      dominv.Repository
	files        *snapshot.FileStore
	log          observability.Logger
	tracer       observability.Tracer
	extCounter   observability.Counter
	extHistogram observability.Histogram
}

func NewSnapshotUseCase(invRepo dominv.Repository, files *snapshot.FileStore, tel observability.Observability) *SnapshotUseCase {
	log, tracer, metrics := telemetryOr(tel)
	return &SnapshotUseCase{
		invRepo:      invRepo,
		files:        files,
		log:          log,
		tracer:       tracer,
		extCounter:   metrics.Counter(observability.MSnapshotOps),
		extHistogram: metrics.Histogram(observability.MSnapshotDuration),
	}
}

func (uc *SnapshotUseCase) Execute(ctx context.Context, _ SnapshotCommand) (_ SnapshotResult, err error) {
	logger := logctx.FromOr(ctx, uc.log).With(
		observability.F("use_case", useCaseSnapshot),
		observability.F("path", uc.files.Path()),
	)

	ctx, span := uc.tracer.Start(ctx, spanPrefix+"Snapshot",
		attribute.String("use_case", useCaseSnapshot),
		attribute.String("snapshot.path", uc.files.Path()),
	)
	start := time.Now()
	outcome, statusText := "success", "OK"

	defer func() {
		finishSpan(span, err, statusText)
		uc.observeExternal("write", outcome, time.Since(start).Seconds())
		logDone(ctx, logger, outcome, statusText, time.Since(start).Seconds(), err)
	}()

	items, err := uc.invRepo.List(ctx)
	if err != nil {
		outcome, statusText = "error", "LIST_FAILED"
		return SnapshotResult{}, fmt.Errorf("stock: snapshot: %w", err)
	}

	if err = uc.files.Write(items); err != nil {
		outcome, statusText = "error", "WRITE_FAILED"
		return SnapshotResult{}, fmt.Errorf("stock: snapshot: %w", err)
	}

	return SnapshotResult{Path: uc.files.Path(), Items: len(items)}, nil
}

func (uc *SnapshotUseCase) observeExternal(endpoint, outcome string, latencySeconds float64) {
	if uc.extCounter != nil {
		uc.extCounter.Add(1,
			observability.L("peer", snapshotPeer),
			observability.L("endpoint", endpoint),
			observability.L("outcome", outcome),
		)
	}
	if uc.extHistogram != nil {
		uc.extHistogram.Observe(latencySeconds,
			observability.L("peer", snapshotPeer),
			observability.L("endpoint", endpoint),
		)
	}
}

// RestoreUseCase reads the snapshot file and replaces the in-memory mapping
// with its contents. Replace, not merge: restoring twice is idempotent and the
// result never depends on what happened to be loaded before.
type RestoreUseCase struct {
	invRepo      dominv.Repository
	files        *snapshot.FileStore
	log          observability.Logger
	tracer       observability.Tracer
	extCounter   observability.Counter
	extHistogram observability.Histogram
}

func NewRestoreUseCase(invRepo dominv.Repository, files *snapshot.FileStore, tel observability.Observability) *RestoreUseCase {
	log, tracer, metrics := telemetryOr(tel)
	return &RestoreUseCase{
		invRepo:      invRepo,
		files:        files,
		log:          log,
		tracer:       tracer,
		extCounter:   metrics.Counter(observability.MSnapshotOps),
		extHistogram: metrics.Histogram(observability.MSnapshotDuration),
	}
}

func (uc *RestoreUseCase) Execute(ctx context.Context, _ RestoreCommand) (_ RestoreResult, err error) {
	logger := logctx.FromOr(ctx, uc.log).With(
		observability.F("use_case", useCaseRestore),
		observability.F("path", uc.files.Path()),
	)

	ctx, span := uc.tracer.Start(ctx, spanPrefix+"Restore",
		attribute.String("use_case", useCaseRestore),
		attribute.String("snapshot.path", uc.files.Path()),
	)
	start := time.Now()
	outcome, statusText := "success", "OK"

	defer func() {
		finishSpan(span, err, statusText)
		uc.observeExternal("read", outcome, time.Since(start).Seconds())
		logDone(ctx, logger, outcome, statusText, time.Since(start).Seconds(), err)
	}()

	items, err := uc.files.Read()
	if err != nil {
		outcome, statusText = "error", "READ_FAILED"
		return RestoreResult{}, fmt.Errorf("stock: restore: %w", err)
	}

	if err = uc.invRepo.Reset(ctx, items); err != nil {
		outcome, statusText = "error", "RESET_FAILED"
		return RestoreResult{}, fmt.Errorf("stock: restore: %w", err)
	}

	return RestoreResult{Items: len(items)}, nil
}

func (uc *RestoreUseCase) observeExternal(endpoint, outcome string, latencySeconds float64) {
	if uc.extCounter != nil {
		uc.extCounter.Add(1,
			observability.L("peer", snapshotPeer),
			observability.L("endpoint", endpoint),
			observability.L("outcome", outcome),
		)
	}
	if uc.extHistogram != nil {
		uc.extHistogram.Observe(latencySeconds,
			observability.L("peer", snapshotPeer),
			observability.L("endpoint", endpoint),
		)
	}
}
