package usecase

import (
	"context"
	"errors"
	"path"
	"time"

	"github.com/Ahnaf-CDU/Assignment-3-HIT-137-Software-Now/internal/domain/entity"
	"github.com/Ahnaf-CDU/Assignment-3-HIT-137-Software-Now/internal/domain/port"
	"github.com/Ahnaf-CDU/Assignment-3-HIT-137-Software-Now/internal/infra/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ErrLoadFailed is the terminal error when Load reports false; the cause is
// already in the adapter's log.
var ErrLoadFailed = errors.New("model load failed")

// Runner executes one model operation on a worker goroutine: it drives the
// adapter, records history, emits stage metrics and spans, and archives
// video artifacts. Progress reaches the caller through the reporter bound to
// the context; terminal delivery is the dispatcher's job.
type Runner struct {
	repo    port.OperationRepository
	archive port.ArtifactArchive // nil disables archiving
	logger  *zap.Logger
}

func NewRunner(repo port.OperationRepository, archive port.ArtifactArchive, logger *zap.Logger) *Runner {
	return &Runner{repo: repo, archive: archive, logger: logger}
}

// Begin records the freshly accepted operation. History is auxiliary: a
// failing repository is logged, never blocks the operation.
func (r *Runner) Begin(ctx context.Context, op *entity.Operation) {
	if err := r.repo.Create(ctx, op); err != nil {
		r.logger.Warn("failed to record operation", zap.Error(err), zap.String("operation_id", op.ID.String()))
	}
}

// RunLoad executes a model load. It returns ErrLoadFailed on failure; Load
// itself never raises past the adapter boundary.
func (r *Runner) RunLoad(ctx context.Context, op *entity.Operation, m port.Model, report port.ProgressFunc) error {
	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, "Runner.RunLoad")
	defer span.End()
	span.SetAttributes(
		attribute.String("operation.id", op.ID.String()),
		attribute.String("operation.slot", op.Slot),
	)

	log := r.logger.With(zap.String("operation_id", op.ID.String()), zap.String("slot", op.Slot))
	start := time.Now()

	r.markRunning(ctx, op)
	metrics.ActiveOperations.Inc()
	defer metrics.ActiveOperations.Dec()

	ok := m.Load(port.WithProgress(ctx, report))

	metrics.OperationDuration.WithLabelValues(op.Slot, string(op.Kind)).Observe(time.Since(start).Seconds())

	if !ok {
		r.finishFailed(ctx, op, ErrLoadFailed.Error())
		log.Warn("model load failed")
		return ErrLoadFailed
	}

	r.finishCompleted(ctx, op)
	log.Info("model loaded", zap.Duration("elapsed", time.Since(start)))
	return nil
}

// RunPredict executes a prediction and returns its result.
func (r *Runner) RunPredict(ctx context.Context, op *entity.Operation, m port.Model, input any, report port.ProgressFunc) (any, error) {
	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, "Runner.RunPredict")
	defer span.End()
	span.SetAttributes(
		attribute.String("operation.id", op.ID.String()),
		attribute.String("operation.slot", op.Slot),
	)

	log := r.logger.With(zap.String("operation_id", op.ID.String()), zap.String("slot", op.Slot))
	start := time.Now()

	r.markRunning(ctx, op)
	metrics.ActiveOperations.Inc()
	defer metrics.ActiveOperations.Dec()

	result, err := m.Predict(port.WithProgress(ctx, report), input)

	metrics.OperationDuration.WithLabelValues(op.Slot, string(op.Kind)).Observe(time.Since(start).Seconds())

	if err != nil {
		r.finishFailed(ctx, op, err.Error())
		log.Warn("prediction failed", zap.Error(err))
		return nil, err
	}

	if video, ok := result.(entity.VideoResult); ok {
		op.AttachArtifacts(video.File, video.Preview, video.Frames)
		r.archiveArtifacts(ctx, op, video, log)
	}

	r.finishCompleted(ctx, op)
	log.Info("prediction completed", zap.Duration("elapsed", time.Since(start)))
	return result, nil
}

// archiveArtifacts is best-effort; the operation already succeeded locally.
func (r *Runner) archiveArtifacts(ctx context.Context, op *entity.Operation, video entity.VideoResult, log *zap.Logger) {
	if r.archive == nil {
		return
	}

	prefix := op.Slot + "/" + op.ID.String()
	if err := r.archive.StoreArtifact(ctx, prefix+"/"+path.Base(video.File), video.File, "video/mp4"); err != nil {
		log.Warn("failed to archive video", zap.Error(err))
		return
	}
	if err := r.archive.StoreArtifact(ctx, prefix+"/"+path.Base(video.Preview), video.Preview, "image/png"); err != nil {
		log.Warn("failed to archive preview", zap.Error(err))
		return
	}
	log.Info("artifacts archived", zap.String("prefix", prefix))
}

func (r *Runner) markRunning(ctx context.Context, op *entity.Operation) {
	op.MarkRunning()
	r.update(ctx, op)
}

func (r *Runner) finishCompleted(ctx context.Context, op *entity.Operation) {
	op.MarkCompleted()
	r.update(ctx, op)
	metrics.OperationsTotal.WithLabelValues(op.Slot, string(op.Kind), "completed").Inc()
}

func (r *Runner) finishFailed(ctx context.Context, op *entity.Operation, msg string) {
	op.MarkFailed(msg)
	r.update(ctx, op)
	metrics.OperationsTotal.WithLabelValues(op.Slot, string(op.Kind), "failed").Inc()
}

func (r *Runner) update(ctx context.Context, op *entity.Operation) {
	// History writes survive a canceled operation context.
	if ctx.Err() != nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
	}
	if err := r.repo.Update(ctx, op); err != nil {
		r.logger.Warn("failed to update operation record",
			zap.Error(err),
			zap.String("operation_id", op.ID.String()),
		)
	}
}
