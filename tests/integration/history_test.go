package integration

import (
	"context"
	"testing"
	"time"

	"github.com/Ahnaf-CDU/Assignment-3-HIT-137-Software-Now/internal/domain/entity"
	"github.com/Ahnaf-CDU/Assignment-3-HIT-137-Software-Now/internal/infra/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

func TestOperationHistoryRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	// Start PostgreSQL container
	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:15-alpine",
		tcpostgres.WithDatabase("studio"),
		tcpostgres.WithUsername("studio_user"),
		tcpostgres.WithPassword("studio_pass"),
		tcpostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	defer pgContainer.Terminate(ctx)

	pgConnStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, pgConnStr)
	require.NoError(t, err)
	defer pool.Close()

	repo := postgres.NewOperationRepository(pool)
	require.NoError(t, repo.EnsureSchema(ctx))
	// EnsureSchema is idempotent
	require.NoError(t, repo.EnsureSchema(ctx))

	// Create a pending prediction and walk it through the full lifecycle.
	op := entity.NewOperation("text-to-video", entity.OperationKindPredict, "a red fox in snow")
	require.NoError(t, repo.Create(ctx, op))

	got, err := repo.FindByID(ctx, op.ID)
	require.NoError(t, err)
	assert.Equal(t, op.ID, got.ID)
	assert.Equal(t, "text-to-video", got.Slot)
	assert.Equal(t, entity.OperationKindPredict, got.Kind)
	assert.Equal(t, "a red fox in snow", got.Input)
	assert.Equal(t, entity.OperationStatusPending, got.Status)
	assert.Nil(t, got.CompletedAt)

	op.MarkRunning()
	require.NoError(t, repo.Update(ctx, op))

	op.AttachArtifacts("generated_video.mp4", "generated_video_preview.png", 24)
	op.MarkCompleted()
	require.NoError(t, repo.Update(ctx, op))

	got, err = repo.FindByID(ctx, op.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OperationStatusCompleted, got.Status)
	assert.Equal(t, "generated_video.mp4", got.VideoPath)
	assert.Equal(t, "generated_video_preview.png", got.PreviewPath)
	assert.Equal(t, 24, got.FrameCount)
	require.NotNil(t, got.CompletedAt)
	assert.Empty(t, got.ErrorMessage)

	// A failed load keeps its error message.
	failed := entity.NewOperation("classifier", entity.OperationKindLoad, "")
	failed.CreatedAt = op.CreatedAt.Add(time.Second)
	failed.UpdatedAt = failed.CreatedAt
	require.NoError(t, repo.Create(ctx, failed))

	failed.MarkFailed("model load failed")
	require.NoError(t, repo.Update(ctx, failed))

	got, err = repo.FindByID(ctx, failed.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OperationStatusFailed, got.Status)
	assert.Equal(t, "model load failed", got.ErrorMessage)

	// ListRecent returns newest first and honors the limit.
	recent, err := repo.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, failed.ID, recent[0].ID)
	assert.Equal(t, op.ID, recent[1].ID)

	recent, err = repo.ListRecent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, failed.ID, recent[0].ID)

	t.Logf("Test passed: lifecycle persisted for %s", op.ID)
}
