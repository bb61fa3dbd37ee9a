package postgres

import (
	"context"
	"fmt"

	"github.com/Ahnaf-CDU/Assignment-3-HIT-137-Software-Now/internal/domain/entity"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS operations (
	id            UUID PRIMARY KEY,
	slot          TEXT NOT NULL,
	kind          TEXT NOT NULL,
	input         TEXT NOT NULL DEFAULT '',
	status        TEXT NOT NULL,
	error_message TEXT NOT NULL DEFAULT '',
	video_path    TEXT NOT NULL DEFAULT '',
	preview_path  TEXT NOT NULL DEFAULT '',
	frame_count   INT  NOT NULL DEFAULT 0,
	created_at    TIMESTAMPTZ NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL,
	completed_at  TIMESTAMPTZ
)`

// OperationRepository persists the run history in PostgreSQL.
type OperationRepository struct {
	pool *pgxpool.Pool
}

func NewOperationRepository(pool *pgxpool.Pool) *OperationRepository {
	return &OperationRepository{pool: pool}
}

// EnsureSchema creates the operations table when missing.
func (r *OperationRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure operations schema: %w", err)
	}
	return nil
}

func (r *OperationRepository) Create(ctx context.Context, op *entity.Operation) error {
	query := `
		INSERT INTO operations (
			id, slot, kind, input, status, error_message,
			video_path, preview_path, frame_count,
			created_at, updated_at, completed_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`

	_, err := r.pool.Exec(ctx, query,
		op.ID, op.Slot, string(op.Kind), op.Input, string(op.Status), op.ErrorMessage,
		op.VideoPath, op.PreviewPath, op.FrameCount,
		op.CreatedAt, op.UpdatedAt, op.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("insert operation: %w", err)
	}
	return nil
}

func (r *OperationRepository) Update(ctx context.Context, op *entity.Operation) error {
	query := `
		UPDATE operations SET
			status=$2, error_message=$3, video_path=$4, preview_path=$5,
			frame_count=$6, updated_at=$7, completed_at=$8
		WHERE id=$1`

	_, err := r.pool.Exec(ctx, query,
		op.ID, string(op.Status), op.ErrorMessage, op.VideoPath, op.PreviewPath,
		op.FrameCount, op.UpdatedAt, op.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("update operation: %w", err)
	}
	return nil
}

func (r *OperationRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Operation, error) {
	query := `
		SELECT id, slot, kind, input, status, error_message,
			video_path, preview_path, frame_count,
			created_at, updated_at, completed_at
		FROM operations WHERE id=$1`

	op := &entity.Operation{}
	var kind, status string
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&op.ID, &op.Slot, &kind, &op.Input, &status, &op.ErrorMessage,
		&op.VideoPath, &op.PreviewPath, &op.FrameCount,
		&op.CreatedAt, &op.UpdatedAt, &op.CompletedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("find operation by id: %w", err)
	}
	op.Kind = entity.OperationKind(kind)
	op.Status = entity.OperationStatus(status)
	return op, nil
}

func (r *OperationRepository) ListRecent(ctx context.Context, limit int) ([]*entity.Operation, error) {
	query := `
		SELECT id, slot, kind, input, status, error_message,
			video_path, preview_path, frame_count,
			created_at, updated_at, completed_at
		FROM operations ORDER BY created_at DESC LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list operations: %w", err)
	}
	defer rows.Close()

	var ops []*entity.Operation
	for rows.Next() {
		op := &entity.Operation{}
		var kind, status string
		if err := rows.Scan(
			&op.ID, &op.Slot, &kind, &op.Input, &status, &op.ErrorMessage,
			&op.VideoPath, &op.PreviewPath, &op.FrameCount,
			&op.CreatedAt, &op.UpdatedAt, &op.CompletedAt,
		); err != nil {
			return nil, fmt.Errorf("scan operation: %w", err)
		}
		op.Kind = entity.OperationKind(kind)
		op.Status = entity.OperationStatus(status)
		ops = append(ops, op)
	}
	return ops, rows.Err()
}
