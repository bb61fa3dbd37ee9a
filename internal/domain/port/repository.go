package port

import (
	"context"

	"github.com/Ahnaf-CDU/Assignment-3-HIT-137-Software-Now/internal/domain/entity"
	"github.com/google/uuid"
)

// OperationRepository records the run history of model operations.
type OperationRepository interface {
	Create(ctx context.Context, op *entity.Operation) error
	Update(ctx context.Context, op *entity.Operation) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Operation, error)
	ListRecent(ctx context.Context, limit int) ([]*entity.Operation, error)
}
