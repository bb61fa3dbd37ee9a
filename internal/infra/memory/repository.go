// Package memory keeps the operation history in process, used when no
// database is configured.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/Ahnaf-CDU/Assignment-3-HIT-137-Software-Now/internal/domain/entity"
	"github.com/google/uuid"
)

const maxEntries = 256

type OperationRepository struct {
	mu  sync.RWMutex
	ops []*entity.Operation
}

func NewOperationRepository() *OperationRepository {
	return &OperationRepository{}
}

func (r *OperationRepository) Create(_ context.Context, op *entity.Operation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *op
	r.ops = append(r.ops, &cp)
	if len(r.ops) > maxEntries {
		r.ops = r.ops[len(r.ops)-maxEntries:]
	}
	return nil
}

func (r *OperationRepository) Update(_ context.Context, op *entity.Operation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.ops {
		if existing.ID == op.ID {
			cp := *op
			r.ops[i] = &cp
			return nil
		}
	}
	return fmt.Errorf("operation %s not found", op.ID)
}

func (r *OperationRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.Operation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, op := range r.ops {
		if op.ID == id {
			cp := *op
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("operation %s not found", id)
}

func (r *OperationRepository) ListRecent(_ context.Context, limit int) ([]*entity.Operation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := len(r.ops)
	if limit > n {
		limit = n
	}

	out := make([]*entity.Operation, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		cp := *r.ops[i]
		out = append(out, &cp)
	}
	return out, nil
}
