package port

import (
	"context"
	"errors"

	"github.com/Ahnaf-CDU/Assignment-3-HIT-137-Software-Now/internal/domain/entity"
)

// ErrNotLoaded is returned by Predict when Load has not succeeded yet.
var ErrNotLoaded = errors.New("model not loaded, call Load first")

// ErrInvalidInput is returned when the input kind does not match the variant
// (empty prompt, missing image, wrong type). Rejected before any expensive
// work begins.
var ErrInvalidInput = errors.New("invalid input")

// Model is the contract both adapters conform to.
//
// Load acquires the underlying pipeline. It is not idempotent: calling it
// twice re-initializes. It never propagates a failure past the boundary; on
// any failure it logs, clears the loaded flag and returns false.
//
// Predict returns a ClassificationResult or a VideoResult. Internal failures
// are wrapped with context; no partial result is ever returned.
type Model interface {
	Load(ctx context.Context) bool
	Predict(ctx context.Context, input any) (any, error)
	Info() map[string]string
	Descriptor() entity.ModelDescriptor
}
