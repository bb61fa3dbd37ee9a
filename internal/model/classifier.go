package model

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strconv"
	"sync"

	"github.com/Ahnaf-CDU/Assignment-3-HIT-137-Software-Now/internal/domain/entity"
	"github.com/Ahnaf-CDU/Assignment-3-HIT-137-Software-Now/internal/domain/port"
	"go.uber.org/zap"
)

const defaultTopK = 3

// Classifier adapts a pretrained image-classification pipeline to the Model
// contract. Input is a filesystem path or an in-memory image; output is the
// pipeline's ranked labels cut to topK and re-numbered from 1.
type Classifier struct {
	mu         sync.Mutex
	descriptor entity.ModelDescriptor
	pipeline   port.ImageClassifier
	topK       int
	logger     *zap.Logger
}

func NewClassifier(pipeline port.ImageClassifier, logger *zap.Logger) *Classifier {
	return &Classifier{
		descriptor: entity.ModelDescriptor{
			Name:        "Vision Transformer (ViT)",
			Category:    "Computer Vision - Image Classification",
			Description: "Vision Transformer (ViT) applies transformer mechanisms to image classification by processing image patches as sequences. Classifies images into ImageNet categories with confidence scores.",
		},
		pipeline: pipeline,
		topK:     defaultTopK,
		logger:   logger,
	}
}

func (c *Classifier) Load(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.descriptor.Loaded = false
	port.Progress(ctx)(10, fmt.Sprintf("Loading %s model...", c.descriptor.Name))

	if err := c.pipeline.Init(ctx); err != nil {
		c.logger.Error("classifier load failed", zap.Error(err))
		return false
	}

	c.descriptor.Loaded = true
	c.logger.Info("classifier loaded", zap.String("model", c.descriptor.Name))
	return true
}

func (c *Classifier) Predict(ctx context.Context, input any) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.descriptor.Loaded {
		return nil, port.ErrNotLoaded
	}

	img, err := resolveImageInput(input)
	if err != nil {
		return nil, err
	}

	port.Progress(ctx)(30, "Classifying image...")

	ranked, err := c.pipeline.Classify(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("prediction failed: %w", err)
	}

	k := c.topK
	if k > len(ranked) {
		k = len(ranked)
	}

	result := make(entity.ClassificationResult, 0, k)
	for i, entry := range ranked[:k] {
		result = append(result, entity.Prediction{
			Rank:       i + 1,
			Label:      entry.Label,
			Confidence: fmt.Sprintf("%.2f%%", entry.Score*100),
		})
	}

	port.Progress(ctx)(90, fmt.Sprintf("Classification complete, top %d categories ranked", k))
	return result, nil
}

// SetTopK ignores non-positive values by design; a warning is logged so the
// rejected value is still visible.
func (c *Classifier) SetTopK(k int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if k <= 0 {
		c.logger.Warn("ignoring non-positive top-k", zap.Int("top_k", k))
		return
	}
	c.topK = k
}

func (c *Classifier) TopK() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.topK
}

func (c *Classifier) Info() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return map[string]string{
		"name":        c.descriptor.Name,
		"category":    c.descriptor.Category,
		"description": c.descriptor.Description,
		"status":      c.descriptor.Status(),
		"top_k":       strconv.Itoa(c.topK),
		"model_type":  "Vision Transformer (Patch-based)",
		"input_size":  "224x224 pixels",
	}
}

func (c *Classifier) Descriptor() entity.ModelDescriptor {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.descriptor
}

// resolveImageInput accepts a path string or an in-memory image, nothing else.
func resolveImageInput(input any) (image.Image, error) {
	switch v := input.(type) {
	case image.Image:
		return v, nil
	case string:
		f, err := os.Open(v)
		if err != nil {
			return nil, fmt.Errorf("%w: open image %q: %v", port.ErrInvalidInput, v, err)
		}
		defer f.Close()

		img, _, err := image.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("%w: decode image %q: %v", port.ErrInvalidInput, v, err)
		}
		return img, nil
	default:
		return nil, fmt.Errorf("%w: expected file path or image, got %T", port.ErrInvalidInput, input)
	}
}
