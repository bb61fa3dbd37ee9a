package port

import (
	"context"
	"image"
)

// RankedLabel is one raw pipeline prediction, score in [0,1].
type RankedLabel struct {
	Label string
	Score float64
}

// ImageClassifier is a pretrained classification pipeline. Init may fetch
// from disk or network and can take minutes; calling it again re-initializes.
type ImageClassifier interface {
	Init(ctx context.Context) error
	Classify(ctx context.Context, img image.Image) ([]RankedLabel, error)
	Close()
}

// GenerationOptions tune one text-to-image inference pass.
type GenerationOptions struct {
	Steps    int
	Guidance float64
	Width    int
	Height   int
}

// TextToImage is a pretrained text-to-image pipeline producing the seed
// still for animation. Runtime reports the compute device the pipeline ended
// up on ("cuda", "cpu", ...), valid after Init.
type TextToImage interface {
	Init(ctx context.Context) error
	Generate(ctx context.Context, prompt string, opts GenerationOptions) (image.Image, error)
	Runtime() string
}
