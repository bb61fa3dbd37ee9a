package port

import (
	"context"
	"image"
)

// VideoEncoder persists a frame sequence as a video container plus a still
// preview. Implementations must not leave a partial file behind on failure.
type VideoEncoder interface {
	Encode(ctx context.Context, frames []*image.RGBA, fps int, outPath string) error
	SavePreview(frame image.Image, outPath string) error
}
