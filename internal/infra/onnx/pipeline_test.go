package onnx

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSoftmaxSumsToOneAndPreservesOrder(t *testing.T) {
	probs := softmax([]float32{2.0, 1.0, 0.1, -3.0})
	require.Len(t, probs, 4)

	var sum float64
	for _, p := range probs {
		sum += float64(p)
	}
	assert.InDelta(t, 1.0, sum, 1e-5)
	assert.Greater(t, probs[0], probs[1])
	assert.Greater(t, probs[1], probs[2])
	assert.Greater(t, probs[2], probs[3])
}

func TestSoftmaxHandlesLargeLogits(t *testing.T) {
	probs := softmax([]float32{1000, 999})
	require.Len(t, probs, 2)
	assert.False(t, math.IsNaN(float64(probs[0])))
	assert.Greater(t, probs[0], probs[1])
}

func TestSoftmaxEmpty(t *testing.T) {
	assert.Nil(t, softmax(nil))
}

func TestPreprocessLayout(t *testing.T) {
	p := NewPipeline("model.onnx", "meta.json", zap.NewNop())
	p.metadata = Metadata{ImageSize: 4}

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 255, G: 0, B: 128, A: 255})
		}
	}

	data := p.preprocess(img)
	require.Len(t, data, 3*4*4)

	// CHW layout: first plane red, second green, third blue.
	assert.InDelta(t, 1.0, float64(data[0]), 1e-3)
	assert.InDelta(t, 0.0, float64(data[16]), 1e-3)
	assert.InDelta(t, 0.5, float64(data[32]), 2e-2)
}
