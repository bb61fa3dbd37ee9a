package model

import (
	"context"
	"errors"
	"image"
	"regexp"
	"testing"

	"github.com/Ahnaf-CDU/Assignment-3-HIT-137-Software-Now/internal/domain/entity"
	"github.com/Ahnaf-CDU/Assignment-3-HIT-137-Software-Now/internal/domain/port"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeClassifierPipeline struct {
	initErr     error
	classifyErr error
	ranked      []port.RankedLabel
	initCalls   int
}

func (f *fakeClassifierPipeline) Init(ctx context.Context) error {
	f.initCalls++
	return f.initErr
}

func (f *fakeClassifierPipeline) Classify(ctx context.Context, img image.Image) ([]port.RankedLabel, error) {
	if f.classifyErr != nil {
		return nil, f.classifyErr
	}
	return f.ranked, nil
}

func (f *fakeClassifierPipeline) Close() {}

func fiveCategories() []port.RankedLabel {
	return []port.RankedLabel{
		{Label: "tabby cat", Score: 0.8734},
		{Label: "tiger cat", Score: 0.0621},
		{Label: "egyptian cat", Score: 0.0312},
		{Label: "lynx", Score: 0.0201},
		{Label: "window screen", Score: 0.0132},
	}
}

func TestClassifierPredictBeforeLoad(t *testing.T) {
	c := NewClassifier(&fakeClassifierPipeline{}, zap.NewNop())

	_, err := c.Predict(context.Background(), image.NewRGBA(image.Rect(0, 0, 8, 8)))
	assert.ErrorIs(t, err, port.ErrNotLoaded)
}

func TestClassifierLoadFailureReturnsFalse(t *testing.T) {
	pipe := &fakeClassifierPipeline{initErr: errors.New("download interrupted")}
	c := NewClassifier(pipe, zap.NewNop())

	assert.False(t, c.Load(context.Background()))
	assert.False(t, c.Descriptor().Loaded)

	_, err := c.Predict(context.Background(), image.NewRGBA(image.Rect(0, 0, 8, 8)))
	assert.ErrorIs(t, err, port.ErrNotLoaded)
}

func TestClassifierLoadTwiceReinitializes(t *testing.T) {
	pipe := &fakeClassifierPipeline{ranked: fiveCategories()}
	c := NewClassifier(pipe, zap.NewNop())

	require.True(t, c.Load(context.Background()))
	require.True(t, c.Load(context.Background()))
	assert.Equal(t, 2, pipe.initCalls)
}

func TestClassifierTopThreeOfFive(t *testing.T) {
	c := NewClassifier(&fakeClassifierPipeline{ranked: fiveCategories()}, zap.NewNop())
	require.True(t, c.Load(context.Background()))

	out, err := c.Predict(context.Background(), image.NewRGBA(image.Rect(0, 0, 8, 8)))
	require.NoError(t, err)

	result, ok := out.(entity.ClassificationResult)
	require.True(t, ok)
	require.Len(t, result, 3)

	confidence := regexp.MustCompile(`^\d+\.\d{2}%$`)
	for i, p := range result {
		assert.Equal(t, i+1, p.Rank)
		assert.Regexp(t, confidence, p.Confidence)
	}
	assert.Equal(t, "tabby cat", result[0].Label)
	assert.Equal(t, "87.34%", result[0].Confidence)
}

func TestClassifierTopKLargerThanAvailable(t *testing.T) {
	c := NewClassifier(&fakeClassifierPipeline{ranked: fiveCategories()}, zap.NewNop())
	require.True(t, c.Load(context.Background()))
	c.SetTopK(10)

	out, err := c.Predict(context.Background(), image.NewRGBA(image.Rect(0, 0, 8, 8)))
	require.NoError(t, err)
	assert.Len(t, out.(entity.ClassificationResult), 5)
}

func TestClassifierSetTopKIgnoresNonPositive(t *testing.T) {
	c := NewClassifier(&fakeClassifierPipeline{}, zap.NewNop())

	c.SetTopK(0)
	assert.Equal(t, defaultTopK, c.TopK())

	c.SetTopK(-5)
	assert.Equal(t, defaultTopK, c.TopK())

	c.SetTopK(7)
	assert.Equal(t, 7, c.TopK())
}

func TestClassifierInvalidInputKind(t *testing.T) {
	c := NewClassifier(&fakeClassifierPipeline{ranked: fiveCategories()}, zap.NewNop())
	require.True(t, c.Load(context.Background()))

	_, err := c.Predict(context.Background(), 42)
	assert.ErrorIs(t, err, port.ErrInvalidInput)

	_, err = c.Predict(context.Background(), "no-such-file.png")
	assert.ErrorIs(t, err, port.ErrInvalidInput)
}

func TestClassifierWrapsPipelineFailure(t *testing.T) {
	boom := errors.New("tensor shape mismatch")
	c := NewClassifier(&fakeClassifierPipeline{classifyErr: boom}, zap.NewNop())
	require.True(t, c.Load(context.Background()))

	_, err := c.Predict(context.Background(), image.NewRGBA(image.Rect(0, 0, 8, 8)))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "prediction failed")
}

func TestClassifierInfoSharesBaseKeys(t *testing.T) {
	c := NewClassifier(&fakeClassifierPipeline{}, zap.NewNop())
	info := c.Info()

	for _, key := range []string{"name", "category", "description", "status"} {
		assert.Contains(t, info, key)
	}
	assert.Equal(t, "Not Loaded", info["status"])
	assert.Equal(t, "3", info["top_k"])
}
