package ffmpeg

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testFrames(n, w, h int) []*image.RGBA {
	frames := make([]*image.RGBA, 0, n)
	for i := 0; i < n; i++ {
		f := image.NewRGBA(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				f.SetRGBA(x, y, color.RGBA{R: uint8(i * 40), G: uint8(x), B: uint8(y), A: 255})
			}
		}
		frames = append(frames, f)
	}
	return frames
}

func TestEncodeWritesVideoAndRemovesPartial(t *testing.T) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not available")
	}

	enc := NewEncoder(zap.NewNop())
	outPath := filepath.Join(t.TempDir(), "clip.mp4")

	err := enc.Encode(context.Background(), testFrames(6, 64, 48), 8, outPath)
	require.NoError(t, err)

	info, err := os.Stat(outPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	_, err = os.Stat(outPath + ".partial")
	assert.True(t, os.IsNotExist(err), "partial file must not survive a successful encode")
}

func TestEncodeRejectsEmptyInput(t *testing.T) {
	enc := NewEncoder(zap.NewNop())
	outPath := filepath.Join(t.TempDir(), "clip.mp4")

	err := enc.Encode(context.Background(), nil, 8, outPath)
	assert.Error(t, err)

	err = enc.Encode(context.Background(), testFrames(2, 16, 16), 0, outPath)
	assert.Error(t, err)
}

func TestEncodeFailureLeavesNoPartialFile(t *testing.T) {
	enc := &Encoder{binary: "ffmpeg-definitely-not-installed", logger: zap.NewNop()}
	outPath := filepath.Join(t.TempDir(), "clip.mp4")

	err := enc.Encode(context.Background(), testFrames(2, 16, 16), 8, outPath)
	require.Error(t, err)

	_, statErr := os.Stat(outPath)
	assert.True(t, os.IsNotExist(statErr))
	_, statErr = os.Stat(outPath + ".partial")
	assert.True(t, os.IsNotExist(statErr))
}

func TestSavePreviewRoundTrips(t *testing.T) {
	enc := NewEncoder(zap.NewNop())
	outPath := filepath.Join(t.TempDir(), "preview.png")
	frame := testFrames(1, 20, 10)[0]

	require.NoError(t, enc.SavePreview(frame, outPath))

	f, err := os.Open(outPath)
	require.NoError(t, err)
	defer f.Close()

	decoded, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 20, decoded.Bounds().Dx())
	assert.Equal(t, 10, decoded.Bounds().Dy())

	_, err = os.Stat(outPath + ".partial")
	assert.True(t, os.IsNotExist(err))
}

func TestPackRGBHonorsStride(t *testing.T) {
	// SubImage produces a frame whose stride exceeds its width.
	base := testFrames(1, 32, 32)[0]
	sub := base.SubImage(image.Rect(4, 4, 20, 20)).(*image.RGBA)

	dst := make([]byte, 16*16*3)
	packRGB(sub, dst)

	r, g, b, _ := sub.At(4, 4).RGBA()
	assert.Equal(t, uint8(r>>8), dst[0])
	assert.Equal(t, uint8(g>>8), dst[1])
	assert.Equal(t, uint8(b>>8), dst[2])
}
