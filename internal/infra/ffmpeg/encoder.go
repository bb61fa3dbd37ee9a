package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"os/exec"
	"strconv"

	"go.uber.org/zap"
)

// Encoder writes frame sequences through an ffmpeg subprocess. Raw RGB24
// frames are piped on stdin and encoded as H.264 with 4:2:0 chroma
// subsampling for broad player compatibility.
type Encoder struct {
	binary string
	logger *zap.Logger
}

func NewEncoder(logger *zap.Logger) *Encoder {
	return &Encoder{binary: "ffmpeg", logger: logger}
}

// Encode writes to "<outPath>.partial" and renames on success so a failed
// run never leaves a half-written video at the output path.
func (e *Encoder) Encode(ctx context.Context, frames []*image.RGBA, fps int, outPath string) error {
	if len(frames) == 0 {
		return errors.New("no frames to encode")
	}
	if fps <= 0 {
		return fmt.Errorf("fps must be positive, got %d", fps)
	}

	bounds := frames[0].Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	tmpPath := outPath + ".partial"
	cmd := exec.CommandContext(ctx, e.binary,
		"-y",
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"-s", fmt.Sprintf("%dx%d", w, h),
		"-r", strconv.Itoa(fps),
		"-i", "pipe:0",
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-loglevel", "error",
		"-f", "mp4",
		tmpPath,
	)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("open ffmpeg stdin: %w", err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start ffmpeg: %w", err)
	}

	writeErr := e.writeFrames(stdin, frames, w, h)
	stdin.Close()

	if err := cmd.Wait(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("ffmpeg encode: %w, output: %s", err, stderr.String())
	}
	if writeErr != nil {
		os.Remove(tmpPath)
		return writeErr
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("finalize video %s: %w", outPath, err)
	}

	e.logger.Info("video encoded",
		zap.Int("frames", len(frames)),
		zap.Int("fps", fps),
		zap.String("file", outPath),
	)
	return nil
}

func (e *Encoder) writeFrames(w io.Writer, frames []*image.RGBA, width, height int) error {
	buf := make([]byte, width*height*3)
	for i, frame := range frames {
		fb := frame.Bounds()
		if fb.Dx() != width || fb.Dy() != height {
			return fmt.Errorf("frame %d size %dx%d does not match %dx%d", i, fb.Dx(), fb.Dy(), width, height)
		}
		packRGB(frame, buf)
		if _, err := w.Write(buf); err != nil {
			return fmt.Errorf("write frame %d: %w", i, err)
		}
	}
	return nil
}

// packRGB strips the alpha channel, honoring the image stride.
func packRGB(frame *image.RGBA, dst []byte) {
	b := frame.Bounds()
	w, h := b.Dx(), b.Dy()
	di := 0
	for y := 0; y < h; y++ {
		row := frame.Pix[y*frame.Stride : y*frame.Stride+w*4]
		for x := 0; x < w*4; x += 4 {
			dst[di] = row[x]
			dst[di+1] = row[x+1]
			dst[di+2] = row[x+2]
			di += 3
		}
	}
}

// SavePreview persists one frame as a PNG, with the same rename-on-success
// discipline as Encode.
func (e *Encoder) SavePreview(frame image.Image, outPath string) error {
	tmpPath := outPath + ".partial"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create preview %s: %w", tmpPath, err)
	}

	if err := png.Encode(f, frame); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("encode preview: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close preview: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("finalize preview %s: %w", outPath, err)
	}
	return nil
}
