// Package synth turns one still image into an animation frame sequence with
// a zoom/pan/brightness motion profile. Every frame is a pure function of
// (source image, frame index, frame count), so output is reproducible
// bit-for-bit for a given resampling implementation.
package synth

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/nfnt/resize"
)

const (
	// DefaultFrameCount gives 3 seconds at the default 8 fps.
	DefaultFrameCount = 24

	// Zoom runs from 1.0x to 1.2x over the clip.
	zoomRange = 0.2

	// One brightness pulse peaking at the midpoint frame.
	brightnessAmplitude = 0.05
)

// Animate renders frameCount frames from src. All frames keep the source
// pixel dimensions; the zoom is achieved by upscaling and center-cropping
// back. frameCount must be >= 1; a single frame is returned unmodified.
func Animate(src image.Image, frameCount int) ([]*image.RGBA, error) {
	if src == nil {
		return nil, errors.New("nil source image")
	}
	if frameCount < 1 {
		return nil, fmt.Errorf("frame count must be >= 1, got %d", frameCount)
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return nil, errors.New("empty source image")
	}

	frames := make([]*image.RGBA, 0, frameCount)
	for i := 0; i < frameCount; i++ {
		p := progressAt(i, frameCount)
		frames = append(frames, renderFrame(src, w, h, scaleAt(p), brightnessAt(p)))
	}
	return frames, nil
}

// progressAt maps frame index to [0,1]. The single-frame clip stays at 0 so
// the easing never divides by zero.
func progressAt(i, frameCount int) float64 {
	if frameCount <= 1 {
		return 0
	}
	return float64(i) / float64(frameCount-1)
}

// scaleAt applies smoothstep easing, zero velocity at both ends.
func scaleAt(progress float64) float64 {
	ease := progress * progress * (3.0 - 2.0*progress)
	return 1.0 + ease*zoomRange
}

// brightnessAt is a single sine pulse, back to baseline at both ends.
func brightnessAt(progress float64) float64 {
	return 1.0 + math.Sin(progress*math.Pi)*brightnessAmplitude
}

func renderFrame(src image.Image, w, h int, scale, brightness float64) *image.RGBA {
	scaledW := int(float64(w) * scale)
	scaledH := int(float64(h) * scale)

	zoomed := src
	if scaledW != w || scaledH != h {
		zoomed = resize.Resize(uint(scaledW), uint(scaledH), src, resize.Lanczos3)
	}

	// Center crop back to the original size, integer truncation on each axis.
	offX := (scaledW - w) / 2
	offY := (scaledH - h) / 2

	zb := zoomed.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, a := zoomed.At(zb.Min.X+offX+x, zb.Min.Y+offY+y).RGBA()
			out.SetRGBA(x, y, color.RGBA{
				R: scaleChannel(r, brightness),
				G: scaleChannel(g, brightness),
				B: scaleChannel(b, brightness),
				A: uint8(a >> 8),
			})
		}
	}
	return out
}

func scaleChannel(c uint32, brightness float64) uint8 {
	v := float64(c>>8) * brightness
	if v >= 255 {
		return 255
	}
	if v <= 0 {
		return 0
	}
	return uint8(v + 0.5)
}
