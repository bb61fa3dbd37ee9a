package model

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/Ahnaf-CDU/Assignment-3-HIT-137-Software-Now/internal/domain/entity"
	"github.com/Ahnaf-CDU/Assignment-3-HIT-137-Software-Now/internal/domain/port"
	"github.com/Ahnaf-CDU/Assignment-3-HIT-137-Software-Now/internal/infra/metrics"
	"github.com/Ahnaf-CDU/Assignment-3-HIT-137-Software-Now/internal/synth"
	"go.uber.org/zap"
)

const (
	defaultInferenceSteps = 20
	defaultFPS            = 8
	guidanceScale         = 7.5
	seedImageSize         = 512
)

// TextToVideoConfig fixes the output locations and can override the
// generation tuning defaults.
type TextToVideoConfig struct {
	VideoPath      string
	PreviewPath    string
	InferenceSteps int
	FrameCount     int
	FPS            int
	Guidance       float64
	ImageSize      int
}

// TextToVideo adapts a pretrained text-to-image pipeline to the Model
// contract: one inference pass produces the seed still, the synthesizer
// animates it, and the encoder persists the clip plus a preview.
type TextToVideo struct {
	mu         sync.Mutex
	descriptor entity.ModelDescriptor
	pipeline   port.TextToImage
	encoder    port.VideoEncoder
	logger     *zap.Logger

	steps      int
	frameCount int
	fps        int
	guidance   float64
	imageSize  int

	videoPath   string
	previewPath string

	// Compute device reported by the pipeline, cached at load time.
	device string
}

func NewTextToVideo(pipeline port.TextToImage, encoder port.VideoEncoder, cfg TextToVideoConfig, logger *zap.Logger) *TextToVideo {
	m := &TextToVideo{
		descriptor: entity.ModelDescriptor{
			Name:        "Text-to-Video (Lightweight)",
			Category:    "Video Generation",
			Description: "Generates 2-3 second video clips from text. Uses lightweight text-to-image generation with smooth animation effects.",
		},
		pipeline:    pipeline,
		encoder:     encoder,
		logger:      logger,
		steps:       defaultInferenceSteps,
		frameCount:  synth.DefaultFrameCount,
		fps:         defaultFPS,
		guidance:    guidanceScale,
		imageSize:   seedImageSize,
		videoPath:   cfg.VideoPath,
		previewPath: cfg.PreviewPath,
	}
	if cfg.InferenceSteps > 0 {
		m.steps = cfg.InferenceSteps
	}
	if cfg.FrameCount > 0 {
		m.frameCount = cfg.FrameCount
	}
	if cfg.FPS > 0 {
		m.fps = cfg.FPS
	}
	if cfg.Guidance > 0 {
		m.guidance = cfg.Guidance
	}
	if cfg.ImageSize > 0 {
		m.imageSize = cfg.ImageSize
	}
	if m.videoPath == "" {
		m.videoPath = "generated_video.mp4"
	}
	if m.previewPath == "" {
		m.previewPath = "generated_video_preview.png"
	}
	return m
}

func (m *TextToVideo) Load(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.descriptor.Loaded = false
	port.Progress(ctx)(10, fmt.Sprintf("Loading %s model...", m.descriptor.Name))

	if err := m.pipeline.Init(ctx); err != nil {
		m.logger.Error("text-to-video load failed", zap.Error(err))
		return false
	}

	m.device = m.pipeline.Runtime()
	m.descriptor.Loaded = true
	m.logger.Info("text-to-video loaded",
		zap.String("model", m.descriptor.Name),
		zap.String("device", m.device),
	)
	return true
}

func (m *TextToVideo) Predict(ctx context.Context, input any) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.descriptor.Loaded {
		return nil, port.ErrNotLoaded
	}

	prompt, ok := input.(string)
	if !ok {
		return nil, fmt.Errorf("%w: expected text prompt, got %T", port.ErrInvalidInput, input)
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, fmt.Errorf("%w: text prompt must be non-empty", port.ErrInvalidInput)
	}

	report := port.Progress(ctx)
	log := m.logger.With(zap.String("prompt", prompt))

	report(10, "Step 1/3: Generating seed image...")
	seed, err := m.pipeline.Generate(ctx, prompt, port.GenerationOptions{
		Steps:    m.steps,
		Guidance: m.guidance,
		Width:    m.imageSize,
		Height:   m.imageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("video generation failed: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report(60, fmt.Sprintf("Step 2/3: Creating %d animation frames...", m.frameCount))
	frames, err := synth.Animate(seed, m.frameCount)
	if err != nil {
		return nil, fmt.Errorf("video generation failed: %w", err)
	}
	metrics.FramesSynthesizedTotal.Add(float64(len(frames)))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report(80, fmt.Sprintf("Step 3/3: Exporting video to %s...", m.videoPath))
	if err := m.encoder.Encode(ctx, frames, m.fps, m.videoPath); err != nil {
		return nil, fmt.Errorf("video generation failed: %w", err)
	}
	if err := m.encoder.SavePreview(frames[0], m.previewPath); err != nil {
		return nil, fmt.Errorf("video generation failed: %w", err)
	}

	bounds := seed.Bounds()
	result := entity.VideoResult{
		Status:     "success",
		Message:    "Video generated successfully!",
		File:       m.videoPath,
		Preview:    m.previewPath,
		Frames:     len(frames),
		FPS:        m.fps,
		Format:     "MP4 video file",
		Resolution: fmt.Sprintf("%dx%d", bounds.Dx(), bounds.Dy()),
	}

	log.Info("video generated",
		zap.Int("frames", result.Frames),
		zap.Int("fps", result.FPS),
		zap.Float64("duration_secs", result.Duration()),
		zap.String("file", result.File),
	)
	return result, nil
}

// Permissive setters: non-positive values are ignored, matching SetTopK on
// the classifier.

func (m *TextToVideo) SetInferenceSteps(steps int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if steps <= 0 {
		m.logger.Warn("ignoring non-positive inference steps", zap.Int("steps", steps))
		return
	}
	m.steps = steps
}

func (m *TextToVideo) SetFrameCount(frames int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if frames <= 0 {
		m.logger.Warn("ignoring non-positive frame count", zap.Int("frames", frames))
		return
	}
	m.frameCount = frames
}

func (m *TextToVideo) SetFPS(fps int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if fps <= 0 {
		m.logger.Warn("ignoring non-positive fps", zap.Int("fps", fps))
		return
	}
	m.fps = fps
}

func (m *TextToVideo) Info() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()

	info := map[string]string{
		"name":            m.descriptor.Name,
		"category":        m.descriptor.Category,
		"description":     m.descriptor.Description,
		"status":          m.descriptor.Status(),
		"model_type":      "Text-to-Image + Animation",
		"inference_steps": strconv.Itoa(m.steps),
		"frames":          strconv.Itoa(m.frameCount),
		"fps":             strconv.Itoa(m.fps),
		"duration":        fmt.Sprintf("%.1fs", float64(m.frameCount)/float64(m.fps)),
		"output_format":   fmt.Sprintf("MP4 Video (%dx%d)", m.imageSize, m.imageSize),
	}
	if m.device != "" {
		info["device"] = m.device
	}
	return info
}

func (m *TextToVideo) Descriptor() entity.ModelDescriptor {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.descriptor
}
