// Package onnx runs a pretrained image-classification model through ONNX
// Runtime. The model file is accompanied by a metadata JSON describing the
// tensor shapes, class labels and expected input size.
package onnx

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"math"
	"os"
	"sort"

	"github.com/Ahnaf-CDU/Assignment-3-HIT-137-Software-Now/internal/domain/port"
	"github.com/nfnt/resize"
	ort "github.com/yalue/onnxruntime_go"
	"go.uber.org/zap"
)

type Metadata struct {
	InputShape  []int64  `json:"input_shape"`
	OutputShape []int64  `json:"output_shape"`
	Classes     []string `json:"classes"`
	ImageSize   int      `json:"image_size"`
}

type Pipeline struct {
	modelPath    string
	metadataPath string
	logger       *zap.Logger

	metadata     Metadata
	session      *ort.AdvancedSession
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]
}

func NewPipeline(modelPath, metadataPath string, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		modelPath:    modelPath,
		metadataPath: metadataPath,
		logger:       logger,
	}
}

// Init builds the ONNX session. Calling it again tears the previous session
// down and re-initializes.
func (p *Pipeline) Init(ctx context.Context) error {
	p.Close()

	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("initialize ONNX environment: %w", err)
	}

	metaFile, err := os.ReadFile(p.metadataPath)
	if err != nil {
		return fmt.Errorf("read metadata: %w", err)
	}

	var metadata Metadata
	if err := json.Unmarshal(metaFile, &metadata); err != nil {
		return fmt.Errorf("parse metadata: %w", err)
	}
	if len(metadata.Classes) == 0 {
		return fmt.Errorf("metadata %s lists no classes", p.metadataPath)
	}
	if metadata.ImageSize <= 0 {
		return fmt.Errorf("metadata %s has invalid image size %d", p.metadataPath, metadata.ImageSize)
	}

	inputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(metadata.InputShape...))
	if err != nil {
		return fmt.Errorf("create input tensor: %w", err)
	}

	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(metadata.OutputShape...))
	if err != nil {
		inputTensor.Destroy()
		return fmt.Errorf("create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(p.modelPath,
		[]string{"input"}, []string{"output"},
		[]ort.ArbitraryTensor{inputTensor}, []ort.ArbitraryTensor{outputTensor},
		nil)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return fmt.Errorf("create ONNX session: %w", err)
	}

	p.metadata = metadata
	p.session = session
	p.inputTensor = inputTensor
	p.outputTensor = outputTensor

	p.logger.Info("classification pipeline initialized",
		zap.String("model", p.modelPath),
		zap.Int("classes", len(metadata.Classes)),
		zap.Int("image_size", metadata.ImageSize),
	)
	return nil
}

// Classify runs one inference pass and returns every class ranked by
// descending probability.
func (p *Pipeline) Classify(ctx context.Context, img image.Image) ([]port.RankedLabel, error) {
	if p.session == nil {
		return nil, fmt.Errorf("pipeline not initialized")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	copy(p.inputTensor.GetData(), p.preprocess(img))

	if err := p.session.Run(); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	probs := softmax(p.outputTensor.GetData())

	ranked := make([]port.RankedLabel, 0, len(p.metadata.Classes))
	for i, class := range p.metadata.Classes {
		if i >= len(probs) {
			break
		}
		ranked = append(ranked, port.RankedLabel{Label: class, Score: float64(probs[i])})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	return ranked, nil
}

// preprocess resizes to the model input size and lays pixels out as
// normalized CHW float32.
func (p *Pipeline) preprocess(img image.Image) []float32 {
	size := p.metadata.ImageSize
	resized := resize.Resize(uint(size), uint(size), img, resize.Lanczos3)

	bounds := resized.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	data := make([]float32, 3*width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := resized.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()

			idx := y*width + x
			data[idx] = float32(r) / 65535.0
			data[width*height+idx] = float32(g) / 65535.0
			data[2*width*height+idx] = float32(b) / 65535.0
		}
	}
	return data
}

func (p *Pipeline) Close() {
	if p.session != nil {
		p.session.Destroy()
		p.session = nil
	}
	if p.inputTensor != nil {
		p.inputTensor.Destroy()
		p.inputTensor = nil
	}
	if p.outputTensor != nil {
		p.outputTensor.Destroy()
		p.outputTensor = nil
	}
}

func softmax(logits []float32) []float32 {
	if len(logits) == 0 {
		return nil
	}

	max := logits[0]
	for _, v := range logits[1:] {
		if v > max {
			max = v
		}
	}

	out := make([]float32, len(logits))
	var sum float64
	for i, v := range logits {
		e := math.Exp(float64(v - max))
		out[i] = float32(e)
		sum += e
	}
	for i := range out {
		out[i] = float32(float64(out[i]) / sum)
	}
	return out
}
