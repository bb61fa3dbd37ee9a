package config

import (
	"github.com/caarlos0/env/v11"
)

type Config struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Text-to-image pipeline (Stable Diffusion web API).
	SDAPIURL    string  `env:"SD_API_URL"    envDefault:"http://127.0.0.1:7860"`
	SDSteps     int     `env:"SD_STEPS"      envDefault:"20"`
	SDGuidance  float64 `env:"SD_GUIDANCE"   envDefault:"7.5"`
	SDImageSize int     `env:"SD_IMAGE_SIZE" envDefault:"512"`

	// Image-classification pipeline (ONNX runtime).
	ONNXModelPath    string `env:"ONNX_MODEL_PATH"    envDefault:"models/vit.onnx"`
	ONNXMetadataPath string `env:"ONNX_METADATA_PATH" envDefault:"models/vit.json"`
	ClassifierTopK   int    `env:"CLASSIFIER_TOP_K"   envDefault:"3"`

	// Animation and export.
	VideoFrames   int    `env:"VIDEO_FRAMES"   envDefault:"24"`
	VideoFPS      int    `env:"VIDEO_FPS"      envDefault:"8"`
	OutputVideo   string `env:"OUTPUT_VIDEO"   envDefault:"generated_video.mp4"`
	OutputPreview string `env:"OUTPUT_PREVIEW" envDefault:"generated_video_preview.png"`

	// Operation history; empty keeps history in memory.
	DatabaseURL string `env:"DATABASE_URL"`

	// Artifact archive; empty endpoint disables archiving.
	MinIOEndpoint  string `env:"MINIO_ENDPOINT"`
	MinIOAccessKey string `env:"MINIO_ACCESS_KEY" envDefault:"minioadmin"`
	MinIOSecretKey string `env:"MINIO_SECRET_KEY" envDefault:"minioadmin"`
	MinIOUseSSL    bool   `env:"MINIO_USE_SSL"    envDefault:"false"`
	MinIOBucket    string `env:"MINIO_BUCKET"     envDefault:"artifacts"`

	// Diagnostics; 0 disables the metrics server, empty disables tracing.
	MetricsPort  int    `env:"METRICS_PORT" envDefault:"0"`
	OTLPEndpoint string `env:"OTLP_ENDPOINT"`

	EventBuffer int `env:"EVENT_BUFFER" envDefault:"64"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
