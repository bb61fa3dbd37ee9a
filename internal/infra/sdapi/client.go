// Package sdapi talks to a locally running Stable Diffusion web API
// (AUTOMATIC1111-compatible). The backend owns model weights and device
// placement; this client only requests one txt2img pass at a time.
package sdapi

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"time"

	"github.com/Ahnaf-CDU/Assignment-3-HIT-137-Software-Now/internal/domain/port"
	"go.uber.org/zap"
)

type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
	runtime string
}

func NewClient(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		// Diffusion on CPU can take minutes per image.
		http:   &http.Client{Timeout: 15 * time.Minute},
		logger: logger,
	}
}

type txt2imgRequest struct {
	Prompt   string  `json:"prompt"`
	Steps    int     `json:"steps"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	CFGScale float64 `json:"cfg_scale"`
}

type txt2imgResponse struct {
	Images []string `json:"images"`
}

// Init verifies the backend is reachable and caches the compute device it
// reports. The memory endpoint exposes accelerator state on CUDA builds.
func (c *Client) Init(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/sdapi/v1/memory", nil)
	if err != nil {
		return fmt.Errorf("build memory request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("reach stable diffusion backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("stable diffusion backend returned %d: %s", resp.StatusCode, string(body))
	}

	var mem map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&mem); err != nil {
		return fmt.Errorf("decode memory response: %w", err)
	}

	c.runtime = "cpu"
	if raw, ok := mem["cuda"]; ok && string(raw) != "null" && string(raw) != "{}" {
		c.runtime = "cuda"
	}

	c.logger.Info("stable diffusion backend ready",
		zap.String("url", c.baseURL),
		zap.String("device", c.runtime),
	)
	return nil
}

// Runtime reports the device cached by Init.
func (c *Client) Runtime() string {
	return c.runtime
}

// Generate runs one text-to-image pass and decodes the first returned image.
func (c *Client) Generate(ctx context.Context, prompt string, opts port.GenerationOptions) (image.Image, error) {
	payload, err := json.Marshal(txt2imgRequest{
		Prompt:   prompt,
		Steps:    opts.Steps,
		Width:    opts.Width,
		Height:   opts.Height,
		CFGScale: opts.Guidance,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal txt2img request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/sdapi/v1/txt2img", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build txt2img request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("txt2img request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("txt2img returned %d: %s", resp.StatusCode, string(body))
	}

	var out txt2imgResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode txt2img response: %w", err)
	}
	if len(out.Images) == 0 {
		return nil, fmt.Errorf("txt2img returned no images")
	}

	raw, err := base64.StdEncoding.DecodeString(out.Images[0])
	if err != nil {
		return nil, fmt.Errorf("decode base64 image: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode seed image: %w", err)
	}
	return img, nil
}
