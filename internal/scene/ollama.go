package scene

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/ironsheep/roomswap-mcp/internal/imaging"
	"github.com/ironsheep/roomswap-mcp/internal/overlay"
)

// OllamaAnalyzer asks a vision model served by Ollama for furniture boxes.
type OllamaAnalyzer struct {
	client  *api.Client
	model   string
	maxDim  int
	quality int
	logger  *slog.Logger
}

// NewOllamaAnalyzer creates an analyzer for the Ollama server at rawURL.
// Only the scheme and host of rawURL are used.
func NewOllamaAnalyzer(rawURL, model string, maxDim, quality int, logger *slog.Logger) (*OllamaAnalyzer, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid ollama URL %q", rawURL)
	}
	if model == "" {
		return nil, fmt.Errorf("ollama model is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	base := &url.URL{Scheme: parsed.Scheme, Host: parsed.Host}
	return &OllamaAnalyzer{
		client:  api.NewClient(base, http.DefaultClient),
		model:   model,
		maxDim:  maxDim,
		quality: quality,
		logger:  logger,
	}, nil
}

// Name returns "ollama".
func (o *OllamaAnalyzer) Name() string { return "ollama" }

// Analyze sends the photo in a single non-streaming chat request with JSON
// output requested.
func (o *OllamaAnalyzer) Analyze(ctx context.Context, img image.Image) ([]overlay.Region, error) {
	data, err := imaging.PrepareForModel(img, o.maxDim, o.quality)
	if err != nil {
		return nil, fmt.Errorf("ollama: %w", err)
	}

	stream := false
	req := &api.ChatRequest{
		Model: o.model,
		Messages: []api.Message{
			{
				Role:    "user",
				Content: Prompt,
				Images:  []api.ImageData{api.ImageData(data)},
			},
		},
		Stream:  &stream,
		Format:  json.RawMessage(`"json"`),
		Options: map[string]any{"temperature": 0.1},
	}

	start := time.Now()
	var content string
	err = o.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		content += resp.Message.Content
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ollama chat error: %w", err)
	}

	regions, err := ParseResponse(content)
	if err != nil {
		return nil, fmt.Errorf("ollama: %w", err)
	}
	o.logger.Debug("ollama analysis done", "model", o.model, "regions", len(regions), "elapsed", time.Since(start))
	return regions, nil
}
