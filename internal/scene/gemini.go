package scene

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"

	"github.com/ironsheep/roomswap-mcp/internal/imaging"
	"github.com/ironsheep/roomswap-mcp/internal/overlay"
)

// GeminiAnalyzer asks a Gemini model for furniture bounding boxes using a
// JSON response schema.
type GeminiAnalyzer struct {
	apiKey  string
	model   string
	maxDim  int
	quality int
	logger  *slog.Logger

	retryDelay time.Duration
	generate   generateFunc
}

// NewGeminiAnalyzer creates a Gemini-backed analyzer. An empty model selects
// gemini-2.5-flash.
func NewGeminiAnalyzer(apiKey, model string, maxDim, quality int, logger *slog.Logger) (*GeminiAnalyzer, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	model = strings.TrimSpace(model)
	if model == "" {
		model = "gemini-2.5-flash"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GeminiAnalyzer{
		apiKey:     apiKey,
		model:      model,
		maxDim:     maxDim,
		quality:    quality,
		logger:     logger,
		retryDelay: geminiRetryDelay,
		generate:   geminiGenerate(apiKey),
	}, nil
}

// Name returns "gemini".
func (g *GeminiAnalyzer) Name() string { return "gemini" }

// responseSchema mirrors detectResponse.
func responseSchema() *genai.Schema {
	number := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeNumber, Description: desc}
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"furniture": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"id":   {Type: genai.TypeString},
						"type": {Type: genai.TypeString},
						"bbox": {
							Type: genai.TypeObject,
							Properties: map[string]*genai.Schema{
								"x":      number("X coordinate in PERCENTAGE (0-100)"),
								"y":      number("Y coordinate in PERCENTAGE (0-100)"),
								"width":  number("Width in PERCENTAGE (0-100)"),
								"height": number("Height in PERCENTAGE (0-100)"),
							},
							Required: []string{"x", "y", "width", "height"},
						},
					},
					Required: []string{"id", "type", "bbox"},
				},
			},
		},
		Required: []string{"furniture"},
	}
}

// Analyze sends the photo to Gemini. Transport errors are retried once;
// a reply that does not parse is returned as an error immediately. Key and
// permission failures are reported through ClassifyError.
func (g *GeminiAnalyzer) Analyze(ctx context.Context, img image.Image) ([]overlay.Region, error) {
	data, err := imaging.PrepareForModel(img, g.maxDim, g.quality)
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}

	cfg := genai.GenerationConfig{
		Temperature:      ptrFloat32(0.1),
		ResponseMIMEType: "application/json",
		ResponseSchema:   responseSchema(),
	}
	parts := []genai.Part{
		&genai.Blob{MIMEType: "image/jpeg", Data: data},
		genai.Text(Prompt),
	}

	start := time.Now()
	var resp *genai.GenerateContentResponse
	r := retrier{attempts: geminiAttempts, delay: g.retryDelay, logger: g.logger, op: "gemini request"}
	err = r.do(ctx, func(ctx context.Context) error {
		var err error
		resp, err = g.generate(ctx, g.model, cfg, parts...)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", ClassifyError(err))
	}

	txt := firstText(resp)
	if txt == "" {
		return nil, fmt.Errorf("gemini: empty response")
	}
	regions, err := ParseResponse(txt)
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	g.logger.Debug("gemini analysis done", "model", g.model, "regions", len(regions), "elapsed", time.Since(start))
	return regions, nil
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }
