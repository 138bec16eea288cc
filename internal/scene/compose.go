package scene

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"

	"github.com/ironsheep/roomswap-mcp/internal/config"
	"github.com/ironsheep/roomswap-mcp/internal/geometry"
	"github.com/ironsheep/roomswap-mcp/internal/imaging"
)

// DefaultCompositeModel is the image model used when none is configured.
const DefaultCompositeModel = "gemini-2.5-flash-image"

// ErrNoImage is returned when the model reply carries no image part.
var ErrNoImage = errors.New("compose: model returned no image")

// Compositor replaces whatever occupies target in the room photo with the
// product. target is a percentage rect of the room photo.
type Compositor interface {
	Name() string
	Composite(ctx context.Context, room, product image.Image, target geometry.Rect) (image.Image, error)
}

// CompositePrompt builds the replacement instruction for target.
func CompositePrompt(target geometry.Rect) string {
	return fmt.Sprintf(`TASK: Photo-realistic furniture replacement.

INPUTS:
1. Room image (source)
2. Product image (reference)

ACTION:
- Locate the area: x=%.1f%%, y=%.1f%%, w=%.1f%%, h=%.1f%%.
- Erase the old object in this area completely.
- Generate the reference product in that exact spot.
- Match the room's lighting, shadows and perspective.
- If the new product reveals floor or wall behind the old one, synthesize a realistic background.

OUTPUT:
- Return the full room image at high fidelity.`, target.X, target.Y, target.Width, target.Height)
}

// GeminiCompositor asks a Gemini image model to repaint the target area
// with the product.
type GeminiCompositor struct {
	model   string
	maxDim  int
	quality int
	logger  *slog.Logger

	retryDelay time.Duration
	generate   generateFunc
}

// NewGeminiCompositor creates a Gemini-backed compositor. An empty model
// selects DefaultCompositeModel.
func NewGeminiCompositor(apiKey, model string, maxDim, quality int, logger *slog.Logger) (*GeminiCompositor, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultCompositeModel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GeminiCompositor{
		model:      model,
		maxDim:     maxDim,
		quality:    quality,
		logger:     logger,
		retryDelay: geminiRetryDelay,
		generate:   geminiGenerate(apiKey),
	}, nil
}

// Name returns "gemini".
func (g *GeminiCompositor) Name() string { return "gemini" }

// Composite sends the room photo, the product shot and the target area to
// the model and decodes the image it returns. Failed calls and replies
// without an image are retried once.
func (g *GeminiCompositor) Composite(ctx context.Context, room, product image.Image, target geometry.Rect) (image.Image, error) {
	roomData, err := imaging.PrepareForModel(room, g.maxDim, g.quality)
	if err != nil {
		return nil, fmt.Errorf("compose: room: %w", err)
	}
	productData, err := imaging.PrepareForModel(product, g.maxDim, g.quality)
	if err != nil {
		return nil, fmt.Errorf("compose: product: %w", err)
	}

	cfg := genai.GenerationConfig{Temperature: ptrFloat32(0.2)}
	parts := []genai.Part{
		genai.Text(CompositePrompt(target)),
		&genai.Blob{MIMEType: "image/jpeg", Data: roomData},
		&genai.Blob{MIMEType: "image/jpeg", Data: productData},
	}

	start := time.Now()
	var blob *genai.Blob
	r := retrier{attempts: geminiAttempts, delay: g.retryDelay, logger: g.logger, op: "gemini composite"}
	err = r.do(ctx, func(ctx context.Context) error {
		resp, err := g.generate(ctx, g.model, cfg, parts...)
		if err != nil {
			return err
		}
		if blob = firstImage(resp); blob == nil {
			return ErrNoImage
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("compose: %w", ClassifyError(err))
	}

	img, _, err := image.Decode(bytes.NewReader(blob.Data))
	if err != nil {
		return nil, fmt.Errorf("compose: failed to decode %s reply: %w", blob.MIMEType, err)
	}
	g.logger.Debug("gemini composite done", "model", g.model, "size", img.Bounds().Size(), "elapsed", time.Since(start))
	return img, nil
}

// NewCompositor builds the generative compositor. Without a Gemini API key
// it yields a nil Compositor.
func NewCompositor(cfg *config.Config, logger *slog.Logger) (Compositor, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	c, err := NewGeminiCompositor(cfg.GeminiAPIKey, cfg.CompositeModel, cfg.ModelMaxDim, cfg.ModelJPEGQuality, logger.With("component", "compose"))
	if err != nil {
		return nil, err
	}
	return c, nil
}

// firstImage returns the first inline image part of resp.
func firstImage(resp *genai.GenerateContentResponse) *genai.Blob {
	if resp == nil {
		return nil
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			var b genai.Blob
			switch v := p.(type) {
			case genai.Blob:
				b = v
			case *genai.Blob:
				if v == nil {
					continue
				}
				b = *v
			default:
				continue
			}
			if strings.HasPrefix(b.MIMEType, "image/") && len(b.Data) > 0 {
				return &b
			}
		}
	}
	return nil
}
