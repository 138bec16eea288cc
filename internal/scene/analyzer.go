// Package scene proposes furniture regions for a room photo and, through a
// Compositor, replaces one of them with a product shot.
//
// An Analyzer is the narrow seam to whatever performs the detection: a
// hosted vision model (Gemini), a local one (Ollama) or the built-in
// contour detector. Its output is treated as opaque regions; Normalize is
// the only post-processing applied before the overlay sees them. Regions
// supplied directly by a client only go through Sanitize.
package scene

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/ironsheep/roomswap-mcp/internal/config"
	"github.com/ironsheep/roomswap-mcp/internal/geometry"
	"github.com/ironsheep/roomswap-mcp/internal/overlay"
)

// ErrMissingAPIKey is returned when a hosted backend is selected without
// credentials.
var ErrMissingAPIKey = errors.New("scene: GEMINI_API_KEY is not set")

// DefaultLabel replaces empty labels.
const DefaultLabel = "object"

// Analyzer detects regions of interest in an image.
type Analyzer interface {
	Name() string
	Analyze(ctx context.Context, img image.Image) ([]overlay.Region, error)
}

// Prompt is the instruction sent to vision models alongside the photo.
const Prompt = `Detect ALL furniture pieces in this image.
Return coordinates in PERCENTAGES (0-100) of the image width and height.
Create tight bounding boxes.
Assign a unique ID and a short type name to each piece.
Respond with JSON only: {"furniture":[{"id":"...","type":"...","bbox":{"x":0,"y":0,"width":0,"height":0}}]}`

type detection struct {
	ID   string        `json:"id"`
	Type string        `json:"type"`
	BBox geometry.Rect `json:"bbox"`
}

type detectResponse struct {
	Furniture []detection `json:"furniture"`
}

// ParseResponse decodes a model reply into regions. Code fences and text
// around the outermost JSON object are tolerated. The result is not
// normalised.
func ParseResponse(raw string) ([]overlay.Region, error) {
	raw = sanitizeModelJSON(raw)
	if raw == "" {
		return nil, fmt.Errorf("empty model response")
	}

	var resp detectResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		start := strings.Index(raw, "{")
		end := strings.LastIndex(raw, "}")
		if start < 0 || end <= start {
			return nil, fmt.Errorf("no JSON object in model response: %w", err)
		}
		if err2 := json.Unmarshal([]byte(raw[start:end+1]), &resp); err2 != nil {
			return nil, fmt.Errorf("bad JSON in model response: %w", err2)
		}
	}

	regions := make([]overlay.Region, 0, len(resp.Furniture))
	for _, d := range resp.Furniture {
		d.BBox.Unit = geometry.Percent
		regions = append(regions, overlay.Region{ID: d.ID, Label: d.Type, BBox: d.BBox})
	}
	return regions, nil
}

func sanitizeModelJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```JSON")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// Normalize prepares detector output for the overlay. Boxes reported as 0-1
// fractions are rescaled to percentages and the result is passed through
// Sanitize. The input is not modified.
func Normalize(regions []overlay.Region) []overlay.Region {
	out := make([]overlay.Region, len(regions))
	for i, r := range regions {
		r.BBox = geometry.NormalizeFractions(r.BBox)
		out[i] = r
	}
	return Sanitize(out)
}

// Sanitize trims labels, replacing empty ones with DefaultLabel, and gives a
// fresh UUID to regions whose ID is empty or repeats an earlier one. Boxes
// are left alone, so caller-supplied regions keep their geometry exactly.
// Order is preserved. The input is not modified.
func Sanitize(regions []overlay.Region) []overlay.Region {
	out := make([]overlay.Region, len(regions))
	seen := make(map[string]bool, len(regions))
	for i, r := range regions {
		r.Label = strings.TrimSpace(r.Label)
		if r.Label == "" {
			r.Label = DefaultLabel
		}
		r.ID = strings.TrimSpace(r.ID)
		if r.ID == "" || seen[r.ID] {
			r.ID = uuid.NewString()
		}
		seen[r.ID] = true
		out[i] = r
	}
	return out
}

// New builds the analyzer selected by cfg.SceneBackend. The "none" backend
// yields a nil Analyzer.
func New(cfg *config.Config, logger *slog.Logger) (Analyzer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "scene")

	switch cfg.SceneBackend {
	case config.BackendGemini:
		g, err := NewGeminiAnalyzer(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.ModelMaxDim, cfg.ModelJPEGQuality, logger)
		if err != nil {
			return nil, err
		}
		return g, nil
	case config.BackendOllama:
		o, err := NewOllamaAnalyzer(cfg.OllamaURL, cfg.OllamaModel, cfg.ModelMaxDim, cfg.ModelJPEGQuality, logger)
		if err != nil {
			return nil, err
		}
		return o, nil
	case config.BackendLocal:
		return NewLocalAnalyzer(logger), nil
	case config.BackendNone:
		return nil, nil
	}
	return nil, fmt.Errorf("unknown scene backend %q", cfg.SceneBackend)
}
