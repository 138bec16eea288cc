package scene

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"sort"

	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"

	"github.com/ironsheep/roomswap-mcp/internal/geometry"
	"github.com/ironsheep/roomswap-mcp/internal/overlay"
)

// Defaults for LocalAnalyzer.
const (
	localWorkingSize  = 320
	localEdgeLevel    = 80
	localMinPixels    = 10
	localMinAreaPct   = 1.0
	localMaxAreaPct   = 90.0
	localMaxRegions   = 12
	localBlurSigma    = 1.0
	localRegionPrefix = "obj-"
	localBorder       = 2
)

// LocalAnalyzer proposes regions without a model: it finds connected edge
// contours on a downsized copy of the photo and reports their bounding
// boxes. It is meant as an offline fallback; boxes are not classified and
// every region is labelled DefaultLabel.
type LocalAnalyzer struct {
	logger *slog.Logger

	// WorkingSize is the long side, in pixels, of the copy analysed.
	WorkingSize int
	// EdgeLevel is the Sobel magnitude (0-255) above which a pixel is an
	// edge.
	EdgeLevel uint8
	// MinAreaPct and MaxAreaPct bound a box's area as a percentage of the
	// image area.
	MinAreaPct float64
	MaxAreaPct float64
	// MaxRegions caps the number of regions returned, largest first.
	MaxRegions int
}

// NewLocalAnalyzer creates a contour-based analyzer with default settings.
func NewLocalAnalyzer(logger *slog.Logger) *LocalAnalyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalAnalyzer{
		logger:      logger,
		WorkingSize: localWorkingSize,
		EdgeLevel:   localEdgeLevel,
		MinAreaPct:  localMinAreaPct,
		MaxAreaPct:  localMaxAreaPct,
		MaxRegions:  localMaxRegions,
	}
}

// Name returns "local".
func (l *LocalAnalyzer) Name() string { return "local" }

// Analyze detects contour boxes. Regions are ordered largest first so that
// smaller boxes nested inside larger ones draw on top and win hit-tests.
//
// # Algorithm
//
//  1. Downsize so the long side is at most WorkingSize, then blur lightly
//  2. Sobel edge magnitude, thresholded at EdgeLevel
//  3. Group edge pixels into 8-connected contours (flood fill)
//  4. Take each contour's bounding box as a percentage of the working image
//  5. Drop boxes outside MinAreaPct..MaxAreaPct, keep the MaxRegions largest
func (l *LocalAnalyzer) Analyze(ctx context.Context, img image.Image) ([]overlay.Region, error) {
	if img == nil {
		return nil, fmt.Errorf("local: no image")
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("local: empty image")
	}

	small := image.Image(img)
	if b.Dx() > l.WorkingSize || b.Dy() > l.WorkingSize {
		small = imaging.Fit(img, l.WorkingSize, l.WorkingSize, imaging.Box)
	}
	small = imaging.Blur(small, localBlurSigma)

	edges := segment.Threshold(effect.Sobel(small), l.EdgeLevel)
	clearBorder(edges, localBorder)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	size := geometry.SizeOf(edges.Bounds())
	boxes := contourBoxes(edges)

	type candidate struct {
		box  geometry.Rect
		area float64
	}
	candidates := make([]candidate, 0, len(boxes))
	for _, px := range boxes {
		pct := px.ToPercent(size)
		area := pct.Width * pct.Height / 100
		if area < l.MinAreaPct || area > l.MaxAreaPct {
			continue
		}
		candidates = append(candidates, candidate{box: pct, area: area})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].area > candidates[j].area
	})
	if l.MaxRegions > 0 && len(candidates) > l.MaxRegions {
		candidates = candidates[:l.MaxRegions]
	}

	regions := make([]overlay.Region, len(candidates))
	for i, c := range candidates {
		regions[i] = overlay.Region{
			ID:    fmt.Sprintf("%s%d", localRegionPrefix, i+1),
			Label: DefaultLabel,
			BBox:  c.box,
		}
	}
	l.logger.Debug("local analysis done", "contours", len(boxes), "regions", len(regions))
	return regions, nil
}

// clearBorder zeroes a frame of n pixels around the image. The Sobel kernel
// reads past the image edge there and reports spurious edges.
func clearBorder(g *image.Gray, n int) {
	b := g.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if x-b.Min.X < n || y-b.Min.Y < n || b.Max.X-x <= n || b.Max.Y-y <= n {
				g.SetGray(x, y, color.Gray{})
			}
		}
	}
}

// contourBoxes groups the set pixels of a binary image into 8-connected
// components and returns the pixel bounding box of each component with at
// least localMinPixels pixels. Boxes are inclusive of their last pixel.
func contourBoxes(edges *image.Gray) []geometry.Rect {
	b := edges.Bounds()
	w, h := b.Dx(), b.Dy()
	set := func(x, y int) bool {
		return edges.Pix[y*edges.Stride+x] > 0
	}

	visited := make([]bool, w*h)
	var boxes []geometry.Rect
	stack := make([]image.Point, 0, 64)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if visited[y*w+x] || !set(x, y) {
				continue
			}

			minX, minY, maxX, maxY := x, y, x, y
			count := 0
			stack = append(stack[:0], image.Pt(x, y))
			visited[y*w+x] = true

			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				count++
				minX, maxX = min(minX, p.X), max(maxX, p.X)
				minY, maxY = min(minY, p.Y), max(maxY, p.Y)

				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						nx, ny := p.X+dx, p.Y+dy
						if nx < 0 || nx >= w || ny < 0 || ny >= h {
							continue
						}
						if visited[ny*w+nx] || !set(nx, ny) {
							continue
						}
						visited[ny*w+nx] = true
						stack = append(stack, image.Pt(nx, ny))
					}
				}
			}

			if count >= localMinPixels {
				boxes = append(boxes, geometry.Px(
					float64(minX), float64(minY),
					float64(maxX-minX+1), float64(maxY-minY+1),
				))
			}
		}
	}
	return boxes
}
