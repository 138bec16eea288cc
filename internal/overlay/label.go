package overlay

import (
	"image"
	"image/color"
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

var (
	labelFontOnce sync.Once
	labelFont     *opentype.Font
	labelFontErr  error

	facesMu sync.Mutex
	faces   = map[int]font.Face{}
)

// labelFace returns a Go Regular face of roughly px pixels. Faces are cached per
// integer size. If the embedded font cannot be parsed the fixed 7x13 face is
// used so labels still render.
func labelFace(px float64) font.Face {
	labelFontOnce.Do(func() {
		labelFont, labelFontErr = opentype.Parse(goregular.TTF)
	})
	if labelFontErr != nil {
		return basicfont.Face7x13
	}

	size := int(math.Round(px))
	if size < 1 {
		size = 1
	}

	facesMu.Lock()
	defer facesMu.Unlock()
	if f, ok := faces[size]; ok {
		return f
	}
	f, err := opentype.NewFace(labelFont, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return basicfont.Face7x13
	}
	faces[size] = f
	return f
}

// textWidth measures label in pixels.
func textWidth(face font.Face, label string) float64 {
	return float64(font.MeasureString(face, label).Ceil())
}

// drawText draws label with its top edge at (x, top).
func drawText(dst *image.RGBA, face font.Face, label string, x, top float64, c color.Color) {
	ascent := face.Metrics().Ascent.Ceil()
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(int(math.Round(x)), int(math.Round(top))+ascent),
	}
	d.DrawString(label)
}
