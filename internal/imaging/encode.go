package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

// DefaultQuality is the lossy quality used for JPEG and WebP output.
const DefaultQuality = 90

// EncodedImage is an image ready to be returned over the wire.
type EncodedImage struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	MimeType    string `json:"mime_type"`
	ImageBase64 string `json:"image_base64"`
}

// ParseFormat normalises an output format name. An empty name selects
// fallback.
func ParseFormat(name, fallback string) (string, error) {
	if name == "" {
		name = fallback
	}
	switch strings.ToLower(name) {
	case "png":
		return "png", nil
	case "jpg", "jpeg":
		return "jpeg", nil
	case "webp":
		return "webp", nil
	}
	return "", fmt.Errorf("unsupported output format %q (use png, jpeg or webp)", name)
}

// MimeType returns the MIME type for a normalised format name.
func MimeType(format string) string {
	switch format {
	case "jpeg":
		return "image/jpeg"
	case "webp":
		return "image/webp"
	default:
		return "image/png"
	}
}

// EncodeBytes encodes img in the given format. quality applies to jpeg and
// webp and is clamped to 1..100.
func EncodeBytes(img image.Image, format string, quality int) ([]byte, error) {
	if img == nil {
		return nil, fmt.Errorf("no image to encode")
	}
	format, err := ParseFormat(format, "png")
	if err != nil {
		return nil, err
	}
	if quality < 1 || quality > 100 {
		quality = DefaultQuality
	}

	var buf bytes.Buffer
	switch format {
	case "webp":
		err = webp.Encode(&buf, img, &webp.Options{Quality: float32(quality)})
	case "jpeg":
		err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality))
	default:
		err = imaging.Encode(&buf, img, imaging.PNG)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

// Encode encodes img and wraps it as base64 with its dimensions.
//
// Parameters:
//   - img: The image to encode. Its bounds become Width and Height.
//   - format: "png", "jpeg" (or "jpg") or "webp". An empty string selects PNG.
//   - quality: JPEG and WebP quality from 1 to 100. Values outside that range
//     select DefaultQuality. Ignored for PNG.
//
// Returns:
//   - *EncodedImage: The base64 payload with its MIME type and dimensions.
//   - error: Non-nil if img is nil, the format is unsupported or the encoder
//     fails.
//
// # Example
//
//	enc, err := imaging.Encode(img, "webp", imaging.DefaultQuality)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(enc.MimeType) // image/webp
func Encode(img image.Image, format string, quality int) (*EncodedImage, error) {
	data, err := EncodeBytes(img, format, quality)
	if err != nil {
		return nil, err
	}
	format, _ = ParseFormat(format, "png")
	b := img.Bounds()
	return &EncodedImage{
		Width:       b.Dx(),
		Height:      b.Dy(),
		MimeType:    MimeType(format),
		ImageBase64: base64.StdEncoding.EncodeToString(data),
	}, nil
}

// PrepareForModel downsizes img and encodes it as JPEG for upload to a
// vision or image model.
//
// Parameters:
//   - img: The photo to upload.
//   - maxDim: Upper bound for the long side in pixels. Images already within
//     maxDim are not resized, and a non-positive maxDim disables resizing.
//   - quality: JPEG quality from 1 to 100; other values select DefaultQuality.
//
// Returns:
//   - []byte: The JPEG bytes.
//   - error: Non-nil if img is nil or encoding fails.
//
// # Resampling
//
// Downsizing keeps the aspect ratio and uses the Lanczos filter.
func PrepareForModel(img image.Image, maxDim, quality int) ([]byte, error) {
	if img == nil {
		return nil, fmt.Errorf("no image to prepare")
	}
	if maxDim > 0 {
		b := img.Bounds()
		if b.Dx() > maxDim || b.Dy() > maxDim {
			img = imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
		}
	}
	return EncodeBytes(img, "jpeg", quality)
}
