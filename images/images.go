// Package images prepares uploaded images for vision-capable providers.
//
// The pipeline per image is: validate (format and size ceiling), resize so
// neither dimension exceeds a maximum while preserving aspect ratio, base64
// encode, and attach the inferred media type. Invalid images are skipped
// with a logged warning rather than failing the batch.
package images

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"log/slog"

	"golang.org/x/image/draw"

	// WEBP has no stdlib decoder; register x/image's.
	_ "golang.org/x/image/webp"
)

// Preprocessing defaults.
const (
	// DefaultMaxSizeMB is the upload size ceiling in megabytes.
	DefaultMaxSizeMB = 20

	// DefaultMaxDimension is the largest width or height sent to a
	// provider; Anthropic resamples anything above 1568px anyway.
	DefaultMaxDimension = 1568

	// DefaultMaxImages caps how many attachments one request carries.
	DefaultMaxImages = 5
)

// Asset is one processed image ready to attach to a vision request.
//
// Assets are created on upload, attached to a single outgoing request, and
// then discarded; they are never persisted.
type Asset struct {
	// Name is the original filename, for logging only.
	Name string

	// Base64 is the encoded image payload.
	Base64 string

	// MediaType is the MIME type (image/png, image/jpeg, image/webp,
	// image/gif).
	MediaType string

	// Size is the byte size of the (possibly resized) image.
	Size int
}

// Upload is a raw image buffer handed over by the upload collaborator.
type Upload struct {
	Name string
	Data []byte
}

// Options configures the preprocessing pipeline.
type Options struct {
	// MaxSizeMB is the validation ceiling in megabytes.
	MaxSizeMB int

	// MaxDimension is the largest allowed width or height; larger images
	// are resized down preserving aspect ratio.
	MaxDimension int

	// MaxImages caps the number of processed attachments.
	MaxImages int

	// Resize disables downscaling when false; validation still applies.
	Resize bool

	// Logger receives skip warnings. Nil falls back to slog.Default().
	Logger *slog.Logger
}

// DefaultOptions returns the standard preprocessing options.
func DefaultOptions() Options {
	return Options{
		MaxSizeMB:    DefaultMaxSizeMB,
		MaxDimension: DefaultMaxDimension,
		MaxImages:    DefaultMaxImages,
		Resize:       true,
	}
}

// mediaTypes maps registered decoder format names to MIME types.
var mediaTypes = map[string]string{
	"png":  "image/png",
	"jpeg": "image/jpeg",
	"webp": "image/webp",
	"gif":  "image/gif",
}

// Validate checks that data decodes as a supported image format and stays
// under the size ceiling.
//
// The returned error message contains "too large" for oversized buffers and
// names the format for unsupported ones, so callers can surface it directly.
func Validate(data []byte, maxSizeMB int) error {
	sizeMB := float64(len(data)) / (1024 * 1024)
	if sizeMB > float64(maxSizeMB) {
		return fmt.Errorf("image too large: %.1fMB (max: %dMB)", sizeMB, maxSizeMB)
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("invalid image: %w", err)
	}

	if _, ok := mediaTypes[format]; !ok {
		return fmt.Errorf("unsupported format: %s", format)
	}

	return nil
}

// ResizeIfNeeded downscales the image so neither dimension exceeds
// maxDimension, preserving aspect ratio with Catmull-Rom resampling.
//
// Images already within bounds are returned unchanged (byte-identical).
// PNG, GIF and WEBP sources re-encode as PNG (Go has no WEBP encoder);
// JPEG stays JPEG.
func ResizeIfNeeded(data []byte, maxDimension int) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("invalid image: %w", err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= maxDimension && height <= maxDimension {
		return data, nil
	}

	var newWidth, newHeight int
	if width > height {
		newWidth = maxDimension
		newHeight = height * maxDimension / width
	} else {
		newHeight = maxDimension
		newWidth = width * maxDimension / height
	}

	dst := image.NewNRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	switch format {
	case "jpeg":
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 90})
	case "gif":
		err = gif.Encode(&buf, dst, nil)
	default:
		err = png.Encode(&buf, dst)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode resized image: %w", err)
	}

	return buf.Bytes(), nil
}

// EncodeBase64 encodes image bytes to a base64 string.
func EncodeBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// MediaType infers the MIME type of an image buffer.
// Undecodable buffers default to image/png.
func MediaType(data []byte) string {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "image/png"
	}
	if mt, ok := mediaTypes[format]; ok {
		return mt
	}
	return "image/png"
}

// Prepare runs the full preprocessing pipeline over a batch of uploads.
//
// Invalid images are skipped with a logged warning, not fatal to the batch;
// the result holds only the successfully processed subset, capped at
// opts.MaxImages.
func Prepare(uploads []Upload, opts Options) []Asset {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MaxImages <= 0 {
		opts.MaxImages = DefaultMaxImages
	}
	if opts.MaxSizeMB <= 0 {
		opts.MaxSizeMB = DefaultMaxSizeMB
	}
	if opts.MaxDimension <= 0 {
		opts.MaxDimension = DefaultMaxDimension
	}

	if len(uploads) > opts.MaxImages {
		uploads = uploads[:opts.MaxImages]
	}

	assets := make([]Asset, 0, len(uploads))
	for _, up := range uploads {
		if err := Validate(up.Data, opts.MaxSizeMB); err != nil {
			logger.Warn("skipping invalid image", "name", up.Name, "error", err)
			continue
		}

		data := up.Data
		if opts.Resize {
			resized, err := ResizeIfNeeded(data, opts.MaxDimension)
			if err != nil {
				// Validation already passed; a resize failure here is
				// best-effort, send the original.
				logger.Warn("failed to resize image, using original", "name", up.Name, "error", err)
			} else {
				data = resized
			}
		}

		assets = append(assets, Asset{
			Name:      up.Name,
			Base64:    EncodeBase64(data),
			MediaType: MediaType(data),
			Size:      len(data),
		})
		logger.Info("processed image", "name", up.Name, "bytes", len(data))
	}

	return assets
}

// EstimateTokens approximates the vision token cost of a request:
// 1600 tokens per image at 1024x1024, scaled quadratically with the average
// dimension. A coarse heuristic, not a provider-verified figure.
func EstimateTokens(numImages, avgDimension int) int {
	scale := float64(avgDimension) / 1024
	perImage := int(1600 * scale * scale)
	return numImages * perImage
}

// Describe returns a short human-readable description of an asset for
// logging or display.
func Describe(a Asset) string {
	return fmt.Sprintf("%s (%.1f KB, %s)", a.Name, float64(a.Size)/1024, a.MediaType)
}
