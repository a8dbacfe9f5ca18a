package raster

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"path"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp" // register WebP decoder
)

// ErrUnsupportedFormat is returned when no encoder exists for a format.
var ErrUnsupportedFormat = errors.New("raster: unsupported format")

// Format identifies an encoded image container.
type Format string

// Known formats.
const (
	PNG  Format = "png"
	JPEG Format = "jpeg"
	GIF  Format = "gif"
	BMP  Format = "bmp"
	TIFF Format = "tiff"
	WebP Format = "webp"
)

// DefaultQuality is the JPEG quality used when none is requested.
const DefaultQuality = 95

// ParseFormat accepts MIME types ("image/png") as well as short names and
// common extensions ("png", "jpg", ".tif").
func ParseFormat(s string) (Format, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "image/")
	s = strings.TrimPrefix(s, ".")
	switch s {
	case "png":
		return PNG, true
	case "jpeg", "jpg", "pjpeg":
		return JPEG, true
	case "gif":
		return GIF, true
	case "bmp", "x-ms-bmp":
		return BMP, true
	case "tiff", "tif":
		return TIFF, true
	case "webp":
		return WebP, true
	}
	return "", false
}

// FormatFromFilename derives the format from a file extension.
func FormatFromFilename(name string) (Format, bool) {
	ext := path.Ext(name)
	if ext == "" {
		return "", false
	}
	return ParseFormat(ext)
}

// Extension returns the file extension for f, without the dot.
func (f Format) Extension() string {
	switch f {
	case JPEG:
		return "jpg"
	case "":
		return "bin"
	}
	return string(f)
}

// MIME returns the media type for f.
func (f Format) MIME() string {
	return "image/" + string(f)
}

// Encodable reports whether Encode supports f.
func (f Format) Encodable() bool {
	switch f {
	case PNG, JPEG, GIF, BMP, TIFF:
		return true
	}
	return false
}

// SupportsMetadata reports whether f has an embedded metadata container
// that the metadata package can rewrite.
func (f Format) SupportsMetadata() bool {
	return f == JPEG
}

// Encode writes img to w in format f. quality applies to JPEG (1-100);
// values outside the range fall back to DefaultQuality.
func Encode(w io.Writer, img image.Image, f Format, quality int) error {
	switch f {
	case PNG:
		return png.Encode(w, img)
	case JPEG:
		if quality < 1 || quality > 100 {
			quality = DefaultQuality
		}
		return jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
	case GIF:
		return gif.Encode(w, img, &gif.Options{NumColors: 256})
	case BMP:
		return bmp.Encode(w, img)
	case TIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, string(f))
}

// EncodeBytes encodes the current canvas contents.
func (c *Canvas) EncodeBytes(f Format, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, c.RGBA(), f, quality); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode decodes an image in any registered format: PNG, JPEG, GIF, BMP,
// TIFF or WebP.
func Decode(r io.Reader) (image.Image, Format, error) {
	img, name, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("raster: decode: %w", err)
	}
	f, _ := ParseFormat(name)
	return img, f, nil
}
