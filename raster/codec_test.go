package raster

import (
	"bytes"
	"errors"
	"image/color"
	"testing"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		ok   bool
	}{
		{"image/png", PNG, true},
		{"png", PNG, true},
		{"image/jpeg", JPEG, true},
		{"JPG", JPEG, true},
		{".tif", TIFF, true},
		{"image/webp", WebP, true},
		{"bmp", BMP, true},
		{"gif", GIF, true},
		{"image/heic", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseFormat(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseFormat(%q) = %q, %v, want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestFormatExtension(t *testing.T) {
	tests := map[Format]string{
		JPEG: "jpg",
		PNG:  "png",
		TIFF: "tiff",
		WebP: "webp",
	}
	for f, want := range tests {
		if got := f.Extension(); got != want {
			t.Errorf("%q.Extension() = %q, want %q", f, got, want)
		}
	}
}

func TestFormatFromFilename(t *testing.T) {
	if f, ok := FormatFromFilename("holiday.photo.JPG"); !ok || f != JPEG {
		t.Errorf("FormatFromFilename(jpg) = %q, %v", f, ok)
	}
	if _, ok := FormatFromFilename("README"); ok {
		t.Error("FormatFromFilename(README) ok = true, want false")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	c, _ := New(solid(6, 4, color.RGBA{R: 12, G: 34, B: 56, A: 255}))
	for _, f := range []Format{PNG, JPEG, GIF, BMP, TIFF} {
		t.Run(string(f), func(t *testing.T) {
			data, err := c.EncodeBytes(f, 90)
			if err != nil {
				t.Fatalf("EncodeBytes(%s) error = %v", f, err)
			}
			img, got, err := Decode(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if got != f {
				t.Errorf("decoded format = %q, want %q", got, f)
			}
			if b := img.Bounds(); b.Dx() != 6 || b.Dy() != 4 {
				t.Errorf("decoded size = %v, want 6x4", b)
			}
		})
	}
}

func TestEncodeUnsupported(t *testing.T) {
	c, _ := New(solid(1, 1, color.RGBA{A: 255}))
	_, err := c.EncodeBytes(WebP, 90)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("EncodeBytes(webp) error = %v, want ErrUnsupportedFormat", err)
	}
	if WebP.Encodable() {
		t.Error("WebP.Encodable() = true, want false")
	}
}
