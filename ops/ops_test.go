package ops

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/recipe"
	"github.com/gogpu/recipe/raster"
)

var (
	white = color.RGBA{255, 255, 255, 255}
	black = color.RGBA{0, 0, 0, 255}
	red   = color.RGBA{255, 0, 0, 255}
	blue  = color.RGBA{0, 0, 255, 255}
)

func fill(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

// halves returns a w x h image whose left half is left and right half is right.
func halves(w, h int, left, right color.RGBA) *image.RGBA {
	img := fill(w, h, left)
	for y := 0; y < h; y++ {
		for x := w / 2; x < w; x++ {
			img.SetRGBA(x, y, right)
		}
	}
	return img
}

func canvas(t *testing.T, img image.Image) *raster.Canvas {
	t.Helper()
	c, err := raster.New(img)
	if err != nil {
		t.Fatalf("raster.New() error = %v", err)
	}
	return c
}

// apply runs the built-in operation id on c.
func apply(t *testing.T, id string, c *raster.Canvas, p recipe.Params) *recipe.Context {
	t.Helper()
	rc := recipe.NewContext(c.RGBA(), "photo.png")
	applyWith(t, id, c, p, rc)
	return rc
}

func applyWith(t *testing.T, id string, c *raster.Canvas, p recipe.Params, rc *recipe.Context) {
	t.Helper()
	op, ok := NewCatalog().Get(id)
	if !ok {
		t.Fatalf("operation %q not registered", id)
	}
	if p == nil {
		p = recipe.Params{}
	}
	if err := op.Apply(context.Background(), c, p, rc); err != nil {
		t.Fatalf("%s: Apply() error = %v", id, err)
	}
}

func at(c *raster.Canvas, x, y int) color.RGBA {
	return c.RGBA().RGBAAt(x, y)
}

func near(a, b color.RGBA, tol int) bool {
	d := func(x, y uint8) bool {
		v := int(x) - int(y)
		return v <= tol && v >= -tol
	}
	return d(a.R, b.R) && d(a.G, b.G) && d(a.B, b.B) && d(a.A, b.A)
}

func size(c *raster.Canvas) image.Point {
	return image.Pt(c.Width(), c.Height())
}
