package raster

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/gogpu/gg"
	xdraw "golang.org/x/image/draw"
)

// ErrNoSurface is returned when a drawable working surface cannot be
// obtained. It is the only condition that aborts a run before any step.
var ErrNoSurface = errors.New("raster: no drawable surface")

// Canvas is the mutable working raster of a single recipe run.
//
// Pixel data is stored as 8-bit RGBA with premultiplied alpha, the same
// layout as [image.RGBA]. Vector drawing goes through the embedded gg
// drawing context returned by [Canvas.DC]; direct pixel filters use
// [Canvas.Pix].
//
// A Canvas is owned by exactly one run and is not safe for concurrent use.
type Canvas struct {
	dc *gg.Context
}

// New creates a canvas holding a copy of img.
func New(img image.Image) (*Canvas, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil source image", ErrNoSurface)
	}
	c := &Canvas{}
	if err := c.Replace(img); err != nil {
		return nil, err
	}
	return c, nil
}

// NewBlank creates a width x height canvas filled with bg.
// A nil bg leaves the canvas transparent.
func NewBlank(width, height int, bg color.Color) (*Canvas, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: invalid dimensions %dx%d", ErrNoSurface, width, height)
	}
	c := &Canvas{dc: gg.NewContext(width, height)}
	if bg != nil {
		c.dc.ClearWithColor(gg.FromColor(bg))
	}
	return c, nil
}

// Width returns the current canvas width in pixels.
func (c *Canvas) Width() int { return c.dc.Width() }

// Height returns the current canvas height in pixels.
func (c *Canvas) Height() int { return c.dc.Height() }

// Aspect returns width / height of the current canvas.
func (c *Canvas) Aspect() float64 {
	return float64(c.Width()) / float64(c.Height())
}

// Bounds returns the canvas rectangle anchored at the origin.
func (c *Canvas) Bounds() image.Rectangle {
	return image.Rect(0, 0, c.Width(), c.Height())
}

// DC returns the drawing context backing the canvas.
// The context is replaced whenever the canvas changes size, so callers
// must not hold on to it across operations.
func (c *Canvas) DC() *gg.Context { return c.dc }

// Pix returns the live pixel buffer (RGBA, 4 bytes per pixel, stride
// Width*4). Writes are visible immediately. Pending accelerated drawing is
// flushed first.
func (c *Canvas) Pix() []uint8 {
	if err := c.dc.FlushGPU(); err != nil {
		gg.Logger().Warn("raster: gpu flush failed", "err", err)
	}
	return c.dc.ResizeTarget().Data()
}

// RGBA returns a copy of the canvas contents.
func (c *Canvas) RGBA() *image.RGBA {
	img := image.NewRGBA(c.Bounds())
	copy(img.Pix, c.Pix())
	return img
}

// Replace swaps the canvas contents for a copy of img, adopting its size.
func (c *Canvas) Replace(img image.Image) error {
	b := img.Bounds()
	if b.Empty() {
		return fmt.Errorf("%w: empty %dx%d image", ErrNoSurface, b.Dx(), b.Dy())
	}
	dc := gg.NewContext(b.Dx(), b.Dy())
	dst := dc.ResizeTarget().Data()
	if src, ok := img.(*image.RGBA); ok && src.Rect.Min == (image.Point{}) && src.Stride == b.Dx()*4 {
		copy(dst, src.Pix)
	} else {
		tmp := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(tmp, tmp.Rect, img, b.Min, draw.Src)
		copy(dst, tmp.Pix)
	}
	c.dc = dc
	return nil
}

// Resize scales the canvas to width x height. smooth selects Catmull-Rom
// resampling; otherwise nearest-neighbor is used.
func (c *Canvas) Resize(width, height int, smooth bool) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("raster: invalid resize target %dx%d", width, height)
	}
	if width == c.Width() && height == c.Height() {
		return nil
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	scaler(smooth).Scale(dst, dst.Rect, c.RGBA(), c.Bounds(), xdraw.Src, nil)
	return c.Replace(dst)
}

// Crop replaces the canvas with the region r of itself. Parts of r outside
// the canvas become transparent.
func (c *Canvas) Crop(r image.Rectangle) error {
	if r.Empty() {
		return fmt.Errorf("raster: empty crop rectangle %v", r)
	}
	dst := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(dst, dst.Rect, c.RGBA(), r.Min, draw.Src)
	return c.Replace(dst)
}

// ScaleRegion renders the source region src of the canvas onto the whole
// canvas, keeping the canvas size.
func (c *Canvas) ScaleRegion(src image.Rectangle, smooth bool) {
	dst := image.NewRGBA(c.Bounds())
	scaler(smooth).Scale(dst, dst.Rect, c.RGBA(), src, xdraw.Src, nil)
	copy(c.Pix(), dst.Pix)
}

// Mask builds a path with shape and scales every pixel by the path
// coverage. Pixels outside the path become transparent.
func (c *Canvas) Mask(shape func(dc *gg.Context)) {
	c.dc.ClearPath()
	shape(c.dc)
	m := c.dc.AsMask()
	c.dc.ClearPath()

	pix := c.Pix()
	for i, a := range m.Data() {
		switch a {
		case 255:
			continue
		case 0:
			pix[4*i], pix[4*i+1], pix[4*i+2], pix[4*i+3] = 0, 0, 0, 0
			continue
		}
		k := float64(a) / 255
		for j := 4 * i; j < 4*i+4; j++ {
			pix[j] = uint8(float64(pix[j])*k + 0.5)
		}
	}
}

// Flip mirrors the canvas horizontally, vertically or both.
func (c *Canvas) Flip(horizontal, vertical bool) {
	if !horizontal && !vertical {
		return
	}
	w, h := c.Width(), c.Height()
	src := c.RGBA()
	dst := c.Pix()
	for y := 0; y < h; y++ {
		sy := y
		if vertical {
			sy = h - 1 - y
		}
		for x := 0; x < w; x++ {
			sx := x
			if horizontal {
				sx = w - 1 - x
			}
			copy(dst[(y*w+x)*4:(y*w+x)*4+4], src.Pix[sy*src.Stride+sx*4:])
		}
	}
}

// RotateQuarter rotates the canvas clockwise by turns * 90 degrees.
// Negative turns rotate counter-clockwise. Odd turns swap the dimensions.
func (c *Canvas) RotateQuarter(turns int) error {
	turns = ((turns % 4) + 4) % 4
	if turns == 0 {
		return nil
	}
	w, h := c.Width(), c.Height()
	src := c.RGBA()
	dw, dh := w, h
	if turns%2 == 1 {
		dw, dh = h, w
	}
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var dx, dy int
			switch turns {
			case 1:
				dx, dy = h-1-y, x
			case 2:
				dx, dy = w-1-x, h-1-y
			case 3:
				dx, dy = y, w-1-x
			}
			copy(dst.Pix[dy*dst.Stride+dx*4:dy*dst.Stride+dx*4+4], src.Pix[y*src.Stride+x*4:])
		}
	}
	return c.Replace(dst)
}

// Snapshot captures an independent copy of the current pixels.
func (c *Canvas) Snapshot() *Snapshot {
	pix := make([]uint8, len(c.Pix()))
	copy(pix, c.Pix())
	return &Snapshot{width: c.Width(), height: c.Height(), pix: pix}
}

// Restore resizes the canvas to the snapshot dimensions and copies it in.
// With opacity below 1 the snapshot is drawn faded onto a cleared canvas.
func (c *Canvas) Restore(s *Snapshot, opacity float64) {
	opacity = clamp01(opacity)
	if c.Width() != s.width || c.Height() != s.height {
		c.dc = gg.NewContext(s.width, s.height)
	}
	dst := c.Pix()
	if opacity >= 1 {
		copy(dst, s.pix)
		return
	}
	for i, v := range s.pix {
		dst[i] = uint8(float64(v)*opacity + 0.5)
	}
}

// Overlay draws the snapshot at its native size on top of the canvas
// without resizing it.
func (c *Canvas) Overlay(s *Snapshot, opacity float64) {
	opacity = clamp01(opacity)
	if opacity == 0 {
		return
	}
	c.dc.DrawImageEx(gg.ImageBufFromImage(s.Image()), gg.DrawImageOptions{
		X:             0,
		Y:             0,
		Interpolation: gg.InterpNearest,
		Opacity:       opacity,
		BlendMode:     gg.BlendNormal,
	})
}

// Snapshot is an immutable copy of a canvas state.
type Snapshot struct {
	width  int
	height int
	pix    []uint8
}

// Width returns the captured width.
func (s *Snapshot) Width() int { return s.width }

// Height returns the captured height.
func (s *Snapshot) Height() int { return s.height }

// Image returns a copy of the snapshot as an RGBA image.
func (s *Snapshot) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	copy(img.Pix, s.pix)
	return img
}

func scaler(smooth bool) xdraw.Scaler {
	if smooth {
		return xdraw.CatmullRom
	}
	return xdraw.NearestNeighbor
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
