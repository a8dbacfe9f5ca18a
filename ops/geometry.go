package ops

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/gogpu/gg"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/gogpu/recipe"
	"github.com/gogpu/recipe/raster"
)

func geometryOps() []recipe.Operation {
	return []recipe.Operation{
		recipe.NewOperation(recipe.Descriptor{
			ID:          "geo-resize",
			Name:        "Resize",
			Description: "Resize the image",
			Params: []recipe.ParamDef{
				textParam("width", "Width (px or %)", "100%"),
				textParam("height", "Height (px or %)", ""),
				boolParam("maintainAspect", "Maintain Aspect Ratio", true),
			},
		}, applyResize),
		recipe.NewOperation(recipe.Descriptor{
			ID:          "geo-crop",
			Name:        "Crop",
			Description: "Crop the image",
			Params: []recipe.ParamDef{
				textParam("x", "X (px or %)", "0"),
				textParam("y", "Y (px or %)", "0"),
				textParam("width", "Width (px or %)", "100%"),
				textParam("height", "Height (px or %)", "100%"),
			},
		}, applyCrop),
		recipe.NewOperation(recipe.Descriptor{
			ID:          "geometry-smart-crop",
			Name:        "Smart Crop",
			Description: "Center crop to an aspect ratio",
			Params: []recipe.ParamDef{
				textParam("aspectRatio", "Aspect Ratio (W:H)", "1:1"),
				rangeParam("scale", "Scale (%)", 100, 10, 200, 0),
			},
		}, applySmartCrop),
		recipe.NewOperation(recipe.Descriptor{
			ID:          "geo-flip",
			Name:        "Flip",
			Description: "Flip the image",
			Params:      []recipe.ParamDef{selectParam("direction", "Direction", "horizontal", "horizontal", "vertical", "both")},
		}, applyFlip),
		recipe.NewOperation(recipe.Descriptor{
			ID:          "geo-rotate",
			Name:        "Rotate",
			Description: "Rotate the image",
			Params:      []recipe.ParamDef{selectParam("angle", "Angle", 90, "90", "180", "-90")},
		}, applyRotate),
		recipe.NewOperation(recipe.Descriptor{
			ID:          "geo-round",
			Name:        "Round Corners",
			Description: "Round corners or make circular",
			Params: []recipe.ParamDef{
				textParam("radius", "Radius (px or %)", "20"),
				boolParam("circular", "Make Circular", false),
			},
		}, applyRound),
		recipe.NewOperation(recipe.Descriptor{
			ID:          "geo-border",
			Name:        "Border",
			Description: "Add a border around the image",
			Params: []recipe.ParamDef{
				textParam("size", "Size (px or %)", "20"),
				colorParam("color", "Color", "#ffffff"),
			},
		}, applyBorder),
		recipe.NewOperation(recipe.Descriptor{
			ID:          "geometry-canvas-padding",
			Name:        "Canvas Padding",
			Description: "Add padding around the image",
			Params: []recipe.ParamDef{
				textParam("padding", "Padding (px or %)", "10%"),
				colorParam("color", "Background Color", "#ffffff"),
			},
		}, applyPadding),
		recipe.NewOperation(recipe.Descriptor{
			ID:          "geo-zoom",
			Name:        "Zoom",
			Description: "Zoom into an area while keeping the image size",
			Params: []recipe.ParamDef{
				rangeParam("level", "Zoom Level (x)", 1.5, 1, 10, 0.1),
				rangeParam("x", "Focus X (%)", 50, 0, 100, 0),
				rangeParam("y", "Focus Y (%)", 50, 0, 100, 0),
				boolParam("smooth", "Smooth Interpolation", true),
			},
		}, applyZoom),
	}
}

// px rounds a computed length to a pixel count of at least one.
func px(v float64) int {
	return max(1, int(math.Round(v)))
}

// set reports whether name holds a non-empty value.
func set(p recipe.Params, name string) bool {
	return p.Has(name) && p.String(name, "") != ""
}

func applyResize(_ context.Context, c *raster.Canvas, p recipe.Params, _ *recipe.Context) error {
	w, h := float64(c.Width()), float64(c.Height())
	hasW, hasH := set(p, "width"), set(p, "height")
	if !p.Has("width") {
		hasW = true
	}

	nw, nh := w, h
	if hasW {
		nw = p.Length("width", w, w)
	}
	if hasH {
		nh = p.Length("height", h, h)
	}
	if p.Bool("maintainAspect", true) {
		aspect := w / h
		switch {
		case hasW && !hasH:
			nh = nw / aspect
		case hasH && !hasW:
			nw = nh * aspect
		}
	}
	if nw <= 0 || nh <= 0 {
		return fmt.Errorf("ops: invalid resize target %.0fx%.0f", nw, nh)
	}
	return c.Resize(px(nw), px(nh), true)
}

func applyCrop(_ context.Context, c *raster.Canvas, p recipe.Params, _ *recipe.Context) error {
	w, h := float64(c.Width()), float64(c.Height())
	x := p.Length("x", w, 0)
	y := p.Length("y", h, 0)
	cw := w
	if set(p, "width") {
		cw = p.Length("width", w, w)
	}
	ch := h
	if set(p, "height") {
		ch = p.Length("height", h, h)
	}
	if cw <= 0 || ch <= 0 {
		return fmt.Errorf("ops: invalid crop size %.0fx%.0f", cw, ch)
	}
	x0, y0 := int(math.Round(x)), int(math.Round(y))
	return c.Crop(image.Rect(x0, y0, x0+px(cw), y0+px(ch)))
}

func applySmartCrop(_ context.Context, c *raster.Canvas, p recipe.Params, rc *recipe.Context) error {
	arg := p.String("aspectRatio", "1:1")
	ratio, ok := parseRatio(arg)
	if !ok {
		rc.Warn(recipe.WarnParam, "invalid aspect ratio %q, using 1:1", arg)
		ratio = 1
	}
	scale := p.Float("scale", 100)
	if scale <= 0 || math.IsNaN(scale) {
		scale = 100
	}
	scale = clamp(scale, 10, 200) / 100

	// The crop spans the full height of images wider than the ratio and
	// the full width of the others, before scaling.
	w, h := float64(c.Width()), float64(c.Height())
	var cw, ch float64
	if w/h > ratio {
		ch = h * scale
		cw = ch * ratio
	} else {
		cw = w * scale
		ch = cw / ratio
	}
	x0 := int(math.Round((w - cw) / 2))
	y0 := int(math.Round((h - ch) / 2))
	return c.Crop(image.Rect(x0, y0, x0+px(cw), y0+px(ch)))
}

// parseRatio reads a "W:H" aspect ratio.
func parseRatio(s string) (float64, bool) {
	ws, hs, ok := strings.Cut(s, ":")
	if !ok {
		return 0, false
	}
	w, err := strconv.ParseFloat(strings.TrimSpace(ws), 64)
	if err != nil {
		return 0, false
	}
	h, err := strconv.ParseFloat(strings.TrimSpace(hs), 64)
	if err != nil {
		return 0, false
	}
	r := w / h
	if w <= 0 || h <= 0 || math.IsInf(r, 0) || math.IsNaN(r) {
		return 0, false
	}
	return r, true
}

func applyFlip(_ context.Context, c *raster.Canvas, p recipe.Params, rc *recipe.Context) error {
	switch dir := p.String("direction", "horizontal"); dir {
	case "horizontal":
		c.Flip(true, false)
	case "vertical":
		c.Flip(false, true)
	case "both":
		c.Flip(true, true)
	default:
		rc.Warn(recipe.WarnParam, "unknown flip direction %q", dir)
	}
	return nil
}

func applyRotate(_ context.Context, c *raster.Canvas, p recipe.Params, _ *recipe.Context) error {
	angle := math.Mod(p.Float("angle", 90), 360)
	if angle == 0 {
		return nil
	}
	if q := angle / 90; q == math.Trunc(q) {
		return c.RotateQuarter(int(q))
	}
	rotateFree(c, angle)
	return nil
}

// rotateFree rotates the canvas about its center by deg degrees
// clockwise, keeping its size. Corners that leave the frame are lost.
func rotateFree(c *raster.Canvas, deg float64) {
	w, h := float64(c.Width()), float64(c.Height())
	src := c.RGBA()
	dst := image.NewRGBA(src.Rect)
	sin, cos := math.Sincos(deg * math.Pi / 180)
	cx, cy := w/2, h/2
	m := f64.Aff3{
		cos, -sin, cx - cos*cx + sin*cy,
		sin, cos, cy - sin*cx - cos*cy,
	}
	xdraw.BiLinear.Transform(dst, m, src, src.Rect, xdraw.Src, nil)
	copy(c.Pix(), dst.Pix)
}

func applyRound(_ context.Context, c *raster.Canvas, p recipe.Params, _ *recipe.Context) error {
	w, h := float64(c.Width()), float64(c.Height())
	short := math.Min(w, h)
	if p.Bool("circular", false) {
		c.Mask(func(dc *gg.Context) {
			dc.DrawCircle(w/2, h/2, short/2)
		})
		return nil
	}
	r := clamp(p.Length("radius", short, 20), 0, short/2)
	if r == 0 {
		return nil
	}
	c.Mask(func(dc *gg.Context) {
		dc.DrawRoundedRectangle(0, 0, w, h, r)
	})
	return nil
}

func applyBorder(_ context.Context, c *raster.Canvas, p recipe.Params, _ *recipe.Context) error {
	short := math.Min(float64(c.Width()), float64(c.Height()))
	return frame(c, p.Length("size", short, 20), p.Color("color", color.White))
}

func applyPadding(_ context.Context, c *raster.Canvas, p recipe.Params, _ *recipe.Context) error {
	short := math.Min(float64(c.Width()), float64(c.Height()))
	return frame(c, p.Length("padding", short, 0), p.Color("color", color.White))
}

// frame grows the canvas by size on every side, fills the new area with
// bg and draws the previous content in the middle.
func frame(c *raster.Canvas, size float64, bg color.Color) error {
	n := int(math.Round(size))
	if n <= 0 {
		return nil
	}
	s := c.Snapshot()
	next, err := raster.NewBlank(s.Width()+2*n, s.Height()+2*n, bg)
	if err != nil {
		return err
	}
	next.DC().DrawImageEx(gg.ImageBufFromImage(s.Image()), gg.DrawImageOptions{
		X:             float64(n),
		Y:             float64(n),
		Interpolation: gg.InterpNearest,
		BlendMode:     gg.BlendNormal,
	})
	return c.Replace(next.RGBA())
}

func applyZoom(_ context.Context, c *raster.Canvas, p recipe.Params, _ *recipe.Context) error {
	level := math.Max(1, p.Float("level", 1.5))
	if level == 1 {
		return nil
	}
	w, h := float64(c.Width()), float64(c.Height())
	vw, vh := w/level, h/level
	left := clamp(p.Float("x", 50)/100*w-vw/2, 0, w-vw)
	top := clamp(p.Float("y", 50)/100*h-vh/2, 0, h-vh)

	view := image.Rect(
		int(math.Round(left)), int(math.Round(top)),
		int(math.Round(left+vw)), int(math.Round(top+vh)),
	)
	if view.Empty() {
		view = image.Rect(view.Min.X, view.Min.Y, view.Min.X+1, view.Min.Y+1)
	}
	c.ScaleRegion(view, p.Bool("smooth", true))
	return nil
}
