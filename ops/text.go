package ops

import (
	"context"
	"image"
	"image/color"
	"math"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/gogpu/recipe"
	"github.com/gogpu/recipe/internal/fonts"
	"github.com/gogpu/recipe/raster"
)

func textOps() []recipe.Operation {
	return []recipe.Operation{
		recipe.NewOperation(recipe.Descriptor{
			ID:          "text-caption",
			Name:        "Caption",
			Description: "Add a text caption bar",
			Params: []recipe.ParamDef{
				textParam("text", "Text", "Caption"),
				selectParam("position", "Position", "bottom", "top", "bottom"),
				numberParam("fontSize", "Font Size", 24),
				colorParam("backgroundColor", "Background Color", "#000000"),
				colorParam("textColor", "Text Color", "#ffffff"),
			},
		}, applyCaption),
		recipe.NewOperation(recipe.Descriptor{
			ID:          "text-watermark",
			Name:        "Watermark",
			Description: "Add a repeated watermark",
			Params: []recipe.ParamDef{
				textParam("text", "Text", "Watermark"),
				numberParam("fontSize", "Font Size", 24),
				rangeParam("opacity", "Opacity", 0.3, 0, 1, 0.1),
				colorParam("color", "Color", "#000000"),
				rangeParam("angle", "Angle", -45, -90, 90, 0),
			},
		}, applyWatermark),
		recipe.NewOperation(recipe.Descriptor{
			ID:          "creative-ribbon",
			Name:        "Ribbon",
			Description: "Add a corner ribbon with text",
			Params: []recipe.ParamDef{
				textParam("text", "Text", "Draft"),
				selectParam("corner", "Corner", "top-right", "top-left", "top-right", "bottom-left", "bottom-right"),
				numberParam("fontSize", "Font Size", 24),
				colorParam("textColor", "Text Color", "#ffffff"),
				colorParam("backgroundColor", "Background Color", "#ef4444"),
				selectParam("gradientType", "Gradient", "none", "none", "linear"),
				colorParam("gradientColor2", "Gradient Color 2", "#b91c1c"),
				numberParam("padding", "Padding", 10),
				numberParam("offset", "Offset", 50),
			},
		}, applyRibbon),
	}
}

// fontSize reads the fontSize param. Sizes are capped relative to the
// canvas: glyphs far larger than the image only cost rasterization time.
func fontSize(p recipe.Params, def float64, c *raster.Canvas) float64 {
	size := p.Float("fontSize", def)
	if size <= 0 || math.IsNaN(size) {
		size = def
	}
	return math.Min(size, maxFontSize(c))
}

func maxFontSize(c *raster.Canvas) float64 {
	return math.Max(256, 2*float64(max(c.Width(), c.Height())))
}

// baseline returns the baseline that vertically centers a line of face
// on mid.
func baseline(face text.Face, mid float64) float64 {
	m := face.Metrics()
	return mid + (m.Ascent-m.Descent)/2
}

func applyCaption(_ context.Context, c *raster.Canvas, p recipe.Params, rc *recipe.Context) error {
	s := Resolve(p.String("text", "Caption"), rc)
	size := fontSize(p, 24, c)
	face, err := fonts.Face(fonts.Regular, size, "")
	if err != nil {
		return err
	}

	w, h := float64(c.Width()), float64(c.Height())
	pad := size / 2
	bar := size*1.2 + 2*pad
	y := 0.0
	if p.String("position", "bottom") != "top" {
		y = h - bar
	}

	dc := c.DC()
	dc.Push()
	defer dc.Pop()
	dc.SetColor(p.Color("backgroundColor", color.Black))
	dc.DrawRectangle(0, y, w, bar)
	if err := dc.Fill(); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	dc.SetFont(face)
	dc.SetColor(p.Color("textColor", color.White))
	tw, _ := dc.MeasureString(s)
	dc.DrawString(s, w/2-tw/2, baseline(face, y+bar/2))
	return nil
}

func applyWatermark(_ context.Context, c *raster.Canvas, p recipe.Params, rc *recipe.Context) error {
	s := Resolve(p.String("text", "Watermark"), rc)
	opacity := clamp(p.Float("opacity", 0.3), 0, 1)
	if s == "" || opacity == 0 {
		return nil
	}
	size := fontSize(p, 24, c)
	face, err := fonts.Face(fonts.Regular, size, "")
	if err != nil {
		return err
	}

	w, h := float64(c.Width()), float64(c.Height())
	diag := math.Hypot(w, h)
	tw := face.Advance(s)
	spaceX, spaceY := tw*2, size*3
	if spaceX <= 0 {
		return nil
	}

	// The tile only needs to cover the canvas under any rotation, a square
	// of side diag centered on the canvas center. Grid positions are kept
	// relative to a (-diag, -diag) origin in the rotated frame.
	side := int(math.Ceil(diag)) + 2
	half := float64(side) / 2
	tile, err := raster.NewBlank(side, side, nil)
	if err != nil {
		return err
	}
	dc := tile.DC()
	dc.SetFont(face)
	dc.SetColor(p.Color("color", color.Black))
	for row := 0; float64(row)*spaceY < diag*2; row++ {
		y := -diag + float64(row)*spaceY + half
		if y < -size || y > float64(side)+size {
			continue
		}
		shift := 0.0
		if row%2 == 1 {
			shift = spaceX / 2
		}
		for col := 0; float64(col)*spaceX < diag*2; col++ {
			x := -diag + float64(col)*spaceX + shift + half
			if x+tw < 0 || x > float64(side) {
				continue
			}
			dc.DrawString(s, x, y)
		}
	}

	layer := rotateOnto(tile.RGBA(), half, half, c.Width(), c.Height(), w/2, h/2, p.Float("angle", -45))
	composite(c, layer, opacity)
	return nil
}

func applyRibbon(_ context.Context, c *raster.Canvas, p recipe.Params, rc *recipe.Context) error {
	s := Resolve(p.String("text", "Draft"), rc)
	size := fontSize(p, 24, c)
	face, err := fonts.Face(fonts.Bold, size, "")
	if err != nil {
		return err
	}

	w, h := float64(c.Width()), float64(c.Height())
	pad := math.Max(0, p.Float("padding", 10))
	offset := p.Float("offset", 50)
	length := w + h
	thick := size + 2*pad

	strip, err := raster.NewBlank(px(length), px(thick), nil)
	if err != nil {
		return err
	}
	dc := strip.DC()
	bg := p.Color("backgroundColor", color.NRGBA{R: 0xef, G: 0x44, B: 0x44, A: 0xff})
	if p.String("gradientType", "none") == "linear" && p.Has("gradientColor2") {
		end := p.Color("gradientColor2", color.NRGBA{R: 0xb9, G: 0x1c, B: 0x1c, A: 0xff})
		dc.SetFillBrush(gg.NewLinearGradientBrush(0, thick/2, length, thick/2).
			AddColorStop(0, gg.FromColor(bg)).
			AddColorStop(1, gg.FromColor(end)).
			SetExtend(gg.ExtendPad))
	} else {
		dc.SetColor(bg)
	}
	dc.DrawRectangle(0, 0, length, thick)
	if err := dc.Fill(); err != nil {
		return err
	}
	if s != "" {
		dc.SetFont(face)
		dc.SetColor(p.Color("textColor", color.White))
		dc.DrawString(s, length/2-face.Advance(s)/2, baseline(face, thick/2))
	}

	// The strip center sits offset pixels from the corner, measured
	// perpendicular to the ribbon and pointing into the image.
	var cx, cy, angle float64
	switch corner := p.String("corner", "top-right"); corner {
	case "top-left":
		angle = -45
	case "bottom-left":
		cy, angle, offset = h, 45, -offset
	case "bottom-right":
		cx, cy, angle, offset = w, h, -45, -offset
	default:
		if corner != "top-right" {
			rc.Warn(recipe.WarnParam, "unknown ribbon corner %q, using top-right", corner)
		}
		cx, angle = w, 45
	}
	sin, cos := math.Sincos(angle * math.Pi / 180)
	cx -= sin * offset
	cy += cos * offset

	layer := rotateOnto(strip.RGBA(), length/2, thick/2, c.Width(), c.Height(), cx, cy, angle)
	composite(c, layer, 1)
	return nil
}

// rotateOnto returns a w x h transparent image with src drawn so that the
// source point (sx, sy) lands on (dx, dy), rotated clockwise by deg.
func rotateOnto(src *image.RGBA, sx, sy float64, w, h int, dx, dy, deg float64) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	sin, cos := math.Sincos(deg * math.Pi / 180)
	m := f64.Aff3{
		cos, -sin, dx - cos*sx + sin*sy,
		sin, cos, dy - sin*sx - cos*sy,
	}
	xdraw.BiLinear.Transform(dst, m, src, src.Rect, xdraw.Over, nil)
	return dst
}

// composite draws layer over the canvas with the given opacity.
func composite(c *raster.Canvas, layer image.Image, opacity float64) {
	c.DC().DrawImageEx(gg.ImageBufFromImage(layer), gg.DrawImageOptions{
		Interpolation: gg.InterpNearest,
		Opacity:       opacity,
		BlendMode:     gg.BlendNormal,
	})
}
