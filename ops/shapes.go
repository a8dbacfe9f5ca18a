package ops

import (
	"context"
	"image/color"
	"math"

	"github.com/gogpu/gg"

	"github.com/gogpu/recipe"
	"github.com/gogpu/recipe/raster"
)

var blendModes = map[string]gg.BlendMode{
	"source-over": gg.BlendNormal,
	"normal":      gg.BlendNormal,
	"multiply":    gg.BlendMultiply,
	"screen":      gg.BlendScreen,
	"overlay":     gg.BlendOverlay,
}

func shapeOps() []recipe.Operation {
	return []recipe.Operation{
		recipe.NewOperation(recipe.Descriptor{
			ID:          "creative-shape-overlay",
			Name:        "Shape Overlay",
			Description: "Add a geometric shape with a blend mode",
			Params: []recipe.ParamDef{
				selectParam("type", "Shape", "rectangle", "rectangle", "circle", "ellipse"),
				colorParam("color", "Color", "#ff0000"),
				rangeParam("opacity", "Opacity", 0.5, 0, 1, 0.1),
				rangeParam("x", "X Position (%)", 50, 0, 100, 0),
				rangeParam("y", "Y Position (%)", 50, 0, 100, 0),
				numberParam("width", "Width (px)", 200),
				numberParam("height", "Height (px)", 200),
				selectParam("blendMode", "Blend Mode", "source-over", "source-over", "multiply", "screen", "overlay"),
			},
		}, applyShapeOverlay),
		recipe.NewOperation(recipe.Descriptor{
			ID:          "creative-qrcode",
			Name:        "QR Code Stamp",
			Description: "Generate and stamp a QR code",
			Params: []recipe.ParamDef{
				textParam("text", "Content (URL/Text)", "https://example.com"),
				numberParam("size", "Size (px)", 150),
				rangeParam("x", "X Position (%)", 90, 0, 100, 0),
				rangeParam("y", "Y Position (%)", 90, 0, 100, 0),
				colorParam("color", "Color", "#000000"),
				colorParam("backgroundColor", "Background", "#ffffff"),
				numberParam("margin", "Margin", 1),
				selectParam("errorCorrectionLevel", "Error Correction", "M", "L", "M", "Q", "H"),
			},
		}, applyQRCode),
	}
}

func applyShapeOverlay(_ context.Context, c *raster.Canvas, p recipe.Params, rc *recipe.Context) error {
	opacity := clamp(p.Float("opacity", 0.5), 0, 1)
	if opacity == 0 {
		return nil
	}
	cx := p.Float("x", 50) / 100 * float64(c.Width())
	cy := p.Float("y", 50) / 100 * float64(c.Height())
	sw, sh := p.Float("width", 200), p.Float("height", 200)

	name := p.String("blendMode", "source-over")
	mode, ok := blendModes[name]
	if !ok {
		rc.Warn(recipe.WarnParam, "blend mode %q not supported, using source-over", name)
		mode = gg.BlendNormal
	}

	dc := c.DC()
	dc.PushLayer(mode, opacity)
	defer dc.PopLayer()
	dc.SetColor(p.Color("color", color.NRGBA{R: 255, A: 255}))
	switch kind := p.String("type", "rectangle"); kind {
	case "circle":
		dc.DrawCircle(cx, cy, math.Min(sw, sh)/2)
	case "ellipse":
		dc.DrawEllipse(cx, cy, sw/2, sh/2)
	default:
		if kind != "rectangle" {
			rc.Warn(recipe.WarnParam, "unknown shape %q, drawing a rectangle", kind)
		}
		dc.DrawRectangle(cx-sw/2, cy-sh/2, sw, sh)
	}
	return dc.Fill()
}
