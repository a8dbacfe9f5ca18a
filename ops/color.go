package ops

import (
	"context"

	"github.com/gogpu/recipe"
	"github.com/gogpu/recipe/raster"
)

func colorOps() []recipe.Operation {
	return []recipe.Operation{
		recipe.NewOperation(recipe.Descriptor{
			ID:          "color-tuning",
			Name:        "Color Tuning",
			Description: "Adjust contrast and saturation, optionally invert",
			Params: []recipe.ParamDef{
				rangeParam("contrast", "Contrast", 0, -100, 100, 0),
				rangeParam("saturation", "Saturation", 0, -100, 100, 0),
				boolParam("invert", "Invert", false),
			},
		}, applyColorTuning),
		recipe.NewOperation(recipe.Descriptor{
			ID:          "color-opacity",
			Name:        "Opacity",
			Description: "Change image transparency",
			Params:      []recipe.ParamDef{rangeParam("opacity", "Opacity (%)", 100, 0, 100, 0)},
		}, applyOpacity),
	}
}

func applyColorTuning(_ context.Context, c *raster.Canvas, p recipe.Params, _ *recipe.Context) error {
	contrast := clamp(p.Float("contrast", 0), -100, 100) / 100
	saturation := clamp(p.Float("saturation", 0), -100, 100) / 100
	invert := p.Bool("invert", false)
	if contrast == 0 && saturation == 0 && !invert {
		return nil
	}

	mapPixels(c, func(r, g, b, a float64) (float64, float64, float64, float64) {
		if contrast != 0 {
			r, g, b = adjustContrast(r, contrast), adjustContrast(g, contrast), adjustContrast(b, contrast)
		}
		if saturation != 0 {
			gray := luma(r, g, b)
			k := 1 + saturation
			r, g, b = gray+(r-gray)*k, gray+(g-gray)*k, gray+(b-gray)*k
		}
		if invert {
			r, g, b = 255-clamp(r, 0, 255), 255-clamp(g, 0, 255), 255-clamp(b, 0, 255)
		}
		return r, g, b, a
	})
	return nil
}

func adjustContrast(v, c float64) float64 {
	return ((v/255-0.5)*(c+1) + 0.5) * 255
}

func applyOpacity(_ context.Context, c *raster.Canvas, p recipe.Params, _ *recipe.Context) error {
	opacity := clamp(p.Float("opacity", 100), 0, 100) / 100
	if opacity == 1 {
		return nil
	}
	// Scaling all premultiplied channels scales the alpha of every pixel.
	pix := c.Pix()
	for i, v := range pix {
		pix[i] = to8(float64(v) * opacity)
	}
	return nil
}
