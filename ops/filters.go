package ops

import (
	"context"
	"image/color"
	"math"
	"math/rand/v2"

	"github.com/gogpu/gg"

	"github.com/gogpu/recipe"
	"github.com/gogpu/recipe/raster"
)

func filterOps() []recipe.Operation {
	return []recipe.Operation{
		recipe.NewOperation(recipe.Descriptor{
			ID:          "filter-grayscale",
			Name:        "Grayscale",
			Description: "Convert image to grayscale",
		}, applyGrayscale),
		recipe.NewOperation(recipe.Descriptor{
			ID:          "filter-sepia",
			Name:        "Sepia",
			Description: "Apply sepia tone",
		}, applySepia),
		recipe.NewOperation(recipe.Descriptor{
			ID:          "filter-brightness",
			Name:        "Brightness",
			Description: "Adjust brightness",
			Params:      []recipe.ParamDef{rangeParam("level", "Level", 0, -100, 100, 0)},
		}, applyBrightness),
		recipe.NewOperation(recipe.Descriptor{
			ID:          "filter-blur",
			Name:        "Blur",
			Description: "Apply gaussian blur",
			Params:      []recipe.ParamDef{rangeParam("radius", "Radius (px)", 5, 0, 100, 0)},
		}, applyBlur),
		recipe.NewOperation(recipe.Descriptor{
			ID:          "filter-noise",
			Name:        "Noise",
			Description: "Add random noise",
			Params: []recipe.ParamDef{
				rangeParam("amount", "Amount", 20, 0, 100, 0),
				numberParam("seed", "Random Seed (0 = random)", 0),
			},
		}, applyNoise),
		recipe.NewOperation(recipe.Descriptor{
			ID:          "filter-sharpen",
			Name:        "Sharpen",
			Description: "Apply an unsharp mask",
			Params: []recipe.ParamDef{
				rangeParam("amount", "Amount", 100, 0, 500, 0),
				rangeParam("radius", "Radius", 1, 0, 20, 0.1),
				rangeParam("threshold", "Threshold", 0, 0, 255, 0),
			},
		}, applySharpen),
		recipe.NewOperation(recipe.Descriptor{
			ID:          "filter-pixelate",
			Name:        "Pixelate",
			Description: "Pixelate the image",
			Params:      []recipe.ParamDef{rangeParam("size", "Pixel Size", 10, 2, 100, 0)},
		}, applyPixelate),
		recipe.NewOperation(recipe.Descriptor{
			ID:          "filter-vignette",
			Name:        "Vignette",
			Description: "Darken the image towards its edges",
			Params: []recipe.ParamDef{
				rangeParam("amount", "Amount (%)", 50, 0, 100, 0),
				rangeParam("radius", "Radius (%)", 50, 0, 100, 0),
			},
		}, applyVignette),
		recipe.NewOperation(recipe.Descriptor{
			ID:          "filter-duotone",
			Name:        "Duotone",
			Description: "Map luminosity to two colors",
			Params: []recipe.ParamDef{
				colorParam("color1", "Dark Color", "#0000ff"),
				colorParam("color2", "Light Color", "#ff0000"),
			},
		}, applyDuotone),
		recipe.NewOperation(recipe.Descriptor{
			ID:          "color-auto-levels",
			Name:        "Auto Levels",
			Description: "Stretch each channel to the full range",
			Params:      []recipe.ParamDef{rangeParam("tolerance", "Clip (%)", 0.5, 0, 10, 0.1)},
		}, applyAutoLevels),
	}
}

func applyGrayscale(_ context.Context, c *raster.Canvas, _ recipe.Params, _ *recipe.Context) error {
	mapPixels(c, func(r, g, b, a float64) (float64, float64, float64, float64) {
		avg := (r + g + b) / 3
		return avg, avg, avg, a
	})
	return nil
}

func applySepia(_ context.Context, c *raster.Canvas, _ recipe.Params, _ *recipe.Context) error {
	mapPixels(c, func(r, g, b, a float64) (float64, float64, float64, float64) {
		return r*0.393 + g*0.769 + b*0.189,
			r*0.349 + g*0.686 + b*0.168,
			r*0.272 + g*0.534 + b*0.131,
			a
	})
	return nil
}

func applyBrightness(_ context.Context, c *raster.Canvas, p recipe.Params, _ *recipe.Context) error {
	level := p.Float("level", 0)
	if level == 0 {
		return nil
	}
	mapPixels(c, func(r, g, b, a float64) (float64, float64, float64, float64) {
		return r + level, g + level, b + level, a
	})
	return nil
}

func applyBlur(_ context.Context, c *raster.Canvas, p recipe.Params, _ *recipe.Context) error {
	boxBlur(c.Pix(), c.Width(), c.Height(), p.Float("radius", 5))
	return nil
}

func applyNoise(_ context.Context, c *raster.Canvas, p recipe.Params, _ *recipe.Context) error {
	amount := p.Float("amount", 20)
	if amount <= 0 {
		return nil
	}
	var rng *rand.Rand
	if seed := p.Int("seed", 0); seed != 0 {
		rng = rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
	} else {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	mapPixels(c, func(r, g, b, a float64) (float64, float64, float64, float64) {
		n := (rng.Float64() - 0.5) * amount * 2.55
		return r + n, g + n, b + n, a
	})
	return nil
}

func applySharpen(_ context.Context, c *raster.Canvas, p recipe.Params, _ *recipe.Context) error {
	amount := p.Float("amount", 100) / 100
	radius := p.Float("radius", 1)
	threshold := p.Float("threshold", 0)
	if amount == 0 || radius <= 0 {
		return nil
	}

	pix := c.Pix()
	blurred := make([]uint8, len(pix))
	copy(blurred, pix)
	boxBlur(blurred, c.Width(), c.Height(), radius)

	for i := 0; i+3 < len(pix); i += 4 {
		r, g, b, a := unpremul(pix[i], pix[i+1], pix[i+2], pix[i+3])
		br, bg, bb, _ := unpremul(blurred[i], blurred[i+1], blurred[i+2], blurred[i+3])
		sharp := func(o, bl float64) float64 {
			if math.Abs(o-bl) >= threshold {
				return o + (o-bl)*amount
			}
			return o
		}
		pix[i], pix[i+1], pix[i+2], pix[i+3] = premul(sharp(r, br), sharp(g, bg), sharp(b, bb), a)
	}
	return nil
}

func applyPixelate(_ context.Context, c *raster.Canvas, p recipe.Params, _ *recipe.Context) error {
	size := p.Float("size", 10)
	if size < 2 {
		return nil
	}
	w, h := c.Width(), c.Height()
	sw := max(1, int(math.Ceil(float64(w)/size)))
	sh := max(1, int(math.Ceil(float64(h)/size)))
	if err := c.Resize(sw, sh, false); err != nil {
		return err
	}
	return c.Resize(w, h, false)
}

func applyVignette(_ context.Context, c *raster.Canvas, p recipe.Params, _ *recipe.Context) error {
	amount := clamp(p.Float("amount", 50)/100, 0, 1)
	radius := clamp(p.Float("radius", 50)/100, 0, 1)
	w, h := float64(c.Width()), float64(c.Height())
	longest := math.Max(w, h)

	grad := gg.NewRadialGradientBrush(w/2, h/2, longest*radius*0.5, longest*0.8).
		AddColorStop(0, gg.RGBA{}).
		AddColorStop(1, gg.RGBA{A: amount}).
		SetExtend(gg.ExtendPad)

	dc := c.DC()
	dc.Push()
	defer dc.Pop()
	dc.SetFillBrush(grad)
	dc.DrawRectangle(0, 0, w, h)
	return dc.Fill()
}

func applyDuotone(_ context.Context, c *raster.Canvas, p recipe.Params, _ *recipe.Context) error {
	c1 := nrgba(p.Color("color1", color.NRGBA{B: 255, A: 255}))
	c2 := nrgba(p.Color("color2", color.NRGBA{R: 255, A: 255}))
	mapPixels(c, func(r, g, b, a float64) (float64, float64, float64, float64) {
		t := luma(r, g, b) / 255
		lerp := func(x, y uint8) float64 { return float64(x) + (float64(y)-float64(x))*t }
		return lerp(c1.R, c2.R), lerp(c1.G, c2.G), lerp(c1.B, c2.B), a
	})
	return nil
}

// applyAutoLevels stretches every color channel so that the darkest and
// brightest tolerance percent of pixels map to 0 and 255.
func applyAutoLevels(_ context.Context, c *raster.Canvas, p recipe.Params, _ *recipe.Context) error {
	tolerance := clamp(p.Float("tolerance", 0.5), 0, 50) / 100

	var hist [3][256]int
	total := 0
	pix := c.Pix()
	for i := 0; i+3 < len(pix); i += 4 {
		r, g, b, a := unpremul(pix[i], pix[i+1], pix[i+2], pix[i+3])
		if a == 0 {
			continue
		}
		hist[0][to8(r)]++
		hist[1][to8(g)]++
		hist[2][to8(b)]++
		total++
	}
	if total == 0 {
		return nil
	}

	cut := int(float64(total) * tolerance)
	var lo, hi [3]float64
	for ch := range hist {
		lo[ch], hi[ch] = levelBounds(&hist[ch], cut)
	}

	stretch := func(v float64, ch int) float64 {
		if hi[ch] <= lo[ch] {
			return v
		}
		return (v - lo[ch]) * 255 / (hi[ch] - lo[ch])
	}
	mapPixels(c, func(r, g, b, a float64) (float64, float64, float64, float64) {
		return stretch(r, 0), stretch(g, 1), stretch(b, 2), a
	})
	return nil
}

func levelBounds(h *[256]int, cut int) (lo, hi float64) {
	n := 0
	for i := 0; i < 256; i++ {
		n += h[i]
		if n > cut {
			lo = float64(i)
			break
		}
	}
	n = 0
	for i := 255; i >= 0; i-- {
		n += h[i]
		if n > cut {
			hi = float64(i)
			break
		}
	}
	return lo, hi
}
