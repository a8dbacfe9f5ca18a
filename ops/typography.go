package ops

import (
	"context"
	"image/color"

	"github.com/gogpu/recipe"
	"github.com/gogpu/recipe/internal/fonts"
	"github.com/gogpu/recipe/raster"
)

func typographyOps() []recipe.Operation {
	return []recipe.Operation{
		recipe.NewOperation(recipe.Descriptor{
			ID:          "creative-text-fill",
			Name:        "Image in Text",
			Description: "Fill text characters with the image content",
			Params: []recipe.ParamDef{
				textParam("text", "Text", "HELLO"),
				numberParam("fontSize", "Font Size (px)", 200),
				colorParam("backgroundColor", "Background Color", "#ffffff"),
				boolParam("autoFit", "Auto-Fit Text", true),
			},
		}, applyTextFill),
		recipe.NewOperation(recipe.Descriptor{
			ID:          "creative-text-cutout",
			Name:        "Text Cutout",
			Description: "Cut text out of the image",
			Params: []recipe.ParamDef{
				textParam("text", "Text", "MASK"),
				numberParam("fontSize", "Font Size (px)", 200),
				colorParam("fillColor", "Cutout Fill Color", "#ffffff"),
				boolParam("isTransparent", "Make Transparent", false),
				boolParam("autoFit", "Auto-Fit Text", true),
			},
		}, applyTextCutout),
	}
}

// fitWidth is the share of the canvas width auto-fitted text may take.
const fitWidth = 0.9

// textCoverage renders s in bold, centered on the canvas, and returns the
// glyph coverage of every pixel (0 outside the text, 255 inside).
func textCoverage(c *raster.Canvas, s string, p recipe.Params) ([]uint8, error) {
	w, h := float64(c.Width()), float64(c.Height())
	size := fontSize(p, 200, c)
	face, err := fonts.Face(fonts.Bold, size, "")
	if err != nil {
		return nil, err
	}
	if tw := face.Advance(s); p.Bool("autoFit", true) && tw > w*fitWidth {
		if face, err = fonts.Face(fonts.Bold, size*w*fitWidth/tw, ""); err != nil {
			return nil, err
		}
	}

	layer, err := raster.NewBlank(c.Width(), c.Height(), nil)
	if err != nil {
		return nil, err
	}
	dc := layer.DC()
	dc.SetFont(face)
	dc.SetColor(color.White)
	dc.DrawString(s, w/2-face.Advance(s)/2, baseline(face, h/2))

	pix := layer.Pix()
	cov := make([]uint8, len(pix)/4)
	for i := range cov {
		cov[i] = pix[4*i+3]
	}
	return cov, nil
}

// textParamOr returns the resolved text param, falling back to def when
// the param is missing or blank.
func textParamOr(p recipe.Params, def string, rc *recipe.Context) string {
	s := p.String("text", "")
	if s == "" {
		s = def
	}
	return Resolve(s, rc)
}

// applyTextFill keeps the image only inside the glyphs and puts the
// background color behind it.
func applyTextFill(_ context.Context, c *raster.Canvas, p recipe.Params, rc *recipe.Context) error {
	s := textParamOr(p, "HELLO", rc)
	cov, err := textCoverage(c, s, p)
	if err != nil {
		return err
	}
	under := premulColor(p.Color("backgroundColor", color.White))

	pix := c.Pix()
	for i, a := range cov {
		k := float64(a) / 255
		o := 4 * i
		// Source-over of the masked image onto the background.
		rest := 1 - float64(pix[o+3])*k/255
		for j := 0; j < 4; j++ {
			pix[o+j] = to8(float64(pix[o+j])*k + under[j]*rest)
		}
	}
	return nil
}

// applyTextCutout paints the glyphs in fillColor or, with isTransparent,
// erases the image under them.
func applyTextCutout(_ context.Context, c *raster.Canvas, p recipe.Params, rc *recipe.Context) error {
	s := textParamOr(p, "MASK", rc)
	cov, err := textCoverage(c, s, p)
	if err != nil {
		return err
	}
	erase := p.Bool("isTransparent", false)
	var over [4]float64
	if !erase {
		over = premulColor(p.Color("fillColor", color.White))
	}

	pix := c.Pix()
	for i, a := range cov {
		if a == 0 {
			continue
		}
		k := float64(a) / 255
		o := 4 * i
		rest := 1 - over[3]*k/255
		if erase {
			rest = 1 - k
		}
		for j := 0; j < 4; j++ {
			pix[o+j] = to8(over[j]*k + float64(pix[o+j])*rest)
		}
	}
	return nil
}

func premulColor(c color.Color) [4]float64 {
	n := nrgba(c)
	r, g, b, a := premul(float64(n.R), float64(n.G), float64(n.B), float64(n.A))
	return [4]float64{float64(r), float64(g), float64(b), float64(a)}
}
