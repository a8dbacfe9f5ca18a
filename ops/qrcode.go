package ops

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/recipe"
	"github.com/gogpu/recipe/raster"
)

var qrLevels = map[string]qrcode.RecoveryLevel{
	"L": qrcode.Low,
	"M": qrcode.Medium,
	"Q": qrcode.High,
	"H": qrcode.Highest,
}

const (
	// maxStampSize bounds the QR code side in pixels.
	maxStampSize = 8192
	// maxQuietZone bounds the margin in modules.
	maxQuietZone = 64
)

// applyQRCode stamps a QR code of size x size pixels centered on the
// (x%, y%) point of the canvas. margin is the quiet zone in modules.
func applyQRCode(_ context.Context, c *raster.Canvas, p recipe.Params, rc *recipe.Context) error {
	content := Resolve(p.String("text", "https://example.com"), rc)
	if content == "" {
		rc.Warn(recipe.WarnParam, "empty QR code content, nothing stamped")
		return nil
	}
	name := strings.ToUpper(p.String("errorCorrectionLevel", "M"))
	level, ok := qrLevels[name]
	if !ok {
		rc.Warn(recipe.WarnParam, "unknown error correction level %q, using M", name)
		level = qrcode.Medium
	}
	q, err := qrcode.New(content, level)
	if err != nil {
		return fmt.Errorf("ops: qr code: %w", err)
	}
	q.DisableBorder = true

	margin := min(max(0, p.Int("margin", 1)), maxQuietZone)
	modules := qrModules(q.Bitmap(), margin,
		p.Color("color", color.Black), p.Color("backgroundColor", color.White))

	size := px(clamp(p.Float("size", 150), 1, maxStampSize))
	w, h := float64(c.Width()), float64(c.Height())
	x0 := int(math.Round(p.Float("x", 90)/100*w - float64(size)/2))
	y0 := int(math.Round(p.Float("y", 90)/100*h - float64(size)/2))

	layer := image.NewRGBA(c.Bounds())
	xdraw.NearestNeighbor.Scale(layer, image.Rect(x0, y0, x0+size, y0+size), modules, modules.Rect, xdraw.Src, nil)
	composite(c, layer, 1)
	return nil
}

// qrModules renders one pixel per module, surrounded by margin modules of
// background.
func qrModules(bits [][]bool, margin int, fg, bg color.Color) *image.RGBA {
	n := len(bits) + 2*margin
	img := image.NewRGBA(image.Rect(0, 0, n, n))
	draw.Draw(img, img.Rect, image.NewUniform(bg), image.Point{}, draw.Src)
	for y, row := range bits {
		for x, dark := range row {
			if dark {
				img.Set(x+margin, y+margin, fg)
			}
		}
	}
	return img
}
