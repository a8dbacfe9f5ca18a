package ops

import (
	"image/color"
	"math"

	"github.com/gogpu/recipe/raster"
)

// pixelFunc maps straight RGBA channels in [0, 255].
type pixelFunc func(r, g, b, a float64) (float64, float64, float64, float64)

// mapPixels applies fn to every pixel of c, converting from and back to
// the premultiplied canvas layout. Fully transparent pixels are passed
// with zero color.
func mapPixels(c *raster.Canvas, fn pixelFunc) {
	pix := c.Pix()
	for i := 0; i+3 < len(pix); i += 4 {
		r, g, b, a := unpremul(pix[i], pix[i+1], pix[i+2], pix[i+3])
		r, g, b, a = fn(r, g, b, a)
		pix[i], pix[i+1], pix[i+2], pix[i+3] = premul(r, g, b, a)
	}
}

func unpremul(r, g, b, a uint8) (float64, float64, float64, float64) {
	if a == 0 {
		return 0, 0, 0, 0
	}
	if a == 255 {
		return float64(r), float64(g), float64(b), 255
	}
	k := 255 / float64(a)
	return float64(r) * k, float64(g) * k, float64(b) * k, float64(a)
}

func premul(r, g, b, a float64) (uint8, uint8, uint8, uint8) {
	a = clamp(a, 0, 255)
	k := a / 255
	return to8(clamp(r, 0, 255) * k), to8(clamp(g, 0, 255) * k), to8(clamp(b, 0, 255) * k), to8(a)
}

func to8(v float64) uint8 {
	return uint8(clamp(math.Round(v), 0, 255))
}

func clamp(v, lo, hi float64) float64 {
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	}
	return v
}

func luma(r, g, b float64) float64 {
	return 0.299*r + 0.587*g + 0.114*b
}

func nrgba(c color.Color) color.NRGBA {
	return color.NRGBAModel.Convert(c).(color.NRGBA)
}

// boxBlur blurs the premultiplied buffer with three box passes, which
// approximates a gaussian of the given radius.
func boxBlur(pix []uint8, w, h int, radius float64) {
	if radius <= 0 || w == 0 || h == 0 {
		return
	}
	boxes := gaussBoxes(radius, 3)
	tmp := make([]uint8, len(pix))
	for _, box := range boxes {
		r := (box - 1) / 2
		if r < 1 {
			continue
		}
		blurPass(pix, tmp, w, h, r, 4, w*4)
		blurPass(tmp, pix, h, w, r, w*4, 4)
	}
}

// blurPass runs a running-sum box filter along lines of n samples.
// step is the byte distance between samples and stride between lines.
func blurPass(src, dst []uint8, n, lines, r, step, stride int) {
	// Samples past the line ends are clamped, so a wider window only
	// repeats the edge values.
	r = min(r, n-1)
	div := float64(2*r + 1)
	for line := 0; line < lines; line++ {
		base := line * stride
		for ch := 0; ch < 4; ch++ {
			at := func(i int) float64 {
				if i < 0 {
					i = 0
				} else if i >= n {
					i = n - 1
				}
				return float64(src[base+i*step+ch])
			}
			var sum float64
			for i := -r; i <= r; i++ {
				sum += at(i)
			}
			for i := 0; i < n; i++ {
				dst[base+i*step+ch] = to8(sum / div)
				sum += at(i+r+1) - at(i-r)
			}
		}
	}
}

// gaussBoxes returns n box sizes whose successive application
// approximates a gaussian with standard deviation sigma.
func gaussBoxes(sigma float64, n int) []int {
	wIdeal := math.Sqrt(12*sigma*sigma/float64(n) + 1)
	wl := int(math.Floor(wIdeal))
	if wl%2 == 0 {
		wl--
	}
	wu := wl + 2
	mIdeal := (12*sigma*sigma - float64(n*wl*wl) - 4*float64(n*wl) - 3*float64(n)) / (-4*float64(wl) - 4)
	m := int(math.Round(mIdeal))
	sizes := make([]int, n)
	for i := range sizes {
		if i < m {
			sizes[i] = wl
		} else {
			sizes[i] = wu
		}
	}
	return sizes
}
