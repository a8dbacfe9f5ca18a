package ops

import (
	"testing"

	"github.com/gogpu/recipe"
)

// extent returns the first and last column holding any coverage.
func extent(cov []uint8, w int) (lo, hi int) {
	lo, hi = w, -1
	for i, a := range cov {
		if a == 0 {
			continue
		}
		lo, hi = min(lo, i%w), max(hi, i%w)
	}
	return lo, hi
}

func TestTextCoverageAutoFit(t *testing.T) {
	c := canvas(t, fill(200, 100, red))
	fitted, err := textCoverage(c, "HELLO", recipe.Params{"fontSize": 200})
	if err != nil {
		t.Fatal(err)
	}
	lo, hi := extent(fitted, 200)
	if hi < 0 {
		t.Fatal("no text coverage")
	}
	if lo < 8 || hi > 191 {
		t.Errorf("fitted extent = %d..%d, want within 10..190", lo, hi)
	}

	wide, err := textCoverage(c, "HELLO", recipe.Params{"fontSize": 200, "autoFit": false})
	if err != nil {
		t.Fatal(err)
	}
	wlo, whi := extent(wide, 200)
	if whi-wlo <= hi-lo {
		t.Errorf("unfitted extent %d..%d is not wider than fitted %d..%d", wlo, whi, lo, hi)
	}
}

func TestTextFill(t *testing.T) {
	c := canvas(t, fill(200, 100, red))
	apply(t, "creative-text-fill", c, nil)

	if got := at(c, 0, 0); got != white {
		t.Errorf("corner = %v, want background white", got)
	}
	var inside int
	img := c.RGBA()
	for y := 0; y < 100; y++ {
		for x := 0; x < 200; x++ {
			p := img.RGBAAt(x, y)
			if p.R != 255 || p.G != p.B || p.A != 255 {
				t.Fatalf("pixel (%d,%d) = %v, want a red/white mix", x, y, p)
			}
			if p == red {
				inside++
			}
		}
	}
	if inside == 0 {
		t.Error("no image pixels kept inside the text")
	}
}

func TestTextFillBlankTextUsesDefault(t *testing.T) {
	c := canvas(t, fill(200, 100, red))
	apply(t, "creative-text-fill", c, recipe.Params{"text": "", "backgroundColor": "#0000ff"})
	var kept int
	img := c.RGBA()
	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i] == 255 {
			kept++
		}
	}
	if kept == 0 {
		t.Error("blank text removed the whole image")
	}
}

func TestTextCutout(t *testing.T) {
	tests := []struct {
		name  string
		p     recipe.Params
		match func(p [4]uint8) bool
	}{
		{"fill color", recipe.Params{"fillColor": "#0000ff"}, func(p [4]uint8) bool {
			return p == [4]uint8{0, 0, 255, 255}
		}},
		{"transparent", recipe.Params{"isTransparent": true}, func(p [4]uint8) bool {
			return p[3] == 0
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := canvas(t, fill(200, 100, red))
			apply(t, "creative-text-cutout", c, tt.p)
			if got := at(c, 0, 0); got != red {
				t.Errorf("corner = %v, want red", got)
			}
			var hits int
			pix := c.Pix()
			for i := 0; i < len(pix); i += 4 {
				if tt.match([4]uint8{pix[i], pix[i+1], pix[i+2], pix[i+3]}) {
					hits++
				}
			}
			if hits == 0 {
				t.Error("no pixels changed under the text")
			}
		})
	}
}
