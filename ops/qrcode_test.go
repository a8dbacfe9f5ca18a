package ops

import (
	"testing"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/gogpu/recipe"
)

func bitmap(t *testing.T, content string, level qrcode.RecoveryLevel) [][]bool {
	t.Helper()
	q, err := qrcode.New(content, level)
	if err != nil {
		t.Fatal(err)
	}
	q.DisableBorder = true
	return q.Bitmap()
}

func TestQRCodeStamp(t *testing.T) {
	// Two pixels per module and a one module margin.
	bits := bitmap(t, "photo.png", qrcode.Highest)
	n := len(bits)
	size := (n + 2) * 2
	x0 := 50 - size/2

	c := canvas(t, fill(100, 100, red))
	rc := apply(t, "creative-qrcode", c, recipe.Params{
		"text":                 "{{filename}}",
		"size":                 size,
		"x":                    50,
		"y":                    50,
		"margin":               1,
		"errorCorrectionLevel": "H",
	})
	if len(rc.Warnings) != 0 {
		t.Fatalf("warnings = %v", rc.Warnings)
	}

	if got := at(c, x0-1, x0-1); got != red {
		t.Errorf("pixel outside the stamp = %v, want red", got)
	}
	if got := at(c, x0, x0); got != white {
		t.Errorf("margin pixel = %v, want white", got)
	}
	for y, row := range bits {
		for x, dark := range row {
			want := white
			if dark {
				want = black
			}
			sx, sy := x0+2*(x+1), x0+2*(y+1)
			if got := at(c, sx, sy); got != want {
				t.Fatalf("module (%d,%d) at (%d,%d) = %v, want %v", x, y, sx, sy, got, want)
			}
		}
	}
}

func TestQRCodeColors(t *testing.T) {
	c := canvas(t, fill(100, 100, red))
	apply(t, "creative-qrcode", c, recipe.Params{
		"text":            "hi",
		"size":            84,
		"x":               50,
		"y":               50,
		"margin":          0,
		"color":           "#0000ff",
		"backgroundColor": "#000000",
	})
	// The top-left finder pattern starts at the stamp origin.
	if got := at(c, 8, 8); got != blue {
		t.Errorf("finder pixel = %v, want blue", got)
	}
	if got := at(c, 0, 0); got != red {
		t.Errorf("pixel outside the stamp = %v, want red", got)
	}
}

func TestQRCodeWarnings(t *testing.T) {
	tests := []struct {
		name string
		p    recipe.Params
	}{
		{"empty content", recipe.Params{"text": ""}},
		{"unknown level", recipe.Params{"errorCorrectionLevel": "X"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := canvas(t, fill(100, 100, red))
			rc := apply(t, "creative-qrcode", c, tt.p)
			if len(rc.Warnings) != 1 || rc.Warnings[0].Code != recipe.WarnParam {
				t.Errorf("warnings = %v, want one param warning", rc.Warnings)
			}
		})
	}
}

func TestQRCodeLowercaseLevel(t *testing.T) {
	c := canvas(t, fill(100, 100, red))
	rc := apply(t, "creative-qrcode", c, recipe.Params{"errorCorrectionLevel": "q"})
	if len(rc.Warnings) != 0 {
		t.Errorf("warnings = %v", rc.Warnings)
	}
}
