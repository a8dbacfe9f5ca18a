package recipe

import (
	"image/color"
	"testing"
)

func TestParamsFloat(t *testing.T) {
	p := Params{"f": 1.5, "i": 3, "s": " 2.25 ", "b": true, "bad": "abc", "empty": "", "zero": 0}
	tests := []struct {
		name string
		want float64
	}{
		{"f", 1.5},
		{"i", 3},
		{"s", 2.25},
		{"b", 1},
		{"bad", -1},
		{"empty", -1},
		{"zero", 0},
		{"missing", -1},
	}
	for _, tt := range tests {
		if got := p.Float(tt.name, -1); got != tt.want {
			t.Errorf("Float(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
	if got := p.Int("f", 0); got != 2 {
		t.Errorf("Int(f) = %d, want 2", got)
	}
}

func TestParamsString(t *testing.T) {
	p := Params{"s": "x", "n": 12.5, "nil": nil, "empty": ""}
	if got := p.String("s", "d"); got != "x" {
		t.Errorf("String(s) = %q", got)
	}
	if got := p.String("n", "d"); got != "12.5" {
		t.Errorf("String(n) = %q, want 12.5", got)
	}
	if got := p.String("nil", "d"); got != "d" {
		t.Errorf("String(nil) = %q, want d", got)
	}
	if got := p.String("empty", "d"); got != "" {
		t.Errorf("String(empty) = %q, want empty", got)
	}
}

func TestParamsBool(t *testing.T) {
	p := Params{"t": true, "s": "false", "n": 1, "junk": "maybe"}
	if !p.Bool("t", false) || p.Bool("s", true) || !p.Bool("n", false) {
		t.Error("Bool coercion mismatch")
	}
	if !p.Bool("junk", true) || p.Bool("missing", false) {
		t.Error("Bool default mismatch")
	}
}

func TestParamsLength(t *testing.T) {
	p := Params{"pct": "50%", "px": "120px", "num": 80, "plain": "64", "bad": "wide"}
	tests := []struct {
		name string
		want float64
	}{
		{"pct", 200},
		{"px", 120},
		{"num", 80},
		{"plain", 64},
		{"bad", 7},
		{"missing", 7},
	}
	for _, tt := range tests {
		if got := p.Length(tt.name, 400, 7); got != tt.want {
			t.Errorf("Length(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.NRGBA
		ok   bool
	}{
		{"#ff0000", color.NRGBA{255, 0, 0, 255}, true},
		{"#0f0", color.NRGBA{0, 255, 0, 255}, true},
		{"#00000080", color.NRGBA{0, 0, 0, 128}, true},
		{"White", color.NRGBA{255, 255, 255, 255}, true},
		{"rgb(10, 20, 30)", color.NRGBA{10, 20, 30, 255}, true},
		{"rgba(0,0,0,0.5)", color.NRGBA{0, 0, 0, 128}, true},
		{"#zzz", color.NRGBA{}, false},
		{"#12345", color.NRGBA{}, false},
		{"chartreuse-ish", color.NRGBA{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseColor(tt.in)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("ParseColor(%q) = %v, %v, want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}

	p := Params{"c": "not a color"}
	if got := p.Color("c", color.White); got != color.White {
		t.Errorf("Color(invalid) = %v, want default", got)
	}
}
