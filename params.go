package recipe

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
)

// Params is the untyped parameter bag of a step. Values come straight from
// the recipe document, so numbers may arrive as float64, int or numeric
// strings. The accessors never fail: a missing or malformed value yields
// the supplied default.
type Params map[string]any

// Has reports whether name is present with a non-nil value.
func (p Params) Has(name string) bool {
	v, ok := p[name]
	return ok && v != nil
}

// Float returns name as a float64.
func (p Params) Float(name string, def float64) float64 {
	if f, ok := toFloat(p[name]); ok {
		return f
	}
	return def
}

// Int returns name rounded to the nearest int.
func (p Params) Int(name string, def int) int {
	if f, ok := toFloat(p[name]); ok {
		return int(math.Round(f))
	}
	return def
}

// String returns name as a string. Scalars are formatted; a missing or nil
// value yields def.
func (p Params) String(name, def string) string {
	v, ok := p[name]
	if !ok || v == nil {
		return def
	}
	return toString(v)
}

// Bool returns name as a bool. Accepts booleans, "true"/"false" and
// numbers (non-zero is true).
func (p Params) Bool(name string, def bool) bool {
	switch v := p[name].(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	default:
		if f, ok := toFloat(v); ok {
			return f != 0
		}
	}
	return def
}

// Color returns name parsed as a CSS-style color: "#rgb", "#rrggbb",
// "#rrggbbaa", "rgb(r,g,b)", "rgba(r,g,b,a)" or a basic color name.
func (p Params) Color(name string, def color.Color) color.Color {
	switch v := p[name].(type) {
	case color.Color:
		return v
	case string:
		if c, ok := ParseColor(v); ok {
			return c
		}
	}
	return def
}

// Length returns name as a pixel length. Percentages ("50%") are resolved
// against ref; "px" suffixes are ignored.
func (p Params) Length(name string, ref, def float64) float64 {
	s, ok := p[name].(string)
	if !ok {
		return p.Float(name, def)
	}
	s = strings.TrimSpace(s)
	if pct, found := strings.CutSuffix(s, "%"); found {
		if f, err := strconv.ParseFloat(strings.TrimSpace(pct), 64); err == nil {
			return ref * f / 100
		}
		return def
	}
	s = strings.TrimSuffix(s, "px")
	if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
		return f
	}
	return def
}

var namedColors = map[string]color.NRGBA{
	"black":       {0, 0, 0, 255},
	"white":       {255, 255, 255, 255},
	"red":         {255, 0, 0, 255},
	"green":       {0, 128, 0, 255},
	"blue":        {0, 0, 255, 255},
	"yellow":      {255, 255, 0, 255},
	"gray":        {128, 128, 128, 255},
	"grey":        {128, 128, 128, 255},
	"orange":      {255, 165, 0, 255},
	"transparent": {0, 0, 0, 0},
}

// ParseColor parses the color syntaxes accepted by [Params.Color].
func ParseColor(s string) (color.NRGBA, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[s]; ok {
		return c, true
	}
	if hex, ok := strings.CutPrefix(s, "#"); ok {
		return parseHexColor(hex)
	}

	var args string
	switch {
	case strings.HasPrefix(s, "rgba(") && strings.HasSuffix(s, ")"):
		args = s[5 : len(s)-1]
	case strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")"):
		args = s[4 : len(s)-1]
	default:
		return color.NRGBA{}, false
	}
	parts := strings.Split(args, ",")
	if len(parts) != 3 && len(parts) != 4 {
		return color.NRGBA{}, false
	}
	var v [4]float64
	v[3] = 1
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return color.NRGBA{}, false
		}
		v[i] = f
	}
	return color.NRGBA{
		R: clampByte(v[0]),
		G: clampByte(v[1]),
		B: clampByte(v[2]),
		A: clampByte(v[3] * 255),
	}, true
}

// parseHexColor parses "rgb", "rgba", "rrggbb" or "rrggbbaa".
func parseHexColor(hex string) (color.NRGBA, bool) {
	switch len(hex) {
	case 3, 4:
		var long []byte
		for i := 0; i < len(hex); i++ {
			long = append(long, hex[i], hex[i])
		}
		hex = string(long)
	case 6, 8:
	default:
		return color.NRGBA{}, false
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, false
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, true
}

func clampByte(f float64) uint8 {
	return uint8(math.Max(0, math.Min(255, math.Round(f))))
}

// toFloat coerces numbers, numeric strings and booleans.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case uint32:
		return float64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil || strings.TrimSpace(n) == "" {
			return 0, false
		}
		return f, true
	case fmt.Stringer:
		return toFloat(n.String())
	}
	return 0, false
}

func toString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(s), 'f', -1, 32)
	}
	return fmt.Sprint(v)
}
