package glyph

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/talgya/resonance/internal/vmath"
)

// Color is a resolved sRGB color with components in [0, 1].
type Color struct {
	R, G, B float64
}

// Neutral is the fallback for color specs that fail to parse. A bad
// color string mid-frame must degrade to this gray, never abort the
// frame.
var Neutral = Color{R: 0.61, G: 0.64, B: 0.69}

// ColorSpec is a color in the descriptor's wire form: either an
// "hsl(H, S%, L%)" triple as produced by the mapper, or a "#RGB" /
// "#RRGGBB" hex string as carried by older history records.
type ColorSpec string

// HSLSpec formats an HSL triple as a ColorSpec. Hue wraps at 360;
// saturation and lightness are clamped to [0, 100].
func HSLSpec(h, s, l float64) ColorSpec {
	h = vmath.Wrap(h, 360)
	s = vmath.Clamp(s, 0, 100)
	l = vmath.Clamp(l, 0, 100)
	return ColorSpec(fmt.Sprintf("hsl(%s, %s%%, %s%%)", trimFloat(h), trimFloat(s), trimFloat(l)))
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Resolve parses the spec into a Color. The second return is false
// when the spec is malformed, in which case Neutral is returned.
func (c ColorSpec) Resolve() (Color, bool) {
	s := strings.TrimSpace(string(c))
	switch {
	case strings.HasPrefix(s, "#"):
		return parseHexColor(s[1:])
	case strings.HasPrefix(s, "hsl(") && strings.HasSuffix(s, ")"):
		return parseHSLColor(strings.TrimSuffix(strings.TrimPrefix(s, "hsl("), ")"))
	}
	return Neutral, false
}

func parseHexColor(hex string) (Color, bool) {
	var step int
	switch len(hex) {
	case 3:
		step = 1
	case 6:
		step = 2
	default:
		return Neutral, false
	}
	var comp [3]float64
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseUint(hex[i*step:(i+1)*step], 16, 8)
		if err != nil {
			return Neutral, false
		}
		if step == 1 {
			v *= 17
		}
		comp[i] = float64(v) / 255
	}
	return Color{R: comp[0], G: comp[1], B: comp[2]}, true
}

func parseHSLColor(inner string) (Color, bool) {
	parts := strings.Split(inner, ",")
	if len(parts) != 3 {
		return Neutral, false
	}
	h, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Neutral, false
	}
	sat, ok := parsePercent(parts[1])
	if !ok {
		return Neutral, false
	}
	light, ok := parsePercent(parts[2])
	if !ok {
		return Neutral, false
	}
	return hslToRGB(vmath.Wrap(h, 360), vmath.Clamp(sat, 0, 1), vmath.Clamp(light, 0, 1)), true
}

func parsePercent(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasSuffix(s, "%") {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	if err != nil {
		return 0, false
	}
	return v / 100, true
}

// hslToRGB converts hue in degrees and saturation/lightness in [0, 1].
func hslToRGB(h, s, l float64) Color {
	if s == 0 {
		return Color{R: l, G: l, B: l}
	}
	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q
	hk := h / 360
	return Color{
		R: hueToRGB(p, q, hk+1.0/3),
		G: hueToRGB(p, q, hk),
		B: hueToRGB(p, q, hk-1.0/3),
	}
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6:
		return p + (q-p)*6*t
	case t < 1.0/2:
		return q
	case t < 2.0/3:
		return p + (q-p)*(2.0/3-t)*6
	}
	return p
}
