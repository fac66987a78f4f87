package recipe

import (
	"fmt"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// namedColors covers the color names the original effect scripts accept
// most often. Anything else must be given as hex or rgb(r,g,b).
var namedColors = map[string]string{
	"white":     "#ffffff",
	"black":     "#000000",
	"gray":      "#808080",
	"grey":      "#808080",
	"gray50":    "#7f7f7f",
	"red":       "#ff0000",
	"green":     "#008000",
	"lime":      "#00ff00",
	"blue":      "#0000ff",
	"yellow":    "#ffff00",
	"magenta":   "#ff00ff",
	"cyan":      "#00ffff",
	"orange":    "#ffa500",
	"purple":    "#800080",
	"brown":     "#a52a2a",
	"pink":      "#ffc0cb",
	"navy":      "#000080",
	"teal":      "#008080",
	"olive":     "#808000",
	"maroon":    "#800000",
	"silver":    "#c0c0c0",
	"gold":      "#ffd700",
	"coral":     "#ff7f50",
	"salmon":    "#fa8072",
	"khaki":     "#f0e68c",
	"indigo":    "#4b0082",
	"violet":    "#ee82ee",
	"beige":     "#f5f5dc",
	"tan":       "#d2b48c",
	"sienna":    "#a0522d",
	"chocolate": "#d2691e",
	"skyblue":   "#87ceeb",
	"sepia":     "#704214",
	"wheat":     "#f5deb3",
}

// ParseColor parses a color flag value: "#rgb"/"#rrggbb" hex, a known
// color name, or "rgb(r,g,b)" with 0..255 channels.
func ParseColor(s string) (colorful.Color, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return colorful.Color{}, fmt.Errorf("empty color")
	}
	if strings.HasPrefix(v, "#") {
		c, err := colorful.Hex(v)
		if err != nil {
			return colorful.Color{}, fmt.Errorf("invalid hex color %q", s)
		}
		return c, nil
	}
	if strings.HasPrefix(v, "rgb(") && strings.HasSuffix(v, ")") {
		var r, g, b int
		if _, err := fmt.Sscanf(v, "rgb(%d,%d,%d)", &r, &g, &b); err != nil {
			return colorful.Color{}, fmt.Errorf("invalid rgb() color %q", s)
		}
		if r < 0 || r > 255 || g < 0 || g > 255 || b < 0 || b > 255 {
			return colorful.Color{}, fmt.Errorf("rgb() channels out of range in %q", s)
		}
		return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}, nil
	}
	if hex, ok := namedColors[v]; ok {
		c, _ := colorful.Hex(hex)
		return c, nil
	}
	return colorful.Color{}, fmt.Errorf("unknown color %q (use hex, rgb(r,g,b), or a common color name)", s)
}

// MidtoneBetween returns the perceptual midpoint of two colors, used by
// recipes that derive a third tone from a shadow/highlight pair.
func MidtoneBetween(a, b colorful.Color) colorful.Color {
	return a.BlendLab(b, 0.5).Clamped()
}
