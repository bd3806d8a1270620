package settings

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Theme is the explicit color configuration object passed down to consumers,
// replacing ad-hoc global style mutation. Each color is a #rrggbb hex triple.
type Theme struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Accent    string `json:"accent"`
}

// DefaultTheme mirrors the stock palette shipped with the product.
func DefaultTheme() Theme {
	return Theme{
		Primary:   "#10b981",
		Secondary: "#06b6d4",
		Accent:    "#f59e0b",
	}
}

// RGB is a decomposed color channel triple.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Shades are the derived variants for one color: translucent tints for
// backgrounds, the base tone, and two darkened tones for hover/active states.
type Shades struct {
	RGB      RGB    `json:"rgb"`
	Tint50   string `json:"tint_50"`  // 5% alpha
	Tint100  string `json:"tint_100"` // 10% alpha
	Tint200  string `json:"tint_200"` // 20% alpha
	Base     string `json:"base"`
	Dark600  string `json:"dark_600"` // channels scaled by 0.9
	Dark700  string `json:"dark_700"` // channels scaled by 0.8
}

// Palette is the full derived theme handed to front ends.
type Palette struct {
	Primary   Shades `json:"primary"`
	Secondary Shades `json:"secondary"`
	Accent    Shades `json:"accent"`
}

// Derive maps a color triple to its shade variants. It is a pure function:
// same theme in, same palette out, no side effects.
func Derive(t Theme) (Palette, error) {
	var p Palette
	var err error
	if p.Primary, err = deriveShades(t.Primary); err != nil {
		return Palette{}, errors.Wrap(err, "primary color")
	}
	if p.Secondary, err = deriveShades(t.Secondary); err != nil {
		return Palette{}, errors.Wrap(err, "secondary color")
	}
	if p.Accent, err = deriveShades(t.Accent); err != nil {
		return Palette{}, errors.Wrap(err, "accent color")
	}
	return p, nil
}

func deriveShades(hex string) (Shades, error) {
	rgb, err := parseHex(hex)
	if err != nil {
		return Shades{}, err
	}
	return Shades{
		RGB:     rgb,
		Tint50:  rgba(rgb, 0.05),
		Tint100: rgba(rgb, 0.1),
		Tint200: rgba(rgb, 0.2),
		Base:    strings.ToLower(normalizeHex(hex)),
		Dark600: hexScaled(rgb, 0.9),
		Dark700: hexScaled(rgb, 0.8),
	}, nil
}

func normalizeHex(s string) string {
	if !strings.HasPrefix(s, "#") {
		return "#" + s
	}
	return s
}

func parseHex(s string) (RGB, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) != 6 {
		return RGB{}, errors.Errorf("invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return RGB{}, errors.Errorf("invalid hex color %q", s)
	}
	return RGB{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
	}, nil
}

func rgba(c RGB, alpha float64) string {
	return fmt.Sprintf("rgba(%d, %d, %d, %.2f)", c.R, c.G, c.B, alpha)
}

func hexScaled(c RGB, factor float64) string {
	scale := func(ch uint8) int {
		v := int(float64(ch)*factor + 0.5)
		if v > 255 {
			v = 255
		}
		return v
	}
	return fmt.Sprintf("#%02x%02x%02x", scale(c.R), scale(c.G), scale(c.B))
}
