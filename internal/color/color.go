package color

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var ErrInvalidColorValue = errors.New("invalid color value")

// RGB is a color with three 8-bit channels.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

var (
	White = RGB{R: 255, G: 255, B: 255}
	Black = RGB{}
)

const maxPacked = 0xFFFFFF

// NewRGB builds an RGB from integer channels, rejecting anything outside [0,255].
func NewRGB(r, g, b int) (RGB, error) {
	for _, channel := range []int{r, g, b} {
		if channel < 0 || channel > 255 {
			return RGB{}, fmt.Errorf("%w: channel %d outside [0,255]", ErrInvalidColorValue, channel)
		}
	}
	return RGB{R: uint8(r), G: uint8(g), B: uint8(b)}, nil
}

// Hex returns the lowercase "#rrggbb" representation.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Pack returns r<<16 | g<<8 | b.
func (c RGB) Pack() int {
	return int(c.R)<<16 | int(c.G)<<8 | int(c.B)
}

func (c RGB) String() string {
	return c.Hex()
}

func Unpack(n int) (RGB, error) {
	if n < 0 || n > maxPacked {
		return RGB{}, fmt.Errorf("%w: packed value %d outside [0,%d]", ErrInvalidColorValue, n, maxPacked)
	}
	return RGB{
		R: uint8(n >> 16 & 0xFF),
		G: uint8(n >> 8 & 0xFF),
		B: uint8(n & 0xFF),
	}, nil
}

func PackRGB(r, g, b int) (int, error) {
	c, err := NewRGB(r, g, b)
	if err != nil {
		return 0, err
	}
	return c.Pack(), nil
}

func RGBToHex(r, g, b int) (string, error) {
	c, err := NewRGB(r, g, b)
	if err != nil {
		return "", err
	}
	return c.Hex(), nil
}

// ParseHex accepts "#RRGGBB" or "RRGGBB" in any case.
func ParseHex(s string) (RGB, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return RGB{}, fmt.Errorf("%w: %q is not a 6-digit hex color", ErrInvalidColorValue, s)
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("%w: %q is not a 6-digit hex color", ErrInvalidColorValue, s)
	}
	return Unpack(int(n))
}

// NormalizeHue wraps h into [0,360).
func NormalizeHue(h float64) float64 {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	// -tiny + 360 rounds up to 360 in float64
	if h >= 360 {
		h = 0
	}
	return h
}

// HSVToRGB converts hue in degrees, saturation and value in percent to RGB.
// The hue is wrapped into [0,360); saturation and value outside [0,100] are
// rejected with ErrInvalidColorValue.
func HSVToRGB(h, s, v float64) (RGB, error) {
	if math.IsNaN(h) || math.IsInf(h, 0) {
		return RGB{}, fmt.Errorf("%w: hue %v", ErrInvalidColorValue, h)
	}
	if math.IsNaN(s) || s < 0 || s > 100 {
		return RGB{}, fmt.Errorf("%w: saturation %v outside [0,100]", ErrInvalidColorValue, s)
	}
	if math.IsNaN(v) || v < 0 || v > 100 {
		return RGB{}, fmt.Errorf("%w: value %v outside [0,100]", ErrInvalidColorValue, v)
	}

	h = NormalizeHue(h)
	s /= 100
	v /= 100

	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c

	var r, g, b float64
	switch int(math.Floor(h / 60)) {
	case 0:
		r, g, b = c, x, 0
	case 1:
		r, g, b = x, c, 0
	case 2:
		r, g, b = 0, c, x
	case 3:
		r, g, b = 0, x, c
	case 4:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	return RGB{
		R: toChannel(r + m),
		G: toChannel(g + m),
		B: toChannel(b + m),
	}, nil
}

func toChannel(f float64) uint8 {
	n := math.Round(f * 255)
	if n < 0 {
		return 0
	}
	if n > 255 {
		return 255
	}
	return uint8(n)
}
