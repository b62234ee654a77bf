package background

import (
	"errors"
	"fmt"
	"image/color"
	"sort"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Color 不带透明度的 8 位 RGB 颜色
type Color struct {
	R, G, B uint8
}

var _ color.Color = Color{}

var ErrInvalidColor = errors.New("invalid color")

// RGBA 实现 color.Color，始终不透明
func (c Color) RGBA() (r, g, b, a uint32) {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}.RGBA()
}

func (c Color) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

func (c Color) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.R, c.G, c.B)
}

var (
	White  = Color{R: 255, G: 255, B: 255}
	Black  = Color{R: 0, G: 0, B: 0}
	Red    = Color{R: 255, G: 0, B: 0}
	Blue   = Color{R: 0, G: 0, B: 255}
	Green  = Color{R: 0, G: 255, B: 0}
	Yellow = Color{R: 255, G: 255, B: 0}
	Purple = Color{R: 128, G: 0, B: 128}
	Pink   = Color{R: 255, G: 192, B: 203}
)

var namedColors = map[string]Color{
	"white":  White,
	"black":  Black,
	"red":    Red,
	"blue":   Blue,
	"green":  Green,
	"yellow": Yellow,
	"purple": Purple,
	"pink":   Pink,
}

// ColorNames 可选的颜色名，按字母排序
func ColorNames() []string {
	names := make([]string, 0, len(namedColors))
	for name := range namedColors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseColor 解析颜色名（忽略大小写）或 "#RRGGBB" 形式的自定义颜色
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Color{}, fmt.Errorf("%w: empty", ErrInvalidColor)
	}
	if c, ok := namedColors[strings.ToLower(s)]; ok {
		return c, nil
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}

	hex, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("%w %q: %v", ErrInvalidColor, s, err)
	}
	r, g, b := hex.RGB255()
	return Color{R: r, G: g, B: b}, nil
}
