package compose

import (
	"fmt"
	"image"

	"github.com/chaos-io/bgswap/background"
)

// Kind 背景替换方式
type Kind int

const (
	// KindNone 只去背景，保留透明
	KindNone Kind = iota
	// KindColor 纯色背景
	KindColor
	// KindImage 图片背景，会拉伸到原图尺寸
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindColor:
		return "color"
	case KindImage:
		return "image"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Background 每张图片唯一生效的背景选择，只能通过 None / SolidColor / ImageBackground 构造
type Background struct {
	kind  Kind
	color background.Color
	image image.Image
}

func None() Background {
	return Background{kind: KindNone}
}

func SolidColor(c background.Color) Background {
	return Background{kind: KindColor, color: c}
}

// ImageBackground img 为 nil 时等价于 None
func ImageBackground(img image.Image) Background {
	if img == nil {
		return None()
	}
	return Background{kind: KindImage, image: img}
}

func (b Background) Kind() Kind {
	return b.kind
}

func (b Background) Color() (background.Color, bool) {
	return b.color, b.kind == KindColor
}

func (b Background) Image() (image.Image, bool) {
	return b.image, b.kind == KindImage
}

func (b Background) IsNone() bool {
	return b.kind == KindNone
}

func (b Background) String() string {
	switch b.kind {
	case KindColor:
		return "color" + b.color.String()
	case KindImage:
		return fmt.Sprintf("image(%dx%d)", b.image.Bounds().Dx(), b.image.Bounds().Dy())
	default:
		return "none"
	}
}
