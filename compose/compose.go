// Package compose 把抠好的前景合成到新背景上。
package compose

import (
	"errors"
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"github.com/chaos-io/bgswap/background"
)

var ErrDimensionMismatch = errors.New("dimension mismatch")

// Composite 把 foreground 按自身 alpha 合成到 bg 上，输出尺寸始终等于 original。
//
//	None:            原样返回 foreground（保留透明）
//	SolidColor:      原图尺寸的纯色底
//	ImageBackground: 背景图 Lanczos3 拉伸到原图尺寸并去掉 alpha
//
// 合成顺序：白底 -> 背景（不透明覆盖）-> 前景（alpha 混合），结果为不透明 RGB。
// original 与 foreground 尺寸不一致时返回 ErrDimensionMismatch。
func Composite(original, foreground image.Image, bg Background) (image.Image, error) {
	if original == nil || foreground == nil {
		return nil, errors.New("composite: nil image")
	}

	size := original.Bounds().Size()
	if fgSize := foreground.Bounds().Size(); fgSize != size {
		return nil, fmt.Errorf("%w: original %dx%d, foreground %dx%d",
			ErrDimensionMismatch, size.X, size.Y, fgSize.X, fgSize.Y)
	}

	if bg.IsNone() {
		return foreground, nil
	}

	base := baseCanvas(bg, size)
	fg := ToNRGBA(foreground)

	rect := image.Rect(0, 0, size.X, size.Y)
	result := background.Fill(background.White, size.X, size.Y)
	draw.Draw(result, rect, base, image.Point{}, draw.Src)
	draw.Draw(result, rect, fg, image.Point{}, draw.Over)

	return result, nil
}

func baseCanvas(bg Background, size image.Point) *image.RGBA {
	if c, ok := bg.Color(); ok {
		return background.Fill(c, size.X, size.Y)
	}
	img, _ := bg.Image()
	return ToRGB(Stretch(img, size))
}
