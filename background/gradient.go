// Package background 生成和管理替换用的背景：纯色、渐变、圆点图案以及预设目录里的图片。
package background

import "image"

// MakeGradient 生成从上到下的竖直渐变。
//
// 第 y 行的颜色为 top*(1-t) + bottom*t，t = y/height，每个通道截断取整。
// height 为 1 时只有 top 色；尺寸非正时返回空图。
func MakeGradient(top, bottom Color, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, max(width, 0), max(height, 0)))
	if width <= 0 || height <= 0 {
		return img
	}

	for y := 0; y < height; y++ {
		t := float64(y) / float64(height)
		c := top.lerp(bottom, t)
		row := img.Pix[y*img.Stride : y*img.Stride+width*4]
		for i := 0; i < len(row); i += 4 {
			row[i] = c.R
			row[i+1] = c.G
			row[i+2] = c.B
			row[i+3] = 0xff
		}
	}
	return img
}

// Fill 生成单色图
func Fill(c Color, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, max(width, 0), max(height, 0)))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = 0xff
	}
	return img
}

func (c Color) lerp(to Color, t float64) Color {
	mix := func(a, b uint8) uint8 {
		return uint8(float64(a)*(1-t) + float64(b)*t)
	}
	return Color{R: mix(c.R, to.R), G: mix(c.G, to.G), B: mix(c.B, to.B)}
}
