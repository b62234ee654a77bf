package compose

import (
	"image"

	"github.com/nfnt/resize"
	"golang.org/x/image/draw"
)

// ToNRGBA 转为原点在 (0,0) 的 NRGBA，原图没有 alpha 时视为完全不透明
func ToNRGBA(img image.Image) *image.NRGBA {
	if nrgba, ok := img.(*image.NRGBA); ok && nrgba.Rect.Min == (image.Point{}) {
		return nrgba
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// ToRGB 丢弃 alpha 得到不透明图。
//
// 与“铺到白底上”不同：半透明像素只保留其本身的颜色值。
func ToRGB(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) && rgba.Opaque() {
		return rgba
	}
	src := ToNRGBA(img)
	dst := image.NewRGBA(src.Rect)
	for i := 0; i < len(src.Pix); i += 4 {
		dst.Pix[i] = src.Pix[i]
		dst.Pix[i+1] = src.Pix[i+1]
		dst.Pix[i+2] = src.Pix[i+2]
		dst.Pix[i+3] = 0xff
	}
	return dst
}

// HasUsefulAlpha 检查 alpha 通道是否真的包含透明信息
// 只要存在非 255（非完全不透明），就认为“已有抠图”
func HasUsefulAlpha(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		return false
	}
	src := ToNRGBA(img)
	for i := 3; i < len(src.Pix); i += 4 {
		if src.Pix[i] != 255 {
			return true
		}
	}
	return false
}

// Stretch 用 Lanczos3 缩放到 size，不保持宽高比（拉伸，不裁剪不留边）
func Stretch(img image.Image, size image.Point) image.Image {
	if size.X <= 0 || size.Y <= 0 {
		return image.NewRGBA(image.Rectangle{})
	}
	if img.Bounds().Size() == size {
		return img
	}
	return resize.Resize(uint(size.X), uint(size.Y), img, resize.Lanczos3)
}
