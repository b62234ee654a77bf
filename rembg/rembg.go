// Package rembg 封装外部的抠图（背景去除）模型。
//
// 不同后端可能返回解码好的图片，也可能返回编码后的字节，统一通过 Matte 归一成 image.Image。
package rembg

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/chaos-io/bgswap/util"
)

// Remover 输入 RGB 图片，返回带 alpha 通道的前景
type Remover interface {
	Remove(ctx context.Context, img image.Image) (image.Image, error)
}

var ErrEmptyMatte = errors.New("empty matte")

// Matte 抠图后端的原始输出：已解码的图片，或 PNG/JPEG/WEBP 字节
type Matte struct {
	Image image.Image
	Data  []byte
}

// Decode 返回抠图结果；字节无法解码时返回错误
func (m Matte) Decode() (image.Image, error) {
	if m.Image != nil {
		return m.Image, nil
	}
	if len(m.Data) == 0 {
		return nil, ErrEmptyMatte
	}
	img, _, err := util.DecodeImage(m.Data)
	if err != nil {
		return nil, fmt.Errorf("decode matte: %w", err)
	}
	return img, nil
}

// NopRemover 不做抠图，原样返回输入；用于本地调试和已经带透明通道的素材
type NopRemover struct{}

func NewNopRemover() *NopRemover {
	return &NopRemover{}
}

func (d *NopRemover) Remove(ctx context.Context, img image.Image) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Matte{Image: img}.Decode()
}

// RemoverFunc 把普通函数适配成 Remover
type RemoverFunc func(ctx context.Context, img image.Image) (image.Image, error)

func (f RemoverFunc) Remove(ctx context.Context, img image.Image) (image.Image, error) {
	return f(ctx, img)
}
