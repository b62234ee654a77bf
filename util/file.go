package util

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/webp"
)

// SupportedExts 允许上传和作为预设背景的图片扩展名
var SupportedExts = []string{".png", ".jpg", ".jpeg", ".webp"}

// IsSupportedImage 按扩展名（忽略大小写）判断文件是否是支持的图片
func IsSupportedImage(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range SupportedExts {
		if ext == e {
			return true
		}
	}
	return false
}

var ErrTooManyPixels = errors.New("image has too many pixels")

// DecodeImage 解码 PNG / JPEG / WEBP 字节，返回图片和格式名
func DecodeImage(data []byte) (image.Image, string, error) {
	return DecodeImageLimit(data, 0)
}

// DecodeImageLimit 先只读图片头，宽 x 高超过 maxPixels 时不解码像素，返回 ErrTooManyPixels。
// maxPixels <= 0 表示不限制。
func DecodeImageLimit(data []byte, maxPixels int64) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", fmt.Errorf("empty image data")
	}

	if maxPixels > 0 {
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return nil, "", fmt.Errorf("decode image config: %w", err)
		}
		if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > maxPixels {
			return nil, "", fmt.Errorf("%w: %dx%d exceeds %d", ErrTooManyPixels, cfg.Width, cfg.Height, maxPixels)
		}
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	return img, format, nil
}

// OpenImage 打开本地图片
func OpenImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = file.Close()
	}()

	img, _, err := image.Decode(file)
	return img, err
}

// FileStem 去掉扩展名后的文件名，"photo.final.png" -> "photo.final"
func FileStem(name string) string {
	base := filepath.Base(name)
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}
