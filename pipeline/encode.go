package pipeline

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"github.com/chaos-io/bgswap/util"
)

type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
)

const JPEGQuality = 95

func (f Format) Ext() string {
	if f == FormatJPEG {
		return "jpg"
	}
	return "png"
}

func (f Format) MIMEType() string {
	if f == FormatJPEG {
		return "image/jpeg"
	}
	return "image/png"
}

// FormatFor 只去背景输出 PNG 保留透明，替换背景后输出 JPEG
func FormatFor(option BackgroundOption) Format {
	if option.RemoveOnly() {
		return FormatPNG
	}
	return FormatJPEG
}

// Filename 例如 no_bg_cat.png、solid_color_cat.jpg
func Filename(option BackgroundOption, uploadName string) string {
	return fmt.Sprintf("%s_%s.%s", option.FilePrefix(), util.FileStem(uploadName), FormatFor(option).Ext())
}

// Encode PNG 无损；JPEG 质量固定 95
func Encode(img image.Image, format Format) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case FormatPNG:
		err = png.Encode(&buf, img)
	case FormatJPEG:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality})
	default:
		err = fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
