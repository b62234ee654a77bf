package pipeline

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaos-io/bgswap/background"
	"github.com/chaos-io/bgswap/compose"
)

func TestFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		option BackgroundOption
		name   string
		want   string
	}{
		{OptionRemoveOnly, "cat.png", "no_bg_cat.png"},
		{OptionRemoveOnly, "my.holiday.photo.webp", "no_bg_my.holiday.photo.png"},
		{OptionSolidColor, "cat.PNG", "solid_color_cat.jpg"},
		{OptionPreset, "dir/sub/dog.jpeg", "preset_backgrounds_dog.jpg"},
		{OptionCustom, "noext", "custom_background_noext.jpg"},
	}

	for _, tt := range tests {
		tt := tt
		assert.Equal(t, tt.want, Filename(tt.option, tt.name))
	}
}

func TestFormat(t *testing.T) {
	t.Parallel()

	assert.Equal(t, FormatPNG, FormatFor(OptionRemoveOnly))
	assert.Equal(t, FormatJPEG, FormatFor(OptionCustom))
	assert.Equal(t, "image/png", FormatPNG.MIMEType())
	assert.Equal(t, "image/jpeg", FormatJPEG.MIMEType())
	assert.Equal(t, "jpg", FormatJPEG.Ext())
}

func composited(t *testing.T) image.Image {
	t.Helper()
	original := background.Fill(background.Black, 64, 48)
	fg := image.NewNRGBA(original.Rect)
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			fg.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 4), G: uint8(y * 5), B: 90, A: uint8(x * y % 256)})
		}
	}
	img, err := compose.Composite(original, fg, compose.ImageBackground(background.MakePattern(30, 30)))
	require.NoError(t, err)
	return img
}

func TestEncode_PNGRoundTripIsLossless(t *testing.T) {
	t.Parallel()

	img := composited(t)
	data, err := Encode(img, FormatPNG)
	require.NoError(t, err)

	decoded, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, img.Bounds(), decoded.Bounds())

	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			want := color.RGBAModel.Convert(img.At(x, y))
			got := color.RGBAModel.Convert(decoded.At(x, y))
			require.Equal(t, want, got, "pixel (%d,%d)", x, y)
		}
	}
}

func TestEncode_JPEGRoundTripDecodes(t *testing.T) {
	t.Parallel()

	img := composited(t)
	data, err := Encode(img, FormatJPEG)
	require.NoError(t, err)

	decoded, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, img.Bounds().Size(), decoded.Bounds().Size())
}

func TestEncode_UnsupportedFormat(t *testing.T) {
	t.Parallel()

	_, err := Encode(background.Fill(background.Red, 1, 1), Format("gif"))
	assert.Error(t, err)
}
