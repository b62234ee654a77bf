package rembg

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreprocess(t *testing.T) {
	t.Parallel()

	cfg := DefaultU2NetConfig("u2net.onnx")
	cfg.InputSize = 4
	dst := make([]float32, 3*4*4)

	// 纯色输入缩放后不变，最大值为 200
	Preprocess(testImage(10, 6, color.NRGBA{R: 200, G: 100, B: 0, A: 255}), cfg, dst)

	plane := 16
	for i := 0; i < plane; i++ {
		assert.InDelta(t, (1.0-0.485)/0.229, dst[i], 1e-4)
		assert.InDelta(t, (0.5-0.456)/0.224, dst[plane+i], 1e-4)
		assert.InDelta(t, (0.0-0.406)/0.225, dst[2*plane+i], 1e-4)
	}
}

func TestPreprocess_BlackImage(t *testing.T) {
	t.Parallel()

	cfg := DefaultU2NetConfig("u2net.onnx")
	cfg.InputSize = 2
	dst := make([]float32, 3*2*2)
	Preprocess(testImage(2, 2, color.NRGBA{A: 255}), cfg, dst)
	for _, v := range dst[:4] {
		assert.InDelta(t, -0.485/0.229, v, 1e-4)
	}
}

func TestPredictionMask(t *testing.T) {
	t.Parallel()

	pred := []float32{
		-2, -2,
		2, 0,
	}
	mask := PredictionMask(pred, 2, image.Pt(2, 2))
	assert.Equal(t, []uint8{0, 0, 255, 127}, mask.Pix)

	flat := PredictionMask([]float32{0.3, 0.3, 0.3, 0.3}, 2, image.Pt(2, 2))
	assert.Equal(t, []uint8{0, 0, 0, 0}, flat.Pix)

	scaled := PredictionMask([]float32{1, 1, 1, 0}, 2, image.Pt(20, 10))
	assert.Equal(t, image.Rect(0, 0, 20, 10), scaled.Bounds())
	assert.Greater(t, scaled.GrayAt(0, 0).Y, scaled.GrayAt(19, 9).Y)
}

func TestApplyMask(t *testing.T) {
	t.Parallel()

	src := testImage(2, 1, color.NRGBA{R: 9, G: 8, B: 7, A: 255})
	mask := image.NewGray(image.Rect(0, 0, 2, 1))
	mask.Pix = []uint8{0, 200}

	out := ApplyMask(src, mask)
	assert.Equal(t, color.NRGBA{R: 9, G: 8, B: 7, A: 0}, out.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{R: 9, G: 8, B: 7, A: 200}, out.NRGBAAt(1, 0))
	assert.Equal(t, uint8(255), src.NRGBAAt(0, 0).A)
}

func TestNewONNXRemover_InvalidConfig(t *testing.T) {
	t.Parallel()

	_, err := NewONNXRemover(DefaultU2NetConfig(filepath.Join(t.TempDir(), "missing.onnx")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model file not found")

	_, err = NewONNXRemover(ONNXConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model path is empty")
}
