package rembg

import (
	"context"
	"image"
	"log/slog"
	"os"
	"sync"

	"github.com/chewxy/math32"
	"github.com/nfnt/resize"
	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"

	"github.com/chaos-io/bgswap/compose"
)

// ONNXConfig 本地 U2Net 类显著性分割模型的配置
type ONNXConfig struct {
	// ModelPath .onnx 模型文件
	ModelPath string
	// SharedLibraryPath onnxruntime 动态库，为空时使用系统默认路径
	SharedLibraryPath string
	InputName         string
	OutputName        string
	// InputSize 模型输入边长，u2net 为 320，isnet / birefnet 为 1024
	InputSize int
	Mean      [3]float32
	Std       [3]float32
}

// DefaultU2NetConfig rembg 使用的 u2net.onnx 参数
func DefaultU2NetConfig(modelPath string) ONNXConfig {
	return ONNXConfig{
		ModelPath:  modelPath,
		InputName:  "input.1",
		OutputName: "1959",
		InputSize:  320,
		Mean:       [3]float32{0.485, 0.456, 0.406},
		Std:        [3]float32{0.229, 0.224, 0.225},
	}
}

func (c ONNXConfig) validate() error {
	if c.ModelPath == "" {
		return errors.New("model path is empty")
	}
	if _, err := os.Stat(c.ModelPath); err != nil {
		return errors.Wrapf(err, "model file not found: %s", c.ModelPath)
	}
	if c.InputName == "" || c.OutputName == "" {
		return errors.New("input and output names are required")
	}
	if c.InputSize <= 0 {
		return errors.Errorf("invalid input size %d", c.InputSize)
	}
	for i, s := range c.Std {
		if s == 0 {
			return errors.Errorf("std[%d] is zero", i)
		}
	}
	return nil
}

// ONNXRemover 用 onnxruntime 在本地运行分割模型。
//
// 输入/输出张量在 session 创建时绑定，Remove 串行执行。
type ONNXRemover struct {
	cfg ONNXConfig

	mu      sync.Mutex
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
}

func NewONNXRemover(cfg ONNXConfig) (*ONNXRemover, error) {
	if err := cfg.validate(); err != nil {
		return nil, errors.Wrap(err, "invalid onnx config")
	}

	if !ort.IsInitialized() {
		if cfg.SharedLibraryPath != "" {
			ort.SetSharedLibraryPath(cfg.SharedLibraryPath)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, errors.Wrap(err, "initialize onnxruntime environment")
		}
	}

	size := int64(cfg.InputSize)
	input, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 3, size, size))
	if err != nil {
		return nil, errors.Wrap(err, "create input tensor")
	}
	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 1, size, size))
	if err != nil {
		_ = input.Destroy()
		return nil, errors.Wrap(err, "create output tensor")
	}

	session, err := ort.NewAdvancedSession(
		cfg.ModelPath,
		[]string{cfg.InputName},
		[]string{cfg.OutputName},
		[]ort.ArbitraryTensor{input},
		[]ort.ArbitraryTensor{output},
		nil,
	)
	if err != nil {
		_ = input.Destroy()
		_ = output.Destroy()
		return nil, errors.Wrap(err, "create onnx session")
	}

	slog.Info("onnx remover initialized", "model", cfg.ModelPath, "input_size", cfg.InputSize)

	return &ONNXRemover{
		cfg:     cfg,
		session: session,
		input:   input,
		output:  output,
	}, nil
}

func (r *ONNXRemover) Remove(ctx context.Context, img image.Image) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src := compose.ToNRGBA(img)
	if src.Rect.Empty() {
		return nil, errors.New("empty image")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.session == nil {
		return nil, errors.New("onnx remover is closed")
	}

	Preprocess(src, r.cfg, r.input.GetData())
	if err := r.session.Run(); err != nil {
		return nil, errors.Wrap(err, "run onnx session")
	}
	mask := PredictionMask(r.output.GetData(), r.cfg.InputSize, src.Rect.Size())

	return Matte{Image: ApplyMask(src, mask)}.Decode()
}

// Close 释放 session 和张量
func (r *ONNXRemover) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.session == nil {
		return nil
	}
	err := r.session.Destroy()
	_ = r.input.Destroy()
	_ = r.output.Destroy()
	r.session = nil
	return err
}

// Preprocess 缩放到 InputSize x InputSize（Lanczos3），按全图最大值归一化后做
// (x - mean) / std，以 CHW 顺序写入 dst
func Preprocess(src *image.NRGBA, cfg ONNXConfig, dst []float32) {
	size := cfg.InputSize
	resized := compose.ToNRGBA(resize.Resize(uint(size), uint(size), src, resize.Lanczos3))

	var maxVal float32
	for i := 0; i < len(resized.Pix); i += 4 {
		maxVal = math32.Max(maxVal, float32(resized.Pix[i]))
		maxVal = math32.Max(maxVal, float32(resized.Pix[i+1]))
		maxVal = math32.Max(maxVal, float32(resized.Pix[i+2]))
	}
	maxVal = math32.Max(maxVal, 1e-6)

	plane := size * size
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			p := resized.PixOffset(x, y)
			idx := y*size + x
			for c := 0; c < 3; c++ {
				v := float32(resized.Pix[p+c]) / maxVal
				dst[c*plane+idx] = (v - cfg.Mean[c]) / cfg.Std[c]
			}
		}
	}
}

// PredictionMask 对模型输出做 min-max 归一化得到灰度掩码，再 Lanczos3 缩放回原图尺寸
func PredictionMask(pred []float32, size int, target image.Point) *image.Gray {
	plane := pred[:size*size]

	lo, hi := math32.Inf(1), math32.Inf(-1)
	for _, v := range plane {
		lo = math32.Min(lo, v)
		hi = math32.Max(hi, v)
	}
	span := hi - lo

	mask := image.NewGray(image.Rect(0, 0, size, size))
	for i, v := range plane {
		if span <= 0 {
			break
		}
		mask.Pix[i] = uint8((v - lo) / span * 255)
	}

	if target == (image.Point{X: size, Y: size}) {
		return mask
	}
	scaled := resize.Resize(uint(target.X), uint(target.Y), mask, resize.Lanczos3)
	if g, ok := scaled.(*image.Gray); ok {
		return g
	}
	g := image.NewGray(scaled.Bounds())
	for y := 0; y < target.Y; y++ {
		for x := 0; x < target.X; x++ {
			g.Set(x, y, scaled.At(x, y))
		}
	}
	return g
}

// ApplyMask 以掩码作为 alpha，颜色保持不变；mask 与 src 尺寸相同
func ApplyMask(src *image.NRGBA, mask *image.Gray) *image.NRGBA {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			si := src.PixOffset(x+src.Rect.Min.X, y+src.Rect.Min.Y)
			di := out.PixOffset(x, y)
			copy(out.Pix[di:di+3], src.Pix[si:si+3])
			out.Pix[di+3] = mask.GrayAt(x+mask.Rect.Min.X, y+mask.Rect.Min.Y).Y
		}
	}
	return out
}
