// Package pipeline 逐张处理上传的图片：解码 -> 抠图 -> 合成 -> 编码。
//
// 每张图片互相独立，一张失败只记录错误，其余照常处理。
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/chaos-io/bgswap/compose"
	"github.com/chaos-io/bgswap/rembg"
	"github.com/chaos-io/bgswap/util"
)

// Output 一张图片的最终结果，只在一次请求内有效
type Output struct {
	Image    image.Image
	Format   Format
	Filename string
	MIMEType string
	Data     []byte
}

// Result 第 Index 张图片的处理结果，Output 与 Err 只有一个非空
type Result struct {
	Index    int
	Name     string
	Output   *Output
	Err      error
	Duration time.Duration
}

func (r Result) OK() bool {
	return r.Err == nil
}

// DefaultMaxPixels 单张图片允许的最大像素数，约 1.79 亿，超过时按解码错误处理
const DefaultMaxPixels = 178956970

type Processor struct {
	remover    rembg.Remover
	timeout    time.Duration
	maxPixels  int64
	workers    int
	reuseAlpha bool
	observers  []func(Result)
}

type Option func(*Processor)

// WithSegmentTimeout 单张图片抠图的超时，0 表示不限制
func WithSegmentTimeout(d time.Duration) Option {
	return func(p *Processor) {
		p.timeout = d
	}
}

// WithWorkers 同时处理的图片数，默认 1（按顺序逐张处理）
func WithWorkers(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithMaxPixels 解码前按图片头检查宽 x 高，0 表示不限制
func WithMaxPixels(n int64) Option {
	return func(p *Processor) {
		if n >= 0 {
			p.maxPixels = n
		}
	}
}

// WithReuseAlpha 上传图片已经带有透明信息时跳过抠图，直接作为前景
func WithReuseAlpha(reuse bool) Option {
	return func(p *Processor) {
		p.reuseAlpha = reuse
	}
}

// WithObserver 每张图片处理完成后回调，可能被并发调用
func WithObserver(fn func(Result)) Option {
	return func(p *Processor) {
		if fn != nil {
			p.observers = append(p.observers, fn)
		}
	}
}

func NewProcessor(remover rembg.Remover, opts ...Option) *Processor {
	p := &Processor{
		remover:   remover,
		workers:   1,
		maxPixels: DefaultMaxPixels,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process 处理请求中的所有图片，结果顺序与上传顺序一致
func (p *Processor) Process(ctx context.Context, req Request) []Result {
	uploads := req.Uploads()
	results := make([]Result, len(uploads))

	var g errgroup.Group
	g.SetLimit(p.workers)
	for i, up := range uploads {
		i, up := i, up
		g.Go(func() error {
			results[i] = p.processOne(ctx, req, i, up)
			for _, fn := range p.observers {
				fn(results[i])
			}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (p *Processor) processOne(ctx context.Context, req Request, index int, up Upload) Result {
	start := time.Now()
	res := Result{Index: index, Name: up.Name}

	out, err := p.run(ctx, req, index, up)
	res.Duration = time.Since(start)
	if err != nil {
		res.Err = err
		slog.Warn("failed to process image", "index", index+1, "name", up.Name, "error", err)
		return res
	}

	res.Output = out
	slog.Info("processed image", "index", index+1, "name", up.Name, "filename", out.Filename,
		"bytes", len(out.Data), "elapsed", res.Duration)
	return res
}

func (p *Processor) run(ctx context.Context, req Request, index int, up Upload) (*Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, newImageError(index, up.Name, ErrCanceled, err)
	}

	img, _, err := util.DecodeImageLimit(up.Data, p.maxPixels)
	if err != nil {
		return nil, newImageError(index, up.Name, ErrDecode, err)
	}

	original := compose.ToRGB(img)

	var fg image.Image
	if p.reuseAlpha && compose.HasUsefulAlpha(img) {
		slog.Debug("reuse existing alpha", "index", index+1, "name", up.Name)
		fg = compose.ToNRGBA(img)
	} else {
		fg, err = p.segment(ctx, original)
		if err != nil {
			return nil, newImageError(index, up.Name, ErrSegmentation, err)
		}
	}

	final, err := compose.Composite(original, fg, req.Background())
	if err != nil {
		kind := ErrComposite
		if errors.Is(err, compose.ErrDimensionMismatch) {
			kind = compose.ErrDimensionMismatch
		}
		return nil, newImageError(index, up.Name, kind, err)
	}

	format := FormatFor(req.Option())
	data, err := Encode(final, format)
	if err != nil {
		return nil, newImageError(index, up.Name, ErrEncode, err)
	}

	return &Output{
		Image:    final,
		Format:   format,
		Filename: Filename(req.Option(), up.Name),
		MIMEType: format.MIMEType(),
		Data:     data,
	}, nil
}

// segment 调用一次外部抠图，不重试
func (p *Processor) segment(ctx context.Context, img image.Image) (image.Image, error) {
	if p.remover == nil {
		return nil, errors.New("no background remover configured")
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	defer util.Trace("segment image")()

	fg, err := p.remover.Remove(ctx, img)
	if err != nil {
		return nil, err
	}
	if fg == nil {
		return nil, fmt.Errorf("remover returned no image")
	}
	return fg, nil
}
