package pipeline

import (
	"errors"
	"fmt"
)

// 单张图片的错误类型，通过 errors.Is 判断
var (
	ErrDecode       = errors.New("decode error")
	ErrSegmentation = errors.New("segmentation error")
	ErrComposite    = errors.New("composite error")
	ErrEncode       = errors.New("encode error")
	ErrCanceled     = errors.New("canceled")
)

// 请求级别的校验错误，任何图片处理之前返回
var (
	ErrNoImages      = errors.New("no images uploaded")
	ErrNoBackground  = errors.New("no background selected")
	ErrUnknownOption = errors.New("unknown background option")
)

// ImageError 某一张图片处理失败，不影响其他图片
type ImageError struct {
	// Index 从 0 开始，消息中显示为从 1 开始
	Index int
	Name  string
	Kind  error
	Err   error
}

func (e *ImageError) Error() string {
	return fmt.Sprintf("image %d (%s): %v: %v", e.Index+1, e.Name, e.Kind, e.Err)
}

func (e *ImageError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func newImageError(index int, name string, kind, err error) *ImageError {
	return &ImageError{Index: index, Name: name, Kind: kind, Err: err}
}
