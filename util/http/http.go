package http

import (
	"context"
	"time"
)

type IClient interface {
	DoHTTPRequest(ctx context.Context, requestParam *RequestParam) error
}

// RequestParam 一次 HTTP 调用的参数
//
// Body 支持 io.Reader / []byte / string，原样发送。
// Response 非 nil 时写入原始响应体。
type RequestParam struct {
	RequestURI string
	Method     string
	Header     map[string]string
	Body       interface{}
	Response   *[]byte

	Timeout time.Duration
}
