package rembg

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"mime/multipart"
	"strings"
	"time"

	nhttp "github.com/chaos-io/bgswap/util/http"
)

const (
	U2NetModel    = "u2net"
	BiRefNetModel = "birefnet-general"
	removePath    = "/api/remove"
)

// HTTPRemover 调用 rembg HTTP 服务（`rembg s`）抠图，返回 PNG 字节
type HTTPRemover struct {
	baseURL string
	model   string
	timeout time.Duration
	cli     nhttp.IClient
}

type HTTPOption func(*HTTPRemover)

func WithHTTPClient(cli nhttp.IClient) HTTPOption {
	return func(h *HTTPRemover) {
		h.cli = cli
	}
}

// WithRequestTimeout 单次请求超时，0 表示只受 ctx 控制
func WithRequestTimeout(d time.Duration) HTTPOption {
	return func(h *HTTPRemover) {
		h.timeout = d
	}
}

func NewHTTPRemover(baseURL, model string, opts ...HTTPOption) *HTTPRemover {
	if model == "" {
		model = U2NetModel
	}
	h := &HTTPRemover{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		cli:     nhttp.NewHTTPClient(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

/*
	curl -X POST "$BASE_URL/api/remove" \
	  -F "file=@my_image.png" \
	  -F "model=u2net" -o no_bg.png
*/
func (h *HTTPRemover) Remove(ctx context.Context, img image.Image) (image.Image, error) {
	body, contentType, err := h.formBody(img)
	if err != nil {
		return nil, err
	}

	var raw []byte
	reqParam := &nhttp.RequestParam{
		RequestURI: h.baseURL + removePath,
		Method:     "POST",
		Header:     map[string]string{"Content-Type": contentType},
		Body:       body,
		Response:   &raw,
		Timeout:    h.timeout,
	}
	if err := h.cli.DoHTTPRequest(ctx, reqParam); err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}

	slog.Debug("get the response", "model", h.model, "bytes", len(raw))

	return Matte{Data: raw}.Decode()
}

func (h *HTTPRemover) formBody(img image.Image) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "image.png")
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if err := png.Encode(part, img); err != nil {
		return nil, "", fmt.Errorf("encode form file: %w", err)
	}

	_ = writer.WriteField("model", h.model)
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close form: %w", err)
	}
	return body, writer.FormDataContentType(), nil
}
