package server

import (
	"bytes"
	"errors"
	"fmt"
	"image/jpeg"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"

	"github.com/chaos-io/bgswap/background"
	"github.com/chaos-io/bgswap/compose"
	"github.com/chaos-io/bgswap/pipeline"
	"github.com/chaos-io/bgswap/util"
)

const (
	previewWidth   = 200
	previewQuality = 85

	defaultColor = "White"
)

type backgroundsResponse struct {
	Presets []string `json:"presets"`
	Colors  []string `json:"colors"`
	Options []string `json:"options"`
}

type processResponse struct {
	RequestID string       `json:"request_id"`
	Results   []resultView `json:"results"`
}

// resultView index 从 1 开始，与错误信息一致
type resultView struct {
	Index    int    `json:"index"`
	Name     string `json:"name"`
	Filename string `json:"filename,omitempty"`
	MIMEType string `json:"mime_type,omitempty"`
	Data     []byte `json:"data,omitempty"`
	Error    string `json:"error,omitempty"`
}

type errorResponse struct {
	RequestID string `json:"request_id"`
	Error     string `json:"error"`
}

func (s *Server) listBackgrounds(c *gin.Context) {
	options := []string{
		string(pipeline.OptionRemoveOnly),
		string(pipeline.OptionSolidColor),
		string(pipeline.OptionPreset),
		string(pipeline.OptionCustom),
	}
	c.JSON(http.StatusOK, backgroundsResponse{
		Presets: s.catalog.Names(),
		Colors:  background.ColorNames(),
		Options: options,
	})
}

func (s *Server) previewBackground(c *gin.Context) {
	img, err := s.catalog.Load(c.Param("name"))
	if err != nil {
		s.abort(c, statusFor(err), err)
		return
	}

	thumb := imaging.Resize(img, previewWidth, 0, imaging.Lanczos)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: previewQuality}); err != nil {
		s.abort(c, http.StatusInternalServerError, fmt.Errorf("encode preview: %w", err))
		return
	}
	c.Data(http.StatusOK, "image/jpeg", buf.Bytes())
}

func (s *Server) process(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUpload)

	form, err := c.MultipartForm()
	if err != nil {
		s.abort(c, http.StatusBadRequest, fmt.Errorf("parse multipart form: %w", err))
		return
	}

	option, err := pipeline.ParseBackgroundOption(c.PostForm("background"))
	if err != nil {
		s.abort(c, http.StatusBadRequest, err)
		return
	}

	bg, err := s.resolveBackground(c, option, form)
	if err != nil {
		s.abort(c, statusFor(err), err)
		return
	}

	req, err := pipeline.NewRequest(option, bg, readUploads(form.File["images"]))
	if err != nil {
		s.abort(c, http.StatusBadRequest, err)
		return
	}

	results := s.processor.Process(c.Request.Context(), req)

	if c.Query("download") == "1" && len(results) == 1 {
		s.download(c, results[0])
		return
	}

	resp := processResponse{
		RequestID: c.GetString(requestIDKey),
		Results:   make([]resultView, 0, len(results)),
	}
	for _, r := range results {
		view := resultView{Index: r.Index + 1, Name: r.Name}
		if r.OK() {
			view.Filename = r.Output.Filename
			view.MIMEType = r.Output.MIMEType
			view.Data = r.Output.Data
		} else {
			view.Error = r.Err.Error()
		}
		resp.Results = append(resp.Results, view)
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) download(c *gin.Context, r pipeline.Result) {
	if !r.OK() {
		s.abort(c, http.StatusUnprocessableEntity, r.Err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", r.Output.Filename))
	c.Data(http.StatusOK, r.Output.MIMEType, r.Output.Data)
}

// resolveBackground 把表单字段转换为合成背景，只去背景时返回 None
func (s *Server) resolveBackground(c *gin.Context, option pipeline.BackgroundOption, form *multipart.Form) (compose.Background, error) {
	switch option {
	case pipeline.OptionSolidColor:
		name := c.PostForm("color")
		if strings.TrimSpace(name) == "" {
			name = defaultColor
		}
		col, err := background.ParseColor(name)
		if err != nil {
			return compose.None(), err
		}
		return compose.SolidColor(col), nil

	case pipeline.OptionPreset:
		name := c.PostForm("preset")
		if strings.TrimSpace(name) == "" {
			if names := s.catalog.Names(); len(names) > 0 {
				name = names[0]
			}
		}
		img, err := s.catalog.Load(name)
		if errors.Is(err, background.ErrUnknownBackground) {
			return compose.None(), fmt.Errorf("%w: %v", errBadBackground, err)
		}
		if err != nil {
			return compose.None(), err
		}
		return compose.ImageBackground(img), nil

	case pipeline.OptionCustom:
		files := form.File["background_file"]
		if len(files) == 0 {
			return compose.None(), nil
		}
		data, err := readFile(files[0])
		if err != nil {
			return compose.None(), fmt.Errorf("%w: %v", errBadBackground, err)
		}
		img, _, err := util.DecodeImageLimit(data, s.maxPixels)
		if err != nil {
			return compose.None(), fmt.Errorf("%w: %v", errBadBackground, err)
		}
		return compose.ImageBackground(img), nil
	}
	return compose.None(), nil
}

var errBadBackground = errors.New("invalid background image")

// readUploads 读取失败的文件保留为空数据，由流水线报告为该图片的解码错误
func readUploads(files []*multipart.FileHeader) []pipeline.Upload {
	uploads := make([]pipeline.Upload, 0, len(files))
	for _, fh := range files {
		data, err := readFile(fh)
		if err != nil {
			slog.Warn("failed to read upload", "name", fh.Filename, "error", err)
		}
		uploads = append(uploads, pipeline.Upload{Name: fh.Filename, Data: data})
	}
	return uploads
}

func readFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer func() {
		_ = f.Close()
	}()
	return io.ReadAll(f)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, background.ErrUnknownBackground):
		return http.StatusNotFound
	case errors.Is(err, background.ErrInvalidColor),
		errors.Is(err, errBadBackground),
		errors.Is(err, pipeline.ErrNoBackground),
		errors.Is(err, pipeline.ErrNoImages),
		errors.Is(err, pipeline.ErrUnknownOption):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) abort(c *gin.Context, status int, err error) {
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "request_id", c.GetString(requestIDKey), "error", err)
	}
	c.AbortWithStatusJSON(status, errorResponse{
		RequestID: c.GetString(requestIDKey),
		Error:     err.Error(),
	})
}
