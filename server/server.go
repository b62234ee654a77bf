// Package server 通过 HTTP 暴露上传、处理和下载。
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/segmentio/ksuid"

	"github.com/chaos-io/bgswap/background"
	"github.com/chaos-io/bgswap/pipeline"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"

	defaultMaxUpload = 32 << 20
)

type Server struct {
	engine    *gin.Engine
	processor *pipeline.Processor
	catalog   *background.Catalog
	metrics   *Metrics
	cron      *cron.Cron
	maxUpload int64
	maxPixels int64
}

type Option func(*Server)

// WithMaxUploadBytes 单次请求 body 的上限
func WithMaxUploadBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUpload = n
		}
	}
}

// WithMaxPixels 自定义背景图片的像素上限，0 表示不限制
func WithMaxPixels(n int64) Option {
	return func(s *Server) {
		if n >= 0 {
			s.maxPixels = n
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

func New(processor *pipeline.Processor, catalog *background.Catalog, opts ...Option) *Server {
	s := &Server{
		processor: processor,
		catalog:   catalog,
		maxUpload: defaultMaxUpload,
		maxPixels: pipeline.DefaultMaxPixels,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = NewMetrics()
	}
	s.engine = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = s.maxUpload
	r.Use(gin.Recovery(), requestID(), accessLog(), s.metrics.middleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	v1 := r.Group("/api/v1")
	v1.GET("/backgrounds", s.listBackgrounds)
	v1.GET("/backgrounds/:name/preview", s.previewBackground)
	v1.POST("/process", s.process)

	return r
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// StartCatalogRefresh 先加载一次预设目录，再按 cron 表达式定时重新扫描
func (s *Server) StartCatalogRefresh(spec string) error {
	if err := s.catalog.Reload(); err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	if spec == "" {
		return nil
	}

	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		if err := s.catalog.Reload(); err != nil {
			slog.Error("failed to reload backgrounds", "dir", s.catalog.Dir(), "error", err)
			return
		}
		slog.Debug("reloaded backgrounds", "count", len(s.catalog.Files()))
	})
	if err != nil {
		return fmt.Errorf("schedule catalog refresh %q: %w", spec, err)
	}

	s.stopCron()
	s.cron = c
	s.cron.Start()
	return nil
}

// Run 监听 addr，ctx 结束后优雅关闭
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.stopCron()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.stopCron()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}

func (s *Server) stopCron() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = ksuid.New().String()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Info("http request",
			"request_id", c.GetString(requestIDKey),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"elapsed", time.Since(start),
		)
	}
}
