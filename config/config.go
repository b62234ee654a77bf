// Package config 从 BGSWAP_* 环境变量读取服务配置。
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/chaos-io/bgswap/pipeline"
	"github.com/chaos-io/bgswap/util"
)

// 抠图后端
const (
	BackendHTTP = "http"
	BackendONNX = "onnx"
	BackendNone = "none"
)

type Config struct {
	Addr           string
	BackgroundsDir string
	// CatalogRefresh cron 表达式，为空则不定时刷新
	CatalogRefresh string

	Backend    string
	RembgURL   string
	RembgModel string

	ONNXModel     string
	ONNXLibrary   string
	ONNXInputSize int

	SegmentTimeout time.Duration
	Workers        int
	ReuseAlpha     bool
	MaxUploadMB    int
	// MaxPixels 单张图片宽 x 高的上限，0 表示不限制
	MaxPixels int64

	LogLevel string
}

func Load() Config {
	return Config{
		Addr:           util.GetEnvString("BGSWAP_ADDR", ":8080"),
		BackgroundsDir: util.GetEnvString("BGSWAP_BACKGROUNDS_DIR", "backgrounds"),
		CatalogRefresh: util.GetEnvString("BGSWAP_CATALOG_REFRESH", "@every 5m"),

		Backend:    strings.ToLower(util.GetEnvString("BGSWAP_BACKEND", BackendHTTP)),
		RembgURL:   util.GetEnvString("BGSWAP_REMBG_URL", "http://127.0.0.1:7000"),
		RembgModel: util.GetEnvString("BGSWAP_REMBG_MODEL", "u2net"),

		ONNXModel:     util.GetEnvString("BGSWAP_ONNX_MODEL", "models/u2net.onnx"),
		ONNXLibrary:   util.GetEnvString("BGSWAP_ONNX_LIBRARY", ""),
		ONNXInputSize: util.GetEnvInt("BGSWAP_ONNX_INPUT_SIZE", 320),

		SegmentTimeout: util.GetEnvDuration("BGSWAP_SEGMENT_TIMEOUT", 60*time.Second),
		Workers:        util.GetEnvInt("BGSWAP_WORKERS", 1),
		ReuseAlpha:     util.GetEnvBool("BGSWAP_REUSE_ALPHA", false),
		MaxUploadMB:    util.GetEnvInt("BGSWAP_MAX_UPLOAD_MB", 32),
		MaxPixels:      int64(util.GetEnvInt("BGSWAP_MAX_PIXELS", pipeline.DefaultMaxPixels)),

		LogLevel: util.GetEnvString("BGSWAP_LOG_LEVEL", "info"),
	}
}

func (c Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("listen address is empty")
	}
	switch c.Backend {
	case BackendHTTP:
		if c.RembgURL == "" {
			return fmt.Errorf("rembg url is required for backend %q", c.Backend)
		}
	case BackendONNX:
		if c.ONNXModel == "" {
			return fmt.Errorf("onnx model is required for backend %q", c.Backend)
		}
		if c.ONNXInputSize <= 0 {
			return fmt.Errorf("invalid onnx input size %d", c.ONNXInputSize)
		}
	case BackendNone:
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if c.SegmentTimeout < 0 {
		return fmt.Errorf("segment timeout must not be negative")
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("max upload size must be positive, got %d", c.MaxUploadMB)
	}
	if c.MaxPixels < 0 {
		return fmt.Errorf("max pixels must not be negative, got %d", c.MaxPixels)
	}
	if c.CatalogRefresh != "" {
		if _, err := cron.ParseStandard(c.CatalogRefresh); err != nil {
			return fmt.Errorf("parse catalog refresh %q: %w", c.CatalogRefresh, err)
		}
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("parse log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

func (c Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}
