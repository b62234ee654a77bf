package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "backgrounds", cfg.BackgroundsDir)
	assert.Equal(t, BackendHTTP, cfg.Backend)
	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, 60*time.Second, cfg.SegmentTimeout)
	assert.Equal(t, int64(32<<20), cfg.MaxUploadBytes())
	assert.Equal(t, int64(178956970), cfg.MaxPixels)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("BGSWAP_ADDR", "127.0.0.1:9000")
	t.Setenv("BGSWAP_BACKEND", "ONNX")
	t.Setenv("BGSWAP_ONNX_INPUT_SIZE", "1024")
	t.Setenv("BGSWAP_WORKERS", "4")
	t.Setenv("BGSWAP_SEGMENT_TIMEOUT", "2s")
	t.Setenv("BGSWAP_REUSE_ALPHA", "true")
	t.Setenv("BGSWAP_LOG_LEVEL", "debug")
	t.Setenv("BGSWAP_CATALOG_REFRESH", "*/10 * * * *")
	t.Setenv("BGSWAP_MAX_PIXELS", "1000000")

	cfg := Load()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.Equal(t, BackendONNX, cfg.Backend)
	assert.Equal(t, 1024, cfg.ONNXInputSize)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 2*time.Second, cfg.SegmentTimeout)
	assert.True(t, cfg.ReuseAlpha)
	assert.Equal(t, int64(1000000), cfg.MaxPixels)

	level, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoad_BadValuesFallBack(t *testing.T) {
	t.Setenv("BGSWAP_WORKERS", "many")
	t.Setenv("BGSWAP_SEGMENT_TIMEOUT", "soon")

	cfg := Load()
	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, 60*time.Second, cfg.SegmentTimeout)
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	base := Config{
		Addr: ":8080", Backend: BackendNone, Workers: 1, MaxUploadMB: 1, LogLevel: "info",
	}
	require.NoError(t, base.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"空地址", func(c *Config) { c.Addr = "" }},
		{"未知后端", func(c *Config) { c.Backend = "gpu" }},
		{"http 缺少地址", func(c *Config) { c.Backend = BackendHTTP; c.RembgURL = "" }},
		{"onnx 缺少模型", func(c *Config) { c.Backend = BackendONNX; c.ONNXModel = "" }},
		{"onnx 输入尺寸", func(c *Config) { c.Backend = BackendONNX; c.ONNXModel = "m.onnx"; c.ONNXInputSize = 0 }},
		{"worker 数", func(c *Config) { c.Workers = 0 }},
		{"负超时", func(c *Config) { c.SegmentTimeout = -time.Second }},
		{"上传大小", func(c *Config) { c.MaxUploadMB = 0 }},
		{"负像素上限", func(c *Config) { c.MaxPixels = -1 }},
		{"cron 表达式", func(c *Config) { c.CatalogRefresh = "every now and then" }},
		{"日志级别", func(c *Config) { c.LogLevel = "loud" }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := base
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
