package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/chaos-io/bgswap/background"
	"github.com/chaos-io/bgswap/config"
	"github.com/chaos-io/bgswap/pipeline"
	"github.com/chaos-io/bgswap/rembg"
	"github.com/chaos-io/bgswap/server"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	level, _ := cfg.SlogLevel()
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
	gin.SetMode(gin.ReleaseMode)

	if err := run(cfg); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	remover, closeRemover, err := newRemover(cfg)
	if err != nil {
		return err
	}
	defer closeRemover()

	metrics := server.NewMetrics()
	processor := pipeline.NewProcessor(remover,
		pipeline.WithSegmentTimeout(cfg.SegmentTimeout),
		pipeline.WithWorkers(cfg.Workers),
		pipeline.WithReuseAlpha(cfg.ReuseAlpha),
		pipeline.WithMaxPixels(cfg.MaxPixels),
		pipeline.WithObserver(metrics.ObserveResult),
	)

	srv := server.New(processor, background.NewCatalog(cfg.BackgroundsDir),
		server.WithMetrics(metrics),
		server.WithMaxUploadBytes(cfg.MaxUploadBytes()),
		server.WithMaxPixels(cfg.MaxPixels),
	)
	if err := srv.StartCatalogRefresh(cfg.CatalogRefresh); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("starting bgswap", "addr", cfg.Addr, "backend", cfg.Backend, "workers", cfg.Workers)
	return srv.Run(ctx, cfg.Addr)
}

// newRemover 按配置选择抠图后端，返回的关闭函数总是可以调用
func newRemover(cfg config.Config) (rembg.Remover, func(), error) {
	switch cfg.Backend {
	case config.BackendHTTP:
		return rembg.NewHTTPRemover(cfg.RembgURL, cfg.RembgModel,
			rembg.WithRequestTimeout(cfg.SegmentTimeout),
		), func() {}, nil

	case config.BackendONNX:
		onnxCfg := rembg.DefaultU2NetConfig(cfg.ONNXModel)
		onnxCfg.SharedLibraryPath = cfg.ONNXLibrary
		onnxCfg.InputSize = cfg.ONNXInputSize

		r, err := rembg.NewONNXRemover(onnxCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("new onnx remover: %w", err)
		}
		return r, func() {
			if err := r.Close(); err != nil {
				slog.Warn("failed to close onnx session", "error", err)
			}
		}, nil

	default:
		slog.Warn("segmentation disabled, images pass through unchanged")
		return rembg.NewNopRemover(), func() {}, nil
	}
}
