package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chaos-io/bgswap/compose"
	"github.com/chaos-io/bgswap/pipeline"
)

type Metrics struct {
	registry  *prometheus.Registry
	images    *prometheus.CounterVec
	duration  prometheus.Histogram
	requests  *prometheus.CounterVec
	latencies *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		images: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bgswap",
			Name:      "images_processed_total",
			Help:      "Processed images by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "bgswap",
			Name:      "image_processing_seconds",
			Help:      "Time to decode, segment, composite and encode one image.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bgswap",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		latencies: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bgswap",
			Name:      "http_request_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
	m.registry.MustRegister(m.images, m.duration, m.requests, m.latencies)
	return m
}

// ObserveResult 作为 pipeline.WithObserver 的回调
func (m *Metrics) ObserveResult(r pipeline.Result) {
	m.images.WithLabelValues(outcome(r.Err)).Inc()
	m.duration.Observe(r.Duration.Seconds())
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
		m.latencies.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, pipeline.ErrDecode):
		return "decode_error"
	case errors.Is(err, pipeline.ErrSegmentation):
		return "segmentation_error"
	case errors.Is(err, compose.ErrDimensionMismatch):
		return "dimension_mismatch"
	case errors.Is(err, pipeline.ErrEncode):
		return "encode_error"
	case errors.Is(err, pipeline.ErrCanceled):
		return "canceled"
	default:
		return "error"
	}
}
