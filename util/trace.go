package util

import (
	"log/slog"
	"time"
)

// Trace 记录一个步骤的耗时，用法: defer util.Trace("segment")()
func Trace(name string, args ...any) func() {
	start := time.Now()
	return func() {
		slog.Debug(name+" done", append(args, "elapsed", time.Since(start))...)
	}
}
