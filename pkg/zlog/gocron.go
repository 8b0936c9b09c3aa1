package zlog

import "github.com/go-co-op/gocron/v2"

// gocronLogger 把 gocron 的 key/value 日志转给 zap sugar
type gocronLogger struct{}

func NewGocronLogger() gocron.Logger {
	return gocronLogger{}
}

func (gocronLogger) Debug(msg string, args ...any) { L().Sugar().Debugw(msg, args...) }
func (gocronLogger) Info(msg string, args ...any)  { L().Sugar().Infow(msg, args...) }
func (gocronLogger) Warn(msg string, args ...any)  { L().Sugar().Warnw(msg, args...) }
func (gocronLogger) Error(msg string, args ...any) { L().Sugar().Errorw(msg, args...) }
