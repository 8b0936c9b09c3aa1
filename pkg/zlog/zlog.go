package zlog

import (
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options 日志初始化参数
type Options struct {
	LogPath    string
	Level      string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

var logger atomic.Pointer[zap.Logger]

func init() {
	// 未调用 Init 之前使用控制台输出，保证测试和启动早期也能打日志
	logger.Store(zap.New(newCore(nil, zapcore.InfoLevel)))
}

// Init 按配置重建全局 logger，LogPath 为空时只输出到 stdout
func Init(opts Options) {
	level := zapcore.InfoLevel
	if opts.Level != "" {
		if l, err := zapcore.ParseLevel(opts.Level); err == nil {
			level = l
		}
	}

	var fileWriter zapcore.WriteSyncer
	if opts.LogPath != "" {
		_ = os.MkdirAll(filepath.Dir(opts.LogPath), 0o755)
		maxSize := opts.MaxSizeMB
		if maxSize <= 0 {
			maxSize = 100
		}
		fileWriter = zapcore.AddSync(&lumberjack.Logger{
			Filename:   opts.LogPath,
			MaxSize:    maxSize,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   true,
		})
	}

	logger.Store(zap.New(newCore(fileWriter, level), zap.AddCaller(), zap.AddCallerSkip(1)))
}

func newCore(fileWriter zapcore.WriteSyncer, level zapcore.Level) zapcore.Core {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.TimeKey = "time"

	console := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(os.Stdout), level)
	if fileWriter == nil {
		return console
	}
	file := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), fileWriter, level)
	return zapcore.NewTee(console, file)
}

// Replace 替换全局 logger 并返回恢复函数，用法同 zap.ReplaceGlobals
func Replace(l *zap.Logger) func() {
	prev := logger.Swap(l)
	return func() { logger.Store(prev) }
}

// L 返回底层 zap.Logger
func L() *zap.Logger {
	return logger.Load()
}

func Debug(msg string, fields ...zap.Field) {
	L().Debug(msg, fields...)
}

func Info(msg string, fields ...zap.Field) {
	L().Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	L().Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	L().Error(msg, fields...)
}

func Fatal(msg string, fields ...zap.Field) {
	L().Fatal(msg, fields...)
}

// Sync 刷新缓冲区，进程退出前调用
func Sync() {
	_ = L().Sync()
}
