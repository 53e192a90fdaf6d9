// Package log 提供 netstate 统一日志接口
//
// 基于 log/slog 封装，组件通过 Logger("core/xxx") 获取懒加载 logger，
// 每次调用都使用当前的 slog.Default()，因此可以在运行时切换输出。
//
// 库本身不修改全局 logger，由宿主决定输出。SetupFromEnv 按环境变量
// 配置 slog.Default()，命令行入口在启动时调用：
//   - NETSTATE_LOG_LEVEL: debug / info / warn / error（默认 info）
//   - NETSTATE_LOG_FORMAT: text / json（默认 text，SetOutputWithLevel 同样遵循）
package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// 日志级别常量（从 slog 导出，方便使用）
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// 环境变量名
const (
	EnvLogLevel  = "NETSTATE_LOG_LEVEL"
	EnvLogFormat = "NETSTATE_LOG_FORMAT"
)

// SetDefault 设置默认 logger
func SetDefault(l *slog.Logger) {
	slog.SetDefault(l)
}

// New 创建 logger，format 为 "json" 时输出 JSON，否则为文本
func New(w io.Writer, level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// SetOutputWithLevel 同时设置日志输出目标和级别
//
// 格式取自 NETSTATE_LOG_FORMAT。
func SetOutputWithLevel(w io.Writer, level slog.Level) {
	SetDefault(New(w, level, os.Getenv(EnvLogFormat)))
}

// SetupFromEnv 按环境变量配置默认 logger，输出到 stderr
func SetupFromEnv() {
	level, ok := ParseLevel(os.Getenv(EnvLogLevel))
	if !ok {
		level = LevelInfo
	}
	SetOutputWithLevel(os.Stderr, level)
}

// ParseLevel 解析日志级别名称
func ParseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return LevelDebug, true
	case "info":
		return LevelInfo, true
	case "warn", "warning":
		return LevelWarn, true
	case "error":
		return LevelError, true
	default:
		return LevelInfo, false
	}
}

// ============================================================================
//                              LazyLogger
// ============================================================================

// LazyLogger 懒加载 logger
//
// 使用方式：
//
//	var logger = log.Logger("core/connectivity")
//	logger.Info("状态变更", "online", true)
type LazyLogger struct {
	component string
}

// Logger 返回带组件名的 LazyLogger
func Logger(component string) *LazyLogger {
	return &LazyLogger{component: component}
}

func (l *LazyLogger) base() *slog.Logger {
	return slog.Default().With("component", l.component)
}

// Debug 输出 Debug 级别日志
func (l *LazyLogger) Debug(msg string, args ...any) {
	l.base().Debug(msg, args...)
}

// Info 输出 Info 级别日志
func (l *LazyLogger) Info(msg string, args ...any) {
	l.base().Info(msg, args...)
}

// Warn 输出 Warn 级别日志
func (l *LazyLogger) Warn(msg string, args ...any) {
	l.base().Warn(msg, args...)
}

// Error 输出 Error 级别日志
func (l *LazyLogger) Error(msg string, args ...any) {
	l.base().Error(msg, args...)
}

// With 添加额外的属性
func (l *LazyLogger) With(args ...any) *slog.Logger {
	return l.base().With(args...)
}
