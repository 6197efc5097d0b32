package logger

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm/logger"
)

// SlogGormLogger 把 gorm 日志接到 slog，慢查询单独告警
type SlogGormLogger struct {
	LogLevel      logger.LogLevel
	SlowThreshold time.Duration
}

func NewGormLogger() *SlogGormLogger {
	return &SlogGormLogger{
		LogLevel:      logger.Info,
		SlowThreshold: 200 * time.Millisecond,
	}
}

func (s *SlogGormLogger) LogMode(level logger.LogLevel) logger.Interface {
	s.LogLevel = level
	return s
}

func (s *SlogGormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if s.LogLevel >= logger.Info {
		slog.InfoContext(ctx, msg, "data", data)
	}
}

func (s *SlogGormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if s.LogLevel >= logger.Warn {
		slog.WarnContext(ctx, msg, "data", data)
	}
}

func (s *SlogGormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if s.LogLevel >= logger.Error {
		slog.ErrorContext(ctx, msg, "data", data)
	}
}

func (s *SlogGormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if s.LogLevel <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	// SQL 首个单词作为操作名（SELECT/INSERT/...）
	operation := sql
	if i := strings.IndexByte(sql, ' '); i > 0 {
		operation = sql[:i]
	}
	msg := "MySQL " + operation

	fields := []any{
		slog.String("sql", sql),
		slog.Duration("latency", elapsed),
		slog.Int64("rows", rows),
	}

	switch {
	case err != nil && !errors.Is(err, logger.ErrRecordNotFound):
		slog.ErrorContext(ctx, msg+" Error", append(fields, slog.Any("err", err))...)
	case s.SlowThreshold > 0 && elapsed > s.SlowThreshold:
		slog.WarnContext(ctx, msg+" Slow", fields...)
	default:
		slog.InfoContext(ctx, msg, fields...)
	}
}
