package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const defaultGormSlowThreshold = 200 * time.Millisecond

type gormZapLogger struct {
	logger                     *zap.Logger
	level                      logger.LogLevel
	slowThreshold              time.Duration
	ignoreRecordNotFoundErrors bool
}

func newGormZapLogger(base *zap.Logger) logger.Interface {
	level := logger.Warn
	if base != nil && base.Core().Enabled(zap.DebugLevel) {
		level = logger.Info
	}

	return &gormZapLogger{
		logger:                     base,
		level:                      level,
		slowThreshold:              defaultGormSlowThreshold,
		ignoreRecordNotFoundErrors: true,
	}
}

func (l *gormZapLogger) LogMode(level logger.LogLevel) logger.Interface {
	cloned := *l
	cloned.level = level

	return &cloned
}

func (l *gormZapLogger) Info(_ context.Context, msg string, args ...interface{}) {
	if l.level < logger.Info || l.logger == nil {
		return
	}
	l.logger.Info("GORM info", zap.String("message", fmt.Sprintf(msg, args...)))
}

func (l *gormZapLogger) Warn(_ context.Context, msg string, args ...interface{}) {
	if l.level < logger.Warn || l.logger == nil {
		return
	}
	l.logger.Warn("GORM warn", zap.String("message", fmt.Sprintf(msg, args...)))
}

func (l *gormZapLogger) Error(_ context.Context, msg string, args ...interface{}) {
	if l.level < logger.Error || l.logger == nil {
		return
	}
	l.logger.Error("GORM error", zap.String("message", fmt.Sprintf(msg, args...)))
}

func (l *gormZapLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.logger == nil || l.level == logger.Silent {
		return
	}

	elapsed := time.Since(begin)

	switch {
	case l.shouldLogError(err):
		l.logger.Error("GORM query failed", append(queryFields(fc, elapsed), zap.Error(err))...)
	case l.shouldLogSlow(elapsed):
		l.logger.Warn("GORM slow query", append(queryFields(fc, elapsed), zap.Duration("slowThreshold", l.slowThreshold))...)
	case l.level >= logger.Info:
		l.logger.Debug("GORM query", queryFields(fc, elapsed)...)
	}
}

func queryFields(fc func() (string, int64), elapsed time.Duration) []zap.Field {
	sql, rows := fc()

	return []zap.Field{
		zap.Duration("elapsed", elapsed),
		zap.Int64("rows", rows),
		zap.String("sql", sql),
	}
}

// Uniqueness violations are reported to callers as conflicts, so they are
// not logged as query failures either.
func (l *gormZapLogger) shouldLogError(err error) bool {
	if err == nil || l.level < logger.Error {
		return false
	}
	if l.ignoreRecordNotFoundErrors && errors.Is(err, gorm.ErrRecordNotFound) {
		return false
	}
	return !errors.Is(err, gorm.ErrDuplicatedKey)
}

func (l *gormZapLogger) shouldLogSlow(elapsed time.Duration) bool {
	return l.slowThreshold > 0 && elapsed > l.slowThreshold && l.level >= logger.Warn
}
