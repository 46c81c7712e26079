package store

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"snexviz/internal/logger"
)

const slowQuery = 200 * time.Millisecond

// GormLogger routes gorm's log output to the service logger
type GormLogger struct {
	log   *logger.Logger
	level gormlogger.LogLevel
}

// NewGormLogger creates a gorm logger that reports warnings and errors
func NewGormLogger(log *logger.Logger) *GormLogger {
	if log == nil {
		log = logger.NewNop()
	}
	return &GormLogger{log: log.WithComponent("store"), level: gormlogger.Warn}
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	return &GormLogger{log: l.log, level: level}
}

func (l *GormLogger) Info(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Info {
		l.log.Infof(msg, args...)
	}
}

func (l *GormLogger) Warn(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Warn {
		l.log.Warnf(msg, args...)
	}
}

func (l *GormLogger) Error(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Error {
		l.log.Errorf(msg, args...)
	}
}

func (l *GormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.level >= gormlogger.Error:
		sql, rows := fc()
		l.log.Error("query failed", err, map[string]interface{}{"sql": sql, "rows": rows, "elapsed_ms": elapsed.Milliseconds()})
	case elapsed > slowQuery && l.level >= gormlogger.Warn:
		sql, rows := fc()
		l.log.Warn(fmt.Sprintf("slow query over %s", slowQuery), map[string]interface{}{"sql": sql, "rows": rows, "elapsed_ms": elapsed.Milliseconds()})
	case l.level >= gormlogger.Info:
		sql, rows := fc()
		l.log.Debug("query", map[string]interface{}{"sql": sql, "rows": rows, "elapsed_ms": elapsed.Milliseconds()})
	}
}
