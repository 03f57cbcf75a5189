package logger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

type GormLoggerConfig struct {
	Level         gormlogger.LogLevel
	SlowThreshold time.Duration
}

// DefaultGormLoggerConfig logs every statement in debug mode and only slow or
// failed ones otherwise.
func DefaultGormLoggerConfig(debug bool, slowThreshold time.Duration) GormLoggerConfig {
	level := gormlogger.Warn
	if debug {
		level = gormlogger.Info
	}
	if slowThreshold <= 0 {
		slowThreshold = 200 * time.Millisecond
	}
	return GormLoggerConfig{Level: level, SlowThreshold: slowThreshold}
}

// GormLogger writes gorm output through zap, tagging each statement with the
// payments log operation it belongs to.
type GormLogger struct {
	base          *zap.Logger
	level         gormlogger.LogLevel
	slowThreshold time.Duration
}

func NewGormLogger(cfg GormLoggerConfig, base *zap.Logger) *GormLogger {
	if base == nil {
		base = zap.NewNop()
	}
	return &GormLogger{
		base:          base.Named("gorm"),
		level:         cfg.Level,
		slowThreshold: cfg.SlowThreshold,
	}
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	l.message(ctx, gormlogger.Info, zapcore.InfoLevel, msg, data)
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	l.message(ctx, gormlogger.Warn, zapcore.WarnLevel, msg, data)
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	l.message(ctx, gormlogger.Error, zapcore.ErrorLevel, msg, data)
}

func (l *GormLogger) message(ctx context.Context, min gormlogger.LogLevel, level zapcore.Level, msg string, data []interface{}) {
	if l.level < min {
		return
	}
	if len(data) > 0 {
		msg = fmt.Sprintf(msg, data...)
	}
	if ce := WithContext(ctx, l.base).Check(level, msg); ce != nil {
		ce.Write()
	}
}

// Trace logs failed statements at error, slow ones at warn and, in debug
// mode, everything else at debug. A missing row is not a failure: the order
// adapter treats it as an absent referent.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	var level zapcore.Level
	switch {
	case err != nil && !errors.Is(err, gormlogger.ErrRecordNotFound) && l.level >= gormlogger.Error:
		level = zapcore.ErrorLevel
	case l.slowThreshold > 0 && elapsed > l.slowThreshold && l.level >= gormlogger.Warn:
		level = zapcore.WarnLevel
	case l.level >= gormlogger.Info:
		level = zapcore.DebugLevel
	default:
		return
	}

	log := WithContext(ctx, l.base)
	ce := log.Check(level, "sql")
	if ce == nil {
		return
	}

	sql, rows := fc()
	fields := []zap.Field{
		zap.String("operation", QueryOperation(sql)),
		zap.String("sql", strings.TrimSpace(sql)),
		zap.Duration("elapsed", elapsed),
	}
	if rows >= 0 {
		fields = append(fields, zap.Int64("rows", rows))
	}
	if level == zapcore.WarnLevel {
		fields = append(fields, zap.Bool("slow", true))
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	ce.Write(fields...)
}

// ParamsFilter keeps bound values (amounts, transaction ids) out of the logs.
func (l *GormLogger) ParamsFilter(_ context.Context, sql string, _ ...interface{}) (string, []interface{}) {
	return sql, nil
}

// QueryOperation names the statement after the table it touches, for example
// payments_log.insert or orders.find.
func QueryOperation(sql string) string {
	tokens := strings.Fields(strings.ToLower(sql))
	if len(tokens) == 0 {
		return "unknown"
	}

	verb := strings.Trim(tokens[0], "(;")
	switch verb {
	case "begin", "commit", "rollback", "savepoint":
		return "tx." + verb
	}

	table := ""
	for i, token := range tokens {
		switch token {
		case "into", "from", "update", "table":
			if i+1 >= len(tokens) {
				continue
			}
			next := tokens[i+1]
			if next == "if" && i+4 < len(tokens) {
				next = tokens[i+4]
			}
			table = strings.Trim(next, "`\"();")
		}
		if table != "" {
			break
		}
	}

	if op, ok := knownOperations[table+" "+verb]; ok {
		return op
	}
	if table == "" {
		return verb
	}
	return table + "." + verb
}

var knownOperations = map[string]string{
	"payments_log insert": "payments_log.insert",
	"payments_log select": "payments_log.list",
	"payments_log create": "payments_log.install",
	"orders select":       "orders.find",
	"order_meta select":   "order_meta.load",
	"users select":        "users.display_name",
}

var _ gormlogger.Interface = (*GormLogger)(nil)
