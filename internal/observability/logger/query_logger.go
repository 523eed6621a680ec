package logger

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/smallbiznis/rechargedesk/pkg/log/ctxlogger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

// QueryLoggerConfig controls which statements reach the log.
// Level is one of silent, error, warn or info; anything else means warn.
type QueryLoggerConfig struct {
	Level         string
	SlowThreshold time.Duration
}

// QueryLogger writes GORM statements as "db.query" entries. Missing rows are
// never logged as errors since every lookup in the app treats them as a result.
type QueryLogger struct {
	log   *zap.Logger
	level gormlogger.LogLevel
	slow  time.Duration
}

func NewQueryLogger(base *zap.Logger, cfg QueryLoggerConfig) *QueryLogger {
	return &QueryLogger{
		log:   base.Named("db"),
		level: parseQueryLevel(cfg.Level),
		slow:  cfg.SlowThreshold,
	}
}

func parseQueryLevel(value string) gormlogger.LogLevel {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info", "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}

func (l *QueryLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *QueryLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	l.message(ctx, gormlogger.Info, zapcore.InfoLevel, msg, data)
}

func (l *QueryLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	l.message(ctx, gormlogger.Warn, zapcore.WarnLevel, msg, data)
}

func (l *QueryLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	l.message(ctx, gormlogger.Error, zapcore.ErrorLevel, msg, data)
}

func (l *QueryLogger) message(ctx context.Context, threshold gormlogger.LogLevel, lvl zapcore.Level, msg string, data []interface{}) {
	if l.level < threshold {
		return
	}
	var fields []zap.Field
	if len(data) > 0 {
		fields = append(fields, zap.Any("data", data))
	}
	if ce := ctxlogger.WithContext(ctx, l.log).Check(lvl, msg); ce != nil {
		ce.Write(fields...)
	}
}

// Trace logs failed statements at error, slow ones at warn and the rest at
// debug when the level is info.
func (l *QueryLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	var lvl zapcore.Level
	switch {
	case err != nil && !errors.Is(err, gormlogger.ErrRecordNotFound):
		if l.level < gormlogger.Error {
			return
		}
		lvl = zapcore.ErrorLevel
	case l.slow > 0 && elapsed > l.slow:
		if l.level < gormlogger.Warn {
			return
		}
		lvl = zapcore.WarnLevel
		err = nil
	case l.level >= gormlogger.Info:
		lvl = zapcore.DebugLevel
		err = nil
	default:
		return
	}

	ce := ctxlogger.WithContext(ctx, l.log).Check(lvl, "db.query")
	if ce == nil {
		return
	}

	sql, rows := fc()
	sql = strings.TrimSpace(sql)
	fields := []zap.Field{
		zap.String("sql", sql),
		zap.String("operation", operationFromSQL(sql)),
		zap.String("table", tableFromSQL(sql)),
		zap.Int64("duration_ms", elapsed.Milliseconds()),
	}
	if rows >= 0 {
		fields = append(fields, zap.Int64("rows_affected", rows))
	}
	if lvl == zapcore.WarnLevel {
		fields = append(fields, zap.Bool("slow", true))
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	ce.Write(fields...)
}

// ParamsFilter drops bound values; they carry customer emails and phone numbers.
func (l *QueryLogger) ParamsFilter(_ context.Context, sql string, _ ...interface{}) (string, []interface{}) {
	return sql, nil
}

func operationFromSQL(sql string) string {
	for _, token := range sqlTokens(sql) {
		switch token {
		case "SELECT", "INSERT", "UPDATE", "DELETE":
			return token
		}
	}
	return "UNKNOWN"
}

// tableFromSQL returns the first table named after FROM, INTO or UPDATE.
func tableFromSQL(sql string) string {
	tokens := sqlTokens(sql)
	for i, token := range tokens {
		if i+1 >= len(tokens) {
			break
		}
		switch token {
		case "FROM", "INTO", "UPDATE":
			name := strings.Trim(tokens[i+1], "`\"();,")
			if name != "" && name != "SELECT" {
				return strings.ToLower(name)
			}
		}
	}
	return ""
}

func sqlTokens(sql string) []string {
	fields := strings.Fields(strings.ToUpper(sql))
	for i, f := range fields {
		fields[i] = strings.Trim(f, "();")
	}
	return fields
}

var _ gormlogger.Interface = (*QueryLogger)(nil)
