package gormlog

import (
	"context"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/gorm/utils"

	"github.com/leaselens/leaselens/pkg/logctx"
)

// ZapLogger implements gorm.io/gorm/logger.Interface and enriches logs with
// trace_id and user_id from context via logctx.FromCtx.
type ZapLogger struct {
	base   *zap.SugaredLogger
	config gormlogger.Config
}

func New(base *zap.SugaredLogger) *ZapLogger {
	cfg := gormlogger.Config{
		SlowThreshold:             500 * time.Millisecond,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	}
	return &ZapLogger{base: base, config: cfg}
}

func (z *ZapLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cfg := z.config
	cfg.LogLevel = level
	return &ZapLogger{base: z.base, config: cfg}
}

func (z *ZapLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if z.config.LogLevel >= gormlogger.Info {
		logctx.FromCtx(ctx, z.base).Infow(msg, "args", data)
	}
}

func (z *ZapLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if z.config.LogLevel >= gormlogger.Warn {
		logctx.FromCtx(ctx, z.base).Warnw(msg, "args", data)
	}
}

func (z *ZapLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if z.config.LogLevel >= gormlogger.Error {
		logctx.FromCtx(ctx, z.base).Errorw(msg, "args", data)
	}
}

func (z *ZapLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if z.config.LogLevel == gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	sql, rows := fc()
	log := logctx.FromCtx(ctx, z.base)

	switch {
	case err != nil && z.config.LogLevel >= gormlogger.Error &&
		(!z.config.IgnoreRecordNotFoundError || err != gormlogger.ErrRecordNotFound):
		log.Errorw("gorm_query_error",
			"err", err, "elapsed_ms", elapsed.Milliseconds(), "rows", rows,
			"sql", sql, "caller", utils.FileWithLineNum())
	case z.config.SlowThreshold > 0 && elapsed > z.config.SlowThreshold &&
		z.config.LogLevel >= gormlogger.Warn:
		log.Warnw("gorm_slow_query",
			"elapsed_ms", elapsed.Milliseconds(), "rows", rows,
			"sql", sql, "caller", utils.FileWithLineNum())
	case z.config.LogLevel >= gormlogger.Info:
		log.Infow("gorm_query",
			"elapsed_ms", elapsed.Milliseconds(), "rows", rows, "sql", sql)
	}
}
