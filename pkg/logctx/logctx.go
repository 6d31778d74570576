// Package logctx resolves the request-scoped logger that the middleware
// stashes under LoggerKey, so handlers and services log with trace_id and
// user_id already attached.
package logctx

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Context keys shared with the middleware layer.
const (
	LoggerKey  = "logger"
	TraceIDKey = "traceID"
	UserIDKey  = "user_id"
)

// FromGin resolves the request logger from a gin context. Handlers running
// outside the logger middleware (or with a nil context in tests) get base.
func FromGin(c *gin.Context, base *zap.SugaredLogger) *zap.SugaredLogger {
	if c == nil {
		return base
	}
	if lg, ok := c.Get(LoggerKey); ok {
		if scoped, ok := lg.(*zap.SugaredLogger); ok && scoped != nil {
			return scoped
		}
	}
	return FromCtx(c.Request.Context(), base)
}

// FromCtx resolves the request logger from a plain context. When only the raw
// trace/user values are present, base is enriched with whichever exist.
func FromCtx(ctx context.Context, base *zap.SugaredLogger) *zap.SugaredLogger {
	if ctx == nil {
		return base
	}
	if scoped, ok := ctx.Value(LoggerKey).(*zap.SugaredLogger); ok && scoped != nil {
		return scoped
	}
	out := base
	if tid, ok := ctx.Value(TraceIDKey).(string); ok && tid != "" {
		out = out.With("trace_id", tid)
	}
	if uid, ok := ctx.Value(UserIDKey).(string); ok && uid != "" {
		out = out.With("user_id", uid)
	}
	return out
}

// WithAnalysis tags a logger with the analysis id so every line written after
// an analysis is stored can be correlated with its report.
func WithAnalysis(l *zap.SugaredLogger, analysisID string) *zap.SugaredLogger {
	if analysisID == "" {
		return l
	}
	return l.With("analysis_id", analysisID)
}
