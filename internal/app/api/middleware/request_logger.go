package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/leaselens/leaselens/pkg/logctx"
)

// RequestLoggerMiddleware attaches a request-scoped logger enriched with
// trace_id and, when the request carries one, the user id. Stored in both
// gin.Context and the request context so service code can pick it up via
// logctx.
func RequestLoggerMiddleware(base *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID, _ := c.Get(logctx.TraceIDKey)

		reqLogger := base.With("trace_id", traceID)
		if userID := requestUserID(c); userID != "" {
			reqLogger = reqLogger.With("user_id", userID)
		}
		c.Set(logctx.LoggerKey, reqLogger)

		ctx := context.WithValue(c.Request.Context(), logctx.LoggerKey, reqLogger)
		c.Request = c.Request.WithContext(ctx)

		if s, ok := traceID.(string); ok && s != "" {
			c.Writer.Header().Set("X-Request-ID", s)
		}

		c.Next()
	}
}

// requestUserID pulls the caller's identity the way the API carries it:
// a user_id query parameter or the X-User-ID header.
func requestUserID(c *gin.Context) string {
	if id := c.Query("user_id"); id != "" {
		return id
	}
	return c.GetHeader("X-User-ID")
}
