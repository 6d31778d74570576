package handlers

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/leaselens/leaselens/internal/app/service/analysis"
	"github.com/leaselens/leaselens/internal/app/service/ratelimit"
	"github.com/leaselens/leaselens/pkg/logctx"
	"github.com/leaselens/leaselens/pkg/metrics"
	"github.com/leaselens/leaselens/pkg/response"
)

const rateLimitMessage = "You've used your 3 free clause previews for today. For a full lease review, please upgrade to a paid report."

type quickAnalyzeRequest struct {
	ClauseText string `json:"clause_text"`
}

type quickAnalyzeResponse struct {
	Success             bool                 `json:"success"`
	RemainingQuotaToday int                  `json:"remaining_quota_today"`
	Result              analysis.QuickResult `json:"result"`
}

type quickHistoryResponse struct {
	Success bool                   `json:"success"`
	History []analysis.QuickResult `json:"history"`
}

// quickUserIdentifier resolves the caller's identity for rate limiting and
// history: the X-User-ID header when present, otherwise an IP-derived id.
func quickUserIdentifier(c *gin.Context) string {
	if userID := c.GetHeader("X-User-ID"); userID != "" {
		return userID
	}
	return "ip_" + c.ClientIP()
}

// ApiQuickAnalyze is the free single-clause preview: keyword-rated, rate
// limited, kept in a short per-user history.
func ApiQuickAnalyze(svc *analysis.Service, limiter *ratelimit.Limiter, m *metrics.Metrics, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req quickAnalyzeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.Denied{
				Detail:  response.CodeInvalidInput,
				Message: "Please paste only one short clause (max 250 characters) for the free preview.",
			})
			return
		}
		clauseText := strings.TrimSpace(req.ClauseText)
		if clauseText == "" {
			c.JSON(http.StatusBadRequest, response.Denied{
				Detail:  response.CodeInvalidInput,
				Message: "Please paste only one short clause (max 250 characters) for the free preview.",
			})
			return
		}
		if utf8.RuneCountInString(clauseText) > analysis.MaxQuickClauseChars {
			c.JSON(http.StatusBadRequest, response.Denied{
				Detail:  response.CodeInvalidInput,
				Message: "This quick check is only for short clauses. Please paste a shorter sentence (up to 250 characters).",
			})
			return
		}

		userID := quickUserIdentifier(c)
		ip := c.ClientIP()

		allowed, remaining, scope := limiter.Check(userID, ip)
		if !allowed {
			m.RateLimitDenials.WithLabelValues(scope).Inc()
			logctx.FromGin(c, log).Warnw("quick analyze rate limited",
				"user_id", userID, "ip", ip, "scope", scope)
			c.JSON(http.StatusTooManyRequests, response.RateLimited{
				Error:   response.CodeLimitReached,
				Message: rateLimitMessage,
			})
			return
		}

		result := svc.QuickAnalyze(c.Request.Context(), userID, clauseText)
		c.JSON(http.StatusOK, quickAnalyzeResponse{
			Success:             true,
			RemainingQuotaToday: remaining,
			Result:              result,
		})
	}
}

// ApiQuickHistory returns the caller's recent previews.
func ApiQuickHistory(svc *analysis.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		history := svc.QuickHistory(quickUserIdentifier(c))
		if history == nil {
			history = []analysis.QuickResult{}
		}
		c.JSON(http.StatusOK, quickHistoryResponse{Success: true, History: history})
	}
}

func RegisterClauseRoutes(r gin.IRouter, svc *analysis.Service, limiter *ratelimit.Limiter, m *metrics.Metrics, log *zap.SugaredLogger) {
	r.POST("/quick-analyze", ApiQuickAnalyze(svc, limiter, m, log))
	r.GET("/quick-analyze/history", ApiQuickHistory(svc))
}
