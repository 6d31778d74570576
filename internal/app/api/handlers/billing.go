package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/leaselens/leaselens/internal/app/service/billing"
	"github.com/leaselens/leaselens/internal/models"
	"github.com/leaselens/leaselens/pkg/logctx"
	"github.com/leaselens/leaselens/pkg/response"
)

type createCheckoutRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Email  string `json:"email"`
}

type checkoutResponse struct {
	Success       bool   `json:"success"`
	CheckoutURL   string `json:"checkout_url,omitempty"`
	TransactionID string `json:"transaction_id,omitempty"`
	Error         string `json:"error,omitempty"`
}

type transactionResponse struct {
	Success     bool                `json:"success"`
	Transaction *models.Transaction `json:"transaction,omitempty"`
	Error       string              `json:"error,omitempty"`
}

type orderHistoryResponse struct {
	Success    bool                  `json:"success"`
	Orders     []*models.Transaction `json:"orders"`
	TotalCount int                   `json:"total_count"`
}

// ApiCreateCheckout opens a payment session for the 30-day pass. Provider
// failures surface as success=false rather than a 5xx so the client can show
// them inline.
func ApiCreateCheckout(svc *billing.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createCheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.Denied{
				Detail:  response.CodeInvalidInput,
				Message: "user_id is required",
			})
			return
		}

		res, err := svc.CreateCheckout(c.Request.Context(), req.UserID, req.Email)
		if err != nil {
			logctx.FromGin(c, log).Errorw("checkout creation failed", "user_id", req.UserID, "err", err)
			c.JSON(http.StatusOK, checkoutResponse{Success: false, Error: err.Error()})
			return
		}

		c.JSON(http.StatusOK, checkoutResponse{
			Success:       true,
			CheckoutURL:   res.CheckoutURL,
			TransactionID: res.TransactionID,
		})
	}
}

// ApiWebhook receives provider payment notifications. Signature errors are
// 401; processing errors are 500 so the provider retries.
func ApiWebhook(svc *billing.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawBody, err := c.GetRawData()
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Denied{
				Detail: response.CodeInvalidInput, Message: "failed to read request body"})
			return
		}

		signature := c.GetHeader("Paddle-Signature")
		if err := svc.HandleWebhook(c.Request.Context(), rawBody, signature); err != nil {
			switch {
			case errors.Is(err, billing.ErrMissingSignature):
				c.JSON(http.StatusUnauthorized, response.Denied{
					Detail: response.CodeBadSignature, Message: "Missing signature"})
			case errors.Is(err, billing.ErrBadSignature):
				c.JSON(http.StatusUnauthorized, response.Denied{
					Detail: response.CodeBadSignature, Message: "Invalid signature"})
			default:
				logctx.FromGin(c, log).Errorw("webhook processing failed", "err", err)
				c.JSON(http.StatusInternalServerError, response.Denied{
					Detail: response.CodeInternalError, Message: "Webhook processing failed"})
			}
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "success"})
	}
}

// ApiGetTransaction resolves a transaction by provider id or internal id.
func ApiGetTransaction(svc *billing.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		tx, err := svc.GetTransaction(c.Request.Context(), c.Param("transaction_id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, transactionResponse{
				Success: false, Error: "Failed to query transaction"})
			return
		}
		if tx == nil {
			c.JSON(http.StatusNotFound, transactionResponse{
				Success: false, Error: "Transaction not found"})
			return
		}
		c.JSON(http.StatusOK, transactionResponse{Success: true, Transaction: tx})
	}
}

// ApiListOrders returns the user's transactions, newest first.
func ApiListOrders(svc *billing.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

		orders, err := svc.ListOrders(c.Request.Context(), c.Param("user_id"), limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, response.Denied{
				Detail: response.CodeInternalError, Message: "Failed to fetch orders"})
			return
		}
		if orders == nil {
			orders = []*models.Transaction{}
		}
		c.JSON(http.StatusOK, orderHistoryResponse{
			Success:    true,
			Orders:     orders,
			TotalCount: len(orders),
		})
	}
}

// ApiCheckAccess exposes the entitlement decision for a user id.
func ApiCheckAccess(svc *billing.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		res := svc.CheckAccess(c.Request.Context(), c.Param("user_id"))
		c.JSON(http.StatusOK, gin.H{
			"success":            true,
			"has_access":         res.HasAccess,
			"reason":             res.Reason,
			"message":            res.Message,
			"expires_at":         res.ExpiresAt,
			"days_remaining":     res.DaysRemaining,
			"analyses_count":     res.AnalysesCount,
			"remaining_analyses": res.RemainingAnalyses,
		})
	}
}

func RegisterBillingRoutes(r gin.IRouter, svc *billing.Service, log *zap.SugaredLogger) {
	r.POST("/checkout/create", ApiCreateCheckout(svc, log))
	r.POST("/webhook", ApiWebhook(svc, log))
	r.GET("/transaction/:transaction_id", ApiGetTransaction(svc))
	r.GET("/orders/:user_id", ApiListOrders(svc))
	r.GET("/check-access/:user_id", ApiCheckAccess(svc))
}
