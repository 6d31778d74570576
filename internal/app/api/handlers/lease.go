package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/leaselens/leaselens/internal/app/service/analysis"
	"github.com/leaselens/leaselens/internal/platform/upload"
	"github.com/leaselens/leaselens/pkg/logctx"
	"github.com/leaselens/leaselens/pkg/response"
)

// ApiAnalyzeLease accepts one or more lease documents and runs the full
// analysis pipeline. Denials and input errors map to 4xx; pipeline failures
// that are not the client's fault return a 200 with success=false so the
// client can render them inline.
func ApiAnalyzeLease(svc *analysis.Service, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Query("user_id")
		if userID == "" {
			c.JSON(http.StatusBadRequest, response.Denied{
				Detail:  response.CodeInvalidInput,
				Message: "user_id query parameter is required",
			})
			return
		}

		form, err := c.MultipartForm()
		if err != nil || len(form.File["files"]) == 0 {
			c.JSON(http.StatusBadRequest, response.Denied{
				Detail:  response.CodeInvalidInput,
				Message: "At least one file is required",
			})
			return
		}

		report, err := svc.Analyze(c, form.File["files"], userID)
		if err != nil {
			writeAnalyzeError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, response.OK(report))
	}
}

func writeAnalyzeError(c *gin.Context, log *zap.SugaredLogger, err error) {
	var (
		validationErr *upload.ValidationError
		inputErr      *analysis.InputError
		deniedErr     *analysis.AccessDeniedError
		softErr       *analysis.SoftError
	)
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, response.Denied{
			Detail: response.CodeInvalidInput, Message: validationErr.Reason})
	case errors.As(err, &inputErr):
		c.JSON(http.StatusBadRequest, response.Denied{
			Detail: response.CodeInvalidInput, Message: inputErr.Message})
	case errors.As(err, &deniedErr):
		c.JSON(http.StatusForbidden, response.Denied{
			Detail: response.CodeAccessDenied, Message: deniedErr.Message})
	case errors.As(err, &softErr):
		c.JSON(http.StatusOK, response.Fail(softErr.Message))
	default:
		logctx.FromGin(c, log).Errorw("unexpected analysis failure", "err", err)
		c.JSON(http.StatusOK, response.Fail(fmt.Sprintf("Failed to analyze lease: %v", err)))
	}
}

// ApiFullReport returns a stored analysis by id.
func ApiFullReport(svc *analysis.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		analysisID := c.Query("analysis_id")
		userID := c.Query("user_id")
		if analysisID == "" || userID == "" {
			c.JSON(http.StatusBadRequest, response.Denied{
				Detail:  response.CodeInvalidInput,
				Message: "analysis_id and user_id query parameters are required",
			})
			return
		}

		report, err := svc.FullReport(c.Request.Context(), analysisID, userID)
		if err != nil {
			var (
				notFoundErr *analysis.NotFoundError
				deniedErr   *analysis.AccessDeniedError
			)
			switch {
			case errors.As(err, &notFoundErr):
				c.JSON(http.StatusNotFound, response.Denied{
					Detail: response.CodeNotFound, Message: notFoundErr.Message})
			case errors.As(err, &deniedErr):
				c.JSON(http.StatusForbidden, response.Denied{
					Detail: response.CodeAccessDenied, Message: deniedErr.Message})
			default:
				c.JSON(http.StatusInternalServerError, response.Denied{
					Detail: response.CodeInternalError, Message: "Failed to retrieve full report"})
			}
			return
		}
		c.JSON(http.StatusOK, response.OK(report))
	}
}

func RegisterLeaseRoutes(r gin.IRouter, svc *analysis.Service, log *zap.SugaredLogger) {
	r.POST("/analyze", ApiAnalyzeLease(svc, log))
	r.GET("/full-report", ApiFullReport(svc))
}
