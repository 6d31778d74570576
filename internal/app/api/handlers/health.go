package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "lease-ocr-api",
		"message": "API is running correctly",
	})
}

func Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "LeaseLens API",
		"status":  "running",
	})
}

func RegisterHealthRoutes(r gin.IRouter) {
	r.GET("/", Root)
	r.GET("/health", Healthz)
}
