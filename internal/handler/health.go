package handler

import (
	"safescan/internal/handler/response"

	"github.com/gin-gonic/gin"
)

// HealthCheck reports that the server is up
func HealthCheck(c *gin.Context) {
	response.Success(c, gin.H{
		"status":  "UP",
		"version": "1.0.0",
		"service": "safescan",
	})
}
