package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const headerRequestID = "X-Request-ID"

// NewRouter registra as rotas do serviço.
func NewRouter(balanceteHandler *BalanceteHandler, systemHandler *SystemHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), requestID())

	router.GET("/health", systemHandler.HandleHealth)
	router.POST("/shutdown", systemHandler.HandleShutdown)

	// Rotas usadas pelo cliente desktop, com caminhos do disco local.
	router.POST("/process-file", balanceteHandler.HandleProcessFile)
	router.POST("/get-file-info", balanceteHandler.HandleFileInfo)

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/convert/balancete", balanceteHandler.HandleBalanceteConversion)
		apiV1.POST("/preview/balancete", balanceteHandler.HandleBalancetePreview)
	}

	return router
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(headerRequestID, id)
		c.Next()
	}
}
