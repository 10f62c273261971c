package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func NewRouter(sessions *Sessions, flights FlightLookup, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log))

	root := router.Group("")
	NewUserHandler(sessions).Register(root)
	NewFlightHandler(sessions, flights).Register(root)
	NewBookingHandler(sessions).Register(router.Group("/reservations"))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return router
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		log.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()))
	}
}
