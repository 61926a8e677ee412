package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"Spatialynk-App/internal/logging"
)

// SetupRouter ルーティングを設定したginエンジンを返す
func SetupRouter(h *SessionHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	router.GET("/health", h.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/analytics", h.Analytics)

	session := router.Group("/session")
	{
		session.GET("/role", h.Role)
		session.POST("/search", h.Search)
		session.POST("/restore", h.Restore)
		session.GET("/state", h.State)
		session.DELETE("/recommendations", h.ClearRecommendations)
		session.PUT("/location", h.SetLocation)
		session.DELETE("/location", h.ClearLocation)
		session.PUT("/level", h.SetLevel)
		session.GET("/history", h.History)
		session.GET("/flags/:level/:poiId", h.ReasonFlags)

		session.GET("/map", h.GetMap)
		session.POST("/map/next", h.NextPOI)
		session.POST("/map/prev", h.PrevPOI)
		session.POST("/map/fit", h.FitAll)
		session.POST("/map/recenter", h.Recenter)

		session.GET("/pois/:level/:poiId/explanation", h.GetExplanation)
		session.POST("/pois/:level/:poiId/toggle", h.ToggleExpanded)
		session.POST("/pois/:level/:poiId/interactions", h.RecordInteraction)
	}

	return router
}

// requestLogger zerologでアクセスログを出す
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logging.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
