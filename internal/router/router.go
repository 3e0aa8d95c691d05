// Package router assembles the gin engine: middleware, HTTP routes and the
// websocket endpoint.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/bogdang40/DouaInimi/internal/app"
	"github.com/bogdang40/DouaInimi/internal/handler"
	"github.com/bogdang40/DouaInimi/internal/middleware"
	"github.com/bogdang40/DouaInimi/internal/ws"
)

// New builds the engine with all routes registered.
func New(appCtx *app.AppContext, gateway *ws.Gateway) *gin.Engine {
	if appCtx.Config.App.ENV == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	h := handler.New(appCtx)

	api := r.Group("/api")
	api.Use(middleware.JWT(appCtx.Config))
	api.Use(middleware.RateLimit(120, 20))
	{
		api.GET("/discover", h.Discover)

		api.POST("/users/:id/like", h.Like)
		api.POST("/users/:id/pass", h.Pass)
		api.DELETE("/users/:id/like", h.Unlike)
		api.POST("/users/:id/block", h.Block)
		api.DELETE("/users/:id/block", h.Unblock)

		api.GET("/likes", h.LikedYou)
		api.GET("/likes/count", h.LikedYouCount)
		api.GET("/likes/super-status", h.SuperLikeStatus)

		api.GET("/matches", h.Matches)
		api.DELETE("/matches/:id", h.Unmatch)
		api.GET("/matches/:id/messages", h.Conversation)
		api.POST("/matches/:id/messages", h.SendMessage)
		api.POST("/matches/:id/read", h.MarkRead)
		api.DELETE("/messages/:id", h.DeleteMessage)

		api.POST("/reports", h.Report)
	}

	r.GET("/ws", middleware.JWT(appCtx.Config), gateway.Handle)

	return r
}
