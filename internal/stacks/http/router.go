package http

import (
	"github.com/gin-gonic/gin"

	"github.com/vibestack/vibestack-backend/internal/auth"
)

// Register mounts the /stacks routes. throttle guards every route that
// writes; pass nil to leave writes unthrottled.
func (h *Handler) Register(rg *gin.RouterGroup, throttle gin.HandlerFunc) {
	if throttle == nil {
		throttle = func(c *gin.Context) { c.Next() }
	}
	member := auth.RequireUser()

	rg.GET("", h.list)
	rg.GET("/featured", h.featured)
	rg.GET("/:id", h.get)
	rg.POST("/:id/view", throttle, h.view)
	rg.GET("/:id/viewer", member, h.viewer)

	rg.POST("", member, throttle, h.create)
	rg.PATCH("/:id", member, throttle, h.update)
	rg.DELETE("/:id", member, throttle, h.delete)
	rg.POST("/:id/like", member, throttle, h.like)
	rg.POST("/:id/save", member, throttle, h.save)
	rg.POST("/:id/fork", member, throttle, h.fork)
}

// RegisterMe mounts the caller's own listings under an authenticated group.
func (h *Handler) RegisterMe(rg *gin.RouterGroup) {
	rg.GET("/stacks", h.mine)
	rg.GET("/saved", h.saved)
}
