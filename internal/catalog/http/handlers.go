package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vibestack/vibestack-backend/internal/catalog/domain"
	"github.com/vibestack/vibestack-backend/internal/logging"
)

// ToolReader is the read side of the tool catalog.
type ToolReader interface {
	List(ctx context.Context, category string) ([]domain.Tool, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Tool, error)
}

type Handler struct {
	tools ToolReader
}

func New(tools ToolReader) *Handler {
	return &Handler{tools: tools}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("", h.list)
	rg.GET("/:slug", h.get)
}

func (h *Handler) list(c *gin.Context) {
	category := strings.TrimSpace(c.Query("category"))
	items, err := h.tools.List(c.Request.Context(), category)
	if err != nil {
		logging.FromContext(c.Request.Context()).Error("list tools", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "failed to list tools"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "tools": items})
}

func (h *Handler) get(c *gin.Context) {
	tool, err := h.tools.GetBySlug(c.Request.Context(), c.Param("slug"))
	if errors.Is(err, domain.ErrToolNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "tool not found"})
		return
	}
	if err != nil {
		logging.FromContext(c.Request.Context()).Error("get tool", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "failed to get tool"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "tool": tool})
}
