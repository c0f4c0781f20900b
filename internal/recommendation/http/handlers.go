package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	catalogdomain "github.com/vibestack/vibestack-backend/internal/catalog/domain"
	"github.com/vibestack/vibestack-backend/internal/logging"
	"github.com/vibestack/vibestack-backend/internal/recommendation/domain"
	"github.com/vibestack/vibestack-backend/internal/recommendation/engine"
)

// ToolResolver turns tool slugs into catalog records for display.
type ToolResolver interface {
	GetBySlugs(ctx context.Context, slugs []string) ([]catalogdomain.Tool, error)
}

type Handler struct {
	engine *engine.Engine
	tools  ToolResolver
}

// New builds the handler. tools may be nil, in which case responses carry slugs only.
func New(e *engine.Engine, tools ToolResolver) *Handler {
	return &Handler{engine: e, tools: tools}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("", h.recommend)
	rg.GET("/bundles", h.bundles)
}

type recommendReq struct {
	Answers map[string]string `json:"answers"`
}

func (h *Handler) recommend(c *gin.Context) {
	var req recommendReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	answers := make(domain.QuizAnswers, len(req.Answers))
	for k, v := range req.Answers {
		if domain.IsQuestionKey(k) {
			answers[k] = v
		}
	}

	rec := h.engine.Recommend(answers)
	resp := gin.H{"ok": true, "recommendation": rec}

	if h.tools != nil {
		tools, err := h.tools.GetBySlugs(c.Request.Context(), rec.Tools)
		if err != nil {
			// the recommendation is still useful without tool details
			logging.FromContext(c.Request.Context()).Warn("resolve recommended tools",
				zap.String("bundle", rec.ID), zap.Error(err))
		} else {
			resp["tools"] = tools
		}
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) bundles(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "bundles": h.engine.Bundles()})
}
