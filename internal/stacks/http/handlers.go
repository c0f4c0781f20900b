package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vibestack/vibestack-backend/internal/auth"
	"github.com/vibestack/vibestack-backend/internal/logging"
	"github.com/vibestack/vibestack-backend/internal/stacks/domain"
)

// Service is the stack catalog as the handlers use it.
type Service interface {
	List(ctx context.Context, f domain.ListFilters, limit, offset int) (*domain.StackPage, error)
	GetFeatured(ctx context.Context, limit int) ([]domain.CommunityStack, error)
	GetByID(ctx context.Context, id string) (*domain.CommunityStack, error)
	ListByCurator(ctx context.Context, curatorID string) ([]domain.CommunityStack, error)
	ListSaved(ctx context.Context, userID string) ([]domain.CommunityStack, error)
	Create(ctx context.Context, in domain.NewStack) (*domain.CommunityStack, error)
	Update(ctx context.Context, id, callerID string, upd domain.StackUpdate) (*domain.CommunityStack, error)
	Delete(ctx context.Context, id, callerID string) error
	ToggleLike(ctx context.Context, stackID, userID string) (domain.ToggleResult, error)
	ToggleSave(ctx context.Context, stackID, userID string) (domain.ToggleResult, error)
	Fork(ctx context.Context, stackID, userID string) (*domain.CommunityStack, error)
	IncrementView(ctx context.Context, stackID string) (int64, error)
	ViewerState(ctx context.Context, stackID, userID string) (domain.ViewerState, error)
}

type Handler struct {
	svc Service
}

func New(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) list(c *gin.Context) {
	sortKey, err := domain.ParseSortKey(c.Query("sort"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	timeRange, err := domain.ParseTimeRange(c.Query("range"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	limit, ok := intQuery(c, "limit")
	if !ok {
		return
	}
	offset, ok := intQuery(c, "offset")
	if !ok {
		return
	}
	limit, offset = domain.ClampPage(limit, offset)

	page, err := h.svc.List(c.Request.Context(), domain.ListFilters{
		Search:    c.Query("q"),
		Sort:      sortKey,
		TimeRange: timeRange,
	}, limit, offset)
	if err != nil {
		writeError(c, "list stacks", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":     true,
		"stacks": page.Stacks,
		"total":  page.Total,
		"limit":  limit,
		"offset": offset,
	})
}

func (h *Handler) featured(c *gin.Context) {
	limit, ok := intQuery(c, "limit")
	if !ok {
		return
	}
	stacks, err := h.svc.GetFeatured(c.Request.Context(), limit)
	if err != nil {
		writeError(c, "featured stacks", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "stacks": stacks})
}

func (h *Handler) get(c *gin.Context) {
	stack, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, "get stack", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "stack": stack})
}

func (h *Handler) view(c *gin.Context) {
	views, err := h.svc.IncrementView(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, "increment view", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "view_count": views})
}

func (h *Handler) viewer(c *gin.Context) {
	st, err := h.svc.ViewerState(c.Request.Context(), c.Param("id"), auth.UserDBID(c))
	if err != nil {
		writeError(c, "viewer state", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "liked": st.Liked, "saved": st.Saved})
}

type createReq struct {
	Name        string   `json:"name" binding:"required,max=120"`
	Description *string  `json:"description" binding:"omitempty,max=2000"`
	ToolIDs     []string `json:"tool_ids" binding:"max=50,dive,required"`
	IsPublic    *bool    `json:"is_public"`
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		badRequest(c, "name is required")
		return
	}

	stack, err := h.svc.Create(c.Request.Context(), domain.NewStack{
		CuratorID:   auth.UserDBID(c),
		Name:        name,
		Description: req.Description,
		ToolIDs:     req.ToolIDs,
		IsPublic:    req.IsPublic,
	})
	if err != nil {
		writeError(c, "create stack", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "stack": stack})
}

type updateReq struct {
	Name        *string   `json:"name" binding:"omitempty,max=120"`
	Description *string   `json:"description" binding:"omitempty,max=2000"`
	IsPublic    *bool     `json:"is_public"`
	ToolIDs     *[]string `json:"tool_ids" binding:"omitempty,max=50,dive,required"`
}

func (h *Handler) update(c *gin.Context) {
	var req updateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			badRequest(c, "name cannot be blank")
			return
		}
		req.Name = &name
	}

	upd := domain.StackUpdate{Name: req.Name, Description: req.Description, IsPublic: req.IsPublic}
	if req.ToolIDs != nil {
		upd.ToolIDs = append([]string{}, (*req.ToolIDs)...)
	}

	stack, err := h.svc.Update(c.Request.Context(), c.Param("id"), auth.UserDBID(c), upd)
	if err != nil {
		writeError(c, "update stack", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "stack": stack})
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), auth.UserDBID(c)); err != nil {
		writeError(c, "delete stack", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) like(c *gin.Context) {
	res, err := h.svc.ToggleLike(c.Request.Context(), c.Param("id"), auth.UserDBID(c))
	if err != nil {
		writeError(c, "toggle like", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "liked": res.Active, "like_count": res.Count})
}

func (h *Handler) save(c *gin.Context) {
	res, err := h.svc.ToggleSave(c.Request.Context(), c.Param("id"), auth.UserDBID(c))
	if err != nil {
		writeError(c, "toggle save", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "saved": res.Active, "save_count": res.Count})
}

func (h *Handler) fork(c *gin.Context) {
	stack, err := h.svc.Fork(c.Request.Context(), c.Param("id"), auth.UserDBID(c))
	if err != nil {
		writeError(c, "fork stack", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "stack": stack})
}

func (h *Handler) mine(c *gin.Context) {
	stacks, err := h.svc.ListByCurator(c.Request.Context(), auth.UserDBID(c))
	if err != nil {
		writeError(c, "my stacks", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "stacks": stacks})
}

func (h *Handler) saved(c *gin.Context) {
	stacks, err := h.svc.ListSaved(c.Request.Context(), auth.UserDBID(c))
	if err != nil {
		writeError(c, "saved stacks", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "stacks": stacks})
}

// intQuery parses an optional integer query parameter. It writes a 400 and
// returns false when the value is not a number.
func intQuery(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		badRequest(c, name+" must be an integer")
		return 0, false
	}
	return n, true
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": msg})
}

func writeError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFoundOrUnauthorized), errors.Is(err, domain.ErrStackNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "stack not found"})
	case errors.Is(err, domain.ErrReferentialFailure):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"ok": false, "error": err.Error()})
	case errors.Is(err, domain.ErrInvalidFilter):
		badRequest(c, err.Error())
	default:
		logging.FromContext(c.Request.Context()).Error(op, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "failed to " + op})
	}
}
