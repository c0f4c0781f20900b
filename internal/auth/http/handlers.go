package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vibestack/vibestack-backend/internal/auth"
	"github.com/vibestack/vibestack-backend/internal/logging"
	"github.com/vibestack/vibestack-backend/internal/users"
)

// ProfileStore reads and edits the caller's curator profile.
type ProfileStore interface {
	Get(ctx context.Context, id string) (*users.User, error)
	UpdateProfile(ctx context.Context, id string, displayName, photoURL *string) (*users.User, error)
}

type Handler struct {
	users ProfileStore
}

func New(users ProfileStore) *Handler {
	return &Handler{users: users}
}

// Register expects WithUser and RequireUser to run before these routes.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/profile", h.GetProfile)
	rg.PATCH("/profile", h.UpdateProfile)
}

// GetProfile returns the current user's profile
func (h *Handler) GetProfile(c *gin.Context) {
	user, err := h.users.Get(c.Request.Context(), auth.UserDBID(c))
	h.reply(c, user, err)
}

type updateProfileReq struct {
	DisplayName *string `json:"display_name" binding:"omitempty,max=80"`
	PhotoURL    *string `json:"photo_url" binding:"omitempty,max=2048"`
}

// UpdateProfile changes the display name and avatar shown on the caller's stacks.
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req updateProfileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid request body"})
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), auth.UserDBID(c), req.DisplayName, req.PhotoURL)
	h.reply(c, user, err)
}

func (h *Handler) reply(c *gin.Context, user *users.User, err error) {
	if errors.Is(err, users.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "user not found"})
		return
	}
	if err != nil {
		logging.FromContext(c.Request.Context()).Error("profile", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "failed to load profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": user})
}
