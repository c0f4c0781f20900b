package auth

import (
	"context"
	"net/http"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vibestack/vibestack-backend/internal/logging"
	"github.com/vibestack/vibestack-backend/internal/users"
)

// UserEnsurer maps a Firebase identity to a users row.
type UserEnsurer interface {
	EnsureUser(ctx context.Context, u users.UpsertUser) (string, error)
}

// TokenVerifier checks Firebase ID tokens. *auth.Client satisfies it.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// WithUser resolves the caller and stores both ids in the context.
// With a verifier, a Bearer token is required to identify the caller; without
// one (local development) the X-User-Id header is trusted. Requests with no
// identity continue anonymously; RequireUser rejects them where needed.
func WithUser(repo UserEnsurer, verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		var u users.UpsertUser

		if verifier != nil {
			token := extractToken(c)
			if token == "" {
				c.Next()
				return
			}
			decoded, err := verifier.VerifyIDToken(c.Request.Context(), token)
			if err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "invalid token"})
				c.Abort()
				return
			}
			u.FirebaseUID = decoded.UID
			u.Email, _ = decoded.Claims["email"].(string)
			u.DisplayName, _ = decoded.Claims["name"].(string)
			u.PhotoURL, _ = decoded.Claims["picture"].(string)
		} else {
			u.FirebaseUID = strings.TrimSpace(c.GetHeader("X-User-Id"))
			if u.FirebaseUID == "" {
				c.Next()
				return
			}
			u.Email = c.GetHeader("X-User-Email")
			u.DisplayName = c.GetHeader("X-User-Name")
			u.PhotoURL = c.GetHeader("X-User-Photo")
		}

		uid, err := repo.EnsureUser(c.Request.Context(), u)
		if err != nil {
			logging.FromContext(c.Request.Context()).Error("ensure user failed",
				zap.String("firebase_uid", u.FirebaseUID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "ensure user failed"})
			c.Abort()
			return
		}

		c.Set(CtxFirebaseUID, u.FirebaseUID)
		c.Set(CtxUserDBID, uid)
		if u.Email != "" {
			c.Set(CtxEmail, u.Email)
		}
		c.Next()
	}
}

// RequireUser aborts with 401 unless WithUser identified the caller.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if UserDBID(c) == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "authentication required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// extractToken extracts the Bearer token from the Authorization header
func extractToken(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	if len(bearerToken) > 7 && strings.HasPrefix(bearerToken, "Bearer ") {
		return strings.TrimSpace(bearerToken[7:])
	}
	return ""
}
