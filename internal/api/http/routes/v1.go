package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/vibestack/vibestack-backend/internal/api/http/middleware"
	"github.com/vibestack/vibestack-backend/internal/auth"
	authhttp "github.com/vibestack/vibestack-backend/internal/auth/http"
	cataloghttp "github.com/vibestack/vibestack-backend/internal/catalog/http"
	rechttp "github.com/vibestack/vibestack-backend/internal/recommendation/http"
	"github.com/vibestack/vibestack-backend/internal/recommendation/engine"
	stackshttp "github.com/vibestack/vibestack-backend/internal/stacks/http"
)

// CatalogStore is the tool catalog as both the catalog and recommendation
// handlers read it.
type CatalogStore interface {
	cataloghttp.ToolReader
	rechttp.ToolResolver
}

// UserStore backs identity resolution and the profile routes.
type UserStore interface {
	auth.UserEnsurer
	authhttp.ProfileStore
}

type V1Deps struct {
	Engine   *engine.Engine
	Tools    CatalogStore
	Stacks   stackshttp.Service
	Users    UserStore
	Verifier auth.TokenVerifier
	Limiter  middleware.Limiter
}

func RegisterV1(r *gin.Engine, dep V1Deps) {
	api := r.Group("/api/v1")
	api.Use(auth.WithUser(dep.Users, dep.Verifier))

	var throttle gin.HandlerFunc
	if dep.Limiter != nil {
		throttle = middleware.RateLimit(dep.Limiter)
	}

	rechttp.New(dep.Engine, dep.Tools).Register(api.Group("/recommendations"))
	cataloghttp.New(dep.Tools).Register(api.Group("/tools"))

	stacks := stackshttp.New(dep.Stacks)
	stacks.Register(api.Group("/stacks"), throttle)

	me := api.Group("/me", auth.RequireUser())
	stacks.RegisterMe(me)
	authhttp.New(dep.Users).Register(me)
}
