package bootstrap

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vibestack/vibestack-backend/internal/api/http/routes"
	"github.com/vibestack/vibestack-backend/internal/recommendation/engine"
)

func testRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return BuildRouter(RouterDeps{
		ServiceName:    "vibestack-api",
		Version:        "test",
		AllowedOrigins: []string{"https://vibestack.dev"},
		Logger:         zap.NewNop(),
		V1:             routes.V1Deps{Engine: engine.Default()},
	})
}

func TestBuildRouter_Health(t *testing.T) {
	w := httptest.NewRecorder()
	testRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
}

func TestBuildRouter_CORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/stacks", nil)
	req.Header.Set("Origin", "https://vibestack.dev")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	testRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://vibestack.dev", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestBuildRouter_MountsV1(t *testing.T) {
	r := testRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/recommendations/bundles", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/me/stacks", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
