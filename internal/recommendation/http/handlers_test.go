package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogdomain "github.com/vibestack/vibestack-backend/internal/catalog/domain"
	"github.com/vibestack/vibestack-backend/internal/recommendation/domain"
	"github.com/vibestack/vibestack-backend/internal/recommendation/engine"
)

type fakeResolver struct {
	known map[string]catalogdomain.Tool
	err   error
}

func (f *fakeResolver) GetBySlugs(_ context.Context, slugs []string) ([]catalogdomain.Tool, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []catalogdomain.Tool
	for _, s := range slugs {
		if t, ok := f.known[s]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

type recommendResp struct {
	OK             bool                       `json:"ok"`
	Recommendation domain.StackRecommendation `json:"recommendation"`
	Tools          []catalogdomain.Tool       `json:"tools"`
}

func serve(t *testing.T, tools ToolResolver, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	New(engine.Default(), tools).Register(r.Group("/recommendations"))

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(rr, req)
	return rr
}

func TestRecommend_ResolvesTools(t *testing.T) {
	resolver := &fakeResolver{known: map[string]catalogdomain.Tool{
		"v0": {ID: "v0", Title: "v0"},
	}}

	rr := serve(t, resolver, http.MethodPost, "/recommendations",
		`{"answers":{"goal":"ui","experience":"beginner","favorite_color":"blue"}}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp recommendResp
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Equal(t, "The Magic Wand Stack", resp.Recommendation.Name)
	require.Len(t, resp.Tools, 1, "unknown slugs are skipped")
	assert.Equal(t, "v0", resp.Tools[0].ID)
}

func TestRecommend_EmptyAnswersGetUniversal(t *testing.T) {
	rr := serve(t, nil, http.MethodPost, "/recommendations", `{}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp recommendResp
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "The Universal Stack", resp.Recommendation.Name)
	assert.Nil(t, resp.Tools)
}

func TestRecommend_ResolverFailureStillRecommends(t *testing.T) {
	rr := serve(t, &fakeResolver{err: errors.New("db down")}, http.MethodPost, "/recommendations",
		`{"answers":{"goal":"research"}}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp recommendResp
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "The Research Stack", resp.Recommendation.Name)
}

func TestRecommend_InvalidBody(t *testing.T) {
	rr := serve(t, nil, http.MethodPost, "/recommendations", `{"answers": [1,2]}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestBundles(t *testing.T) {
	rr := serve(t, nil, http.MethodGet, "/recommendations/bundles", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Bundles []domain.StackRecommendation `json:"bundles"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Len(t, resp.Bundles, len(domain.RequiredBundles))
}
