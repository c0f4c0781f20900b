package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibestack/vibestack-backend/internal/auth"
	"github.com/vibestack/vibestack-backend/internal/stacks/domain"
)

// fakeService records the last call's arguments and returns canned results.
type fakeService struct {
	err error

	gotFilters domain.ListFilters
	gotLimit   int
	gotOffset  int
	gotNew     domain.NewStack
	gotUpdate  domain.StackUpdate
	gotCaller  string
}

func (f *fakeService) List(_ context.Context, fl domain.ListFilters, limit, offset int) (*domain.StackPage, error) {
	f.gotFilters, f.gotLimit, f.gotOffset = fl, limit, offset
	if f.err != nil {
		return nil, f.err
	}
	return &domain.StackPage{Stacks: []domain.CommunityStack{{ID: "s1", Name: "One"}}, Total: 40}, nil
}

func (f *fakeService) GetFeatured(_ context.Context, limit int) ([]domain.CommunityStack, error) {
	f.gotLimit = limit
	return []domain.CommunityStack{{ID: "f1", IsFeatured: true}}, f.err
}

func (f *fakeService) GetByID(_ context.Context, id string) (*domain.CommunityStack, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.CommunityStack{ID: id}, nil
}

func (f *fakeService) ListByCurator(_ context.Context, curatorID string) ([]domain.CommunityStack, error) {
	f.gotCaller = curatorID
	return []domain.CommunityStack{}, f.err
}

func (f *fakeService) ListSaved(_ context.Context, userID string) ([]domain.CommunityStack, error) {
	f.gotCaller = userID
	return []domain.CommunityStack{}, f.err
}

func (f *fakeService) Create(_ context.Context, in domain.NewStack) (*domain.CommunityStack, error) {
	f.gotNew = in
	if f.err != nil {
		return nil, f.err
	}
	return &domain.CommunityStack{ID: "new", Name: in.Name}, nil
}

func (f *fakeService) Update(_ context.Context, id, callerID string, upd domain.StackUpdate) (*domain.CommunityStack, error) {
	f.gotUpdate, f.gotCaller = upd, callerID
	if f.err != nil {
		return nil, f.err
	}
	return &domain.CommunityStack{ID: id}, nil
}

func (f *fakeService) Delete(_ context.Context, _, callerID string) error {
	f.gotCaller = callerID
	return f.err
}

func (f *fakeService) ToggleLike(_ context.Context, _, userID string) (domain.ToggleResult, error) {
	f.gotCaller = userID
	return domain.ToggleResult{Active: true, Count: 3}, f.err
}

func (f *fakeService) ToggleSave(_ context.Context, _, userID string) (domain.ToggleResult, error) {
	f.gotCaller = userID
	return domain.ToggleResult{Active: false, Count: 0}, f.err
}

func (f *fakeService) Fork(_ context.Context, stackID, userID string) (*domain.CommunityStack, error) {
	f.gotCaller = userID
	if f.err != nil {
		return nil, f.err
	}
	return &domain.CommunityStack{ID: "fork", ForkedFrom: &domain.ForkSource{ID: stackID}}, nil
}

func (f *fakeService) IncrementView(_ context.Context, _ string) (int64, error) {
	return 9, f.err
}

func (f *fakeService) ViewerState(_ context.Context, _, userID string) (domain.ViewerState, error) {
	f.gotCaller = userID
	return domain.ViewerState{Liked: true}, f.err
}

func newRouter(svc Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if uid := c.GetHeader("X-Test-User"); uid != "" {
			c.Set(auth.CtxUserDBID, uid)
		}
		c.Next()
	})
	h := New(svc)
	h.Register(r.Group("/stacks"), nil)
	me := r.Group("/me", auth.RequireUser())
	h.RegisterMe(me)
	return r
}

func call(r *gin.Engine, method, path, user, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestList_ParsesQuery(t *testing.T) {
	svc := &fakeService{}
	r := newRouter(svc)

	w := call(r, http.MethodGet, "/stacks?q=agents&sort=mostSaved&range=month&limit=500&offset=24", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, domain.ListFilters{Search: "agents", Sort: domain.SortMostSaved, TimeRange: domain.RangeMonth}, svc.gotFilters)
	assert.Equal(t, domain.MaxPageSize, svc.gotLimit)
	assert.Equal(t, 24, svc.gotOffset)

	body := decode(t, w)
	assert.Equal(t, float64(40), body["total"])
	assert.Equal(t, true, body["ok"])
}

func TestList_RejectsBadQuery(t *testing.T) {
	r := newRouter(&fakeService{})

	for _, q := range []string{"sort=hot", "range=decade", "limit=ten", "offset=x"} {
		w := call(r, http.MethodGet, "/stacks?"+q, "", "")
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}
}

func TestFeaturedRouteIsNotAnID(t *testing.T) {
	r := newRouter(&fakeService{})

	w := call(r, http.MethodGet, "/stacks/featured?limit=3", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"f1"`)
}

func TestMutationsRequireUser(t *testing.T) {
	r := newRouter(&fakeService{})

	routes := []struct{ method, path string }{
		{http.MethodPost, "/stacks"},
		{http.MethodPatch, "/stacks/s1"},
		{http.MethodDelete, "/stacks/s1"},
		{http.MethodPost, "/stacks/s1/like"},
		{http.MethodPost, "/stacks/s1/save"},
		{http.MethodPost, "/stacks/s1/fork"},
		{http.MethodGet, "/stacks/s1/viewer"},
		{http.MethodGet, "/me/stacks"},
		{http.MethodGet, "/me/saved"},
	}
	for _, rt := range routes {
		w := call(r, rt.method, rt.path, "", `{}`)
		assert.Equal(t, http.StatusUnauthorized, w.Code, fmt.Sprintf("%s %s", rt.method, rt.path))
	}
}

func TestViewIsAnonymous(t *testing.T) {
	r := newRouter(&fakeService{})
	w := call(r, http.MethodPost, "/stacks/s1/view", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(9), decode(t, w)["view_count"])
}

func TestCreate(t *testing.T) {
	svc := &fakeService{}
	r := newRouter(svc)

	w := call(r, http.MethodPost, "/stacks", "u1", `{"name":"Mine","tool_ids":["cursor","claude"],"is_public":false}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "u1", svc.gotNew.CuratorID)
	assert.Equal(t, []string{"cursor", "claude"}, svc.gotNew.ToolIDs)
	require.NotNil(t, svc.gotNew.IsPublic)
	assert.False(t, *svc.gotNew.IsPublic)

	w = call(r, http.MethodPost, "/stacks", "u1", `{"tool_ids":["cursor"]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.err = fmt.Errorf("%w: failed to attach tool ghost", domain.ErrReferentialFailure)
	w = call(r, http.MethodPost, "/stacks", "u1", `{"name":"Mine","tool_ids":["ghost"]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestNameIsTrimmedAndRequired(t *testing.T) {
	svc := &fakeService{}
	r := newRouter(svc)

	w := call(r, http.MethodPost, "/stacks", "u1", `{"name":"  Mine  ","tool_ids":["cursor"]}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Mine", svc.gotNew.Name)

	svc = &fakeService{}
	r = newRouter(svc)
	w = call(r, http.MethodPost, "/stacks", "u1", `{"name":"   ","tool_ids":["cursor"]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, svc.gotNew.CuratorID)

	w = call(r, http.MethodPatch, "/stacks/s1", "u1", `{"name":" "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, svc.gotUpdate.Name)

	w = call(r, http.MethodPatch, "/stacks/s1", "u1", `{"name":" Renamed "}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Renamed", *svc.gotUpdate.Name)
}

func TestUpdate_ToolSetSemantics(t *testing.T) {
	svc := &fakeService{}
	r := newRouter(svc)

	w := call(r, http.MethodPatch, "/stacks/s1", "u1", `{"name":"New"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, svc.gotUpdate.ToolIDs)
	assert.Equal(t, "New", *svc.gotUpdate.Name)

	w = call(r, http.MethodPatch, "/stacks/s1", "u1", `{"tool_ids":[]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotNil(t, svc.gotUpdate.ToolIDs)
	assert.Empty(t, svc.gotUpdate.ToolIDs)
}

func TestOwnershipFailureIs404(t *testing.T) {
	svc := &fakeService{err: domain.ErrNotFoundOrUnauthorized}
	r := newRouter(svc)

	w := call(r, http.MethodPatch, "/stacks/s1", "intruder", `{"name":"x"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = call(r, http.MethodDelete, "/stacks/s1", "intruder", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "intruder", svc.gotCaller)
}

func TestToggleResponses(t *testing.T) {
	r := newRouter(&fakeService{})

	body := decode(t, call(r, http.MethodPost, "/stacks/s1/like", "u1", ""))
	assert.Equal(t, true, body["liked"])
	assert.Equal(t, float64(3), body["like_count"])

	body = decode(t, call(r, http.MethodPost, "/stacks/s1/save", "u1", ""))
	assert.Equal(t, false, body["saved"])
	assert.Equal(t, float64(0), body["save_count"])
}

func TestFork(t *testing.T) {
	svc := &fakeService{}
	r := newRouter(svc)

	w := call(r, http.MethodPost, "/stacks/s1/fork", "u2", "")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "u2", svc.gotCaller)
	assert.Contains(t, w.Body.String(), `"forked_from":{"id":"s1"`)
}

func TestMeRoutes(t *testing.T) {
	svc := &fakeService{}
	r := newRouter(svc)

	w := call(r, http.MethodGet, "/me/saved", "u7", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u7", svc.gotCaller)
	assert.Contains(t, w.Body.String(), `"stacks":[]`)
}

func TestUnexpectedErrorIs500(t *testing.T) {
	r := newRouter(&fakeService{err: errors.New("connection reset")})

	w := call(r, http.MethodGet, "/stacks/s1", "", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection reset")
}
