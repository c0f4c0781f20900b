package service

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/vibestack/vibestack-backend/internal/logging"
	"github.com/vibestack/vibestack-backend/internal/stacks/domain"
)

// Store is the persistence the service reads and writes through.
type Store interface {
	List(ctx context.Context, f domain.ListFilters, limit, offset int) ([]domain.CommunityStack, int, error)
	Featured(ctx context.Context, limit int) ([]domain.CommunityStack, error)
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

// PageCache holds listing pages for a bounded time. Get returns nil on a miss.
type PageCache interface {
	Get(ctx context.Context, key string) (*domain.StackPage, error)
	Set(ctx context.Context, key string, page *domain.StackPage) error
	Purge(ctx context.Context) (int, error)
}

// DefaultFeaturedLimit is used when GetFeatured is asked for zero or fewer stacks.
const DefaultFeaturedLimit = 6

type StackService struct {
	store Store
	cache PageCache
}

// NewStackService builds the service. cache may be nil, in which case every
// read goes to the store.
func NewStackService(store Store, cache PageCache) *StackService {
	return &StackService{store: store, cache: cache}
}

// List returns one page of public stacks plus the size of the full matching set.
func (s *StackService) List(ctx context.Context, f domain.ListFilters, limit, offset int) (*domain.StackPage, error) {
	f = f.Normalize()
	limit, offset = domain.ClampPage(limit, offset)

	key := listKey(f, limit, offset)
	if page := s.cached(ctx, key); page != nil {
		return page, nil
	}

	page, err := s.loadList(ctx, f, limit, offset)
	if err != nil {
		return nil, err
	}
	s.fillCache(ctx, key, page)
	return page, nil
}

func (s *StackService) loadList(ctx context.Context, f domain.ListFilters, limit, offset int) (*domain.StackPage, error) {
	stacks, total, err := s.store.List(ctx, f, limit, offset)
	if err != nil {
		return nil, err
	}
	if f.Sort == domain.SortPopular {
		sortPopular(stacks)
	}
	return &domain.StackPage{Stacks: nonNil(stacks), Total: total}, nil
}

// sortPopular orders by popularity score, keeping the store order for ties.
func sortPopular(stacks []domain.CommunityStack) {
	sort.SliceStable(stacks, func(i, j int) bool {
		return stacks[i].PopularityScore() > stacks[j].PopularityScore()
	})
}

// GetFeatured returns featured public stacks by rank.
func (s *StackService) GetFeatured(ctx context.Context, limit int) ([]domain.CommunityStack, error) {
	if limit <= 0 {
		limit = DefaultFeaturedLimit
	}
	if limit > domain.MaxPageSize {
		limit = domain.MaxPageSize
	}

	key := featuredKey(limit)
	if page := s.cached(ctx, key); page != nil {
		return page.Stacks, nil
	}

	stacks, err := s.store.Featured(ctx, limit)
	if err != nil {
		return nil, err
	}
	stacks = nonNil(stacks)
	s.fillCache(ctx, key, &domain.StackPage{Stacks: stacks, Total: len(stacks)})
	return stacks, nil
}

func (s *StackService) GetByID(ctx context.Context, id string) (*domain.CommunityStack, error) {
	return s.store.GetByID(ctx, id)
}

func (s *StackService) ListByCurator(ctx context.Context, curatorID string) ([]domain.CommunityStack, error) {
	stacks, err := s.store.ListByCurator(ctx, curatorID)
	return nonNil(stacks), err
}

func (s *StackService) ListSaved(ctx context.Context, userID string) ([]domain.CommunityStack, error) {
	stacks, err := s.store.ListSaved(ctx, userID)
	return nonNil(stacks), err
}

// Create stores a new stack. Repeated tool ids keep their first position.
func (s *StackService) Create(ctx context.Context, in domain.NewStack) (*domain.CommunityStack, error) {
	in.ToolIDs = dedupe(in.ToolIDs)
	if in.IsPublic == nil {
		public := true
		in.IsPublic = &public
	}
	return s.store.Create(ctx, in)
}

func (s *StackService) Update(ctx context.Context, id, callerID string, upd domain.StackUpdate) (*domain.CommunityStack, error) {
	if upd.ToolIDs != nil {
		upd.ToolIDs = dedupe(upd.ToolIDs)
	}
	return s.store.Update(ctx, id, callerID, upd)
}

func (s *StackService) Delete(ctx context.Context, id, callerID string) error {
	return s.store.Delete(ctx, id, callerID)
}

func (s *StackService) ToggleLike(ctx context.Context, stackID, userID string) (domain.ToggleResult, error) {
	return s.store.ToggleLike(ctx, stackID, userID)
}

func (s *StackService) ToggleSave(ctx context.Context, stackID, userID string) (domain.ToggleResult, error) {
	return s.store.ToggleSave(ctx, stackID, userID)
}

func (s *StackService) Fork(ctx context.Context, stackID, userID string) (*domain.CommunityStack, error) {
	return s.store.Fork(ctx, stackID, userID)
}

func (s *StackService) IncrementView(ctx context.Context, stackID string) (int64, error) {
	return s.store.IncrementView(ctx, stackID)
}

func (s *StackService) ViewerState(ctx context.Context, stackID, userID string) (domain.ViewerState, error) {
	return s.store.ViewerState(ctx, stackID, userID)
}

// WarmCache recomputes the featured list and the first popular page and
// overwrites their cache entries.
func (s *StackService) WarmCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}

	featured, err := s.store.Featured(ctx, DefaultFeaturedLimit)
	if err != nil {
		return fmt.Errorf("warm featured: %w", err)
	}
	featured = nonNil(featured)
	if err := s.cache.Set(ctx, featuredKey(DefaultFeaturedLimit), &domain.StackPage{Stacks: featured, Total: len(featured)}); err != nil {
		return err
	}

	f := domain.ListFilters{}.Normalize()
	page, err := s.loadList(ctx, f, domain.DefaultPageSize, 0)
	if err != nil {
		return fmt.Errorf("warm popular: %w", err)
	}
	return s.cache.Set(ctx, listKey(f, domain.DefaultPageSize, 0), page)
}

// PurgeCache drops all cached listings.
func (s *StackService) PurgeCache(ctx context.Context) (int, error) {
	if s.cache == nil {
		return 0, nil
	}
	return s.cache.Purge(ctx)
}

func (s *StackService) cached(ctx context.Context, key string) *domain.StackPage {
	if s.cache == nil {
		return nil
	}
	page, err := s.cache.Get(ctx, key)
	if err != nil {
		logging.FromContext(ctx).Warn("stack cache read failed", zap.String("key", key), zap.Error(err))
		return nil
	}
	return page
}

func (s *StackService) fillCache(ctx context.Context, key string, page *domain.StackPage) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, page); err != nil {
		logging.FromContext(ctx).Warn("stack cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// listKey is stable for equal inputs; url.Values encodes keys sorted.
func listKey(f domain.ListFilters, limit, offset int) string {
	v := url.Values{}
	v.Set("q", strings.ToLower(f.Search))
	v.Set("sort", string(f.Sort))
	v.Set("range", string(f.TimeRange))
	v.Set("limit", strconv.Itoa(limit))
	v.Set("offset", strconv.Itoa(offset))
	return "list:" + v.Encode()
}

func featuredKey(limit int) string {
	return "featured:" + strconv.Itoa(limit)
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func nonNil(stacks []domain.CommunityStack) []domain.CommunityStack {
	if stacks == nil {
		return []domain.CommunityStack{}
	}
	return stacks
}
