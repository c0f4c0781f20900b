package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibestack/vibestack-backend/internal/stacks/domain"
)

func setupCache(t *testing.T, ttl time.Duration) (*PageCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewPageCache(client, ttl), mr
}

func TestPageCache_GetSet(t *testing.T) {
	c, mr := setupCache(t, time.Minute)
	ctx := context.Background()

	page, err := c.Get(ctx, "list:sort=newest")
	require.NoError(t, err)
	assert.Nil(t, page)

	want := &domain.StackPage{
		Stacks: []domain.CommunityStack{{ID: "s1", Name: "One", Tools: []domain.ToolRef{{ID: "cursor"}}}},
		Total:  7,
	}
	require.NoError(t, c.Set(ctx, "list:sort=newest", want))
	assert.True(t, mr.Exists("vibestack:stacks:list:sort=newest"))

	got, err := c.Get(ctx, "list:sort=newest")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 7, got.Total)
	assert.Equal(t, "cursor", got.Stacks[0].Tools[0].ID)
}

func TestPageCache_Expires(t *testing.T) {
	c, mr := setupCache(t, 30*time.Second)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "featured", &domain.StackPage{Total: 1}))
	mr.FastForward(31 * time.Second)

	got, err := c.Get(ctx, "featured")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPageCache_Purge(t *testing.T) {
	c, mr := setupCache(t, time.Minute)
	ctx := context.Background()

	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, c.Set(ctx, k, &domain.StackPage{}))
	}
	require.NoError(t, mr.Set("unrelated", "x"))

	n, err := c.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.True(t, mr.Exists("unrelated"))
	assert.False(t, mr.Exists("vibestack:stacks:a"))
}

func TestPageCache_CorruptEntry(t *testing.T) {
	c, mr := setupCache(t, time.Minute)
	require.NoError(t, mr.Set("vibestack:stacks:bad", "{not json"))

	_, err := c.Get(context.Background(), "bad")
	assert.Error(t, err)
}
