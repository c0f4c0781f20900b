package seed

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibestack/vibestack-backend/internal/catalog/domain"
	"github.com/vibestack/vibestack-backend/internal/recommendation/engine"
)

type recordingUpserter struct {
	got []domain.Tool
	err error
}

func (r *recordingUpserter) Upsert(_ context.Context, tools []domain.Tool) error {
	r.got = tools
	return r.err
}

func TestTools_CoverEveryBundleSlug(t *testing.T) {
	tools, err := Tools()
	require.NoError(t, err)

	known := make(map[string]bool, len(tools))
	for _, tool := range tools {
		known[tool.ID] = true
	}

	for _, b := range engine.Default().Bundles() {
		for _, slug := range b.Tools {
			assert.True(t, known[slug], "bundle %s references %s which is not in the seed catalog", b.ID, slug)
		}
	}
}

func TestParse_Rejects(t *testing.T) {
	_, err := Parse([]byte("tools:\n  - id: a\n    title: A\n  - id: a\n    title: B\n"))
	assert.ErrorContains(t, err, "duplicate")

	_, err = Parse([]byte("tools:\n  - title: nameless\n"))
	assert.ErrorContains(t, err, "missing id")
}

func TestRun(t *testing.T) {
	up := &recordingUpserter{}
	n, err := Run(context.Background(), up)
	require.NoError(t, err)
	assert.Equal(t, len(up.got), n)
	assert.NotZero(t, n)

	_, err = Run(context.Background(), &recordingUpserter{err: errors.New("db down")})
	assert.Error(t, err)
}
