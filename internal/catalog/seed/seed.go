// Package seed holds the default tool catalog shipped with the binary.
package seed

import (
	"context"
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/vibestack/vibestack-backend/internal/catalog/domain"
)

//go:embed tools.yaml
var defaultTools []byte

type toolFile struct {
	Tools []domain.Tool `yaml:"tools"`
}

// Upserter is the write side of the tool catalog.
type Upserter interface {
	Upsert(ctx context.Context, tools []domain.Tool) error
}

// Tools parses the embedded catalog.
func Tools() ([]domain.Tool, error) {
	return Parse(defaultTools)
}

func Parse(b []byte) ([]domain.Tool, error) {
	var f toolFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse tool catalog: %w", err)
	}
	seen := make(map[string]struct{}, len(f.Tools))
	for _, t := range f.Tools {
		if t.ID == "" || t.Title == "" {
			return nil, fmt.Errorf("tool entry missing id or title: %+v", t)
		}
		if _, dup := seen[t.ID]; dup {
			return nil, fmt.Errorf("duplicate tool id %q", t.ID)
		}
		seen[t.ID] = struct{}{}
	}
	return f.Tools, nil
}

// Run upserts the embedded catalog and returns the number of tools written.
func Run(ctx context.Context, repo Upserter) (int, error) {
	tools, err := Tools()
	if err != nil {
		return 0, err
	}
	if err := repo.Upsert(ctx, tools); err != nil {
		return 0, err
	}
	return len(tools), nil
}
