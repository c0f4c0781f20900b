package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/vibestack/vibestack-backend/internal/catalog/domain"
)

// ToolRepository reads the tool catalog from PostgreSQL.
type ToolRepository struct {
	db *sql.DB
}

func NewToolRepository(db *sql.DB) *ToolRepository {
	return &ToolRepository{db: db}
}

const toolColumns = `id, title, category, pricing, description, url`

// List returns every tool, optionally restricted to one category.
func (r *ToolRepository) List(ctx context.Context, category string) ([]domain.Tool, error) {
	q := `
SELECT ` + toolColumns + `
FROM tools
WHERE ($1 = '' OR category = $1)
ORDER BY title ASC;
`
	rows, err := r.db.QueryContext(ctx, q, category)
	if err != nil {
		return nil, fmt.Errorf("failed to list tools: %w", err)
	}
	defer rows.Close()

	return scanTools(rows)
}

func (r *ToolRepository) GetBySlug(ctx context.Context, slug string) (*domain.Tool, error) {
	q := `SELECT ` + toolColumns + ` FROM tools WHERE id = $1;`

	var t domain.Tool
	var desc, url sql.NullString
	err := r.db.QueryRowContext(ctx, q, slug).
		Scan(&t.ID, &t.Title, &t.Category, &t.Pricing, &desc, &url)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrToolNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tool: %w", err)
	}
	t.Description = desc.String
	t.URL = url.String
	return &t, nil
}

// GetBySlugs resolves slugs in the order given. Unknown slugs are skipped.
func (r *ToolRepository) GetBySlugs(ctx context.Context, slugs []string) ([]domain.Tool, error) {
	if len(slugs) == 0 {
		return []domain.Tool{}, nil
	}

	q := `SELECT ` + toolColumns + ` FROM tools WHERE id = ANY($1);`
	rows, err := r.db.QueryContext(ctx, q, pq.Array(slugs))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve tools: %w", err)
	}
	defer rows.Close()

	found, err := scanTools(rows)
	if err != nil {
		return nil, err
	}

	bySlug := make(map[string]domain.Tool, len(found))
	for _, t := range found {
		bySlug[t.ID] = t
	}
	out := make([]domain.Tool, 0, len(slugs))
	for _, s := range slugs {
		if t, ok := bySlug[s]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

// Upsert inserts or refreshes catalog entries in a single transaction.
func (r *ToolRepository) Upsert(ctx context.Context, tools []domain.Tool) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const q = `
INSERT INTO tools (id, title, category, pricing, description, url)
VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''))
ON CONFLICT (id) DO UPDATE SET
	title = EXCLUDED.title,
	category = EXCLUDED.category,
	pricing = EXCLUDED.pricing,
	description = EXCLUDED.description,
	url = EXCLUDED.url,
	updated_at = NOW();
`
	for _, t := range tools {
		if _, err := tx.ExecContext(ctx, q, t.ID, t.Title, t.Category, t.Pricing, t.Description, t.URL); err != nil {
			return fmt.Errorf("failed to upsert tool %s: %w", t.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tools: %w", err)
	}
	return nil
}

func scanTools(rows *sql.Rows) ([]domain.Tool, error) {
	out := make([]domain.Tool, 0, 16)
	for rows.Next() {
		var t domain.Tool
		var desc, url sql.NullString
		if err := rows.Scan(&t.ID, &t.Title, &t.Category, &t.Pricing, &desc, &url); err != nil {
			return nil, err
		}
		t.Description = desc.String
		t.URL = url.String
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
