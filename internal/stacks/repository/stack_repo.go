package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/vibestack/vibestack-backend/internal/stacks/domain"
)

// PostgreSQL error codes the repository translates.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgInvalidTextRep      = "22P02"
)

// Join tables for the two social toggles.
const (
	likesTable = "stack_likes"
	savesTable = "stack_saves"
)

const stackColumns = `
SELECT s.id, s.name, s.description, s.is_public, s.is_featured, s.featured_order, s.view_count,
       s.created_at, s.updated_at,
       u.id, COALESCE(u.display_name, ''), COALESCE(u.photo_url, ''),
       (SELECT COUNT(*) FROM stack_likes l WHERE l.stack_id = s.id) AS like_count,
       (SELECT COUNT(*) FROM stack_saves v WHERE v.stack_id = s.id) AS save_count,
       f.id, f.name`

const stackFrom = `
FROM community_stacks s
JOIN users u ON u.id = s.curator_id
LEFT JOIN community_stacks f ON f.id = s.forked_from_id`

// StackRepository stores community stacks in PostgreSQL. Like and save counts
// are counted from the join tables on every read.
type StackRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewStackRepository(db *sql.DB) *StackRepository {
	return &StackRepository{db: db, now: time.Now}
}

// List returns one window of public stacks and the count of all matches.
// Popular ordering is left to the caller; the store returns newest first for it.
func (r *StackRepository) List(ctx context.Context, f domain.ListFilters, limit, offset int) ([]domain.CommunityStack, int, error) {
	where, args := listWhere(f.Normalize(), r.now())

	var total int
	countQ := `SELECT COUNT(*) FROM community_stacks s JOIN users u ON u.id = s.curator_id WHERE ` + where
	if err := r.db.QueryRowContext(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count stacks: %w", err)
	}

	args = append(args, limit, offset)
	q := fmt.Sprintf(`%s %s WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		stackColumns, stackFrom, where, listOrder(f.Sort), len(args)-1, len(args))

	stacks, err := r.queryStacks(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list stacks: %w", err)
	}
	return stacks, total, nil
}

func listWhere(f domain.ListFilters, now time.Time) (string, []any) {
	conds := []string{"s.is_public = true"}
	var args []any

	if f.Search != "" {
		args = append(args, "%"+escapeLike(f.Search)+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(s.name ILIKE $%d OR s.description ILIKE $%d OR u.display_name ILIKE $%d)", n, n, n))
	}
	if since, ok := f.TimeRange.Since(now); ok {
		args = append(args, since)
		conds = append(conds, fmt.Sprintf("s.created_at >= $%d", len(args)))
	}
	return strings.Join(conds, " AND "), args
}

func listOrder(k domain.SortKey) string {
	switch k {
	case domain.SortMostSaved:
		return "save_count DESC, s.created_at DESC, s.id"
	case domain.SortMostViewed:
		return "s.view_count DESC, s.created_at DESC, s.id"
	default:
		return "s.created_at DESC, s.id"
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// Featured returns featured public stacks by curator-assigned rank.
func (r *StackRepository) Featured(ctx context.Context, limit int) ([]domain.CommunityStack, error) {
	q := stackColumns + stackFrom + `
WHERE s.is_featured = true AND s.is_public = true
ORDER BY s.featured_order ASC NULLS LAST, s.created_at DESC
LIMIT $1`
	stacks, err := r.queryStacks(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list featured stacks: %w", err)
	}
	return stacks, nil
}

// GetByID returns a stack whatever its visibility.
func (r *StackRepository) GetByID(ctx context.Context, id string) (*domain.CommunityStack, error) {
	return r.getByID(ctx, r.db, id)
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (r *StackRepository) getByID(ctx context.Context, db queryer, id string) (*domain.CommunityStack, error) {
	stacks, err := r.queryStacksWith(ctx, db, stackColumns+stackFrom+`
WHERE s.id = $1`, id)
	if isPgCode(err, pgInvalidTextRep) {
		return nil, domain.ErrStackNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stack: %w", err)
	}
	if len(stacks) == 0 {
		return nil, domain.ErrStackNotFound
	}
	return &stacks[0], nil
}

// ListByCurator returns all of a curator's stacks, private ones included.
func (r *StackRepository) ListByCurator(ctx context.Context, curatorID string) ([]domain.CommunityStack, error) {
	stacks, err := r.queryStacks(ctx, stackColumns+stackFrom+`
WHERE s.curator_id = $1
ORDER BY s.updated_at DESC, s.id`, curatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list curator stacks: %w", err)
	}
	return stacks, nil
}

// ListSaved returns the stacks a user saved, newest save first. Private stacks
// only show up for their own curator.
func (r *StackRepository) ListSaved(ctx context.Context, userID string) ([]domain.CommunityStack, error) {
	stacks, err := r.queryStacks(ctx, stackColumns+stackFrom+`
JOIN stack_saves sv ON sv.stack_id = s.id AND sv.user_id = $1
WHERE (s.is_public = true OR s.curator_id = $1)
ORDER BY sv.created_at DESC, s.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list saved stacks: %w", err)
	}
	return stacks, nil
}

// Create inserts a stack and its tool set in one transaction.
func (r *StackRepository) Create(ctx context.Context, in domain.NewStack) (*domain.CommunityStack, error) {
	isPublic := true
	if in.IsPublic != nil {
		isPublic = *in.IsPublic
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	id := uuid.New().String()
	const q = `
INSERT INTO community_stacks (id, curator_id, name, description, is_public)
VALUES ($1, $2, $3, $4, $5);
`
	if _, err := tx.ExecContext(ctx, q, id, in.CuratorID, in.Name, nullString(in.Description), isPublic); err != nil {
		return nil, translate(err, "failed to create stack")
	}
	if err := insertTools(ctx, tx, id, in.ToolIDs); err != nil {
		return nil, err
	}

	stack, err := r.getByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit stack: %w", err)
	}
	return stack, nil
}

// Update applies a partial update when callerID is the curator.
func (r *StackRepository) Update(ctx context.Context, id, callerID string, upd domain.StackUpdate) (*domain.CommunityStack, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const q = `
UPDATE community_stacks SET
	name = COALESCE($3::text, name),
	description = CASE WHEN $4::boolean THEN NULLIF($5::text, '') ELSE description END,
	is_public = COALESCE($6::boolean, is_public),
	updated_at = NOW()
WHERE id = $1 AND curator_id = $2;
`
	var name, desc sql.NullString
	var public sql.NullBool
	if upd.Name != nil {
		name = sql.NullString{String: *upd.Name, Valid: true}
	}
	if upd.Description != nil {
		desc = sql.NullString{String: *upd.Description, Valid: true}
	}
	if upd.IsPublic != nil {
		public = sql.NullBool{Bool: *upd.IsPublic, Valid: true}
	}

	res, err := tx.ExecContext(ctx, q, id, callerID, name, upd.Description != nil, desc, public)
	if isPgCode(err, pgInvalidTextRep) {
		return nil, domain.ErrNotFoundOrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update stack: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, err
	} else if n == 0 {
		return nil, domain.ErrNotFoundOrUnauthorized
	}

	if upd.ToolIDs != nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM stack_tools WHERE stack_id = $1;`, id); err != nil {
			return nil, fmt.Errorf("failed to clear stack tools: %w", err)
		}
		if err := insertTools(ctx, tx, id, upd.ToolIDs); err != nil {
			return nil, err
		}
	}

	stack, err := r.getByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit stack update: %w", err)
	}
	return stack, nil
}

// Delete removes a stack owned by callerID. Likes, saves and tool links
// go with it through ON DELETE CASCADE.
func (r *StackRepository) Delete(ctx context.Context, id, callerID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM community_stacks WHERE id = $1 AND curator_id = $2;`, id, callerID)
	if isPgCode(err, pgInvalidTextRep) {
		return domain.ErrNotFoundOrUnauthorized
	}
	if err != nil {
		return fmt.Errorf("failed to delete stack: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFoundOrUnauthorized
	}
	return nil
}

func (r *StackRepository) ToggleLike(ctx context.Context, stackID, userID string) (domain.ToggleResult, error) {
	return r.toggle(ctx, likesTable, stackID, userID)
}

func (r *StackRepository) ToggleSave(ctx context.Context, stackID, userID string) (domain.ToggleResult, error) {
	return r.toggle(ctx, savesTable, stackID, userID)
}

// toggle removes the (stack, user) row if present and inserts it otherwise.
// A concurrent insert of the same pair hits the unique key and is treated as
// already active.
func (r *StackRepository) toggle(ctx context.Context, table, stackID, userID string) (domain.ToggleResult, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.ToggleResult{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE stack_id = $1 AND user_id = $2;`, table), stackID, userID)
	if err != nil {
		return domain.ToggleResult{}, translate(err, "failed to toggle "+table)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return domain.ToggleResult{}, err
	}

	out := domain.ToggleResult{Active: removed == 0}
	if out.Active {
		q := fmt.Sprintf(`INSERT INTO %s (stack_id, user_id) VALUES ($1, $2) ON CONFLICT (stack_id, user_id) DO NOTHING;`, table)
		if _, err := tx.ExecContext(ctx, q, stackID, userID); err != nil {
			return domain.ToggleResult{}, translate(err, "failed to toggle "+table)
		}
	}

	if err := tx.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE stack_id = $1;`, table), stackID).Scan(&out.Count); err != nil {
		return domain.ToggleResult{}, fmt.Errorf("failed to count %s: %w", table, err)
	}

	if err := tx.Commit(); err != nil {
		return domain.ToggleResult{}, fmt.Errorf("failed to commit toggle: %w", err)
	}
	return out, nil
}

// Fork copies a stack's description and current tool set into a new public
// stack owned by userID. A private source can only be forked by its curator;
// for anyone else it reads as missing.
func (r *StackRepository) Fork(ctx context.Context, stackID, userID string) (*domain.CommunityStack, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const srcQ = `SELECT name, description, is_public, curator_id::text FROM community_stacks WHERE id = $1;`
	var (
		name, curatorID string
		desc            sql.NullString
		public          bool
	)
	err = tx.QueryRowContext(ctx, srcQ, stackID).Scan(&name, &desc, &public, &curatorID)
	if errors.Is(err, sql.ErrNoRows) || isPgCode(err, pgInvalidTextRep) {
		return nil, domain.ErrReferentialFailure
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read fork source: %w", err)
	}
	if !public && curatorID != userID {
		return nil, domain.ErrReferentialFailure
	}

	id := uuid.New().String()
	const insertQ = `
INSERT INTO community_stacks (id, curator_id, name, description, is_public, is_featured, forked_from_id)
VALUES ($1, $2, $3, $4, true, false, $5);
`
	if _, err := tx.ExecContext(ctx, insertQ, id, userID, name+" (Fork)", desc, stackID); err != nil {
		return nil, translate(err, "failed to create fork")
	}

	const copyQ = `
INSERT INTO stack_tools (stack_id, tool_id, position)
SELECT $1, tool_id, position FROM stack_tools WHERE stack_id = $2;
`
	if _, err := tx.ExecContext(ctx, copyQ, id, stackID); err != nil {
		return nil, fmt.Errorf("failed to copy fork tools: %w", err)
	}

	stack, err := r.getByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit fork: %w", err)
	}
	return stack, nil
}

// IncrementView bumps the view counter on every call and returns the new value.
func (r *StackRepository) IncrementView(ctx context.Context, stackID string) (int64, error) {
	var views int64
	err := r.db.QueryRowContext(ctx,
		`UPDATE community_stacks SET view_count = view_count + 1 WHERE id = $1 RETURNING view_count;`, stackID).
		Scan(&views)
	if errors.Is(err, sql.ErrNoRows) || isPgCode(err, pgInvalidTextRep) {
		return 0, domain.ErrStackNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to increment views: %w", err)
	}
	return views, nil
}

func (r *StackRepository) ViewerState(ctx context.Context, stackID, userID string) (domain.ViewerState, error) {
	const q = `
SELECT
	EXISTS (SELECT 1 FROM stack_likes WHERE stack_id = $1 AND user_id = $2),
	EXISTS (SELECT 1 FROM stack_saves WHERE stack_id = $1 AND user_id = $2);
`
	var st domain.ViewerState
	err := r.db.QueryRowContext(ctx, q, stackID, userID).Scan(&st.Liked, &st.Saved)
	if isPgCode(err, pgInvalidTextRep) {
		return domain.ViewerState{}, domain.ErrStackNotFound
	}
	if err != nil {
		return domain.ViewerState{}, fmt.Errorf("failed to read viewer state: %w", err)
	}
	return st, nil
}

func insertTools(ctx context.Context, tx *sql.Tx, stackID string, toolIDs []string) error {
	const q = `INSERT INTO stack_tools (stack_id, tool_id, position) VALUES ($1, $2, $3);`
	for i, toolID := range toolIDs {
		if _, err := tx.ExecContext(ctx, q, stackID, toolID, i); err != nil {
			return translate(err, "failed to attach tool "+toolID)
		}
	}
	return nil
}

func (r *StackRepository) queryStacks(ctx context.Context, q string, args ...any) ([]domain.CommunityStack, error) {
	return r.queryStacksWith(ctx, r.db, q, args...)
}

// queryStacksWith runs a stack query and attaches each stack's tools in position order.
func (r *StackRepository) queryStacksWith(ctx context.Context, db queryer, q string, args ...any) ([]domain.CommunityStack, error) {
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.CommunityStack, 0, 16)
	for rows.Next() {
		var s domain.CommunityStack
		var desc, forkID, forkName sql.NullString
		var featuredOrder sql.NullInt64
		if err := rows.Scan(
			&s.ID, &s.Name, &desc, &s.IsPublic, &s.IsFeatured, &featuredOrder, &s.ViewCount,
			&s.CreatedAt, &s.UpdatedAt,
			&s.Curator.ID, &s.Curator.Name, &s.Curator.AvatarURL,
			&s.LikeCount, &s.SaveCount,
			&forkID, &forkName,
		); err != nil {
			return nil, err
		}
		if desc.Valid {
			d := desc.String
			s.Description = &d
		}
		if featuredOrder.Valid {
			o := int(featuredOrder.Int64)
			s.FeaturedOrder = &o
		}
		if forkID.Valid {
			s.ForkedFrom = &domain.ForkSource{ID: forkID.String, Name: forkName.String}
		}
		s.Tools = []domain.ToolRef{}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if err := loadTools(ctx, db, out); err != nil {
		return nil, err
	}
	return out, nil
}

func loadTools(ctx context.Context, db queryer, stacks []domain.CommunityStack) error {
	if len(stacks) == 0 {
		return nil
	}

	ids := make([]string, len(stacks))
	index := make(map[string]int, len(stacks))
	for i, s := range stacks {
		ids[i] = s.ID
		index[s.ID] = i
	}

	const q = `
SELECT st.stack_id, t.id, t.title, t.category, t.pricing
FROM stack_tools st
JOIN tools t ON t.id = st.tool_id
WHERE st.stack_id = ANY($1::uuid[])
ORDER BY st.stack_id, st.position;
`
	rows, err := db.QueryContext(ctx, q, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to load stack tools: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var stackID string
		var t domain.ToolRef
		if err := rows.Scan(&stackID, &t.ID, &t.Title, &t.Category, &t.Pricing); err != nil {
			return err
		}
		if i, ok := index[stackID]; ok {
			stacks[i].Tools = append(stacks[i].Tools, t)
		}
	}
	return rows.Err()
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func isPgCode(err error, code string) bool {
	var pgErr *pq.Error
	return errors.As(err, &pgErr) && string(pgErr.Code) == code
}

// translate maps foreign-key and malformed-id failures to ErrReferentialFailure.
func translate(err error, msg string) error {
	if isPgCode(err, pgForeignKeyViolation) || isPgCode(err, pgInvalidTextRep) {
		return fmt.Errorf("%w: %s", domain.ErrReferentialFailure, msg)
	}
	if isPgCode(err, pgUniqueViolation) {
		return fmt.Errorf("%s: duplicate entry: %w", msg, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
