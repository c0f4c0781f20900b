package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

var ErrUserNotFound = errors.New("user not found")

// User is a curator or viewer known by their Firebase uid.
type User struct {
	ID          string    `json:"id"`
	FirebaseUID string    `json:"firebase_uid"`
	Email       *string   `json:"email,omitempty"`
	DisplayName *string   `json:"display_name,omitempty"`
	PhotoURL    *string   `json:"photo_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Querier is the part of *pgxpool.Pool the repo needs.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Repo struct {
	db Querier
}

func NewRepo(db Querier) *Repo {
	return &Repo{db: db}
}

type UpsertUser struct {
	FirebaseUID string
	Email       string
	DisplayName string
	PhotoURL    string
}

// EnsureUser creates the user on first sight and returns its database id.
// Display name and photo from the identity provider only fill empty fields,
// so values set through UpdateProfile survive later sign-ins.
func (r *Repo) EnsureUser(ctx context.Context, u UpsertUser) (string, error) {
	if u.FirebaseUID == "" {
		return "", fmt.Errorf("firebase_uid required")
	}

	const q = `
insert into users (firebase_uid, email, display_name, photo_url, updated_at)
values ($1, nullif($2,''), nullif($3,''), nullif($4,''), now())
on conflict (firebase_uid) do update
set
  email = coalesce(excluded.email, users.email),
  display_name = coalesce(users.display_name, excluded.display_name),
  photo_url = coalesce(users.photo_url, excluded.photo_url),
  updated_at = now()
returning id::text;
`
	var id string
	if err := r.db.QueryRow(ctx, q, u.FirebaseUID, u.Email, u.DisplayName, u.PhotoURL).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

const userColumns = `id::text, firebase_uid, email, display_name, photo_url, created_at, updated_at`

func (r *Repo) Get(ctx context.Context, id string) (*User, error) {
	q := `select ` + userColumns + ` from users where id = $1::uuid;`
	return r.scanOne(r.db.QueryRow(ctx, q, id))
}

// UpdateProfile sets the public curator fields. Nil leaves a field unchanged,
// an empty string clears it.
func (r *Repo) UpdateProfile(ctx context.Context, id string, displayName, photoURL *string) (*User, error) {
	q := `
update users set
  display_name = case when $2::boolean then nullif($3::text, '') else display_name end,
  photo_url = case when $4::boolean then nullif($5::text, '') else photo_url end,
  updated_at = now()
where id = $1::uuid
returning ` + userColumns + `;`
	return r.scanOne(r.db.QueryRow(ctx, q, id,
		displayName != nil, deref(displayName),
		photoURL != nil, deref(photoURL)))
}

func (r *Repo) scanOne(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.FirebaseUID, &u.Email, &u.DisplayName, &u.PhotoURL, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
