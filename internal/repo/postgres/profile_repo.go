package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Nkpro29/chuckle-match-ai/internal/domain/apperr"
	"github.com/Nkpro29/chuckle-match-ai/internal/domain/model"
	"github.com/Nkpro29/chuckle-match-ai/internal/pkg/validate"
)

const foreignKeyViolation = "23503"

type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

func (r *ProfileRepo) GetProfile(ctx context.Context, userID int64) (model.Profile, error) {
	if r.pool == nil {
		return model.Profile{}, fmt.Errorf("postgres pool is nil")
	}

	const query = `
SELECT user_id, username, display_name, age, location, bio, avatar_url, created_at
FROM profiles
WHERE user_id = $1
`

	var p model.Profile
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&p.UserID,
		&p.Username,
		&p.DisplayName,
		&p.Age,
		&p.Location,
		&p.Bio,
		&p.AvatarURL,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Profile{}, apperr.NotFound("profile", userID)
		}
		return model.Profile{}, classify("get profile", err)
	}

	return p, nil
}

func upsertProfile(ctx context.Context, q querier, p model.Profile) error {
	if p.UserID <= 0 {
		return apperr.Validation("user_id", "must be positive")
	}

	const query = `
INSERT INTO profiles (
	user_id,
	username,
	display_name,
	age,
	location,
	bio,
	avatar_url
) VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (user_id) DO UPDATE SET
	username = EXCLUDED.username,
	display_name = EXCLUDED.display_name,
	age = EXCLUDED.age,
	location = EXCLUDED.location,
	bio = EXCLUDED.bio,
	avatar_url = EXCLUDED.avatar_url
`

	if _, err := q.Exec(ctx, query, p.UserID, p.Username, p.DisplayName, p.Age, p.Location, p.Bio, p.AvatarURL); err != nil {
		return classify("upsert profile", err)
	}
	return nil
}

// insertArtifact stores a new artifact and returns it with its assigned ID.
func insertArtifact(ctx context.Context, q querier, a model.Artifact) (model.Artifact, error) {
	if !a.Type.Valid() {
		return model.Artifact{}, apperr.Validation("type", "unknown artifact type")
	}
	if !validate.Required(a.Content) {
		return model.Artifact{}, apperr.Validation("content", "is required")
	}
	if !validate.WithinRunes(a.Content, model.MaxArtifactContentLen) {
		return model.Artifact{}, apperr.Validation("content", "too long")
	}

	const query = `
INSERT INTO artifacts (owner_id, type, content, is_featured)
VALUES ($1, $2, $3, $4)
RETURNING id, created_at
`

	out := a
	err := q.QueryRow(ctx, query, a.OwnerID, string(a.Type), a.Content, a.IsFeatured).Scan(&out.ID, &out.CreatedAt)
	if err != nil {
		if _, ok := foreignKeyConstraint(err); ok {
			return model.Artifact{}, apperr.NotFound("profile", a.OwnerID)
		}
		return model.Artifact{}, classify("insert artifact", err)
	}
	return out, nil
}

// foreignKeyConstraint returns the violated constraint name when err is a
// foreign key violation.
func foreignKeyConstraint(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}
