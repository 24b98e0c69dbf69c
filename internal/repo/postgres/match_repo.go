package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/huandu/go-sqlbuilder"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Nkpro29/chuckle-match-ai/internal/domain/apperr"
	"github.com/Nkpro29/chuckle-match-ai/internal/domain/enums"
	"github.com/Nkpro29/chuckle-match-ai/internal/domain/model"
)

const matchColumns = "id, initiator_id, target_id, status, created_at, updated_at"

// MatchRepo keeps one row per unordered pair. The pair unique index backs
// Insert; status-guarded updates back CompareAndSetStatus.
type MatchRepo struct {
	pool *pgxpool.Pool
}

func NewMatchRepo(pool *pgxpool.Pool) *MatchRepo {
	return &MatchRepo{pool: pool}
}

func (r *MatchRepo) FindDirected(ctx context.Context, initiatorID, targetID int64) (model.Match, error) {
	if r.pool == nil {
		return model.Match{}, fmt.Errorf("postgres pool is nil")
	}

	row := r.pool.QueryRow(ctx, `
SELECT `+matchColumns+`
FROM matches
WHERE initiator_id = $1 AND target_id = $2
`, initiatorID, targetID)

	m, err := scanMatch(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Match{}, apperr.NotFound("match", 0)
		}
		return model.Match{}, classify("find directed match", err)
	}
	return m, nil
}

func (r *MatchRepo) FindPair(ctx context.Context, userID, otherID int64) (model.Match, error) {
	if r.pool == nil {
		return model.Match{}, fmt.Errorf("postgres pool is nil")
	}

	row := r.pool.QueryRow(ctx, `
SELECT `+matchColumns+`
FROM matches
WHERE LEAST(initiator_id, target_id) = LEAST($1::bigint, $2::bigint)
	AND GREATEST(initiator_id, target_id) = GREATEST($1::bigint, $2::bigint)
`, userID, otherID)

	m, err := scanMatch(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Match{}, apperr.NotFound("match", 0)
		}
		return model.Match{}, classify("find match pair", err)
	}
	return m, nil
}

// Insert creates a row for the pair, or fails with *apperr.ConflictError
// carrying the status of the row that already holds it.
func (r *MatchRepo) Insert(ctx context.Context, initiatorID, targetID int64, status enums.MatchStatus) (model.Match, error) {
	if !status.Valid() {
		return model.Match{}, apperr.Validation("status", "unknown match status")
	}
	if r.pool == nil {
		return model.Match{}, fmt.Errorf("postgres pool is nil")
	}

	row := r.pool.QueryRow(ctx, `
INSERT INTO matches (
	initiator_id,
	target_id,
	status,
	created_at,
	updated_at
) VALUES ($1, $2, $3, NOW(), NOW())
ON CONFLICT DO NOTHING
RETURNING `+matchColumns+`
`, initiatorID, targetID, string(status))

	m, err := scanMatch(row)
	switch {
	case err == nil:
		return m, nil
	case errors.Is(err, pgx.ErrNoRows), isUniqueViolation(err):
		return model.Match{}, r.conflictFor(ctx, initiatorID, targetID)
	default:
		if _, ok := foreignKeyConstraint(err); ok {
			return model.Match{}, apperr.NotFound("profile", targetID)
		}
		return model.Match{}, classify("insert match", err)
	}
}

func (r *MatchRepo) conflictFor(ctx context.Context, initiatorID, targetID int64) error {
	conflict := &apperr.ConflictError{InitiatorID: initiatorID, TargetID: targetID}

	existing, err := r.FindPair(ctx, initiatorID, targetID)
	switch {
	case err == nil:
		conflict.Status = existing.Status
	case errors.Is(err, apperr.ErrNotFound):
	default:
		return err
	}
	return conflict
}

func (r *MatchRepo) CompareAndSetStatus(ctx context.Context, matchID int64, from, to enums.MatchStatus) (model.Match, bool, error) {
	if !to.Valid() {
		return model.Match{}, false, apperr.Validation("status", "unknown match status")
	}
	if r.pool == nil {
		return model.Match{}, false, fmt.Errorf("postgres pool is nil")
	}

	row := r.pool.QueryRow(ctx, `
UPDATE matches
SET status = $3, updated_at = NOW()
WHERE id = $1 AND status = $2
RETURNING `+matchColumns+`
`, matchID, string(from), string(to))

	m, err := scanMatch(row)
	if err == nil {
		return m, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return model.Match{}, false, classify("update match status", err)
	}

	current, err := r.getByID(ctx, matchID)
	if err != nil {
		return model.Match{}, false, err
	}
	return current, false, nil
}

// ListForUser returns rows touching userID, newest first. An empty statuses
// slice matches every status; limit <= 0 means no limit.
func (r *MatchRepo) ListForUser(ctx context.Context, userID int64, statuses []enums.MatchStatus, limit int) ([]model.Match, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	query, args := listForUserQuery(userID, statuses, limit)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, classify("list matches for user", err)
	}
	defer rows.Close()

	out := make([]model.Match, 0)
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate matches", err)
	}

	return out, nil
}

func listForUserQuery(userID int64, statuses []enums.MatchStatus, limit int) (string, []interface{}) {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "initiator_id", "target_id", "status", "created_at", "updated_at")
	sb.From("matches")
	sb.Where(sb.Or(
		sb.Equal("initiator_id", userID),
		sb.Equal("target_id", userID),
	))
	if len(statuses) > 0 {
		values := make([]interface{}, 0, len(statuses))
		for _, st := range statuses {
			values = append(values, string(st))
		}
		sb.Where(sb.In("status", values...))
	}
	sb.OrderBy("created_at DESC", "id DESC")
	if limit > 0 {
		sb.Limit(limit)
	}
	return sb.Build()
}

func (r *MatchRepo) getByID(ctx context.Context, matchID int64) (model.Match, error) {
	row := r.pool.QueryRow(ctx, `
SELECT `+matchColumns+`
FROM matches
WHERE id = $1
`, matchID)

	m, err := scanMatch(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Match{}, apperr.NotFound("match", matchID)
		}
		return model.Match{}, classify("get match", err)
	}
	return m, nil
}

func scanMatch(row pgx.Row) (model.Match, error) {
	var (
		m      model.Match
		status string
	)
	if err := row.Scan(&m.ID, &m.InitiatorID, &m.TargetID, &status, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return model.Match{}, err
	}
	m.Status = enums.MatchStatus(status)
	return m, nil
}
