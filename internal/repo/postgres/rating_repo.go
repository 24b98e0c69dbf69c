package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Nkpro29/chuckle-match-ai/internal/domain/apperr"
	"github.com/Nkpro29/chuckle-match-ai/internal/domain/model"
)

type RatingRepo struct {
	pool *pgxpool.Pool
}

func NewRatingRepo(pool *pgxpool.Pool) *RatingRepo {
	return &RatingRepo{pool: pool}
}

func (r *RatingRepo) ListByRater(ctx context.Context, raterID int64) ([]model.Rating, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	const query = `
SELECT rater_id, artifact_id, rating
FROM ratings
WHERE rater_id = $1
ORDER BY artifact_id
`

	rows, err := r.pool.Query(ctx, query, raterID)
	if err != nil {
		return nil, classify("list ratings by rater", err)
	}
	defer rows.Close()

	out := make([]model.Rating, 0)
	for rows.Next() {
		var item model.Rating
		if err := rows.Scan(&item.RaterID, &item.ArtifactID, &item.Value); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate ratings", err)
	}

	return out, nil
}

// upsertRating overwrites the rater's earlier value for the same artifact.
func upsertRating(ctx context.Context, q querier, rating model.Rating) error {
	if !rating.Valid() {
		return apperr.Validation("rating", "value must be between 1 and 5")
	}

	const query = `
INSERT INTO ratings (rater_id, artifact_id, rating, created_at, updated_at)
VALUES ($1, $2, $3, NOW(), NOW())
ON CONFLICT (rater_id, artifact_id) DO UPDATE SET
	rating = EXCLUDED.rating,
	updated_at = NOW()
`

	if _, err := q.Exec(ctx, query, rating.RaterID, rating.ArtifactID, rating.Value); err != nil {
		if constraint, ok := foreignKeyConstraint(err); ok {
			if constraint == "ratings_rater_id_fkey" {
				return apperr.NotFound("profile", rating.RaterID)
			}
			return apperr.NotFound("artifact", rating.ArtifactID)
		}
		return classify("upsert rating", err)
	}
	return nil
}
