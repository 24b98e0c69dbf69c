package postgres

import (
	"context"
	"fmt"

	"github.com/huandu/go-sqlbuilder"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Nkpro29/chuckle-match-ai/internal/domain/enums"
	"github.com/Nkpro29/chuckle-match-ai/internal/domain/model"
)

// CandidateRepo loads candidate profiles with their rated artifacts.
type CandidateRepo struct {
	*ProfileRepo
}

func NewCandidateRepo(pool *pgxpool.Pool) *CandidateRepo {
	return &CandidateRepo{ProfileRepo: NewProfileRepo(pool)}
}

// ListCandidates returns every profile except excludeUserID, ordered by
// user ID, each with all of its artifacts and their ratings. Both reads
// share one snapshot.
func (r *CandidateRepo) ListCandidates(ctx context.Context, excludeUserID int64) ([]model.Candidate, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	var out []model.Candidate
	err := WithReadTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		profiles, err := listProfilesExcept(ctx, tx, excludeUserID)
		if err != nil {
			return err
		}
		artifacts, err := listRatedArtifactsExcept(ctx, tx, excludeUserID)
		if err != nil {
			return err
		}

		out = make([]model.Candidate, 0, len(profiles))
		for _, p := range profiles {
			out = append(out, model.Candidate{Profile: p, Artifacts: artifacts[p.UserID]})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func profilesQuery(excludeUserID int64) (string, []interface{}) {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("user_id", "username", "display_name", "age", "location", "bio", "avatar_url", "created_at")
	sb.From("profiles")
	sb.Where(sb.NotEqual("user_id", excludeUserID))
	sb.OrderBy("user_id")
	return sb.Build()
}

func ratedArtifactsQuery(excludeUserID int64) (string, []interface{}) {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(
		"a.id",
		"a.owner_id",
		"a.type",
		"a.content",
		"a.is_featured",
		"a.created_at",
		"r.rater_id",
		"r.rating",
	)
	sb.From("artifacts a")
	sb.JoinWithOption(sqlbuilder.LeftJoin, "ratings r", "r.artifact_id = a.id")
	sb.Where(sb.NotEqual("a.owner_id", excludeUserID))
	sb.OrderBy("a.owner_id", "a.id", "r.rater_id")
	return sb.Build()
}

func listProfilesExcept(ctx context.Context, tx pgx.Tx, excludeUserID int64) ([]model.Profile, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction is required")
	}

	query, args := profilesQuery(excludeUserID)
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, classify("list candidate profiles", err)
	}
	defer rows.Close()

	out := make([]model.Profile, 0)
	for rows.Next() {
		var p model.Profile
		if err := rows.Scan(
			&p.UserID,
			&p.Username,
			&p.DisplayName,
			&p.Age,
			&p.Location,
			&p.Bio,
			&p.AvatarURL,
			&p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan candidate profile: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate candidate profiles", err)
	}

	return out, nil
}

// listRatedArtifactsExcept groups artifacts by owner. Rows arrive ordered by
// owner and artifact, so consecutive rows for the same artifact are merged.
func listRatedArtifactsExcept(ctx context.Context, tx pgx.Tx, excludeUserID int64) (map[int64][]model.RatedArtifact, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction is required")
	}

	query, args := ratedArtifactsQuery(excludeUserID)
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, classify("list candidate artifacts", err)
	}
	defer rows.Close()

	out := make(map[int64][]model.RatedArtifact)
	for rows.Next() {
		var (
			a       model.Artifact
			kind    string
			raterID *int64
			rating  *int
		)
		if err := rows.Scan(&a.ID, &a.OwnerID, &kind, &a.Content, &a.IsFeatured, &a.CreatedAt, &raterID, &rating); err != nil {
			return nil, fmt.Errorf("scan candidate artifact: %w", err)
		}
		a.Type = enums.ArtifactType(kind)

		owned := out[a.OwnerID]
		if n := len(owned); n == 0 || owned[n-1].ID != a.ID {
			owned = append(owned, model.RatedArtifact{Artifact: a})
		}
		if raterID != nil && rating != nil {
			last := &owned[len(owned)-1]
			last.Ratings = append(last.Ratings, model.Rating{RaterID: *raterID, ArtifactID: a.ID, Value: *rating})
		}
		out[a.OwnerID] = owned
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate candidate artifacts", err)
	}

	return out, nil
}
