package rules

import (
	"math"

	"github.com/Nkpro29/chuckle-match-ai/internal/domain/apperr"
	"github.com/Nkpro29/chuckle-match-ai/internal/domain/model"
)

// MaxRatingDistance is the widest possible gap on the 1-5 scale.
const MaxRatingDistance = float64(model.MaxRating - model.MinRating)

// Similarity maps two ratings to [0,1]; it depends only on |a-b|.
func Similarity(a, b float64) float64 {
	return 1 - math.Abs(a-b)/MaxRatingDistance
}

// Score compares the caller's ratings with the ratings other raters gave the
// candidate's artifacts. Artifacts nobody else rated are skipped.
func Score(myRatings []model.Rating, artifacts []model.RatedArtifact) (model.Compatibility, error) {
	mine, raterID, err := indexRatings(myRatings)
	if err != nil {
		return model.Compatibility{}, err
	}

	var (
		total  float64
		mutual int
	)
	seen := make(map[int64]struct{}, len(artifacts))
	for _, artifact := range artifacts {
		if _, dup := seen[artifact.ID]; dup {
			return model.Compatibility{}, apperr.Validation("artifact_id", "artifact listed more than once")
		}
		seen[artifact.ID] = struct{}{}

		my, ok := mine[artifact.ID]
		if !ok {
			continue
		}

		mean, n, err := meanExcluding(artifact.Ratings, raterID)
		if err != nil {
			return model.Compatibility{}, err
		}
		if n == 0 {
			continue
		}

		total += Similarity(float64(my), mean)
		mutual++
	}

	result := model.Compatibility{MutualInteractions: mutual}
	if mutual > 0 {
		result.Score = total / float64(mutual) * 100
	}
	return result, nil
}

// ScoreCandidate scores c for the caller and rejects artifacts that c does
// not own.
func ScoreCandidate(myRatings []model.Rating, c model.Candidate) (model.Compatibility, error) {
	for _, a := range c.Artifacts {
		if a.OwnerID != c.Profile.UserID {
			return model.Compatibility{}, apperr.Validation("owner_id", "artifact does not belong to the candidate")
		}
	}

	compat, err := Score(myRatings, c.Artifacts)
	if err != nil {
		return model.Compatibility{}, err
	}
	compat.CandidateID = c.Profile.UserID
	return compat, nil
}

func indexRatings(ratings []model.Rating) (map[int64]int, int64, error) {
	index := make(map[int64]int, len(ratings))
	var raterID int64
	for i, r := range ratings {
		if !r.Valid() {
			return nil, 0, apperr.Validation("rating", "value must be between 1 and 5")
		}
		if i == 0 {
			raterID = r.RaterID
		} else if r.RaterID != raterID {
			return nil, 0, apperr.Validation("rater_id", "ratings belong to more than one rater")
		}
		if _, dup := index[r.ArtifactID]; dup {
			return nil, 0, apperr.Validation("artifact_id", "artifact rated more than once")
		}
		index[r.ArtifactID] = r.Value
	}
	return index, raterID, nil
}

func meanExcluding(ratings []model.Rating, raterID int64) (float64, int, error) {
	var (
		sum int
		n   int
	)
	for _, r := range ratings {
		if !r.Valid() {
			return 0, 0, apperr.Validation("rating", "value must be between 1 and 5")
		}
		if r.RaterID == raterID {
			continue
		}
		sum += r.Value
		n++
	}
	if n == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(n), n, nil
}
