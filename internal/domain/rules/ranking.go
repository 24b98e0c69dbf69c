package rules

import (
	"fmt"
	"sort"

	"github.com/Nkpro29/chuckle-match-ai/internal/domain/apperr"
	"github.com/Nkpro29/chuckle-match-ai/internal/domain/model"
)

const (
	// MinMutualInteractions keeps single-rating coincidences out of the queue.
	MinMutualInteractions = 2
	DefaultCandidateLimit = 10
)

type RankOptions struct {
	MinMutualInteractions int
	// Limit truncates the result; zero or less keeps everything.
	Limit int
}

func DefaultRankOptions() RankOptions {
	return RankOptions{
		MinMutualInteractions: MinMutualInteractions,
		Limit:                 DefaultCandidateLimit,
	}
}

// Rank scores every candidate for callerID and returns the match queue:
// candidates with enough mutual interactions and no match row touching the
// caller, best first.
func Rank(callerID int64, myRatings []model.Rating, candidates []model.Candidate, existing []model.Match, opts RankOptions) ([]model.RankedCandidate, error) {
	if callerID <= 0 {
		return nil, apperr.Validation("user_id", "must be positive")
	}
	for _, r := range myRatings {
		if r.RaterID != callerID {
			return nil, apperr.Validation("rater_id", "ratings do not belong to the caller")
		}
	}
	if opts.MinMutualInteractions <= 0 {
		opts.MinMutualInteractions = MinMutualInteractions
	}

	excluded := make(map[int64]struct{}, len(existing))
	for _, m := range existing {
		if !m.Involves(callerID) {
			continue
		}
		excluded[m.Counterpart(callerID)] = struct{}{}
	}

	ranked := make([]model.RankedCandidate, 0, len(candidates))
	for _, c := range candidates {
		id := c.Profile.UserID
		if id == callerID {
			continue
		}
		if _, ok := excluded[id]; ok {
			continue
		}

		compat, err := ScoreCandidate(myRatings, c)
		if err != nil {
			return nil, fmt.Errorf("score candidate %d: %w", id, err)
		}
		if compat.MutualInteractions < opts.MinMutualInteractions {
			continue
		}

		ranked = append(ranked, publicView(c, compat))
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return Less(ranked[i], ranked[j])
	})

	if opts.Limit > 0 && len(ranked) > opts.Limit {
		ranked = ranked[:opts.Limit]
	}
	return ranked, nil
}

// Less orders by score desc, then mutual interactions desc, then user id asc.
func Less(a, b model.RankedCandidate) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.MutualInteractions != b.MutualInteractions {
		return a.MutualInteractions > b.MutualInteractions
	}
	return a.Profile.UserID < b.Profile.UserID
}

func publicView(c model.Candidate, compat model.Compatibility) model.RankedCandidate {
	view := model.RankedCandidate{
		Profile:            c.Profile,
		Score:              compat.Score,
		MutualInteractions: compat.MutualInteractions,
		ArtifactsCount:     len(c.Artifacts),
	}

	var (
		sum int
		n   int
	)
	for i := range c.Artifacts {
		a := c.Artifacts[i]
		if a.IsFeatured && view.Featured == nil {
			featured := a.Artifact
			view.Featured = &featured
		}
		for _, r := range a.Ratings {
			sum += r.Value
			n++
		}
	}
	if n > 0 {
		view.AverageRating = float64(sum) / float64(n)
	}
	return view
}
