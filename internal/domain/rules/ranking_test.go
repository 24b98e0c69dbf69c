package rules

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nkpro29/chuckle-match-ai/internal/domain/apperr"
	"github.com/Nkpro29/chuckle-match-ai/internal/domain/enums"
	"github.com/Nkpro29/chuckle-match-ai/internal/domain/model"
)

// candidateWith builds a candidate whose artifacts were each rated once by a
// third user with the given values; artifact ids start at base.
func candidateWith(userID, base int64, values ...int) model.Candidate {
	c := model.Candidate{Profile: model.Profile{UserID: userID, Username: "user"}}
	for i, v := range values {
		id := base + int64(i)
		c.Artifacts = append(c.Artifacts, model.RatedArtifact{
			Artifact: model.Artifact{ID: id, OwnerID: userID, Type: enums.ArtifactTypeJoke},
			Ratings:  []model.Rating{{RaterID: 900, ArtifactID: id, Value: v}},
		})
	}
	return c
}

func ratingsFor(base int64, values ...int) []model.Rating {
	out := make([]model.Rating, 0, len(values))
	for i, v := range values {
		out = append(out, model.Rating{RaterID: caller, ArtifactID: base + int64(i), Value: v})
	}
	return out
}

func TestRankExcludesSingleInteractionCandidate(t *testing.T) {
	myRatings := ratingsFor(100, 5)
	candidates := []model.Candidate{candidateWith(2, 100, 3)}

	got, err := Rank(caller, myRatings, candidates, nil, DefaultRankOptions())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRankOrdersByScoreThenMutualThenID(t *testing.T) {
	var myRatings []model.Rating
	myRatings = append(myRatings, ratingsFor(100, 5, 5)...)    // user 2: 100
	myRatings = append(myRatings, ratingsFor(200, 5, 1)...)    // user 3: 50
	myRatings = append(myRatings, ratingsFor(300, 3, 3, 3)...) // user 4: 50, three interactions
	myRatings = append(myRatings, ratingsFor(400, 5, 1)...)    // user 5: 50, ties with user 3

	candidates := []model.Candidate{
		candidateWith(5, 400, 5, 5),
		candidateWith(3, 200, 5, 5),
		candidateWith(4, 300, 5, 1, 5),
		candidateWith(2, 100, 5, 5),
	}

	got, err := Rank(caller, myRatings, candidates, nil, RankOptions{})
	require.NoError(t, err)
	require.Len(t, got, 4)

	ids := make([]int64, 0, len(got))
	for _, c := range got {
		ids = append(ids, c.Profile.UserID)
	}
	assert.Equal(t, []int64{2, 4, 3, 5}, ids)
	assert.InDelta(t, 100.0, got[0].Score, 1e-9)

	for i := 1; i < len(got); i++ {
		a, b := got[i-1], got[i]
		ordered := a.Score > b.Score || (a.Score == b.Score && a.MutualInteractions >= b.MutualInteractions)
		assert.True(t, ordered, "results %d and %d out of order", i-1, i)
	}
}

func TestRankExcludesExistingMatchesInEitherDirection(t *testing.T) {
	var myRatings []model.Rating
	myRatings = append(myRatings, ratingsFor(100, 4, 4)...)
	myRatings = append(myRatings, ratingsFor(200, 4, 4)...)
	myRatings = append(myRatings, ratingsFor(300, 4, 4)...)
	myRatings = append(myRatings, ratingsFor(400, 4, 4)...)

	candidates := []model.Candidate{
		candidateWith(2, 100, 4, 4),
		candidateWith(3, 200, 4, 4),
		candidateWith(4, 300, 4, 4),
		candidateWith(5, 400, 4, 4),
	}
	existing := []model.Match{
		{ID: 1, InitiatorID: caller, TargetID: 2, Status: enums.MatchStatusPending},
		{ID: 2, InitiatorID: 3, TargetID: caller, Status: enums.MatchStatusDeclined},
		{ID: 3, InitiatorID: 4, TargetID: caller, Status: enums.MatchStatusMutual},
		{ID: 4, InitiatorID: 5, TargetID: 6, Status: enums.MatchStatusPending},
	}

	got, err := Rank(caller, myRatings, candidates, existing, RankOptions{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(5), got[0].Profile.UserID)
}

func TestRankSkipsCallerAndAppliesLimit(t *testing.T) {
	var myRatings []model.Rating
	candidates := []model.Candidate{candidateWith(caller, 50, 5, 5)}
	for i := int64(0); i < 15; i++ {
		base := 1000 + i*10
		myRatings = append(myRatings, ratingsFor(base, 3, 3)...)
		candidates = append(candidates, candidateWith(10+i, base, 3, 3))
	}
	myRatings = append(myRatings, ratingsFor(50, 5, 5)...)

	got, err := Rank(caller, myRatings, candidates, nil, DefaultRankOptions())
	require.NoError(t, err)
	require.Len(t, got, DefaultCandidateLimit)
	for i, c := range got {
		assert.NotEqual(t, caller, c.Profile.UserID)
		assert.Equal(t, int64(10+i), c.Profile.UserID, "ties resolve by ascending id")
	}
}

func TestRankPublicViewHidesRatings(t *testing.T) {
	myRatings := ratingsFor(100, 4, 2)
	c := candidateWith(2, 100, 4, 2)
	c.Artifacts[1].IsFeatured = true
	c.Artifacts[1].Content = "why did the gopher cross the road"

	got, err := Rank(caller, myRatings, []model.Candidate{c}, nil, RankOptions{})
	require.NoError(t, err)
	require.Len(t, got, 1)

	view := got[0]
	require.NotNil(t, view.Featured)
	assert.Equal(t, int64(101), view.Featured.ID)
	assert.Equal(t, 2, view.ArtifactsCount)
	assert.InDelta(t, 3.0, view.AverageRating, 1e-9)
	assert.Equal(t, 2, view.MutualInteractions)
}

func TestRankRejectsForeignRatings(t *testing.T) {
	_, err := Rank(caller, []model.Rating{{RaterID: 77, ArtifactID: 1, Value: 3}}, nil, nil, RankOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = Rank(0, nil, nil, nil, RankOptions{})
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestRankRejectsRepeatedArtifacts(t *testing.T) {
	c := candidateWith(2, 100, 3)
	c.Artifacts = append(c.Artifacts, c.Artifacts[0])

	got, err := Rank(caller, ratingsFor(100, 5), []model.Candidate{c}, nil, DefaultRankOptions())
	require.Error(t, err)
	assert.Empty(t, got)
	ve, ok := apperr.IsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "artifact_id", ve.Field)
}

func TestRankRejectsArtifactsOwnedByAnotherUser(t *testing.T) {
	c := candidateWith(99, 100, 4, 4)
	c.Profile.UserID = 2

	got, err := Rank(caller, ratingsFor(100, 4, 4), []model.Candidate{c}, nil, DefaultRankOptions())
	require.Error(t, err)
	assert.Empty(t, got)
	ve, ok := apperr.IsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "owner_id", ve.Field)
}
