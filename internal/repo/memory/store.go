// Package memory is a process-local store used in tests and when no
// postgres DSN is configured. It honours the same pair-uniqueness and
// compare-and-set contracts as the postgres store.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Nkpro29/chuckle-match-ai/internal/domain/apperr"
	"github.com/Nkpro29/chuckle-match-ai/internal/domain/enums"
	"github.com/Nkpro29/chuckle-match-ai/internal/domain/model"
)

type pairKey struct {
	low  int64
	high int64
}

func keyFor(a, b int64) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{low: a, high: b}
}

type ratingKey struct {
	rater    int64
	artifact int64
}

type Store struct {
	mu sync.RWMutex

	profiles  map[int64]model.Profile
	artifacts map[int64]model.Artifact
	ratings   map[ratingKey]model.Rating

	matches     map[int64]model.Match
	pairs       map[pairKey]int64
	nextMatchID int64

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		profiles:  make(map[int64]model.Profile),
		artifacts: make(map[int64]model.Artifact),
		ratings:   make(map[ratingKey]model.Rating),
		matches:   make(map[int64]model.Match),
		pairs:     make(map[pairKey]int64),
		now:       time.Now,
	}
}

func (s *Store) PutProfile(p model.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.UserID] = p
}

func (s *Store) PutArtifact(a model.Artifact) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.artifacts[a.ID] = a
}

// PutRating overwrites any earlier rating by the same rater.
func (s *Store) PutRating(r model.Rating) error {
	if !r.Valid() {
		return apperr.Validation("rating", "value must be between 1 and 5")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.artifacts[r.ArtifactID]; !ok {
		return apperr.NotFound("artifact", r.ArtifactID)
	}
	s.ratings[ratingKey{rater: r.RaterID, artifact: r.ArtifactID}] = r
	return nil
}

func (s *Store) ListByRater(_ context.Context, raterID int64) ([]model.Rating, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Rating, 0)
	for k, r := range s.ratings {
		if k.rater == raterID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ArtifactID < out[j].ArtifactID })
	return out, nil
}

func (s *Store) GetProfile(_ context.Context, userID int64) (model.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[userID]
	if !ok {
		return model.Profile{}, apperr.NotFound("profile", userID)
	}
	return p, nil
}

func (s *Store) ListCandidates(_ context.Context, excludeUserID int64) ([]model.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byOwner := make(map[int64][]model.RatedArtifact)
	for _, a := range s.artifacts {
		if a.OwnerID == excludeUserID {
			continue
		}
		rated := model.RatedArtifact{Artifact: a}
		for k, r := range s.ratings {
			if k.artifact == a.ID {
				rated.Ratings = append(rated.Ratings, r)
			}
		}
		sort.Slice(rated.Ratings, func(i, j int) bool { return rated.Ratings[i].RaterID < rated.Ratings[j].RaterID })
		byOwner[a.OwnerID] = append(byOwner[a.OwnerID], rated)
	}

	out := make([]model.Candidate, 0, len(s.profiles))
	for id, p := range s.profiles {
		if id == excludeUserID {
			continue
		}
		artifacts := byOwner[id]
		sort.Slice(artifacts, func(i, j int) bool { return artifacts[i].ID < artifacts[j].ID })
		out = append(out, model.Candidate{Profile: p, Artifacts: artifacts})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Profile.UserID < out[j].Profile.UserID })
	return out, nil
}

func (s *Store) FindDirected(_ context.Context, initiatorID, targetID int64) (model.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.pairs[keyFor(initiatorID, targetID)]
	if !ok {
		return model.Match{}, apperr.NotFound("match", 0)
	}
	m := s.matches[id]
	if m.InitiatorID != initiatorID {
		return model.Match{}, apperr.NotFound("match", 0)
	}
	return m, nil
}

func (s *Store) FindPair(_ context.Context, userID, otherID int64) (model.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.pairs[keyFor(userID, otherID)]
	if !ok {
		return model.Match{}, apperr.NotFound("match", 0)
	}
	return s.matches[id], nil
}

func (s *Store) Insert(_ context.Context, initiatorID, targetID int64, status enums.MatchStatus) (model.Match, error) {
	if !status.Valid() {
		return model.Match{}, apperr.Validation("status", "unknown match status")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := keyFor(initiatorID, targetID)
	if id, ok := s.pairs[key]; ok {
		return model.Match{}, &apperr.ConflictError{
			InitiatorID: initiatorID,
			TargetID:    targetID,
			Status:      s.matches[id].Status,
		}
	}

	s.nextMatchID++
	now := s.now().UTC()
	m := model.Match{
		ID:          s.nextMatchID,
		InitiatorID: initiatorID,
		TargetID:    targetID,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.matches[m.ID] = m
	s.pairs[key] = m.ID
	return m, nil
}

func (s *Store) CompareAndSetStatus(_ context.Context, matchID int64, from, to enums.MatchStatus) (model.Match, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.matches[matchID]
	if !ok {
		return model.Match{}, false, apperr.NotFound("match", matchID)
	}
	if m.Status != from {
		return m, false, nil
	}
	m.Status = to
	m.UpdatedAt = s.now().UTC()
	s.matches[matchID] = m
	return m, true, nil
}

// ListForUser returns rows touching userID, newest first. An empty statuses
// slice matches every status.
func (s *Store) ListForUser(_ context.Context, userID int64, statuses []enums.MatchStatus, limit int) ([]model.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	allowed := make(map[enums.MatchStatus]struct{}, len(statuses))
	for _, st := range statuses {
		allowed[st] = struct{}{}
	}

	out := make([]model.Match, 0)
	for _, m := range s.matches {
		if !m.Involves(userID) {
			continue
		}
		if len(allowed) > 0 {
			if _, ok := allowed[m.Status]; !ok {
				continue
			}
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Count is the number of match rows ever stored.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.matches)
}
