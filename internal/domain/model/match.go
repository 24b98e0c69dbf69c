package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/Nkpro29/chuckle-match-ai/internal/domain/enums"
)

type Match struct {
	ID          int64             `json:"id"`
	InitiatorID int64             `json:"initiator_id"`
	TargetID    int64             `json:"target_id"`
	Status      enums.MatchStatus `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// Involves reports whether userID is one side of the match.
func (m Match) Involves(userID int64) bool {
	return m.InitiatorID == userID || m.TargetID == userID
}

// Counterpart returns the other side of the match from userID's point of view.
func (m Match) Counterpart(userID int64) int64 {
	if m.InitiatorID == userID {
		return m.TargetID
	}
	return m.InitiatorID
}

// MutualMatchEvent is emitted once, when a match row becomes mutual.
type MutualMatchEvent struct {
	ID         uuid.UUID `json:"id"`
	MatchID    int64     `json:"match_id"`
	UserIDs    [2]int64  `json:"user_ids"`
	OccurredAt time.Time `json:"occurred_at"`
}
