package dto

import "time"

type MatchActionRequest struct {
	TargetID int64 `json:"target_id"`
}

type MatchItemResponse struct {
	ID            int64     `json:"id"`
	InitiatorID   int64     `json:"initiator_id"`
	TargetID      int64     `json:"target_id"`
	CounterpartID int64     `json:"counterpart_id"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type MatchActionResponse struct {
	Outcome  string            `json:"outcome"`
	Match    MatchItemResponse `json:"match"`
	Notified bool              `json:"notified"`
}

type MatchesResponse struct {
	Items []MatchItemResponse `json:"items"`
}
