package dto

import "time"

type NotificationItemResponse struct {
	ID         string    `json:"id"`
	MatchID    int64     `json:"match_id"`
	UserIDs    [2]int64  `json:"user_ids"`
	OccurredAt time.Time `json:"occurred_at"`
}

type NotificationsResponse struct {
	Items []NotificationItemResponse `json:"items"`
}
