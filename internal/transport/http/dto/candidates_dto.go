package dto

import "time"

type FeaturedArtifactResponse struct {
	ID      int64  `json:"id"`
	Type    string `json:"type"`
	Content string `json:"content"`
}

type CandidateProfileResponse struct {
	UserID      int64     `json:"user_id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Age         int       `json:"age"`
	Location    string    `json:"location"`
	Bio         string    `json:"bio"`
	AvatarURL   string    `json:"avatar_url"`
	CreatedAt   time.Time `json:"created_at"`
}

type CandidateItemResponse struct {
	Profile            CandidateProfileResponse  `json:"profile"`
	Score              float64                   `json:"score"`
	MutualInteractions int                       `json:"mutual_interactions"`
	Featured           *FeaturedArtifactResponse `json:"featured,omitempty"`
	ArtifactsCount     int                       `json:"artifacts_count"`
	AverageRating      float64                   `json:"average_rating"`
}

type CandidatesResponse struct {
	Items []CandidateItemResponse `json:"items"`
}
