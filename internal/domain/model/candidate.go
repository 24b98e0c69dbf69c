package model

// Candidate is another user considered for the caller's match queue.
type Candidate struct {
	Profile   Profile         `json:"profile"`
	Artifacts []RatedArtifact `json:"artifacts"`
}

type Compatibility struct {
	CandidateID        int64   `json:"candidate_id"`
	Score              float64 `json:"score"`
	MutualInteractions int     `json:"mutual_interactions"`
}

// RankedCandidate is the public view of a scored candidate. It never carries
// per-artifact ratings.
type RankedCandidate struct {
	Profile            Profile   `json:"profile"`
	Score              float64   `json:"score"`
	MutualInteractions int       `json:"mutual_interactions"`
	Featured           *Artifact `json:"featured,omitempty"`
	ArtifactsCount     int       `json:"artifacts_count"`
	AverageRating      float64   `json:"average_rating"`
}
