package model

const (
	MinRating = 1
	MaxRating = 5
)

type Rating struct {
	RaterID    int64 `json:"rater_id"`
	ArtifactID int64 `json:"artifact_id"`
	Value      int   `json:"rating"`
}

func (r Rating) Valid() bool {
	return r.Value >= MinRating && r.Value <= MaxRating
}
