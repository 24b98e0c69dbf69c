package model

import (
	"time"

	"github.com/Nkpro29/chuckle-match-ai/internal/domain/enums"
)

const MaxArtifactContentLen = 500

type Artifact struct {
	ID         int64              `json:"id"`
	OwnerID    int64              `json:"owner_id"`
	Type       enums.ArtifactType `json:"type"`
	Content    string             `json:"content"`
	IsFeatured bool               `json:"is_featured"`
	CreatedAt  time.Time          `json:"created_at"`
}

// RatedArtifact is an artifact together with every rating it has received.
type RatedArtifact struct {
	Artifact
	Ratings []Rating `json:"ratings"`
}
