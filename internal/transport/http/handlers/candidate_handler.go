package handlers

import (
	"net/http"

	"github.com/Nkpro29/chuckle-match-ai/internal/domain/model"
	matchingsvc "github.com/Nkpro29/chuckle-match-ai/internal/services/matching"
	"github.com/Nkpro29/chuckle-match-ai/internal/transport/http/dto"
	httperrors "github.com/Nkpro29/chuckle-match-ai/internal/transport/http/errors"
)

type CandidateHandler struct {
	service *matchingsvc.Service
}

func NewCandidateHandler(service *matchingsvc.Service) *CandidateHandler {
	return &CandidateHandler{service: service}
}

func (h *CandidateHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeInternal(w, "MATCHING_SERVICE_UNAVAILABLE", "matching service is unavailable")
		return
	}

	limit := parseIntOrDefault(r.URL.Query().Get("limit"), 0)
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	ranked, err := h.service.Rank(r.Context(), identity.UserID, limit)
	if err != nil {
		writeServiceError(w, err, "failed to rank candidates")
		return
	}

	items := make([]dto.CandidateItemResponse, 0, len(ranked))
	for _, c := range ranked {
		items = append(items, candidateResponse(c))
	}

	httperrors.Write(w, http.StatusOK, dto.CandidatesResponse{Items: items})
}

func candidateResponse(c model.RankedCandidate) dto.CandidateItemResponse {
	out := dto.CandidateItemResponse{
		Profile: dto.CandidateProfileResponse{
			UserID:      c.Profile.UserID,
			Username:    c.Profile.Username,
			DisplayName: c.Profile.Name(),
			Age:         c.Profile.Age,
			Location:    c.Profile.Location,
			Bio:         c.Profile.Bio,
			AvatarURL:   c.Profile.AvatarURL,
			CreatedAt:   c.Profile.CreatedAt,
		},
		Score:              c.Score,
		MutualInteractions: c.MutualInteractions,
		ArtifactsCount:     c.ArtifactsCount,
		AverageRating:      c.AverageRating,
	}
	if c.Featured != nil {
		out.Featured = &dto.FeaturedArtifactResponse{
			ID:      c.Featured.ID,
			Type:    string(c.Featured.Type),
			Content: c.Featured.Content,
		}
	}
	return out
}
