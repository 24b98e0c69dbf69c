package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/Nkpro29/chuckle-match-ai/internal/domain/enums"
	"github.com/Nkpro29/chuckle-match-ai/internal/domain/model"
	matchingsvc "github.com/Nkpro29/chuckle-match-ai/internal/services/matching"
	"github.com/Nkpro29/chuckle-match-ai/internal/transport/http/dto"
	httperrors "github.com/Nkpro29/chuckle-match-ai/internal/transport/http/errors"
)

type MatchesHandler struct {
	service *matchingsvc.Service
}

func NewMatchesHandler(service *matchingsvc.Service) *MatchesHandler {
	return &MatchesHandler{service: service}
}

func (h *MatchesHandler) Like(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.service.Like, "failed to like")
}

func (h *MatchesHandler) Pass(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.service.Pass, "failed to pass")
}

type matchAction func(ctx context.Context, userID, targetID int64) (matchingsvc.ActionResult, error)

func (h *MatchesHandler) act(w http.ResponseWriter, r *http.Request, action matchAction, failure string) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeInternal(w, "MATCHING_SERVICE_UNAVAILABLE", "matching service is unavailable")
		return
	}

	var req dto.MatchActionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	result, err := action(r.Context(), identity.UserID, req.TargetID)
	if err != nil {
		writeServiceError(w, err, failure)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.MatchActionResponse{
		Outcome:  string(result.Outcome),
		Match:    matchResponse(result.Match, identity.UserID),
		Notified: result.Notified,
	})
}

func (h *MatchesHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeInternal(w, "MATCHING_SERVICE_UNAVAILABLE", "matching service is unavailable")
		return
	}

	status := enums.MatchStatus(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("status"))))
	limit := pageLimit(r.URL.Query().Get("limit"), maxPageLimit)

	rows, err := h.service.ListMatches(r.Context(), identity.UserID, status, limit)
	if err != nil {
		writeServiceError(w, err, "failed to load matches")
		return
	}

	items := make([]dto.MatchItemResponse, 0, len(rows))
	for _, m := range rows {
		items = append(items, matchResponse(m, identity.UserID))
	}

	httperrors.Write(w, http.StatusOK, dto.MatchesResponse{Items: items})
}

func matchResponse(m model.Match, viewerID int64) dto.MatchItemResponse {
	return dto.MatchItemResponse{
		ID:            m.ID,
		InitiatorID:   m.InitiatorID,
		TargetID:      m.TargetID,
		CounterpartID: m.Counterpart(viewerID),
		Status:        string(m.Status),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
