package handlers

import (
	"net/http"

	matchingsvc "github.com/Nkpro29/chuckle-match-ai/internal/services/matching"
	"github.com/Nkpro29/chuckle-match-ai/internal/transport/http/dto"
	httperrors "github.com/Nkpro29/chuckle-match-ai/internal/transport/http/errors"
)

const defaultNotificationsLimit = 20

type NotificationsHandler struct {
	service *matchingsvc.Service
}

func NewNotificationsHandler(service *matchingsvc.Service) *NotificationsHandler {
	return &NotificationsHandler{service: service}
}

func (h *NotificationsHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeInternal(w, "MATCHING_SERVICE_UNAVAILABLE", "matching service is unavailable")
		return
	}

	limit := pageLimit(r.URL.Query().Get("limit"), defaultNotificationsLimit)
	events, err := h.service.Notifications(r.Context(), identity.UserID, limit)
	if err != nil {
		writeServiceError(w, err, "failed to load notifications")
		return
	}

	items := make([]dto.NotificationItemResponse, 0, len(events))
	for _, e := range events {
		items = append(items, dto.NotificationItemResponse{
			ID:         e.ID.String(),
			MatchID:    e.MatchID,
			UserIDs:    e.UserIDs,
			OccurredAt: e.OccurredAt,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.NotificationsResponse{Items: items})
}
