package handlers

import (
	"context"
	"net/http"
	"time"

	httperrors "github.com/Nkpro29/chuckle-match-ai/internal/transport/http/errors"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	store Pinger
}

// NewHealthHandler takes the store to probe on readiness checks. A nil
// store means there is nothing external to probe.
func NewHealthHandler(store Pinger) *HealthHandler {
	return &HealthHandler{store: store}
}

func (h *HealthHandler) Get(w http.ResponseWriter, _ *http.Request) {
	httperrors.Write(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.store.Ping(ctx); err != nil {
			httperrors.Write(w, http.StatusServiceUnavailable, httperrors.APIError{
				Code:    "STORE_UNAVAILABLE",
				Message: "store is not reachable",
			})
			return
		}
	}
	httperrors.Write(w, http.StatusOK, map[string]bool{"ok": true})
}
