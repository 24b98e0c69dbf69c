package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/Nkpro29/chuckle-match-ai/internal/domain/apperr"
	authsvc "github.com/Nkpro29/chuckle-match-ai/internal/services/auth"
	matchingsvc "github.com/Nkpro29/chuckle-match-ai/internal/services/matching"
	httperrors "github.com/Nkpro29/chuckle-match-ai/internal/transport/http/errors"
)

const maxPageLimit = 50

func decodeJSON(r *http.Request, target any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func writeBadRequest(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusBadRequest, httperrors.APIError{Code: code, Message: message})
}

func writeUnauthorized(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusUnauthorized, httperrors.APIError{Code: code, Message: message})
}

func writeInternal(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusInternalServerError, httperrors.APIError{Code: code, Message: message})
}

func parseIntOrDefault(raw string, fallback int) int {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return value
}

func pageLimit(raw string, fallback int) int {
	limit := parseIntOrDefault(raw, fallback)
	if limit <= 0 {
		return fallback
	}
	if limit > maxPageLimit {
		return maxPageLimit
	}
	return limit
}

func requireIdentity(w http.ResponseWriter, r *http.Request) (authsvc.Identity, bool) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok || identity.UserID <= 0 {
		writeUnauthorized(w, "UNAUTHORIZED", "caller identity required")
		return authsvc.Identity{}, false
	}
	return identity, true
}

// writeServiceError maps matching errors onto the HTTP error contract.
// fallback is the message used for unexpected failures.
func writeServiceError(w http.ResponseWriter, err error, fallback string) {
	if ve, ok := apperr.IsValidation(err); ok {
		httperrors.Write(w, http.StatusBadRequest, httperrors.ValidationError{
			Code:    "VALIDATION_ERROR",
			Message: ve.Reason,
			Field:   ve.Field,
		})
		return
	}
	if tf, ok := matchingsvc.IsTooFast(err); ok {
		w.Header().Set("Retry-After", strconv.FormatInt(tf.RetryAfter(), 10))
		httperrors.Write(w, http.StatusTooManyRequests, httperrors.RateLimitError{
			Code:          "TOO_FAST",
			Message:       "too many match actions, slow down",
			RetryAfterSec: tf.RetryAfter(),
		})
		return
	}
	if nf, ok := apperr.IsNotFound(err); ok {
		httperrors.Write(w, http.StatusNotFound, httperrors.APIError{
			Code:    "NOT_FOUND",
			Message: nf.Entity + " not found",
		})
		return
	}
	if ce, ok := apperr.IsConflict(err); ok {
		httperrors.Write(w, http.StatusConflict, httperrors.ConflictError{
			Code:    "MATCH_CONFLICT",
			Message: "pair already has a match in a conflicting state",
			Status:  string(ce.Status),
		})
		return
	}
	if errors.Is(err, apperr.ErrTransient) {
		httperrors.Write(w, http.StatusServiceUnavailable, httperrors.APIError{
			Code:    "STORE_UNAVAILABLE",
			Message: "storage is temporarily unavailable, retry later",
		})
		return
	}
	if errors.Is(err, matchingsvc.ErrNotificationsDisabled) {
		httperrors.Write(w, http.StatusServiceUnavailable, httperrors.APIError{
			Code:    "NOTIFICATIONS_DISABLED",
			Message: "match notifications are not configured",
		})
		return
	}
	if errors.Is(err, matchingsvc.ErrDependenciesNil) {
		writeInternal(w, "MATCHING_SERVICE_UNAVAILABLE", "matching service is unavailable")
		return
	}
	writeInternal(w, "INTERNAL_ERROR", fallback)
}
