package auth

import (
	"context"
	"strconv"
	"strings"
)

// UserIDHeader carries the caller's user ID. Authentication happens in front
// of this service; requests reaching it are already trusted.
const UserIDHeader = "X-User-ID"

type identityContextKey string

const identityKey identityContextKey = "auth_identity"

type Identity struct {
	UserID int64
}

func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey).(Identity)
	return identity, ok
}

// ParseUserID reads a positive user ID from a header value.
func ParseUserID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
