package auth

import (
	"context"
	"testing"
)

func TestIdentityRoundTrip(t *testing.T) {
	if _, ok := IdentityFromContext(context.Background()); ok {
		t.Fatalf("empty context must not carry an identity")
	}

	ctx := WithIdentity(context.Background(), Identity{UserID: 42})
	identity, ok := IdentityFromContext(ctx)
	if !ok || identity.UserID != 42 {
		t.Fatalf("unexpected identity: %+v ok=%v", identity, ok)
	}
}

func TestParseUserID(t *testing.T) {
	cases := []struct {
		raw  string
		want int64
		ok   bool
	}{
		{raw: "7", want: 7, ok: true},
		{raw: " 12 ", want: 12, ok: true},
		{raw: "0"},
		{raw: "-3"},
		{raw: "abc"},
		{raw: ""},
	}
	for _, tc := range cases {
		got, ok := ParseUserID(tc.raw)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("parse %q: got (%d, %v) want (%d, %v)", tc.raw, got, ok, tc.want, tc.ok)
		}
	}
}
