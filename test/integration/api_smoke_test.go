package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"go.uber.org/zap"

	"github.com/Nkpro29/chuckle-match-ai/internal/app/apiapp"
	"github.com/Nkpro29/chuckle-match-ai/internal/config"
	"github.com/Nkpro29/chuckle-match-ai/internal/domain/enums"
	"github.com/Nkpro29/chuckle-match-ai/internal/domain/model"
	"github.com/Nkpro29/chuckle-match-ai/internal/repo/memory"
)

func TestHealthz(t *testing.T) {
	cfg := config.Default()
	cfg.HTTP.Addr = ":0"

	app, err := apiapp.New(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("create app: %v", err)
	}

	ts := httptest.NewServer(app.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("get healthz: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d", resp.StatusCode, http.StatusOK)
	}

	var payload struct {
		OK bool `json:"ok"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !payload.OK {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func seededStore(t *testing.T) *memory.Store {
	t.Helper()

	store := memory.NewStore()
	for _, id := range []int64{1, 2, 3, 9} {
		store.PutProfile(model.Profile{UserID: id, Username: "user" + strconv.FormatInt(id, 10)})
	}
	store.PutArtifact(model.Artifact{ID: 20, OwnerID: 2, Type: enums.ArtifactTypeJoke, Content: "a", IsFeatured: true})
	store.PutArtifact(model.Artifact{ID: 21, OwnerID: 2, Type: enums.ArtifactTypeJoke, Content: "b"})
	store.PutArtifact(model.Artifact{ID: 30, OwnerID: 3, Type: enums.ArtifactTypeJoke, Content: "c"})
	store.PutArtifact(model.Artifact{ID: 10, OwnerID: 1, Type: enums.ArtifactTypePrompt, Content: "d"})
	store.PutArtifact(model.Artifact{ID: 11, OwnerID: 1, Type: enums.ArtifactTypePrompt, Content: "e"})

	for _, r := range []model.Rating{
		// user 1 on user 2: similarity 1 and 0.5, score 75.
		{RaterID: 1, ArtifactID: 20, Value: 4},
		{RaterID: 9, ArtifactID: 20, Value: 4},
		{RaterID: 1, ArtifactID: 21, Value: 5},
		{RaterID: 9, ArtifactID: 21, Value: 3},
		// user 1 on user 3: one shared artifact, below the threshold.
		{RaterID: 1, ArtifactID: 30, Value: 5},
		{RaterID: 9, ArtifactID: 30, Value: 3},
		// user 2 on user 1.
		{RaterID: 2, ArtifactID: 10, Value: 3},
		{RaterID: 9, ArtifactID: 10, Value: 3},
		{RaterID: 2, ArtifactID: 11, Value: 2},
		{RaterID: 9, ArtifactID: 11, Value: 2},
	} {
		if err := store.PutRating(r); err != nil {
			t.Fatalf("seed rating: %v", err)
		}
	}
	return store
}

type client struct {
	t    *testing.T
	base string
}

func (c client) do(method, path string, userID int64, body any) (int, map[string]any) {
	c.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, c.base+path, reader)
	if err != nil {
		c.t.Fatalf("build request: %v", err)
	}
	if userID > 0 {
		req.Header.Set("X-User-ID", strconv.FormatInt(userID, 10))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.t.Fatalf("decode %s %s: %v", method, path, err)
	}
	return resp.StatusCode, payload
}

func TestMatchFlowOverHTTP(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	cfg := config.Default()
	cfg.HTTP.Addr = ":0"
	cfg.Redis.Addr = mr.Addr()

	app, err := apiapp.New(context.Background(), cfg, zap.NewNop(), apiapp.WithMemoryStore(seededStore(t)))
	if err != nil {
		t.Fatalf("create app: %v", err)
	}
	defer func() { _ = app.Shutdown(context.Background()) }()

	if mode := app.Mode(); mode != (apiapp.Mode{Store: "memory", RateLimited: true, Notifications: true}) {
		t.Fatalf("unexpected app mode: %+v", mode)
	}

	ts := httptest.NewServer(app.Handler())
	defer ts.Close()
	c := client{t: t, base: ts.URL}

	status, _ := c.do(http.MethodGet, "/v1/candidates", 0, nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("candidates without identity: got %d", status)
	}

	status, body := c.do(http.MethodGet, "/v1/candidates", 1, nil)
	if status != http.StatusOK {
		t.Fatalf("candidates: unexpected status %d", status)
	}
	items, _ := body["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("expected only user 2 in the queue, got %v", body)
	}
	first, _ := items[0].(map[string]any)
	if first["score"] != 75.0 {
		t.Fatalf("unexpected score: %v", first["score"])
	}

	status, body = c.do(http.MethodPost, "/v1/matches/like", 1, map[string]int64{"target_id": 2})
	if status != http.StatusOK || body["outcome"] != "pending" {
		t.Fatalf("like: unexpected %d %v", status, body)
	}

	status, body = c.do(http.MethodPost, "/v1/matches/like", 1, map[string]int64{"target_id": 2})
	if status != http.StatusConflict || body["code"] != "MATCH_CONFLICT" {
		t.Fatalf("repeat like: unexpected %d %v", status, body)
	}

	status, body = c.do(http.MethodPost, "/v1/matches/like", 2, map[string]int64{"target_id": 1})
	if status != http.StatusOK || body["outcome"] != "mutual" || body["notified"] != true {
		t.Fatalf("like back: unexpected %d %v", status, body)
	}

	status, body = c.do(http.MethodGet, "/v1/matches", 1, nil)
	if status != http.StatusOK {
		t.Fatalf("matches: unexpected status %d", status)
	}
	if items, _ := body["items"].([]any); len(items) != 1 {
		t.Fatalf("expected one mutual match, got %v", body)
	}

	status, body = c.do(http.MethodGet, "/v1/notifications", 2, nil)
	if status != http.StatusOK {
		t.Fatalf("notifications: unexpected status %d", status)
	}
	if items, _ := body["items"].([]any); len(items) != 1 {
		t.Fatalf("expected one notification, got %v", body)
	}

	status, body = c.do(http.MethodGet, "/v1/candidates", 1, nil)
	if items, _ := body["items"].([]any); status != http.StatusOK || len(items) != 0 {
		t.Fatalf("matched candidate must leave the queue, got %d %v", status, body)
	}

	status, body = c.do(http.MethodPost, "/v1/matches/pass", 1, map[string]int64{"target_id": 2})
	if status != http.StatusOK || body["outcome"] != "unchanged" {
		t.Fatalf("pass on mutual: unexpected %d %v", status, body)
	}
}

func TestNotificationsDisabledWithoutRedis(t *testing.T) {
	cfg := config.Default()
	cfg.HTTP.Addr = ":0"

	app, err := apiapp.New(context.Background(), cfg, zap.NewNop(), apiapp.WithMemoryStore(seededStore(t)))
	if err != nil {
		t.Fatalf("create app: %v", err)
	}
	defer func() { _ = app.Shutdown(context.Background()) }()

	if mode := app.Mode(); mode.RateLimited || mode.Notifications {
		t.Fatalf("redis-backed features must be off without an address: %+v", mode)
	}

	ts := httptest.NewServer(app.Handler())
	defer ts.Close()
	c := client{t: t, base: ts.URL}

	status, body := c.do(http.MethodGet, "/v1/notifications", 1, nil)
	if status != http.StatusServiceUnavailable {
		t.Fatalf("notifications: unexpected status %d", status)
	}
	if body["code"] != "NOTIFICATIONS_DISABLED" {
		t.Fatalf("unexpected error body: %v", body)
	}
}
