package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/Nkpro29/chuckle-match-ai/internal/domain/model"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	client := NewClient(mr.Addr(), "", 0)
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	return mr, client
}

func TestEventRepoWritesBothInboxes(t *testing.T) {
	_, client := newTestClient(t)
	repo := NewEventRepo(client, EventRepoConfig{InboxSize: 2})
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		event := model.MutualMatchEvent{
			ID:         uuid.New(),
			MatchID:    i,
			UserIDs:    [2]int64{10, 20 + i},
			OccurredAt: time.Date(2026, 10, 1, 12, 0, int(i), 0, time.UTC),
		}
		if err := repo.PublishMutual(ctx, event); err != nil {
			t.Fatalf("publish event %d: %v", i, err)
		}
	}

	inbox, err := repo.Inbox(ctx, 10, 0)
	if err != nil {
		t.Fatalf("read inbox: %v", err)
	}
	if len(inbox) != 2 {
		t.Fatalf("inbox must be capped at 2, got %d", len(inbox))
	}
	if inbox[0].MatchID != 3 || inbox[1].MatchID != 2 {
		t.Fatalf("unexpected inbox order: %d, %d", inbox[0].MatchID, inbox[1].MatchID)
	}

	other, err := repo.Inbox(ctx, 22, 10)
	if err != nil {
		t.Fatalf("read counterpart inbox: %v", err)
	}
	if len(other) != 1 || other[0].MatchID != 2 {
		t.Fatalf("unexpected counterpart inbox: %+v", other)
	}
}

func TestEventRepoPublishesOnChannel(t *testing.T) {
	_, client := newTestClient(t)
	repo := NewEventRepo(client, EventRepoConfig{})
	ctx := context.Background()

	sub := repo.Subscribe(ctx)
	defer func() { _ = sub.Close() }()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("confirm subscription: %v", err)
	}

	event := model.MutualMatchEvent{ID: uuid.New(), MatchID: 9, UserIDs: [2]int64{1, 2}}
	if err := repo.PublishMutual(ctx, event); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case msg := <-sub.Channel():
		var got model.MutualMatchEvent
		if err := json.Unmarshal([]byte(msg.Payload), &got); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if got.ID != event.ID || got.MatchID != 9 {
			t.Fatalf("unexpected event: %+v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for published event")
	}
}

func TestRateRepoWindow(t *testing.T) {
	mr, client := newTestClient(t)
	repo := NewRateRepo(client)
	ctx := context.Background()

	count, ttl, err := repo.IncrementWindow(ctx, "rate:test", 10*time.Second)
	if err != nil {
		t.Fatalf("increment: %v", err)
	}
	if count != 1 || ttl <= 0 || ttl > 10*time.Second {
		t.Fatalf("unexpected first window: count=%d ttl=%s", count, ttl)
	}
	if count, _, _ = repo.IncrementWindow(ctx, "rate:test", 10*time.Second); count != 2 {
		t.Fatalf("unexpected second count: %d", count)
	}

	mr.FastForward(11 * time.Second)
	count, ttl, err = repo.IncrementWindow(ctx, "rate:test", 10*time.Second)
	if err != nil {
		t.Fatalf("increment after expiry: %v", err)
	}
	if count != 1 || ttl <= 0 {
		t.Fatalf("expected a fresh window after expiry: count=%d ttl=%s", count, ttl)
	}
}
