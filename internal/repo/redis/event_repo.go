package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Nkpro29/chuckle-match-ai/internal/domain/model"
)

const (
	DefaultEventChannel = "matches:mutual"
	matchInboxPrefix    = "match_inbox:"
)

type EventRepoConfig struct {
	Channel   string
	InboxSize int
	InboxTTL  time.Duration
}

// EventRepo fans mutual match events out on a pub/sub channel and keeps a
// capped per-user inbox so offline users can read them later.
type EventRepo struct {
	client *goredis.Client
	cfg    EventRepoConfig
}

func NewEventRepo(client *goredis.Client, cfg EventRepoConfig) *EventRepo {
	if cfg.Channel == "" {
		cfg.Channel = DefaultEventChannel
	}
	if cfg.InboxSize <= 0 {
		cfg.InboxSize = 50
	}
	if cfg.InboxTTL <= 0 {
		cfg.InboxTTL = 30 * 24 * time.Hour
	}
	return &EventRepo{client: client, cfg: cfg}
}

func (r *EventRepo) PublishMutual(ctx context.Context, event model.MutualMatchEvent) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode mutual match event: %w", err)
	}

	pipe := r.client.TxPipeline()
	for _, userID := range event.UserIDs {
		key := inboxKey(userID)
		pipe.LPush(ctx, key, payload)
		pipe.LTrim(ctx, key, 0, int64(r.cfg.InboxSize-1))
		pipe.Expire(ctx, key, r.cfg.InboxTTL)
	}
	pipe.Publish(ctx, r.cfg.Channel, payload)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish mutual match event: %w", err)
	}
	return nil
}

// Inbox returns the newest events first.
func (r *EventRepo) Inbox(ctx context.Context, userID int64, limit int) ([]model.MutualMatchEvent, error) {
	if r.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	if limit <= 0 || limit > r.cfg.InboxSize {
		limit = r.cfg.InboxSize
	}

	raw, err := r.client.LRange(ctx, inboxKey(userID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("read match inbox: %w", err)
	}

	events := make([]model.MutualMatchEvent, 0, len(raw))
	for _, item := range raw {
		var event model.MutualMatchEvent
		if err := json.Unmarshal([]byte(item), &event); err != nil {
			return nil, fmt.Errorf("decode mutual match event: %w", err)
		}
		events = append(events, event)
	}
	return events, nil
}

// Subscribe listens on the mutual match channel. The caller closes the
// returned subscription.
func (r *EventRepo) Subscribe(ctx context.Context) *goredis.PubSub {
	return r.client.Subscribe(ctx, r.cfg.Channel)
}

func inboxKey(userID int64) string {
	return matchInboxPrefix + strconv.FormatInt(userID, 10)
}
