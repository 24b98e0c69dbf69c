package rate

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Nkpro29/chuckle-match-ai/internal/domain/enums"
)

type WindowStore interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// Budget caps one action kind per user. A zero limit disables that window.
type Budget struct {
	PerMinute int
	Per10Sec  int
}

type window struct {
	tag   string
	span  time.Duration
	limit int
}

func (b Budget) windows() []window {
	return []window{
		{tag: "1m", span: time.Minute, limit: b.PerMinute},
		{tag: "10s", span: 10 * time.Second, limit: b.Per10Sec},
	}
}

// Limiter counts likes and passes against separate per-user budgets.
type Limiter struct {
	store   WindowStore
	budgets map[enums.MatchAction]Budget
}

func NewLimiter(store WindowStore, budgets map[enums.MatchAction]Budget) *Limiter {
	clean := make(map[enums.MatchAction]Budget, len(budgets))
	for action, b := range budgets {
		if b.PerMinute < 0 {
			b.PerMinute = 0
		}
		if b.Per10Sec < 0 {
			b.Per10Sec = 0
		}
		clean[action] = b
	}
	return &Limiter{store: store, budgets: clean}
}

// AllowAction counts one action for userID. When a window is exhausted it
// returns allowed=false and the seconds until the longest blocking window
// resets. Actions without a budget are always allowed.
func (l *Limiter) AllowAction(ctx context.Context, userID int64, action enums.MatchAction) (int64, bool, error) {
	if userID <= 0 {
		return 0, false, fmt.Errorf("invalid user id")
	}
	if !action.Valid() {
		return 0, false, fmt.Errorf("unknown match action %q", action)
	}
	if l.store == nil {
		return 0, false, fmt.Errorf("rate limiter store is nil")
	}

	budget, ok := l.budgets[action]
	if !ok {
		return 0, true, nil
	}

	var retryAfterSec int64
	for _, w := range budget.windows() {
		if w.limit <= 0 {
			continue
		}
		count, ttl, err := l.store.IncrementWindow(ctx, windowKey(action, w.tag, userID), w.span)
		if err != nil {
			return 0, false, fmt.Errorf("count %s in %s window: %w", action, w.tag, err)
		}
		if count > int64(w.limit) {
			retryAfterSec = max(retryAfterSec, ceilSeconds(ttl))
		}
	}

	if retryAfterSec > 0 {
		return retryAfterSec, false, nil
	}
	return 0, true, nil
}

func windowKey(action enums.MatchAction, tag string, userID int64) string {
	return "rate:match:" + string(action) + ":" + tag + ":" + strconv.FormatInt(userID, 10)
}

func ceilSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 1
	}
	return int64((d + time.Second - 1) / time.Second)
}
