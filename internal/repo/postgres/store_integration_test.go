package postgres

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Nkpro29/chuckle-match-ai/internal/domain/apperr"
	"github.com/Nkpro29/chuckle-match-ai/internal/domain/enums"
	"github.com/Nkpro29/chuckle-match-ai/internal/domain/model"
	"github.com/Nkpro29/chuckle-match-ai/internal/services/matchstate"
)

// Set TEST_POSTGRES_DSN to a disposable database to run these tests.
const testDSNEnv = "TEST_POSTGRES_DSN"

func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv(testDSNEnv)
	if dsn == "" {
		t.Skipf("%s is not set", testDSNEnv)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := NewPool(ctx, PoolConfig{DSN: dsn, MaxConns: 8, ConnectTimeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("open pool: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := EnsureSchema(ctx, pool); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return pool
}

// seedUsers creates n profiles with ids unique to this run and removes them,
// with everything that references them, when the test ends.
func seedUsers(t *testing.T, pool *pgxpool.Pool, n int) []int64 {
	t.Helper()

	base := time.Now().UnixNano() / 1000
	ids := make([]int64, n)
	err := WithWriteTx(context.Background(), pool, func(ctx context.Context, w WriteTx) error {
		for i := range ids {
			ids[i] = base + int64(i)
			if err := w.UpsertProfile(ctx, model.Profile{UserID: ids[i], Username: "it"}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("seed profiles: %v", err)
	}

	t.Cleanup(func() {
		if _, err := pool.Exec(context.Background(), `DELETE FROM profiles WHERE user_id = ANY($1)`, ids); err != nil {
			t.Errorf("cleanup profiles: %v", err)
		}
	})
	return ids
}

func TestMatchRepoKeepsOneRowPerPair(t *testing.T) {
	pool := newTestPool(t)
	users := seedUsers(t, pool, 2)
	alice, bob := users[0], users[1]
	repo := NewMatchRepo(pool)
	ctx := context.Background()

	created, err := repo.Insert(ctx, alice, bob, enums.MatchStatusPending)
	if err != nil {
		t.Fatalf("insert pending: %v", err)
	}

	_, err = repo.Insert(ctx, bob, alice, enums.MatchStatusPending)
	ce, ok := apperr.IsConflict(err)
	if !ok {
		t.Fatalf("expected conflict for reverse insert, got %v", err)
	}
	if ce.Status != enums.MatchStatusPending {
		t.Fatalf("unexpected conflict status: %q", ce.Status)
	}

	if _, err := repo.FindDirected(ctx, bob, alice); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("reverse direction must not be found, got %v", err)
	}
	pair, err := repo.FindPair(ctx, bob, alice)
	if err != nil {
		t.Fatalf("find pair: %v", err)
	}
	if pair.ID != created.ID {
		t.Fatalf("find pair returned row %d, want %d", pair.ID, created.ID)
	}
}

func TestMatchRepoCompareAndSetIsGuardedByStatus(t *testing.T) {
	pool := newTestPool(t)
	users := seedUsers(t, pool, 2)
	repo := NewMatchRepo(pool)
	ctx := context.Background()

	created, err := repo.Insert(ctx, users[0], users[1], enums.MatchStatusPending)
	if err != nil {
		t.Fatalf("insert pending: %v", err)
	}

	updated, ok, err := repo.CompareAndSetStatus(ctx, created.ID, enums.MatchStatusPending, enums.MatchStatusMutual)
	if err != nil || !ok {
		t.Fatalf("first compare-and-set: ok=%v err=%v", ok, err)
	}
	if updated.Status != enums.MatchStatusMutual {
		t.Fatalf("unexpected status after update: %q", updated.Status)
	}

	current, ok, err := repo.CompareAndSetStatus(ctx, created.ID, enums.MatchStatusPending, enums.MatchStatusDeclined)
	if err != nil {
		t.Fatalf("second compare-and-set: %v", err)
	}
	if ok || current.Status != enums.MatchStatusMutual {
		t.Fatalf("stale compare-and-set must not write: ok=%v status=%q", ok, current.Status)
	}

	rows, err := repo.ListForUser(ctx, users[1], []enums.MatchStatus{enums.MatchStatusMutual}, 10)
	if err != nil {
		t.Fatalf("list mutual: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != created.ID {
		t.Fatalf("unexpected mutual rows: %+v", rows)
	}
}

func TestConcurrentLikesOnPostgresMakeOneMutual(t *testing.T) {
	pool := newTestPool(t)
	users := seedUsers(t, pool, 2)
	machine := matchstate.NewMachine(NewMatchRepo(pool))
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		mutuals int
	)
	for i := 0; i < 6; i++ {
		from, to := users[0], users[1]
		if i%2 == 1 {
			from, to = to, from
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr, err := machine.Like(ctx, from, to)
			if err != nil {
				if !errors.Is(err, apperr.ErrConflict) {
					t.Errorf("unexpected like error: %v", err)
				}
				return
			}
			if tr.Outcome == enums.MatchOutcomeMutual {
				mu.Lock()
				mutuals++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	var rows int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM matches WHERE initiator_id = ANY($1)`, users).Scan(&rows); err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if rows != 1 {
		t.Fatalf("expected one row for the pair, got %d", rows)
	}
	if mutuals > 1 {
		t.Fatalf("pair became mutual %d times", mutuals)
	}
}

func TestWriteTxRollsBackOnError(t *testing.T) {
	pool := newTestPool(t)
	users := seedUsers(t, pool, 1)
	ghost := users[0] + 500_000_000
	ctx := context.Background()

	boom := errors.New("boom")
	err := WithWriteTx(ctx, pool, func(ctx context.Context, w WriteTx) error {
		if err := w.UpsertProfile(ctx, model.Profile{UserID: ghost, Username: "ghost"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected fn error, got %v", err)
	}

	if _, err := NewCandidateRepo(pool).GetProfile(ctx, ghost); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("rolled back profile must not exist, got %v", err)
	}
}

func TestCandidateRepoGroupsRatingsPerArtifact(t *testing.T) {
	pool := newTestPool(t)
	users := seedUsers(t, pool, 3)
	caller, owner, critic := users[0], users[1], users[2]
	ctx := context.Background()

	var artifactID int64
	err := WithWriteTx(ctx, pool, func(ctx context.Context, w WriteTx) error {
		stored, err := w.InsertArtifact(ctx, model.Artifact{OwnerID: owner, Type: enums.ArtifactTypeJoke, Content: "knock knock"})
		if err != nil {
			return err
		}
		artifactID = stored.ID
		for _, r := range []model.Rating{
			{RaterID: caller, ArtifactID: stored.ID, Value: 4},
			{RaterID: critic, ArtifactID: stored.ID, Value: 2},
		} {
			if err := w.UpsertRating(ctx, r); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("seed artifact: %v", err)
	}

	candidates, err := NewCandidateRepo(pool).ListCandidates(ctx, caller)
	if err != nil {
		t.Fatalf("list candidates: %v", err)
	}

	var found *model.Candidate
	for i := range candidates {
		if candidates[i].Profile.UserID == caller {
			t.Fatalf("caller must not be listed as a candidate")
		}
		if candidates[i].Profile.UserID == owner {
			found = &candidates[i]
		}
	}
	if found == nil {
		t.Fatalf("owner %d missing from candidates", owner)
	}
	if len(found.Artifacts) != 1 || found.Artifacts[0].ID != artifactID {
		t.Fatalf("unexpected artifacts: %+v", found.Artifacts)
	}
	if len(found.Artifacts[0].Ratings) != 2 {
		t.Fatalf("expected both ratings on the artifact, got %+v", found.Artifacts[0].Ratings)
	}
}
