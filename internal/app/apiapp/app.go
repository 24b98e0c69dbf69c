package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Nkpro29/chuckle-match-ai/internal/config"
	"github.com/Nkpro29/chuckle-match-ai/internal/domain/enums"
	"github.com/Nkpro29/chuckle-match-ai/internal/repo/memory"
	pgrepo "github.com/Nkpro29/chuckle-match-ai/internal/repo/postgres"
	redrepo "github.com/Nkpro29/chuckle-match-ai/internal/repo/redis"
	matchingsvc "github.com/Nkpro29/chuckle-match-ai/internal/services/matching"
	ratesvc "github.com/Nkpro29/chuckle-match-ai/internal/services/rate"
)

// Mode reports which backends the app ended up wired to.
type Mode struct {
	Store         string
	RateLimited   bool
	Notifications bool
}

type App struct {
	mode       Mode
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	service    *matchingsvc.Service
	httpRouter http.Handler
}

type Option func(*options)

type options struct {
	memoryStore *memory.Store
}

// WithMemoryStore makes the app serve from store instead of postgres.
func WithMemoryStore(store *memory.Store) Option {
	return func(o *options) {
		o.memoryStore = store
	}
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger, opts ...Option) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log, cfg.HTTP.RequestTimeout)

	stores, pool, err := openStores(ctx, cfg, log, o.memoryStore)
	if err != nil {
		return nil, err
	}
	mode := Mode{Store: storeMemory}
	if pool != nil {
		mode.Store = storePostgres
	}

	deps := matchingsvc.Dependencies{
		Ratings:    stores.ratings,
		Candidates: stores.candidates,
		Matches:    stores.matches,
		Logger:     log,
	}

	var redisClient *goredis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		deps.RateLimiter = ratesvc.NewLimiter(redrepo.NewRateRepo(redisClient), map[enums.MatchAction]ratesvc.Budget{
			enums.MatchActionLike: {PerMinute: cfg.Rate.Like.PerMinute, Per10Sec: cfg.Rate.Like.Per10Sec},
			enums.MatchActionPass: {PerMinute: cfg.Rate.Pass.PerMinute, Per10Sec: cfg.Rate.Pass.Per10Sec},
		})
		deps.Notifier = redrepo.NewEventRepo(redisClient, redrepo.EventRepoConfig{
			Channel:   cfg.Notify.Channel,
			InboxSize: cfg.Notify.InboxSize,
			InboxTTL:  cfg.Notify.InboxTTL,
		})
		mode.RateLimited = true
		mode.Notifications = true
	} else {
		log.Warn("redis addr is empty, rate limiting and match notifications are disabled")
	}

	service := matchingsvc.NewService(deps, matchingsvc.Config{
		MinMutualInteractions: cfg.Matching.MinMutualInteractions,
		CandidateLimit:        cfg.Matching.CandidateLimit,
		ConflictRetries:       cfg.Matching.ConflictRetries,
	})

	routeDeps := Dependencies{
		MatchingService: service,
		Logger:          log,
	}
	if pool != nil {
		routeDeps.Store = pool
	}
	RegisterRoutes(r, routeDeps)

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	return &App{
		mode:       mode,
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		service:    service,
		httpRouter: r,
	}, nil
}

const (
	storeMemory   = "memory"
	storePostgres = "postgres"
)

type storeSet struct {
	ratings    matchingsvc.RatingStore
	candidates matchingsvc.CandidateStore
	matches    matchingsvc.MatchStore
}

func memoryStores(store *memory.Store) storeSet {
	return storeSet{ratings: store, candidates: store, matches: store}
}

// openStores picks postgres when a DSN is configured. Outside production a
// failing pool falls back to the memory store.
func openStores(ctx context.Context, cfg config.Config, log *zap.Logger, mem *memory.Store) (storeSet, *pgxpool.Pool, error) {
	if mem != nil {
		return memoryStores(mem), nil, nil
	}
	if cfg.Postgres.DSN == "" {
		log.Warn("postgres dsn is empty, serving from the in-memory store")
		return memoryStores(memory.NewStore()), nil, nil
	}

	pool, err := pgrepo.NewPool(ctx, pgrepo.PoolConfig{
		DSN:            cfg.Postgres.DSN,
		MaxConns:       int32(cfg.Postgres.MaxConns),
		ConnectTimeout: cfg.Postgres.ConnectTimeout,
	})
	if err != nil {
		if cfg.Env == "prod" {
			return storeSet{}, nil, fmt.Errorf("postgres init: %w", err)
		}
		log.Warn("postgres init failed, continuing in degraded mode on the in-memory store", zap.Error(err))
		return memoryStores(memory.NewStore()), nil, nil
	}

	if cfg.Postgres.AutoMigrate {
		if err := pgrepo.EnsureSchema(ctx, pool); err != nil {
			log.Warn("postgres schema check failed", zap.Error(err))
		}
	}

	return storeSet{
		ratings:    pgrepo.NewRatingRepo(pool),
		candidates: pgrepo.NewCandidateRepo(pool),
		matches:    pgrepo.NewMatchRepo(pool),
	}, pool, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Mode() Mode {
	return a.mode
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}

func (a *App) Service() *matchingsvc.Service {
	return a.service
}
