package matching

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Nkpro29/chuckle-match-ai/internal/domain/apperr"
	"github.com/Nkpro29/chuckle-match-ai/internal/domain/enums"
	"github.com/Nkpro29/chuckle-match-ai/internal/domain/model"
	"github.com/Nkpro29/chuckle-match-ai/internal/domain/rules"
	"github.com/Nkpro29/chuckle-match-ai/internal/services/matchstate"
)

var (
	ErrDependenciesNil = errors.New("matching dependencies are not configured")
	// ErrNotificationsDisabled is returned by Notifications when no notifier
	// is configured.
	ErrNotificationsDisabled = errors.New("match notifications are disabled")
)

type TooFastError struct {
	RetryAfterSec int64
}

func (e TooFastError) Error() string {
	return "too fast"
}

func (e TooFastError) RetryAfter() int64 {
	if e.RetryAfterSec <= 0 {
		return 1
	}
	return e.RetryAfterSec
}

func IsTooFast(err error) (*TooFastError, bool) {
	var tf TooFastError
	if errors.As(err, &tf) {
		return &tf, true
	}
	return nil, false
}

type RatingStore interface {
	ListByRater(ctx context.Context, raterID int64) ([]model.Rating, error)
}

type CandidateStore interface {
	GetProfile(ctx context.Context, userID int64) (model.Profile, error)
	ListCandidates(ctx context.Context, excludeUserID int64) ([]model.Candidate, error)
}

type MatchStore interface {
	matchstate.Store
	ListForUser(ctx context.Context, userID int64, statuses []enums.MatchStatus, limit int) ([]model.Match, error)
}

type Notifier interface {
	PublishMutual(ctx context.Context, event model.MutualMatchEvent) error
	Inbox(ctx context.Context, userID int64, limit int) ([]model.MutualMatchEvent, error)
}

type RateLimiter interface {
	AllowAction(ctx context.Context, userID int64, action enums.MatchAction) (int64, bool, error)
}

type Config struct {
	MinMutualInteractions int
	CandidateLimit        int
	// ConflictRetries is how many times a conflicting like is re-evaluated
	// before the conflict is returned.
	ConflictRetries int
}

type Dependencies struct {
	Ratings     RatingStore
	Candidates  CandidateStore
	Matches     MatchStore
	Notifier    Notifier
	RateLimiter RateLimiter
	Logger      *zap.Logger
}

type ActionResult struct {
	Match   model.Match
	Outcome enums.MatchOutcome
	// Notified is false when a mutual match event could not be delivered.
	Notified bool
}

type Service struct {
	ratings     RatingStore
	candidates  CandidateStore
	matches     MatchStore
	notifier    Notifier
	rateLimiter RateLimiter
	machine     *matchstate.Machine
	logger      *zap.Logger
	cfg         Config
}

func NewService(deps Dependencies, cfg Config) *Service {
	if cfg.MinMutualInteractions <= 0 {
		cfg.MinMutualInteractions = rules.MinMutualInteractions
	}
	if cfg.CandidateLimit <= 0 {
		cfg.CandidateLimit = rules.DefaultCandidateLimit
	}
	if cfg.ConflictRetries < 0 {
		cfg.ConflictRetries = 0
	}

	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	var machine *matchstate.Machine
	if deps.Matches != nil {
		machine = matchstate.NewMachine(deps.Matches)
	}

	return &Service{
		ratings:     deps.Ratings,
		candidates:  deps.Candidates,
		matches:     deps.Matches,
		notifier:    deps.Notifier,
		rateLimiter: deps.RateLimiter,
		machine:     machine,
		logger:      log,
		cfg:         cfg,
	}
}

// Rank builds the caller's match queue. limit <= 0 uses the configured
// candidate limit.
func (s *Service) Rank(ctx context.Context, userID int64, limit int) ([]model.RankedCandidate, error) {
	if userID <= 0 {
		return nil, apperr.Validation("user_id", "must be positive")
	}
	if s.ratings == nil || s.candidates == nil || s.matches == nil {
		return nil, ErrDependenciesNil
	}
	if limit <= 0 {
		limit = s.cfg.CandidateLimit
	}

	var (
		myRatings  []model.Rating
		candidates []model.Candidate
		existing   []model.Match
	)

	grp, grpCtx := errgroup.WithContext(ctx)
	grp.Go(func() error {
		rows, err := s.ratings.ListByRater(grpCtx, userID)
		if err != nil {
			return fmt.Errorf("load caller ratings: %w", err)
		}
		myRatings = rows
		return nil
	})
	grp.Go(func() error {
		rows, err := s.candidates.ListCandidates(grpCtx, userID)
		if err != nil {
			return fmt.Errorf("load candidates: %w", err)
		}
		candidates = rows
		return nil
	})
	grp.Go(func() error {
		rows, err := s.matches.ListForUser(grpCtx, userID, nil, 0)
		if err != nil {
			return fmt.Errorf("load caller matches: %w", err)
		}
		existing = rows
		return nil
	})
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	ranked, err := rules.Rank(userID, myRatings, candidates, existing, rules.RankOptions{
		MinMutualInteractions: s.cfg.MinMutualInteractions,
		Limit:                 limit,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("candidates ranked",
		zap.Int64("user_id", userID),
		zap.Int("considered", len(candidates)),
		zap.Int("returned", len(ranked)),
	)
	return ranked, nil
}

func (s *Service) Like(ctx context.Context, userID, targetID int64) (ActionResult, error) {
	if err := s.prepareAction(ctx, userID, targetID, enums.MatchActionLike); err != nil {
		return ActionResult{}, err
	}

	var (
		tr  matchstate.Transition
		err error
	)
	for attempt := 0; ; attempt++ {
		tr, err = s.machine.Like(ctx, userID, targetID)
		if err == nil {
			break
		}
		// A conflict can be the other side's like landing concurrently; run
		// the transition again so it is seen as a reverse pending row.
		if _, ok := apperr.IsConflict(err); !ok || attempt >= s.cfg.ConflictRetries {
			return ActionResult{}, err
		}
		s.logger.Debug("like conflicted, re-evaluating pair",
			zap.Int64("user_id", userID),
			zap.Int64("target_id", targetID),
			zap.Int("attempt", attempt+1),
		)
	}

	result := ActionResult{Match: tr.Match, Outcome: tr.Outcome}
	if tr.Event != nil {
		result.Notified = s.notify(ctx, *tr.Event)
		s.logger.Info("mutual match",
			zap.Int64("match_id", tr.Match.ID),
			zap.Int64("user_id", userID),
			zap.Int64("target_id", targetID),
		)
	}
	return result, nil
}

func (s *Service) Pass(ctx context.Context, userID, targetID int64) (ActionResult, error) {
	if err := s.prepareAction(ctx, userID, targetID, enums.MatchActionPass); err != nil {
		return ActionResult{}, err
	}

	tr, err := s.machine.Pass(ctx, userID, targetID)
	if err != nil {
		return ActionResult{}, err
	}
	return ActionResult{Match: tr.Match, Outcome: tr.Outcome}, nil
}

// ListMatches returns the caller's match rows with the given status, newest
// first. An empty status means mutual.
func (s *Service) ListMatches(ctx context.Context, userID int64, status enums.MatchStatus, limit int) ([]model.Match, error) {
	if userID <= 0 {
		return nil, apperr.Validation("user_id", "must be positive")
	}
	if status == "" {
		status = enums.MatchStatusMutual
	}
	if !status.Valid() {
		return nil, apperr.Validation("status", "unknown match status")
	}
	if s.matches == nil {
		return nil, ErrDependenciesNil
	}

	rows, err := s.matches.ListForUser(ctx, userID, []enums.MatchStatus{status}, limit)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	return rows, nil
}

func (s *Service) Notifications(ctx context.Context, userID int64, limit int) ([]model.MutualMatchEvent, error) {
	if userID <= 0 {
		return nil, apperr.Validation("user_id", "must be positive")
	}
	if s.notifier == nil {
		return nil, ErrNotificationsDisabled
	}

	events, err := s.notifier.Inbox(ctx, userID, limit)
	if err != nil {
		return nil, apperr.Transient("read match inbox", err)
	}
	return events, nil
}

func (s *Service) prepareAction(ctx context.Context, userID, targetID int64, action enums.MatchAction) error {
	if userID <= 0 {
		return apperr.Validation("user_id", "must be positive")
	}
	if targetID <= 0 {
		return apperr.Validation("target_id", "must be positive")
	}
	if userID == targetID {
		return apperr.Validation("target_id", "cannot act on yourself")
	}
	if s.machine == nil || s.candidates == nil {
		return ErrDependenciesNil
	}

	if s.rateLimiter != nil {
		retryAfter, allowed, err := s.rateLimiter.AllowAction(ctx, userID, action)
		if err != nil {
			return apperr.Transient("apply action rate limit", err)
		}
		if !allowed {
			return TooFastError{RetryAfterSec: retryAfter}
		}
	}

	if _, err := s.candidates.GetProfile(ctx, targetID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return err
		}
		return fmt.Errorf("load target profile: %w", err)
	}
	return nil
}

func (s *Service) notify(ctx context.Context, event model.MutualMatchEvent) bool {
	if s.notifier == nil {
		return false
	}
	if err := s.notifier.PublishMutual(ctx, event); err != nil {
		s.logger.Warn("publish mutual match event failed",
			zap.String("event_id", event.ID.String()),
			zap.Int64("match_id", event.MatchID),
			zap.Error(err),
		)
		return false
	}
	return true
}
