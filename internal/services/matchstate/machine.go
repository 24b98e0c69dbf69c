package matchstate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Nkpro29/chuckle-match-ai/internal/domain/apperr"
	"github.com/Nkpro29/chuckle-match-ai/internal/domain/enums"
	"github.com/Nkpro29/chuckle-match-ai/internal/domain/model"
)

var ErrDependenciesNil = errors.New("match state dependencies are not configured")

// Store is the durable side of the match lifecycle. Implementations must
// keep at most one row per unordered pair: Insert fails with
// *apperr.ConflictError when the pair already has a row, and
// CompareAndSetStatus only writes when the row still has status from.
// Lookups that find nothing return *apperr.NotFoundError.
type Store interface {
	FindDirected(ctx context.Context, initiatorID, targetID int64) (model.Match, error)
	FindPair(ctx context.Context, userID, otherID int64) (model.Match, error)
	Insert(ctx context.Context, initiatorID, targetID int64, status enums.MatchStatus) (model.Match, error)
	CompareAndSetStatus(ctx context.Context, matchID int64, from, to enums.MatchStatus) (model.Match, bool, error)
}

type Transition struct {
	Match   model.Match
	Outcome enums.MatchOutcome
	// Event is set only when this transition made the pair mutual.
	Event *model.MutualMatchEvent
}

type Machine struct {
	store Store
	now   func() time.Time
	newID func() uuid.UUID
}

func NewMachine(store Store) *Machine {
	return &Machine{
		store: store,
		now:   time.Now,
		newID: uuid.New,
	}
}

// Like records initiator's like for target. A pending like from target
// becomes mutual; otherwise a new pending row is created.
func (m *Machine) Like(ctx context.Context, initiatorID, targetID int64) (Transition, error) {
	if err := validatePair(initiatorID, targetID); err != nil {
		return Transition{}, err
	}
	if m.store == nil {
		return Transition{}, ErrDependenciesNil
	}

	reverse, err := m.store.FindDirected(ctx, targetID, initiatorID)
	switch {
	case err == nil:
		return m.acceptReverse(ctx, initiatorID, targetID, reverse)
	case errors.Is(err, apperr.ErrNotFound):
	default:
		return Transition{}, fmt.Errorf("lookup reverse like: %w", err)
	}

	created, err := m.store.Insert(ctx, initiatorID, targetID, enums.MatchStatusPending)
	if err != nil {
		if ce, ok := apperr.IsConflict(err); ok {
			return Transition{}, withPair(ce, initiatorID, targetID)
		}
		return Transition{}, fmt.Errorf("create pending like: %w", err)
	}

	return Transition{Match: created, Outcome: enums.MatchOutcomePending}, nil
}

func (m *Machine) acceptReverse(ctx context.Context, initiatorID, targetID int64, reverse model.Match) (Transition, error) {
	if reverse.Status != enums.MatchStatusPending {
		return Transition{}, &apperr.ConflictError{InitiatorID: initiatorID, TargetID: targetID, Status: reverse.Status}
	}

	updated, ok, err := m.store.CompareAndSetStatus(ctx, reverse.ID, enums.MatchStatusPending, enums.MatchStatusMutual)
	if err != nil {
		return Transition{}, fmt.Errorf("promote like to mutual: %w", err)
	}
	if !ok {
		// Someone else moved the row first; the caller re-evaluates.
		return Transition{}, &apperr.ConflictError{InitiatorID: initiatorID, TargetID: targetID, Status: updated.Status}
	}

	return Transition{
		Match:   updated,
		Outcome: enums.MatchOutcomeMutual,
		Event: &model.MutualMatchEvent{
			ID:         m.newID(),
			MatchID:    updated.ID,
			UserIDs:    [2]int64{updated.InitiatorID, updated.TargetID},
			OccurredAt: m.now().UTC(),
		},
	}, nil
}

// Pass declines target for initiator. Passing an already declined or mutual
// pair changes nothing; passing while target's like is pending is rejected.
func (m *Machine) Pass(ctx context.Context, initiatorID, targetID int64) (Transition, error) {
	if err := validatePair(initiatorID, targetID); err != nil {
		return Transition{}, err
	}
	if m.store == nil {
		return Transition{}, ErrDependenciesNil
	}

	existing, err := m.store.FindPair(ctx, initiatorID, targetID)
	switch {
	case err == nil:
		return m.passExisting(ctx, initiatorID, targetID, existing)
	case errors.Is(err, apperr.ErrNotFound):
	default:
		return Transition{}, fmt.Errorf("lookup match pair: %w", err)
	}

	created, err := m.store.Insert(ctx, initiatorID, targetID, enums.MatchStatusDeclined)
	if err != nil {
		if ce, ok := apperr.IsConflict(err); ok {
			return Transition{}, withPair(ce, initiatorID, targetID)
		}
		return Transition{}, fmt.Errorf("create declined match: %w", err)
	}

	return Transition{Match: created, Outcome: enums.MatchOutcomeDeclined}, nil
}

func (m *Machine) passExisting(ctx context.Context, initiatorID, targetID int64, existing model.Match) (Transition, error) {
	if existing.Status.Terminal() {
		return Transition{Match: existing, Outcome: enums.MatchOutcomeUnchanged}, nil
	}

	if existing.InitiatorID != initiatorID {
		return Transition{}, &apperr.ConflictError{InitiatorID: initiatorID, TargetID: targetID, Status: existing.Status}
	}

	updated, ok, err := m.store.CompareAndSetStatus(ctx, existing.ID, enums.MatchStatusPending, enums.MatchStatusDeclined)
	if err != nil {
		return Transition{}, fmt.Errorf("withdraw pending like: %w", err)
	}
	if !ok {
		return Transition{}, &apperr.ConflictError{InitiatorID: initiatorID, TargetID: targetID, Status: updated.Status}
	}

	return Transition{Match: updated, Outcome: enums.MatchOutcomeDeclined}, nil
}

func validatePair(initiatorID, targetID int64) error {
	if initiatorID <= 0 {
		return apperr.Validation("initiator_id", "must be positive")
	}
	if targetID <= 0 {
		return apperr.Validation("target_id", "must be positive")
	}
	if initiatorID == targetID {
		return apperr.Validation("target_id", "cannot act on yourself")
	}
	return nil
}

func withPair(ce *apperr.ConflictError, initiatorID, targetID int64) *apperr.ConflictError {
	out := *ce
	out.InitiatorID = initiatorID
	out.TargetID = targetID
	return &out
}
