package challenge

import (
	"context"                          // Request scoped cancellation
	"errors"                           // Sentinel errors
	"finance_tracker/internal/domain"  // Domain models
	"finance_tracker/internal/notify"  // Notification dispatch
	"finance_tracker/internal/storage" // Repositories
	"fmt"                              // Error wrapping
	"time"                             // Clock

	"github.com/sirupsen/logrus" // Structured logging
)

// Repository is the storage surface the Service needs
type Repository interface {
	storage.ChallengeRepository
	GetUser(ctx context.Context, id uint) (domain.User, error)
	ListExpensesBetween(ctx context.Context, userID uint, from, to time.Time) ([]domain.Expense, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
}

// CustomInput describes a challenge created by the user
type CustomInput struct {
	Title       string
	Description string
	Type        domain.ChallengeType
	TargetValue float64
	EndDate     time.Time                // Must be after now
	Metadata    domain.ChallengeMetadata // Must match Type
}

// Service applies lifecycle transitions to stored challenges
type Service struct {
	repo       Repository
	dispatcher *notify.Dispatcher // Optional
	now        func() time.Time   // Overridden in tests
}

// NewService builds a Service; dispatcher may be nil to drop events
func NewService(repo Repository, dispatcher *notify.Dispatcher) *Service {
	return &Service{repo: repo, dispatcher: dispatcher, now: time.Now}
}

func (s *Service) clock() time.Time {
	return s.now().UTC()
}

func (s *Service) dispatch(ctx context.Context, events []domain.Event) {
	if s.dispatcher == nil || len(events) == 0 {
		return
	}
	s.dispatcher.Dispatch(ctx, events...)
}

// owned loads a challenge and checks it belongs to userID
func (s *Service) owned(ctx context.Context, userID, id uint) (domain.Challenge, error) {
	c, err := s.repo.GetChallenge(ctx, id)
	if err != nil {
		return c, fmt.Errorf("get challenge %d: %w", id, err)
	}
	if c.UserID != userID {
		return c, fmt.Errorf("challenge %d: %w", id, domain.ErrForbidden)
	}
	return c, nil
}

// apply persists the outcome of a transition out of status from and dispatches its events.
// Nothing is dispatched when another writer moved the challenge first.
func (s *Service) apply(ctx context.Context, c domain.Challenge, from domain.ChallengeStatus, events []domain.Event) (domain.Challenge, error) {
	if err := s.repo.UpdateChallenge(ctx, &c, from); err != nil {
		if errors.Is(err, storage.ErrStale) {
			return c, fmt.Errorf("%w: challenge %d is no longer %s", ErrInvalidTransition, c.ID, from)
		}
		return c, fmt.Errorf("update challenge %d: %w", c.ID, err)
	}
	logrus.WithFields(logrus.Fields{
		"challenge_id": c.ID,
		"user_id":      c.UserID,
		"status":       c.Status,
		"progress":     c.Progress,
	}).Info("Challenge updated")
	s.dispatch(ctx, events)
	return c, nil
}

// Start activates one of the user's suggested challenges
func (s *Service) Start(ctx context.Context, userID, id uint) (domain.Challenge, error) {
	c, err := s.owned(ctx, userID, id)
	if err != nil {
		return c, err
	}
	from := c.Status
	c, events, err := Start(c, s.clock())
	if err != nil {
		return c, err
	}
	return s.apply(ctx, c, from, events)
}

// Cancel dismisses one of the user's suggested or active challenges
func (s *Service) Cancel(ctx context.Context, userID, id uint) (domain.Challenge, error) {
	c, err := s.owned(ctx, userID, id)
	if err != nil {
		return c, err
	}
	from := c.Status
	c, events, err := Cancel(c, s.clock())
	if err != nil {
		return c, err
	}
	return s.apply(ctx, c, from, events)
}

// UpdateProgress records progress on one of the user's active challenges
func (s *Service) UpdateProgress(ctx context.Context, userID, id uint, progress float64, currentValue *float64) (domain.Challenge, error) {
	c, err := s.owned(ctx, userID, id)
	if err != nil {
		return c, err
	}
	from := c.Status
	c, events, err := UpdateProgress(c, progress, currentValue, s.clock())
	if err != nil {
		return c, err
	}
	return s.apply(ctx, c, from, events)
}

// CreateCustom stores a user-defined challenge directly as active
func (s *Service) CreateCustom(ctx context.Context, userID uint, in CustomInput) (domain.Challenge, error) {
	if in.Metadata == nil {
		return domain.Challenge{}, fmt.Errorf("%w: metadata is required for %s", domain.ErrInvalidMetadata, in.Type)
	}
	if in.Metadata.ChallengeType() != in.Type {
		return domain.Challenge{}, fmt.Errorf("%w: %s metadata on %s challenge", domain.ErrInvalidMetadata, in.Metadata.ChallengeType(), in.Type)
	}
	if err := in.Metadata.Validate(); err != nil {
		return domain.Challenge{}, err
	}
	now := s.clock()
	if !in.EndDate.After(now) {
		return domain.Challenge{}, ErrInvalidEndDate
	}

	c, events := Activate(domain.Challenge{
		UserID:      userID,
		Title:       in.Title,
		Description: in.Description,
		Type:        in.Type,
		EndDate:     in.EndDate.UTC(),
		TargetValue: in.TargetValue,
		CreatedAt:   now,
		Metadata:    in.Metadata,
	}, now)

	created := []domain.Challenge{c}
	if err := s.repo.CreateChallenges(ctx, created); err != nil {
		return domain.Challenge{}, fmt.Errorf("create challenge: %w", err)
	}
	c = created[0]
	bindChallenge(events, c.ID)

	logrus.WithFields(logrus.Fields{
		"challenge_id": c.ID,
		"user_id":      userID,
		"type":         c.Type,
	}).Info("Custom challenge created")
	s.dispatch(ctx, events)
	return c, nil
}

// bindChallenge fills in the id of a challenge that was persisted after its events were built
func bindChallenge(events []domain.Event, id uint) {
	for _, e := range events {
		if e.Data != nil {
			e.Data["challengeId"] = id
		}
	}
}

// List returns every challenge of the user
func (s *Service) List(ctx context.Context, userID uint) ([]domain.Challenge, error) {
	cs, err := s.repo.ListChallenges(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list challenges: %w", err)
	}
	return cs, nil
}

// Active returns the user's active challenges
func (s *Service) Active(ctx context.Context, userID uint) ([]domain.Challenge, error) {
	cs, err := s.repo.ListChallenges(ctx, userID, domain.ChallengeActive)
	if err != nil {
		return nil, fmt.Errorf("list active challenges: %w", err)
	}
	return cs, nil
}

// Suggestions returns the user's pending suggestions, generating them from recent spending
// when there are none. Generated suggestions skip whatever an active challenge already covers.
func (s *Service) Suggestions(ctx context.Context, userID uint, now time.Time) ([]domain.Challenge, error) {
	existing, err := s.repo.ListChallenges(ctx, userID, domain.ChallengeSuggested)
	if err != nil {
		return nil, fmt.Errorf("list suggestions: %w", err)
	}
	if len(existing) > 0 {
		return existing, nil
	}

	u, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", userID, err)
	}
	now = now.UTC()
	expenses, err := s.repo.ListExpensesBetween(ctx, userID, now.Add(-Lookback), now.Add(time.Nanosecond))
	if err != nil {
		return nil, fmt.Errorf("list recent expenses: %w", err)
	}
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	active, err := s.repo.ListChallenges(ctx, userID, domain.ChallengeActive)
	if err != nil {
		return nil, fmt.Errorf("list active challenges: %w", err)
	}

	suggested := Without(Suggest(u, expenses, categories, now), active)
	if len(suggested) == 0 {
		return []domain.Challenge{}, nil
	}
	if err := s.repo.CreateChallenges(ctx, suggested); err != nil {
		return nil, fmt.Errorf("create suggestions: %w", err)
	}
	logrus.WithFields(logrus.Fields{
		"user_id": userID,
		"count":   len(suggested),
	}).Info("Challenge suggestions generated")
	return suggested, nil
}

// ExpireDue fails every active challenge whose end date has passed and returns how many were
// failed. A challenge that cannot be updated is logged and skipped.
func (s *Service) ExpireDue(ctx context.Context, now time.Time) (int, error) {
	now = now.UTC()
	due, err := s.repo.ListExpiredChallenges(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("list expired challenges: %w", err)
	}
	failed := 0
	for _, c := range due {
		if err := ctx.Err(); err != nil {
			return failed, err
		}
		from := c.Status
		c, events, err := Fail(c, now)
		if err != nil {
			continue // Not active any more
		}
		if _, err := s.apply(ctx, c, from, events); err != nil {
			if errors.Is(err, ErrInvalidTransition) {
				logrus.WithField("challenge_id", c.ID).Info("Challenge changed before it could expire")
				continue
			}
			logrus.WithFields(logrus.Fields{
				"challenge_id": c.ID,
				"error":        err.Error(),
			}).Error("Failed to expire challenge")
			continue
		}
		failed++
	}
	return failed, nil
}
