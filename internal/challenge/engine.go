// Package challenge implements the challenge lifecycle:
//
//	suggested -> active -> completed | failed | dismissed
//	suggested -> dismissed
//
// Transition functions are pure. They take a challenge value and return the updated value
// together with the events the transition emits; persisting both is the Service's job.
package challenge

import (
	"errors"                          // Sentinel errors
	"finance_tracker/internal/domain" // Domain models
	"fmt"                             // Error wrapping
	"time"                            // Transition timestamps
)

// DefaultDuration is the window given to a started challenge when its suggestion had none
const DefaultDuration = 30 * 24 * time.Hour

// ErrInvalidTransition is returned for any move the lifecycle does not allow
var ErrInvalidTransition = errors.New("invalid challenge transition")

// ErrInvalidEndDate is returned when a custom challenge would already be over
var ErrInvalidEndDate = errors.New("endDate must be in the future")

var allowed = map[domain.ChallengeStatus][]domain.ChallengeStatus{
	domain.ChallengeSuggested: {domain.ChallengeActive, domain.ChallengeDismissed},
	domain.ChallengeActive:    {domain.ChallengeCompleted, domain.ChallengeFailed, domain.ChallengeDismissed},
} // Terminal states have no entry

// CanTransition reports whether from -> to is part of the lifecycle
func CanTransition(from, to domain.ChallengeStatus) bool {
	for _, s := range allowed[from] {
		if s == to {
			return true
		}
	}
	return false
}

func transition(c domain.Challenge, to domain.ChallengeStatus, now time.Time) (domain.Challenge, error) {
	if !CanTransition(c.Status, to) {
		return c, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, c.Status, to)
	}
	c.Status = to
	c.UpdatedAt = now
	return c, nil
}

// Start activates a suggested challenge and re-anchors its window at now
func Start(c domain.Challenge, now time.Time) (domain.Challenge, []domain.Event, error) {
	duration := c.EndDate.Sub(c.StartDate)
	if duration <= 0 {
		duration = DefaultDuration
	}
	c, err := transition(c, domain.ChallengeActive, now)
	if err != nil {
		return c, nil, err
	}
	c.StartDate = now
	c.EndDate = now.Add(duration) // Same length as the suggested window
	return c, []domain.Event{startedEvent(c)}, nil
}

// Activate emits the start event for a custom challenge created directly as active
func Activate(c domain.Challenge, now time.Time) (domain.Challenge, []domain.Event) {
	c.Status = domain.ChallengeActive
	c.Progress = domain.ClampPercent(c.Progress)
	if c.StartDate.IsZero() {
		c.StartDate = now
	}
	c.UpdatedAt = now
	return c, []domain.Event{startedEvent(c)}
}

// Cancel dismisses a suggested or active challenge
func Cancel(c domain.Challenge, now time.Time) (domain.Challenge, []domain.Event, error) {
	c, err := transition(c, domain.ChallengeDismissed, now)
	if err != nil {
		return c, nil, err
	}
	return c, []domain.Event{{
		UserID:  c.UserID,
		Type:    domain.NotificationChallengeCancelled,
		Title:   "Challenge cancelled",
		Message: fmt.Sprintf("You cancelled the challenge %q.", c.Title),
		Data:    eventData(c),
	}}, nil
}

// UpdateProgress sets the progress of an active challenge, clamped to 0-100, and the current
// value when given. Reaching 100 completes the challenge.
func UpdateProgress(c domain.Challenge, progress float64, currentValue *float64, now time.Time) (domain.Challenge, []domain.Event, error) {
	if c.Status != domain.ChallengeActive {
		return c, nil, fmt.Errorf("%w: cannot update progress of a %s challenge", ErrInvalidTransition, c.Status)
	}
	c.Progress = domain.ClampPercent(progress)
	if currentValue != nil {
		c.CurrentValue = *currentValue
	}
	c.UpdatedAt = now
	if c.Progress < 100 {
		return c, nil, nil
	}
	c, err := transition(c, domain.ChallengeCompleted, now)
	if err != nil {
		return c, nil, err
	}
	return c, []domain.Event{{
		UserID:  c.UserID,
		Type:    domain.NotificationChallengeCompleted,
		Title:   "Challenge completed",
		Message: fmt.Sprintf("Congratulations, you completed %q!", c.Title),
		Data:    eventData(c),
	}}, nil
}

// Fail marks an active challenge as failed
func Fail(c domain.Challenge, now time.Time) (domain.Challenge, []domain.Event, error) {
	c, err := transition(c, domain.ChallengeFailed, now)
	if err != nil {
		return c, nil, err
	}
	return c, []domain.Event{{
		UserID:  c.UserID,
		Type:    domain.NotificationChallengeFailed,
		Title:   "Challenge failed",
		Message: fmt.Sprintf("The challenge %q ended before it was completed.", c.Title),
		Data:    eventData(c),
	}}, nil
}

func startedEvent(c domain.Challenge) domain.Event {
	return domain.Event{
		UserID:  c.UserID,
		Type:    domain.NotificationChallengeStarted,
		Title:   "Challenge started",
		Message: fmt.Sprintf("You started %q. It ends on %s.", c.Title, c.EndDate.Format("2006-01-02")),
		Data:    eventData(c),
	}
}

func eventData(c domain.Challenge) map[string]any {
	return map[string]any{
		"challengeId": c.ID,
		"type":        c.Type,
		"status":      c.Status,
		"progress":    c.Progress,
	}
}
