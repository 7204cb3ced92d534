package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Kalyaneluri-21/Payout-Automation/internal/models"
	"github.com/Kalyaneluri-21/Payout-Automation/internal/payout"
	"github.com/Kalyaneluri-21/Payout-Automation/internal/repository"
)

type sessionReader interface {
	ListCompletedInRange(ctx context.Context, mentorID int64, start time.Time, end time.Time) ([]models.Session, error)
	ListByMentor(ctx context.Context, mentorID int64) ([]models.Session, error)
	ListAll(ctx context.Context) ([]models.Session, error)
}

// SessionAccessor is the only path from the session store into payout
// arithmetic. It normalizes timestamps and never reports a store failure as
// an empty result.
type SessionAccessor struct {
	sessions sessionReader
	logger   *zap.Logger
}

func NewSessionAccessor(sessions sessionReader, logger *zap.Logger) *SessionAccessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionAccessor{sessions: sessions, logger: logger}
}

// FetchCompletedSessions returns the mentor's completed sessions inside the
// inclusive period. When the store cannot serve the ranged query it falls
// back to the mentor's full history and filters here.
func (a *SessionAccessor) FetchCompletedSessions(
	ctx context.Context,
	mentorID int64,
	period payout.Period,
) ([]models.Session, error) {
	sessions, err := a.sessions.ListCompletedInRange(ctx, mentorID, period.Start, period.End)
	if errors.Is(err, repository.ErrRangeQueryUnsupported) {
		a.logger.Warn("range query unsupported, falling back to full mentor fetch",
			zap.Int64("mentor_id", mentorID),
			zap.Error(err),
		)
		sessions, err = a.fetchAndFilter(ctx, mentorID, period)
	}
	if err != nil {
		return nil, storeError(err)
	}
	return normalizeSessions(sessions), nil
}

func (a *SessionAccessor) FetchMentorSessions(ctx context.Context, mentorID int64) ([]models.Session, error) {
	sessions, err := a.sessions.ListByMentor(ctx, mentorID)
	if err != nil {
		return nil, storeError(err)
	}
	return normalizeSessions(sessions), nil
}

func (a *SessionAccessor) FetchAllSessions(ctx context.Context) ([]models.Session, error) {
	sessions, err := a.sessions.ListAll(ctx)
	if err != nil {
		return nil, storeError(err)
	}
	return normalizeSessions(sessions), nil
}

// InvalidSession is a session left out of a calculation because its stored
// shape failed validation.
type InvalidSession struct {
	SessionID int64 `json:"session_id"`
	Err       error `json:"-"`
}

// ValidSessions drops sessions that fail validation, logging each one, and
// returns the survivors in order.
func (a *SessionAccessor) ValidSessions(sessions []models.Session) ([]models.Session, []InvalidSession) {
	valid := make([]models.Session, 0, len(sessions))
	invalid := make([]InvalidSession, 0)
	for _, session := range sessions {
		if err := payout.ValidateSession(session); err != nil {
			a.logger.Warn("excluding invalid session",
				zap.Int64("session_id", session.ID),
				zap.Int64("mentor_id", session.MentorID),
				zap.Error(err),
			)
			invalid = append(invalid, InvalidSession{SessionID: session.ID, Err: err})
			continue
		}
		valid = append(valid, session)
	}
	return valid, invalid
}

func (a *SessionAccessor) fetchAndFilter(
	ctx context.Context,
	mentorID int64,
	period payout.Period,
) ([]models.Session, error) {
	all, err := a.sessions.ListByMentor(ctx, mentorID)
	if err != nil {
		return nil, err
	}

	filtered := make([]models.Session, 0, len(all))
	for _, session := range all {
		if session.Status != models.SessionStatusCompleted {
			continue
		}
		if !period.Contains(session.DateTime) {
			continue
		}
		filtered = append(filtered, session)
	}
	return filtered, nil
}

func normalizeSessions(sessions []models.Session) []models.Session {
	for i := range sessions {
		sessions[i].DateTime = sessions[i].DateTime.UTC()
		if sessions[i].ReceiptGeneratedAt != nil {
			generatedAt := sessions[i].ReceiptGeneratedAt.UTC()
			sessions[i].ReceiptGeneratedAt = &generatedAt
		}
		sessions[i].CalculatedPayout = payout.SessionPayout(sessions[i])
	}
	return sessions
}

// storeError keeps cancellation visible as itself; everything else means the
// store could not answer.
func storeError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", payout.ErrDataUnavailable, err)
}
