package payout

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrDataUnavailable        = errors.New("data unavailable")
	ErrInvalidSessionData     = errors.New("invalid session data")
	ErrValidation             = errors.New("validation error")
	ErrNoEligibleSessions     = errors.New("no eligible sessions")
	ErrConcurrentModification = errors.New("concurrent modification")
	ErrOverrideConsumed       = errors.New("override already applied to a receipt")
)

// ConflictError lists the sessions that were receipted by another operation
// between the eligibility read and the receipt commit.
type ConflictError struct {
	SessionIDs []int64
}

func (e *ConflictError) Error() string {
	ids := make([]string, 0, len(e.SessionIDs))
	for _, id := range e.SessionIDs {
		ids = append(ids, strconv.FormatInt(id, 10))
	}
	return fmt.Sprintf("%s: sessions [%s] already receipted", ErrConcurrentModification, strings.Join(ids, ", "))
}

func (e *ConflictError) Unwrap() error {
	return ErrConcurrentModification
}

func invalidSession(sessionID int64, reason string) error {
	return fmt.Errorf("%w: session %d: %s", ErrInvalidSessionData, sessionID, reason)
}
