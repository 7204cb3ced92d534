package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Kalyaneluri-21/Payout-Automation/internal/models"
)

const sessionColumns = `id, mentor_id, mentor_email, mentor_name, date_time, type, duration_min, rate_per_hour,
		status, receipt_status, receipt_id, receipt_generated_at, created_at, updated_at`

type SessionRepository struct {
	db DBTX
}

func NewSessionRepository(db DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) ListCompletedInRange(
	ctx context.Context,
	mentorID int64,
	start time.Time,
	end time.Time,
) ([]models.Session, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM sessions
		WHERE mentor_id = $1
		  AND status = 'completed'
		  AND date_time >= $2
		  AND date_time <= $3
		ORDER BY date_time ASC, id ASC
	`, sessionColumns)

	sessions, err := r.list(ctx, query, mentorID, start.UTC(), end.UTC())
	if err != nil {
		if isRangeQueryUnsupported(err) {
			return nil, fmt.Errorf("%w: %v", ErrRangeQueryUnsupported, err)
		}
		return nil, err
	}
	return sessions, nil
}

func (r *SessionRepository) ListByMentor(ctx context.Context, mentorID int64) ([]models.Session, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM sessions
		WHERE mentor_id = $1
		ORDER BY date_time ASC, id ASC
	`, sessionColumns)
	return r.list(ctx, query, mentorID)
}

func (r *SessionRepository) ListAll(ctx context.Context) ([]models.Session, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM sessions
		ORDER BY date_time ASC, id ASC
	`, sessionColumns)
	return r.list(ctx, query)
}

// ListByIDsForUpdate row-locks the given sessions until the surrounding
// transaction ends.
func (r *SessionRepository) ListByIDsForUpdate(ctx context.Context, sessionIDs []int64) ([]models.Session, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM sessions
		WHERE id = ANY($1)
		ORDER BY id ASC
		FOR UPDATE
	`, sessionColumns)
	return r.list(ctx, query, sessionIDs)
}

// MarkReceiptedIfNotGenerated flips receipt_status only on rows that are still
// not_generated and returns the ids it actually changed.
func (r *SessionRepository) MarkReceiptedIfNotGenerated(
	ctx context.Context,
	sessionIDs []int64,
	receiptID string,
	generatedAt time.Time,
) ([]int64, error) {
	query := `
		UPDATE sessions
		SET receipt_status = 'generated', receipt_id = $2, receipt_generated_at = $3, updated_at = NOW()
		WHERE id = ANY($1) AND receipt_status = 'not_generated'
		RETURNING id
	`
	rows, err := r.db.Query(ctx, query, sessionIDs, receiptID, generatedAt.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	updated := make([]int64, 0, len(sessionIDs))
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		updated = append(updated, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *SessionRepository) list(ctx context.Context, query string, args ...any) ([]models.Session, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := make([]models.Session, 0)
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

func scanSession(row rowScanner) (*models.Session, error) {
	var session models.Session
	if err := row.Scan(
		&session.ID,
		&session.MentorID,
		&session.MentorEmail,
		&session.MentorName,
		&session.DateTime,
		&session.Type,
		&session.DurationMinutes,
		&session.RatePerHour,
		&session.Status,
		&session.ReceiptStatus,
		&session.ReceiptID,
		&session.ReceiptGeneratedAt,
		&session.CreatedAt,
		&session.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &session, nil
}
