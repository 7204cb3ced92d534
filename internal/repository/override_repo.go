package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/Kalyaneluri-21/Payout-Automation/internal/models"
	"github.com/Kalyaneluri-21/Payout-Automation/internal/payout"
)

type OverrideRepository struct {
	db DBTX
}

func NewOverrideRepository(db DBTX) *OverrideRepository {
	return &OverrideRepository{db: db}
}

func (r *OverrideRepository) Create(ctx context.Context, entry *models.OverrideAuditEntry) error {
	query := `
		INSERT INTO payout_overrides (
			id, mentor_id, receipt_id, original_amount, new_amount, reason, acting_user_id, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query, overrideArgs(entry)...)
	return err
}

// Record writes a receipt's audit entry. An entry recorded earlier by a
// standalone override is linked to the receipt instead of duplicated; one
// that already backs a receipt fails with payout.ErrOverrideConsumed.
func (r *OverrideRepository) Record(ctx context.Context, entry *models.OverrideAuditEntry) error {
	query := `
		INSERT INTO payout_overrides (
			id, mentor_id, receipt_id, original_amount, new_amount, reason, acting_user_id, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE
		SET receipt_id = EXCLUDED.receipt_id
		WHERE payout_overrides.receipt_id IS NULL
		RETURNING id
	`
	var id string
	if err := r.db.QueryRow(ctx, query, overrideArgs(entry)...).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payout.ErrOverrideConsumed
		}
		return err
	}
	return nil
}

func (r *OverrideRepository) GetByID(ctx context.Context, auditID string) (*models.OverrideAuditEntry, error) {
	query := `
		SELECT id, mentor_id, receipt_id, original_amount, new_amount, reason, acting_user_id, created_at
		FROM payout_overrides
		WHERE id = $1
	`
	var entry models.OverrideAuditEntry
	err := r.db.QueryRow(ctx, query, auditID).Scan(
		&entry.ID,
		&entry.MentorID,
		&entry.ReceiptID,
		&entry.OriginalAmount,
		&entry.NewAmount,
		&entry.Reason,
		&entry.ActingUserID,
		&entry.Timestamp,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

func overrideArgs(entry *models.OverrideAuditEntry) []any {
	return []any{
		entry.ID,
		entry.MentorID,
		entry.ReceiptID,
		entry.OriginalAmount,
		entry.NewAmount,
		entry.Reason,
		entry.ActingUserID,
		entry.Timestamp.UTC(),
	}
}
