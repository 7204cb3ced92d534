package repository

import (
	"context"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Kalyaneluri-21/Payout-Automation/internal/models"
	"github.com/Kalyaneluri-21/Payout-Automation/internal/payout"
)

// ReceiptWriter persists a receipt and marks its sessions in one transaction.
type ReceiptWriter struct {
	db *pgxpool.Pool
}

func NewReceiptWriter(db *pgxpool.Pool) *ReceiptWriter {
	return &ReceiptWriter{db: db}
}

// CommitReceipt locks only the rows it touches. If any of them was receipted
// since the caller read it, nothing is written and a *payout.ConflictError
// names the lost sessions. A non-nil audit entry is written, or linked when
// it was recorded earlier, in the same transaction.
func (w *ReceiptWriter) CommitReceipt(
	ctx context.Context,
	receipt *models.Receipt,
	audit *models.OverrideAuditEntry,
) error {
	sessionIDs := receipt.SessionIDs()
	if len(sessionIDs) == 0 {
		return payout.ErrNoEligibleSessions
	}

	tx, err := w.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: begin receipt transaction: %w", payout.ErrDataUnavailable, err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := commitReceiptTx(ctx, tx, receipt, audit); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func commitReceiptTx(
	ctx context.Context,
	tx DBTX,
	receipt *models.Receipt,
	audit *models.OverrideAuditEntry,
) error {
	sessionIDs := receipt.SessionIDs()
	txSessionRepo := NewSessionRepository(tx)
	txReceiptRepo := NewReceiptRepository(tx)
	txOverrideRepo := NewOverrideRepository(tx)

	locked, err := txSessionRepo.ListByIDsForUpdate(ctx, sessionIDs)
	if err != nil {
		return err
	}
	if conflicts := receiptConflicts(sessionIDs, locked); len(conflicts) > 0 {
		return &payout.ConflictError{SessionIDs: conflicts}
	}

	if err := txReceiptRepo.Create(ctx, receipt); err != nil {
		return err
	}

	updated, err := txSessionRepo.MarkReceiptedIfNotGenerated(ctx, sessionIDs, receipt.ID, receipt.CreatedAt)
	if err != nil {
		return err
	}
	if len(updated) != len(sessionIDs) {
		return &payout.ConflictError{SessionIDs: missingIDs(sessionIDs, updated)}
	}

	if audit != nil {
		return txOverrideRepo.Record(ctx, audit)
	}
	return nil
}

// receiptConflicts reports requested sessions that are gone or already
// receipted under the row lock.
func receiptConflicts(requested []int64, locked []models.Session) []int64 {
	byID := make(map[int64]models.Session, len(locked))
	for _, session := range locked {
		byID[session.ID] = session
	}

	conflicts := make([]int64, 0)
	for _, id := range requested {
		session, ok := byID[id]
		if !ok || session.IsReceipted() {
			conflicts = append(conflicts, id)
		}
	}
	sort.Slice(conflicts, func(i, j int) bool { return conflicts[i] < conflicts[j] })
	return conflicts
}

func missingIDs(requested []int64, present []int64) []int64 {
	seen := make(map[int64]struct{}, len(present))
	for _, id := range present {
		seen[id] = struct{}{}
	}
	missing := make([]int64, 0)
	for _, id := range requested {
		if _, ok := seen[id]; !ok {
			missing = append(missing, id)
		}
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
	return missing
}
