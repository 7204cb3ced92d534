package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Kalyaneluri-21/Payout-Automation/internal/models"
)

const receiptColumns = `id, mentor_id, mentor_email, mentor_name, period_start, period_end, session_list,
		total_hours, gross_payout, platform_fee, gst, net_payable, overridden, override_reason, created_by, created_at`

type ReceiptRepository struct {
	db DBTX
}

func NewReceiptRepository(db DBTX) *ReceiptRepository {
	return &ReceiptRepository{db: db}
}

func (r *ReceiptRepository) Create(ctx context.Context, receipt *models.Receipt) error {
	sessionList, err := json.Marshal(receipt.Sessions)
	if err != nil {
		return fmt.Errorf("marshal session list: %w", err)
	}

	query := `
		INSERT INTO receipts (
			id, mentor_id, mentor_email, mentor_name, period_start, period_end, session_list,
			total_hours, gross_payout, platform_fee, gst, net_payable, overridden, override_reason, created_by, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err = r.db.Exec(
		ctx,
		query,
		receipt.ID,
		receipt.MentorID,
		receipt.MentorEmail,
		receipt.MentorName,
		receipt.PeriodStart.UTC(),
		receipt.PeriodEnd.UTC(),
		string(sessionList),
		receipt.TotalHours,
		receipt.GrossPayout,
		receipt.PlatformFee,
		receipt.GST,
		receipt.NetPayable,
		receipt.Overridden,
		receipt.OverrideReason,
		receipt.CreatedBy,
		receipt.CreatedAt.UTC(),
	)
	return err
}

func (r *ReceiptRepository) GetByID(ctx context.Context, receiptID string) (*models.Receipt, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM receipts
		WHERE id = $1
	`, receiptColumns)
	receipt, err := scanReceipt(r.db.QueryRow(ctx, query, receiptID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return receipt, nil
}

// ReceiptListFilter selects one page of receipts, newest first. A nil
// MentorID lists every mentor; a Limit of zero or less means no limit.
type ReceiptListFilter struct {
	MentorID *int64
	Limit    int
	Offset   int
}

// List returns the requested page together with the total number of
// receipts matching the filter.
func (r *ReceiptRepository) List(ctx context.Context, filter ReceiptListFilter) ([]models.Receipt, int, error) {
	var total int
	countQuery := `
		SELECT COUNT(*)
		FROM receipts
		WHERE ($1::bigint IS NULL OR mentor_id = $1)
	`
	if err := r.db.QueryRow(ctx, countQuery, filter.MentorID).Scan(&total); err != nil {
		return nil, 0, err
	}

	var limit any
	if filter.Limit > 0 {
		limit = filter.Limit
	}
	query := fmt.Sprintf(`
		SELECT %s
		FROM receipts
		WHERE ($1::bigint IS NULL OR mentor_id = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, receiptColumns)
	receipts, err := r.list(ctx, query, filter.MentorID, limit, filter.Offset)
	if err != nil {
		return nil, 0, err
	}
	return receipts, total, nil
}

func (r *ReceiptRepository) list(ctx context.Context, query string, args ...any) ([]models.Receipt, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	receipts := make([]models.Receipt, 0)
	for rows.Next() {
		receipt, err := scanReceipt(rows)
		if err != nil {
			return nil, err
		}
		receipts = append(receipts, *receipt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return receipts, nil
}

func scanReceipt(row rowScanner) (*models.Receipt, error) {
	var (
		receipt     models.Receipt
		sessionList []byte
	)
	if err := row.Scan(
		&receipt.ID,
		&receipt.MentorID,
		&receipt.MentorEmail,
		&receipt.MentorName,
		&receipt.PeriodStart,
		&receipt.PeriodEnd,
		&sessionList,
		&receipt.TotalHours,
		&receipt.GrossPayout,
		&receipt.PlatformFee,
		&receipt.GST,
		&receipt.NetPayable,
		&receipt.Overridden,
		&receipt.OverrideReason,
		&receipt.CreatedBy,
		&receipt.CreatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(sessionList, &receipt.Sessions); err != nil {
		return nil, fmt.Errorf("decode session list for receipt %s: %w", receipt.ID, err)
	}
	return &receipt, nil
}
