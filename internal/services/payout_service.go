package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Kalyaneluri-21/Payout-Automation/internal/models"
	"github.com/Kalyaneluri-21/Payout-Automation/internal/payout"
	"github.com/Kalyaneluri-21/Payout-Automation/internal/repository"
)

var (
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidInput    = errors.New("invalid input")
	ErrReceiptNotFound = errors.New("receipt not found")
)

type receiptReader interface {
	GetByID(ctx context.Context, receiptID string) (*models.Receipt, error)
	List(ctx context.Context, filter repository.ReceiptListFilter) ([]models.Receipt, int, error)
}

type receiptCommitter interface {
	CommitReceipt(ctx context.Context, receipt *models.Receipt, audit *models.OverrideAuditEntry) error
}

type overrideStore interface {
	Create(ctx context.Context, entry *models.OverrideAuditEntry) error
	GetByID(ctx context.Context, auditID string) (*models.OverrideAuditEntry, error)
}

const defaultListenerTimeout = 5 * time.Second

// ReceiptListener is told about every receipt after it has been committed.
type ReceiptListener interface {
	OnReceiptGenerated(ctx context.Context, receipt *models.Receipt) error
}

type PayoutService struct {
	accessor  *SessionAccessor
	receipts  receiptReader
	committer receiptCommitter
	overrides overrideStore
	listeners []ReceiptListener
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
	// each listener gets its own deadline, detached from the request
	listenerTimeout time.Duration
}

func NewPayoutService(
	accessor *SessionAccessor,
	receipts receiptReader,
	committer receiptCommitter,
	overrides overrideStore,
	logger *zap.Logger,
) *PayoutService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PayoutService{
		accessor:  accessor,
		receipts:  receipts,
		committer: committer,
		overrides: overrides,
		logger:    logger,
		now:       time.Now,
		newID:     func() string { return uuid.NewString() },

		listenerTimeout: defaultListenerTimeout,
	}
}

// AddListener registers a post-commit listener. Call it before serving.
func (s *PayoutService) AddListener(listener ReceiptListener) {
	s.listeners = append(s.listeners, listener)
}

type PayoutCalculation struct {
	MentorID         int64
	Period           payout.Period
	Figures          payout.Figures
	EligibleSessions []models.Session
	AlreadyReceipted []int64
	InvalidSessions  []InvalidSession
}

type CalculatePayoutInput struct {
	MentorID int64
	Period   payout.Period
}

// CalculatePayout is a pure read: it never writes and returns the same result
// until the underlying sessions change.
func (s *PayoutService) CalculatePayout(
	ctx context.Context,
	actor models.Actor,
	input CalculatePayoutInput,
) (*PayoutCalculation, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	return s.calculate(ctx, input.MentorID, input.Period)
}

type OverrideInput struct {
	MentorID   *int64
	CurrentNet float64
	NewAmount  float64
	Reason     string
}

type OverrideResult struct {
	payout.Override
	AuditID string
}

// ApplyOverride records one override action. The returned AuditID can be
// handed to GenerateReceipt, which then links this entry to the receipt
// instead of recording a second one.
func (s *PayoutService) ApplyOverride(
	ctx context.Context,
	actor models.Actor,
	input OverrideInput,
) (*OverrideResult, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	override, entry, err := payout.ApplyOverride(input.CurrentNet, input.NewAmount, input.Reason, actor.ID, s.now())
	if err != nil {
		return nil, err
	}
	entry.ID = s.newID()
	entry.MentorID = input.MentorID

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.overrides.Create(ctx, &entry); err != nil {
		return nil, storeError(fmt.Errorf("record override audit: %w", err))
	}

	s.logger.Info("payout override recorded",
		zap.String("audit_id", entry.ID),
		zap.Int64("acting_user_id", actor.ID),
		zap.Float64("original_amount", entry.OriginalAmount),
		zap.Float64("new_amount", entry.NewAmount),
	)
	return &OverrideResult{Override: override, AuditID: entry.ID}, nil
}

// ReceiptOverride is either a reference to an override already recorded by
// ApplyOverride (AuditID) or an inline amount and reason recorded together
// with the receipt.
type ReceiptOverride struct {
	AuditID   string
	NewAmount float64
	Reason    string
}

type GenerateReceiptInput struct {
	MentorID int64
	Period   payout.Period
	Override *ReceiptOverride
}

// GenerateReceipt recalculates the payout, then writes the receipt and marks
// its sessions in one transaction. A session receipted concurrently by
// another caller fails the whole call with a *payout.ConflictError.
func (s *PayoutService) GenerateReceipt(
	ctx context.Context,
	actor models.Actor,
	input GenerateReceiptInput,
) (*models.Receipt, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	calculation, err := s.calculate(ctx, input.MentorID, input.Period)
	if err != nil {
		return nil, err
	}
	if len(calculation.EligibleSessions) == 0 {
		return nil, fmt.Errorf("%w: mentor %d has none in the requested period", payout.ErrNoEligibleSessions, input.MentorID)
	}

	receiptID := s.newID()
	now := s.now()

	var (
		override *payout.Override
		audit    *models.OverrideAuditEntry
	)
	if input.Override != nil {
		override, audit, err = s.receiptOverride(ctx, actor, input.MentorID, calculation.Figures.NetPayable, input.Override, now)
		if err != nil {
			return nil, err
		}
		audit.ReceiptID = &receiptID
	}

	receipt := payout.BuildReceipt(payout.ReceiptDraft{
		ID:        receiptID,
		MentorID:  input.MentorID,
		Period:    calculation.Period,
		Sessions:  calculation.EligibleSessions,
		Figures:   calculation.Figures,
		Override:  override,
		CreatedBy: actor.ID,
		CreatedAt: now,
	})

	// Last point at which cancellation is honoured.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	commitCtx := context.WithoutCancel(ctx)

	if err := s.committer.CommitReceipt(commitCtx, receipt, audit); err != nil {
		var conflict *payout.ConflictError
		if errors.As(err, &conflict) {
			s.logger.Warn("receipt generation lost a race",
				zap.Int64("mentor_id", input.MentorID),
				zap.Int64s("lost_session_ids", conflict.SessionIDs),
			)
			return nil, err
		}
		if errors.Is(err, payout.ErrNoEligibleSessions) ||
			errors.Is(err, payout.ErrDataUnavailable) ||
			errors.Is(err, payout.ErrOverrideConsumed) {
			return nil, err
		}
		return nil, storeError(fmt.Errorf("commit receipt: %w", err))
	}

	s.logger.Info("receipt generated",
		zap.String("receipt_id", receipt.ID),
		zap.Int64("mentor_id", receipt.MentorID),
		zap.Int("sessions", len(receipt.Sessions)),
		zap.Bool("overridden", receipt.Overridden),
	)
	s.publish(commitCtx, receipt)
	return receipt, nil
}

// receiptOverride resolves the override for a receipt. A referenced entry
// must belong to the mentor and must not already back another receipt; its
// recorded amount and reason are used as is.
func (s *PayoutService) receiptOverride(
	ctx context.Context,
	actor models.Actor,
	mentorID int64,
	currentNet float64,
	requested *ReceiptOverride,
	now time.Time,
) (*payout.Override, *models.OverrideAuditEntry, error) {
	auditID := strings.TrimSpace(requested.AuditID)
	if auditID == "" {
		applied, entry, err := payout.ApplyOverride(currentNet, requested.NewAmount, requested.Reason, actor.ID, now)
		if err != nil {
			return nil, nil, err
		}
		entry.ID = s.newID()
		entry.MentorID = &mentorID
		return &applied, &entry, nil
	}

	recorded, err := s.overrides.GetByID(ctx, auditID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: override %s does not exist", ErrInvalidInput, auditID)
		}
		return nil, nil, storeError(err)
	}
	if recorded.MentorID == nil || *recorded.MentorID != mentorID {
		return nil, nil, fmt.Errorf("%w: override %s was not recorded for mentor %d", payout.ErrValidation, auditID, mentorID)
	}
	if recorded.ReceiptID != nil {
		return nil, nil, fmt.Errorf("%w: override %s", payout.ErrOverrideConsumed, auditID)
	}

	applied, _, err := payout.ApplyOverride(currentNet, recorded.NewAmount, recorded.Reason, recorded.ActingUserID, now)
	if err != nil {
		return nil, nil, err
	}
	return &applied, recorded, nil
}

// ListReceipts returns one page of receipts, newest first, and the total
// number matching. Admins may filter by mentor; mentors only ever see their
// own.
func (s *PayoutService) ListReceipts(
	ctx context.Context,
	actor models.Actor,
	mentorID *int64,
	limit int,
	offset int,
) ([]models.Receipt, int, error) {
	if limit < 0 || offset < 0 {
		return nil, 0, fmt.Errorf("%w: limit and offset must not be negative", ErrInvalidInput)
	}

	filter := repository.ReceiptListFilter{MentorID: mentorID, Limit: limit, Offset: offset}
	switch {
	case actor.IsAdmin():
	case actor.Role == models.RoleMentor:
		if mentorID != nil && *mentorID != actor.ID {
			return nil, 0, ErrForbidden
		}
		own := actor.ID
		filter.MentorID = &own
	default:
		return nil, 0, ErrForbidden
	}

	receipts, total, err := s.receipts.List(ctx, filter)
	if err != nil {
		return nil, 0, storeError(err)
	}
	return receipts, total, nil
}

func (s *PayoutService) GetReceipt(ctx context.Context, actor models.Actor, receiptID string) (*models.Receipt, error) {
	if _, err := uuid.Parse(receiptID); err != nil {
		return nil, ErrReceiptNotFound
	}

	receipt, err := s.receipts.GetByID(ctx, receiptID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrReceiptNotFound
		}
		return nil, storeError(err)
	}
	if !actor.IsAdmin() && (actor.Role != models.RoleMentor || receipt.MentorID != actor.ID) {
		return nil, ErrForbidden
	}
	return receipt, nil
}

func (s *PayoutService) calculate(ctx context.Context, mentorID int64, period payout.Period) (*PayoutCalculation, error) {
	if mentorID <= 0 {
		return nil, fmt.Errorf("%w: mentor id is required", ErrInvalidInput)
	}
	period, err := payout.NewPeriod(period.Start, period.End)
	if err != nil {
		return nil, err
	}

	sessions, err := s.accessor.FetchCompletedSessions(ctx, mentorID, period)
	if err != nil {
		return nil, err
	}

	partition := payout.PartitionSessions(sessions)
	eligible, invalid := s.accessor.ValidSessions(partition.Eligible)
	if len(eligible) == 0 && len(invalid) > 0 {
		causes := make([]error, 0, len(invalid))
		for _, session := range invalid {
			causes = append(causes, session.Err)
		}
		return nil, fmt.Errorf("every eligible session failed validation: %w", errors.Join(causes...))
	}

	figures, err := payout.Calculate(eligible)
	if err != nil {
		return nil, err
	}

	alreadyReceipted := make([]int64, 0, len(partition.AlreadyReceipted))
	for _, session := range partition.AlreadyReceipted {
		alreadyReceipted = append(alreadyReceipted, session.ID)
	}

	return &PayoutCalculation{
		MentorID:         mentorID,
		Period:           period,
		Figures:          figures,
		EligibleSessions: eligible,
		AlreadyReceipted: alreadyReceipted,
		InvalidSessions:  invalid,
	}, nil
}

func (s *PayoutService) publish(ctx context.Context, receipt *models.Receipt) {
	for _, listener := range s.listeners {
		listenerCtx, cancel := context.WithTimeout(ctx, s.listenerTimeout)
		err := listener.OnReceiptGenerated(listenerCtx, receipt)
		cancel()
		if err != nil {
			s.logger.Error("receipt listener failed",
				zap.String("receipt_id", receipt.ID),
				zap.Error(err),
			)
		}
	}
}
