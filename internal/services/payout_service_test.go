package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Kalyaneluri-21/Payout-Automation/internal/models"
	"github.com/Kalyaneluri-21/Payout-Automation/internal/payout"
	"github.com/Kalyaneluri-21/Payout-Automation/internal/repository"
)

var (
	testAdmin  = models.Actor{ID: 1, Role: models.RoleAdmin}
	testMentor = models.Actor{ID: 7, Role: models.RoleMentor}
)

func januaryPeriod(t *testing.T) payout.Period {
	t.Helper()
	period, err := payout.NewPeriod(
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 31, 23, 59, 59, 0, time.UTC),
	)
	require.NoError(t, err)
	return period
}

func addSession(store *repository.MemoryStore, mentorID int64, day int, minutes int, rate float64) models.Session {
	return store.AddSession(models.Session{
		MentorID:        mentorID,
		MentorEmail:     "mentor@example.com",
		MentorName:      "Asha Rao",
		DateTime:        time.Date(2025, 1, day, 10, 0, 0, 0, time.UTC),
		Type:            models.SessionTypeLive,
		DurationMinutes: minutes,
		RatePerHour:     rate,
		Status:          models.SessionStatusCompleted,
	})
}

func newMemoryPayoutService(store *repository.MemoryStore) *PayoutService {
	accessor := NewSessionAccessor(store.Sessions(), nil)
	return NewPayoutService(accessor, store.Receipts(), store, store.Overrides(), nil)
}

func allReceipts(t *testing.T, store *repository.MemoryStore) []models.Receipt {
	t.Helper()
	receipts, _, err := store.Receipts().List(context.Background(), repository.ReceiptListFilter{})
	require.NoError(t, err)
	return receipts
}

type recordingListener struct {
	mu       sync.Mutex
	receipts []*models.Receipt
	err      error
}

func (l *recordingListener) OnReceiptGenerated(_ context.Context, receipt *models.Receipt) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.receipts = append(l.receipts, receipt)
	return l.err
}

func TestCalculatePayoutReferenceExample(t *testing.T) {
	store := repository.NewMemoryStore()
	addSession(store, 7, 10, 60, 1000)
	addSession(store, 7, 11, 30, 1000)
	service := newMemoryPayoutService(store)

	calculation, err := service.CalculatePayout(context.Background(), testAdmin, CalculatePayoutInput{
		MentorID: 7,
		Period:   januaryPeriod(t),
	})
	require.NoError(t, err)
	require.InDelta(t, 1500, calculation.Figures.GrossPayout, 1e-9)
	require.InDelta(t, 150, calculation.Figures.PlatformFee, 1e-9)
	require.InDelta(t, 270, calculation.Figures.GST, 1e-9)
	require.InDelta(t, 1080, calculation.Figures.NetPayable, 1e-9)
	require.InDelta(t, 1.5, calculation.Figures.TotalHours, 1e-9)
	require.Len(t, calculation.EligibleSessions, 2)
}

func TestCalculatePayoutIsSideEffectFree(t *testing.T) {
	store := repository.NewMemoryStore()
	addSession(store, 7, 10, 60, 1000)
	service := newMemoryPayoutService(store)
	input := CalculatePayoutInput{MentorID: 7, Period: januaryPeriod(t)}

	first, err := service.CalculatePayout(context.Background(), testAdmin, input)
	require.NoError(t, err)
	second, err := service.CalculatePayout(context.Background(), testAdmin, input)
	require.NoError(t, err)
	require.Equal(t, first.Figures, second.Figures)

	receipts := allReceipts(t, store)
	require.Empty(t, receipts)
	require.Empty(t, store.Overrides().List())
}

func TestCalculatePayoutExcludesScheduledAndReceipted(t *testing.T) {
	store := repository.NewMemoryStore()
	addSession(store, 7, 10, 60, 1000)
	store.AddSession(models.Session{
		MentorID:        7,
		DateTime:        time.Date(2025, 1, 12, 10, 0, 0, 0, time.UTC),
		Type:            models.SessionTypeReview,
		DurationMinutes: 60,
		RatePerHour:     1000,
		Status:          models.SessionStatusScheduled,
	})
	service := newMemoryPayoutService(store)

	_, err := service.GenerateReceipt(context.Background(), testAdmin, GenerateReceiptInput{MentorID: 7, Period: januaryPeriod(t)})
	require.NoError(t, err)
	addSession(store, 7, 20, 30, 1000)

	calculation, err := service.CalculatePayout(context.Background(), testAdmin, CalculatePayoutInput{
		MentorID: 7,
		Period:   januaryPeriod(t),
	})
	require.NoError(t, err)
	require.Len(t, calculation.EligibleSessions, 1)
	require.Len(t, calculation.AlreadyReceipted, 1)
	require.InDelta(t, 500, calculation.Figures.GrossPayout, 1e-9)
}

func TestCalculatePayoutFallsBackWithoutRangeQuery(t *testing.T) {
	store := repository.NewMemoryStore()
	addSession(store, 7, 10, 60, 1000)
	addSession(store, 7, 11, 30, 1000)
	store.AddSession(models.Session{
		MentorID:        7,
		DateTime:        time.Date(2025, 2, 3, 10, 0, 0, 0, time.UTC),
		Type:            models.SessionTypeLive,
		DurationMinutes: 60,
		RatePerHour:     1000,
		Status:          models.SessionStatusCompleted,
	})
	store.DisableRangeQueries()
	service := newMemoryPayoutService(store)

	calculation, err := service.CalculatePayout(context.Background(), testAdmin, CalculatePayoutInput{
		MentorID: 7,
		Period:   januaryPeriod(t),
	})
	require.NoError(t, err)
	require.Len(t, calculation.EligibleSessions, 2)
	require.InDelta(t, 1080, calculation.Figures.NetPayable, 1e-9)
}

func TestCalculatePayoutSkipsInvalidSessions(t *testing.T) {
	store := repository.NewMemoryStore()
	good := addSession(store, 7, 10, 60, 1000)
	bad := addSession(store, 7, 11, 30, -5)
	service := newMemoryPayoutService(store)

	calculation, err := service.CalculatePayout(context.Background(), testAdmin, CalculatePayoutInput{
		MentorID: 7,
		Period:   januaryPeriod(t),
	})
	require.NoError(t, err)
	require.Len(t, calculation.EligibleSessions, 1)
	require.Equal(t, good.ID, calculation.EligibleSessions[0].ID)
	require.Len(t, calculation.InvalidSessions, 1)
	require.Equal(t, bad.ID, calculation.InvalidSessions[0].SessionID)
	require.InDelta(t, 1000, calculation.Figures.GrossPayout, 1e-9)
}

func TestCalculatePayoutFailsWhenEverySessionIsInvalid(t *testing.T) {
	store := repository.NewMemoryStore()
	addSession(store, 7, 10, 0, 1000)
	addSession(store, 7, 11, 30, -5)
	service := newMemoryPayoutService(store)

	_, err := service.CalculatePayout(context.Background(), testAdmin, CalculatePayoutInput{
		MentorID: 7,
		Period:   januaryPeriod(t),
	})
	require.ErrorIs(t, err, payout.ErrInvalidSessionData)
}

func TestCalculatePayoutRequiresAdmin(t *testing.T) {
	service := newMemoryPayoutService(repository.NewMemoryStore())

	_, err := service.CalculatePayout(context.Background(), testMentor, CalculatePayoutInput{
		MentorID: 7,
		Period:   januaryPeriod(t),
	})
	require.ErrorIs(t, err, ErrForbidden)
}

func TestApplyOverrideRecordsAudit(t *testing.T) {
	store := repository.NewMemoryStore()
	service := newMemoryPayoutService(store)
	mentorID := int64(7)

	result, err := service.ApplyOverride(context.Background(), testAdmin, OverrideInput{
		MentorID:   &mentorID,
		CurrentNet: 1080,
		NewAmount:  1200,
		Reason:     "client adjustment",
	})
	require.NoError(t, err)
	require.Equal(t, payout.Override{NetPayable: 1200, Overridden: true, OverrideReason: "client adjustment"}, result.Override)

	entries := store.Overrides().List()
	require.Len(t, entries, 1)
	require.Equal(t, result.AuditID, entries[0].ID)
	require.Equal(t, 1080.0, entries[0].OriginalAmount)
	require.Equal(t, int64(1), entries[0].ActingUserID)
	require.Equal(t, &mentorID, entries[0].MentorID)
}

func TestApplyOverrideValidationLeavesNoTrace(t *testing.T) {
	store := repository.NewMemoryStore()
	service := newMemoryPayoutService(store)

	_, err := service.ApplyOverride(context.Background(), testAdmin, OverrideInput{CurrentNet: 1080, NewAmount: 1200})
	require.ErrorIs(t, err, payout.ErrValidation)
	require.Empty(t, store.Overrides().List())
}

func TestGenerateReceiptMarksSessionsAndNotifies(t *testing.T) {
	store := repository.NewMemoryStore()
	first := addSession(store, 7, 10, 60, 1000)
	second := addSession(store, 7, 11, 30, 1000)
	service := newMemoryPayoutService(store)
	listener := &recordingListener{}
	failing := &recordingListener{err: errors.New("push failed")}
	service.AddListener(failing)
	service.AddListener(listener)

	receipt, err := service.GenerateReceipt(context.Background(), testAdmin, GenerateReceiptInput{
		MentorID: 7,
		Period:   januaryPeriod(t),
	})
	require.NoError(t, err)
	require.Equal(t, []int64{first.ID, second.ID}, receipt.SessionIDs())
	require.InDelta(t, 1080, receipt.NetPayable, 1e-9)
	require.False(t, receipt.Overridden)
	require.Equal(t, int64(1), receipt.CreatedBy)
	require.Equal(t, "Asha Rao", receipt.MentorName)

	sessions, err := store.Sessions().ListByMentor(context.Background(), 7)
	require.NoError(t, err)
	for _, session := range sessions {
		require.Equal(t, models.ReceiptStatusGenerated, session.ReceiptStatus)
		require.Equal(t, receipt.ID, *session.ReceiptID)
	}

	require.Len(t, listener.receipts, 1)
	require.Equal(t, receipt.ID, listener.receipts[0].ID)
	require.Len(t, failing.receipts, 1)

	_, err = service.GenerateReceipt(context.Background(), testAdmin, GenerateReceiptInput{
		MentorID: 7,
		Period:   januaryPeriod(t),
	})
	require.ErrorIs(t, err, payout.ErrNoEligibleSessions)
}

func TestGenerateReceiptWithOverride(t *testing.T) {
	store := repository.NewMemoryStore()
	addSession(store, 7, 10, 60, 1000)
	addSession(store, 7, 11, 30, 1000)
	service := newMemoryPayoutService(store)

	receipt, err := service.GenerateReceipt(context.Background(), testAdmin, GenerateReceiptInput{
		MentorID: 7,
		Period:   januaryPeriod(t),
		Override: &ReceiptOverride{NewAmount: 1200, Reason: "client adjustment"},
	})
	require.NoError(t, err)
	require.Equal(t, 1200.0, receipt.NetPayable)
	require.True(t, receipt.Overridden)
	require.Equal(t, "client adjustment", *receipt.OverrideReason)
	require.InDelta(t, 1500, receipt.GrossPayout, 1e-9)
	require.InDelta(t, 150, receipt.PlatformFee, 1e-9)
	require.InDelta(t, 270, receipt.GST, 1e-9)

	entries := store.Overrides().List()
	require.Len(t, entries, 1)
	require.Equal(t, receipt.ID, *entries[0].ReceiptID)
	require.InDelta(t, 1080, entries[0].OriginalAmount, 1e-9)

	stored, err := store.Receipts().GetByID(context.Background(), receipt.ID)
	require.NoError(t, err)
	require.Equal(t, 1200.0, stored.NetPayable)
}

func TestGenerateReceiptRejectsBadOverrideWithoutWriting(t *testing.T) {
	store := repository.NewMemoryStore()
	addSession(store, 7, 10, 60, 1000)
	service := newMemoryPayoutService(store)

	_, err := service.GenerateReceipt(context.Background(), testAdmin, GenerateReceiptInput{
		MentorID: 7,
		Period:   januaryPeriod(t),
		Override: &ReceiptOverride{NewAmount: -1, Reason: "oops"},
	})
	require.ErrorIs(t, err, payout.ErrValidation)

	receipts := allReceipts(t, store)
	require.Empty(t, receipts)
}

func TestGenerateReceiptNoEligibleSessionsWritesNothing(t *testing.T) {
	store := repository.NewMemoryStore()
	addSession(store, 8, 10, 60, 1000)
	service := newMemoryPayoutService(store)
	listener := &recordingListener{}
	service.AddListener(listener)

	_, err := service.GenerateReceipt(context.Background(), testAdmin, GenerateReceiptInput{
		MentorID: 7,
		Period:   januaryPeriod(t),
	})
	require.ErrorIs(t, err, payout.ErrNoEligibleSessions)

	receipts := allReceipts(t, store)
	require.Empty(t, receipts)
	require.Empty(t, listener.receipts)

	sessions, err := store.Sessions().ListAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, models.ReceiptStatusNotGenerated, sessions[0].ReceiptStatus)
}

// barrierCommitter holds every caller until all of them have finished their
// reads, forcing the race the commit re-check must catch.
type barrierCommitter struct {
	inner receiptCommitter
	ready sync.WaitGroup
}

func (b *barrierCommitter) CommitReceipt(ctx context.Context, receipt *models.Receipt, audit *models.OverrideAuditEntry) error {
	b.ready.Done()
	b.ready.Wait()
	return b.inner.CommitReceipt(ctx, receipt, audit)
}

func TestConcurrentGenerateReceiptExactlyOneWins(t *testing.T) {
	store := repository.NewMemoryStore()
	onlyFirst := addSession(store, 7, 5, 60, 1000)
	shared := addSession(store, 7, 15, 60, 1000)
	onlySecond := addSession(store, 7, 25, 60, 1000)

	committer := &barrierCommitter{inner: store}
	committer.ready.Add(2)
	accessor := NewSessionAccessor(store.Sessions(), nil)
	service := NewPayoutService(accessor, store.Receipts(), committer, store.Overrides(), nil)

	periods := []payout.Period{
		{Start: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), End: time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)},
		{Start: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), End: time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)},
	}

	type outcome struct {
		receipt *models.Receipt
		err     error
	}
	results := make([]outcome, len(periods))
	var wg sync.WaitGroup
	for i, period := range periods {
		wg.Add(1)
		go func(i int, period payout.Period) {
			defer wg.Done()
			receipt, err := service.GenerateReceipt(context.Background(), testAdmin, GenerateReceiptInput{
				MentorID: 7,
				Period:   period,
			})
			results[i] = outcome{receipt: receipt, err: err}
		}(i, period)
	}
	wg.Wait()

	var (
		winner   *models.Receipt
		conflict *payout.ConflictError
	)
	for _, result := range results {
		switch {
		case result.err == nil:
			require.Nil(t, winner, "only one caller may succeed")
			winner = result.receipt
		case errors.As(result.err, &conflict):
			require.ErrorIs(t, result.err, payout.ErrConcurrentModification)
		default:
			t.Fatalf("unexpected error: %v", result.err)
		}
	}
	require.NotNil(t, winner)
	require.NotNil(t, conflict)
	require.Equal(t, []int64{shared.ID}, conflict.SessionIDs)
	require.Contains(t, winner.SessionIDs(), shared.ID)

	receipts := allReceipts(t, store)
	require.Len(t, receipts, 1)

	sessions, err := store.Sessions().ListByMentor(context.Background(), 7)
	require.NoError(t, err)
	receipted := map[int64]bool{}
	for _, session := range sessions {
		receipted[session.ID] = session.IsReceipted()
	}
	require.True(t, receipted[shared.ID])
	// Exactly one of the two non-shared sessions went with the winner.
	require.NotEqual(t, receipted[onlyFirst.ID], receipted[onlySecond.ID])
}

type cancellingReader struct {
	sessionReader
	cancel context.CancelFunc
}

func (r *cancellingReader) ListCompletedInRange(ctx context.Context, mentorID int64, start, end time.Time) ([]models.Session, error) {
	sessions, err := r.sessionReader.ListCompletedInRange(ctx, mentorID, start, end)
	r.cancel()
	return sessions, err
}

func TestGenerateReceiptCancelledBeforeCommitWritesNothing(t *testing.T) {
	store := repository.NewMemoryStore()
	addSession(store, 7, 10, 60, 1000)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	accessor := NewSessionAccessor(&cancellingReader{sessionReader: store.Sessions(), cancel: cancel}, nil)
	service := NewPayoutService(accessor, store.Receipts(), store, store.Overrides(), nil)

	_, err := service.GenerateReceipt(ctx, testAdmin, GenerateReceiptInput{MentorID: 7, Period: januaryPeriod(t)})
	require.ErrorIs(t, err, context.Canceled)

	receipts := allReceipts(t, store)
	require.Empty(t, receipts)
}

type failingCommitter struct {
	err error
}

func (f failingCommitter) CommitReceipt(context.Context, *models.Receipt, *models.OverrideAuditEntry) error {
	return f.err
}

func TestGenerateReceiptCommitFailureIsDataUnavailable(t *testing.T) {
	store := repository.NewMemoryStore()
	addSession(store, 7, 10, 60, 1000)
	accessor := NewSessionAccessor(store.Sessions(), nil)
	service := NewPayoutService(accessor, store.Receipts(), failingCommitter{err: errors.New("tx aborted")}, store.Overrides(), nil)
	listener := &recordingListener{}
	service.AddListener(listener)

	_, err := service.GenerateReceipt(context.Background(), testAdmin, GenerateReceiptInput{MentorID: 7, Period: januaryPeriod(t)})
	require.ErrorIs(t, err, payout.ErrDataUnavailable)
	require.Empty(t, listener.receipts)
}

func TestReceiptAccess(t *testing.T) {
	store := repository.NewMemoryStore()
	addSession(store, 7, 10, 60, 1000)
	service := newMemoryPayoutService(store)
	ctx := context.Background()

	receipt, err := service.GenerateReceipt(ctx, testAdmin, GenerateReceiptInput{MentorID: 7, Period: januaryPeriod(t)})
	require.NoError(t, err)

	own, err := service.GetReceipt(ctx, testMentor, receipt.ID)
	require.NoError(t, err)
	require.Equal(t, receipt.ID, own.ID)

	_, err = service.GetReceipt(ctx, models.Actor{ID: 8, Role: models.RoleMentor}, receipt.ID)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = service.GetReceipt(ctx, testAdmin, "6f9619ff-8b86-4011-b42d-00c04fc964ff")
	require.ErrorIs(t, err, ErrReceiptNotFound)

	_, err = service.GetReceipt(ctx, testAdmin, "not-a-uuid")
	require.ErrorIs(t, err, ErrReceiptNotFound)

	mine, total, err := service.ListReceipts(ctx, testMentor, nil, 20, 0)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, 1, total)

	other := int64(8)
	_, _, err = service.ListReceipts(ctx, testMentor, &other, 20, 0)
	require.ErrorIs(t, err, ErrForbidden)

	filtered, total, err := service.ListReceipts(ctx, testAdmin, &other, 20, 0)
	require.NoError(t, err)
	require.Empty(t, filtered)
	require.Zero(t, total)

	_, _, err = service.ListReceipts(ctx, testAdmin, nil, 20, -1)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestListReceiptsPagesInStore(t *testing.T) {
	store := repository.NewMemoryStore()
	service := newMemoryPayoutService(store)
	ctx := context.Background()
	for day := 1; day <= 3; day++ {
		addSession(store, 7, day, 60, 1000)
		period, err := payout.NewPeriod(
			time.Date(2025, 1, day, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 1, day, 23, 59, 59, 0, time.UTC),
		)
		require.NoError(t, err)
		_, err = service.GenerateReceipt(ctx, testAdmin, GenerateReceiptInput{MentorID: 7, Period: period})
		require.NoError(t, err)
	}

	page, total, err := service.ListReceipts(ctx, testMentor, nil, 2, 2)
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.Len(t, page, 1)

	past, total, err := service.ListReceipts(ctx, testAdmin, nil, 100, 99_999_900)
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.Empty(t, past)
}

func TestGenerateReceiptLinksRecordedOverride(t *testing.T) {
	store := repository.NewMemoryStore()
	addSession(store, 7, 10, 60, 1000)
	addSession(store, 7, 11, 30, 1000)
	addSession(store, 7, 20, 60, 1000)
	service := newMemoryPayoutService(store)
	ctx := context.Background()
	mentorID := int64(7)

	applied, err := service.ApplyOverride(ctx, testAdmin, OverrideInput{
		MentorID:   &mentorID,
		CurrentNet: 1080,
		NewAmount:  1200,
		Reason:     "client adjustment",
	})
	require.NoError(t, err)

	firstHalf, err := payout.NewPeriod(
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 15, 23, 59, 59, 0, time.UTC),
	)
	require.NoError(t, err)
	receipt, err := service.GenerateReceipt(ctx, testAdmin, GenerateReceiptInput{
		MentorID: 7,
		Period:   firstHalf,
		Override: &ReceiptOverride{AuditID: applied.AuditID},
	})
	require.NoError(t, err)
	require.Equal(t, 1200.0, receipt.NetPayable)
	require.Equal(t, "client adjustment", *receipt.OverrideReason)

	entries := store.Overrides().List()
	require.Len(t, entries, 1, "the override must be recorded once")
	require.Equal(t, applied.AuditID, entries[0].ID)
	require.NotNil(t, entries[0].ReceiptID)
	require.Equal(t, receipt.ID, *entries[0].ReceiptID)

	_, err = service.GenerateReceipt(ctx, testAdmin, GenerateReceiptInput{
		MentorID: 7,
		Period:   januaryPeriod(t),
		Override: &ReceiptOverride{AuditID: applied.AuditID},
	})
	require.ErrorIs(t, err, payout.ErrOverrideConsumed)
	require.Len(t, allReceipts(t, store), 1)
}

func TestGenerateReceiptRejectsForeignOrUnknownOverride(t *testing.T) {
	store := repository.NewMemoryStore()
	addSession(store, 7, 10, 60, 1000)
	service := newMemoryPayoutService(store)
	ctx := context.Background()
	otherMentor := int64(8)

	applied, err := service.ApplyOverride(ctx, testAdmin, OverrideInput{
		MentorID:   &otherMentor,
		CurrentNet: 500,
		NewAmount:  400,
		Reason:     "dispute",
	})
	require.NoError(t, err)

	_, err = service.GenerateReceipt(ctx, testAdmin, GenerateReceiptInput{
		MentorID: 7,
		Period:   januaryPeriod(t),
		Override: &ReceiptOverride{AuditID: applied.AuditID},
	})
	require.ErrorIs(t, err, payout.ErrValidation)

	_, err = service.GenerateReceipt(ctx, testAdmin, GenerateReceiptInput{
		MentorID: 7,
		Period:   januaryPeriod(t),
		Override: &ReceiptOverride{AuditID: "missing"},
	})
	require.ErrorIs(t, err, ErrInvalidInput)
	require.Empty(t, allReceipts(t, store))
}

type blockingListener struct{}

func (blockingListener) OnReceiptGenerated(ctx context.Context, _ *models.Receipt) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestGenerateReceiptDoesNotWaitOnStuckListener(t *testing.T) {
	store := repository.NewMemoryStore()
	addSession(store, 7, 10, 60, 1000)
	service := newMemoryPayoutService(store)
	service.listenerTimeout = 20 * time.Millisecond
	service.AddListener(blockingListener{})

	done := make(chan error, 1)
	go func() {
		_, err := service.GenerateReceipt(context.Background(), testAdmin, GenerateReceiptInput{MentorID: 7, Period: januaryPeriod(t)})
		done <- err
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("receipt generation blocked on a listener")
	}
}
