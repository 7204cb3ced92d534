package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Kalyaneluri-21/Payout-Automation/internal/models"
	"github.com/Kalyaneluri-21/Payout-Automation/internal/payout"
)

// MemoryStore keeps sessions, receipts and override audit entries in process.
// It backs the "memory" store driver and the service tests. Every value going
// in or out is copied so callers never share state with the store.
type MemoryStore struct {
	mu            sync.RWMutex
	nextSessionID int64
	sessions      map[int64]models.Session
	receipts      map[string]models.Receipt
	overrides     []models.OverrideAuditEntry
	noRangeQuery  bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[int64]models.Session),
		receipts: make(map[string]models.Receipt),
	}
}

// DisableRangeQueries makes ListCompletedInRange fail with
// ErrRangeQueryUnsupported, the way Postgres does without the range index.
func (m *MemoryStore) DisableRangeQueries() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.noRangeQuery = true
}

// AddSession stores a session, assigning an id when it has none.
func (m *MemoryStore) AddSession(session models.Session) models.Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if session.ID == 0 {
		m.nextSessionID++
		session.ID = m.nextSessionID
	} else if session.ID > m.nextSessionID {
		m.nextSessionID = session.ID
	}
	if session.ReceiptStatus == "" {
		session.ReceiptStatus = models.ReceiptStatusNotGenerated
	}
	now := time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now
	session.DateTime = session.DateTime.UTC()

	m.sessions[session.ID] = copySession(session)
	return copySession(session)
}

func (m *MemoryStore) Sessions() *MemorySessions {
	return &MemorySessions{store: m}
}

func (m *MemoryStore) Receipts() *MemoryReceipts {
	return &MemoryReceipts{store: m}
}

func (m *MemoryStore) Overrides() *MemoryOverrides {
	return &MemoryOverrides{store: m}
}

// CommitReceipt applies the same check-then-write as ReceiptWriter under the
// store lock, including linking a previously recorded override entry.
func (m *MemoryStore) CommitReceipt(
	ctx context.Context,
	receipt *models.Receipt,
	audit *models.OverrideAuditEntry,
) error {
	sessionIDs := receipt.SessionIDs()
	if len(sessionIDs) == 0 {
		return payout.ErrNoEligibleSessions
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	conflicts := make([]int64, 0)
	for _, id := range sessionIDs {
		session, ok := m.sessions[id]
		if !ok || session.IsReceipted() {
			conflicts = append(conflicts, id)
		}
	}
	if len(conflicts) > 0 {
		sort.Slice(conflicts, func(i, j int) bool { return conflicts[i] < conflicts[j] })
		return &payout.ConflictError{SessionIDs: conflicts}
	}

	recordAt := -1
	if audit != nil {
		for i, entry := range m.overrides {
			if entry.ID != audit.ID {
				continue
			}
			if entry.ReceiptID != nil {
				return payout.ErrOverrideConsumed
			}
			recordAt = i
			break
		}
	}

	m.receipts[receipt.ID] = copyReceipt(*receipt)
	switch {
	case audit == nil:
	case recordAt >= 0:
		receiptID := receipt.ID
		m.overrides[recordAt].ReceiptID = &receiptID
	default:
		m.overrides = append(m.overrides, copyAuditEntry(*audit))
	}

	generatedAt := receipt.CreatedAt.UTC()
	now := time.Now().UTC()
	for _, id := range sessionIDs {
		session := m.sessions[id]
		receiptID := receipt.ID
		session.ReceiptStatus = models.ReceiptStatusGenerated
		session.ReceiptID = &receiptID
		session.ReceiptGeneratedAt = &generatedAt
		session.UpdatedAt = now
		m.sessions[id] = session
	}
	return nil
}

type MemorySessions struct {
	store *MemoryStore
}

func (s *MemorySessions) ListCompletedInRange(
	ctx context.Context,
	mentorID int64,
	start time.Time,
	end time.Time,
) ([]models.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	if s.store.noRangeQuery {
		return nil, ErrRangeQueryUnsupported
	}
	return s.store.filterSessions(func(session models.Session) bool {
		return session.MentorID == mentorID &&
			session.Status == models.SessionStatusCompleted &&
			!session.DateTime.Before(start) &&
			!session.DateTime.After(end)
	}), nil
}

func (s *MemorySessions) ListByMentor(ctx context.Context, mentorID int64) ([]models.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	return s.store.filterSessions(func(session models.Session) bool {
		return session.MentorID == mentorID
	}), nil
}

func (s *MemorySessions) ListAll(ctx context.Context) ([]models.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	return s.store.filterSessions(func(models.Session) bool { return true }), nil
}

type MemoryReceipts struct {
	store *MemoryStore
}

func (r *MemoryReceipts) GetByID(ctx context.Context, receiptID string) (*models.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	receipt, ok := r.store.receipts[receiptID]
	if !ok {
		return nil, ErrNotFound
	}
	receipt = copyReceipt(receipt)
	return &receipt, nil
}

func (r *MemoryReceipts) List(ctx context.Context, filter ReceiptListFilter) ([]models.Receipt, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	receipts := r.store.filterReceipts(func(receipt models.Receipt) bool {
		return filter.MentorID == nil || receipt.MentorID == *filter.MentorID
	})
	total := len(receipts)

	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return []models.Receipt{}, total, nil
	}
	receipts = receipts[offset:]
	if filter.Limit > 0 && filter.Limit < len(receipts) {
		receipts = receipts[:filter.Limit]
	}
	return receipts, total, nil
}

type MemoryOverrides struct {
	store *MemoryStore
}

func (o *MemoryOverrides) Create(ctx context.Context, entry *models.OverrideAuditEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	o.store.mu.Lock()
	defer o.store.mu.Unlock()

	o.store.overrides = append(o.store.overrides, copyAuditEntry(*entry))
	return nil
}

func (o *MemoryOverrides) GetByID(ctx context.Context, auditID string) (*models.OverrideAuditEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	o.store.mu.RLock()
	defer o.store.mu.RUnlock()

	for _, entry := range o.store.overrides {
		if entry.ID == auditID {
			entry = copyAuditEntry(entry)
			return &entry, nil
		}
	}
	return nil, ErrNotFound
}

// List returns audit entries in insertion order.
func (o *MemoryOverrides) List() []models.OverrideAuditEntry {
	o.store.mu.RLock()
	defer o.store.mu.RUnlock()

	entries := make([]models.OverrideAuditEntry, 0, len(o.store.overrides))
	for _, entry := range o.store.overrides {
		entries = append(entries, copyAuditEntry(entry))
	}
	return entries
}

// filterSessions must be called with the lock held. Results are ordered by
// date time, then id, matching the SQL repositories.
func (m *MemoryStore) filterSessions(keep func(models.Session) bool) []models.Session {
	sessions := make([]models.Session, 0)
	for _, session := range m.sessions {
		if keep(session) {
			sessions = append(sessions, copySession(session))
		}
	}
	sort.Slice(sessions, func(i, j int) bool {
		if !sessions[i].DateTime.Equal(sessions[j].DateTime) {
			return sessions[i].DateTime.Before(sessions[j].DateTime)
		}
		return sessions[i].ID < sessions[j].ID
	})
	return sessions
}

// filterReceipts must be called with the lock held. Newest first.
func (m *MemoryStore) filterReceipts(keep func(models.Receipt) bool) []models.Receipt {
	receipts := make([]models.Receipt, 0)
	for _, receipt := range m.receipts {
		if keep(receipt) {
			receipts = append(receipts, copyReceipt(receipt))
		}
	}
	sort.Slice(receipts, func(i, j int) bool {
		if !receipts[i].CreatedAt.Equal(receipts[j].CreatedAt) {
			return receipts[i].CreatedAt.After(receipts[j].CreatedAt)
		}
		return receipts[i].ID > receipts[j].ID
	})
	return receipts
}

func copySession(session models.Session) models.Session {
	if session.ReceiptID != nil {
		receiptID := *session.ReceiptID
		session.ReceiptID = &receiptID
	}
	if session.ReceiptGeneratedAt != nil {
		generatedAt := *session.ReceiptGeneratedAt
		session.ReceiptGeneratedAt = &generatedAt
	}
	return session
}

func copyReceipt(receipt models.Receipt) models.Receipt {
	sessions := make([]models.ReceiptSession, len(receipt.Sessions))
	copy(sessions, receipt.Sessions)
	receipt.Sessions = sessions
	if receipt.OverrideReason != nil {
		reason := *receipt.OverrideReason
		receipt.OverrideReason = &reason
	}
	return receipt
}

func copyAuditEntry(entry models.OverrideAuditEntry) models.OverrideAuditEntry {
	if entry.MentorID != nil {
		mentorID := *entry.MentorID
		entry.MentorID = &mentorID
	}
	if entry.ReceiptID != nil {
		receiptID := *entry.ReceiptID
		entry.ReceiptID = &receiptID
	}
	return entry
}
