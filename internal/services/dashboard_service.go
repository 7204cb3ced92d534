package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/Kalyaneluri-21/Payout-Automation/internal/models"
	"github.com/Kalyaneluri-21/Payout-Automation/internal/payout"
)

// SummaryCache stores computed rollups between receipt commits. A miss is
// reported with ok=false and a nil error.
type SummaryCache interface {
	GetAdminSummary(ctx context.Context) (*models.AdminSummary, bool, error)
	SetAdminSummary(ctx context.Context, summary models.AdminSummary) error
	GetMentorSummary(ctx context.Context, mentorID int64) (*models.MentorSummary, bool, error)
	SetMentorSummary(ctx context.Context, summary models.MentorSummary) error
}

type DashboardService struct {
	accessor *SessionAccessor
	cache    SummaryCache
	logger   *zap.Logger
}

// NewDashboardService accepts a nil cache, in which case every call reads the
// session store.
func NewDashboardService(accessor *SessionAccessor, cache SummaryCache, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{accessor: accessor, cache: cache, logger: logger}
}

func (s *DashboardService) GetAdminSummary(ctx context.Context, actor models.Actor) (*models.AdminSummary, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	if s.cache != nil {
		cached, ok, err := s.cache.GetAdminSummary(ctx)
		if err != nil {
			s.logger.Warn("summary cache read failed", zap.Error(err))
		} else if ok {
			return cached, nil
		}
	}

	sessions, err := s.accessor.FetchAllSessions(ctx)
	if err != nil {
		return nil, err
	}
	summary := payout.SummarizeAdmin(sessions)

	if s.cache != nil {
		if err := s.cache.SetAdminSummary(ctx, summary); err != nil {
			s.logger.Warn("summary cache write failed", zap.Error(err))
		}
	}
	return &summary, nil
}

// GetMentorSummary lets admins read any mentor and mentors only themselves.
func (s *DashboardService) GetMentorSummary(
	ctx context.Context,
	actor models.Actor,
	mentorID int64,
) (*models.MentorSummary, error) {
	switch {
	case actor.IsAdmin():
	case actor.Role == models.RoleMentor && actor.ID == mentorID:
	default:
		return nil, ErrForbidden
	}
	if mentorID <= 0 {
		return nil, ErrInvalidInput
	}

	if s.cache != nil {
		cached, ok, err := s.cache.GetMentorSummary(ctx, mentorID)
		if err != nil {
			s.logger.Warn("summary cache read failed", zap.Int64("mentor_id", mentorID), zap.Error(err))
		} else if ok {
			return cached, nil
		}
	}

	sessions, err := s.accessor.FetchMentorSessions(ctx, mentorID)
	if err != nil {
		return nil, err
	}
	summary := payout.SummarizeMentor(mentorID, sessions)

	if s.cache != nil {
		if err := s.cache.SetMentorSummary(ctx, summary); err != nil {
			s.logger.Warn("summary cache write failed", zap.Int64("mentor_id", mentorID), zap.Error(err))
		}
	}
	return &summary, nil
}
