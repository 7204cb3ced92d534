package payout

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Kalyaneluri-21/Payout-Automation/internal/models"
)

func TestSummaries(t *testing.T) {
	paid := completedSession(1, 60, 1000)
	paid.ReceiptStatus = models.ReceiptStatusGenerated

	pending := completedSession(2, 30, 1000)

	scheduled := completedSession(3, 60, 1000)
	scheduled.Status = models.SessionStatusScheduled

	otherMentor := completedSession(4, 120, 300)
	otherMentor.MentorID = 9

	broken := completedSession(5, 60, 1000)
	broken.DurationMinutes = 0

	sessions := []models.Session{paid, pending, scheduled, otherMentor, broken}

	admin := SummarizeAdmin(sessions)
	require.Equal(t, 5, admin.TotalSessions)
	require.Equal(t, 2, admin.TotalMentors)
	require.InDelta(t, 500+600, admin.PendingPayouts, 1e-9)

	mentor := SummarizeMentor(7, sessions)
	require.Equal(t, int64(7), mentor.MentorID)
	require.Equal(t, 4, mentor.TotalSessions)
	require.InDelta(t, 1000, mentor.TotalEarnings, 1e-9)
	require.InDelta(t, 500, mentor.PendingPayments, 1e-9)
}

func TestSummariesUseSessionPayout(t *testing.T) {
	sessions := []models.Session{completedSession(1, 45, 1234.56), completedSession(2, 10, 99.99)}
	figures, err := Calculate(sessions)
	require.NoError(t, err)

	require.InDelta(t, figures.GrossPayout, SummarizeAdmin(sessions).PendingPayouts, 1e-9)
	require.InDelta(t, figures.GrossPayout, SummarizeMentor(7, sessions).PendingPayments, 1e-9)
}
