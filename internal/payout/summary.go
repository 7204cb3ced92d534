package payout

import "github.com/Kalyaneluri-21/Payout-Automation/internal/models"

// SummarizeAdmin rolls up every session in the store. Sessions that fail
// validation still count as sessions but contribute nothing to money sums.
func SummarizeAdmin(sessions []models.Session) models.AdminSummary {
	mentors := make(map[int64]struct{})
	summary := models.AdminSummary{TotalSessions: len(sessions)}
	for _, session := range sessions {
		mentors[session.MentorID] = struct{}{}
		if !IsEligible(session) || ValidateSession(session) != nil {
			continue
		}
		summary.PendingPayouts += SessionPayout(session)
	}
	summary.TotalMentors = len(mentors)
	return summary
}

func SummarizeMentor(mentorID int64, sessions []models.Session) models.MentorSummary {
	summary := models.MentorSummary{MentorID: mentorID}
	for _, session := range sessions {
		if session.MentorID != mentorID {
			continue
		}
		summary.TotalSessions++
		if ValidateSession(session) != nil {
			continue
		}
		switch {
		case session.IsReceipted():
			summary.TotalEarnings += SessionPayout(session)
		case session.Status == models.SessionStatusCompleted:
			summary.PendingPayments += SessionPayout(session)
		}
	}
	return summary
}
