package payout

import "github.com/Kalyaneluri-21/Payout-Automation/internal/models"

type Partition struct {
	Eligible         []models.Session
	AlreadyReceipted []models.Session
	NotCompleted     []models.Session
}

// PartitionSessions splits sessions, keeping input order, into those that can still
// be paid and those that cannot. It is the only place that decides whether a
// session may enter a new receipt.
func PartitionSessions(sessions []models.Session) Partition {
	partition := Partition{
		Eligible:         make([]models.Session, 0, len(sessions)),
		AlreadyReceipted: make([]models.Session, 0),
		NotCompleted:     make([]models.Session, 0),
	}
	for _, session := range sessions {
		switch {
		case session.Status != models.SessionStatusCompleted:
			partition.NotCompleted = append(partition.NotCompleted, session)
		case session.IsReceipted():
			partition.AlreadyReceipted = append(partition.AlreadyReceipted, session)
		default:
			partition.Eligible = append(partition.Eligible, session)
		}
	}
	return partition
}

func IsEligible(session models.Session) bool {
	return session.Status == models.SessionStatusCompleted && !session.IsReceipted()
}
