package repository

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Kalyaneluri-21/Payout-Automation/internal/models"
)

type sessionSeed struct {
	ID              int64     `yaml:"id"`
	MentorID        int64     `yaml:"mentor_id"`
	MentorEmail     string    `yaml:"mentor_email"`
	MentorName      string    `yaml:"mentor_name"`
	DateTime        time.Time `yaml:"date_time"`
	Type            string    `yaml:"type"`
	DurationMinutes int       `yaml:"duration_minutes"`
	RatePerHour     float64   `yaml:"rate_per_hour"`
	Status          string    `yaml:"status"`
}

type seedFile struct {
	Sessions []sessionSeed `yaml:"sessions"`
}

// LoadSeedFile reads a YAML list of sessions into the store and returns how
// many were added.
func (m *MemoryStore) LoadSeedFile(path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open seed file: %w", err)
	}
	defer file.Close()

	return m.LoadSeed(file)
}

func (m *MemoryStore) LoadSeed(r io.Reader) (int, error) {
	var seed seedFile
	if err := yaml.NewDecoder(r).Decode(&seed); err != nil {
		if err == io.EOF {
			return 0, nil
		}
		return 0, fmt.Errorf("decode seed: %w", err)
	}

	for _, s := range seed.Sessions {
		status := s.Status
		if status == "" {
			status = models.SessionStatusCompleted
		}
		m.AddSession(models.Session{
			ID:              s.ID,
			MentorID:        s.MentorID,
			MentorEmail:     s.MentorEmail,
			MentorName:      s.MentorName,
			DateTime:        s.DateTime,
			Type:            s.Type,
			DurationMinutes: s.DurationMinutes,
			RatePerHour:     s.RatePerHour,
			Status:          status,
			ReceiptStatus:   models.ReceiptStatusNotGenerated,
		})
	}
	return len(seed.Sessions), nil
}
