package sink

import (
	"github.com/worklog/worklog/internal/database"
	"github.com/worklog/worklog/internal/models"
	"github.com/worklog/worklog/internal/sampler"
)

// SQLite mirrors samples into the samples table. Closing it leaves the
// database open; its owner closes that.
type SQLite struct {
	repo *database.Repository
}

func NewSQLite(repo *database.Repository) *SQLite {
	return &SQLite{repo: repo}
}

func (s *SQLite) Write(sample sampler.Sample) error {
	return s.repo.CreateSample(&models.SampleRecord{
		Timestamp:   sample.Timestamp,
		WindowTitle: sample.WindowTitle,
		ProgramName: sample.ProgramName,
		IdleSeconds: sample.IdleSeconds,
	})
}

func (s *SQLite) Close() error {
	return nil
}
