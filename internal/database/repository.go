package database

import (
	"time"

	"github.com/worklog/worklog/internal/models"

	"github.com/pkg/errors"
)

// Repository handles all database operations for error logs and mirrored
// samples
type Repository struct {
	db *DB
}

// NewRepository creates a new repository instance
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// CreateErrorLog inserts a new error log into the database
func (r *Repository) CreateErrorLog(errorLog *models.ErrorLog) error {
	result := r.db.Create(errorLog)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to insert error log")
	}
	return nil
}

// GetErrorsSince retrieves error logs since a given time, newest first
func (r *Repository) GetErrorsSince(since time.Time, limit int) ([]*models.ErrorLog, error) {
	var logs []*models.ErrorLog
	query := r.db.Where("timestamp >= ?", since).Order("timestamp DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if result := query.Find(&logs); result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query error logs")
	}
	return logs, nil
}

// CreateSample inserts a mirrored sample
func (r *Repository) CreateSample(record *models.SampleRecord) error {
	result := r.db.Create(record)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to insert sample")
	}
	return nil
}

// GetLatestSample retrieves the most recent mirrored sample
func (r *Repository) GetLatestSample() (*models.SampleRecord, error) {
	var record models.SampleRecord
	result := r.db.Order("timestamp DESC").Limit(1).Find(&record)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to get latest sample")
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &record, nil
}

// CountSamplesSince counts mirrored samples with a timestamp at or after since
func (r *Repository) CountSamplesSince(since float64) (int64, error) {
	var count int64
	result := r.db.Model(&models.SampleRecord{}).Where("timestamp >= ?", since).Count(&count)
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to count samples")
	}
	return count, nil
}

// ClearErrors removes all error logs from the database
func (r *Repository) ClearErrors() error {
	result := r.db.Exec("DELETE FROM error_logs")
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to clear error logs")
	}
	return nil
}
