package models

import "time"

// SampleRecord mirrors one CSV row in SQLite.
type SampleRecord struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Timestamp   float64   `gorm:"not null;index" json:"timestamp"`
	WindowTitle *string   `json:"window_title"`
	ProgramName string    `gorm:"not null;default:''" json:"program_name"`
	IdleSeconds float64   `gorm:"not null;default:0" json:"idle_seconds"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (SampleRecord) TableName() string {
	return "samples"
}
