package models

import (
	"time"
)

// Error kinds stored in ErrorLog.Kind.
const (
	ErrorKindFatal   = "fatal_sampling"
	ErrorKindStartup = "startup"
	ErrorKindSink    = "sink"
)

// ErrorLog is a durable record of an error that stopped the engine.
type ErrorLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Timestamp time.Time `gorm:"not null;index" json:"timestamp"`
	Kind      string    `gorm:"not null;index" json:"kind"`
	ErrorMsg  string    `gorm:"not null" json:"error_msg"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
