package models

import "time"

// TimestampModel provides the created/updated columns for mutable records
type TimestampModel struct {
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}
