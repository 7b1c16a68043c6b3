package models

import (
	"time"

	"gorm.io/gorm"
)

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// All lists every model for AutoMigrate.
func All() []any {
	return []any{
		&Player{},
		&PlayerMatch{},
		&Game{},
	}
}
