package model

import (
	"time"

	"gorm.io/gorm"
)

// User struct, one row per identity issued by the external auth provider
type User struct {
	gorm.Model
	ExternalID string    `gorm:"uniqueIndex;not null" json:"external_id"`
	Name       string    `gorm:"not null" json:"name"`
	Avatar     string    `json:"avatar"`
	Online     bool      `gorm:"not null;default:false" json:"online"`
	LastSeen   time.Time `json:"last_seen"`
}
