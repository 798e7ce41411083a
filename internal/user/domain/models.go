package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// User is an actor recorded on ledger entries. The password hash never leaves
// the service layer.
type User struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	Username     string       `gorm:"uniqueIndex;not null" json:"username"`
	Email        string       `json:"email,omitempty"`
	PasswordHash string       `gorm:"not null" json:"-"`
	CreatedAt    time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null" json:"updated_at"`
}
