package model

import (
	"time"
)

const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// User represents a panel account
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	FirstName    string    `gorm:"not null" json:"firstName"`
	LastName     string    `gorm:"not null" json:"lastName"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"` // Never expose password in JSON
	Role         string    `gorm:"type:varchar(10);default:'USER'" json:"role"`
}
