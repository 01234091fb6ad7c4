package models

import "time"

// User is the login identity. It is created in the first phase of signup
// and is immutable afterwards apart from bookkeeping columns.
type User struct {
	Base
	Email       string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password    string     `gorm:"not null" json:"-"`
	IsActive    bool       `gorm:"default:true" json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// UserProfile holds the public profile for a User and shares its id.
// It is created in the second phase of signup.
type UserProfile struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Username  string    `gorm:"type:varchar(30);uniqueIndex;not null" json:"username"`
	Email     string    `gorm:"type:varchar(255);not null" json:"email"`
	FirstName string    `gorm:"type:varchar(100)" json:"first_name"`
	LastName  string    `gorm:"type:varchar(100)" json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RefreshToken is an outstanding, not yet consumed refresh credential.
type RefreshToken struct {
	JTI       string    `gorm:"column:jti;type:varchar(36);primaryKey"`
	UserID    string    `gorm:"type:varchar(36);not null;index"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time
}
