package user

import (
	"time"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleUser   Role = "user"
	RoleBanned Role = "banned"
)

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:30;not null" json:"username"`
	Email        string    `gorm:"uniqueIndex;size:254;not null" json:"email,omitempty"`
	PasswordHash string    `gorm:"size:128;not null" json:"-"`
	Skills       string    `json:"skills"`
	Bio          string    `json:"bio"`
	Verified     bool      `gorm:"not null;default:false" json:"verified"`
	Role         Role      `gorm:"type:varchar(10);not null;default:'user';index" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u *User) IsBanned() bool { return u.Role == RoleBanned }

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
