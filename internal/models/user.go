package models

import (
	"strings"
	"time"
)

// User is an account identified by email. Invited chefs start with an
// empty password hash and cannot log in until they accept their
// invitation.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password  string    `gorm:"size:255" json:"-"` // bcrypt hash, empty until set
	FirstName string    `gorm:"size:100" json:"first_name"`
	LastName  string    `gorm:"size:100" json:"last_name"`
	Phone     string    `gorm:"size:20" json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// HasUsablePassword reports whether the user has set a password. Used to
// block re-inviting or re-activating an already activated account.
func (u *User) HasUsablePassword() bool {
	return u.Password != ""
}
