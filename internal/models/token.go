package models

import "time"

// InvitationToken lets an invited chef set their first password.
// At most one live token exists per user; issuing a new one deletes all
// previous tokens of the same kind in the same transaction.
type InvitationToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	User      *User      `gorm:"foreignKey:UserID" json:"-"`
	Token     string     `gorm:"uniqueIndex;size:64;not null" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	UsedAt    *time.Time `json:"used_at"`
	CreatedAt time.Time  `json:"created_at"`
}

func (InvitationToken) TableName() string { return "invitation_tokens" }

// Valid reports whether the token is unconsumed and unexpired.
// Expiry is derived at read time, never stored as a state.
func (t *InvitationToken) Valid() bool {
	return t.UsedAt == nil && time.Now().Before(t.ExpiresAt)
}

// PasswordResetToken authorizes a single password reset. Same contract as
// InvitationToken with a much shorter TTL: resets are higher-risk and
// should close quickly.
type PasswordResetToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	User      *User      `gorm:"foreignKey:UserID" json:"-"`
	Token     string     `gorm:"uniqueIndex;size:64;not null" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	UsedAt    *time.Time `json:"used_at"`
	CreatedAt time.Time  `json:"created_at"`
}

func (PasswordResetToken) TableName() string { return "password_reset_tokens" }

func (t *PasswordResetToken) Valid() bool {
	return t.UsedAt == nil && time.Now().Before(t.ExpiresAt)
}
