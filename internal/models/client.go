package models

import "time"

// Client is a customer of the organization. Soft-deletable; events
// reference clients with protect semantics, so a client with events
// cannot be removed.
type Client struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	OrganizationID uint          `gorm:"index;not null" json:"organization_id"`
	Organization   *Organization `gorm:"foreignKey:OrganizationID" json:"-"`
	Name           string        `gorm:"size:200;not null" json:"name"`
	Email          string        `gorm:"size:255" json:"email"`
	Phone          string        `gorm:"size:20" json:"phone"`
	Address        string        `json:"address"`
	Allergies      string        `json:"allergies"`
	Notes          string        `json:"notes"`
	IsDeleted      bool          `gorm:"default:false;index" json:"-"`
	DeletedAt      *time.Time    `json:"-"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

func (Client) TableName() string { return "clients" }
