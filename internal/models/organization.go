package models

import (
	"fmt"
	"time"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// Membership roles. The role set is closed: admins have full tenant
// control, chefs are restricted to their own profile and assigned events.
const (
	RoleAdmin = "admin"
	RoleChef  = "chef"
)

// Organization is the tenant. Never hard-deleted.
type Organization struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:200;not null" json:"name"`
	Slug      string    `gorm:"uniqueIndex;size:220" json:"slug"`
	Timezone  string    `gorm:"size:50;default:America/New_York" json:"timezone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Organization) TableName() string { return "organizations" }

// UniqueSlug derives a slug from name, appending -2, -3, ... until free.
// The slug is assigned once at registration and never changes.
func UniqueSlug(db *gorm.DB, name string) string {
	base := slug.Make(name)
	candidate := base
	for i := 2; ; i++ {
		var count int64
		db.Model(&Organization{}).Where("slug = ?", candidate).Count(&count)
		if count == 0 {
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

// OrganizationMembership binds a user to an organization with a role.
// A user's first active membership is their current tenant context.
// Memberships are deactivated, never deleted.
type OrganizationMembership struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	UserID         uint          `gorm:"uniqueIndex:idx_user_org;not null" json:"user_id"`
	User           *User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	OrganizationID uint          `gorm:"uniqueIndex:idx_user_org;not null" json:"organization_id"`
	Organization   *Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	Role           string        `gorm:"size:20;not null" json:"role"` // admin, chef
	IsActive       bool          `gorm:"default:true" json:"is_active"`
	CreatedAt      time.Time     `json:"joined_at"`
	UpdatedAt      time.Time     `json:"-"`
}

func (OrganizationMembership) TableName() string { return "organization_memberships" }
