package models

import (
	"errors"

	"gorm.io/gorm"
)

// Tenant is the immutable request context resolved after authentication
// and before any authorization or data access. It carries the user, their
// first active membership and that membership's organization; for chefs
// it also carries the chef profile. A user with no active membership gets
// a Tenant with nil Membership/Organization, never an error: callers must
// treat the absence as "no tenant" and answer empty or 404.
//
// All tenant-scoped reads go through the query builders below. They deny
// by default: without an organization they match nothing, so a forgotten
// filter can never leak another tenant's rows.
type Tenant struct {
	User         *User
	Membership   *OrganizationMembership
	Organization *Organization
	ChefProfile  *ChefProfile
}

// ResolveTenant loads the tenant context for a user. The first active
// membership (lowest id) wins; the order is arbitrary but deterministic.
func ResolveTenant(db *gorm.DB, userID uint) (*Tenant, error) {
	var user User
	if err := db.First(&user, userID).Error; err != nil {
		return nil, err
	}

	t := &Tenant{User: &user}

	var membership OrganizationMembership
	err := db.Where("user_id = ? AND is_active = ?", userID, true).
		Order("id").
		Preload("Organization").
		First(&membership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return t, nil
		}
		return nil, err
	}

	t.Membership = &membership
	t.Organization = membership.Organization

	if membership.Role == RoleChef {
		var profile ChefProfile
		if err := db.Where("membership_id = ?", membership.ID).First(&profile).Error; err == nil {
			t.ChefProfile = &profile
		}
	}

	return t, nil
}

// IsAdmin reports whether the resolved membership has the admin role.
// A missing membership is never treated as admin.
func (t *Tenant) IsAdmin() bool {
	return t != nil && t.Membership != nil && t.Membership.Role == RoleAdmin
}

// IsChef reports whether the resolved membership has the chef role.
func (t *Tenant) IsChef() bool {
	return t != nil && t.Membership != nil && t.Membership.Role == RoleChef
}

// HasMembership reports whether any active membership was resolved.
func (t *Tenant) HasMembership() bool {
	return t != nil && t.Membership != nil
}

// none returns a query matching no rows. The tenant-isolation backstop
// for callers with no resolved organization.
func none(db *gorm.DB) *gorm.DB {
	return db.Where("1 = 0")
}

// Events returns the tenant's visible, non-deleted events. Chefs are
// narrowed to events assigned to their own profile; a chef without a
// profile sees nothing.
func (t *Tenant) Events(db *gorm.DB) *gorm.DB {
	if t == nil || t.Organization == nil {
		return none(db.Model(&Event{}))
	}
	q := db.Model(&Event{}).
		Where("events.organization_id = ? AND events.is_deleted = ?", t.Organization.ID, false)
	if t.IsChef() {
		if t.ChefProfile == nil {
			return none(db.Model(&Event{}))
		}
		q = q.Where("events.chef_profile_id = ?", t.ChefProfile.ID)
	}
	return q
}

// Clients returns the tenant's non-deleted clients.
func (t *Tenant) Clients(db *gorm.DB) *gorm.DB {
	if t == nil || t.Organization == nil {
		return none(db.Model(&Client{}))
	}
	return db.Model(&Client{}).
		Where("clients.organization_id = ? AND clients.is_deleted = ?", t.Organization.ID, false)
}

// ChefProfiles returns the chef profiles of the tenant's organization,
// active or not.
func (t *Tenant) ChefProfiles(db *gorm.DB) *gorm.DB {
	if t == nil || t.Organization == nil {
		return none(db.Model(&ChefProfile{}))
	}
	return db.Model(&ChefProfile{}).
		Joins("JOIN organization_memberships ON organization_memberships.id = chef_profiles.membership_id").
		Where("organization_memberships.organization_id = ?", t.Organization.ID)
}

// Memberships returns the organization's memberships.
func (t *Tenant) Memberships(db *gorm.DB) *gorm.DB {
	if t == nil || t.Organization == nil {
		return none(db.Model(&OrganizationMembership{}))
	}
	return db.Model(&OrganizationMembership{}).
		Where("organization_memberships.organization_id = ?", t.Organization.ID)
}
