package models

import (
	"time"

	"gorm.io/gorm"
)

// CalendarColors is the fixed palette assigned to chefs round-robin per
// organization. Once assigned a color is never changed.
var CalendarColors = []string{
	"#4A90D9",
	"#7B68EE",
	"#E57373",
	"#4DB6AC",
	"#FFB74D",
	"#81C784",
	"#F06292",
	"#64B5F6",
}

// UnassignedColor is used for events with no chef.
const UnassignedColor = "#9E9E9E"

// ChefProfile holds chef-specific data, one-to-one with a chef membership.
type ChefProfile struct {
	ID             uint                    `gorm:"primaryKey" json:"id"`
	MembershipID   uint                    `gorm:"uniqueIndex;not null" json:"membership_id"`
	Membership     *OrganizationMembership `gorm:"foreignKey:MembershipID" json:"membership,omitempty"`
	Address        string                  `json:"address"`
	DefaultPayRate *float64                `json:"default_pay_rate"`
	CalendarColor  string                  `gorm:"size:7" json:"calendar_color"`
	Notes          string                  `json:"notes"` // admin-only private notes
	CreatedAt      time.Time               `json:"created_at"`
	UpdatedAt      time.Time               `json:"updated_at"`
}

func (ChefProfile) TableName() string { return "chef_profiles" }

// NextCalendarColor picks the first palette color unused in the
// organization, falling back to cycling by profile count once the palette
// is exhausted. Must run inside the same transaction as the profile
// insert so concurrent invites cannot pick the same free slot.
func NextCalendarColor(tx *gorm.DB, organizationID uint) string {
	var used []string
	tx.Model(&ChefProfile{}).
		Joins("JOIN organization_memberships ON organization_memberships.id = chef_profiles.membership_id").
		Where("organization_memberships.organization_id = ?", organizationID).
		Pluck("chef_profiles.calendar_color", &used)

	taken := make(map[string]bool, len(used))
	for _, c := range used {
		taken[c] = true
	}
	for _, c := range CalendarColors {
		if !taken[c] {
			return c
		}
	}
	return CalendarColors[len(used)%len(CalendarColors)]
}
