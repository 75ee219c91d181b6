package models

import "time"

// Event statuses. Upcoming events move to completed or cancelled through
// the dedicated lifecycle endpoints; those set the status by overwrite,
// so calling complete twice simply re-sets completed.
const (
	StatusUpcoming  = "upcoming"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Event is a scheduled engagement. Date is a plain calendar date
// ("2006-01-02"), start/end times are "15:04" strings; both sort and
// range-compare lexically across all supported drivers.
type Event struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	OrganizationID uint          `gorm:"index;not null" json:"organization_id"`
	Organization   *Organization `gorm:"foreignKey:OrganizationID" json:"-"`
	ClientID       uint          `gorm:"index;not null" json:"client_id"`
	Client         *Client       `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	ChefProfileID  *uint         `gorm:"index" json:"chef_profile_id"`
	ChefProfile    *ChefProfile  `gorm:"foreignKey:ChefProfileID" json:"chef_profile,omitempty"`

	Name      string `gorm:"size:200" json:"name"`
	Date      string `gorm:"size:10;index;not null" json:"date"`
	StartTime string `gorm:"size:5;not null" json:"start_time"`
	EndTime   string `gorm:"size:5" json:"end_time"`

	Location   string `json:"location"`
	GuestCount int    `gorm:"not null" json:"guest_count"`
	Allergies  string `json:"allergies"`
	MenuNotes  string `json:"menu_notes"`

	ClientPay       float64  `gorm:"not null" json:"client_pay"`
	ChefPay         *float64 `json:"chef_pay"`
	DepositAmount   *float64 `json:"deposit_amount"`
	DepositReceived bool     `gorm:"default:false" json:"deposit_received"`
	PaymentReceived bool     `gorm:"default:false" json:"payment_received"`

	InternalNotes string `json:"internal_notes"` // admin only
	ChefNotes     string `json:"chef_notes"`     // editable by assigned chef

	Status    string     `gorm:"size:20;default:upcoming;index" json:"status"`
	IsDeleted bool       `gorm:"default:false;index" json:"-"`
	DeletedAt *time.Time `json:"-"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (Event) TableName() string { return "events" }

// DisplayName falls back to "<client> Event" when the event is unnamed.
func (e *Event) DisplayName() string {
	if e.Name != "" {
		return e.Name
	}
	if e.Client != nil {
		return e.Client.Name + " Event"
	}
	return "Event"
}

// Profit is derived, never stored: client_pay minus chef_pay when a chef
// pay is set, otherwise client_pay.
func (e *Event) Profit() float64 {
	if e.ChefPay != nil {
		return e.ClientPay - *e.ChefPay
	}
	return e.ClientPay
}
