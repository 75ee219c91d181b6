package services

import (
	"errors"
	"strings"
	"time"

	"github.com/chefbawss/backend/internal/models"
	"github.com/chefbawss/backend/pkg/response"
	"gorm.io/gorm"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

type EventService struct {
	db         *gorm.DB
	dispatcher *Dispatcher
}

func NewEventService(db *gorm.DB, dispatcher *Dispatcher) *EventService {
	return &EventService{db: db, dispatcher: dispatcher}
}

// EventFilter narrows event listings. ChefID is a chef membership id;
// dates are inclusive bounds.
type EventFilter struct {
	Status   string
	ChefID   uint
	Search   string
	DateFrom string
	DateTo   string
}

type CreateEventRequest struct {
	ClientID  uint  `json:"client_id" binding:"required"`
	ChefID    *uint `json:"chef_id"`
	Name      string `json:"name"`
	Date      string `json:"date" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time"`

	Location   string `json:"location"`
	GuestCount int    `json:"guest_count" binding:"required,min=1"`
	Allergies  string `json:"allergies"`
	MenuNotes  string `json:"menu_notes"`

	ClientPay     float64  `json:"client_pay"`
	ChefPay       *float64 `json:"chef_pay"`
	DepositAmount *float64 `json:"deposit_amount"`

	InternalNotes string `json:"internal_notes"`
}

func validDate(s string) bool {
	_, err := time.Parse(dateLayout, s)
	return err == nil
}

func validTime(s string) bool {
	_, err := time.Parse(timeLayout, s)
	return err == nil
}

// resolveClient checks that the client belongs to the tenant and is not
// deleted. Cross-tenant ids fail identically to nonexistent ones.
func (s *EventService) resolveClient(tx *gorm.DB, tenant *models.Tenant, clientID uint) (*models.Client, error) {
	var client models.Client
	err := tenant.Clients(tx).Where("clients.id = ?", clientID).First(&client).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewFieldError("client_id", "client not found in your organization")
		}
		return nil, err
	}
	return &client, nil
}

// resolveChef maps a chef membership id to its profile. Only active chef
// memberships of the tenant with a profile are assignable.
func (s *EventService) resolveChef(tx *gorm.DB, tenant *models.Tenant, membershipID uint) (*models.ChefProfile, *models.User, error) {
	var membership models.OrganizationMembership
	err := tenant.Memberships(tx).
		Where("organization_memberships.id = ? AND organization_memberships.role = ? AND organization_memberships.is_active = ?",
			membershipID, models.RoleChef, true).
		Preload("User").
		First(&membership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, response.NewFieldError("chef_id", "chef not found or inactive in your organization")
		}
		return nil, nil, err
	}

	var profile models.ChefProfile
	if err := tx.Where("membership_id = ?", membership.ID).First(&profile).Error; err != nil {
		return nil, nil, response.NewFieldError("chef_id", "chef not found or inactive in your organization")
	}
	return &profile, membership.User, nil
}

// Create schedules an event. Location defaults to the client's address
// when left blank; the assigned chef is emailed after commit.
func (s *EventService) Create(tenant *models.Tenant, req *CreateEventRequest) (*models.Event, error) {
	if !validDate(req.Date) {
		return nil, response.NewFieldError("date", "date must be in YYYY-MM-DD format")
	}
	if !validTime(req.StartTime) {
		return nil, response.NewFieldError("start_time", "start_time must be in HH:MM format")
	}
	if req.EndTime != "" && !validTime(req.EndTime) {
		return nil, response.NewFieldError("end_time", "end_time must be in HH:MM format")
	}

	var (
		event    models.Event
		chefUser *models.User
	)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		client, err := s.resolveClient(tx, tenant, req.ClientID)
		if err != nil {
			return err
		}

		location := req.Location
		if location == "" {
			location = client.Address
		}

		event = models.Event{
			OrganizationID: tenant.Organization.ID,
			ClientID:       client.ID,
			Name:           req.Name,
			Date:           req.Date,
			StartTime:      req.StartTime,
			EndTime:        req.EndTime,
			Location:       location,
			GuestCount:     req.GuestCount,
			Allergies:      req.Allergies,
			MenuNotes:      req.MenuNotes,
			ClientPay:      req.ClientPay,
			ChefPay:        req.ChefPay,
			DepositAmount:  req.DepositAmount,
			InternalNotes:  req.InternalNotes,
			Status:         models.StatusUpcoming,
		}

		if req.ChefID != nil {
			profile, user, err := s.resolveChef(tx, tenant, *req.ChefID)
			if err != nil {
				return err
			}
			event.ChefProfileID = &profile.ID
			chefUser = user

			if event.ChefPay == nil && profile.DefaultPayRate != nil {
				rate := *profile.DefaultPayRate
				event.ChefPay = &rate
			}
		}

		if err := tx.Create(&event).Error; err != nil {
			return err
		}
		return tx.Preload("Client").Preload("ChefProfile").First(&event, event.ID).Error
	})
	if err != nil {
		return nil, err
	}

	if chefUser != nil {
		s.dispatcher.EventAssigned(chefUser, &event, tenant.Organization)
	}
	return &event, nil
}

// List returns the tenant's visible events in chronological order.
func (s *EventService) List(tenant *models.Tenant, filter *EventFilter) ([]models.Event, error) {
	q := tenant.Events(s.db)

	if filter != nil {
		if filter.Status != "" {
			q = q.Where("events.status = ?", filter.Status)
		}
		if filter.ChefID != 0 {
			q = q.Joins("JOIN chef_profiles ON chef_profiles.id = events.chef_profile_id").
				Where("chef_profiles.membership_id = ?", filter.ChefID)
		}
		if filter.Search != "" {
			like := "%" + strings.ToLower(filter.Search) + "%"
			q = q.Joins("JOIN clients ON clients.id = events.client_id").
				Where("LOWER(events.name) LIKE ? OR LOWER(clients.name) LIKE ? OR LOWER(events.location) LIKE ?", like, like, like)
		}
		if filter.DateFrom != "" {
			q = q.Where("events.date >= ?", filter.DateFrom)
		}
		if filter.DateTo != "" {
			q = q.Where("events.date <= ?", filter.DateTo)
		}
	}

	var events []models.Event
	err := q.Preload("Client").Preload("ChefProfile").
		Order("events.date, events.start_time").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

// CalendarEntry is the trimmed event shape for calendar rendering.
type CalendarEntry struct {
	ID         uint   `json:"id"`
	Title      string `json:"title"`
	Date       string `json:"date"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	Status     string `json:"status"`
	Color      string `json:"color"`
	ChefID     *uint  `json:"chef_id"`
	ChefName   string `json:"chef_name,omitempty"`
	ClientName string `json:"client_name,omitempty"`
	Location   string `json:"location"`
	GuestCount int    `json:"guest_count"`
}

// Calendar returns events in [start, end], cancelled excluded. Entries
// are colored by the assigned chef's palette color; unassigned events
// get the gray fallback. chefFilter takes a membership id or the literal
// "unassigned".
func (s *EventService) Calendar(tenant *models.Tenant, start, end, chefFilter string) ([]CalendarEntry, error) {
	if start == "" || end == "" {
		return nil, response.NewBadRequest("start and end dates are required")
	}
	if !validDate(start) || !validDate(end) {
		return nil, response.NewBadRequest("dates must be in YYYY-MM-DD format")
	}

	q := tenant.Events(s.db).
		Where("events.date >= ? AND events.date <= ?", start, end).
		Where("events.status <> ?", models.StatusCancelled)

	if chefFilter == "unassigned" {
		q = q.Where("events.chef_profile_id IS NULL")
	} else if chefFilter != "" {
		q = q.Joins("JOIN chef_profiles ON chef_profiles.id = events.chef_profile_id").
			Where("chef_profiles.membership_id = ?", chefFilter)
	}

	var events []models.Event
	err := q.Preload("Client").Preload("ChefProfile").Preload("ChefProfile.Membership.User").
		Order("events.date, events.start_time").
		Find(&events).Error
	if err != nil {
		return nil, err
	}

	entries := make([]CalendarEntry, 0, len(events))
	for i := range events {
		e := &events[i]
		entry := CalendarEntry{
			ID:         e.ID,
			Title:      e.DisplayName(),
			Date:       e.Date,
			StartTime:  e.StartTime,
			EndTime:    e.EndTime,
			Status:     e.Status,
			Color:      models.UnassignedColor,
			Location:   e.Location,
			GuestCount: e.GuestCount,
		}
		if e.Client != nil {
			entry.ClientName = e.Client.Name
		}
		if e.ChefProfile != nil {
			entry.Color = e.ChefProfile.CalendarColor
			entry.ChefID = &e.ChefProfile.MembershipID
			if e.ChefProfile.Membership != nil && e.ChefProfile.Membership.User != nil {
				entry.ChefName = e.ChefProfile.Membership.User.FullName()
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Get returns one visible event. Chefs only reach their own assignments
// through the tenant scope; internal notes are blanked for them at the
// handler layer.
func (s *EventService) Get(tenant *models.Tenant, id uint) (*models.Event, error) {
	var event models.Event
	err := tenant.Events(s.db).
		Where("events.id = ?", id).
		Preload("Client").Preload("ChefProfile").Preload("ChefProfile.Membership.User").
		First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("event not found")
		}
		return nil, err
	}
	return &event, nil
}

type UpdateEventRequest struct {
	ClientID  *uint   `json:"client_id"`
	ChefID    *uint   `json:"chef_id"`
	ClearChef bool    `json:"-"`
	Name      *string `json:"name"`
	Date      *string `json:"date"`
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`

	Location   *string `json:"location"`
	GuestCount *int    `json:"guest_count"`
	Allergies  *string `json:"allergies"`
	MenuNotes  *string `json:"menu_notes"`

	ClientPay       *float64 `json:"client_pay"`
	ChefPay         *float64 `json:"chef_pay"`
	DepositAmount   *float64 `json:"deposit_amount"`
	DepositReceived *bool    `json:"deposit_received"`
	PaymentReceived *bool    `json:"payment_received"`

	InternalNotes *string `json:"internal_notes"`
	ChefNotes     *string `json:"chef_notes"`
}

// Update applies an admin edit. A newly assigned chef gets the
// assignment email; a chef who stays assigned through other changes gets
// the update email. ClearChef unassigns (set by the handler when the
// request carries an explicit null chef_id).
func (s *EventService) Update(tenant *models.Tenant, id uint, req *UpdateEventRequest) (*models.Event, error) {
	if req.Date != nil && !validDate(*req.Date) {
		return nil, response.NewFieldError("date", "date must be in YYYY-MM-DD format")
	}
	if req.StartTime != nil && !validTime(*req.StartTime) {
		return nil, response.NewFieldError("start_time", "start_time must be in HH:MM format")
	}
	if req.EndTime != nil && *req.EndTime != "" && !validTime(*req.EndTime) {
		return nil, response.NewFieldError("end_time", "end_time must be in HH:MM format")
	}

	var (
		event        models.Event
		newChefUser  *models.User
		keepChefUser *models.User
	)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Loaded without associations: a populated ChefProfile struct
		// would win over a cleared ChefProfileID when the row is saved.
		err := tenant.Events(tx).Where("events.id = ?", id).First(&event).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NewNotFound("event not found")
			}
			return err
		}

		prevChefProfileID := event.ChefProfileID

		if req.ClientID != nil {
			client, err := s.resolveClient(tx, tenant, *req.ClientID)
			if err != nil {
				return err
			}
			event.ClientID = client.ID
		}

		switch {
		case req.ClearChef:
			event.ChefProfileID = nil
		case req.ChefID != nil:
			profile, user, err := s.resolveChef(tx, tenant, *req.ChefID)
			if err != nil {
				return err
			}
			event.ChefProfileID = &profile.ID
			if prevChefProfileID == nil || *prevChefProfileID != profile.ID {
				newChefUser = user
			}
		}

		if req.Name != nil {
			event.Name = *req.Name
		}
		if req.Date != nil {
			event.Date = *req.Date
		}
		if req.StartTime != nil {
			event.StartTime = *req.StartTime
		}
		if req.EndTime != nil {
			event.EndTime = *req.EndTime
		}
		if req.Location != nil {
			event.Location = *req.Location
		}
		if req.GuestCount != nil {
			event.GuestCount = *req.GuestCount
		}
		if req.Allergies != nil {
			event.Allergies = *req.Allergies
		}
		if req.MenuNotes != nil {
			event.MenuNotes = *req.MenuNotes
		}
		if req.ClientPay != nil {
			event.ClientPay = *req.ClientPay
		}
		if req.ChefPay != nil {
			event.ChefPay = req.ChefPay
		}
		if req.DepositAmount != nil {
			event.DepositAmount = req.DepositAmount
		}
		if req.DepositReceived != nil {
			event.DepositReceived = *req.DepositReceived
		}
		if req.PaymentReceived != nil {
			event.PaymentReceived = *req.PaymentReceived
		}
		if req.InternalNotes != nil {
			event.InternalNotes = *req.InternalNotes
		}
		if req.ChefNotes != nil {
			event.ChefNotes = *req.ChefNotes
		}

		if err := tx.Save(&event).Error; err != nil {
			return err
		}

		// An unchanged assignment still gets a heads-up about the edit.
		if newChefUser == nil && event.ChefProfileID != nil {
			var membership models.OrganizationMembership
			if err := tx.Joins("JOIN chef_profiles ON chef_profiles.membership_id = organization_memberships.id").
				Where("chef_profiles.id = ?", *event.ChefProfileID).
				Preload("User").
				First(&membership).Error; err == nil {
				keepChefUser = membership.User
			}
		}

		return tx.Preload("Client").Preload("ChefProfile").First(&event, event.ID).Error
	})
	if err != nil {
		return nil, err
	}

	if newChefUser != nil {
		s.dispatcher.EventAssigned(newChefUser, &event, tenant.Organization)
	} else if keepChefUser != nil {
		s.dispatcher.EventUpdated(keepChefUser, &event, tenant.Organization)
	}
	return &event, nil
}

// UpdateChefNotes is the one write an assigned chef may perform.
func (s *EventService) UpdateChefNotes(tenant *models.Tenant, id uint, notes string) (*models.Event, error) {
	event, err := s.Get(tenant, id)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(event).Update("chef_notes", notes).Error; err != nil {
		return nil, err
	}
	event.ChefNotes = notes
	return event, nil
}

func (s *EventService) setStatus(tenant *models.Tenant, id uint, status string) (*models.Event, error) {
	event, err := s.Get(tenant, id)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(event).Update("status", status).Error; err != nil {
		return nil, err
	}
	event.Status = status
	return event, nil
}

// Complete marks an event completed. Safe to repeat.
func (s *EventService) Complete(tenant *models.Tenant, id uint) (*models.Event, error) {
	return s.setStatus(tenant, id, models.StatusCompleted)
}

// Cancel marks an event cancelled. Cancelled events disappear from the
// calendar and from the finance rollups but stay in plain listings.
func (s *EventService) Cancel(tenant *models.Tenant, id uint) (*models.Event, error) {
	return s.setStatus(tenant, id, models.StatusCancelled)
}

// Delete soft-deletes an event. It vanishes from every listing and
// report but the row survives.
func (s *EventService) Delete(tenant *models.Tenant, id uint) error {
	event, err := s.Get(tenant, id)
	if err != nil {
		return err
	}

	now := time.Now()
	return s.db.Model(event).Updates(map[string]interface{}{
		"is_deleted": true,
		"deleted_at": now,
	}).Error
}
