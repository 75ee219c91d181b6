package services

import (
	"errors"
	"strings"
	"time"

	"github.com/chefbawss/backend/internal/models"
	"github.com/chefbawss/backend/pkg/response"
	"gorm.io/gorm"
)

type ClientService struct {
	db *gorm.DB
}

func NewClientService(db *gorm.DB) *ClientService {
	return &ClientService{db: db}
}

// ClientView is a client annotated with its live event count. Total
// revenue over completed events is filled for admins only.
type ClientView struct {
	models.Client
	EventCount   int64    `json:"event_count"`
	TotalRevenue *float64 `json:"total_revenue,omitempty"`
}

// List returns the tenant's clients, optionally filtered by a
// case-insensitive name/email substring.
func (s *ClientService) List(tenant *models.Tenant, search string) ([]ClientView, error) {
	q := tenant.Clients(s.db)
	if search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(clients.name) LIKE ? OR LOWER(clients.email) LIKE ?", like, like)
	}

	var clients []models.Client
	if err := q.Order("clients.name").Find(&clients).Error; err != nil {
		return nil, err
	}

	counts, err := s.eventCounts(tenant)
	if err != nil {
		return nil, err
	}

	views := make([]ClientView, 0, len(clients))
	for _, c := range clients {
		views = append(views, ClientView{Client: c, EventCount: counts[c.ID]})
	}
	return views, nil
}

// orgEvents scopes to all of the organization's non-deleted events. The
// client annotations count the whole book of business, not the chef's
// own slice, so this deliberately skips the role narrowing.
func (s *ClientService) orgEvents(tenant *models.Tenant) *gorm.DB {
	return s.db.Model(&models.Event{}).
		Where("events.organization_id = ? AND events.is_deleted = ?", tenant.Organization.ID, false)
}

// eventCounts maps client id to the number of non-deleted events.
func (s *ClientService) eventCounts(tenant *models.Tenant) (map[uint]int64, error) {
	type countRow struct {
		ClientID uint
		Count    int64
	}
	var rows []countRow
	err := s.orgEvents(tenant).
		Select("events.client_id AS client_id, COUNT(*) AS count").
		Group("events.client_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		counts[r.ClientID] = r.Count
	}
	return counts, nil
}

// Get returns one visible client of the tenant with its annotations.
func (s *ClientService) Get(tenant *models.Tenant, id uint) (*ClientView, error) {
	client, err := s.find(tenant, id)
	if err != nil {
		return nil, err
	}

	view := &ClientView{Client: *client}
	err = s.orgEvents(tenant).
		Where("events.client_id = ?", client.ID).
		Count(&view.EventCount).Error
	if err != nil {
		return nil, err
	}

	if tenant.IsAdmin() {
		var revenue float64
		err = s.orgEvents(tenant).
			Where("events.client_id = ? AND events.status = ?", client.ID, models.StatusCompleted).
			Select("COALESCE(SUM(events.client_pay), 0)").
			Scan(&revenue).Error
		if err != nil {
			return nil, err
		}
		view.TotalRevenue = &revenue
	}
	return view, nil
}

// find fetches the raw row without annotations.
func (s *ClientService) find(tenant *models.Tenant, id uint) (*models.Client, error) {
	var client models.Client
	err := tenant.Clients(s.db).Where("clients.id = ?", id).First(&client).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("client not found")
		}
		return nil, err
	}
	return &client, nil
}

type ClientRequest struct {
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	Allergies string `json:"allergies"`
	Notes     string `json:"notes"`
}

func (s *ClientService) Create(tenant *models.Tenant, req *ClientRequest) (*ClientView, error) {
	client := models.Client{
		OrganizationID: tenant.Organization.ID,
		Name:           req.Name,
		Email:          strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:          req.Phone,
		Address:        req.Address,
		Allergies:      req.Allergies,
		Notes:          req.Notes,
	}
	if err := s.db.Create(&client).Error; err != nil {
		return nil, err
	}
	return &ClientView{Client: client}, nil
}

type UpdateClientRequest struct {
	Name      *string `json:"name"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	Address   *string `json:"address"`
	Allergies *string `json:"allergies"`
	Notes     *string `json:"notes"`
}

func (s *ClientService) Update(tenant *models.Tenant, id uint, req *UpdateClientRequest) (*ClientView, error) {
	client, err := s.find(tenant, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		client.Name = *req.Name
	}
	if req.Email != nil {
		client.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Phone != nil {
		client.Phone = *req.Phone
	}
	if req.Address != nil {
		client.Address = *req.Address
	}
	if req.Allergies != nil {
		client.Allergies = *req.Allergies
	}
	if req.Notes != nil {
		client.Notes = *req.Notes
	}

	if err := s.db.Save(client).Error; err != nil {
		return nil, err
	}
	return s.Get(tenant, id)
}

// Delete soft-deletes a client. Refused while any non-deleted event
// still references them, regardless of the event's status.
func (s *ClientService) Delete(tenant *models.Tenant, id uint) error {
	client, err := s.find(tenant, id)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		tx.Model(&models.Event{}).
			Where("client_id = ? AND is_deleted = ?", client.ID, false).
			Count(&count)
		if count > 0 {
			return response.NewBadRequest("cannot delete a client with existing events")
		}

		now := time.Now()
		return tx.Model(client).Updates(map[string]interface{}{
			"is_deleted": true,
			"deleted_at": now,
		}).Error
	})
}
