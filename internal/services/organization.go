package services

import (
	"time"

	"github.com/chefbawss/backend/internal/models"
	"github.com/chefbawss/backend/pkg/response"
	"gorm.io/gorm"
)

type OrganizationService struct {
	db *gorm.DB
}

func NewOrganizationService(db *gorm.DB) *OrganizationService {
	return &OrganizationService{db: db}
}

type UpdateOrganizationRequest struct {
	Name     *string `json:"name"`
	Timezone *string `json:"timezone"`
}

// Update edits the tenant's organization. The slug stays as registered.
func (s *OrganizationService) Update(tenant *models.Tenant, req *UpdateOrganizationRequest) (*models.Organization, error) {
	org := tenant.Organization

	if req.Name != nil {
		if *req.Name == "" {
			return nil, response.NewFieldError("name", "name cannot be blank")
		}
		org.Name = *req.Name
	}
	if req.Timezone != nil {
		if _, err := time.LoadLocation(*req.Timezone); err != nil {
			return nil, response.NewFieldError("timezone", "unknown timezone")
		}
		org.Timezone = *req.Timezone
	}

	if err := s.db.Save(org).Error; err != nil {
		return nil, err
	}
	return org, nil
}
