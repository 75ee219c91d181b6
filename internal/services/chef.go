package services

import (
	"errors"
	"strings"

	"github.com/chefbawss/backend/internal/models"
	"github.com/chefbawss/backend/pkg/response"
	"gorm.io/gorm"
)

type ChefService struct {
	db         *gorm.DB
	tokens     *TokenService
	dispatcher *Dispatcher
}

func NewChefService(db *gorm.DB, dispatcher *Dispatcher) *ChefService {
	return &ChefService{
		db:         db,
		tokens:     NewTokenService(db),
		dispatcher: dispatcher,
	}
}

// ChefView is the flattened chef representation served over HTTP. The id
// is the membership id, which is what event assignment and routing use.
type ChefView struct {
	ID                uint     `json:"id"`
	ProfileID         uint     `json:"profile_id"`
	Email             string   `json:"email"`
	FirstName         string   `json:"first_name"`
	LastName          string   `json:"last_name"`
	FullName          string   `json:"full_name"`
	Phone             string   `json:"phone"`
	Address           string   `json:"address"`
	DefaultPayRate    *float64 `json:"default_pay_rate"`
	CalendarColor     string   `json:"calendar_color"`
	Notes             string   `json:"notes,omitempty"`
	IsActive          bool     `json:"is_active"`
	InvitationPending bool     `json:"invitation_pending"`
}

func chefView(m *models.OrganizationMembership, p *models.ChefProfile, includeNotes bool) *ChefView {
	v := &ChefView{
		ID:       m.ID,
		IsActive: m.IsActive,
	}
	if m.User != nil {
		v.Email = m.User.Email
		v.FirstName = m.User.FirstName
		v.LastName = m.User.LastName
		v.FullName = m.User.FullName()
		v.Phone = m.User.Phone
		v.InvitationPending = !m.User.HasUsablePassword()
	}
	if p != nil {
		v.ProfileID = p.ID
		v.Address = p.Address
		v.DefaultPayRate = p.DefaultPayRate
		v.CalendarColor = p.CalendarColor
		if includeNotes {
			v.Notes = p.Notes
		}
	}
	return v
}

// List returns all chef memberships of the tenant's organization,
// including deactivated ones.
func (s *ChefService) List(tenant *models.Tenant) ([]*ChefView, error) {
	var memberships []models.OrganizationMembership
	if err := tenant.Memberships(s.db).
		Where("organization_memberships.role = ?", models.RoleChef).
		Preload("User").
		Order("organization_memberships.id").
		Find(&memberships).Error; err != nil {
		return nil, err
	}

	views := make([]*ChefView, 0, len(memberships))
	for i := range memberships {
		m := &memberships[i]
		var profile models.ChefProfile
		var p *models.ChefProfile
		if err := s.db.Where("membership_id = ?", m.ID).First(&profile).Error; err == nil {
			p = &profile
		}
		views = append(views, chefView(m, p, tenant.IsAdmin()))
	}
	return views, nil
}

// findMembership loads a chef membership by id within the tenant's
// organization, or a not-found error.
func (s *ChefService) findMembership(tenant *models.Tenant, membershipID uint) (*models.OrganizationMembership, *models.ChefProfile, error) {
	var membership models.OrganizationMembership
	err := tenant.Memberships(s.db).
		Where("organization_memberships.id = ? AND organization_memberships.role = ?", membershipID, models.RoleChef).
		Preload("User").
		First(&membership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, response.NewNotFound("chef not found")
		}
		return nil, nil, err
	}

	var profile models.ChefProfile
	var p *models.ChefProfile
	if err := s.db.Where("membership_id = ?", membership.ID).First(&profile).Error; err == nil {
		p = &profile
	}
	return &membership, p, nil
}

// Get returns one chef of the tenant's organization.
func (s *ChefService) Get(tenant *models.Tenant, membershipID uint) (*ChefView, error) {
	membership, profile, err := s.findMembership(tenant, membershipID)
	if err != nil {
		return nil, err
	}
	return chefView(membership, profile, tenant.IsAdmin()), nil
}

type InviteChefRequest struct {
	Email          string   `json:"email" binding:"required,email"`
	FirstName      string   `json:"first_name" binding:"required"`
	LastName       string   `json:"last_name" binding:"required"`
	Phone          string   `json:"phone"`
	Address        string   `json:"address"`
	DefaultPayRate *float64 `json:"default_pay_rate"`
	Notes          string   `json:"notes"`
}

// Invite creates (or reuses) the user, adds a chef membership with a
// fresh profile and palette color, and issues the invitation token, all
// in one transaction. The email goes out only after commit.
func (s *ChefService) Invite(tenant *models.Tenant, req *InviteChefRequest) (*ChefView, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var (
		user       models.User
		membership models.OrganizationMembership
		profile    models.ChefProfile
		token      *models.InvitationToken
	)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("email = ?", email).First(&user).Error
		switch {
		case err == nil:
			var count int64
			tx.Model(&models.OrganizationMembership{}).
				Where("user_id = ? AND organization_id = ?", user.ID, tenant.Organization.ID).
				Count(&count)
			if count > 0 {
				return response.NewBadRequest("this user is already a member of your organization")
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			user = models.User{
				Email:     email,
				FirstName: req.FirstName,
				LastName:  req.LastName,
				Phone:     req.Phone,
			}
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
		default:
			return err
		}

		membership = models.OrganizationMembership{
			UserID:         user.ID,
			OrganizationID: tenant.Organization.ID,
			Role:           models.RoleChef,
			IsActive:       true,
		}
		if err := tx.Create(&membership).Error; err != nil {
			return err
		}

		profile = models.ChefProfile{
			MembershipID:   membership.ID,
			Address:        req.Address,
			DefaultPayRate: req.DefaultPayRate,
			CalendarColor:  models.NextCalendarColor(tx, tenant.Organization.ID),
			Notes:          req.Notes,
		}
		if err := tx.Create(&profile).Error; err != nil {
			return err
		}

		if !user.HasUsablePassword() {
			token, err = s.tokens.IssueInvitation(tx, user.ID)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if token != nil {
		s.dispatcher.ChefInvited(&user, tenant.Organization, token.Token)
	}

	membership.User = &user
	return chefView(&membership, &profile, true), nil
}

type UpdateChefRequest struct {
	FirstName      *string  `json:"first_name"`
	LastName       *string  `json:"last_name"`
	Phone          *string  `json:"phone"`
	Address        *string  `json:"address"`
	DefaultPayRate *float64 `json:"default_pay_rate"`
	Notes          *string  `json:"notes"`
}

// Update edits a chef's user and profile fields. Calendar color is not
// editable: it stays stable for the life of the profile.
func (s *ChefService) Update(tenant *models.Tenant, membershipID uint, req *UpdateChefRequest) (*ChefView, error) {
	membership, profile, err := s.findMembership(tenant, membershipID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, response.NewNotFound("chef profile not found")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if req.FirstName != nil {
			membership.User.FirstName = *req.FirstName
		}
		if req.LastName != nil {
			membership.User.LastName = *req.LastName
		}
		if req.Phone != nil {
			membership.User.Phone = *req.Phone
		}
		if err := tx.Save(membership.User).Error; err != nil {
			return err
		}

		if req.Address != nil {
			profile.Address = *req.Address
		}
		if req.DefaultPayRate != nil {
			profile.DefaultPayRate = req.DefaultPayRate
		}
		if req.Notes != nil {
			profile.Notes = *req.Notes
		}
		return tx.Save(profile).Error
	})
	if err != nil {
		return nil, err
	}

	return chefView(membership, profile, true), nil
}

// SetActive activates or deactivates a chef membership. Deactivation
// blocks future assignments but leaves historical events untouched.
func (s *ChefService) SetActive(tenant *models.Tenant, membershipID uint, active bool) (*ChefView, error) {
	membership, profile, err := s.findMembership(tenant, membershipID)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(membership).Update("is_active", active).Error; err != nil {
		return nil, err
	}
	membership.IsActive = active

	return chefView(membership, profile, true), nil
}

// ResendInvite rotates the invitation token and re-sends the email.
// Refused once the chef has accepted and set a password.
func (s *ChefService) ResendInvite(tenant *models.Tenant, membershipID uint) error {
	membership, _, err := s.findMembership(tenant, membershipID)
	if err != nil {
		return err
	}

	if membership.User.HasUsablePassword() {
		return response.NewBadRequest("this chef has already accepted their invitation")
	}

	var token *models.InvitationToken
	err = s.db.Transaction(func(tx *gorm.DB) error {
		token, err = s.tokens.IssueInvitation(tx, membership.UserID)
		return err
	})
	if err != nil {
		return err
	}

	s.dispatcher.ChefInvited(membership.User, tenant.Organization, token.Token)
	return nil
}

// Me returns the calling chef's own view, without admin-only notes.
func (s *ChefService) Me(tenant *models.Tenant) (*ChefView, error) {
	if !tenant.IsChef() || tenant.ChefProfile == nil {
		return nil, response.NewNotFound("chef profile not found")
	}
	membership := tenant.Membership
	membership.User = tenant.User
	return chefView(membership, tenant.ChefProfile, false), nil
}

type UpdateChefMeRequest struct {
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

// UpdateMe lets a chef edit their own phone and address. Pay rate,
// color, and admin notes are out of reach.
func (s *ChefService) UpdateMe(tenant *models.Tenant, req *UpdateChefMeRequest) (*ChefView, error) {
	if !tenant.IsChef() || tenant.ChefProfile == nil {
		return nil, response.NewNotFound("chef profile not found")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if req.Phone != nil {
			tenant.User.Phone = *req.Phone
			if err := tx.Save(tenant.User).Error; err != nil {
				return err
			}
		}
		if req.Address != nil {
			tenant.ChefProfile.Address = *req.Address
			if err := tx.Save(tenant.ChefProfile).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	membership := tenant.Membership
	membership.User = tenant.User
	return chefView(membership, tenant.ChefProfile, false), nil
}
