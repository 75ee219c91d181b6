package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/chefbawss/backend/internal/config"
	"github.com/chefbawss/backend/internal/models"
	"github.com/chefbawss/backend/internal/utils"
	"github.com/chefbawss/backend/pkg/response"
	"gorm.io/gorm"
)

const refreshTokenTTLHours = 720

type AuthService struct {
	db         *gorm.DB
	jwtConfig  *config.JWTConfig
	tokens     *TokenService
	dispatcher *Dispatcher
}

func NewAuthService(db *gorm.DB, jwtCfg *config.JWTConfig, dispatcher *Dispatcher) *AuthService {
	return &AuthService{
		db:         db,
		jwtConfig:  jwtCfg,
		tokens:     NewTokenService(db),
		dispatcher: dispatcher,
	}
}

type RegisterRequest struct {
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=8"`
	FirstName    string `json:"first_name" binding:"required"`
	LastName     string `json:"last_name" binding:"required"`
	BusinessName string `json:"business_name" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResult struct {
	AccessToken     string
	AccessExpireAt  time.Time
	RefreshToken    string
	RefreshExpireAt time.Time
	User            *models.User
}

type RefreshResult struct {
	AccessToken     string
	AccessExpireAt  time.Time
	RefreshToken    string
	RefreshExpireAt time.Time
}

// Register creates the user, their organization, and the admin membership
// in one transaction, then signs them in.
func (s *AuthService) Register(req *RegisterRequest, clientIP, userAgent string) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	var user models.User
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		tx.Model(&models.User{}).Where("email = ?", email).Count(&count)
		if count > 0 {
			return response.NewBadRequest("a user with this email already exists")
		}

		user = models.User{
			Email:     email,
			Password:  hash,
			FirstName: req.FirstName,
			LastName:  req.LastName,
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		org := models.Organization{
			Name: req.BusinessName,
			Slug: models.UniqueSlug(tx, req.BusinessName),
		}
		if err := tx.Create(&org).Error; err != nil {
			return err
		}

		membership := models.OrganizationMembership{
			UserID:         user.ID,
			OrganizationID: org.ID,
			Role:           models.RoleAdmin,
			IsActive:       true,
		}
		return tx.Create(&membership).Error
	})
	if err != nil {
		return nil, err
	}

	return s.issueSession(&user, clientIP, userAgent)
}

// Login authenticates by email and password. Users without a usable
// password (invited, not yet accepted) can never log in.
func (s *AuthService) Login(req *LoginRequest, clientIP, userAgent string) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewUnauthorized("invalid email or password")
		}
		return nil, err
	}

	if !utils.CheckPassword(req.Password, user.Password) {
		return nil, response.NewUnauthorized("invalid email or password")
	}

	return s.issueSession(&user, clientIP, userAgent)
}

func (s *AuthService) issueSession(user *models.User, clientIP, userAgent string) (*LoginResult, error) {
	accessHours := s.jwtConfig.ExpireHour

	token, err := utils.GenerateToken(user.ID, user.Email, accessHours)
	if err != nil {
		return nil, err
	}

	refreshToken, refreshHash, err := generateRefreshToken()
	if err != nil {
		return nil, err
	}

	refreshExpireAt := time.Now().Add(refreshTokenTTLHours * time.Hour)
	refreshRecord := models.RefreshToken{
		UserID:      user.ID,
		TokenHash:   refreshHash,
		ExpiresAt:   refreshExpireAt,
		CreatedByIP: clientIP,
		UserAgent:   userAgent,
	}
	if err := s.db.Create(&refreshRecord).Error; err != nil {
		return nil, err
	}

	return &LoginResult{
		AccessToken:     token,
		AccessExpireAt:  time.Now().Add(time.Duration(accessHours) * time.Hour),
		RefreshToken:    refreshToken,
		RefreshExpireAt: refreshExpireAt,
		User:            user,
	}, nil
}

// Refresh rotates a refresh token: the old row is revoked and linked to
// its replacement in the same transaction.
func (s *AuthService) Refresh(refreshToken string, clientIP, userAgent string) (*RefreshResult, error) {
	if refreshToken == "" {
		return nil, response.NewUnauthorized("refresh token required")
	}

	hash := hashRefreshToken(refreshToken)

	var stored models.RefreshToken
	if err := s.db.Where("token_hash = ?", hash).First(&stored).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewUnauthorized("invalid refresh token")
		}
		return nil, err
	}

	if stored.RevokedAt != nil {
		return nil, response.NewUnauthorized("refresh token revoked")
	}
	if time.Now().After(stored.ExpiresAt) {
		return nil, response.NewUnauthorized("refresh token expired")
	}

	var user models.User
	if err := s.db.First(&user, stored.UserID).Error; err != nil {
		return nil, response.NewUnauthorized("user not found")
	}

	accessHours := s.jwtConfig.ExpireHour

	newAccessToken, err := utils.GenerateToken(user.ID, user.Email, accessHours)
	if err != nil {
		return nil, err
	}

	newRefreshToken, newRefreshHash, err := generateRefreshToken()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	newRefresh := models.RefreshToken{
		UserID:      user.ID,
		TokenHash:   newRefreshHash,
		ExpiresAt:   now.Add(refreshTokenTTLHours * time.Hour),
		CreatedByIP: clientIP,
		UserAgent:   userAgent,
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&newRefresh).Error; err != nil {
			return err
		}
		return tx.Model(&stored).Updates(map[string]interface{}{
			"revoked_at":           now,
			"replaced_by_token_id": newRefresh.ID,
		}).Error
	}); err != nil {
		return nil, err
	}

	return &RefreshResult{
		AccessToken:     newAccessToken,
		AccessExpireAt:  time.Now().Add(time.Duration(accessHours) * time.Hour),
		RefreshToken:    newRefreshToken,
		RefreshExpireAt: newRefresh.ExpiresAt,
	}, nil
}

// RevokeRefreshToken revokes a refresh token on logout.
func (s *AuthService) RevokeRefreshToken(refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	hash := hashRefreshToken(refreshToken)
	now := time.Now()
	return s.db.Model(&models.RefreshToken{}).
		Where("token_hash = ? AND revoked_at IS NULL", hash).
		Update("revoked_at", now).Error
}

func generateRefreshToken() (token string, tokenHash string, err error) {
	randomBytes := make([]byte, 32)
	if _, err = rand.Read(randomBytes); err != nil {
		return "", "", err
	}
	token = hex.EncodeToString(randomBytes)
	tokenHash = hashRefreshToken(token)
	return token, tokenHash, nil
}

func hashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// GetUserByID retrieves a user by ID
func (s *AuthService) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

type UpdateProfileRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
}

// UpdateProfile updates the caller's own name and phone.
func (s *AuthService) UpdateProfile(userID uint, req *UpdateProfileRequest) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}

	if err := s.db.Save(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

func (s *AuthService) ChangePassword(userID uint, req *ChangePasswordRequest) error {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return response.NewNotFound("user not found")
	}

	if !utils.CheckPassword(req.OldPassword, user.Password) {
		return response.NewBadRequest("incorrect old password")
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}

	return s.db.Model(&user).Update("password", hash).Error
}

// RequestPasswordReset issues a reset token and emails the link when the
// address belongs to an account. Callers always report the same success
// regardless: whether the email exists must not be observable.
func (s *AuthService) RequestPasswordReset(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	token, err := s.tokens.IssuePasswordReset(user.ID)
	if err != nil {
		return err
	}

	s.dispatcher.PasswordReset(&user, token.Token)
	return nil
}

// ConfirmPasswordReset consumes the reset token and sets the password.
func (s *AuthService) ConfirmPasswordReset(tokenValue, newPassword string) error {
	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}
	_, err = s.tokens.ConsumePasswordReset(tokenValue, hash)
	return err
}

// InviteInfo describes a pending invitation for the accept screen.
type InviteInfo struct {
	Email            string `json:"email"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	OrganizationName string `json:"organization_name"`
}

// GetInviteInfo resolves a valid invitation token to the invited identity.
func (s *AuthService) GetInviteInfo(tokenValue string) (*InviteInfo, error) {
	token, err := s.tokens.FindValidInvitation(tokenValue)
	if err != nil {
		return nil, err
	}

	info := &InviteInfo{
		Email:     token.User.Email,
		FirstName: token.User.FirstName,
		LastName:  token.User.LastName,
	}

	var membership models.OrganizationMembership
	if err := s.db.Where("user_id = ? AND role = ?", token.UserID, models.RoleChef).
		Order("id DESC").
		Preload("Organization").
		First(&membership).Error; err == nil && membership.Organization != nil {
		info.OrganizationName = membership.Organization.Name
	}

	return info, nil
}

// AcceptInvite consumes the invitation token, sets the first password,
// and signs the chef in.
func (s *AuthService) AcceptInvite(tokenValue, password, clientIP, userAgent string) (*LoginResult, error) {
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user, err := s.tokens.ConsumeInvitation(tokenValue, hash)
	if err != nil {
		return nil, err
	}

	return s.issueSession(user, clientIP, userAgent)
}
