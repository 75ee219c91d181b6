package services

import (
	"errors"
	"time"

	"github.com/chefbawss/backend/internal/models"
	"github.com/chefbawss/backend/internal/utils"
	"github.com/chefbawss/backend/pkg/response"
	"gorm.io/gorm"
)

// Lifecycle token TTLs. Invitations are low-risk and asynchronous;
// resets are higher-risk and should close quickly.
const (
	InvitationTTL    = 7 * 24 * time.Hour
	PasswordResetTTL = time.Hour
)

// ErrTokenInvalid is returned for unknown, expired, or already used
// lifecycle tokens. One error for all three cases: the caller learns
// nothing about which it was.
var ErrTokenInvalid = response.NewFieldError("token", "invalid or expired token")

// TokenService owns the invitation and password-reset token lifecycle:
// issuing rotates (delete all, insert one, same transaction), consuming
// re-validates and stamps used_at atomically with the credential change.
type TokenService struct {
	db *gorm.DB
}

func NewTokenService(db *gorm.DB) *TokenService {
	return &TokenService{db: db}
}

// IssueInvitation rotates the user's invitation token inside tx. Any
// previously issued token is deleted, never kept: at most one live token
// exists per user at any time.
func (s *TokenService) IssueInvitation(tx *gorm.DB, userID uint) (*models.InvitationToken, error) {
	value, err := utils.GenerateSecureToken()
	if err != nil {
		return nil, err
	}

	if err := tx.Where("user_id = ?", userID).Delete(&models.InvitationToken{}).Error; err != nil {
		return nil, err
	}

	token := &models.InvitationToken{
		UserID:    userID,
		Token:     value,
		ExpiresAt: time.Now().Add(InvitationTTL),
	}
	if err := tx.Create(token).Error; err != nil {
		return nil, err
	}
	return token, nil
}

// IssuePasswordReset rotates the user's reset token in its own
// transaction.
func (s *TokenService) IssuePasswordReset(userID uint) (*models.PasswordResetToken, error) {
	value, err := utils.GenerateSecureToken()
	if err != nil {
		return nil, err
	}

	token := &models.PasswordResetToken{
		UserID:    userID,
		Token:     value,
		ExpiresAt: time.Now().Add(PasswordResetTTL),
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.PasswordResetToken{}).Error; err != nil {
			return err
		}
		return tx.Create(token).Error
	})
	if err != nil {
		return nil, err
	}
	return token, nil
}

// FindValidInvitation returns the invitation with its user, or
// ErrTokenInvalid.
func (s *TokenService) FindValidInvitation(value string) (*models.InvitationToken, error) {
	var token models.InvitationToken
	err := s.db.Where("token = ?", value).Preload("User").First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenInvalid
		}
		return nil, err
	}
	if !token.Valid() {
		return nil, ErrTokenInvalid
	}
	return &token, nil
}

// ConsumeInvitation sets the user's first password and marks the token
// used in one transaction. Validity is re-checked inside the transaction,
// not trusted from an earlier lookup. Users who already hold a usable
// password cannot consume an invitation: accepting twice, or accepting a
// stale token after activation, must never silently reset credentials.
func (s *TokenService) ConsumeInvitation(value, passwordHash string) (*models.User, error) {
	var user models.User
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var token models.InvitationToken
		if err := tx.Where("token = ?", value).First(&token).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTokenInvalid
			}
			return err
		}
		if !token.Valid() {
			return ErrTokenInvalid
		}

		if err := tx.First(&user, token.UserID).Error; err != nil {
			return err
		}
		if user.HasUsablePassword() {
			return response.NewBadRequest("this invitation has already been accepted")
		}

		if err := tx.Model(&user).Update("password", passwordHash).Error; err != nil {
			return err
		}
		user.Password = passwordHash

		now := time.Now()
		return tx.Model(&token).Update("used_at", now).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ConsumePasswordReset sets a new password and marks the token used in
// one transaction, with the same re-validation as invitations.
func (s *TokenService) ConsumePasswordReset(value, passwordHash string) (*models.User, error) {
	var user models.User
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var token models.PasswordResetToken
		if err := tx.Where("token = ?", value).First(&token).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTokenInvalid
			}
			return err
		}
		if !token.Valid() {
			return ErrTokenInvalid
		}

		if err := tx.First(&user, token.UserID).Error; err != nil {
			return err
		}

		if err := tx.Model(&user).Update("password", passwordHash).Error; err != nil {
			return err
		}
		user.Password = passwordHash

		now := time.Now()
		return tx.Model(&token).Update("used_at", now).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// PurgeDead deletes tokens that can never be consumed again: expired or
// already used. Returns the number of rows removed.
func (s *TokenService) PurgeDead() (int64, error) {
	now := time.Now()
	var total int64

	res := s.db.Where("expires_at < ? OR used_at IS NOT NULL", now).Delete(&models.InvitationToken{})
	if res.Error != nil {
		return total, res.Error
	}
	total += res.RowsAffected

	res = s.db.Where("expires_at < ? OR used_at IS NOT NULL", now).Delete(&models.PasswordResetToken{})
	if res.Error != nil {
		return total, res.Error
	}
	total += res.RowsAffected

	return total, nil
}
