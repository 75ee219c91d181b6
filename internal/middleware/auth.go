package middleware

import (
	"net/http"
	"strings"

	"github.com/chefbawss/backend/internal/models"
	"github.com/chefbawss/backend/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	ContextUserID = "user_id"
	ContextEmail  = "email"
	ContextTenant = "tenant"
)

// AuthRequired checks for a valid JWT and stores the authenticated user
// id in the context. It knows nothing about organizations; tenant
// resolution is a separate, later step.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"code": 401, "message": "authorization header required"})
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"code": 401, "message": "invalid authorization header format"})
			c.Abort()
			return
		}

		claims, err := utils.ParseToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"code": 401, "message": "invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextEmail, claims.Email)

		c.Next()
	}
}

// TenantResolver resolves the tenant context for the authenticated user
// and stores it, read-only, in the request context. Must be registered
// after AuthRequired and before any role gate: the gates dereference the
// resolved tenant. A user without an active membership still passes;
// the gates and the scoped query layer handle the absence.
func TenantResolver(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := GetUserID(c)
		if userID == 0 {
			c.JSON(http.StatusUnauthorized, gin.H{"code": 401, "message": "authentication required"})
			c.Abort()
			return
		}

		tenant, err := models.ResolveTenant(db, userID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"code": 401, "message": "unknown user"})
			c.Abort()
			return
		}

		c.Set(ContextTenant, tenant)
		c.Next()
	}
}

// MemberRequired rejects users with no active membership.
func MemberRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !GetTenant(c).HasMembership() {
			c.JSON(http.StatusForbidden, gin.H{"code": 403, "message": "no active organization membership"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// AdminRequired rejects everyone but admins of the resolved tenant.
// Missing tenant context fails closed.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !GetTenant(c).IsAdmin() {
			c.JSON(http.StatusForbidden, gin.H{"code": 403, "message": "admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetUserID gets the current user ID from context
func GetUserID(c *gin.Context) uint {
	if id, exists := c.Get(ContextUserID); exists {
		return id.(uint)
	}
	return 0
}

// GetTenant gets the resolved tenant from context. May return nil when
// TenantResolver did not run.
func GetTenant(c *gin.Context) *models.Tenant {
	if t, exists := c.Get(ContextTenant); exists {
		return t.(*models.Tenant)
	}
	return nil
}
