package services

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/chefbawss/backend/internal/config"
	"github.com/chefbawss/backend/internal/models"
	"github.com/chefbawss/backend/internal/utils"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens a fresh named in-memory database per test so tests
// never see each other's rows.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Organization{},
		&models.OrganizationMembership{},
		&models.ChefProfile{},
		&models.Client{},
		&models.Event{},
		&models.InvitationToken{},
		&models.PasswordResetToken{},
		&models.RefreshToken{},
	))
	return db
}

// recordingQueue captures dispatched email tasks synchronously.
type recordingQueue struct {
	mu    sync.Mutex
	tasks []*EmailTask
}

func (q *recordingQueue) Enqueue(task *EmailTask) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks = append(q.tasks, task)
	return nil
}

func (q *recordingQueue) IsAsync() bool { return false }
func (q *recordingQueue) Close() error  { return nil }

func (q *recordingQueue) kinds() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]string, 0, len(q.tasks))
	for _, task := range q.tasks {
		out = append(out, task.Kind)
	}
	return out
}

func testJWTConfig() *config.JWTConfig {
	utils.SetJWTSecret("test-secret")
	return &config.JWTConfig{Secret: "test-secret", ExpireHour: 1}
}

func createOrg(t *testing.T, db *gorm.DB, name string) *models.Organization {
	t.Helper()
	org := &models.Organization{Name: name, Slug: models.UniqueSlug(db, name)}
	require.NoError(t, db.Create(org).Error)
	return org
}

func createUser(t *testing.T, db *gorm.DB, email, password string) *models.User {
	t.Helper()
	user := &models.User{Email: email, FirstName: "Test", LastName: "User"}
	if password != "" {
		hash, err := utils.HashPassword(password)
		require.NoError(t, err)
		user.Password = hash
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func addMembership(t *testing.T, db *gorm.DB, user *models.User, org *models.Organization, role string) *models.OrganizationMembership {
	t.Helper()
	m := &models.OrganizationMembership{
		UserID:         user.ID,
		OrganizationID: org.ID,
		Role:           role,
		IsActive:       true,
	}
	require.NoError(t, db.Create(m).Error)
	return m
}

func addChefProfile(t *testing.T, db *gorm.DB, m *models.OrganizationMembership, color string) *models.ChefProfile {
	t.Helper()
	p := &models.ChefProfile{MembershipID: m.ID, CalendarColor: color}
	require.NoError(t, db.Create(p).Error)
	return p
}

// createAdmin seeds a user with an admin membership and resolves their
// tenant context.
func createAdmin(t *testing.T, db *gorm.DB, org *models.Organization, email string) *models.Tenant {
	t.Helper()
	user := createUser(t, db, email, "admin-pass-123")
	addMembership(t, db, user, org, models.RoleAdmin)
	tenant, err := models.ResolveTenant(db, user.ID)
	require.NoError(t, err)
	require.True(t, tenant.IsAdmin())
	return tenant
}

// createChefTenant seeds a chef with a profile and resolves their tenant.
func createChefTenant(t *testing.T, db *gorm.DB, org *models.Organization, email, color string) *models.Tenant {
	t.Helper()
	user := createUser(t, db, email, "chef-pass-1234")
	m := addMembership(t, db, user, org, models.RoleChef)
	addChefProfile(t, db, m, color)
	tenant, err := models.ResolveTenant(db, user.ID)
	require.NoError(t, err)
	require.True(t, tenant.IsChef())
	require.NotNil(t, tenant.ChefProfile)
	return tenant
}

func createTestClient(t *testing.T, db *gorm.DB, org *models.Organization, name, address string) *models.Client {
	t.Helper()
	client := &models.Client{OrganizationID: org.ID, Name: name, Address: address}
	require.NoError(t, db.Create(client).Error)
	return client
}
