package handlers

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/chefbawss/backend/internal/middleware"
	"github.com/chefbawss/backend/internal/models"
	"github.com/chefbawss/backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// nopQueue drops dispatched email tasks.
type nopQueue struct{}

func (nopQueue) Enqueue(*services.EmailTask) error { return nil }
func (nopQueue) IsAsync() bool                     { return false }
func (nopQueue) Close() error                      { return nil }

type eventHandlerFixture struct {
	db      *gorm.DB
	handler *EventHandler
	admin   *models.Tenant
	chef    *models.Tenant
	event   *models.Event
}

func newEventHandlerFixture(t *testing.T) *eventHandlerFixture {
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
	))

	org := &models.Organization{Name: "Handler Test Co", Slug: models.UniqueSlug(db, "Handler Test Co")}
	require.NoError(t, db.Create(org).Error)

	adminUser := &models.User{Email: "admin@handler.test", FirstName: "Ada", LastName: "Admin"}
	require.NoError(t, db.Create(adminUser).Error)
	require.NoError(t, db.Create(&models.OrganizationMembership{
		UserID: adminUser.ID, OrganizationID: org.ID, Role: models.RoleAdmin, IsActive: true,
	}).Error)

	chefUser := &models.User{Email: "chef@handler.test", FirstName: "Carl", LastName: "Chef"}
	require.NoError(t, db.Create(chefUser).Error)
	chefMembership := &models.OrganizationMembership{
		UserID: chefUser.ID, OrganizationID: org.ID, Role: models.RoleChef, IsActive: true,
	}
	require.NoError(t, db.Create(chefMembership).Error)
	rate := 250.0
	profile := &models.ChefProfile{
		MembershipID:   chefMembership.ID,
		CalendarColor:  models.CalendarColors[0],
		DefaultPayRate: &rate,
		Notes:          "negotiated weekend premium",
	}
	require.NoError(t, db.Create(profile).Error)

	client := &models.Client{OrganizationID: org.ID, Name: "The Smiths", Address: "12 Oak Lane"}
	require.NoError(t, db.Create(client).Error)

	event := &models.Event{
		OrganizationID: org.ID,
		ClientID:       client.ID,
		ChefProfileID:  &profile.ID,
		Date:           "2026-10-01",
		StartTime:      "18:00",
		EndTime:        "22:00",
		GuestCount:     8,
		ClientPay:      500,
		InternalNotes:  "vip booking",
		Status:         models.StatusUpcoming,
	}
	require.NoError(t, db.Create(event).Error)

	admin, err := models.ResolveTenant(db, adminUser.ID)
	require.NoError(t, err)
	chef, err := models.ResolveTenant(db, chefUser.ID)
	require.NoError(t, err)

	dispatcher := services.NewDispatcher(nopQueue{})
	return &eventHandlerFixture{
		db:      db,
		handler: NewEventHandler(services.NewEventService(db, dispatcher)),
		admin:   admin,
		chef:    chef,
		event:   event,
	}
}

// serve runs one event endpoint with the given tenant already resolved.
func (f *eventHandlerFixture) serve(t *testing.T, tenant *models.Tenant, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := gin.New()
	inject := func(c *gin.Context) { c.Set(middleware.ContextTenant, tenant) }
	r.GET("/events/:id", inject, f.handler.Get)
	r.PUT("/events/:id", inject, f.handler.Update)

	w := httptest.NewRecorder()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func (f *eventHandlerFixture) put(t *testing.T, tenant *models.Tenant, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	return f.serve(t, tenant, "PUT", path, body)
}

func TestEventUpdate_ChefRejectedForNonNotesFields(t *testing.T) {
	f := newEventHandlerFixture(t)

	path := fmt.Sprintf("/events/%d", f.event.ID)
	w := f.put(t, f.chef, path, `{"chef_notes":"bring knives","client_pay":9999}`)
	require.Equal(t, http.StatusForbidden, w.Code)

	// the whole request is refused, including the notes
	var reloaded models.Event
	require.NoError(t, f.db.First(&reloaded, f.event.ID).Error)
	require.Empty(t, reloaded.ChefNotes)
	require.Equal(t, 500.0, reloaded.ClientPay)
}

func TestEventUpdate_ChefNotesOnlyAccepted(t *testing.T) {
	f := newEventHandlerFixture(t)

	path := fmt.Sprintf("/events/%d", f.event.ID)
	w := f.put(t, f.chef, path, `{"chef_notes":"remember the aprons"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var reloaded models.Event
	require.NoError(t, f.db.First(&reloaded, f.event.ID).Error)
	require.Equal(t, "remember the aprons", reloaded.ChefNotes)

	// financial fields stay hidden from the chef's view of the result
	require.NotContains(t, w.Body.String(), "vip booking")
	require.Contains(t, w.Body.String(), `"client_pay":0`)
}

func TestEventGet_ChefViewHidesProfileAndFinancials(t *testing.T) {
	f := newEventHandlerFixture(t)

	path := fmt.Sprintf("/events/%d", f.event.ID)
	admin := f.serve(t, f.admin, "GET", path, "")
	require.Equal(t, http.StatusOK, admin.Code)
	require.Contains(t, admin.Body.String(), "default_pay_rate")
	require.Contains(t, admin.Body.String(), "vip booking")

	chef := f.serve(t, f.chef, "GET", path, "")
	require.Equal(t, http.StatusOK, chef.Code)
	body := chef.Body.String()
	require.NotContains(t, body, "default_pay_rate")
	require.NotContains(t, body, "negotiated weekend premium")
	require.NotContains(t, body, "vip booking")
	require.Contains(t, body, `"client_pay":0`)
}

func TestEventUpdate_ChefEmptyBodyKeepsNotes(t *testing.T) {
	f := newEventHandlerFixture(t)

	path := fmt.Sprintf("/events/%d", f.event.ID)
	w := f.put(t, f.chef, path, `{"chef_notes":"bring the grill"}`)
	require.Equal(t, http.StatusOK, w.Code)

	// an empty patch must not clear notes that were never submitted
	w = f.put(t, f.chef, path, `{}`)
	require.Equal(t, http.StatusOK, w.Code)

	var reloaded models.Event
	require.NoError(t, f.db.First(&reloaded, f.event.ID).Error)
	require.Equal(t, "bring the grill", reloaded.ChefNotes)
}

func TestEventUpdate_AdminNullChefIDUnassigns(t *testing.T) {
	f := newEventHandlerFixture(t)

	path := fmt.Sprintf("/events/%d", f.event.ID)
	w := f.put(t, f.admin, path, `{"chef_id":null}`)
	require.Equal(t, http.StatusOK, w.Code)

	var reloaded models.Event
	require.NoError(t, f.db.First(&reloaded, f.event.ID).Error)
	require.Nil(t, reloaded.ChefProfileID)
}

func TestEventUpdate_AdminOmittedChefIDKeepsAssignment(t *testing.T) {
	f := newEventHandlerFixture(t)

	path := fmt.Sprintf("/events/%d", f.event.ID)
	w := f.put(t, f.admin, path, `{"guest_count":12}`)
	require.Equal(t, http.StatusOK, w.Code)

	var reloaded models.Event
	require.NoError(t, f.db.First(&reloaded, f.event.ID).Error)
	require.NotNil(t, reloaded.ChefProfileID)
	require.Equal(t, 12, reloaded.GuestCount)
}
