package services

import (
	"testing"

	"github.com/chefbawss/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientDelete_RefusedWhileEventsExist(t *testing.T) {
	db := newTestDB(t)
	svc := NewClientService(db)
	org := createOrg(t, db, "Fine Dining Co")
	admin := createAdmin(t, db, org, "owner@example.com")

	client, err := svc.Create(admin, &ClientRequest{Name: "The Smiths"})
	require.NoError(t, err)

	event := &models.Event{
		OrganizationID: org.ID,
		ClientID:       client.ID,
		Date:           "2026-10-01",
		StartTime:      "18:00",
		GuestCount:     8,
		ClientPay:      500,
		Status:         models.StatusCompleted,
	}
	require.NoError(t, db.Create(event).Error)

	// Blocked even though the event is already completed.
	assert.Error(t, svc.Delete(admin, client.ID))

	// A soft-deleted event no longer protects the client.
	require.NoError(t, db.Model(event).Update("is_deleted", true).Error)
	require.NoError(t, svc.Delete(admin, client.ID))

	_, err = svc.Get(admin, client.ID)
	assert.Error(t, err)
}

func TestClientList_ScopingAndSearch(t *testing.T) {
	db := newTestDB(t)
	svc := NewClientService(db)
	orgA := createOrg(t, db, "Org A")
	orgB := createOrg(t, db, "Org B")
	adminA := createAdmin(t, db, orgA, "a@example.com")
	adminB := createAdmin(t, db, orgB, "b@example.com")

	createTestClient(t, db, orgA, "Alice Catering", "1 Main St")
	createTestClient(t, db, orgA, "Bob Events", "2 Main St")
	createTestClient(t, db, orgB, "Alice Other", "3 Main St")

	all, err := svc.List(adminA, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	matched, err := svc.List(adminA, "alice")
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "Alice Catering", matched[0].Name)

	other, err := svc.List(adminB, "")
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

func TestClientGet_SoftDeletedInvisible(t *testing.T) {
	db := newTestDB(t)
	svc := NewClientService(db)
	org := createOrg(t, db, "Fine Dining Co")
	admin := createAdmin(t, db, org, "owner@example.com")

	client := createTestClient(t, db, org, "The Smiths", "")
	require.NoError(t, svc.Delete(admin, client.ID))

	_, err := svc.Get(admin, client.ID)
	assert.Error(t, err)
	list, err := svc.List(admin, "")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestClientAnnotations_CountAndRevenue(t *testing.T) {
	db := newTestDB(t)
	svc := NewClientService(db)
	org := createOrg(t, db, "Fine Dining Co")
	admin := createAdmin(t, db, org, "owner@example.com")
	chef := createChefTenant(t, db, org, "chef@example.com", models.CalendarColors[0])

	client := createTestClient(t, db, org, "The Smiths", "")
	for _, status := range []string{models.StatusCompleted, models.StatusUpcoming} {
		require.NoError(t, db.Create(&models.Event{
			OrganizationID: org.ID,
			ClientID:       client.ID,
			Date:           "2026-10-01",
			StartTime:      "18:00",
			GuestCount:     8,
			ClientPay:      500,
			Status:         status,
		}).Error)
	}

	view, err := svc.Get(admin, client.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), view.EventCount)
	require.NotNil(t, view.TotalRevenue)
	// only the completed event counts toward revenue
	assert.Equal(t, 500.0, *view.TotalRevenue)

	// chefs see the count but never the revenue
	chefView, err := svc.Get(chef, client.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), chefView.EventCount)
	assert.Nil(t, chefView.TotalRevenue)

	list, err := svc.List(admin, "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(2), list[0].EventCount)
}

func TestClientUpdate_PartialPatch(t *testing.T) {
	db := newTestDB(t)
	svc := NewClientService(db)
	org := createOrg(t, db, "Fine Dining Co")
	admin := createAdmin(t, db, org, "owner@example.com")

	client := createTestClient(t, db, org, "The Smiths", "1 Main St")

	allergies := "peanuts"
	updated, err := svc.Update(admin, client.ID, &UpdateClientRequest{Allergies: &allergies})
	require.NoError(t, err)
	assert.Equal(t, "peanuts", updated.Allergies)
	assert.Equal(t, "The Smiths", updated.Name)
	assert.Equal(t, "1 Main St", updated.Address)
}
