package services

import (
	"testing"

	"github.com/chefbawss/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type eventFixture struct {
	db    *gorm.DB
	queue *recordingQueue
	svc   *EventService

	org    *models.Organization
	admin  *models.Tenant
	chef   *models.Tenant
	client *models.Client
}

func newEventFixture(t *testing.T) *eventFixture {
	t.Helper()
	db := newTestDB(t)
	queue := &recordingQueue{}

	org := createOrg(t, db, "Fine Dining Co")
	f := &eventFixture{
		db:     db,
		queue:  queue,
		svc:    NewEventService(db, NewDispatcher(queue)),
		org:    org,
		admin:  createAdmin(t, db, org, "owner@example.com"),
		chef:   createChefTenant(t, db, org, "chef@example.com", models.CalendarColors[0]),
		client: createTestClient(t, db, org, "The Smiths", "12 Orchard Lane"),
	}
	return f
}

func (f *eventFixture) chefMembershipID() uint {
	return f.chef.Membership.ID
}

func baseCreate(f *eventFixture) *CreateEventRequest {
	return &CreateEventRequest{
		ClientID:   f.client.ID,
		Date:       "2026-10-01",
		StartTime:  "18:00",
		EndTime:    "22:00",
		GuestCount: 8,
		ClientPay:  500,
	}
}

func TestCreateEvent_LocationDefaultsFromClientAddress(t *testing.T) {
	f := newEventFixture(t)

	event, err := f.svc.Create(f.admin, baseCreate(f))
	require.NoError(t, err)
	assert.Equal(t, "12 Orchard Lane", event.Location)

	// A later client address change does not touch the event.
	require.NoError(t, f.db.Model(f.client).Update("address", "99 New Rd").Error)
	reloaded, err := f.svc.Get(f.admin, event.ID)
	require.NoError(t, err)
	assert.Equal(t, "12 Orchard Lane", reloaded.Location)
}

func TestCreateEvent_ExplicitLocationKept(t *testing.T) {
	f := newEventFixture(t)

	req := baseCreate(f)
	req.Location = "Private Estate"
	event, err := f.svc.Create(f.admin, req)
	require.NoError(t, err)
	assert.Equal(t, "Private Estate", event.Location)
}

func TestCreateEvent_CrossTenantClientRejected(t *testing.T) {
	f := newEventFixture(t)
	otherOrg := createOrg(t, f.db, "Other Org")
	otherClient := createTestClient(t, f.db, otherOrg, "Not Yours", "")

	req := baseCreate(f)
	req.ClientID = otherClient.ID
	_, err := f.svc.Create(f.admin, req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client")
}

func TestCreateEvent_InactiveChefRejected(t *testing.T) {
	f := newEventFixture(t)
	require.NoError(t, f.db.Model(f.chef.Membership).Update("is_active", false).Error)

	req := baseCreate(f)
	chefID := f.chefMembershipID()
	req.ChefID = &chefID
	_, err := f.svc.Create(f.admin, req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chef")
}

func TestCreateEvent_MalformedDateRejected(t *testing.T) {
	f := newEventFixture(t)

	req := baseCreate(f)
	req.Date = "10/01/2026"
	_, err := f.svc.Create(f.admin, req)
	assert.Error(t, err)

	req = baseCreate(f)
	req.StartTime = "6pm"
	_, err = f.svc.Create(f.admin, req)
	assert.Error(t, err)
}

func TestCreateEvent_AssignmentNotifiesChefAndDefaultsPay(t *testing.T) {
	f := newEventFixture(t)
	rate := 180.0
	require.NoError(t, f.db.Model(f.chef.ChefProfile).Update("default_pay_rate", rate).Error)

	req := baseCreate(f)
	chefID := f.chefMembershipID()
	req.ChefID = &chefID
	event, err := f.svc.Create(f.admin, req)
	require.NoError(t, err)

	require.NotNil(t, event.ChefPay)
	assert.Equal(t, rate, *event.ChefPay)

	require.Len(t, f.queue.tasks, 1)
	task := f.queue.tasks[0]
	assert.Equal(t, EmailKindEventAssignment, task.Kind)
	assert.Equal(t, "chef@example.com", task.To)
	assert.Equal(t, "The Smiths Event", task.EventName)
}

func TestChefSeesOnlyOwnAssignments(t *testing.T) {
	f := newEventFixture(t)

	unassigned, err := f.svc.Create(f.admin, baseCreate(f))
	require.NoError(t, err)

	req := baseCreate(f)
	chefID := f.chefMembershipID()
	req.ChefID = &chefID
	mine, err := f.svc.Create(f.admin, req)
	require.NoError(t, err)

	events, err := f.svc.List(f.chef, nil)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, mine.ID, events[0].ID)

	_, err = f.svc.Get(f.chef, unassigned.ID)
	assert.Error(t, err)
}

func TestChefWithoutProfileSeesNothing(t *testing.T) {
	f := newEventFixture(t)
	_, err := f.svc.Create(f.admin, baseCreate(f))
	require.NoError(t, err)

	bare := createUser(t, f.db, "bare@example.com", "chef-pass-1234")
	addMembership(t, f.db, bare, f.org, models.RoleChef)
	tenant, err := models.ResolveTenant(f.db, bare.ID)
	require.NoError(t, err)

	events, err := f.svc.List(tenant, nil)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestNoMembership_DeniedByDefault(t *testing.T) {
	f := newEventFixture(t)
	_, err := f.svc.Create(f.admin, baseCreate(f))
	require.NoError(t, err)

	outsider := createUser(t, f.db, "outsider@example.com", "some-pass-1234")
	tenant, err := models.ResolveTenant(f.db, outsider.ID)
	require.NoError(t, err)
	require.False(t, tenant.HasMembership())

	events, err := f.svc.List(tenant, nil)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestUpdateEvent_ChefChangeSendsAssignment(t *testing.T) {
	f := newEventFixture(t)
	event, err := f.svc.Create(f.admin, baseCreate(f))
	require.NoError(t, err)
	require.Empty(t, f.queue.tasks)

	chefID := f.chefMembershipID()
	updated, err := f.svc.Update(f.admin, event.ID, &UpdateEventRequest{ChefID: &chefID})
	require.NoError(t, err)
	require.NotNil(t, updated.ChefProfileID)

	require.Len(t, f.queue.tasks, 1)
	assert.Equal(t, EmailKindEventAssignment, f.queue.tasks[0].Kind)
}

func TestUpdateEvent_SameChefGetsUpdateNotice(t *testing.T) {
	f := newEventFixture(t)
	req := baseCreate(f)
	chefID := f.chefMembershipID()
	req.ChefID = &chefID
	event, err := f.svc.Create(f.admin, req)
	require.NoError(t, err)
	require.Len(t, f.queue.tasks, 1) // the assignment

	count := 12
	_, err = f.svc.Update(f.admin, event.ID, &UpdateEventRequest{GuestCount: &count})
	require.NoError(t, err)

	require.Len(t, f.queue.tasks, 2)
	assert.Equal(t, EmailKindEventUpdate, f.queue.tasks[1].Kind)
}

func TestUpdateEvent_ClearChefUnassigns(t *testing.T) {
	f := newEventFixture(t)
	req := baseCreate(f)
	chefID := f.chefMembershipID()
	req.ChefID = &chefID
	event, err := f.svc.Create(f.admin, req)
	require.NoError(t, err)

	updated, err := f.svc.Update(f.admin, event.ID, &UpdateEventRequest{ClearChef: true})
	require.NoError(t, err)
	assert.Nil(t, updated.ChefProfileID)

	// the stored row must be unassigned too, not just the returned copy
	var row models.Event
	require.NoError(t, f.db.First(&row, event.ID).Error)
	assert.Nil(t, row.ChefProfileID)
}

func TestUpdateEvent_CompletedEventStillNotifiesChef(t *testing.T) {
	f := newEventFixture(t)
	req := baseCreate(f)
	chefID := f.chefMembershipID()
	req.ChefID = &chefID
	event, err := f.svc.Create(f.admin, req)
	require.NoError(t, err)
	_, err = f.svc.Complete(f.admin, event.ID)
	require.NoError(t, err)
	require.Len(t, f.queue.tasks, 1) // the assignment

	notes := "final headcount confirmed"
	_, err = f.svc.Update(f.admin, event.ID, &UpdateEventRequest{MenuNotes: &notes})
	require.NoError(t, err)

	require.Len(t, f.queue.tasks, 2)
	assert.Equal(t, EmailKindEventUpdate, f.queue.tasks[1].Kind)
}

func TestUpdateChefNotes(t *testing.T) {
	f := newEventFixture(t)
	req := baseCreate(f)
	chefID := f.chefMembershipID()
	req.ChefID = &chefID
	event, err := f.svc.Create(f.admin, req)
	require.NoError(t, err)

	updated, err := f.svc.UpdateChefNotes(f.chef, event.ID, "bring extra burners")
	require.NoError(t, err)
	assert.Equal(t, "bring extra burners", updated.ChefNotes)

	// A chef cannot reach an event not assigned to them.
	other, err := f.svc.Create(f.admin, baseCreate(f))
	require.NoError(t, err)
	_, err = f.svc.UpdateChefNotes(f.chef, other.ID, "nope")
	assert.Error(t, err)
}

func TestCompleteAndCancel_IdempotentOverwrite(t *testing.T) {
	f := newEventFixture(t)
	event, err := f.svc.Create(f.admin, baseCreate(f))
	require.NoError(t, err)

	done, err := f.svc.Complete(f.admin, event.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, done.Status)

	// Completing again simply re-sets the status.
	again, err := f.svc.Complete(f.admin, event.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, again.Status)

	cancelled, err := f.svc.Cancel(f.admin, event.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)
}

func TestCalendar_ExcludesCancelledAndFilters(t *testing.T) {
	f := newEventFixture(t)

	req := baseCreate(f)
	chefID := f.chefMembershipID()
	req.ChefID = &chefID
	assigned, err := f.svc.Create(f.admin, req)
	require.NoError(t, err)

	unassigned, err := f.svc.Create(f.admin, baseCreate(f))
	require.NoError(t, err)

	toCancel, err := f.svc.Create(f.admin, baseCreate(f))
	require.NoError(t, err)
	_, err = f.svc.Cancel(f.admin, toCancel.ID)
	require.NoError(t, err)

	entries, err := f.svc.Calendar(f.admin, "2026-10-01", "2026-10-31", "")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	colors := map[uint]string{}
	for _, e := range entries {
		colors[e.ID] = e.Color
	}
	assert.Equal(t, models.CalendarColors[0], colors[assigned.ID])
	assert.Equal(t, models.UnassignedColor, colors[unassigned.ID])

	onlyUnassigned, err := f.svc.Calendar(f.admin, "2026-10-01", "2026-10-31", "unassigned")
	require.NoError(t, err)
	require.Len(t, onlyUnassigned, 1)
	assert.Equal(t, unassigned.ID, onlyUnassigned[0].ID)

	// Outside the window nothing shows.
	empty, err := f.svc.Calendar(f.admin, "2026-11-01", "2026-11-30", "")
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = f.svc.Calendar(f.admin, "not-a-date", "2026-11-30", "")
	assert.Error(t, err)
}

func TestDeleteEvent_SoftDeleteHidesEverywhere(t *testing.T) {
	f := newEventFixture(t)
	event, err := f.svc.Create(f.admin, baseCreate(f))
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(f.admin, event.ID))

	_, err = f.svc.Get(f.admin, event.ID)
	assert.Error(t, err)

	events, err := f.svc.List(f.admin, nil)
	require.NoError(t, err)
	assert.Empty(t, events)

	entries, err := f.svc.Calendar(f.admin, "2026-10-01", "2026-10-31", "")
	require.NoError(t, err)
	assert.Empty(t, entries)

	// The row itself survives.
	var raw models.Event
	require.NoError(t, f.db.Unscoped().First(&raw, event.ID).Error)
	assert.True(t, raw.IsDeleted)
	assert.NotNil(t, raw.DeletedAt)
}

func TestListEvents_StatusAndChefFilters(t *testing.T) {
	f := newEventFixture(t)

	req := baseCreate(f)
	chefID := f.chefMembershipID()
	req.ChefID = &chefID
	assigned, err := f.svc.Create(f.admin, req)
	require.NoError(t, err)

	plain, err := f.svc.Create(f.admin, baseCreate(f))
	require.NoError(t, err)
	_, err = f.svc.Complete(f.admin, plain.ID)
	require.NoError(t, err)

	completedOnly, err := f.svc.List(f.admin, &EventFilter{Status: models.StatusCompleted})
	require.NoError(t, err)
	require.Len(t, completedOnly, 1)
	assert.Equal(t, plain.ID, completedOnly[0].ID)

	byChef, err := f.svc.List(f.admin, &EventFilter{ChefID: chefID})
	require.NoError(t, err)
	require.Len(t, byChef, 1)
	assert.Equal(t, assigned.ID, byChef[0].ID)
}

func TestListEvents_ChronologicalOrder(t *testing.T) {
	f := newEventFixture(t)

	later := baseCreate(f)
	later.Date = "2026-10-02"
	second, err := f.svc.Create(f.admin, later)
	require.NoError(t, err)

	earlier := baseCreate(f)
	earlier.StartTime = "09:00"
	first, err := f.svc.Create(f.admin, earlier)
	require.NoError(t, err)

	third, err := f.svc.Create(f.admin, baseCreate(f))
	require.NoError(t, err)

	events, err := f.svc.List(f.admin, nil)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, first.ID, events[0].ID)
	assert.Equal(t, third.ID, events[1].ID)
	assert.Equal(t, second.ID, events[2].ID)
}
