package services

import (
	"fmt"

	"github.com/chefbawss/backend/internal/models"
	"github.com/chefbawss/backend/pkg/logger"
)

// Dispatcher hands notification side effects to the task queue after the
// primary transaction has committed. Every method is fire-and-forget:
// enqueue and delivery failures are logged and swallowed, they must
// never fail or roll back the request that triggered them.
type Dispatcher struct {
	queue TaskQueue
}

func NewDispatcher(queue TaskQueue) *Dispatcher {
	return &Dispatcher{queue: queue}
}

func (d *Dispatcher) enqueue(task *EmailTask) {
	if d == nil || d.queue == nil {
		return
	}
	if err := d.queue.Enqueue(task); err != nil {
		logger.Warnf("[Dispatcher] dropping %s notification for %s: %v", task.Kind, task.To, err)
	}
}

// ChefInvited sends the invitation email carrying the credential-set link.
func (d *Dispatcher) ChefInvited(user *models.User, org *models.Organization, token string) {
	d.enqueue(&EmailTask{
		Kind:             EmailKindChefInvite,
		To:               user.Email,
		RecipientName:    user.FirstName,
		OrganizationName: org.Name,
		Token:            token,
	})
}

// PasswordReset sends the reset link.
func (d *Dispatcher) PasswordReset(user *models.User, token string) {
	d.enqueue(&EmailTask{
		Kind:          EmailKindPasswordReset,
		To:            user.Email,
		RecipientName: user.FirstName,
		Token:         token,
	})
}

// EventAssigned notifies a chef of a new assignment.
func (d *Dispatcher) EventAssigned(chefUser *models.User, event *models.Event, org *models.Organization) {
	d.enqueue(d.eventTask(EmailKindEventAssignment, chefUser, event, org))
}

// EventUpdated notifies the assigned chef that an event changed. The
// payload carries current details only, not a field diff.
func (d *Dispatcher) EventUpdated(chefUser *models.User, event *models.Event, org *models.Organization) {
	d.enqueue(d.eventTask(EmailKindEventUpdate, chefUser, event, org))
}

func (d *Dispatcher) eventTask(kind string, chefUser *models.User, event *models.Event, org *models.Organization) *EmailTask {
	task := &EmailTask{
		Kind:             kind,
		To:               chefUser.Email,
		RecipientName:    chefUser.FirstName,
		OrganizationName: org.Name,
		EventID:          event.ID,
		EventName:        event.DisplayName(),
		Date:             event.Date,
		StartTime:        event.StartTime,
		Location:         event.Location,
		GuestCount:       event.GuestCount,
	}
	if event.Client != nil {
		task.ClientName = event.Client.Name
	}
	if event.ChefPay != nil {
		task.ChefPay = fmt.Sprintf("$%.2f", *event.ChefPay)
	}
	return task
}
