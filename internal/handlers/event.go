package handlers

import (
	"encoding/json"
	"io"
	"strconv"

	"github.com/chefbawss/backend/internal/models"
	"github.com/chefbawss/backend/internal/services"
	"github.com/chefbawss/backend/pkg/response"
	"github.com/gin-gonic/gin"
)

type EventHandler struct {
	eventService *services.EventService
}

func NewEventHandler(eventService *services.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

// forRole strips admin-only fields from an event before handing it to a
// chef. Works on a copy, never the loaded row.
func forRole(tenant *models.Tenant, e *models.Event) *models.Event {
	if tenant.IsAdmin() {
		return e
	}
	out := *e
	out.InternalNotes = ""
	out.ClientPay = 0
	out.DepositAmount = nil
	out.DepositReceived = false
	out.PaymentReceived = false
	// The profile carries admin-only notes and the default pay rate.
	out.ChefProfile = nil
	return &out
}

func (h *EventHandler) List(c *gin.Context) {
	tenant := tenantOr404(c)
	if tenant == nil {
		return
	}

	filter := &services.EventFilter{
		Status:   c.Query("status"),
		Search:   c.Query("search"),
		DateFrom: c.Query("date_from"),
		DateTo:   c.Query("date_to"),
	}
	if raw := c.Query("chef_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			response.BadRequest(c, "invalid chef_id")
			return
		}
		filter.ChefID = uint(id)
	}

	events, err := h.eventService.List(tenant, filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]*models.Event, 0, len(events))
	for i := range events {
		out = append(out, forRole(tenant, &events[i]))
	}
	response.Success(c, out)
}

func (h *EventHandler) Calendar(c *gin.Context) {
	tenant := tenantOr404(c)
	if tenant == nil {
		return
	}

	entries, err := h.eventService.Calendar(tenant, c.Query("start"), c.Query("end"), c.Query("chef"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, entries)
}

func (h *EventHandler) Get(c *gin.Context) {
	tenant := tenantOr404(c)
	if tenant == nil {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	event, err := h.eventService.Get(tenant, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, forRole(tenant, event))
}

func (h *EventHandler) Create(c *gin.Context) {
	tenant := tenantOr404(c)
	if tenant == nil {
		return
	}

	var req services.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	event, err := h.eventService.Create(tenant, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, event)
}

// Update routes by role. Admins may patch anything; a request body with
// an explicit null chef_id unassigns the chef. Chefs may send only
// chef_notes: any other key rejects the whole request with 403 and no
// partial effect.
func (h *EventHandler) Update(c *gin.Context) {
	tenant := tenantOr404(c)
	if tenant == nil {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	if tenant.IsChef() {
		for key := range raw {
			if key != "chef_notes" {
				response.Forbidden(c, "chefs may only update chef_notes")
				return
			}
		}
		rawNotes, ok := raw["chef_notes"]
		if !ok {
			// Nothing submitted; answer with the current state.
			event, err := h.eventService.Get(tenant, id)
			if err != nil {
				response.Error(c, err)
				return
			}
			response.Success(c, forRole(tenant, event))
			return
		}

		var notes string
		if err := json.Unmarshal(rawNotes, &notes); err != nil {
			response.BadRequest(c, "chef_notes must be a string")
			return
		}

		event, err := h.eventService.UpdateChefNotes(tenant, id, notes)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, forRole(tenant, event))
		return
	}

	var req services.UpdateEventRequest
	if err := json.Unmarshal(body, &req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if rawChef, ok := raw["chef_id"]; ok && string(rawChef) == "null" {
		req.ClearChef = true
	}

	event, err := h.eventService.Update(tenant, id, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, event)
}

func (h *EventHandler) Complete(c *gin.Context) {
	tenant := tenantOr404(c)
	if tenant == nil {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	event, err := h.eventService.Complete(tenant, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, event)
}

func (h *EventHandler) Cancel(c *gin.Context) {
	tenant := tenantOr404(c)
	if tenant == nil {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	event, err := h.eventService.Cancel(tenant, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, event)
}

func (h *EventHandler) Delete(c *gin.Context) {
	tenant := tenantOr404(c)
	if tenant == nil {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.eventService.Delete(tenant, id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "event deleted"})
}
